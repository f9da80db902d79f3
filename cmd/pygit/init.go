package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/systemshift/pygit/pkg/repo"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize a new repository",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := os.Getwd()
			if err != nil {
				return err
			}
			if _, err := repo.Initialize(cwd); err != nil {
				return err
			}
			printf("Initialized empty pygit repository in %s\n", filepath.Join(cwd, repo.MetaDirName))
			return nil
		},
	}
}
