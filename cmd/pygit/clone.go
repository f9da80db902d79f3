package main

import (
	"github.com/spf13/cobra"

	"github.com/systemshift/pygit/pkg/repo"
)

func newCloneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clone <url> <dir>",
		Short: "Clone a remote repository into a fresh directory",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := repo.Clone(args[0], args[1]); err != nil {
				return err
			}
			printf("Cloned into %s\n", args[1])
			return nil
		},
	}
}
