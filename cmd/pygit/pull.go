package main

import (
	"github.com/spf13/cobra"
)

func newPullCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pull <remote> <branch>",
		Short: "Fetch and fast-forward the current branch from a remote",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}
			l, err := r.Lock()
			if err != nil {
				return err
			}
			defer l.Release()

			if err := r.Pull(args[0], args[1]); err != nil {
				return err
			}
			printf("Pulled %s from %s\n", args[1], args[0])
			return nil
		},
	}
}
