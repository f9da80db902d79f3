package main

import (
	"github.com/spf13/cobra"
)

func newCommitCmd() *cobra.Command {
	var message string
	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Record staged changes to the current branch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if message == "" {
				return newUsageError("commit: -m <message> is required")
			}
			r, err := openRepo()
			if err != nil {
				return err
			}
			l, err := r.Lock()
			if err != nil {
				return err
			}
			defer l.Release()

			id, err := r.Commit(message)
			if err != nil {
				return err
			}
			printf("[%s] %s\n", shortID(id), message)
			return nil
		},
	}
	cmd.Flags().StringVarP(&message, "message", "m", "", "commit message")
	return cmd
}
