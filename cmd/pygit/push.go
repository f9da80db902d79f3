package main

import (
	"github.com/spf13/cobra"
)

func newPushCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "push <remote> <branch>",
		Short: "Send local history to a remote, fast-forward only",
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

			if err := r.Push(args[0], args[1]); err != nil {
				return err
			}
			printf("Pushed %s to %s\n", args[1], args[0])
			return nil
		},
	}
}
