package main

import (
	"github.com/spf13/cobra"
)

func newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Walk every reachable object and check it rehashes correctly",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}
			ids, err := r.Verify()
			if err != nil {
				return err
			}
			printf("verified %d objects, no corruption found\n", len(ids))
			return nil
		},
	}
}
