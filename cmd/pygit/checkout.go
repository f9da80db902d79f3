package main

import (
	"github.com/spf13/cobra"
)

func newCheckoutCmd() *cobra.Command {
	var create bool
	cmd := &cobra.Command{
		Use:   "checkout <name>",
		Short: "Switch the working tree to a branch",
		Args:  cobra.ExactArgs(1),
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

			branch := args[0]
			if current, err := r.CurrentBranch(); err == nil && current == branch && !create {
				printf("Already on branch %s\n", branch)
				return nil
			}

			if create {
				if err := r.CheckoutNewBranch(branch); err != nil {
					return err
				}
			} else if err := r.Checkout(branch); err != nil {
				return err
			}
			printf("Switched to branch %s\n", branch)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&create, "branch", "b", false, "create the branch before switching")
	return cmd
}
