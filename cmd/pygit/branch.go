package main

import (
	"sort"

	"github.com/spf13/cobra"
)

func newBranchCmd() *cobra.Command {
	var del bool
	cmd := &cobra.Command{
		Use:   "branch [name]",
		Short: "List branches, or create/delete one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}

			if del {
				if len(args) != 1 {
					return newUsageError("branch -d: a branch name is required")
				}
				l, err := r.Lock()
				if err != nil {
					return err
				}
				defer l.Release()
				if err := r.DeleteBranch(args[0]); err != nil {
					return err
				}
				printf("Deleted branch %s\n", args[0])
				return nil
			}

			if len(args) == 1 {
				l, err := r.Lock()
				if err != nil {
					return err
				}
				defer l.Release()
				if err := r.CreateBranch(args[0]); err != nil {
					return err
				}
				printf("Created branch %s\n", args[0])
				return nil
			}

			branches, err := r.Refs.ListBranches()
			if err != nil {
				return err
			}
			sort.Strings(branches)
			current, _ := r.CurrentBranch()
			for _, b := range branches {
				if b == current {
					printf("* %s\n", b)
				} else {
					printf("  %s\n", b)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&del, "delete", "d", false, "delete the named branch")
	return cmd
}
