package main

import (
	"github.com/spf13/cobra"
)

func newAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <path|.>",
		Short: "Stage file contents for the next commit",
		Args:  cobra.MinimumNArgs(1),
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

			wt := r.WorkTree()
			for _, path := range args {
				if err := wt.Add(path); err != nil {
					return err
				}
			}
			return r.SaveState()
		},
	}
}
