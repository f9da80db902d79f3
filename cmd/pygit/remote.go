package main

import (
	"github.com/spf13/cobra"
)

func newRemoteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remote",
		Short: "Manage configured remotes",
	}
	cmd.AddCommand(newRemoteAddCmd(), newRemoteListCmd())
	return cmd
}

func newRemoteAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <name> <url>",
		Short: "Register a remote",
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
			if err := r.AddRemote(args[0], args[1]); err != nil {
				return err
			}
			printf("Added remote %s -> %s\n", args[0], args[1])
			return nil
		},
	}
}

func newRemoteListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured remotes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}
			for _, name := range r.ListRemotes() {
				printf("%s\t%s\n", name, r.Remotes.Remotes[name])
			}
			return nil
		},
	}
}
