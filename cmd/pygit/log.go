package main

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newLogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "log [N]",
		Short: "Show commit history of the current branch",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			limit := 0
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n <= 0 {
					return newUsageError("log: N must be a positive integer")
				}
				limit = n
			}
			r, err := openRepo()
			if err != nil {
				return err
			}
			entries, err := r.Log(limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				printf("no commits yet\n")
				return nil
			}
			for _, e := range entries {
				printf("commit %s\n", e.ID)
				printf("Author: %s <%s>\n", e.Commit.Author.Name, e.Commit.Author.Email)
				printf("Date:   %d %s\n", e.Commit.Author.Unix, e.Commit.Author.TZOffset)
				printf("\n    %s\n\n", strings.TrimRight(e.Commit.Message, "\n"))
			}
			return nil
		},
	}
}
