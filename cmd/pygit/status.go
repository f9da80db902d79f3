package main

import (
	"github.com/spf13/cobra"

	"github.com/systemshift/pygit/pkg/repo"
	"github.com/systemshift/pygit/pkg/worktree"
)

func warningsOf(r *repo.Repository) []string {
	if r.Ignored == nil {
		return nil
	}
	return r.Ignored.Warnings()
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the working tree status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}
			entries, err := r.WorkTree().Status()
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				printf("nothing to report, working tree clean\n")
				return nil
			}
			for _, w := range warningsOf(r) {
				printf("warning: %s\n", w)
			}
			for _, e := range entries {
				label := categoryLabel(e.Category)
				printf("%-18s %s\n", colorize(categoryColor(e.Category), label), e.Path)
			}
			return nil
		},
	}
}

func categoryLabel(c worktree.Category) string {
	switch c {
	case worktree.StagedNew:
		return "staged (new):"
	case worktree.StagedModified:
		return "staged (modified):"
	case worktree.UnstagedModified:
		return "modified:"
	case worktree.Deleted:
		return "deleted:"
	case worktree.Untracked:
		return "untracked:"
	default:
		return string(c) + ":"
	}
}

// categoryColor picks the ANSI color status uses on a terminal: green for
// what's staged and ready to commit, red for what still needs attention,
// yellow for paths git doesn't know about yet.
func categoryColor(c worktree.Category) string {
	switch c {
	case worktree.StagedNew, worktree.StagedModified:
		return ansiGreen
	case worktree.UnstagedModified, worktree.Deleted:
		return ansiRed
	case worktree.Untracked:
		return ansiYellow
	default:
		return ansiReset
	}
}
