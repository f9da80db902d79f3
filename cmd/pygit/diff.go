package main

import (
	"strings"

	"github.com/spf13/cobra"
)

func newDiffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diff",
		Short: "Show unstaged and staged working tree changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}
			diffs, err := r.WorkTree().DiffWorkingTree()
			if err != nil {
				return err
			}
			if len(diffs) == 0 {
				printf("no differences\n")
				return nil
			}
			for _, d := range diffs {
				printf("--- a/%s\n+++ b/%s\n", d.Path, d.Path)
				if d.Binary {
					printf("Binary files differ\n\n")
					continue
				}
				printf("%s\n", colorizeDiff(d.Text))
			}
			return nil
		},
	}
}

// colorizeDiff colors +/- lines green/red on a terminal, leaving context
// lines and piped/redirected output untouched.
func colorizeDiff(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "+"):
			lines[i] = colorize(ansiGreen, line)
		case strings.HasPrefix(line, "-"):
			lines[i] = colorize(ansiRed, line)
		}
	}
	return strings.Join(lines, "\n")
}
