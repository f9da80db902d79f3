package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/systemshift/pygit/pkg/repo"
)

const version = "0.1.0"

var (
	verbose bool
	logger  *zap.SugaredLogger
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "pygit",
		Short:         "A content-addressed version control engine",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger = newLogger(verbose)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(
		newInitCmd(),
		newAddCmd(),
		newCommitCmd(),
		newStatusCmd(),
		newLogCmd(),
		newBranchCmd(),
		newCheckoutCmd(),
		newDiffCmd(),
		newRemoteCmd(),
		newPushCmd(),
		newPullCmd(),
		newCloneCmd(),
		newServeCmd(),
		newVerifyCmd(),
	)
	return cmd
}

func newLogger(verbose bool) *zap.SugaredLogger {
	cfg := zap.NewDevelopmentConfig()
	cfg.DisableStacktrace = true
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	cfg.Encoding = "console"
	cfg.EncoderConfig.TimeKey = ""
	l, err := cfg.Build()
	if err != nil {
		return zap.NewNop().Sugar()
	}
	return l.Sugar()
}

// isTTY reports whether stdout is an interactive terminal, the same
// signal github.com/mattn/go-isatty gives bufbuild/buf's CLI output
// layer to decide whether to colorize or keep output script-friendly.
func isTTY() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

const (
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiReset  = "\x1b[0m"
)

// colorize wraps s in the given ANSI color code, but only when stdout is a
// terminal — status and diff output stays plain when piped or redirected.
func colorize(code, s string) string {
	if !isTTY() {
		return s
	}
	return code + s + ansiReset
}

// openRepo discovers the repository rooted at or above the current
// working directory.
func openRepo() (*repo.Repository, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("pygit: resolve working directory: %w", err)
	}
	return repo.Discover(cwd)
}

func printf(format string, args ...any) {
	fmt.Printf(format, args...)
}

func shortID(id fmt.Stringer) string {
	s := id.String()
	if len(s) > 10 {
		return s[:10]
	}
	return s
}
