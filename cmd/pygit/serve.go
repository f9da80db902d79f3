package main

import (
	"fmt"
	"net"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/systemshift/pygit/pkg/repo"
	"github.com/systemshift/pygit/pkg/wire"
)

func newServeCmd() *cobra.Command {
	var root string
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve one or more repositories over the pygit:// wire protocol",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if root == "" {
				cwd, err := os.Getwd()
				if err != nil {
					return err
				}
				root = cwd
			}
			ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
			if err != nil {
				return fmt.Errorf("pygit: listen on port %d: %w", port, err)
			}
			defer ln.Close()
			logger.Infow("wire: serving", "root", root, "addr", ln.Addr())

			srv := &wire.Server{Log: logger, Resolve: resolveUnderRoot(root)}
			return srv.Serve(ln)
		},
	}
	cmd.Flags().StringVar(&root, "root", "", "directory containing named repository subdirectories (default: cwd)")
	cmd.Flags().IntVar(&port, "port", wire.DefaultPort, "TCP port to listen on")
	return cmd
}

// resolveUnderRoot treats each repository name as a subdirectory of root
// holding its own .pygit metadata directory.
func resolveUnderRoot(root string) wire.Resolver {
	return func(name string) (*wire.RepoHandle, error) {
		dir := filepath.Join(root, name)
		r, err := repo.Open(dir)
		if err != nil {
			return nil, err
		}
		return &wire.RepoHandle{
			Store:         r.Store,
			Refs:          r.Refs,
			DefaultBranch: r.Config.Remote.DefaultBranch,
		}, nil
	}
}
