// Command pygit is the CLI front-end for the pygit content-addressed
// version control engine. It wires pkg/repo's operations to a cobra
// command tree, the same way the teacher's single flag-based main.go
// dispatched to pkg/repo, but split by command and restructured onto
// github.com/spf13/cobra the way the corpus's larger CLI tools (e.g.
// bufbuild/buf's cmd/buf) organize their command trees.
package main

import "os"

func main() {
	os.Exit(run())
}

func run() int {
	root := newRootCmd()
	root.SilenceUsage = true
	root.SilenceErrors = true
	if err := root.Execute(); err != nil {
		return exitCodeFor(err)
	}
	return 0
}
