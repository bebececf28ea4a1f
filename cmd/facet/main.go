// Command facet generates corrupted face-recognition datasets and scores
// model robustness under corruption.
package main

import (
	"os"

	"github.com/roach88/facet/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(cli.GetExitCode(err))
	}
}
