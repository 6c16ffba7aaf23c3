// Command pipelinectl inspects variable references and replays recorded
// editor sessions against the pipeline engine.
package main

import (
	"fmt"
	"os"
)

// Version information set during build
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
