// Command transmute normalizes, compiles, runs and exports data model
// transform specifications.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/transmute/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
