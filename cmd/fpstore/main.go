// Command fpstore stores and inspects indoor-positioning fingerprints.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/fpstore/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		// ExitErrors were already reported by the command's formatter.
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
