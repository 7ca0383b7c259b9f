package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/thenoetrevino/projecthub/cmd"
	"github.com/thenoetrevino/projecthub/internal/cli"
)

func main() {
	if err := cmd.Execute(); err != nil {
		// handlers already reported their own errors
		var reported *cli.ExitError
		if !errors.As(err, &reported) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(cli.ExitCodeFor(err))
	}
}
