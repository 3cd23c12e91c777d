package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

var App *StakePoolApp

func main() {
	App = initApp()
	err := App.cliCmd.Run(context.Background(), os.Args)
	App.writeMetrics()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// exitCode is the status of a cli.Exit error, 1 for any other error.
func exitCode(err error) int {
	var exitErr cli.ExitCoder
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return 1
}
