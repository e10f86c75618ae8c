package main

import (
	"fmt"
	"os"

	"fitlevel/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "fitlevel: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
