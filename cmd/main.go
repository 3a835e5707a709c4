package main

import (
	"fmt"
	"os"

	"barefoot/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "barefoot:", err)
		os.Exit(1)
	}
}
