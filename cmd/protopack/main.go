package main

import (
	"fmt"
	"os"

	"protopack/internal/protopack/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
