// FILE: stripchess/cmd/stripchess/main.go
// Command stripchess inspects, analyzes and self-plays positions of the
// sixteen-square strip variant.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"stripchess/internal/cli"
)

func main() {
	if err := cli.Run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "stripchess: %v\n", err)
		os.Exit(1)
	}
}
