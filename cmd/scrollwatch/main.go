// Command scrollwatch runs, serves and browses scroll visibility scenes.
package main

import (
	"fmt"
	"os"

	"github.com/go-drift/scrollwatch/cmd/scrollwatch/cmd"
)

func main() {
	if err := cmd.Execute(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
