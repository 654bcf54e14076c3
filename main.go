// Command featsat analyses feature models: it lists their minimal valid
// products, explains why a model has none, and serves the same analyses over
// HTTP.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error:"), err)
		os.Exit(1)
	}
}
