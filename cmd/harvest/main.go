// harvest is the frontmatter aggregation CLI.
//
// Usage:
//
//	harvest run <schema.json> <output> <input-glob> [--parallel] [--format=json|yaml|toml|markdown]
//	harvest status [--run=<id>]
//	harvest serve
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
