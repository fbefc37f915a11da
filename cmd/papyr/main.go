// Command papyr is the terminal paper reader.
package main

import (
	"os"

	"github.com/custodia-labs/papyr/internal/adapters/driving/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
