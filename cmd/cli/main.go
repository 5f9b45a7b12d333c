// Command forecast-accuracy builds forecast accuracy runs from
// already-extracted row bundles.
package main

import (
	"os"

	"forecast-accuracy/cmd/cli/cmd"
	"forecast-accuracy/internal/logging"
)

func main() {
	defer logging.Sync()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
