package main

import (
	"os"

	"wikiextract/internal/app"
	"wikiextract/internal/logging"
)

// main runs a single lookup. The runner has already reported any failure on
// stderr, so all that is left here is the exit status.
func main() {
	runner := app.NewAppRunner()

	if err := runner.Run(os.Args[1:]); err != nil {
		logging.Logf(logging.Debug, "Application execution failed: %v", err)
		os.Exit(1)
	}
	logging.Logf(logging.Info, "Application completed successfully.")
}
