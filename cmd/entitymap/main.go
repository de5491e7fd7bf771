// Command entitymap converts sample Employee records to table entity
// payloads and back.
// Usage: entitymap <command> [options]
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
