// Package main provides the darbiter binary: an AI-usage eligibility scanner
// for file trees, uploads, and raw text.
package main

import (
	"errors"
	"fmt"
	"os"
)

// Version information (set via ldflags)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	if err := Execute(); err != nil {
		var exit *exitError
		if errors.As(err, &exit) {
			os.Exit(exit.code)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
