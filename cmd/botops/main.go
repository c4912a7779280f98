package main

import (
	"os"

	"github.com/avolkov/botops/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		// Cobra has already printed the error.
		os.Exit(1)
	}
}
