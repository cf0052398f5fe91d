package main

import (
	"os"

	"github.com/joho/godotenv"

	"jobfinder/cmd"
)

func main() {
	// Secrets may come from a local .env file; a missing file is fine.
	_ = godotenv.Load()

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
