package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/tachyon-hq/intent-engine/cmd"
)

func main() {
	// A .env file is optional; environment variables win either way
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Error loading .env file: %v\n", err)
		os.Exit(1)
	}

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
