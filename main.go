package main

import (
	"fmt"
	"os"

	"github.com/Mazzz-zzz/voca.fi/cmd"
	"github.com/joho/godotenv"
)

func main() {
	// A .env file is optional; environment variables and ~/.voca.yaml work too.
	_ = godotenv.Load()

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
