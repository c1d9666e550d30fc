package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/goalspace/goalspace/internal/cli"
)

func main() {
	godotenv.Load()

	if err := cli.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
