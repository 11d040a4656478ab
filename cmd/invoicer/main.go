package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/whartman-APD/invoice-send-aws/cmd"
)

func main() {
	// Local runs keep their environment in .env; absence is fine.
	_ = godotenv.Load()

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
