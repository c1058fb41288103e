package main

import (
	"os"

	"github.com/mmynk/duoledger/internal/commands"
	"github.com/mmynk/duoledger/internal/config"
)

func main() {
	config.LoadDotEnv()

	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
