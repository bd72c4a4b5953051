package main

import (
	"os"

	"github.com/noah-isme/teacherhub-gateway/cmd/teacherhubctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
