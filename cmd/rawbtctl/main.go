package main

import (
	"os"

	"github.com/adcondev/rawbt-daemon/cmd/rawbtctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
