package main

import (
	"os"

	"github.com/majorcontext/ghapp/cmd/ghapp/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
