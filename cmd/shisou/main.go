package main

import (
	"os"

	"github.com/shisou-labs/shisou/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
