package main

import (
	"os"

	"github.com/lugondev/go-ammcore/cmd/ammcore/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
