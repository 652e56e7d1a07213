package main

import (
	"os"

	"github.com/finhorizon/horizon/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
