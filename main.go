package main

import (
	"os"

	"github.com/abhisek/cihui/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
