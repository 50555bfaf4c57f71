package main

import (
	"os"

	"github.com/kurzickkrozz/GWPB/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
