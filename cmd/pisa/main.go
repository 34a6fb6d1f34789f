package main

import (
	"os"

	"github.com/askiada/go-pisa/cmd/pisa/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
