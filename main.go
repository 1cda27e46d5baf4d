package main

import (
	"os"

	"github.com/ecoreport/api-go/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
