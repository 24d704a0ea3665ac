package main

import (
	"os"

	"github.com/maxkimambo/subflow/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		// Execute already printed the error
		os.Exit(1)
	}
}
