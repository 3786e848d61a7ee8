package main

import (
	"os"

	"github.com/anemortalkid/kaleido/cmd/kaleido/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(cmd.ExitStatus(err))
	}
}
