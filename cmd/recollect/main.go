package main

import (
	"os"

	"github.com/mwinther/recollect/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
