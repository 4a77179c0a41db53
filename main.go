package main

import (
	"os"

	"github.com/secmon-lab/repovault/pkg/cli"
)

func main() {
	if err := cli.New().Run(os.Args); err != nil {
		os.Exit(1)
	}
}
