package main

import (
	"os"

	"tradeMetrics/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
