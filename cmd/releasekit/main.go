package main

import (
	"os"

	"github.com/cachebag/releasekit/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
