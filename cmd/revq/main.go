package main

import (
	"os"

	"github.com/dshills/revq/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
