package main

import (
	"os"

	"github.com/revu-ai/revu/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
