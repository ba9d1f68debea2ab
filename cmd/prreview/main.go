package main

import (
	"os"

	"github.com/nayouta/pr-review-helper/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
