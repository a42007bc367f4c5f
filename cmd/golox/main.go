package main

import (
	"os"

	"github.com/sdecook/golox/cmd/golox/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
