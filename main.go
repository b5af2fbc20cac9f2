// Copyright © 2024 The cstlint authors

package main

import (
	"os"

	"github.com/luthersystems/cstlint/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
