// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// "hype-cli" implements hypevm client operation interface.
package main

import (
	"os"

	"github.com/fatih/color"

	"github.com/dothype/hypevm/cmd/hype-cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		color.Red("hype-cli failed: %v", err)
		os.Exit(1)
	}
	os.Exit(0)
}
