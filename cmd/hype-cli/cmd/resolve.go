// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dothype/hypevm/client"
	"github.com/dothype/hypevm/parser"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [options] <name.tld> [text keys...]",
	Short: "Reads the resolver records of a name",
	RunE:  resolveFunc,
}

func resolveFunc(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("expected at least 1 argument, got %d", len(args))
	}
	if _, _, err := parser.ResolvePath(args[0]); err != nil {
		return fmt.Errorf("%w: failed to parse path", err)
	}

	cli := client.New(uri, requestTimeout)
	rec, err := cli.Resolve(args[0], args[1:]...)
	if err != nil {
		return err
	}
	color.Blue("%s owner=%s version=%d", args[0], rec.Owner, rec.Version)
	color.Yellow("addr=>%s", rec.Address)
	for _, k := range args[1:] {
		color.Yellow("text.%s=>%s", k, rec.Text[k])
	}
	if len(rec.Contenthash) > 0 {
		color.Yellow("contenthash=>%s", rec.Contenthash)
	}
	return nil
}
