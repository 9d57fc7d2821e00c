// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dothype/hypevm/client"
	"github.com/dothype/hypevm/controller"
)

var (
	quoteYears   uint64
	quoteRenewal bool
)

func init() {
	quoteCmd.PersistentFlags().Uint64Var(
		&quoteYears,
		"years",
		1,
		"registration length in years",
	)
	quoteCmd.PersistentFlags().BoolVar(
		&quoteRenewal,
		"renewal",
		false,
		"price a renewal instead of a registration",
	)
}

var quoteCmd = &cobra.Command{
	Use:   "quote [options] <name>",
	Short: "Prices a registration or renewal in USD and tokens",
	RunE:  quoteFunc,
}

func quoteFunc(cmd *cobra.Command, args []string) error {
	name, err := getName(args, 1)
	if err != nil {
		return err
	}
	cli := client.New(uri, requestTimeout)
	duration := yearsToDuration(quoteYears)

	var q *controller.Quote
	if quoteRenewal {
		q, err = cli.QuoteRenewal(name, duration)
	} else {
		q, err = cli.Quote(name, duration)
	}
	if err != nil {
		return err
	}
	color.Cyan("name=%s years=%d usd=%s hype=%s", name, quoteYears, formatAmount(q.USD), formatAmount(q.Native))

	batch, native, err := cli.AuctionQuote(name, duration)
	if err == nil && batch != 0 {
		color.Yellow("in auction batch %d: total=%s hype", batch, formatAmount(native))
	}
	return nil
}
