// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dothype/hypevm/client"
	"github.com/dothype/hypevm/parser"
	"github.com/dothype/hypevm/vm"
)

var (
	auctionStartPrice string
	auctionEndPrice   string
	auctionDuration   time.Duration
	auctionStartTime  uint64
)

var auctionCmd = &cobra.Command{
	Use:   "auction",
	Short: "Creates and inspects Dutch auction batches",
}

var auctionCreateCmd = &cobra.Command{
	Use:   "create [options] <names...>",
	Short: "Puts names up for auction (owner only)",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return fmt.Errorf("expected at least 1 name")
		}
		for _, name := range args {
			if err := parser.CheckName(name); err != nil {
				return fmt.Errorf("%w: invalid name %q", err, name)
			}
		}
		start, err := parseAmount(auctionStartPrice)
		if err != nil {
			return err
		}
		end, err := parseAmount(auctionEndPrice)
		if err != nil {
			return err
		}
		reply, err := issue(vm.CreateAuctionBatch, &vm.AuctionBatchArgs{
			Names:      args,
			StartPrice: hexOrDecimal(start),
			EndPrice:   hexOrDecimal(end),
			Duration:   uint64(auctionDuration.Seconds()),
			StartTime:  auctionStartTime,
		})
		if err != nil {
			return err
		}
		color.Green("created auction batch %s with %d names", string(reply.Output), len(args))
		return nil
	},
}

var auctionStatusCmd = &cobra.Command{
	Use:   "status [options] <batch id>",
	Short: "Prints the current price and timing of a batch",
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := getBatchID(args)
		if err != nil {
			return err
		}
		cli := client.New(uri, requestTimeout)
		b, s, err := cli.AuctionStatus(id)
		if err != nil {
			return err
		}
		color.Blue(
			"batch=%d price=%s usd start=%v duration=%v active=%t",
			b.ID, formatAmount(s.CurrentPrice), time.Unix(int64(b.StartTime), 0),
			time.Duration(b.Duration)*time.Second, s.Active,
		)
		color.Yellow("started=%t complete=%t remaining=%v", s.Started, s.Complete, time.Duration(s.TimeRemaining)*time.Second)
		return nil
	},
}

var auctionDomainsCmd = &cobra.Command{
	Use:   "domains [options] <batch id>",
	Short: "Lists the names a batch was created with",
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := getBatchID(args)
		if err != nil {
			return err
		}
		cli := client.New(uri, requestTimeout)
		names, err := cli.BatchDomains(id)
		if err != nil {
			return err
		}
		for _, name := range names {
			available, err := cli.Available(name)
			if err != nil {
				return err
			}
			color.Yellow("%s available=%t", name, available)
		}
		return nil
	},
}

func init() {
	auctionCreateCmd.PersistentFlags().StringVar(&auctionStartPrice, "start-price", "", "USD premium at the start of the auction")
	auctionCreateCmd.PersistentFlags().StringVar(&auctionEndPrice, "end-price", "0", "USD premium the auction decays to")
	auctionCreateCmd.PersistentFlags().DurationVar(&auctionDuration, "duration", 24*time.Hour, "length of the price decay")
	auctionCreateCmd.PersistentFlags().Uint64Var(&auctionStartTime, "start-time", 0, "unix start time, now when zero")

	auctionCmd.AddCommand(
		auctionCreateCmd,
		auctionStatusCmd,
		auctionDomainsCmd,
	)
}

func getBatchID(args []string) (uint64, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("expected exactly 1 argument, got %d", len(args))
	}
	id, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid batch id", err)
	}
	return id, nil
}
