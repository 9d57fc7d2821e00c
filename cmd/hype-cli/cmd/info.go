// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dothype/hypevm/client"
)

var infoCmd = &cobra.Command{
	Use:   "info [options] name",
	Short: "Reads the registration record of a name",
	RunE:  infoFunc,
}

func infoFunc(cmd *cobra.Command, args []string) error {
	name, err := getName(args, 1)
	if err != nil {
		return err
	}
	cli := client.New(uri, requestTimeout)
	info, err := cli.Info(name)
	if err != nil {
		return err
	}

	color.Blue("name=%s node=%s tokenId=%s state=%s available=%t", info.Name, info.Node, info.TokenID, info.State, info.Available)
	if info.Record != nil {
		expiry := time.Unix(int64(info.Record.Expiry), 0)
		color.Yellow("owner=%s registered=%v expiry=%v", info.Record.Owner, time.Unix(int64(info.Record.Registered), 0), expiry)
	}
	if info.Batch != 0 {
		color.Yellow("auction batch=%d", info.Batch)
	}
	if reserved, err := cli.Reservation(name); err == nil && reserved != (common.Address{}) {
		color.Yellow("reserved for %s", reserved)
	}
	return nil
}
