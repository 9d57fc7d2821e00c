// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dothype/hypevm/vm"
)

var setCmd = &cobra.Command{
	Use:   "set",
	Short: "Writes resolver records of a name",
}

var setAddrCmd = &cobra.Command{
	Use:   "addr [options] <name> <address>",
	Short: "Sets the address record",
	RunE: func(cmd *cobra.Command, args []string) error {
		name, err := getName(args, 2)
		if err != nil {
			return err
		}
		if !common.IsHexAddress(args[1]) {
			return fmt.Errorf("invalid address %q", args[1])
		}
		_, err = issue(vm.SetAddr, &vm.SetAddrArgs{Name: name, Address: common.HexToAddress(args[1])})
		return err
	},
}

var setTextCmd = &cobra.Command{
	Use:   "text [options] <name> <key> <value>",
	Short: "Sets a text record, an empty value deletes it",
	RunE: func(cmd *cobra.Command, args []string) error {
		name, err := getName(args, 3)
		if err != nil {
			return err
		}
		_, err = issue(vm.SetText, &vm.SetTextArgs{Name: name, Key: args[1], Value: args[2]})
		return err
	},
}

var setContenthashCmd = &cobra.Command{
	Use:   "contenthash [options] <name> <0x hash>",
	Short: "Sets the content hash record",
	RunE: func(cmd *cobra.Command, args []string) error {
		name, err := getName(args, 2)
		if err != nil {
			return err
		}
		hash, err := hexutil.Decode(args[1])
		if err != nil {
			return fmt.Errorf("%w: invalid content hash", err)
		}
		_, err = issue(vm.SetContenthash, &vm.SetContenthashArgs{Name: name, Hash: hash})
		return err
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear [options] <name>",
	Short: "Clears every resolver record of a name",
	RunE: func(cmd *cobra.Command, args []string) error {
		name, err := getName(args, 1)
		if err != nil {
			return err
		}
		reply, err := issue(vm.ClearRecords, &vm.NameArgs{Name: name})
		if err != nil {
			return err
		}
		color.Green("records of %s now at version %s", name, string(reply.Output))
		return nil
	},
}

func init() {
	setCmd.AddCommand(
		setAddrCmd,
		setTextCmd,
		setContenthashCmd,
	)
}
