// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/dothype/hypevm/client"
	"github.com/dothype/hypevm/vm"
)

var transferCmd = &cobra.Command{
	Use:   "transfer [options] <name> <to>",
	Short: "Transfers a name to another address",
	RunE:  transferFunc,
}

func transferFunc(cmd *cobra.Command, args []string) error {
	name, err := getName(args, 2)
	if err != nil {
		return err
	}
	if !common.IsHexAddress(args[1]) {
		return fmt.Errorf("invalid recipient %q", args[1])
	}
	_, err = issue(vm.Transfer, &vm.TransferArgs{Name: name, To: common.HexToAddress(args[1])}, client.WithInfo(name))
	return err
}
