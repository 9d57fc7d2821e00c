// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dothype/hypevm/client"
)

var balanceCmd = &cobra.Command{
	Use:   "balance [options] [address]",
	Short: "Reads the balance and name count of an address, the local key by default",
	RunE:  balanceFunc,
}

func balanceFunc(cmd *cobra.Command, args []string) error {
	var addr common.Address
	switch len(args) {
	case 0:
		priv, err := crypto.LoadECDSA(privateKeyFile)
		if err != nil {
			return err
		}
		addr = crypto.PubkeyToAddress(priv.PublicKey)
	case 1:
		if !common.IsHexAddress(args[0]) {
			return fmt.Errorf("invalid address %q", args[0])
		}
		addr = common.HexToAddress(args[0])
	default:
		return fmt.Errorf("expected at most 1 argument, got %d", len(args))
	}

	cli := client.New(uri, requestTimeout)
	bal, names, err := cli.Balance(addr)
	if err != nil {
		return err
	}
	nonce, err := cli.Nonce(addr)
	if err != nil {
		return err
	}
	color.Cyan("Address=%s Balance=%s Names=%d Nonce=%d", addr, formatAmount(bal), names, nonce)
	return nil
}
