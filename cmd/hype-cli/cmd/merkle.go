// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dothype/hypevm/merkle"
)

var merkleCmd = &cobra.Command{
	Use:   "merkle",
	Short: "Builds allow-list roots and proofs",
}

var merkleRootCmd = &cobra.Command{
	Use:   "root [options] <allow-list file>",
	Short: "Prints the root of a JSON list of addresses",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return fmt.Errorf("expected exactly 1 argument, got %d", len(args))
		}
		tree, err := loadAllowList(args[0])
		if err != nil {
			return err
		}
		color.Green("root=%s", tree.Root())
		return nil
	},
}

var merkleProofCmd = &cobra.Command{
	Use:   "proof [options] <allow-list file> <address>",
	Short: "Prints the membership proof of an address",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) != 2 {
			return fmt.Errorf("expected exactly 2 arguments, got %d", len(args))
		}
		if !common.IsHexAddress(args[1]) {
			return fmt.Errorf("invalid address %q", args[1])
		}
		tree, err := loadAllowList(args[0])
		if err != nil {
			return err
		}
		proof, err := tree.Proof(merkle.Leaf(common.HexToAddress(args[1])))
		if err != nil {
			return err
		}
		b, err := json.Marshal(proof)
		if err != nil {
			return err
		}
		fmt.Println(string(b))
		return nil
	},
}

func init() {
	merkleCmd.AddCommand(
		merkleRootCmd,
		merkleProofCmd,
	)
}

func loadAllowList(path string) (*merkle.Tree, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var addrs []common.Address
	if err := json.Unmarshal(b, &addrs); err != nil {
		return nil, err
	}
	return merkle.FromAddresses(addrs)
}
