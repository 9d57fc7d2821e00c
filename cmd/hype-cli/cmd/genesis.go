// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dothype/hypevm/chain"
)

var (
	genesisFile string

	chainID           uint64
	tld               string
	owner             string
	signer            string
	hypePrice         string
	genesisController string
)

func init() {
	genesisCmd.PersistentFlags().StringVar(
		&genesisFile,
		"genesis-file",
		filepath.Join(workDir, "genesis.json"),
		"genesis file path",
	)
	genesisCmd.PersistentFlags().Uint64Var(
		&chainID,
		"chain-id",
		chain.DefaultChainID,
		"chain ID bound into registration signatures",
	)
	genesisCmd.PersistentFlags().StringVar(
		&tld,
		"tld",
		"",
		"top-level domain, the default when empty",
	)
	genesisCmd.PersistentFlags().StringVar(
		&owner,
		"owner",
		"",
		"administrative owner address",
	)
	genesisCmd.PersistentFlags().StringVar(
		&signer,
		"signer",
		"",
		"registration signer address",
	)
	genesisCmd.PersistentFlags().StringVar(
		&genesisController,
		"controller",
		"",
		"controller account address, the default when empty",
	)
	genesisCmd.PersistentFlags().StringVar(
		&hypePrice,
		"hype-price",
		"",
		"USD price of one token for the fixed oracle, e.g. 1.25",
	)
}

var genesisCmd = &cobra.Command{
	Use:   "genesis [allocations file] [options]",
	Short: "Creates a new genesis in the default location",
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return errors.New("invalid args")
		}
		if chainID == 0 {
			return errors.New("chain ID must be positive")
		}
		return nil
	},
	RunE: genesisFunc,
}

func genesisFunc(cmd *cobra.Command, args []string) error {
	genesis := chain.DefaultGenesis()
	genesis.ChainID = chainID
	if tld != "" {
		genesis.TLD = tld
	}
	if owner != "" {
		genesis.Owner = common.HexToAddress(owner)
	}
	if signer != "" {
		genesis.Signer = common.HexToAddress(signer)
	}
	if genesisController != "" {
		genesis.Controller = common.HexToAddress(genesisController)
	}
	if hypePrice != "" {
		p, err := parseAmount(hypePrice)
		if err != nil {
			return err
		}
		genesis.HypePrice = hexOrDecimal(p)
	}

	a, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	allocs := []*chain.Allocation{}
	if err := json.Unmarshal(a, &allocs); err != nil {
		return err
	}
	genesis.Allocations = allocs
	if err := genesis.Verify(); err != nil {
		return err
	}

	b, err := json.MarshalIndent(genesis, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(genesisFile, b, fsModeWrite); err != nil {
		return err
	}
	color.Green("created genesis and saved to %s", genesisFile)
	return nil
}
