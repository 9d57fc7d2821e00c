// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dothype/hypevm/client"
	"github.com/dothype/hypevm/tdata"
	"github.com/dothype/hypevm/vm"
)

var (
	signYears    uint64
	signMaxPrice string
	signTTL      uint64
	signAuction  bool
	signOut      string
)

func init() {
	signRegistrationCmd.PersistentFlags().Uint64Var(&signYears, "years", 1, "registration length in years")
	signRegistrationCmd.PersistentFlags().StringVar(&signMaxPrice, "max-price", "", "highest token price the owner accepts, the current quote when empty")
	signRegistrationCmd.PersistentFlags().Uint64Var(&signTTL, "ttl", 3600, "seconds until the approval expires")
	signRegistrationCmd.PersistentFlags().BoolVar(&signAuction, "auction", false, "approve an auction purchase")
	signRegistrationCmd.PersistentFlags().StringVar(&signOut, "out", "", "file to write the approval to, stdout when empty")
}

var signRegistrationCmd = &cobra.Command{
	Use:   "sign-registration [options] <name> <owner>",
	Short: "Signs a registration approval with the signer key",
	Long: `
Signs a registration approval for <owner> with the local key, which must be
the configured registration signer. The approval embeds the owner's current
nonce and is consumed by "register --signed-file".

$ hype-cli sign-registration alice 0x... --out alice.json

`,
	RunE: signRegistrationFunc,
}

func signRegistrationFunc(cmd *cobra.Command, args []string) error {
	name, err := getName(args, 2)
	if err != nil {
		return err
	}
	if !common.IsHexAddress(args[1]) {
		return fmt.Errorf("invalid owner %q", args[1])
	}
	owner := common.HexToAddress(args[1])
	priv, err := crypto.LoadECDSA(privateKeyFile)
	if err != nil {
		return err
	}

	cli := client.New(uri, requestTimeout)
	g, err := cli.Genesis()
	if err != nil {
		return err
	}
	cfg, err := cli.Config()
	if err != nil {
		return err
	}
	if signer := crypto.PubkeyToAddress(priv.PublicKey); signer != cfg.Config.Signer {
		color.Red("local key %s is not the configured signer %s", signer, cfg.Config.Signer)
	}
	nonce, err := cli.Nonce(owner)
	if err != nil {
		return err
	}

	duration := yearsToDuration(signYears)
	r := &tdata.Registration{
		Name:     name,
		Owner:    owner,
		Duration: duration,
		Deadline: cfg.Time + signTTL,
	}
	primaryType := tdata.Register
	if signAuction {
		primaryType = tdata.AuctionRegister
	}
	switch {
	case signMaxPrice != "":
		if r.MaxPrice, err = parseAmount(signMaxPrice); err != nil {
			return err
		}
	case signAuction:
		if _, r.MaxPrice, err = cli.AuctionQuote(name, duration); err != nil {
			return err
		}
	default:
		q, err := cli.Quote(name, duration)
		if err != nil {
			return err
		}
		r.MaxPrice = q.Native
	}

	sig, err := client.SignRegistration(g, primaryType, r, nonce, priv)
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(&vm.SignedRegistrationArgs{Registration: r, Signature: sig}, "", "  ")
	if err != nil {
		return err
	}
	if signOut == "" {
		fmt.Println(string(b))
		return nil
	}
	if err := os.WriteFile(signOut, b, fsModeWrite); err != nil {
		return err
	}
	color.Green("signed %s approval for %s (nonce=%d maxPrice=%s) and saved to %s", primaryType, owner, nonce, formatAmount(r.MaxPrice), signOut)
	return nil
}
