// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dothype/hypevm/chain"
	"github.com/dothype/hypevm/vm"
)

var (
	adminRenewal    bool
	oracleURL       string
	oraclePath      string
	oracleTTL       time.Duration
	oracleTimeout   time.Duration
	reservationFile string
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Owner-only controller settings",
}

var setPriceCmd = &cobra.Command{
	Use:   "set-price [options] <tier> <usd>",
	Short: "Sets the annual price of a character-count tier",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) != 2 {
			return fmt.Errorf("expected exactly 2 arguments, got %d", len(args))
		}
		tier, err := strconv.Atoi(args[0])
		if err != nil {
			return err
		}
		price, err := parseAmount(args[1])
		if err != nil {
			return err
		}
		method := vm.SetAnnualPrice
		if adminRenewal {
			method = vm.SetAnnualRenewalPrice
		}
		_, err = issue(method, &vm.TierPriceArgs{Tier: tier, Price: hexOrDecimal(price)})
		return err
	},
}

var setPricesCmd = &cobra.Command{
	Use:   fmt.Sprintf("set-prices [options] <%d usd prices>", chain.Tiers),
	Short: "Replaces the whole annual price table",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) != chain.Tiers {
			return fmt.Errorf("expected exactly %d arguments, got %d", chain.Tiers, len(args))
		}
		var prices [chain.Tiers]*math.HexOrDecimal256
		for i, a := range args {
			p, err := parseAmount(a)
			if err != nil {
				return err
			}
			prices[i] = hexOrDecimal(p)
		}
		method := vm.SetAllAnnualPrices
		if adminRenewal {
			method = vm.SetAllAnnualRenewalPrices
		}
		_, err := issue(method, &vm.TierPricesArgs{Prices: prices})
		return err
	},
}

var setOracleCmd = &cobra.Command{
	Use:   "set-oracle [options] [usd price]",
	Short: "Switches to a fixed token price or, with --url, an HTTP price feed",
	RunE: func(cmd *cobra.Command, args []string) error {
		args2 := &vm.OracleArgs{
			URL:     oracleURL,
			Path:    oraclePath,
			TTL:     uint64(oracleTTL.Seconds()),
			Timeout: uint64(oracleTimeout.Seconds()),
		}
		switch {
		case len(args) == 1 && oracleURL == "":
			p, err := parseAmount(args[0])
			if err != nil {
				return err
			}
			args2 = &vm.OracleArgs{Price: hexOrDecimal(p)}
		case len(args) != 0 || oracleURL == "":
			return fmt.Errorf("expected a price or --url")
		}
		_, err := issue(vm.SetPriceOracle, args2)
		return err
	},
}

func addressCmd(use string, short string, method string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [options] <address>",
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("expected exactly 1 argument, got %d", len(args))
			}
			if !common.IsHexAddress(args[0]) {
				return fmt.Errorf("invalid address %q", args[0])
			}
			_, err := issue(method, &vm.AddressArgs{Address: common.HexToAddress(args[0])})
			return err
		},
	}
}

var reserveCmd = &cobra.Command{
	Use:   "reserve [options] [<name> <address>]",
	Short: "Reserves names for addresses, the zero address clears a reservation",
	RunE: func(cmd *cobra.Command, args []string) error {
		if reservationFile != "" {
			b, err := os.ReadFile(reservationFile)
			if err != nil {
				return err
			}
			entries := map[string]common.Address{}
			if err := json.Unmarshal(b, &entries); err != nil {
				return err
			}
			rargs := &vm.ReservationsArgs{}
			for name, addr := range entries {
				rargs.Names = append(rargs.Names, name)
				rargs.Addresses = append(rargs.Addresses, addr)
			}
			_, err = issue(vm.SetReservations, rargs)
			return err
		}
		name, err := getName(args, 2)
		if err != nil {
			return err
		}
		if !common.IsHexAddress(args[1]) {
			return fmt.Errorf("invalid address %q", args[1])
		}
		_, err = issue(vm.SetReservation, &vm.ReservationArgs{Name: name, Address: common.HexToAddress(args[1])})
		return err
	},
}

var setMerkleRootCmd = &cobra.Command{
	Use:   "set-merkle-root [options] <root | allow-list file>",
	Short: "Sets the allow-list root",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return fmt.Errorf("expected exactly 1 argument, got %d", len(args))
		}
		var root common.Hash
		if _, err := os.Stat(args[0]); err == nil {
			tree, err := loadAllowList(args[0])
			if err != nil {
				return err
			}
			root = tree.Root()
		} else {
			root = common.HexToHash(args[0])
		}
		_, err := issue(vm.SetMerkleRoot, &vm.MerkleRootArgs{Root: root})
		return err
	},
}

var resetClaimsCmd = &cobra.Command{
	Use:   "reset-claims [options] <addresses...>",
	Short: "Lets addresses claim from the allow-list again",
	RunE: func(cmd *cobra.Command, args []string) error {
		addrs := make([]common.Address, 0, len(args))
		for _, a := range args {
			if !common.IsHexAddress(a) {
				return fmt.Errorf("invalid address %q", a)
			}
			addrs = append(addrs, common.HexToAddress(a))
		}
		_, err := issue(vm.ResetMerkleClaims, &vm.AddressesArgs{Addresses: addrs})
		return err
	},
}

var withdrawCmd = &cobra.Command{
	Use:   "withdraw [options]",
	Short: "Sweeps the controller balance to the owner",
	RunE: func(cmd *cobra.Command, args []string) error {
		reply, err := issue(vm.Withdraw, nil)
		if err != nil {
			return err
		}
		var amount math.HexOrDecimal256
		if err := json.Unmarshal(reply.Output, &amount); err != nil {
			return err
		}
		color.Green("withdrew %s", formatAmount((*big.Int)(&amount)))
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{setPriceCmd, setPricesCmd} {
		c.PersistentFlags().BoolVar(&adminRenewal, "renewal", false, "set renewal prices")
	}
	setOracleCmd.PersistentFlags().StringVar(&oracleURL, "url", "", "price feed URL")
	setOracleCmd.PersistentFlags().StringVar(&oraclePath, "path", "", "JSON path of the price in the feed response")
	setOracleCmd.PersistentFlags().DurationVar(&oracleTTL, "ttl", 30*time.Second, "how long a fetched price is reused")
	setOracleCmd.PersistentFlags().DurationVar(&oracleTimeout, "timeout", 5*time.Second, "timeout of one feed request")
	reserveCmd.PersistentFlags().StringVar(&reservationFile, "file", "", "JSON object of name to address reservations")

	adminCmd.AddCommand(
		setPriceCmd,
		setPricesCmd,
		setOracleCmd,
		addressCmd("set-recipient", "Sets the payment recipient", vm.SetPaymentRecipient),
		addressCmd("set-signer", "Sets the registration signer", vm.SetSigner),
		addressCmd("transfer-ownership", "Hands the controller to a new owner", vm.TransferOwnership),
		addressCmd("set-controller", "Sets the account allowed to mint names", vm.SetController),
		reserveCmd,
		setMerkleRootCmd,
		resetClaimsCmd,
		withdrawCmd,
	)
}
