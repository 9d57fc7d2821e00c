// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"

	"github.com/dothype/hypevm/client"
	"github.com/dothype/hypevm/merkle"
	"github.com/dothype/hypevm/vm"
)

var (
	registerYears      uint64
	registerValue      string
	registerMaxPrice   string
	registerSignedFile string
	registerMerkleFile string
	registerReserved   bool
	registerAuction    bool
)

func init() {
	registerCmd.PersistentFlags().Uint64Var(&registerYears, "years", 1, "registration length in years")
	registerCmd.PersistentFlags().StringVar(&registerValue, "value", "", "tokens to attach, the current quote when empty")
	registerCmd.PersistentFlags().StringVar(&registerMaxPrice, "max-price", "", "highest auction price accepted, the attached value when empty")
	registerCmd.PersistentFlags().StringVar(&registerSignedFile, "signed-file", "", "registration approval from sign-registration")
	registerCmd.PersistentFlags().StringVar(&registerMerkleFile, "merkle-file", "", "JSON allow-list of addresses to prove membership in")
	registerCmd.PersistentFlags().BoolVar(&registerReserved, "reserved", false, "claim a name reserved for the local key")
	registerCmd.PersistentFlags().BoolVar(&registerAuction, "auction", false, "buy the name from its auction batch")
}

var registerCmd = &cobra.Command{
	Use:   "register [options] [name]",
	Short: "Registers a name",
	Long: `
Registers a name through one of the authorization channels:

  --signed-file   a signer approval (the name comes from the approval)
  --merkle-file   an allow-list claim
  --reserved      a reservation for the local key
  --auction       an auction purchase, or an approved one with --signed-file

$ hype-cli register alice --merkle-file allowlist.json

`,
	RunE: registerFunc,
}

func registerFunc(cmd *cobra.Command, args []string) error {
	priv, err := crypto.LoadECDSA(privateKeyFile)
	if err != nil {
		return err
	}
	cli := client.New(uri, requestTimeout)

	if registerSignedFile != "" {
		if len(args) != 0 {
			return fmt.Errorf("expected exactly 0 arguments with --signed-file, got %d", len(args))
		}
		b, err := os.ReadFile(registerSignedFile)
		if err != nil {
			return err
		}
		signed := new(vm.SignedRegistrationArgs)
		if err := json.Unmarshal(b, signed); err != nil {
			return err
		}
		if signed.Registration == nil {
			return errors.New("approval has no registration")
		}
		value, err := registrationValue(signed.Registration.MaxPrice)
		if err != nil {
			return err
		}
		method := vm.RegisterWithSignature
		if registerAuction {
			method = vm.RegisterAuctionWithSignature
		}
		_, err = issueAs(priv, method, signed, client.WithValue(value), client.WithInfo(signed.Registration.Name))
		return err
	}

	name, err := getName(args, 1)
	if err != nil {
		return err
	}
	duration := yearsToDuration(registerYears)

	switch {
	case registerAuction:
		_, native, err := cli.AuctionQuote(name, duration)
		if err != nil {
			return err
		}
		value, err := registrationValue(native)
		if err != nil {
			return err
		}
		maxPrice := value
		if registerMaxPrice != "" {
			if maxPrice, err = parseAmount(registerMaxPrice); err != nil {
				return err
			}
		}
		_, err = issueAs(priv, vm.RegisterAuction, &vm.AuctionRegistrationArgs{
			Name:     name,
			Duration: duration,
			MaxPrice: hexOrDecimal(maxPrice),
		}, client.WithValue(value), client.WithInfo(name))
		return err

	case registerMerkleFile != "" || registerReserved:
		q, err := cli.Quote(name, duration)
		if err != nil {
			return err
		}
		value, err := registrationValue(q.Native)
		if err != nil {
			return err
		}
		if registerReserved {
			_, err = issueAs(priv, vm.RegisterReserved, &vm.NameDurationArgs{Name: name, Duration: duration},
				client.WithValue(value), client.WithInfo(name))
			return err
		}
		tree, err := loadAllowList(registerMerkleFile)
		if err != nil {
			return err
		}
		proof, err := tree.Proof(merkle.Leaf(crypto.PubkeyToAddress(priv.PublicKey)))
		if err != nil {
			return err
		}
		_, err = issueAs(priv, vm.RegisterWithMerkleProof, &vm.MerkleRegistrationArgs{
			Name:     name,
			Duration: duration,
			Proof:    proof,
		}, client.WithValue(value), client.WithInfo(name))
		return err
	}
	return errors.New("no authorization channel selected, see --help")
}

// registrationValue is the --value flag when set, otherwise [quoted].
func registrationValue(quoted *big.Int) (*big.Int, error) {
	if registerValue == "" {
		return quoted, nil
	}
	return parseAmount(registerValue)
}
