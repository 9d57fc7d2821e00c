// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/dothype/hypevm/chain"
	"github.com/dothype/hypevm/oracle"
	"github.com/dothype/hypevm/tdata"
)

// Call methods
const (
	RegisterWithSignature        = "registerWithSignature"
	RegisterWithMerkleProof      = "registerWithMerkleProof"
	RegisterReserved             = "registerReserved"
	RegisterAuction              = "registerAuction"
	RegisterAuctionWithSignature = "registerAuctionWithSignature"
	Renew                        = "renew"
	Transfer                     = "transfer"

	SetAddr        = "setAddr"
	SetText        = "setText"
	SetContenthash = "setContenthash"
	ClearRecords   = "clearRecords"

	SetAnnualPrice            = "setAnnualPrice"
	SetAnnualRenewalPrice     = "setAnnualRenewalPrice"
	SetAllAnnualPrices        = "setAllAnnualPrices"
	SetAllAnnualRenewalPrices = "setAllAnnualRenewalPrices"
	SetPaymentRecipient       = "setPaymentRecipient"
	SetPriceOracle            = "setPriceOracle"
	SetSigner                 = "setSigner"
	SetReservation            = "setReservation"
	SetReservations           = "setReservations"
	SetMerkleRoot             = "setMerkleRoot"
	ResetMerkleClaims         = "resetMerkleClaims"
	Withdraw                  = "withdraw"
	TransferOwnership         = "transferOwnership"
	CreateAuctionBatch        = "createAuctionBatch"
	SetController             = "setController"
)

type SignedRegistrationArgs struct {
	Registration *tdata.Registration `json:"registration"`
	Signature    hexutil.Bytes       `json:"signature"`
}

type MerkleRegistrationArgs struct {
	Name     string        `json:"name"`
	Duration uint64        `json:"duration"`
	Proof    []common.Hash `json:"proof"`
}

type NameDurationArgs struct {
	Name     string `json:"name"`
	Duration uint64 `json:"duration"`
}

type AuctionRegistrationArgs struct {
	Name     string                `json:"name"`
	Duration uint64                `json:"duration"`
	MaxPrice *math.HexOrDecimal256 `json:"maxPrice,omitempty"`
}

type TransferArgs struct {
	Name string         `json:"name"`
	To   common.Address `json:"to"`
}

type SetAddrArgs struct {
	Name    string         `json:"name"`
	Address common.Address `json:"address"`
}

type SetTextArgs struct {
	Name  string `json:"name"`
	Key   string `json:"key"`
	Value string `json:"value"`
}

type SetContenthashArgs struct {
	Name string        `json:"name"`
	Hash hexutil.Bytes `json:"hash"`
}

type NameArgs struct {
	Name string `json:"name"`
}

type TierPriceArgs struct {
	Tier  int                   `json:"tier"`
	Price *math.HexOrDecimal256 `json:"price"`
}

type TierPricesArgs struct {
	Prices [chain.Tiers]*math.HexOrDecimal256 `json:"prices"`
}

type AddressArgs struct {
	Address common.Address `json:"address"`
}

type AddressesArgs struct {
	Addresses []common.Address `json:"addresses"`
}

// OracleArgs selects a fixed USD price when Price is set, otherwise an HTTP
// feed.
type OracleArgs struct {
	Price *math.HexOrDecimal256 `json:"price,omitempty"`
	URL   string                `json:"url,omitempty"`
	Path  string                `json:"path,omitempty"`
	// TTL and Timeout are in seconds.
	TTL     uint64 `json:"ttl,omitempty"`
	Timeout uint64 `json:"timeout,omitempty"`
}

type ReservationArgs struct {
	Name    string         `json:"name"`
	Address common.Address `json:"address"`
}

type ReservationsArgs struct {
	Names     []string         `json:"names"`
	Addresses []common.Address `json:"addresses"`
}

type MerkleRootArgs struct {
	Root common.Hash `json:"root"`
}

type AuctionBatchArgs struct {
	Names      []string              `json:"names"`
	StartPrice *math.HexOrDecimal256 `json:"startPrice"`
	EndPrice   *math.HexOrDecimal256 `json:"endPrice"`
	Duration   uint64                `json:"duration"`
	StartTime  uint64                `json:"startTime,omitempty"`
}

// handler runs one decoded method against the call context and returns its
// JSON-encodable result.
type handler func(vm *VM, t *chain.TransactionContext, args json.RawMessage) (interface{}, error)

var handlers = map[string]handler{
	RegisterWithSignature: func(vm *VM, t *chain.TransactionContext, raw json.RawMessage) (interface{}, error) {
		var args SignedRegistrationArgs
		if err := decodeArgs(raw, &args); err != nil {
			return nil, err
		}
		if args.Registration == nil {
			return nil, fmt.Errorf("%w: missing registration", ErrInvalidArgs)
		}
		return vm.controller.RegisterWithSignature(t, args.Registration, args.Signature)
	},
	RegisterWithMerkleProof: func(vm *VM, t *chain.TransactionContext, raw json.RawMessage) (interface{}, error) {
		var args MerkleRegistrationArgs
		if err := decodeArgs(raw, &args); err != nil {
			return nil, err
		}
		return vm.controller.RegisterWithMerkleProof(t, args.Name, args.Duration, args.Proof)
	},
	RegisterReserved: func(vm *VM, t *chain.TransactionContext, raw json.RawMessage) (interface{}, error) {
		var args NameDurationArgs
		if err := decodeArgs(raw, &args); err != nil {
			return nil, err
		}
		return vm.controller.RegisterReserved(t, args.Name, args.Duration)
	},
	RegisterAuction: func(vm *VM, t *chain.TransactionContext, raw json.RawMessage) (interface{}, error) {
		var args AuctionRegistrationArgs
		if err := decodeArgs(raw, &args); err != nil {
			return nil, err
		}
		return vm.controller.RegisterAuction(t, args.Name, args.Duration, bigOrNil(args.MaxPrice))
	},
	RegisterAuctionWithSignature: func(vm *VM, t *chain.TransactionContext, raw json.RawMessage) (interface{}, error) {
		var args SignedRegistrationArgs
		if err := decodeArgs(raw, &args); err != nil {
			return nil, err
		}
		if args.Registration == nil {
			return nil, fmt.Errorf("%w: missing registration", ErrInvalidArgs)
		}
		return vm.controller.RegisterAuctionWithSignature(t, args.Registration, args.Signature)
	},
	Renew: func(vm *VM, t *chain.TransactionContext, raw json.RawMessage) (interface{}, error) {
		var args NameDurationArgs
		if err := decodeArgs(raw, &args); err != nil {
			return nil, err
		}
		return vm.controller.Renew(t, args.Name, args.Duration)
	},
	Transfer: func(vm *VM, t *chain.TransactionContext, raw json.RawMessage) (interface{}, error) {
		var args TransferArgs
		if err := decodeArgs(raw, &args); err != nil {
			return nil, err
		}
		if err := nonPayable(t); err != nil {
			return nil, err
		}
		return nil, vm.registry.Transfer(t, vm.registry.Node(args.Name), args.To)
	},

	SetAddr: func(vm *VM, t *chain.TransactionContext, raw json.RawMessage) (interface{}, error) {
		var args SetAddrArgs
		if err := decodeArgs(raw, &args); err != nil {
			return nil, err
		}
		if err := nonPayable(t); err != nil {
			return nil, err
		}
		return nil, vm.resolver.SetAddr(t, vm.registry.Node(args.Name), args.Address)
	},
	SetText: func(vm *VM, t *chain.TransactionContext, raw json.RawMessage) (interface{}, error) {
		var args SetTextArgs
		if err := decodeArgs(raw, &args); err != nil {
			return nil, err
		}
		if err := nonPayable(t); err != nil {
			return nil, err
		}
		return nil, vm.resolver.SetText(t, vm.registry.Node(args.Name), args.Key, args.Value)
	},
	SetContenthash: func(vm *VM, t *chain.TransactionContext, raw json.RawMessage) (interface{}, error) {
		var args SetContenthashArgs
		if err := decodeArgs(raw, &args); err != nil {
			return nil, err
		}
		if err := nonPayable(t); err != nil {
			return nil, err
		}
		return nil, vm.resolver.SetContenthash(t, vm.registry.Node(args.Name), args.Hash)
	},
	ClearRecords: func(vm *VM, t *chain.TransactionContext, raw json.RawMessage) (interface{}, error) {
		var args NameArgs
		if err := decodeArgs(raw, &args); err != nil {
			return nil, err
		}
		if err := nonPayable(t); err != nil {
			return nil, err
		}
		return vm.resolver.ClearRecords(t, vm.registry.Node(args.Name))
	},

	SetAnnualPrice: func(vm *VM, t *chain.TransactionContext, raw json.RawMessage) (interface{}, error) {
		var args TierPriceArgs
		if err := decodeArgs(raw, &args); err != nil {
			return nil, err
		}
		return nil, vm.controller.SetAnnualPrice(t, args.Tier, bigOrNil(args.Price))
	},
	SetAnnualRenewalPrice: func(vm *VM, t *chain.TransactionContext, raw json.RawMessage) (interface{}, error) {
		var args TierPriceArgs
		if err := decodeArgs(raw, &args); err != nil {
			return nil, err
		}
		return nil, vm.controller.SetAnnualRenewalPrice(t, args.Tier, bigOrNil(args.Price))
	},
	SetAllAnnualPrices: func(vm *VM, t *chain.TransactionContext, raw json.RawMessage) (interface{}, error) {
		var args TierPricesArgs
		if err := decodeArgs(raw, &args); err != nil {
			return nil, err
		}
		return nil, vm.controller.SetAllAnnualPrices(t, tierTable(args.Prices))
	},
	SetAllAnnualRenewalPrices: func(vm *VM, t *chain.TransactionContext, raw json.RawMessage) (interface{}, error) {
		var args TierPricesArgs
		if err := decodeArgs(raw, &args); err != nil {
			return nil, err
		}
		return nil, vm.controller.SetAllAnnualRenewalPrices(t, tierTable(args.Prices))
	},
	SetPaymentRecipient: func(vm *VM, t *chain.TransactionContext, raw json.RawMessage) (interface{}, error) {
		var args AddressArgs
		if err := decodeArgs(raw, &args); err != nil {
			return nil, err
		}
		return nil, vm.controller.SetPaymentRecipient(t, args.Address)
	},
	SetPriceOracle: func(vm *VM, t *chain.TransactionContext, raw json.RawMessage) (interface{}, error) {
		var args OracleArgs
		if err := decodeArgs(raw, &args); err != nil {
			return nil, err
		}
		spec, err := oracleSpec(&args)
		if err != nil {
			return nil, err
		}
		return nil, vm.controller.SetPriceOracle(t, spec)
	},
	SetSigner: func(vm *VM, t *chain.TransactionContext, raw json.RawMessage) (interface{}, error) {
		var args AddressArgs
		if err := decodeArgs(raw, &args); err != nil {
			return nil, err
		}
		return nil, vm.controller.SetSigner(t, args.Address)
	},
	SetReservation: func(vm *VM, t *chain.TransactionContext, raw json.RawMessage) (interface{}, error) {
		var args ReservationArgs
		if err := decodeArgs(raw, &args); err != nil {
			return nil, err
		}
		return nil, vm.controller.SetReservation(t, args.Name, args.Address)
	},
	SetReservations: func(vm *VM, t *chain.TransactionContext, raw json.RawMessage) (interface{}, error) {
		var args ReservationsArgs
		if err := decodeArgs(raw, &args); err != nil {
			return nil, err
		}
		return nil, vm.controller.SetReservations(t, args.Names, args.Addresses)
	},
	SetMerkleRoot: func(vm *VM, t *chain.TransactionContext, raw json.RawMessage) (interface{}, error) {
		var args MerkleRootArgs
		if err := decodeArgs(raw, &args); err != nil {
			return nil, err
		}
		return nil, vm.controller.SetMerkleRoot(t, args.Root)
	},
	ResetMerkleClaims: func(vm *VM, t *chain.TransactionContext, raw json.RawMessage) (interface{}, error) {
		var args AddressesArgs
		if err := decodeArgs(raw, &args); err != nil {
			return nil, err
		}
		return nil, vm.controller.ResetMerkleClaims(t, args.Addresses)
	},
	Withdraw: func(vm *VM, t *chain.TransactionContext, _ json.RawMessage) (interface{}, error) {
		amount, err := vm.controller.Withdraw(t)
		if err != nil {
			return nil, err
		}
		return (*math.HexOrDecimal256)(amount), nil
	},
	TransferOwnership: func(vm *VM, t *chain.TransactionContext, raw json.RawMessage) (interface{}, error) {
		var args AddressArgs
		if err := decodeArgs(raw, &args); err != nil {
			return nil, err
		}
		return nil, vm.controller.TransferOwnership(t, args.Address)
	},
	CreateAuctionBatch: func(vm *VM, t *chain.TransactionContext, raw json.RawMessage) (interface{}, error) {
		var args AuctionBatchArgs
		if err := decodeArgs(raw, &args); err != nil {
			return nil, err
		}
		return vm.controller.CreateAuctionBatch(
			t, args.Names, bigOrNil(args.StartPrice), bigOrNil(args.EndPrice), args.Duration, args.StartTime,
		)
	},
	SetController: func(vm *VM, t *chain.TransactionContext, raw json.RawMessage) (interface{}, error) {
		var args AddressArgs
		if err := decodeArgs(raw, &args); err != nil {
			return nil, err
		}
		if err := nonPayable(t); err != nil {
			return nil, err
		}
		return nil, vm.registry.SetController(t, args.Address)
	},
}

func decodeArgs(raw json.RawMessage, dst interface{}) error {
	if len(raw) == 0 {
		return fmt.Errorf("%w: missing arguments", ErrInvalidArgs)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArgs, err)
	}
	return nil
}

// nonPayable rejects value sent to calls outside the controller, which never
// move funds.
func nonPayable(t *chain.TransactionContext) error {
	if t.Value.Sign() != 0 {
		return chain.ErrNonPayable
	}
	return nil
}

func bigOrNil(v *math.HexOrDecimal256) *big.Int {
	if v == nil {
		return nil
	}
	return new(big.Int).Set((*big.Int)(v))
}

func tierTable(prices [chain.Tiers]*math.HexOrDecimal256) [chain.Tiers]*big.Int {
	var out [chain.Tiers]*big.Int
	for i, p := range prices {
		out[i] = bigOrNil(p)
	}
	return out
}

func oracleSpec(args *OracleArgs) (*oracle.Spec, error) {
	var spec *oracle.Spec
	if args.Price != nil {
		spec = oracle.FixedSpec(bigOrNil(args.Price))
	} else {
		spec = oracle.FeedSpec(oracle.FeedConfig{
			URL:     args.URL,
			Path:    args.Path,
			TTL:     time.Duration(args.TTL) * time.Second,
			Timeout: time.Duration(args.Timeout) * time.Second,
		})
	}
	if err := spec.Verify(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOracle, err)
	}
	return spec, nil
}
