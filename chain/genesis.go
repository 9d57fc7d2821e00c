// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"encoding/json"
	"fmt"
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/dothype/hypevm/parser"
)

const (
	Year = 365 * 24 * 60 * 60

	DefaultChainID = 999
	// Tiers is the number of character-count pricing buckets.
	Tiers = parser.MaxPriceTier
)

type Allocation struct {
	Address common.Address        `json:"address"`
	Balance *math.HexOrDecimal256 `json:"balance"`
}

// Payee receives [Shares] parts of everything paid to its Split.
type Payee struct {
	Address common.Address `json:"address"`
	Shares  uint64         `json:"shares"`
}

// Split forwards every payment received by Address to its payees.
type Split struct {
	Address common.Address `json:"address"`
	Payees  []*Payee       `json:"payees"`
}

type Genesis struct {
	// ChainID and Controller bind signatures to this deployment.
	ChainID    uint64         `json:"chainId"`
	Controller common.Address `json:"controller"`

	TLD string `json:"tld"`

	// MinRegistrationLength is the minimum number of seconds a name can be
	// registered for. Registrations up to this length are billed entirely
	// at the registration rate.
	MinRegistrationLength uint64 `json:"minRegistrationLength"`
	// GracePeriod is the number of seconds after expiry during which a
	// name can still be renewed but not registered.
	GracePeriod uint64 `json:"gracePeriod"`

	// Administrative principals
	Owner            common.Address `json:"owner"`
	Signer           common.Address `json:"signer"`
	PaymentRecipient common.Address `json:"paymentRecipient"`

	// Annual USD prices (18 decimals) indexed by tier-1
	AnnualPrices        [Tiers]*math.HexOrDecimal256 `json:"annualPrices"`
	AnnualRenewalPrices [Tiers]*math.HexOrDecimal256 `json:"annualRenewalPrices"`

	// USD price of one native token (18 decimals), used by the fixed oracle
	HypePrice *math.HexOrDecimal256 `json:"hypePrice"`

	Allocations []*Allocation `json:"allocations"`

	// Splits are typically used as the payment recipient.
	Splits []*Split `json:"splits,omitempty"`
}

func usd(dollars int64) *math.HexOrDecimal256 {
	v := new(big.Int).Mul(big.NewInt(dollars), big.NewInt(1e18))
	return (*math.HexOrDecimal256)(v)
}

func DefaultGenesis() *Genesis {
	return &Genesis{
		ChainID:               DefaultChainID,
		Controller:            common.HexToAddress("0x000000000000000000000000000000000000d07e"),
		TLD:                   parser.DefaultTLD,
		MinRegistrationLength: Year,
		GracePeriod:           90 * 24 * 60 * 60,
		AnnualPrices: [Tiers]*math.HexOrDecimal256{
			usd(1000), usd(500), usd(100), usd(25), usd(5),
		},
		AnnualRenewalPrices: [Tiers]*math.HexOrDecimal256{
			usd(500), usd(250), usd(50), usd(15), usd(3),
		},
		HypePrice: usd(1),
	}
}

func LoadGenesis(path string) (*Genesis, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	g := new(Genesis)
	if err := json.Unmarshal(b, g); err != nil {
		return nil, err
	}
	return g, g.Verify()
}

func (g *Genesis) Verify() error {
	if err := parser.CheckName(g.TLD); err != nil {
		return fmt.Errorf("%w: tld %q", err, g.TLD)
	}
	if g.MinRegistrationLength == 0 {
		return fmt.Errorf("%w: minRegistrationLength must be positive", ErrInvalidDuration)
	}
	if g.Controller == (common.Address{}) {
		return fmt.Errorf("%w: controller", ErrZeroAddress)
	}
	for _, a := range g.Allocations {
		if a.Balance == nil || (*big.Int)(a.Balance).Sign() < 0 {
			return fmt.Errorf("invalid allocation for %s", a.Address)
		}
	}
	return g.verifySplits()
}

// verifySplits rejects splits that could forward funds back into a split.
func (g *Genesis) verifySplits() error {
	splits := make(map[common.Address]struct{}, len(g.Splits))
	for _, s := range g.Splits {
		if s.Address == (common.Address{}) || s.Address == g.Controller {
			return fmt.Errorf("%w: split %s", ErrInvalidSplit, s.Address)
		}
		if _, ok := splits[s.Address]; ok {
			return fmt.Errorf("%w: duplicate split %s", ErrInvalidSplit, s.Address)
		}
		splits[s.Address] = struct{}{}
	}
	for _, s := range g.Splits {
		if len(s.Payees) == 0 {
			return fmt.Errorf("%w: split %s has no payees", ErrInvalidSplit, s.Address)
		}
		for _, p := range s.Payees {
			if p.Shares == 0 || p.Address == (common.Address{}) {
				return fmt.Errorf("%w: payee %s of %s", ErrInvalidSplit, p.Address, s.Address)
			}
			if _, ok := splits[p.Address]; ok {
				return fmt.Errorf("%w: %s pays into split %s", ErrInvalidSplit, s.Address, p.Address)
			}
		}
	}
	return nil
}

// Price returns the tier price from a genesis table, or zero when unset.
func Price(table [Tiers]*math.HexOrDecimal256, tier int) *big.Int {
	v := table[tier-1]
	if v == nil {
		return new(big.Int)
	}
	return new(big.Int).Set((*big.Int)(v))
}
