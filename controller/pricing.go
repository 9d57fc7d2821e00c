// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package controller

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ava-labs/avalanchego/database"

	"github.com/dothype/hypevm/chain"
	"github.com/dothype/hypevm/oracle"
	"github.com/dothype/hypevm/parser"
)

var year = big.NewInt(chain.Year)

// tierPrices returns the registration and renewal rates for [name]. Both must
// be configured.
func tierPrices(db database.KeyValueReader, name string) (*big.Int, *big.Int, error) {
	tier := parser.Tier(name)
	if tier == 0 {
		return nil, nil, chain.ErrInvalidCharacterCount
	}
	reg, err := AnnualPrice(db, tier)
	if err != nil {
		return nil, nil, err
	}
	renew, err := AnnualRenewalPrice(db, tier)
	if err != nil {
		return nil, nil, err
	}
	if reg.Sign() == 0 || renew.Sign() == 0 {
		return nil, nil, fmt.Errorf("%w: tier %d", chain.ErrPricingNotSet, tier)
	}
	return reg, renew, nil
}

// RegistrationUSD is the USD cost of registering [name] for [duration]
// seconds. The first [minReg] seconds are billed at the registration rate and
// the remainder at the renewal rate.
func RegistrationUSD(db database.KeyValueReader, name string, duration uint64, minReg uint64) (*big.Int, error) {
	reg, renew, err := tierPrices(db, name)
	if err != nil {
		return nil, err
	}
	d := new(big.Int).SetUint64(duration)
	if duration <= minReg {
		p := new(big.Int).Mul(reg, d)
		return p.Quo(p, year), nil
	}
	rest := new(big.Int).SetUint64(duration - minReg)
	p := new(big.Int).Mul(renew, rest)
	p.Quo(p, year)
	return p.Add(p, reg), nil
}

// RenewalUSD bills the whole of [duration] at the renewal rate.
func RenewalUSD(db database.KeyValueReader, name string, duration uint64) (*big.Int, error) {
	_, renew, err := tierPrices(db, name)
	if err != nil {
		return nil, err
	}
	p := new(big.Int).Mul(renew, new(big.Int).SetUint64(duration))
	return p.Quo(p, year), nil
}

// PriceOracle returns the oracle stored in [db], or the startup oracle when the
// owner never replaced it.
func (c *Controller) PriceOracle(db database.KeyValueReader) (oracle.PriceOracle, error) {
	raw, err := db.Get(settingKey(oracleSetting))
	if errors.Is(err, database.ErrNotFound) {
		if c.oracle == nil {
			return nil, fmt.Errorf("%w: no oracle configured", chain.ErrOracleFailure)
		}
		return c.oracle, nil
	}
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stored != nil && bytes.Equal(raw, c.storedSpec) {
		return c.stored, nil
	}
	spec := new(oracle.Spec)
	if _, err := chain.Unmarshal(raw, spec); err != nil {
		return nil, fmt.Errorf("%w: %v", chain.ErrOracleFailure, err)
	}
	o, err := spec.Build()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", chain.ErrOracleFailure, err)
	}
	oracle.Close(c.stored)
	c.storedSpec = append([]byte(nil), raw...)
	c.stored = o
	return o, nil
}

// Close releases the oracle built from stored state.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	oracle.Close(c.stored)
	c.stored, c.storedSpec = nil, nil
}

func (c *Controller) convert(ctx context.Context, db database.KeyValueReader, usd *big.Int) (*big.Int, error) {
	o, err := c.PriceOracle(db)
	if err != nil {
		return nil, err
	}
	v, err := o.USDToHype(ctx, usd)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", chain.ErrOracleFailure, err)
	}
	return v, nil
}

// CalculatePrice is the native cost of registering [name] for [duration].
func (c *Controller) CalculatePrice(ctx context.Context, db database.KeyValueReader, name string, duration uint64) (*big.Int, error) {
	usd, err := RegistrationUSD(db, name, duration, c.minReg)
	if err != nil {
		return nil, err
	}
	return c.convert(ctx, db, usd)
}

// CalculateRenewalPrice is the native cost of extending [name] by [duration].
func (c *Controller) CalculateRenewalPrice(ctx context.Context, db database.KeyValueReader, name string, duration uint64) (*big.Int, error) {
	usd, err := RenewalUSD(db, name, duration)
	if err != nil {
		return nil, err
	}
	return c.convert(ctx, db, usd)
}

// Quote is a price in both USD and the native currency.
type Quote struct {
	USD    *big.Int `json:"usd"`
	Native *big.Int `json:"native"`
}

// QuotePrice prices a new registration without charging for it.
func (c *Controller) QuotePrice(ctx context.Context, db database.KeyValueReader, name string, duration uint64) (*Quote, error) {
	usd, err := RegistrationUSD(db, name, duration, c.minReg)
	if err != nil {
		return nil, err
	}
	native, err := c.convert(ctx, db, usd)
	if err != nil {
		return nil, err
	}
	return &Quote{USD: usd, Native: native}, nil
}

// QuoteRenewal prices a renewal without charging for it.
func (c *Controller) QuoteRenewal(ctx context.Context, db database.KeyValueReader, name string, duration uint64) (*Quote, error) {
	usd, err := RenewalUSD(db, name, duration)
	if err != nil {
		return nil, err
	}
	native, err := c.convert(ctx, db, usd)
	if err != nil {
		return nil, err
	}
	return &Quote{USD: usd, Native: native}, nil
}
