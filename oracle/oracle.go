// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package oracle converts USD amounts into the native currency.
package oracle

import (
	"context"
	"errors"
	"math/big"
)

var (
	ErrInvalidRate   = errors.New("invalid exchange rate")
	ErrInvalidAmount = errors.New("invalid usd amount")

	// One is 1.0 in 18-decimal fixed point.
	One = big.NewInt(1e18)
)

// PriceOracle converts an 18-decimal USD amount into an 18-decimal native
// amount at the current rate. Failures must not fall back to a default.
type PriceOracle interface {
	USDToHype(ctx context.Context, usd *big.Int) (*big.Int, error)
}

// Convert returns floor(usd * 1e18 / price), where [price] is the USD value of
// one native token.
func Convert(usd *big.Int, price *big.Int) (*big.Int, error) {
	if price == nil || price.Sign() <= 0 {
		return nil, ErrInvalidRate
	}
	if usd == nil || usd.Sign() < 0 {
		return nil, ErrInvalidAmount
	}
	n := new(big.Int).Mul(usd, One)
	return n.Quo(n, price), nil
}

var _ PriceOracle = &Fixed{}

// Fixed converts at a constant rate.
type Fixed struct {
	price *big.Int
}

func NewFixed(price *big.Int) (*Fixed, error) {
	if price == nil || price.Sign() <= 0 {
		return nil, ErrInvalidRate
	}
	return &Fixed{price: new(big.Int).Set(price)}, nil
}

func (f *Fixed) USDToHype(_ context.Context, usd *big.Int) (*big.Int, error) {
	return Convert(usd, f.price)
}

// Price is the USD value of one native token.
func (f *Fixed) Price() *big.Int {
	return new(big.Int).Set(f.price)
}
