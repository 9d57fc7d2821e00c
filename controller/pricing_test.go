// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package controller

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dothype/hypevm/chain"
	"github.com/dothype/hypevm/oracle"
)

type failingOracle struct{}

func (failingOracle) USDToHype(context.Context, *big.Int) (*big.Int, error) {
	return nil, errors.New("feed offline")
}

func TestCalculatePrice(t *testing.T) {
	t.Parallel()

	e := newTestEnv(t)
	ctx := context.Background()
	half := uint64(chain.Year / 2)
	tt := []struct {
		name     string
		label    string
		duration uint64
		price    *big.Int
		err      error
	}{
		{name: "one char one year", label: "a", duration: chain.Year, price: dollars(1000)},
		{name: "two chars one year", label: "ab", duration: chain.Year, price: dollars(500)},
		{name: "three chars one year", label: "abc", duration: chain.Year, price: dollars(100)},
		{name: "four chars one year", label: "abcd", duration: chain.Year, price: dollars(25)},
		{name: "long name one year", label: "abcdefghij", duration: chain.Year, price: dollars(5)},
		{name: "multibyte counts runes", label: "äöü", duration: chain.Year, price: dollars(100)},
		{name: "half year is prorated", label: "abc", duration: half, price: dollars(50)},
		{name: "later years at renewal rate", label: "abc", duration: 3 * chain.Year, price: dollars(100 + 2*50)},
		{name: "partial extra year", label: "abcde", duration: chain.Year + half, price: new(big.Int).Add(dollars(5), new(big.Int).Quo(dollars(3), big.NewInt(2)))},
		{name: "zero duration", label: "abc", duration: 0, price: new(big.Int)},
		{name: "empty name", label: "", duration: chain.Year, err: chain.ErrInvalidCharacterCount},
	}
	for _, tv := range tt {
		price, err := e.c.CalculatePrice(ctx, e.db, tv.label, tv.duration)
		if !errors.Is(err, tv.err) {
			t.Fatalf("%s: expected error %v, got %v", tv.name, tv.err, err)
		}
		if tv.err != nil {
			continue
		}
		if price.Cmp(tv.price) != 0 {
			t.Fatalf("%s: expected price %s, got %s", tv.name, tv.price, price)
		}
	}
}

func TestCalculatePriceFloors(t *testing.T) {
	t.Parallel()

	e := newTestEnv(t)
	// $100 for one second is 100e18/31536000, which does not divide evenly
	price, err := e.c.CalculatePrice(context.Background(), e.db, "abc", 1)
	require.NoError(t, err)
	want := new(big.Int).Quo(dollars(100), big.NewInt(chain.Year))
	require.Equal(t, want, price)
}

func TestOneDollarTier(t *testing.T) {
	t.Parallel()

	e := newTestEnv(t)
	require.NoError(t, e.call(e.owner.addr, nil, func(t *chain.TransactionContext) error {
		if err := e.c.SetAnnualPrice(t, 3, ether); err != nil {
			return err
		}
		return e.c.SetAnnualRenewalPrice(t, 3, ether)
	}))
	price, err := e.c.CalculatePrice(context.Background(), e.db, "abc", 365*day)
	require.NoError(t, err)
	require.Equal(t, ether, price)
}

func TestPricingNotSet(t *testing.T) {
	t.Parallel()

	e := newTestEnv(t)
	require.NoError(t, e.call(e.owner.addr, nil, func(t *chain.TransactionContext) error {
		return e.c.SetAnnualRenewalPrice(t, 2, new(big.Int))
	}))
	ctx := context.Background()
	_, err := e.c.CalculatePrice(ctx, e.db, "ab", chain.Year)
	require.ErrorIs(t, err, chain.ErrPricingNotSet)
	_, err = e.c.CalculateRenewalPrice(ctx, e.db, "ab", chain.Year)
	require.ErrorIs(t, err, chain.ErrPricingNotSet)

	// Other tiers are unaffected
	_, err = e.c.CalculatePrice(ctx, e.db, "abc", chain.Year)
	require.NoError(t, err)
}

func TestCalculateRenewalPrice(t *testing.T) {
	t.Parallel()

	e := newTestEnv(t)
	ctx := context.Background()
	price, err := e.c.CalculateRenewalPrice(ctx, e.db, "abc", 2*chain.Year)
	require.NoError(t, err)
	require.Equal(t, dollars(100), price)

	// No registration-rate component even for short renewals
	price, err = e.c.CalculateRenewalPrice(ctx, e.db, "a", chain.Year/2)
	require.NoError(t, err)
	require.Equal(t, dollars(250), price)

	_, err = e.c.CalculateRenewalPrice(ctx, e.db, "", chain.Year)
	require.ErrorIs(t, err, chain.ErrInvalidCharacterCount)
}

func TestQuoteUsesOracle(t *testing.T) {
	t.Parallel()

	e := newTestEnv(t)
	require.NoError(t, e.call(e.owner.addr, nil, func(t *chain.TransactionContext) error {
		return e.c.SetPriceOracle(t, oracle.FixedSpec(dollars(2)))
	}))

	q, err := e.c.QuotePrice(context.Background(), e.db, "abc", chain.Year)
	require.NoError(t, err)
	require.Equal(t, dollars(100), q.USD)
	require.Equal(t, dollars(50), q.Native)

	q, err = e.c.QuoteRenewal(context.Background(), e.db, "abcd", chain.Year)
	require.NoError(t, err)
	require.Equal(t, dollars(15), q.USD)
	require.Equal(t, new(big.Int).Quo(dollars(15), big.NewInt(2)), q.Native)
}

func TestOracleFailureIsFatal(t *testing.T) {
	t.Parallel()

	e := newTestEnv(t)
	e.c.oracle = failingOracle{}
	_, err := e.c.CalculatePrice(context.Background(), e.db, "abc", chain.Year)
	require.ErrorIs(t, err, chain.ErrOracleFailure)
	require.Equal(t, chain.KindEconomic, chain.Classify(err))

	_, err = e.registerSigned("abc", e.alice)
	require.ErrorIs(t, err, chain.ErrOracleFailure)
	require.Equal(t, initial, e.balance(e.alice.addr))
}

func TestStoredOracle(t *testing.T) {
	t.Parallel()

	e := newTestEnv(t)
	ctx := context.Background()

	// An aborted call leaves the startup oracle in place
	err := e.call(e.owner.addr, nil, func(t *chain.TransactionContext) error {
		if err := e.c.SetPriceOracle(t, oracle.FixedSpec(dollars(4))); err != nil {
			return err
		}
		return errors.New("later write failed")
	})
	require.Error(t, err)
	price, err := e.c.CalculatePrice(ctx, e.db, "abc", chain.Year)
	require.NoError(t, err)
	require.Equal(t, dollars(100), price)

	require.NoError(t, e.call(e.owner.addr, nil, func(t *chain.TransactionContext) error {
		return e.c.SetPriceOracle(t, oracle.FixedSpec(dollars(4)))
	}))
	price, err = e.c.CalculatePrice(ctx, e.db, "abc", chain.Year)
	require.NoError(t, err)
	require.Equal(t, dollars(25), price)

	// A controller loaded over the same state ignores its startup oracle
	reloaded := New(e.g, e.reg, e.led, mustFixed(t, ether))
	price, err = reloaded.CalculatePrice(ctx, e.db, "abc", chain.Year)
	require.NoError(t, err)
	require.Equal(t, dollars(25), price)
	reloaded.Close()

	err = e.call(e.owner.addr, nil, func(t *chain.TransactionContext) error {
		return e.c.SetPriceOracle(t, oracle.FeedSpec(oracle.FeedConfig{URL: "http://localhost"}))
	})
	require.ErrorIs(t, err, chain.ErrInvalidOracle)
	require.Equal(t, chain.KindValidation, chain.Classify(err))
}
