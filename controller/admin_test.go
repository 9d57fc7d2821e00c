// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package controller

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/dothype/hypevm/chain"
	"github.com/dothype/hypevm/ledger"
	"github.com/dothype/hypevm/oracle"
)

func TestAdminRequiresOwner(t *testing.T) {
	t.Parallel()

	e := newTestEnv(t)
	prices := [chain.Tiers]*big.Int{dollars(1), dollars(1), dollars(1), dollars(1), dollars(1)}
	tt := []struct {
		name string
		call func(t *chain.TransactionContext) error
	}{
		{"setAnnualPrice", func(t *chain.TransactionContext) error { return e.c.SetAnnualPrice(t, 1, dollars(1)) }},
		{"setAnnualRenewalPrice", func(t *chain.TransactionContext) error { return e.c.SetAnnualRenewalPrice(t, 1, dollars(1)) }},
		{"setAllAnnualPrices", func(t *chain.TransactionContext) error { return e.c.SetAllAnnualPrices(t, prices) }},
		{"setAllAnnualRenewalPrices", func(t *chain.TransactionContext) error { return e.c.SetAllAnnualRenewalPrices(t, prices) }},
		{"setPaymentRecipient", func(t *chain.TransactionContext) error { return e.c.SetPaymentRecipient(t, e.bob.addr) }},
		{"setPriceOracle", func(t *chain.TransactionContext) error { return e.c.SetPriceOracle(t, oracle.FixedSpec(ether)) }},
		{"setSigner", func(t *chain.TransactionContext) error { return e.c.SetSigner(t, e.bob.addr) }},
		{"setReservation", func(t *chain.TransactionContext) error { return e.c.SetReservation(t, "abc", e.bob.addr) }},
		{"setReservations", func(t *chain.TransactionContext) error {
			return e.c.SetReservations(t, []string{"abc"}, []common.Address{e.bob.addr})
		}},
		{"setMerkleRoot", func(t *chain.TransactionContext) error { return e.c.SetMerkleRoot(t, common.HexToHash("0x01")) }},
		{"resetMerkleClaims", func(t *chain.TransactionContext) error {
			return e.c.ResetMerkleClaims(t, []common.Address{e.bob.addr})
		}},
		{"withdraw", func(t *chain.TransactionContext) error { _, err := e.c.Withdraw(t); return err }},
		{"transferOwnership", func(t *chain.TransactionContext) error { return e.c.TransferOwnership(t, e.bob.addr) }},
	}
	for _, tv := range tt {
		err := e.call(e.bob.addr, nil, tv.call)
		if !errors.Is(err, chain.ErrNotOwner) {
			t.Fatalf("%s: expected %v, got %v", tv.name, chain.ErrNotOwner, err)
		}
		if chain.Classify(err) != chain.KindAuthorization {
			t.Fatalf("%s: unexpected kind %q", tv.name, chain.Classify(err))
		}
		err = e.call(e.owner.addr, big.NewInt(1), tv.call)
		if !errors.Is(err, chain.ErrNonPayable) {
			t.Fatalf("%s: expected %v, got %v", tv.name, chain.ErrNonPayable, err)
		}
	}
}

func TestSetPrices(t *testing.T) {
	t.Parallel()

	e := newTestEnv(t)
	prices := [chain.Tiers]*big.Int{dollars(10), dollars(9), dollars(8), dollars(7), dollars(6)}
	renewals := [chain.Tiers]*big.Int{dollars(5), dollars(4), dollars(3), dollars(2), dollars(1)}
	require.NoError(t, e.call(e.owner.addr, nil, func(t *chain.TransactionContext) error {
		if err := e.c.SetAllAnnualPrices(t, prices); err != nil {
			return err
		}
		return e.c.SetAllAnnualRenewalPrices(t, renewals)
	}))
	cfg, err := e.c.Config(e.db)
	require.NoError(t, err)
	require.Equal(t, prices, cfg.AnnualPrices)
	require.Equal(t, renewals, cfg.AnnualRenewalPrices)

	for _, tier := range []int{0, chain.Tiers + 1} {
		err := e.call(e.owner.addr, nil, func(t *chain.TransactionContext) error {
			return e.c.SetAnnualPrice(t, tier, dollars(1))
		})
		require.ErrorIs(t, err, chain.ErrInvalidCharacterCount)
	}

	// A bad entry rejects the whole table
	prices[4] = big.NewInt(-1)
	err = e.call(e.owner.addr, nil, func(t *chain.TransactionContext) error {
		return e.c.SetAllAnnualPrices(t, prices)
	})
	require.Error(t, err)
	p, err := AnnualPrice(e.db, 1)
	require.NoError(t, err)
	require.Equal(t, dollars(10), p)
}

func TestSetReservations(t *testing.T) {
	t.Parallel()

	e := newTestEnv(t)
	err := e.call(e.owner.addr, nil, func(t *chain.TransactionContext) error {
		return e.c.SetReservations(t, []string{"one", "two"}, []common.Address{e.alice.addr})
	})
	require.ErrorIs(t, err, chain.ErrLengthMismatch)
	require.False(t, errors.Is(err, chain.ErrInvalidName))
	require.Equal(t, chain.KindValidation, chain.Classify(err))

	require.NoError(t, e.call(e.owner.addr, nil, func(t *chain.TransactionContext) error {
		return e.c.SetReservations(t, []string{"one", "two"}, []common.Address{e.alice.addr, e.bob.addr})
	}))
	holder, err := Reservation(e.db, "two")
	require.NoError(t, err)
	require.Equal(t, e.bob.addr, holder)

	// The zero address clears
	require.NoError(t, e.call(e.owner.addr, nil, func(t *chain.TransactionContext) error {
		return e.c.SetReservation(t, "two", common.Address{})
	}))
	reserved, err := IsReserved(e.db, "two")
	require.NoError(t, err)
	require.False(t, reserved)
}

func TestPaymentRecipientAndWithdraw(t *testing.T) {
	t.Parallel()

	e := newTestEnv(t)
	err := e.call(e.owner.addr, nil, func(t *chain.TransactionContext) error {
		return e.c.SetPaymentRecipient(t, common.Address{})
	})
	require.ErrorIs(t, err, chain.ErrZeroAddress)

	// Route payments to the controller itself and sweep them out
	require.NoError(t, e.call(e.owner.addr, nil, func(t *chain.TransactionContext) error {
		return e.c.SetPaymentRecipient(t, e.c.Address())
	}))
	_, err = e.registerSigned("abc", e.alice)
	require.NoError(t, err)
	require.Equal(t, dollars(100), e.balance(e.c.Address()))

	var out *big.Int
	require.NoError(t, e.call(e.owner.addr, nil, func(t *chain.TransactionContext) error {
		var err error
		out, err = e.c.Withdraw(t)
		return err
	}))
	require.Equal(t, dollars(100), out)
	require.Equal(t, new(big.Int), e.balance(e.c.Address()))
	require.Equal(t, new(big.Int).Add(initial, dollars(100)), e.balance(e.owner.addr))
}

func TestTransferOwnership(t *testing.T) {
	t.Parallel()

	e := newTestEnv(t)
	require.ErrorIs(t, e.call(e.owner.addr, nil, func(t *chain.TransactionContext) error {
		return e.c.TransferOwnership(t, common.Address{})
	}), chain.ErrZeroAddress)
	require.NoError(t, e.call(e.owner.addr, nil, func(t *chain.TransactionContext) error {
		return e.c.TransferOwnership(t, e.alice.addr)
	}))
	require.ErrorIs(t, e.call(e.owner.addr, nil, func(t *chain.TransactionContext) error {
		return e.c.SetSigner(t, e.bob.addr)
	}), chain.ErrNotOwner)
	require.NoError(t, e.call(e.alice.addr, nil, func(t *chain.TransactionContext) error {
		return e.c.SetSigner(t, e.bob.addr)
	}))
	signer, err := e.c.Signer(e.db)
	require.NoError(t, err)
	require.Equal(t, e.bob.addr, signer)
}

func TestDisabledSigner(t *testing.T) {
	t.Parallel()

	e := newTestEnv(t)
	require.NoError(t, e.call(e.owner.addr, nil, func(t *chain.TransactionContext) error {
		return e.c.SetSigner(t, common.Address{})
	}))
	_, err := e.registerSigned("abc", e.alice)
	require.ErrorIs(t, err, chain.ErrInvalidSigner)
}

func TestWithdrawToRejectingOwner(t *testing.T) {
	t.Parallel()

	e := newTestEnv(t)
	require.NoError(t, ledger.Mint(e.db, e.c.Address(), dollars(3)))
	e.led.Attach(e.owner.addr, ledger.ReceiverFunc(func(*chain.TransactionContext, common.Address, *big.Int) error {
		return errors.New("closed")
	}))
	err := e.call(e.owner.addr, nil, func(t *chain.TransactionContext) error {
		_, err := e.c.Withdraw(t)
		return err
	})
	require.ErrorIs(t, err, chain.ErrFundsTransferFailed)
	require.Equal(t, dollars(3), e.balance(e.c.Address()))
}
