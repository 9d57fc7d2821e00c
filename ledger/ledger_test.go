// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/dothype/hypevm/chain"
)

var (
	alice = common.HexToAddress("0x00000000000000000000000000000000000a11ce")
	bob   = common.HexToAddress("0x0000000000000000000000000000000000000b0b")
)

func newContext(t *testing.T) *chain.TransactionContext {
	db := memdb.New()
	require.NoError(t, Mint(db, alice, big.NewInt(100)))
	return chain.NewContext(context.Background(), chain.DefaultGenesis(), db, 1, alice, nil)
}

func TestTransfer(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	l := New()
	tc := newContext(t)
	require.NoError(l.Transfer(tc, alice, bob, big.NewInt(40)))

	a, err := GetBalance(tc.Database, alice)
	require.NoError(err)
	require.Equal(big.NewInt(60), a)
	b, err := GetBalance(tc.Database, bob)
	require.NoError(err)
	require.Equal(big.NewInt(40), b)

	err = l.Transfer(tc, alice, bob, big.NewInt(61))
	require.ErrorIs(err, chain.ErrInsufficientBalance)
	require.ErrorIs(l.Transfer(tc, alice, common.Address{}, big.NewInt(1)), chain.ErrZeroAddress)
	require.Error(l.Transfer(tc, alice, bob, big.NewInt(-1)))

	// zero transfers never touch balances
	require.NoError(l.Transfer(tc, bob, alice, new(big.Int)))
	require.NoError(l.Transfer(tc, bob, alice, nil))
}

func TestReceiver(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	l := New()
	tc := newContext(t)

	var received *big.Int
	l.Attach(bob, ReceiverFunc(func(_ *chain.TransactionContext, from common.Address, amount *big.Int) error {
		require.Equal(alice, from)
		received = amount
		return nil
	}))
	require.NoError(l.Transfer(tc, alice, bob, big.NewInt(5)))
	require.Equal(big.NewInt(5), received)

	errRejected := errors.New("rejected")
	l.Attach(bob, ReceiverFunc(func(*chain.TransactionContext, common.Address, *big.Int) error {
		return errRejected
	}))
	require.ErrorIs(l.Transfer(tc, alice, bob, big.NewInt(5)), errRejected)

	// the hook is not run for zero transfers
	require.NoError(l.Transfer(tc, alice, bob, new(big.Int)))

	l.Attach(bob, nil)
	require.NoError(l.Transfer(tc, alice, bob, big.NewInt(5)))
}

func TestSplitter(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	treasury := common.HexToAddress("0x0000000000000000000000000000000000007ea5")
	carol := common.HexToAddress("0x00000000000000000000000000000000000ca201")
	l := New()
	l.AttachSplits([]*chain.Split{{
		Address: treasury,
		Payees:  []*chain.Payee{{Address: bob, Shares: 2}, {Address: carol, Shares: 1}},
	}})

	tc := newContext(t)
	require.NoError(l.Transfer(tc, alice, treasury, big.NewInt(10)))
	for addr, want := range map[common.Address]int64{alice: 90, treasury: 0, bob: 6, carol: 4} {
		b, err := GetBalance(tc.Database, addr)
		require.NoError(err)
		require.Equal(big.NewInt(want), b, addr.Hex())
	}

	activity := tc.Activity()
	require.Len(activity, 2)
	require.Equal(chain.PaymentForwarded, activity[0].Typ)
	require.Equal(bob.Hex(), activity[0].To)
	require.Equal("6", activity[0].Amount)
	require.Equal("4", activity[1].Amount)
}
