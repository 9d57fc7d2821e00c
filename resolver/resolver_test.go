// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package resolver

import (
	"context"
	"strings"
	"testing"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/dothype/hypevm/chain"
	"github.com/dothype/hypevm/registry"
)

var (
	controller = common.HexToAddress("0x000000000000000000000000000000000000c0de")
	alice      = common.HexToAddress("0x00000000000000000000000000000000000a11ce")
	bob        = common.HexToAddress("0x0000000000000000000000000000000000000b0b")
)

type fixture struct {
	g   *chain.Genesis
	db  database.Database
	reg *registry.Registry
	res *Resolver
}

func newFixture(t *testing.T) *fixture {
	g := chain.DefaultGenesis()
	g.Controller = controller
	g.GracePeriod = 10
	db := memdb.New()
	require.NoError(t, registry.Init(db, g))
	reg := registry.New(g)
	return &fixture{g: g, db: db, reg: reg, res: New(reg)}
}

func (f *fixture) tx(now uint64, sender common.Address) *chain.TransactionContext {
	return chain.NewContext(context.Background(), f.g, f.db, now, sender, nil)
}

func (f *fixture) register(t *testing.T, name string, owner common.Address, now, duration uint64) common.Hash {
	node, _, err := f.reg.Register(f.tx(now, controller), controller, name, owner, duration)
	require.NoError(t, err)
	return node
}

func TestRecords(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	node := f.register(t, "site", alice, 0, 100)
	tx := f.tx(1, alice)

	require.NoError(t, f.res.SetAddr(tx, node, bob))
	require.NoError(t, f.res.SetText(tx, node, "url", "https://example.org"))
	require.NoError(t, f.res.SetContenthash(tx, node, []byte{0xe3, 0x01}))

	addr, err := Addr(f.db, node)
	require.NoError(t, err)
	require.Equal(t, bob, addr)
	text, err := Text(f.db, node, "url")
	require.NoError(t, err)
	require.Equal(t, "https://example.org", text)
	ch, err := Contenthash(f.db, node)
	require.NoError(t, err)
	require.Equal(t, []byte{0xe3, 0x01}, ch)
	require.Len(t, tx.Activity(), 3)

	// Empty values remove
	require.NoError(t, f.res.SetText(tx, node, "url", ""))
	text, err = Text(f.db, node, "url")
	require.NoError(t, err)
	require.Empty(t, text)
	require.NoError(t, f.res.SetAddr(tx, node, common.Address{}))
	addr, err = Addr(f.db, node)
	require.NoError(t, err)
	require.Equal(t, common.Address{}, addr)
}

func TestClearRecords(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	node := f.register(t, "wipe", alice, 0, 100)
	tx := f.tx(1, alice)
	require.NoError(t, f.res.SetText(tx, node, "email", "a@example.org"))

	version, err := f.res.ClearRecords(tx, node)
	require.NoError(t, err)
	require.Equal(t, uint64(1), version)
	text, err := Text(f.db, node, "email")
	require.NoError(t, err)
	require.Empty(t, text)

	require.NoError(t, f.res.SetText(tx, node, "email", "b@example.org"))
	text, err = Text(f.db, node, "email")
	require.NoError(t, err)
	require.Equal(t, "b@example.org", text)
}

func TestWriteAuthorization(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	node := f.register(t, "mine", alice, 0, 100)

	require.ErrorIs(t, f.res.SetAddr(f.tx(1, bob), node, bob), chain.ErrUnauthorized)
	require.ErrorIs(t, f.res.SetAddr(f.tx(1, alice), f.reg.Node("nobody"), bob), chain.ErrDomainMissing)
	require.ErrorIs(t, f.res.SetAddr(f.tx(101, alice), node, bob), chain.ErrDomainExpired)
	_, err := f.res.ClearRecords(f.tx(1, bob), node)
	require.ErrorIs(t, err, chain.ErrUnauthorized)

	require.ErrorIs(t, f.res.SetText(f.tx(1, alice), node, "", "x"), chain.ErrRecordTooLarge)
	require.ErrorIs(t, f.res.SetText(f.tx(1, alice), node, "k", strings.Repeat("x", MaxTextValueLength+1)), chain.ErrRecordTooLarge)
	require.ErrorIs(t, f.res.SetContenthash(f.tx(1, alice), node, make([]byte, MaxContenthashSize+1)), chain.ErrRecordTooLarge)
	require.Equal(t, chain.KindValidation, chain.Classify(chain.ErrRecordTooLarge))
}

func TestNewOwnerAfterReclaim(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	node := f.register(t, "hand", alice, 0, 100)
	require.NoError(t, f.res.SetText(f.tx(1, alice), node, "k", "alice"))

	// After reclaim only the new owner may write
	f.register(t, "hand", bob, 111, 100)
	require.ErrorIs(t, f.res.SetText(f.tx(112, alice), node, "k", "again"), chain.ErrUnauthorized)
	require.NoError(t, f.res.SetText(f.tx(112, bob), node, "k", "bob"))
	text, err := Text(f.db, node, "k")
	require.NoError(t, err)
	require.Equal(t, "bob", text)
}
