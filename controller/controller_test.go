// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package controller

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"testing"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/ava-labs/avalanchego/database/versiondb"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"github.com/dothype/hypevm/chain"
	"github.com/dothype/hypevm/ledger"
	"github.com/dothype/hypevm/oracle"
	"github.com/dothype/hypevm/registry"
	"github.com/dothype/hypevm/tdata"
)

const (
	day     = 24 * 60 * 60
	genesis = uint64(1_700_000_000)
)

var (
	ether   = big.NewInt(1e18)
	initial = new(big.Int).Mul(big.NewInt(1_000_000), ether)
)

func dollars(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), ether)
}

func mustFixed(t *testing.T, price *big.Int) *oracle.Fixed {
	t.Helper()
	o, err := oracle.NewFixed(price)
	require.NoError(t, err)
	return o
}

type testKey struct {
	priv *ecdsa.PrivateKey
	addr common.Address
}

func newKey(t *testing.T) *testKey {
	t.Helper()
	priv, err := crypto.GenerateKey()
	require.NoError(t, err)
	return &testKey{priv: priv, addr: crypto.PubkeyToAddress(priv.PublicKey)}
}

type testEnv struct {
	t   *testing.T
	g   *chain.Genesis
	db  database.Database
	reg *registry.Registry
	led *ledger.Ledger
	c   *Controller
	now uint64

	owner     *testKey
	signer    *testKey
	alice     *testKey
	bob       *testKey
	recipient common.Address
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	e := &testEnv{
		t:         t,
		g:         chain.DefaultGenesis(),
		db:        memdb.New(),
		now:       genesis,
		owner:     newKey(t),
		signer:    newKey(t),
		alice:     newKey(t),
		bob:       newKey(t),
		recipient: common.HexToAddress("0x00000000000000000000000000000000000fee00"),
	}
	e.g.Owner = e.owner.addr
	e.g.Signer = e.signer.addr
	e.g.PaymentRecipient = e.recipient

	require.NoError(t, registry.Init(e.db, e.g))
	require.NoError(t, Init(e.db, e.g))
	for _, k := range []*testKey{e.owner, e.alice, e.bob} {
		require.NoError(t, ledger.Mint(e.db, k.addr, initial))
	}

	e.reg = registry.New(e.g)
	e.led = ledger.New()
	e.c = New(e.g, e.reg, e.led, mustFixed(t, ether))
	return e
}

// call runs [f] the way the VM does: on a fresh version of the database that
// is committed on success and discarded on failure.
func (e *testEnv) call(sender common.Address, value *big.Int, f func(t *chain.TransactionContext) error) error {
	vdb := versiondb.New(e.db)
	tx := chain.NewContext(context.Background(), e.g, vdb, e.now, sender, value)
	if err := f(tx); err != nil {
		vdb.Abort()
		return err
	}
	return vdb.Commit()
}

func (e *testEnv) balance(addr common.Address) *big.Int {
	b, err := ledger.GetBalance(e.db, addr)
	require.NoError(e.t, err)
	return b
}

func (e *testEnv) sign(primaryType string, r *tdata.Registration, nonce uint64, key *testKey) []byte {
	digest, err := tdata.Digest(e.c.Domain(), primaryType, r, nonce)
	require.NoError(e.t, err)
	sig, err := chain.Sign(digest, key.priv)
	require.NoError(e.t, err)
	return sig
}

func (e *testEnv) registration(name string, owner common.Address, duration uint64) *tdata.Registration {
	return &tdata.Registration{
		Name:     name,
		Owner:    owner,
		Duration: duration,
		MaxPrice: dollars(10_000),
		Deadline: e.now + day,
	}
}

// registerSigned registers [name] for a year through the signature path.
func (e *testEnv) registerSigned(name string, owner *testKey) (*Receipt, error) {
	r := e.registration(name, owner.addr, chain.Year)
	nonce, err := Nonce(e.db, owner.addr)
	require.NoError(e.t, err)
	sig := e.sign(tdata.Register, r, nonce, e.signer)

	var rcpt *Receipt
	err = e.call(owner.addr, dollars(10_000), func(t *chain.TransactionContext) error {
		var err error
		rcpt, err = e.c.RegisterWithSignature(t, r, sig)
		return err
	})
	return rcpt, err
}

func TestInitIsIdempotent(t *testing.T) {
	t.Parallel()

	e := newTestEnv(t)
	require.NoError(t, e.call(e.owner.addr, nil, func(t *chain.TransactionContext) error {
		return e.c.SetAnnualPrice(t, 3, dollars(7))
	}))
	require.NoError(t, Init(e.db, e.g))

	cfg, err := e.c.Config(e.db)
	require.NoError(t, err)
	require.Equal(t, dollars(7), cfg.AnnualPrices[2])
	require.Equal(t, e.owner.addr, cfg.Owner)
	require.Equal(t, e.signer.addr, cfg.Signer)
	require.Equal(t, e.recipient, cfg.PaymentRecipient)
	require.Equal(t, uint64(chain.Year), cfg.MinRegistrationLength)
}

func TestInitDefaultsRecipientToOwner(t *testing.T) {
	t.Parallel()

	g := chain.DefaultGenesis()
	g.Owner = common.HexToAddress("0x01")
	db := memdb.New()
	require.NoError(t, Init(db, g))

	c := New(g, registry.New(g), ledger.New(), nil)
	recipient, err := c.PaymentRecipient(db)
	require.NoError(t, err)
	require.Equal(t, g.Owner, recipient)
}
