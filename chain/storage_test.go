// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"bytes"
	"errors"
	"fmt"
	"math/big"
	"testing"

	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	t.Parallel()

	tt := []struct {
		pfx   byte
		parts [][]byte
		k     []byte
	}{
		{
			pfx: RecordPrefix,
			k:   []byte{RecordPrefix},
		},
		{
			pfx:   SettingPrefix,
			parts: [][]byte{[]byte("owner")},
			k:     append([]byte{SettingPrefix, ByteDelimiter}, []byte("owner")...),
		},
		{
			pfx:   ResolverPrefix,
			parts: [][]byte{{0x1}, {0x2}, []byte("url")},
			k:     []byte{ResolverPrefix, ByteDelimiter, 0x1, ByteDelimiter, 0x2, ByteDelimiter, 'u', 'r', 'l'},
		},
	}
	for i, tv := range tt {
		k := Key(tv.pfx, tv.parts...)
		if !bytes.Equal(k, tv.k) {
			t.Fatalf("#%d: key expected %q, got %q", i, tv.k, k)
		}
	}

	// Every key under a prefix sorts after its first key
	require.True(t, bytes.Compare(PrefixKey(CallPrefix), Key(CallPrefix, []byte{0x0})) < 0)
}

func TestBigStorage(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	db := memdb.New()
	k := Key(BalancePrefix, []byte("alice"))

	v, err := GetBig(db, k)
	require.NoError(err)
	require.Zero(v.Sign())

	require.NoError(PutBig(db, k, big.NewInt(42)))
	v, err = GetBig(db, k)
	require.NoError(err)
	require.Equal(big.NewInt(42), v)

	// zero values do not occupy a key
	require.NoError(PutBig(db, k, new(big.Int)))
	has, err := db.Has(k)
	require.NoError(err)
	require.False(has)

	require.NoError(PutUint64(db, k, 7))
	n, err := GetUint64(db, k)
	require.NoError(err)
	require.Equal(uint64(7), n)
}

func TestAddressStorage(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	db := memdb.New()
	k := Key(SettingPrefix, []byte("signer"))
	addr := common.HexToAddress("0x00000000000000000000000000000000000000aa")

	got, err := GetAddress(db, k)
	require.NoError(err)
	require.Equal(common.Address{}, got)

	require.NoError(PutAddress(db, k, addr))
	got, err = GetAddress(db, k)
	require.NoError(err)
	require.Equal(addr, got)

	require.NoError(PutAddress(db, k, common.Address{}))
	has, err := db.Has(k)
	require.NoError(err)
	require.False(has)
}

func TestObjectStorage(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	db := memdb.New()
	k := Key(SettingPrefix, []byte("activity"))

	var a Activity
	has, err := GetObject(db, k, &a)
	require.NoError(err)
	require.False(has)

	src := &Activity{Tmstmp: 10, Typ: NameRegistered, Name: "alice", Expiry: 100}
	require.NoError(PutObject(db, k, src))
	has, err = GetObject(db, k, &a)
	require.NoError(err)
	require.True(has)
	require.Equal(src, &a)
}

func TestClassify(t *testing.T) {
	t.Parallel()

	tt := []struct {
		err  error
		kind Kind
	}{
		{err: nil, kind: KindNone},
		{err: ErrNotOwner, kind: KindAuthorization},
		{err: fmt.Errorf("%w: wrapped", ErrInvalidMerkleProof), kind: KindAuthorization},
		{err: ErrDurationTooShort, kind: KindValidation},
		{err: fmt.Errorf("%w: 2 names for 1 addresses", ErrLengthMismatch), kind: KindValidation},
		{err: InsufficientPayment(big.NewInt(2), big.NewInt(1)), kind: KindEconomic},
		{err: ErrDomainAlreadyInAuction, kind: KindStateConflict},
		{err: errors.New("disk failure"), kind: KindInternal},
	}
	for i, tv := range tt {
		if k := Classify(tv.err); k != tv.kind {
			t.Fatalf("#%d: kind expected %q, got %q", i, tv.kind, k)
		}
	}
}

func TestInsufficientPaymentError(t *testing.T) {
	t.Parallel()

	err := InsufficientPayment(big.NewInt(5), big.NewInt(3))
	require.ErrorIs(t, err, ErrInsufficientPayment)

	var perr *InsufficientPaymentError
	require.True(t, errors.As(err, &perr))
	require.Equal(t, big.NewInt(5), perr.Required)
	require.Equal(t, big.NewInt(3), perr.Provided)
}
