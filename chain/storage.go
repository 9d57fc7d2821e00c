// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"math/big"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ethereum/go-ethereum/common"
)

// 0x0/ (registry records)
//   -> [node]
// 0x1/ (registry token balances)
//   -> [owner]
// 0x2/ (singleton settings)
//   -> [setting name]
// 0x3/ (tier prices)
//   -> [kind][tier]
// 0x4/ (reservations)
//   -> [label hash]
// 0x5/ (signature nonces)
//   -> [owner]
// 0x6/ (merkle claims)
//   -> [address]
// 0x7/ (auction batches)
//   -> [batch id]
// 0x8/ (auction assignment)
//   -> [label hash]
// 0x9/ (native balances)
//   -> [address]
// 0xa/ (resolver records)
//   -> [node]/[version]/[record key]
// 0xb/ (resolver versions)
//   -> [node]
// 0xc/ (seen calls)
//   -> [call id]

const (
	RecordPrefix       = 0x0
	TokenBalancePrefix = 0x1
	SettingPrefix      = 0x2
	PricePrefix        = 0x3
	ReservationPrefix  = 0x4
	NoncePrefix        = 0x5
	ClaimPrefix        = 0x6
	BatchPrefix        = 0x7
	AssignmentPrefix   = 0x8
	BalancePrefix      = 0x9
	ResolverPrefix     = 0xa
	VersionPrefix      = 0xb
	CallPrefix         = 0xc

	ByteDelimiter byte = '/'
)

// CompactablePrefixes are the ranges that see enough churn to be worth
// compacting in the background.
var CompactablePrefixes = []byte{RecordPrefix, BalancePrefix, ResolverPrefix, CallPrefix}

// PrefixKey is the first key of the [pfx] range.
func PrefixKey(pfx byte) []byte {
	return []byte{pfx, ByteDelimiter}
}

// Key joins [parts] under [pfx] with the storage delimiter.
func Key(pfx byte, parts ...[]byte) []byte {
	size := 1
	for _, p := range parts {
		size += len(p) + 1
	}
	k := make([]byte, 0, size)
	k = append(k, pfx)
	for _, p := range parts {
		k = append(k, ByteDelimiter)
		k = append(k, p...)
	}
	return k
}

// GetObject decodes the codec value at [k] into [dst].
func GetObject(db database.KeyValueReader, k []byte, dst interface{}) (bool, error) {
	has, err := db.Has(k)
	if err != nil {
		return false, err
	}
	if !has {
		return false, nil
	}
	v, err := db.Get(k)
	if err != nil {
		return false, err
	}
	if _, err := Unmarshal(v, dst); err != nil {
		return false, err
	}
	return true, nil
}

func PutObject(db database.KeyValueWriter, k []byte, src interface{}) error {
	b, err := Marshal(src)
	if err != nil {
		return err
	}
	return db.Put(k, b)
}

// GetBig returns zero for missing keys.
func GetBig(db database.KeyValueReader, k []byte) (*big.Int, error) {
	v, err := db.Get(k)
	if err == database.ErrNotFound {
		return new(big.Int), nil
	}
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(v), nil
}

// PutBig deletes the key when [v] is zero.
func PutBig(db database.KeyValueWriter, k []byte, v *big.Int) error {
	if v == nil || v.Sign() == 0 {
		return db.Delete(k)
	}
	return db.Put(k, v.Bytes())
}

// GetAddress returns the zero address for missing keys.
func GetAddress(db database.KeyValueReader, k []byte) (common.Address, error) {
	v, err := db.Get(k)
	if err == database.ErrNotFound {
		return common.Address{}, nil
	}
	if err != nil {
		return common.Address{}, err
	}
	return common.BytesToAddress(v), nil
}

// PutAddress deletes the key when [addr] is the zero address.
func PutAddress(db database.KeyValueWriter, k []byte, addr common.Address) error {
	if addr == (common.Address{}) {
		return db.Delete(k)
	}
	return db.Put(k, addr[:])
}

func GetUint64(db database.KeyValueReader, k []byte) (uint64, error) {
	v, err := GetBig(db, k)
	if err != nil {
		return 0, err
	}
	return v.Uint64(), nil
}

func PutUint64(db database.KeyValueWriter, k []byte, v uint64) error {
	return PutBig(db, k, new(big.Int).SetUint64(v))
}
