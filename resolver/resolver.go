// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package resolver stores the records a name points at: an address, text
// entries and a content hash. Records are grouped under a version so the
// owner can drop all of them at once.
package resolver

import (
	"encoding/binary"
	"fmt"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ethereum/go-ethereum/common"

	"github.com/dothype/hypevm/chain"
	"github.com/dothype/hypevm/registry"
)

const (
	MaxTextKeyLength   = 256
	MaxTextValueLength = 4096
	MaxContenthashSize = 1024

	addrRecord        byte = 0x0
	textRecord        byte = 0x1
	contenthashRecord byte = 0x2
)

type Resolver struct {
	registry *registry.Registry
}

func New(reg *registry.Registry) *Resolver {
	return &Resolver{registry: reg}
}

func versionKey(node common.Hash) []byte {
	return chain.Key(chain.VersionPrefix, node[:])
}

func recordKey(node common.Hash, version uint64, kind byte, key []byte) []byte {
	v := make([]byte, 8)
	binary.BigEndian.PutUint64(v, version)
	return chain.Key(chain.ResolverPrefix, node[:], v, append([]byte{kind}, key...))
}

// Version is the current record version of [node].
func Version(db database.KeyValueReader, node common.Hash) (uint64, error) {
	return chain.GetUint64(db, versionKey(node))
}

func get(db database.KeyValueReader, node common.Hash, kind byte, key []byte) ([]byte, error) {
	version, err := Version(db, node)
	if err != nil {
		return nil, err
	}
	v, err := db.Get(recordKey(node, version, kind, key))
	if err == database.ErrNotFound {
		return nil, nil
	}
	return v, err
}

// authorize allows writes only by the owner of an active name.
func (r *Resolver) authorize(t *chain.TransactionContext, node common.Hash) error {
	rec, has, err := registry.GetRecord(t.Database, node)
	if err != nil {
		return err
	}
	if !has {
		return chain.ErrDomainMissing
	}
	if rec.Owner != t.Sender {
		return chain.ErrUnauthorized
	}
	s, err := r.registry.State(t.Database, node, t.BlockTime)
	if err != nil {
		return err
	}
	if s != registry.Active {
		return chain.ErrDomainExpired
	}
	return nil
}

func (r *Resolver) set(t *chain.TransactionContext, node common.Hash, kind byte, key []byte, value []byte, details string) error {
	if err := r.authorize(t, node); err != nil {
		return err
	}
	version, err := Version(t.Database, node)
	if err != nil {
		return err
	}
	k := recordKey(node, version, kind, key)
	if len(value) == 0 {
		err = t.Database.Delete(k)
	} else {
		err = t.Database.Put(k, value)
	}
	if err != nil {
		return err
	}
	t.Emit(&chain.Activity{Typ: chain.RecordChanged, Node: node.Hex(), Details: details})
	return nil
}

// SetAddr points [node] at [addr]. The zero address removes the record.
func (r *Resolver) SetAddr(t *chain.TransactionContext, node common.Hash, addr common.Address) error {
	var v []byte
	if addr != (common.Address{}) {
		v = addr[:]
	}
	return r.set(t, node, addrRecord, nil, v, "addr="+addr.Hex())
}

func Addr(db database.KeyValueReader, node common.Hash) (common.Address, error) {
	v, err := get(db, node, addrRecord, nil)
	if err != nil || v == nil {
		return common.Address{}, err
	}
	return common.BytesToAddress(v), nil
}

// SetText stores [value] under [key]. An empty value removes it.
func (r *Resolver) SetText(t *chain.TransactionContext, node common.Hash, key string, value string) error {
	if len(key) == 0 || len(key) > MaxTextKeyLength {
		return fmt.Errorf("%w: text key length %d", chain.ErrRecordTooLarge, len(key))
	}
	if len(value) > MaxTextValueLength {
		return fmt.Errorf("%w: text value length %d", chain.ErrRecordTooLarge, len(value))
	}
	return r.set(t, node, textRecord, []byte(key), []byte(value), "text="+key)
}

func Text(db database.KeyValueReader, node common.Hash, key string) (string, error) {
	v, err := get(db, node, textRecord, []byte(key))
	return string(v), err
}

func (r *Resolver) SetContenthash(t *chain.TransactionContext, node common.Hash, hash []byte) error {
	if len(hash) > MaxContenthashSize {
		return fmt.Errorf("%w: contenthash size %d", chain.ErrRecordTooLarge, len(hash))
	}
	return r.set(t, node, contenthashRecord, nil, hash, "contenthash")
}

func Contenthash(db database.KeyValueReader, node common.Hash) ([]byte, error) {
	return get(db, node, contenthashRecord, nil)
}

// ClearRecords hides every record of [node] by moving it to a new version.
func (r *Resolver) ClearRecords(t *chain.TransactionContext, node common.Hash) (uint64, error) {
	if err := r.authorize(t, node); err != nil {
		return 0, err
	}
	version, err := Version(t.Database, node)
	if err != nil {
		return 0, err
	}
	version++
	if err := chain.PutUint64(t.Database, versionKey(node), version); err != nil {
		return 0, err
	}
	t.Emit(&chain.Activity{Typ: chain.RecordChanged, Node: node.Hex(), Details: fmt.Sprintf("version=%d", version)})
	return version, nil
}
