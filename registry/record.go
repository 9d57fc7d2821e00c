// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package registry

import (
	"github.com/ava-labs/avalanchego/database"
	"github.com/ethereum/go-ethereum/common"

	"github.com/dothype/hypevm/chain"
)

type State uint8

const (
	Unregistered State = iota
	Active
	Grace
	Reclaimable
)

func (s State) String() string {
	switch s {
	case Unregistered:
		return "unregistered"
	case Active:
		return "active"
	case Grace:
		return "grace"
	case Reclaimable:
		return "reclaimable"
	default:
		return "unknown"
	}
}

// Available is true when the name can be minted.
func (s State) Available() bool {
	return s == Unregistered || s == Reclaimable
}

// Renewable is true when the expiry can still be extended.
func (s State) Renewable() bool {
	return s == Active || s == Grace
}

type Record struct {
	Name       string         `serialize:"true" json:"name"`
	Owner      common.Address `serialize:"true" json:"owner"`
	Registered uint64         `serialize:"true" json:"registered"`
	Expiry     uint64         `serialize:"true" json:"expiry"`
}

func RecordKey(node common.Hash) []byte {
	return chain.Key(chain.RecordPrefix, node[:])
}

func GetRecord(db database.KeyValueReader, node common.Hash) (*Record, bool, error) {
	var rec Record
	has, err := chain.GetObject(db, RecordKey(node), &rec)
	if err != nil || !has {
		return nil, has, err
	}
	return &rec, true, nil
}

func PutRecord(db database.KeyValueWriter, node common.Hash, rec *Record) error {
	return chain.PutObject(db, RecordKey(node), rec)
}

func DeleteRecord(db database.KeyValueWriter, node common.Hash) error {
	return db.Delete(RecordKey(node))
}
