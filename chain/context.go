// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"context"
	"math/big"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ethereum/go-ethereum/common"
)

// TransactionContext is everything a call can observe about the
// environment it runs in. Database writes are discarded by the caller if the
// call fails.
type TransactionContext struct {
	Ctx       context.Context
	Genesis   *Genesis
	Database  database.Database
	BlockTime uint64
	Sender    common.Address
	Value     *big.Int

	activity []*Activity
}

func NewContext(ctx context.Context, g *Genesis, db database.Database, blockTime uint64, sender common.Address, value *big.Int) *TransactionContext {
	if value == nil {
		value = new(big.Int)
	}
	return &TransactionContext{
		Ctx:       ctx,
		Genesis:   g,
		Database:  db,
		BlockTime: blockTime,
		Sender:    sender,
		Value:     value,
	}
}

// Emit records [a] as produced by this call.
func (t *TransactionContext) Emit(a *Activity) {
	a.Tmstmp = t.BlockTime
	if len(a.Sender) == 0 {
		a.Sender = t.Sender.Hex()
	}
	t.activity = append(t.activity, a)
}

func (t *TransactionContext) Activity() []*Activity {
	return t.activity
}
