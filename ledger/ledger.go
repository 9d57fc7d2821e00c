// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package ledger tracks native token balances.
package ledger

import (
	"fmt"
	"math/big"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ethereum/go-ethereum/common"

	"github.com/dothype/hypevm/chain"
)

// Receiver runs when an address it is attached to receives funds. Returning
// an error rejects the transfer.
type Receiver interface {
	Receive(t *chain.TransactionContext, from common.Address, amount *big.Int) error
}

type ReceiverFunc func(t *chain.TransactionContext, from common.Address, amount *big.Int) error

func (f ReceiverFunc) Receive(t *chain.TransactionContext, from common.Address, amount *big.Int) error {
	return f(t, from, amount)
}

// Ledger moves native value between accounts stored in the call database.
type Ledger struct {
	receivers map[common.Address]Receiver
}

func New() *Ledger {
	return &Ledger{receivers: make(map[common.Address]Receiver)}
}

// Attach installs [r] as the receive hook of [addr]. A nil [r] removes it.
// Hooks are installed at startup, before any call runs.
func (l *Ledger) Attach(addr common.Address, r Receiver) {
	if r == nil {
		delete(l.receivers, addr)
		return
	}
	l.receivers[addr] = r
}

func balanceKey(addr common.Address) []byte {
	return chain.Key(chain.BalancePrefix, addr[:])
}

func GetBalance(db database.KeyValueReader, addr common.Address) (*big.Int, error) {
	return chain.GetBig(db, balanceKey(addr))
}

// ModifyBalance adds or subtracts [change] from the balance of [addr].
func ModifyBalance(db database.KeyValueReaderWriter, addr common.Address, add bool, change *big.Int) (*big.Int, error) {
	b, err := GetBalance(db, addr)
	if err != nil {
		return nil, err
	}
	n := new(big.Int)
	if add {
		n.Add(b, change)
	} else {
		if b.Cmp(change) < 0 {
			return nil, fmt.Errorf("%w: %s has %s, needs %s", chain.ErrInsufficientBalance, addr, b, change)
		}
		n.Sub(b, change)
	}
	return n, chain.PutBig(db, balanceKey(addr), n)
}

// Mint credits [addr] out of thin air. Only genesis allocation uses it.
func Mint(db database.KeyValueReaderWriter, addr common.Address, amount *big.Int) error {
	_, err := ModifyBalance(db, addr, true, amount)
	return err
}

// Transfer moves [amount] from [from] to [to] and runs the receive hook of
// [to], if any. Zero transfers are no-ops and do not run hooks.
func (l *Ledger) Transfer(t *chain.TransactionContext, from common.Address, to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() == 0 {
		return nil
	}
	if amount.Sign() < 0 {
		return fmt.Errorf("negative transfer %s", amount)
	}
	if to == (common.Address{}) {
		return chain.ErrZeroAddress
	}
	if _, err := ModifyBalance(t.Database, from, false, amount); err != nil {
		return err
	}
	if _, err := ModifyBalance(t.Database, to, true, amount); err != nil {
		return err
	}
	if r, ok := l.receivers[to]; ok {
		return r.Receive(t, from, amount)
	}
	return nil
}
