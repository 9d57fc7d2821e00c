// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/dothype/hypevm/chain"
)

var _ Receiver = &Splitter{}

// Splitter forwards whatever its address receives to the payees of a
// chain.Split in proportion to their shares. The last payee also receives
// the rounding remainder, so nothing stays behind.
type Splitter struct {
	ledger *Ledger
	split  *chain.Split
	total  *big.Int
}

func NewSplitter(l *Ledger, s *chain.Split) *Splitter {
	total := new(big.Int)
	for _, p := range s.Payees {
		total.Add(total, new(big.Int).SetUint64(p.Shares))
	}
	return &Splitter{ledger: l, split: s, total: total}
}

func (s *Splitter) Receive(t *chain.TransactionContext, _ common.Address, amount *big.Int) error {
	rest := new(big.Int).Set(amount)
	for i, p := range s.split.Payees {
		share := rest
		if i < len(s.split.Payees)-1 {
			share = new(big.Int).Mul(amount, new(big.Int).SetUint64(p.Shares))
			share.Quo(share, s.total)
		}
		if err := s.ledger.Transfer(t, s.split.Address, p.Address, share); err != nil {
			return err
		}
		if share.Sign() > 0 {
			t.Emit(&chain.Activity{
				Typ:     chain.PaymentForwarded,
				To:      p.Address.Hex(),
				Amount:  share.String(),
				Details: s.split.Address.Hex(),
			})
		}
		if share != rest {
			rest.Sub(rest, share)
		}
	}
	return nil
}

// AttachSplits installs a Splitter for every split of the genesis.
func (l *Ledger) AttachSplits(splits []*chain.Split) {
	for _, s := range splits {
		l.Attach(s.Address, NewSplitter(l, s))
	}
}
