// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func TestGenesisSplits(t *testing.T) {
	t.Parallel()

	treasury := common.HexToAddress("0x7ea5")
	payee := common.HexToAddress("0xb0b")
	tt := []struct {
		name   string
		splits []*Split
		err    error
	}{
		{name: "none"},
		{name: "valid", splits: []*Split{{Address: treasury, Payees: []*Payee{{Address: payee, Shares: 1}}}}},
		{name: "no payees", splits: []*Split{{Address: treasury}}, err: ErrInvalidSplit},
		{name: "zero shares", splits: []*Split{{Address: treasury, Payees: []*Payee{{Address: payee}}}}, err: ErrInvalidSplit},
		{name: "zero address", splits: []*Split{{Payees: []*Payee{{Address: payee, Shares: 1}}}}, err: ErrInvalidSplit},
		{name: "pays itself", splits: []*Split{{Address: treasury, Payees: []*Payee{{Address: treasury, Shares: 1}}}}, err: ErrInvalidSplit},
		{name: "pays another split", splits: []*Split{
			{Address: treasury, Payees: []*Payee{{Address: payee, Shares: 1}}},
			{Address: payee, Payees: []*Payee{{Address: treasury, Shares: 1}}},
		}, err: ErrInvalidSplit},
		{name: "duplicate", splits: []*Split{
			{Address: treasury, Payees: []*Payee{{Address: payee, Shares: 1}}},
			{Address: treasury, Payees: []*Payee{{Address: payee, Shares: 2}}},
		}, err: ErrInvalidSplit},
	}
	for _, tv := range tt {
		g := DefaultGenesis()
		g.Splits = tv.splits
		err := g.Verify()
		if tv.err == nil {
			require.NoError(t, err, tv.name)
			continue
		}
		require.ErrorIs(t, err, tv.err, tv.name)
	}
}
