// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/fatih/color"
	"github.com/shopspring/decimal"

	"github.com/dothype/hypevm/chain"
	"github.com/dothype/hypevm/client"
	"github.com/dothype/hypevm/parser"
	"github.com/dothype/hypevm/vm"
)

// amounts on the command line carry 18 implied decimals
const decimals = 18

func parseAmount(s string) (*big.Int, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid amount %q", err, s)
	}
	if d.IsNegative() {
		return nil, fmt.Errorf("negative amount %q", s)
	}
	return d.Shift(decimals).BigInt(), nil
}

func formatAmount(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return decimal.NewFromBigInt(v, -decimals).String()
}

func hexOrDecimal(v *big.Int) *math.HexOrDecimal256 {
	if v == nil {
		return nil
	}
	return (*math.HexOrDecimal256)(v)
}

func getName(args []string, want int) (string, error) {
	if len(args) != want {
		return "", fmt.Errorf("expected exactly %d argument(s), got %d", want, len(args))
	}
	if err := parser.CheckName(args[0]); err != nil {
		return "", fmt.Errorf("%w: invalid name %q", err, args[0])
	}
	return args[0], nil
}

func yearsToDuration(years uint64) uint64 {
	return years * chain.Year
}

// issue signs [args] under [method] with the local key and submits it.
func issue(method string, args interface{}, opts ...client.OpOption) (*vm.IssueCallReply, error) {
	priv, err := crypto.LoadECDSA(privateKeyFile)
	if err != nil {
		return nil, err
	}
	return issueAs(priv, method, args, opts...)
}

func issueAs(priv *ecdsa.PrivateKey, method string, args interface{}, opts ...client.OpOption) (*vm.IssueCallReply, error) {
	cli := client.New(uri, requestTimeout)
	reply, err := client.SignIssueCall(cli, method, args, priv, opts...)
	if err != nil {
		return nil, err
	}
	if verbose {
		printActivity(reply.Activity)
	}
	return reply, nil
}

func printActivity(activity []*chain.Activity) {
	for _, a := range activity {
		b, err := json.Marshal(a)
		if err != nil {
			color.Red("cannot marshal activity %v", err)
			continue
		}
		color.Cyan("%s", string(b))
	}
}
