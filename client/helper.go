// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package client

import (
	"crypto/ecdsa"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/fatih/color"

	"github.com/dothype/hypevm/chain"
	"github.com/dothype/hypevm/tdata"
	"github.com/dothype/hypevm/vm"
)

// Signs and issues the call.
func SignIssueCall(
	cli Client,
	method string,
	args interface{},
	priv *ecdsa.PrivateKey,
	opts ...OpOption,
) (*vm.IssueCallReply, error) {
	ret := &Op{now: time.Now}
	ret.applyOpts(opts)

	sender := crypto.PubkeyToAddress(priv.PublicKey)
	c, err := vm.NewCall(method, args, sender, ret.value, uint64(ret.now().Unix()))
	if err != nil {
		return nil, err
	}
	raw, sig, err := vm.SignCall(c, priv)
	if err != nil {
		return nil, err
	}

	color.Yellow("issuing %s from %s (value=%s)", method, sender, c.GetValue())
	reply, err := cli.IssueCall(raw, sig)
	if err != nil {
		return nil, err
	}
	if !reply.Success {
		return reply, &CallError{CallID: reply.CallID, Kind: reply.Kind, Message: reply.Error}
	}
	color.Green("call %s succeeded (%d events)", reply.CallID, len(reply.Activity))

	if len(ret.name) > 0 {
		info, err := cli.Info(ret.name)
		if err != nil {
			color.Red("cannot get name info %v", err)
			return reply, err
		}
		if info.Record != nil {
			expiry := time.Unix(int64(info.Record.Expiry), 0)
			color.Blue(
				"name %s: owner=%s state=%s expiry=%v (%v remaining)",
				info.Name, info.Record.Owner, info.State, expiry, time.Until(expiry),
			)
		}
	}
	return reply, nil
}

// SignRegistration produces the signature the controller's signer attaches
// to a registration approval.
func SignRegistration(
	g *chain.Genesis,
	primaryType string,
	r *tdata.Registration,
	nonce uint64,
	priv *ecdsa.PrivateKey,
) ([]byte, error) {
	d := tdata.Domain{ChainID: g.ChainID, VerifyingContract: g.Controller}
	digest, err := tdata.Digest(d, primaryType, r, nonce)
	if err != nil {
		return nil, err
	}
	return chain.Sign(digest, priv)
}

type Op struct {
	value *big.Int
	name  string
	now   func() time.Time
}

type OpOption func(*Op)

func (op *Op) applyOpts(opts []OpOption) {
	for _, opt := range opts {
		opt(op)
	}
}

// WithValue attaches native value to the call.
func WithValue(v *big.Int) OpOption {
	return func(op *Op) { op.value = v }
}

// WithInfo prints the state of [name] once the call succeeds.
func WithInfo(name string) OpOption {
	return func(op *Op) { op.name = name }
}

// WithClock overrides the source of the call timestamp.
func WithClock(now func() time.Time) OpOption {
	return func(op *Op) { op.now = now }
}
