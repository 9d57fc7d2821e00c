// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/crypto/sha3"

	"github.com/dothype/hypevm/chain"
)

// Call is the envelope of every state-changing request. The signature covers
// the exact JSON bytes of the envelope.
type Call struct {
	Method    string                `json:"method"`
	Args      json.RawMessage       `json:"args,omitempty"`
	Sender    common.Address        `json:"sender"`
	Value     *math.HexOrDecimal256 `json:"value,omitempty"`
	Timestamp uint64                `json:"timestamp"`
}

// NewCall encodes [args] into a call of [method].
func NewCall(method string, args interface{}, sender common.Address, value *big.Int, timestamp uint64) (*Call, error) {
	c := &Call{
		Method:    method,
		Sender:    sender,
		Timestamp: timestamp,
	}
	if args != nil {
		b, err := json.Marshal(args)
		if err != nil {
			return nil, err
		}
		c.Args = b
	}
	if value != nil && value.Sign() > 0 {
		c.Value = (*math.HexOrDecimal256)(new(big.Int).Set(value))
	}
	return c, nil
}

func (c *Call) GetValue() *big.Int {
	if c.Value == nil {
		return new(big.Int)
	}
	return new(big.Int).Set((*big.Int)(c.Value))
}

// DigestHash is the keccak256 digest a sender signs.
func DigestHash(raw []byte) []byte {
	return crypto.Keccak256(raw)
}

// CallID identifies the envelope [raw] regardless of its signature.
func CallID(raw []byte) ids.ID {
	return ids.ID(sha3.Sum256(raw))
}

// SignCall encodes [c] and signs it with [priv].
func SignCall(c *Call, priv *ecdsa.PrivateKey) ([]byte, []byte, error) {
	raw, err := json.Marshal(c)
	if err != nil {
		return nil, nil, err
	}
	sig, err := chain.Sign(DigestHash(raw), priv)
	if err != nil {
		return nil, nil, err
	}
	return raw, sig, nil
}

// decodeCall parses [raw] and checks that [sig] was produced by its sender.
func decodeCall(raw []byte, sig []byte) (*Call, error) {
	if len(raw) == 0 {
		return nil, ErrEmptyCall
	}
	c := new(Call)
	if err := json.Unmarshal(raw, c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgs, err)
	}
	if len(c.Method) == 0 {
		return nil, ErrEmptyCall
	}
	signer, err := chain.Recover(DigestHash(raw), sig)
	if err != nil {
		return nil, err
	}
	if signer != c.Sender {
		return nil, fmt.Errorf("%w: recovered %s, sender %s", ErrSenderMismatch, signer, c.Sender)
	}
	return c, nil
}
