// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package tdata builds the EIP-712 messages a registration signer approves.
package tdata

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

const (
	DomainName    = "DotHype"
	DomainVersion = "1"

	Register        = "Register"
	AuctionRegister = "AuctionRegister"

	tdName     = "name"
	tdOwner    = "owner"
	tdDuration = "duration"
	tdMaxPrice = "maxPrice"
	tdDeadline = "deadline"
	tdNonce    = "nonce"

	tdString  = "string"
	tdAddress = "address"
	tdUint256 = "uint256"
)

var (
	EIP712Domain = []apitypes.Type{
		{Name: "name", Type: "string"},
		{Name: "version", Type: "string"},
		{Name: "chainId", Type: "uint256"},
		{Name: "verifyingContract", Type: "address"},
	}

	registrationFields = []apitypes.Type{
		{Name: tdName, Type: tdString},
		{Name: tdOwner, Type: tdAddress},
		{Name: tdDuration, Type: tdUint256},
		{Name: tdMaxPrice, Type: tdUint256},
		{Name: tdDeadline, Type: tdUint256},
		{Name: tdNonce, Type: tdUint256},
	}
)

// Domain binds signatures to one chain and one controller.
type Domain struct {
	ChainID           uint64
	VerifyingContract common.Address
}

func (d Domain) typed() apitypes.TypedDataDomain {
	return apitypes.TypedDataDomain{
		Name:              DomainName,
		Version:           DomainVersion,
		ChainId:           (*math.HexOrDecimal256)(new(big.Int).SetUint64(d.ChainID)),
		VerifyingContract: d.VerifyingContract.Hex(),
	}
}

// Registration is the signed intent to register a name.
type Registration struct {
	Name     string         `json:"name"`
	Owner    common.Address `json:"owner"`
	Duration uint64         `json:"duration"`
	MaxPrice *big.Int       `json:"maxPrice"`
	Deadline uint64         `json:"deadline"`
}

// CreateTypedData returns the typed data of [r] under [primaryType] with the
// signer's current [nonce] embedded.
func CreateTypedData(d Domain, primaryType string, r *Registration, nonce uint64) *apitypes.TypedData {
	maxPrice := r.MaxPrice
	if maxPrice == nil {
		maxPrice = new(big.Int)
	}
	return &apitypes.TypedData{
		Types: apitypes.Types{
			primaryType:    registrationFields,
			"EIP712Domain": EIP712Domain,
		},
		PrimaryType: primaryType,
		Domain:      d.typed(),
		Message: apitypes.TypedDataMessage{
			tdName:     r.Name,
			tdOwner:    r.Owner.Hex(),
			tdDuration: new(big.Int).SetUint64(r.Duration).String(),
			tdMaxPrice: maxPrice.String(),
			tdDeadline: new(big.Int).SetUint64(r.Deadline).String(),
			tdNonce:    new(big.Int).SetUint64(nonce).String(),
		},
	}
}

// DigestHash is keccak256("\x19\x01" ‖ domainSeparator ‖ hashStruct(message)).
func DigestHash(td *apitypes.TypedData) ([]byte, error) {
	typedDataHash, err := td.HashStruct(td.PrimaryType, td.Message)
	if err != nil {
		return nil, err
	}
	domainSeparator, err := td.HashStruct("EIP712Domain", td.Domain.Map())
	if err != nil {
		return nil, err
	}
	rawData := []byte(fmt.Sprintf("\x19\x01%s%s", string(domainSeparator), string(typedDataHash)))
	return crypto.Keccak256Hash(rawData).Bytes(), nil
}

// Digest is shorthand for the digest of a registration message.
func Digest(d Domain, primaryType string, r *Registration, nonce uint64) ([]byte, error) {
	return DigestHash(CreateTypedData(d, primaryType, r, nonce))
}
