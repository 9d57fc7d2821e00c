// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package parser defines name parsing and identifier derivation.
package parser

import (
	"errors"
	"math/big"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	MaxNameSize      = 63
	Delimiter        = "."
	DefaultTLD       = "hype"
	MaxPriceTier     = 5
	hyphen      byte = '-'
)

var (
	ErrInvalidName = errors.New("names must be ^[a-z0-9-]{1,63}$ without leading or trailing hyphens")
	ErrInvalidPath = errors.New("path is not of the form name.tld")

	reg *regexp.Regexp
)

func init() {
	reg = regexp.MustCompile("^[a-z0-9-]{1,63}$")
}

// CheckName returns an error if the label format is invalid.
func CheckName(name string) error {
	if !reg.MatchString(name) {
		return ErrInvalidName
	}
	if name[0] == hyphen || name[len(name)-1] == hyphen {
		return ErrInvalidName
	}
	return nil
}

// CharCount is the number of characters in [name] as priced.
func CharCount(name string) int {
	return utf8.RuneCountInString(name)
}

// Tier maps a character count to its pricing tier (1..5). Tier 5 covers
// every name of five or more characters. Empty names have tier 0.
func Tier(name string) int {
	n := CharCount(name)
	if n > MaxPriceTier {
		return MaxPriceTier
	}
	return n
}

// LabelHash is keccak256 of the raw label.
func LabelHash(name string) common.Hash {
	return crypto.Keccak256Hash([]byte(name))
}

// NameHash computes the ENS namehash of a dotted name.
func NameHash(name string) common.Hash {
	node := common.Hash{}
	if len(name) == 0 {
		return node
	}
	labels := strings.Split(name, Delimiter)
	for i := len(labels) - 1; i >= 0; i-- {
		lh := LabelHash(labels[i])
		node = crypto.Keccak256Hash(node[:], lh[:])
	}
	return node
}

// Node returns the identifier of [name] registered under [tld].
func Node(tld string, name string) common.Hash {
	base := NameHash(tld)
	lh := LabelHash(name)
	return crypto.Keccak256Hash(base[:], lh[:])
}

// TokenID is the uint256 form of a node.
func TokenID(node common.Hash) *big.Int {
	return new(big.Int).SetBytes(node[:])
}

// ResolvePath splits "name.tld" into its label and top-level domain.
func ResolvePath(path string) (name string, tld string, err error) {
	segments := strings.Split(path, Delimiter)
	if len(segments) != 2 {
		return "", "", ErrInvalidPath
	}
	name, tld = segments[0], segments[1]
	if err := CheckName(name); err != nil {
		return "", "", err
	}
	if err := CheckName(tld); err != nil {
		return "", "", err
	}
	return name, tld, nil
}
