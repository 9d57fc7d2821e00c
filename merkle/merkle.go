// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package merkle builds and verifies allow-list proofs over keccak256 with
// sorted pair hashing, so a proof does not need to carry sibling positions.
package merkle

import (
	"bytes"
	"errors"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

var (
	ErrEmptyTree   = errors.New("merkle tree has no leaves")
	ErrLeafMissing = errors.New("leaf not in tree")
)

// Leaf is the allow-list leaf of [addr].
func Leaf(addr common.Address) common.Hash {
	return crypto.Keccak256Hash(addr[:])
}

func hashPair(a, b common.Hash) common.Hash {
	if bytes.Compare(a[:], b[:]) > 0 {
		a, b = b, a
	}
	return crypto.Keccak256Hash(a[:], b[:])
}

// ProcessProof folds [proof] into [leaf] and returns the implied root.
func ProcessProof(proof []common.Hash, leaf common.Hash) common.Hash {
	computed := leaf
	for _, p := range proof {
		computed = hashPair(computed, p)
	}
	return computed
}

// Verify reports whether [leaf] is included under [root].
func Verify(proof []common.Hash, root common.Hash, leaf common.Hash) bool {
	return ProcessProof(proof, leaf) == root
}

// Tree is a complete tree over sorted leaves. An odd node at any level is
// carried up unchanged.
type Tree struct {
	levels [][]common.Hash
}

func New(leaves []common.Hash) (*Tree, error) {
	if len(leaves) == 0 {
		return nil, ErrEmptyTree
	}
	level := make([]common.Hash, len(leaves))
	copy(level, leaves)
	sort.Slice(level, func(i, j int) bool {
		return bytes.Compare(level[i][:], level[j][:]) < 0
	})
	t := &Tree{levels: [][]common.Hash{level}}
	for len(level) > 1 {
		next := make([]common.Hash, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			if i+1 == len(level) {
				next = append(next, level[i])
				continue
			}
			next = append(next, hashPair(level[i], level[i+1]))
		}
		t.levels = append(t.levels, next)
		level = next
	}
	return t, nil
}

// FromAddresses builds the allow-list tree of [addrs].
func FromAddresses(addrs []common.Address) (*Tree, error) {
	leaves := make([]common.Hash, len(addrs))
	for i, a := range addrs {
		leaves[i] = Leaf(a)
	}
	return New(leaves)
}

func (t *Tree) Root() common.Hash {
	return t.levels[len(t.levels)-1][0]
}

// Proof returns the sibling path of [leaf].
func (t *Tree) Proof(leaf common.Hash) ([]common.Hash, error) {
	idx := -1
	for i, l := range t.levels[0] {
		if l == leaf {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrLeafMissing
	}
	proof := []common.Hash{}
	for _, level := range t.levels[:len(t.levels)-1] {
		sibling := idx ^ 1
		if sibling < len(level) {
			proof = append(proof, level[sibling])
		}
		idx /= 2
	}
	return proof, nil
}
