// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package merkle

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func testAddrs(n int) []common.Address {
	out := make([]common.Address, n)
	for i := range out {
		out[i] = common.BigToAddress(common.Big1)
		out[i][0] = byte(i + 1)
	}
	return out
}

func TestTreeProofs(t *testing.T) {
	t.Parallel()

	for _, n := range []int{1, 2, 3, 4, 5, 8, 13} {
		all := testAddrs(n)
		tree, err := FromAddresses(all)
		if err != nil {
			t.Fatal(err)
		}
		root := tree.Root()
		for i, a := range all {
			proof, err := tree.Proof(Leaf(a))
			if err != nil {
				t.Fatalf("n=%d #%d: %v", n, i, err)
			}
			if !Verify(proof, root, Leaf(a)) {
				t.Fatalf("n=%d #%d: proof did not verify", n, i)
			}
		}
	}
}

func TestSingleLeafRoot(t *testing.T) {
	t.Parallel()

	a := testAddrs(1)[0]
	tree, err := FromAddresses([]common.Address{a})
	if err != nil {
		t.Fatal(err)
	}
	if tree.Root() != Leaf(a) {
		t.Fatal("single leaf tree root must be the leaf")
	}
	if !Verify(nil, tree.Root(), Leaf(a)) {
		t.Fatal("empty proof must verify against a single leaf root")
	}
}

func TestVerifyRejects(t *testing.T) {
	t.Parallel()

	all := testAddrs(4)
	tree, err := FromAddresses(all[:3])
	if err != nil {
		t.Fatal(err)
	}
	proof, err := tree.Proof(Leaf(all[0]))
	if err != nil {
		t.Fatal(err)
	}
	if Verify(proof, tree.Root(), Leaf(all[3])) {
		t.Fatal("outsider must not verify with another proof")
	}
	if Verify(proof, common.Hash{0x1}, Leaf(all[0])) {
		t.Fatal("proof must not verify against a different root")
	}
	if _, err := tree.Proof(Leaf(all[3])); !errors.Is(err, ErrLeafMissing) {
		t.Fatalf("expected %v, got %v", ErrLeafMissing, err)
	}
	if _, err := New(nil); !errors.Is(err, ErrEmptyTree) {
		t.Fatalf("expected %v, got %v", ErrEmptyTree, err)
	}
}

func TestPairOrderIndependent(t *testing.T) {
	t.Parallel()

	a, b := common.Hash{0x1}, common.Hash{0x2}
	if hashPair(a, b) != hashPair(b, a) {
		t.Fatal("pair hashing must be commutative")
	}
}
