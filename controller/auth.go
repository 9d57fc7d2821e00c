// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package controller

import (
	"math/big"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ethereum/go-ethereum/common"
	log "github.com/inconshreveable/log15"

	"github.com/dothype/hypevm/chain"
	"github.com/dothype/hypevm/merkle"
	"github.com/dothype/hypevm/tdata"
)

// Request is a registration that has not been authorized or priced yet.
type Request struct {
	Name     string
	Owner    common.Address
	Duration uint64
	// MaxPrice caps the native price. Nil leaves it uncapped.
	MaxPrice *big.Int
}

// Strategy authorizes a [Request]. Exactly one strategy runs per
// registration.
type Strategy interface {
	Authorize(c *Controller, t *chain.TransactionContext, r *Request) error
}

// settler is implemented by strategies with effects that only apply once the
// name has been minted.
type settler interface {
	Settle(c *Controller, t *chain.TransactionContext, r *Request) error
}

var (
	_ Strategy = &SignatureAuth{}
	_ Strategy = &ReservationAuth{}
	_ Strategy = &MerkleAuth{}
	_ Strategy = &OwnerAuth{}

	_ settler = &ReservationAuth{}
	_ settler = &MerkleAuth{}
)

// SignatureAuth accepts requests approved by the configured signer over
// EIP-712 typed data that embeds the owner's current nonce.
type SignatureAuth struct {
	PrimaryType string
	Deadline    uint64
	Signature   []byte
}

func (s *SignatureAuth) Authorize(c *Controller, t *chain.TransactionContext, r *Request) error {
	if t.BlockTime > s.Deadline {
		return chain.ErrSignatureExpired
	}
	if r.MaxPrice == nil {
		r.MaxPrice = new(big.Int)
	}

	// The nonce is consumed before the signer is known. A failed attempt
	// still burns it within the call, although the burn is discarded with
	// the rest of the call's writes.
	nonce, err := useNonce(t.Database, r.Owner)
	if err != nil {
		return err
	}
	digest, err := tdata.Digest(c.domain, s.PrimaryType, &tdata.Registration{
		Name:     r.Name,
		Owner:    r.Owner,
		Duration: r.Duration,
		MaxPrice: r.MaxPrice,
		Deadline: s.Deadline,
	}, nonce)
	if err != nil {
		return err
	}
	recovered, err := chain.Recover(digest, s.Signature)
	if err != nil {
		return err
	}
	signer, err := c.Signer(t.Database)
	if err != nil {
		return err
	}
	if signer == (common.Address{}) || recovered != signer {
		log.Debug("signature rejected", "name", r.Name, "recovered", recovered, "signer", signer, "nonce", nonce)
		return chain.ErrInvalidSigner
	}
	return nil
}

// ReservationAuth lets the reserved address claim its name.
type ReservationAuth struct{}

func (ReservationAuth) Authorize(c *Controller, t *chain.TransactionContext, r *Request) error {
	reserved, err := Reservation(t.Database, r.Name)
	if err != nil {
		return err
	}
	if reserved == (common.Address{}) {
		return chain.ErrNotReserved
	}
	if t.Sender != reserved {
		return chain.ErrNotAuthorized
	}
	return nil
}

func (ReservationAuth) Settle(c *Controller, t *chain.TransactionContext, r *Request) error {
	return t.Database.Delete(reservationKey(r.Name))
}

// MerkleAuth admits each address under the current root once.
type MerkleAuth struct {
	Proof []common.Hash
}

func (m *MerkleAuth) Authorize(c *Controller, t *chain.TransactionContext, r *Request) error {
	root, err := c.MerkleRoot(t.Database)
	if err != nil {
		return err
	}
	if root == (common.Hash{}) {
		return chain.ErrMerkleRootNotSet
	}
	claimed, err := HasClaimed(t.Database, t.Sender)
	if err != nil {
		return err
	}
	if claimed {
		return chain.ErrAlreadyMinted
	}
	if !merkle.Verify(m.Proof, root, merkle.Leaf(t.Sender)) {
		return chain.ErrInvalidMerkleProof
	}
	return nil
}

func (m *MerkleAuth) Settle(c *Controller, t *chain.TransactionContext, r *Request) error {
	if err := t.Database.Put(claimKey(t.Sender), []byte{1}); err != nil {
		return err
	}
	t.Emit(&chain.Activity{Typ: chain.MerkleClaimed, Name: r.Name, To: t.Sender.Hex()})
	return nil
}

// OwnerAuth is the administrative distribution channel.
type OwnerAuth struct{}

func (OwnerAuth) Authorize(c *Controller, t *chain.TransactionContext, _ *Request) error {
	return c.onlyOwner(t)
}

// Nonce is the value the next signature for [owner] must embed.
func Nonce(db database.KeyValueReader, owner common.Address) (uint64, error) {
	return chain.GetUint64(db, nonceKey(owner))
}

func useNonce(db database.KeyValueReaderWriter, owner common.Address) (uint64, error) {
	n, err := Nonce(db, owner)
	if err != nil {
		return 0, err
	}
	return n, chain.PutUint64(db, nonceKey(owner), n+1)
}

// Reservation returns the address [name] is held for, or the zero address.
func Reservation(db database.KeyValueReader, name string) (common.Address, error) {
	return chain.GetAddress(db, reservationKey(name))
}

func IsReserved(db database.KeyValueReader, name string) (bool, error) {
	addr, err := Reservation(db, name)
	if err != nil {
		return false, err
	}
	return addr != (common.Address{}), nil
}

func HasClaimed(db database.KeyValueReader, addr common.Address) (bool, error) {
	return db.Has(claimKey(addr))
}
