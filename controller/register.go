// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package controller

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	log "github.com/inconshreveable/log15"

	"github.com/dothype/hypevm/chain"
	"github.com/dothype/hypevm/parser"
	"github.com/dothype/hypevm/tdata"
)

// Receipt describes a successful registration or renewal.
type Receipt struct {
	Name    string         `json:"name"`
	Node    common.Hash    `json:"node"`
	TokenID *big.Int       `json:"tokenId"`
	Owner   common.Address `json:"owner"`
	Expiry  uint64         `json:"expiry"`
	Price   *big.Int       `json:"price"`
}

// pricer returns the native price of an authorized request.
type pricer func(t *chain.TransactionContext, r *Request) (*big.Int, error)

func (c *Controller) basePrice(t *chain.TransactionContext, r *Request) (*big.Int, error) {
	return c.CalculatePrice(t.Ctx, t.Database, r.Name, r.Duration)
}

// register runs one authorization strategy, prices the request and mints it.
func (c *Controller) register(t *chain.TransactionContext, r *Request, s Strategy, price pricer) (*Receipt, error) {
	exit, err := c.payable(t)
	if err != nil {
		return nil, err
	}
	defer exit()

	if err := s.Authorize(c, t, r); err != nil {
		return nil, err
	}
	p, err := price(t, r)
	if err != nil {
		return nil, err
	}
	if r.MaxPrice != nil && p.Cmp(r.MaxPrice) > 0 {
		return nil, chain.InsufficientPayment(p, r.MaxPrice)
	}
	rcpt, err := c.registerDomain(t, r.Name, r.Owner, r.Duration, p)
	if err != nil {
		return nil, err
	}
	if st, ok := s.(settler); ok {
		if err := st.Settle(c, t, r); err != nil {
			return nil, err
		}
	}
	return rcpt, nil
}

// registerDomain is shared by every authorization path. Payment is settled
// before the registry is touched.
func (c *Controller) registerDomain(
	t *chain.TransactionContext,
	name string,
	owner common.Address,
	duration uint64,
	price *big.Int,
) (*Receipt, error) {
	if duration < c.minReg {
		return nil, chain.ErrDurationTooShort
	}
	reserved, err := Reservation(t.Database, name)
	if err != nil {
		return nil, err
	}
	if reserved != (common.Address{}) && reserved != owner {
		return nil, chain.ErrNameIsReserved
	}
	if err := c.processPayment(t, price); err != nil {
		return nil, err
	}
	node, expiry, err := c.registry.Register(t, c.address, name, owner, duration)
	if err != nil {
		return nil, err
	}
	// A name leaves its auction batch however it is registered.
	if err := t.Database.Delete(assignmentKey(name)); err != nil {
		return nil, err
	}
	t.Emit(&chain.Activity{
		Typ:    chain.NameRegistered,
		Name:   name,
		Node:   node.Hex(),
		To:     owner.Hex(),
		Expiry: expiry,
		Amount: price.String(),
	})
	log.Info("registered name", "name", name, "owner", owner, "expiry", expiry, "price", price)
	return &Receipt{
		Name:    name,
		Node:    node,
		TokenID: parser.TokenID(node),
		Owner:   owner,
		Expiry:  expiry,
		Price:   price,
	}, nil
}

// RegisterWithSignature registers [r] on the strength of a signature from the
// configured signer.
func (c *Controller) RegisterWithSignature(t *chain.TransactionContext, r *tdata.Registration, sig []byte) (*Receipt, error) {
	logCall("registerWithSignature", t, "name", r.Name, "owner", r.Owner)
	req := &Request{Name: r.Name, Owner: r.Owner, Duration: r.Duration, MaxPrice: r.MaxPrice}
	auth := &SignatureAuth{PrimaryType: tdata.Register, Deadline: r.Deadline, Signature: sig}
	return c.register(t, req, auth, c.basePrice)
}

// RegisterWithMerkleProof registers [name] to the sender if the sender is on
// the allow-list and has not claimed under it yet.
func (c *Controller) RegisterWithMerkleProof(t *chain.TransactionContext, name string, duration uint64, proof []common.Hash) (*Receipt, error) {
	logCall("registerWithMerkleProof", t, "name", name)
	req := &Request{Name: name, Owner: t.Sender, Duration: duration}
	return c.register(t, req, &MerkleAuth{Proof: proof}, c.basePrice)
}

// RegisterReserved registers [name] to the address it is reserved for.
func (c *Controller) RegisterReserved(t *chain.TransactionContext, name string, duration uint64) (*Receipt, error) {
	logCall("registerReserved", t, "name", name)
	req := &Request{Name: name, Owner: t.Sender, Duration: duration}
	return c.register(t, req, ReservationAuth{}, c.basePrice)
}

// Renew extends [name] by [duration] at the renewal rate. Anyone may pay to
// renew any name.
func (c *Controller) Renew(t *chain.TransactionContext, name string, duration uint64) (*Receipt, error) {
	logCall("renew", t, "name", name, "duration", duration)
	exit, err := c.payable(t)
	if err != nil {
		return nil, err
	}
	defer exit()

	price, err := c.CalculateRenewalPrice(t.Ctx, t.Database, name, duration)
	if err != nil {
		return nil, err
	}
	if err := c.processPayment(t, price); err != nil {
		return nil, err
	}
	node := c.registry.Node(name)
	expiry, err := c.registry.Renew(t, c.address, node, duration)
	if err != nil {
		return nil, err
	}
	owner, err := c.registry.OwnerOf(t.Database, node)
	if err != nil {
		return nil, err
	}
	t.Emit(&chain.Activity{
		Typ:    chain.NameRenewed,
		Name:   name,
		Node:   node.Hex(),
		To:     owner.Hex(),
		Expiry: expiry,
		Amount: price.String(),
	})
	return &Receipt{
		Name:    name,
		Node:    node,
		TokenID: parser.TokenID(node),
		Owner:   owner,
		Expiry:  expiry,
		Price:   price,
	}, nil
}
