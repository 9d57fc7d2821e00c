// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package controller

import (
	"context"
	"fmt"
	"math"
	"math/big"

	"github.com/ava-labs/avalanchego/database"
	log "github.com/inconshreveable/log15"

	"github.com/dothype/hypevm/chain"
	"github.com/dothype/hypevm/parser"
	"github.com/dothype/hypevm/tdata"
)

// NoBatch marks a name that is not assigned to any auction.
const NoBatch uint64 = 0

// Batch is a set of names sold by Dutch auction. Prices are USD with 18
// decimals and decay linearly from StartPrice to EndPrice over Duration
// seconds after StartTime.
type Batch struct {
	ID         uint64   `json:"id"`
	StartPrice *big.Int `json:"startPrice"`
	EndPrice   *big.Int `json:"endPrice"`
	Duration   uint64   `json:"duration"`
	StartTime  uint64   `json:"startTime"`
	Active     bool     `json:"active"`
	Names      []string `json:"names"`
}

// batchEntry is the stored form of a [Batch].
type batchEntry struct {
	StartPrice []byte   `serialize:"true"`
	EndPrice   []byte   `serialize:"true"`
	Duration   uint64   `serialize:"true"`
	StartTime  uint64   `serialize:"true"`
	Active     bool     `serialize:"true"`
	Names      []string `serialize:"true"`
}

func (b *Batch) end() uint64 {
	if b.StartTime > math.MaxUint64-b.Duration {
		return math.MaxUint64
	}
	return b.StartTime + b.Duration
}

// PriceAt is the USD auction price at [now].
func (b *Batch) PriceAt(now uint64) *big.Int {
	switch {
	case now <= b.StartTime:
		return new(big.Int).Set(b.StartPrice)
	case now >= b.end():
		return new(big.Int).Set(b.EndPrice)
	}
	elapsed := new(big.Int).SetUint64(now - b.StartTime)
	drop := new(big.Int).Sub(b.StartPrice, b.EndPrice)
	drop.Mul(drop, elapsed)
	drop.Quo(drop, new(big.Int).SetUint64(b.Duration))
	return drop.Sub(b.StartPrice, drop)
}

// Status is the state of a batch at a point in time.
type Status struct {
	BatchID       uint64   `json:"batchId"`
	CurrentPrice  *big.Int `json:"currentPrice"`
	TimeRemaining uint64   `json:"timeRemaining"`
	Started       bool     `json:"started"`
	Active        bool     `json:"active"`
	Complete      bool     `json:"complete"`
}

func (b *Batch) StatusAt(now uint64) *Status {
	s := &Status{
		BatchID:      b.ID,
		CurrentPrice: b.PriceAt(now),
		Started:      now >= b.StartTime,
		Active:       b.Active,
		Complete:     now >= b.end(),
	}
	if !s.Complete {
		s.TimeRemaining = b.end() - now
	}
	return s
}

func GetBatch(db database.KeyValueReader, id uint64) (*Batch, error) {
	if id == NoBatch {
		return nil, chain.ErrInvalidBatch
	}
	var e batchEntry
	has, err := chain.GetObject(db, batchKey(id), &e)
	if err != nil {
		return nil, err
	}
	if !has {
		return nil, fmt.Errorf("%w: %d", chain.ErrInvalidBatch, id)
	}
	return &Batch{
		ID:         id,
		StartPrice: new(big.Int).SetBytes(e.StartPrice),
		EndPrice:   new(big.Int).SetBytes(e.EndPrice),
		Duration:   e.Duration,
		StartTime:  e.StartTime,
		Active:     e.Active,
		Names:      e.Names,
	}, nil
}

func putBatch(db database.KeyValueWriter, b *Batch) error {
	return chain.PutObject(db, batchKey(b.ID), &batchEntry{
		StartPrice: b.StartPrice.Bytes(),
		EndPrice:   b.EndPrice.Bytes(),
		Duration:   b.Duration,
		StartTime:  b.StartTime,
		Active:     b.Active,
		Names:      b.Names,
	})
}

// DomainBatch is the batch [name] is assigned to, or [NoBatch].
func DomainBatch(db database.KeyValueReader, name string) (uint64, error) {
	return chain.GetUint64(db, assignmentKey(name))
}

// BatchDomains lists every name the batch was created with, including those
// already sold.
func BatchDomains(db database.KeyValueReader, id uint64) ([]string, error) {
	b, err := GetBatch(db, id)
	if err != nil {
		return nil, err
	}
	return b.Names, nil
}

func AuctionPrice(db database.KeyValueReader, id uint64, now uint64) (*big.Int, error) {
	b, err := GetBatch(db, id)
	if err != nil {
		return nil, err
	}
	return b.PriceAt(now), nil
}

func AuctionStatus(db database.KeyValueReader, id uint64, now uint64) (*Status, error) {
	b, err := GetBatch(db, id)
	if err != nil {
		return nil, err
	}
	return b.StatusAt(now), nil
}

// CreateAuctionBatch puts [names] up for auction. A zero [startTime] starts
// the auction immediately.
func (c *Controller) CreateAuctionBatch(
	t *chain.TransactionContext,
	names []string,
	startPrice *big.Int,
	endPrice *big.Int,
	duration uint64,
	startTime uint64,
) (uint64, error) {
	exit, err := c.admin(t)
	if err != nil {
		return 0, err
	}
	defer exit()

	switch {
	case startPrice == nil || endPrice == nil || endPrice.Sign() < 0:
		return 0, fmt.Errorf("%w: missing price", chain.ErrInvalidAuctionConfig)
	case startPrice.Cmp(endPrice) <= 0:
		return 0, fmt.Errorf("%w: start price %s must exceed end price %s", chain.ErrInvalidAuctionConfig, startPrice, endPrice)
	case duration == 0:
		return 0, fmt.Errorf("%w: zero duration", chain.ErrInvalidAuctionConfig)
	case len(names) == 0:
		return 0, fmt.Errorf("%w: no names", chain.ErrInvalidAuctionConfig)
	}
	if startTime == 0 {
		startTime = t.BlockTime
	} else if startTime < t.BlockTime {
		return 0, fmt.Errorf("%w: start time %d is in the past", chain.ErrInvalidAuctionConfig, startTime)
	}

	last, err := chain.GetUint64(t.Database, settingKey(lastBatchSetting))
	if err != nil {
		return 0, err
	}
	id := last + 1
	for _, name := range names {
		if err := parser.CheckName(name); err != nil {
			return 0, fmt.Errorf("%w: %v", chain.ErrInvalidName, err)
		}
		// Reading through the call database also catches duplicates within
		// [names].
		cur, err := DomainBatch(t.Database, name)
		if err != nil {
			return 0, err
		}
		if cur != NoBatch {
			return 0, fmt.Errorf("%w: %s is in batch %d", chain.ErrDomainAlreadyInAuction, name, cur)
		}
		if err := chain.PutUint64(t.Database, assignmentKey(name), id); err != nil {
			return 0, err
		}
	}
	b := &Batch{
		ID:         id,
		StartPrice: new(big.Int).Set(startPrice),
		EndPrice:   new(big.Int).Set(endPrice),
		Duration:   duration,
		StartTime:  startTime,
		Active:     true,
		Names:      names,
	}
	if err := putBatch(t.Database, b); err != nil {
		return 0, err
	}
	if err := chain.PutUint64(t.Database, settingKey(lastBatchSetting), id); err != nil {
		return 0, err
	}
	t.Emit(&chain.Activity{
		Typ:     chain.BatchCreated,
		Batch:   id,
		Amount:  startPrice.String(),
		Details: fmt.Sprintf("names=%d endPrice=%s duration=%d start=%d", len(names), endPrice, duration, startTime),
	})
	log.Info("created auction batch", "batch", id, "names", len(names), "start", startTime)
	return id, nil
}

func (c *Controller) activeBatch(db database.KeyValueReader, name string) (*Batch, error) {
	id, err := DomainBatch(db, name)
	if err != nil {
		return nil, err
	}
	if id == NoBatch {
		return nil, chain.ErrDomainNotInAuction
	}
	b, err := GetBatch(db, id)
	if err != nil {
		return nil, err
	}
	if !b.Active {
		return nil, chain.ErrDomainNotInAuction
	}
	return b, nil
}

// auctionTotal converts the base price and the auction premium separately and
// sums the results.
func (c *Controller) auctionTotal(ctx context.Context, db database.KeyValueReader, b *Batch, name string, duration uint64, now uint64) (*big.Int, error) {
	base, err := c.CalculatePrice(ctx, db, name, duration)
	if err != nil {
		return nil, err
	}
	premium, err := c.convert(ctx, db, b.PriceAt(now))
	if err != nil {
		return nil, err
	}
	return base.Add(base, premium), nil
}

// AuctionTotalPrice is the native price of buying [name] from its batch at
// [now].
func (c *Controller) AuctionTotalPrice(ctx context.Context, db database.KeyValueReader, name string, duration uint64, now uint64) (*big.Int, error) {
	b, err := c.activeBatch(db, name)
	if err != nil {
		return nil, err
	}
	return c.auctionTotal(ctx, db, b, name, duration, now)
}

func (c *Controller) registerAuction(t *chain.TransactionContext, r *Request, s Strategy) (*Receipt, error) {
	var batch uint64
	price := func(t *chain.TransactionContext, r *Request) (*big.Int, error) {
		b, err := c.activeBatch(t.Database, r.Name)
		if err != nil {
			return nil, err
		}
		batch = b.ID
		return c.auctionTotal(t.Ctx, t.Database, b, r.Name, r.Duration, t.BlockTime)
	}
	rcpt, err := c.register(t, r, s, price)
	if err != nil {
		return nil, err
	}
	t.Emit(&chain.Activity{
		Typ:    chain.AuctionPurchased,
		Name:   rcpt.Name,
		Node:   rcpt.Node.Hex(),
		To:     rcpt.Owner.Hex(),
		Batch:  batch,
		Amount: rcpt.Price.String(),
	})
	return rcpt, nil
}

// RegisterAuction buys [name] out of its batch for the sender. Only the owner
// may use this channel.
func (c *Controller) RegisterAuction(t *chain.TransactionContext, name string, duration uint64, maxPrice *big.Int) (*Receipt, error) {
	logCall("registerAuction", t, "name", name, "maxPrice", maxPrice)
	if maxPrice == nil {
		maxPrice = new(big.Int)
	}
	req := &Request{Name: name, Owner: t.Sender, Duration: duration, MaxPrice: maxPrice}
	return c.registerAuction(t, req, OwnerAuth{})
}

// RegisterAuctionWithSignature buys [r.Name] out of its batch for [r.Owner]
// with a signature from the configured signer.
func (c *Controller) RegisterAuctionWithSignature(t *chain.TransactionContext, r *tdata.Registration, sig []byte) (*Receipt, error) {
	logCall("registerAuctionWithSignature", t, "name", r.Name, "owner", r.Owner)
	req := &Request{Name: r.Name, Owner: r.Owner, Duration: r.Duration, MaxPrice: r.MaxPrice}
	auth := &SignatureAuth{PrimaryType: tdata.AuctionRegister, Deadline: r.Deadline, Signature: sig}
	return c.registerAuction(t, req, auth)
}
