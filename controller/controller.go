// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package controller decides who may register and renew names, at what price,
// and collects payment for them. It holds no name records of its own and
// proxies every mutation into the registry.
package controller

import (
	"math/big"
	"sync"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ethereum/go-ethereum/common"
	log "github.com/inconshreveable/log15"

	"github.com/dothype/hypevm/chain"
	"github.com/dothype/hypevm/ledger"
	"github.com/dothype/hypevm/oracle"
	"github.com/dothype/hypevm/registry"
	"github.com/dothype/hypevm/tdata"
)

type Controller struct {
	address  common.Address
	minReg   uint64
	domain   tdata.Domain
	registry *registry.Registry
	ledger   *ledger.Ledger

	// oracle prices until the owner stores a replacement spec.
	oracle oracle.PriceOracle

	// stored caches the oracle built from the last spec read.
	mu         sync.Mutex
	storedSpec []byte
	stored     oracle.PriceOracle

	// entered is set while a mutating call is in progress. Payment
	// recipients run arbitrary receive hooks and must not be able to call
	// back in.
	entered bool
}

func New(g *chain.Genesis, reg *registry.Registry, led *ledger.Ledger, o oracle.PriceOracle) *Controller {
	return &Controller{
		address:  g.Controller,
		minReg:   g.MinRegistrationLength,
		domain:   tdata.Domain{ChainID: g.ChainID, VerifyingContract: g.Controller},
		registry: reg,
		ledger:   led,
		oracle:   o,
	}
}

// Init writes the controller settings and price tables from genesis on first
// start.
func Init(db database.KeyValueReaderWriter, g *chain.Genesis) error {
	has, err := db.Has(settingKey(initializedSetting))
	if err != nil || has {
		return err
	}
	if err := db.Put(settingKey(initializedSetting), []byte{1}); err != nil {
		return err
	}
	recipient := g.PaymentRecipient
	if recipient == (common.Address{}) {
		recipient = g.Owner
	}
	for k, v := range map[string]common.Address{
		ownerSetting:     g.Owner,
		signerSetting:    g.Signer,
		recipientSetting: recipient,
	} {
		if err := chain.PutAddress(db, settingKey(k), v); err != nil {
			return err
		}
	}
	for i := 1; i <= chain.Tiers; i++ {
		if err := putTierPrice(db, registrationKind, i, chain.Price(g.AnnualPrices, i)); err != nil {
			return err
		}
		if err := putTierPrice(db, renewalKind, i, chain.Price(g.AnnualRenewalPrices, i)); err != nil {
			return err
		}
	}
	return nil
}

func (c *Controller) Address() common.Address { return c.address }

func (c *Controller) Domain() tdata.Domain { return c.domain }

func (c *Controller) Registry() *registry.Registry { return c.registry }

func (c *Controller) MinRegistrationLength() uint64 { return c.minReg }

// enter marks the start of a mutating call. The returned function must be
// deferred.
func (c *Controller) enter() (func(), error) {
	if c.entered {
		return nil, chain.ErrReentrantCall
	}
	c.entered = true
	return func() { c.entered = false }, nil
}

func (c *Controller) onlyOwner(t *chain.TransactionContext) error {
	owner, err := c.Owner(t.Database)
	if err != nil {
		return err
	}
	if t.Sender != owner {
		return chain.ErrNotOwner
	}
	return nil
}

// admin guards an owner-only call that does not accept value.
func (c *Controller) admin(t *chain.TransactionContext) (func(), error) {
	if t.Value.Sign() != 0 {
		return nil, chain.ErrNonPayable
	}
	exit, err := c.enter()
	if err != nil {
		return nil, err
	}
	if err := c.onlyOwner(t); err != nil {
		exit()
		return nil, err
	}
	return exit, nil
}

// Config is a snapshot of the administrative settings.
type Config struct {
	Owner                 common.Address        `json:"owner"`
	Signer                common.Address        `json:"signer"`
	PaymentRecipient      common.Address        `json:"paymentRecipient"`
	MerkleRoot            common.Hash           `json:"merkleRoot"`
	MinRegistrationLength uint64                `json:"minRegistrationLength"`
	AnnualPrices          [chain.Tiers]*big.Int `json:"annualPrices"`
	AnnualRenewalPrices   [chain.Tiers]*big.Int `json:"annualRenewalPrices"`
}

func (c *Controller) Config(db database.KeyValueReader) (*Config, error) {
	cfg := &Config{MinRegistrationLength: c.minReg}
	var err error
	if cfg.Owner, err = c.Owner(db); err != nil {
		return nil, err
	}
	if cfg.Signer, err = c.Signer(db); err != nil {
		return nil, err
	}
	if cfg.PaymentRecipient, err = c.PaymentRecipient(db); err != nil {
		return nil, err
	}
	if cfg.MerkleRoot, err = c.MerkleRoot(db); err != nil {
		return nil, err
	}
	for i := 1; i <= chain.Tiers; i++ {
		if cfg.AnnualPrices[i-1], err = AnnualPrice(db, i); err != nil {
			return nil, err
		}
		if cfg.AnnualRenewalPrices[i-1], err = AnnualRenewalPrice(db, i); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func (c *Controller) Owner(db database.KeyValueReader) (common.Address, error) {
	return chain.GetAddress(db, settingKey(ownerSetting))
}

func (c *Controller) Signer(db database.KeyValueReader) (common.Address, error) {
	return chain.GetAddress(db, settingKey(signerSetting))
}

func (c *Controller) PaymentRecipient(db database.KeyValueReader) (common.Address, error) {
	return chain.GetAddress(db, settingKey(recipientSetting))
}

func (c *Controller) MerkleRoot(db database.KeyValueReader) (common.Hash, error) {
	v, err := db.Get(settingKey(merkleRootSetting))
	if err == database.ErrNotFound {
		return common.Hash{}, nil
	}
	if err != nil {
		return common.Hash{}, err
	}
	return common.BytesToHash(v), nil
}

func logCall(method string, t *chain.TransactionContext, ctx ...interface{}) {
	log.Debug(method, append([]interface{}{"sender", t.Sender, "value", t.Value, "time", t.BlockTime}, ctx...)...)
}
