// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package registry owns the mapping from names to owners and expiries.
package registry

import (
	"fmt"
	"math"
	"math/big"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ethereum/go-ethereum/common"
	log "github.com/inconshreveable/log15"

	"github.com/dothype/hypevm/chain"
	"github.com/dothype/hypevm/parser"
)

var (
	ownerSetting      = []byte("registry.owner")
	controllerSetting = []byte("registry.controller")
)

type Registry struct {
	tld         string
	gracePeriod uint64
}

func New(g *chain.Genesis) *Registry {
	return &Registry{
		tld:         g.TLD,
		gracePeriod: g.GracePeriod,
	}
}

// Init writes the administrative principals from genesis on first start.
func Init(db database.KeyValueReaderWriter, g *chain.Genesis) error {
	has, err := db.Has(chain.Key(chain.SettingPrefix, controllerSetting))
	if err != nil || has {
		return err
	}
	if err := chain.PutAddress(db, chain.Key(chain.SettingPrefix, ownerSetting), g.Owner); err != nil {
		return err
	}
	return chain.PutAddress(db, chain.Key(chain.SettingPrefix, controllerSetting), g.Controller)
}

func (r *Registry) TLD() string { return r.tld }

func (r *Registry) GracePeriod() uint64 { return r.gracePeriod }

// Node is the identifier of [name] under the registry TLD.
func (r *Registry) Node(name string) common.Hash {
	return parser.Node(r.tld, name)
}

func (r *Registry) Owner(db database.KeyValueReader) (common.Address, error) {
	return chain.GetAddress(db, chain.Key(chain.SettingPrefix, ownerSetting))
}

func (r *Registry) Controller(db database.KeyValueReader) (common.Address, error) {
	return chain.GetAddress(db, chain.Key(chain.SettingPrefix, controllerSetting))
}

// SetController replaces the single address allowed to register and renew.
func (r *Registry) SetController(t *chain.TransactionContext, controller common.Address) error {
	owner, err := r.Owner(t.Database)
	if err != nil {
		return err
	}
	if t.Sender != owner {
		return chain.ErrNotOwner
	}
	if controller == (common.Address{}) {
		return chain.ErrZeroAddress
	}
	if err := chain.PutAddress(t.Database, chain.Key(chain.SettingPrefix, controllerSetting), controller); err != nil {
		return err
	}
	t.Emit(&chain.Activity{Typ: chain.ControllerSet, To: controller.Hex()})
	return nil
}

func (r *Registry) onlyController(db database.KeyValueReader, caller common.Address) error {
	controller, err := r.Controller(db)
	if err != nil {
		return err
	}
	if caller != controller {
		return chain.ErrNotController
	}
	return nil
}

// graceEnd is the last second a record can still be renewed.
func (r *Registry) graceEnd(expiry uint64) uint64 {
	if expiry > math.MaxUint64-r.gracePeriod {
		return math.MaxUint64
	}
	return expiry + r.gracePeriod
}

// State reports where [node] is in its lifecycle at [now].
func (r *Registry) State(db database.KeyValueReader, node common.Hash, now uint64) (State, error) {
	rec, has, err := GetRecord(db, node)
	if err != nil {
		return Unregistered, err
	}
	if !has {
		return Unregistered, nil
	}
	return r.stateOf(rec, now), nil
}

func (r *Registry) stateOf(rec *Record, now uint64) State {
	switch {
	case now <= rec.Expiry:
		return Active
	case now <= r.graceEnd(rec.Expiry):
		return Grace
	default:
		return Reclaimable
	}
}

// Available reports whether [node] can be registered at [now].
func (r *Registry) Available(db database.KeyValueReader, node common.Hash, now uint64) (bool, error) {
	s, err := r.State(db, node, now)
	if err != nil {
		return false, err
	}
	return s.Available(), nil
}

// Register mints [name] to [owner] for [duration] seconds. A record left
// behind by an earlier registration that is past its grace period is burned
// first.
func (r *Registry) Register(
	t *chain.TransactionContext,
	caller common.Address,
	name string,
	owner common.Address,
	duration uint64,
) (common.Hash, uint64, error) {
	if err := r.onlyController(t.Database, caller); err != nil {
		return common.Hash{}, 0, err
	}
	if err := parser.CheckName(name); err != nil {
		return common.Hash{}, 0, fmt.Errorf("%w: %v", chain.ErrInvalidName, err)
	}
	if owner == (common.Address{}) {
		return common.Hash{}, 0, chain.ErrZeroAddress
	}
	if duration == 0 || t.BlockTime > math.MaxUint64-duration {
		return common.Hash{}, 0, chain.ErrInvalidDuration
	}

	node := r.Node(name)
	prev, has, err := GetRecord(t.Database, node)
	if err != nil {
		return common.Hash{}, 0, err
	}
	if has {
		if !r.stateOf(prev, t.BlockTime).Available() {
			return common.Hash{}, 0, chain.ErrNameNotAvailable
		}
		if err := r.burn(t, node, prev); err != nil {
			return common.Hash{}, 0, err
		}
	}

	rec := &Record{
		Name:       name,
		Owner:      owner,
		Registered: t.BlockTime,
		Expiry:     t.BlockTime + duration,
	}
	if err := PutRecord(t.Database, node, rec); err != nil {
		return common.Hash{}, 0, err
	}
	if err := modifyTokenBalance(t.Database, owner, true); err != nil {
		return common.Hash{}, 0, err
	}
	t.Emit(&chain.Activity{
		Typ:    chain.Transfer,
		Sender: common.Address{}.Hex(),
		Name:   name,
		Node:   node.Hex(),
		To:     owner.Hex(),
		Expiry: rec.Expiry,
	})
	log.Debug("minted name", "name", name, "owner", owner, "expiry", rec.Expiry)
	return node, rec.Expiry, nil
}

func (r *Registry) burn(t *chain.TransactionContext, node common.Hash, prev *Record) error {
	if err := modifyTokenBalance(t.Database, prev.Owner, false); err != nil {
		return err
	}
	if err := DeleteRecord(t.Database, node); err != nil {
		return err
	}
	t.Emit(&chain.Activity{
		Typ:    chain.Transfer,
		Sender: prev.Owner.Hex(),
		Name:   prev.Name,
		Node:   node.Hex(),
		To:     common.Address{}.Hex(),
	})
	log.Debug("burned expired name", "name", prev.Name, "owner", prev.Owner, "expiry", prev.Expiry)
	return nil
}

// Renew extends [node] by [duration] seconds counted from its stored expiry,
// never from [t.BlockTime].
func (r *Registry) Renew(t *chain.TransactionContext, caller common.Address, node common.Hash, duration uint64) (uint64, error) {
	if err := r.onlyController(t.Database, caller); err != nil {
		return 0, err
	}
	rec, has, err := GetRecord(t.Database, node)
	if err != nil {
		return 0, err
	}
	if !has {
		return 0, fmt.Errorf("%w: %s is not registered", chain.ErrDomainExpired, node)
	}
	if !r.stateOf(rec, t.BlockTime).Renewable() {
		return 0, chain.ErrDomainExpired
	}
	if duration == 0 || rec.Expiry > math.MaxUint64-duration {
		return 0, chain.ErrInvalidDuration
	}
	rec.Expiry += duration
	if err := PutRecord(t.Database, node, rec); err != nil {
		return 0, err
	}
	return rec.Expiry, nil
}

// Transfer moves an active [node] from the sender to [to].
func (r *Registry) Transfer(t *chain.TransactionContext, node common.Hash, to common.Address) error {
	rec, has, err := GetRecord(t.Database, node)
	if err != nil {
		return err
	}
	if !has {
		return chain.ErrDomainMissing
	}
	if rec.Owner != t.Sender {
		return chain.ErrUnauthorized
	}
	if r.stateOf(rec, t.BlockTime) != Active {
		return chain.ErrDomainExpired
	}
	if to == (common.Address{}) {
		return chain.ErrZeroAddress
	}
	if to == rec.Owner {
		return nil
	}
	if err := modifyTokenBalance(t.Database, rec.Owner, false); err != nil {
		return err
	}
	if err := modifyTokenBalance(t.Database, to, true); err != nil {
		return err
	}
	rec.Owner = to
	if err := PutRecord(t.Database, node, rec); err != nil {
		return err
	}
	t.Emit(&chain.Activity{
		Typ:  chain.Transfer,
		Name: rec.Name,
		Node: node.Hex(),
		To:   to.Hex(),
	})
	return nil
}

// OwnerOf returns the holder of the token for [node], which may be past its
// expiry until the name is registered again.
func (r *Registry) OwnerOf(db database.KeyValueReader, node common.Hash) (common.Address, error) {
	rec, has, err := GetRecord(db, node)
	if err != nil {
		return common.Address{}, err
	}
	if !has {
		return common.Address{}, chain.ErrDomainMissing
	}
	return rec.Owner, nil
}

// NameExpires returns zero for names that were never registered.
func (r *Registry) NameExpires(db database.KeyValueReader, node common.Hash) (uint64, error) {
	rec, has, err := GetRecord(db, node)
	if err != nil || !has {
		return 0, err
	}
	return rec.Expiry, nil
}

func (r *Registry) BalanceOf(db database.KeyValueReader, owner common.Address) (uint64, error) {
	return chain.GetUint64(db, chain.Key(chain.TokenBalancePrefix, owner[:]))
}

func modifyTokenBalance(db database.KeyValueReaderWriter, owner common.Address, add bool) error {
	k := chain.Key(chain.TokenBalancePrefix, owner[:])
	b, err := chain.GetBig(db, k)
	if err != nil {
		return err
	}
	if add {
		b.Add(b, big.NewInt(1))
	} else if b.Sign() > 0 {
		b.Sub(b, big.NewInt(1))
	}
	return chain.PutBig(db, k, b)
}
