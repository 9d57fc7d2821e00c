// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package vm executes signed calls against the name registry state and serves
// it over JSON-RPC.
package vm

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"time"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/database/versiondb"
	"github.com/ava-labs/avalanchego/ids"
	avajson "github.com/ava-labs/avalanchego/utils/json"
	"github.com/gorilla/rpc/v2"
	log "github.com/inconshreveable/log15"

	"github.com/dothype/hypevm/chain"
	"github.com/dothype/hypevm/controller"
	"github.com/dothype/hypevm/ledger"
	"github.com/dothype/hypevm/oracle"
	"github.com/dothype/hypevm/registry"
	"github.com/dothype/hypevm/resolver"
	"github.com/dothype/hypevm/version"
)

const (
	Name            = "hypevm"
	PublicEndpoint  = "/public"
	PrivateEndpoint = "/private"
)

var genesisKey = chain.Key(chain.SettingPrefix, []byte("vm.genesis"))

type VM struct {
	config  Config
	genesis *chain.Genesis
	db      database.Database
	clock   Clock

	// mu serializes calls; queries share it for reading
	mu sync.RWMutex

	registry   *registry.Registry
	ledger     *ledger.Ledger
	controller *controller.Controller
	resolver   *resolver.Resolver

	activity *activityCache

	started     bool
	stopOnce    sync.Once
	stop        chan struct{}
	donePrune   chan struct{}
	doneCompact chan struct{}
}

// Result is the outcome of one executed call.
type Result struct {
	CallID   ids.ID            `json:"callId"`
	Output   json.RawMessage   `json:"output,omitempty"`
	Activity []*chain.Activity `json:"activity,omitempty"`
}

// New loads the modules described by [g] over [db] and writes the genesis
// state on first start.
func New(cfg Config, g *chain.Genesis, db database.Database, clock Clock) (*VM, error) {
	if err := g.Verify(); err != nil {
		return nil, err
	}
	if clock == nil {
		clock = RealClock{}
	}
	o, err := genesisOracle(&cfg, g)
	if err != nil {
		return nil, err
	}

	reg := registry.New(g)
	led := ledger.New()
	led.AttachSplits(g.Splits)
	vm := &VM{
		config:      cfg,
		genesis:     g,
		db:          db,
		clock:       clock,
		registry:    reg,
		ledger:      led,
		controller:  controller.New(g, reg, led, o),
		resolver:    resolver.New(reg),
		activity:    newActivityCache(cfg.ActivityCacheSize),
		stop:        make(chan struct{}),
		donePrune:   make(chan struct{}),
		doneCompact: make(chan struct{}),
	}
	if err := vm.initGenesis(); err != nil {
		return nil, err
	}
	// A spec stored by the owner takes precedence over config and genesis.
	if _, err := vm.controller.PriceOracle(db); err != nil {
		return nil, err
	}
	log.Info("initialized hypevm",
		"version", version.Version,
		"tld", g.TLD,
		"controller", g.Controller,
		"owner", g.Owner,
	)
	return vm, nil
}

func genesisOracle(cfg *Config, g *chain.Genesis) (oracle.PriceOracle, error) {
	if len(cfg.Feed.URL) > 0 {
		log.Info("using price feed", "url", cfg.Feed.URL, "path", cfg.Feed.Path)
		return oracle.NewFeed(cfg.Feed)
	}
	if g.HypePrice == nil {
		return nil, fmt.Errorf("%w: genesis has no hype price", ErrInvalidOracle)
	}
	return oracle.NewFixed((*big.Int)(g.HypePrice))
}

func (vm *VM) initGenesis() error {
	vdb := versiondb.New(vm.db)
	defer vdb.Abort()

	has, err := vdb.Has(genesisKey)
	if err != nil || has {
		return err
	}
	if err := registry.Init(vdb, vm.genesis); err != nil {
		return err
	}
	if err := controller.Init(vdb, vm.genesis); err != nil {
		return err
	}
	for _, a := range vm.genesis.Allocations {
		if err := ledger.Mint(vdb, a.Address, (*big.Int)(a.Balance)); err != nil {
			return err
		}
		log.Debug("genesis allocation", "address", a.Address, "balance", (*big.Int)(a.Balance))
	}
	if err := vdb.Put(genesisKey, []byte{1}); err != nil {
		return err
	}
	return vdb.Commit()
}

// Start launches the background maintenance loops.
func (vm *VM) Start() {
	vm.started = true
	go vm.prune()
	go vm.compact()
}

// Shutdown stops the background loops and closes the database. It is safe
// to call more than once.
func (vm *VM) Shutdown() error {
	err := ErrAlreadyShutdown
	vm.stopOnce.Do(func() {
		close(vm.stop)
		err = nil
	})
	if err != nil {
		return err
	}
	if vm.started {
		<-vm.donePrune
		<-vm.doneCompact
	}

	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.controller.Close()
	return vm.db.Close()
}

func (vm *VM) Genesis() *chain.Genesis { return vm.genesis }

func (vm *VM) Config() Config { return vm.config }

func (vm *VM) now() uint64 {
	return uint64(vm.clock.Now().Unix())
}

func (vm *VM) callWindow() uint64 {
	return uint64(vm.config.CallTTL / time.Second)
}

func callKey(id ids.ID) []byte {
	return chain.Key(chain.CallPrefix, id[:])
}

// forgetAfter is the time after which a call with [timestamp] can no longer
// pass the staleness check, so its ID need not be remembered.
func (vm *VM) forgetAfter(timestamp uint64) uint64 {
	return timestamp + 2*vm.callWindow() + 1
}

// Execute verifies the signed envelope [raw] and applies it atomically. A
// failed call leaves no trace in state other than its ID being marked seen.
func (vm *VM) Execute(ctx context.Context, raw []byte, sig []byte) (*Result, error) {
	c, err := decodeCall(raw, sig)
	if err != nil {
		return nil, err
	}
	res := &Result{CallID: CallID(raw)}

	vm.mu.Lock()
	defer vm.mu.Unlock()

	now := vm.now()
	window := vm.callWindow()
	if c.Timestamp+window < now || c.Timestamp > now+window {
		return res, fmt.Errorf("%w: timestamp %d, now %d", ErrStaleCall, c.Timestamp, now)
	}
	key := callKey(res.CallID)
	seen, err := vm.db.Has(key)
	if err != nil {
		return res, err
	}
	if seen {
		return res, fmt.Errorf("%w: %s", ErrDuplicateCall, res.CallID)
	}
	h, ok := handlers[c.Method]
	if !ok {
		return res, fmt.Errorf("%w: %q", ErrUnknownMethod, c.Method)
	}

	vdb := versiondb.New(vm.db)
	t := chain.NewContext(ctx, vm.genesis, vdb, now, c.Sender, c.GetValue())
	out, err := h(vm, t, c.Args)
	if err == nil && out != nil {
		res.Output, err = json.Marshal(out)
	}
	if err != nil {
		vdb.Abort()
		log.Debug("call failed",
			"callId", res.CallID,
			"method", c.Method,
			"sender", c.Sender,
			"kind", Classify(err),
			"error", err,
		)
		if perr := chain.PutUint64(vm.db, key, vm.forgetAfter(c.Timestamp)); perr != nil {
			log.Warn("unable to mark failed call as seen", "callId", res.CallID, "error", perr)
		}
		return res, err
	}
	if err := chain.PutUint64(vdb, key, vm.forgetAfter(c.Timestamp)); err != nil {
		vdb.Abort()
		return res, err
	}
	if err := vdb.Commit(); err != nil {
		return res, err
	}

	res.Activity = t.Activity()
	for _, a := range res.Activity {
		log.Info("activity",
			"type", a.Typ,
			"sender", a.Sender,
			"name", a.Name,
			"to", a.To,
			"amount", a.Amount,
			"details", a.Details,
		)
	}
	vm.activity.Add(res.Activity...)
	return res, nil
}

// read runs [f] against committed state at the current VM time.
func (vm *VM) read(f func(db database.Database, now uint64) error) error {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return f(vm.db, vm.now())
}

func (vm *VM) RecentActivity() []*chain.Activity {
	return vm.activity.Recent()
}

func newServer() *rpc.Server {
	server := rpc.NewServer()
	server.RegisterCodec(avajson.NewCodec(), "application/json")
	server.RegisterCodec(avajson.NewCodec(), "application/json;charset=UTF-8")
	return server
}

// CreateHandlers returns the JSON-RPC handlers keyed by endpoint.
func (vm *VM) CreateHandlers() (map[string]http.Handler, error) {
	public := newServer()
	if err := public.RegisterService(&PublicService{vm: vm}, Name); err != nil {
		return nil, err
	}
	private := newServer()
	if err := private.RegisterService(&PrivateService{vm: vm}, Name); err != nil {
		return nil, err
	}
	return map[string]http.Handler{
		PublicEndpoint:  public,
		PrivateEndpoint: private,
	}, nil
}
