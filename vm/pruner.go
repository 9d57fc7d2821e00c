// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"math/big"
	"time"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/database/versiondb"
	log "github.com/inconshreveable/log15"

	"github.com/dothype/hypevm/chain"
)

// pruneCalls forgets up to [limit] seen call IDs that can no longer be
// replayed at [now].
func pruneCalls(db database.Database, now uint64, limit int) (int, error) {
	iter := db.NewIteratorWithPrefix(chain.PrefixKey(chain.CallPrefix))
	defer iter.Release()

	removals := 0
	for removals < limit && iter.Next() {
		forgetAfter := new(big.Int).SetBytes(iter.Value()).Uint64()
		if forgetAfter >= now {
			continue
		}
		if err := db.Delete(iter.Key()); err != nil {
			return removals, err
		}
		removals++
	}
	return removals, iter.Error()
}

func (vm *VM) pruneCall() bool {
	// Lock to prevent concurrent modification of state
	vm.mu.Lock()
	defer vm.mu.Unlock()

	vdb := versiondb.New(vm.db)
	defer vdb.Abort()
	removals, err := pruneCalls(vdb, vm.now(), vm.config.PruneLimit)
	if err != nil {
		log.Warn("unable to prune seen calls", "error", err)
		return false
	}
	if err := vdb.Commit(); err != nil {
		log.Warn("unable to commit pruning work", "error", err)
		return false
	}
	if removals > 0 {
		log.Debug("pruned seen calls", "removals", removals)
	}
	return removals == vm.config.PruneLimit
}

func (vm *VM) prune() {
	log.Debug("starting prune loops")
	defer close(vm.donePrune)

	// should retry less aggressively
	t := time.NewTimer(vm.config.PruneInterval)
	defer t.Stop()

	for {
		select {
		case <-t.C:
		case <-vm.stop:
			return
		}
		if vm.pruneCall() {
			t.Reset(vm.config.FullPruneInterval)
		} else {
			t.Reset(vm.config.PruneInterval)
		}
	}
}
