// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"net/http"
)

// PrivateService exposes operator maintenance that does not touch registry
// state. It should only be reachable from the host.
type PrivateService struct {
	vm *VM
}

type PruneCallsReply struct {
	Removed int `json:"removed"`
}

func (svc *PrivateService) PruneCalls(_ *http.Request, _ *struct{}, reply *PruneCallsReply) error {
	vm := svc.vm
	vm.mu.Lock()
	defer vm.mu.Unlock()

	removed, err := pruneCalls(vm.db, vm.now(), vm.config.PruneLimit)
	reply.Removed = removed
	return err
}
