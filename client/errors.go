// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package client

import (
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/dothype/hypevm/chain"
)

var ErrCallFailed = errors.New("call failed")

// CallError is a call the VM executed and rejected.
type CallError struct {
	CallID  ids.ID
	Kind    chain.Kind
	Message string
}

func (e *CallError) Error() string {
	return fmt.Sprintf("%v (%s): %s", ErrCallFailed, e.Kind, e.Message)
}

func (e *CallError) Is(target error) bool {
	return target == ErrCallFailed
}
