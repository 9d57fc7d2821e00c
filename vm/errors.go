// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vm

import (
	"errors"

	"github.com/dothype/hypevm/chain"
)

var (
	ErrEmptyCall       = errors.New("empty call")
	ErrInvalidArgs     = errors.New("invalid call arguments")
	ErrUnknownMethod   = errors.New("unknown method")
	ErrSenderMismatch  = errors.New("signer does not match sender")
	ErrStaleCall       = errors.New("call timestamp outside of accepted window")
	ErrDuplicateCall   = errors.New("duplicate call")
	ErrInvalidOracle   = chain.ErrInvalidOracle
	ErrNotInitialized  = errors.New("vm not initialized")
	ErrAlreadyShutdown = errors.New("vm already shut down")
)

// Classify extends chain.Classify with the failures of the call envelope.
func Classify(err error) chain.Kind {
	switch {
	case errors.Is(err, ErrSenderMismatch):
		return chain.KindAuthorization
	case errors.Is(err, ErrEmptyCall), errors.Is(err, ErrInvalidArgs),
		errors.Is(err, ErrUnknownMethod), errors.Is(err, ErrStaleCall):
		return chain.KindValidation
	case errors.Is(err, ErrDuplicateCall):
		return chain.KindStateConflict
	}
	return chain.Classify(err)
}
