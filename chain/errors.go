// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"errors"
	"fmt"
	"math/big"
)

var (
	// Authorization
	ErrNotOwner           = errors.New("caller is not the owner")
	ErrNotController      = errors.New("caller is not the controller")
	ErrUnauthorized       = errors.New("sender is not authorized")
	ErrNotAuthorized      = errors.New("caller is not the reserved address")
	ErrNotReserved        = errors.New("name is not reserved")
	ErrNameIsReserved     = errors.New("name is reserved for another address")
	ErrSignatureExpired   = errors.New("signature expired")
	ErrInvalidSignature   = errors.New("invalid signature")
	ErrInvalidSigner      = errors.New("invalid signer")
	ErrMerkleRootNotSet   = errors.New("merkle root not set")
	ErrInvalidMerkleProof = errors.New("invalid merkle proof")
	ErrAlreadyMinted      = errors.New("address already claimed")

	// Validation
	ErrDurationTooShort      = errors.New("duration too short")
	ErrInvalidDuration       = errors.New("invalid duration")
	ErrInvalidCharacterCount = errors.New("invalid character count")
	ErrPricingNotSet         = errors.New("pricing not set")
	ErrInvalidAuctionConfig  = errors.New("invalid auction config")
	ErrInvalidName           = errors.New("invalid name")
	ErrZeroAddress           = errors.New("zero address")
	ErrNonPayable            = errors.New("call does not accept value")
	ErrRecordTooLarge        = errors.New("record too large")
	ErrLengthMismatch        = errors.New("argument lengths differ")
	ErrInvalidOracle         = errors.New("oracle requires either a price or a feed")
	ErrInvalidSplit          = errors.New("invalid payment split")

	// Economic
	ErrInsufficientPayment = errors.New("insufficient payment")
	ErrFundsTransferFailed = errors.New("funds transfer failed")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrOracleFailure       = errors.New("price oracle failure")

	// State conflict
	ErrNameNotAvailable       = errors.New("name not available")
	ErrDomainExpired          = errors.New("domain expired")
	ErrDomainMissing          = errors.New("domain missing")
	ErrDomainNotInAuction     = errors.New("domain not in auction")
	ErrDomainAlreadyInAuction = errors.New("domain already in auction")
	ErrInvalidBatch           = errors.New("invalid batch")
	ErrReentrantCall          = errors.New("reentrant call")
)

// InsufficientPaymentError carries the amounts behind ErrInsufficientPayment.
type InsufficientPaymentError struct {
	Required *big.Int
	Provided *big.Int
}

func (e *InsufficientPaymentError) Error() string {
	return fmt.Sprintf("%v: required %s, provided %s", ErrInsufficientPayment, e.Required, e.Provided)
}

func (e *InsufficientPaymentError) Is(target error) bool {
	return target == ErrInsufficientPayment
}

func InsufficientPayment(required, provided *big.Int) error {
	return &InsufficientPaymentError{
		Required: new(big.Int).Set(required),
		Provided: new(big.Int).Set(provided),
	}
}

// Kind is the failure class of an error returned by a call.
type Kind string

const (
	KindNone          Kind = ""
	KindAuthorization Kind = "authorization"
	KindValidation    Kind = "validation"
	KindEconomic      Kind = "economic"
	KindStateConflict Kind = "state-conflict"
	KindInternal      Kind = "internal"
)

var kinds = map[Kind][]error{
	KindAuthorization: {
		ErrNotOwner, ErrNotController, ErrUnauthorized, ErrNotAuthorized,
		ErrNotReserved, ErrNameIsReserved, ErrSignatureExpired,
		ErrInvalidSignature, ErrInvalidSigner, ErrMerkleRootNotSet,
		ErrInvalidMerkleProof, ErrAlreadyMinted,
	},
	KindValidation: {
		ErrDurationTooShort, ErrInvalidDuration, ErrInvalidCharacterCount,
		ErrPricingNotSet, ErrInvalidAuctionConfig, ErrInvalidName,
		ErrZeroAddress, ErrNonPayable, ErrRecordTooLarge, ErrLengthMismatch,
		ErrInvalidOracle, ErrInvalidSplit,
	},
	KindEconomic: {
		ErrInsufficientPayment, ErrFundsTransferFailed,
		ErrInsufficientBalance, ErrOracleFailure,
	},
	KindStateConflict: {
		ErrNameNotAvailable, ErrDomainExpired, ErrDomainMissing,
		ErrDomainNotInAuction, ErrDomainAlreadyInAuction, ErrInvalidBatch,
		ErrReentrantCall,
	},
}

// Classify returns the failure class of [err].
func Classify(err error) Kind {
	if err == nil {
		return KindNone
	}
	for _, k := range []Kind{KindAuthorization, KindValidation, KindEconomic, KindStateConflict} {
		for _, target := range kinds[k] {
			if errors.Is(err, target) {
				return k
			}
		}
	}
	return KindInternal
}
