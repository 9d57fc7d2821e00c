// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"github.com/ava-labs/avalanchego/ids"
	"golang.org/x/crypto/sha3"
)

const (
	NameRegistered      = "nameRegistered"
	NameRenewed         = "nameRenewed"
	Transfer            = "transfer"
	ControllerSet       = "controllerSet"
	ReservationSet      = "reservationSet"
	PriceUpdated        = "priceUpdated"
	RenewalPriceUpdated = "renewalPriceUpdated"
	RecipientSet        = "paymentRecipientSet"
	OracleSet           = "priceOracleSet"
	SignerSet           = "signerSet"
	OwnershipSet        = "ownershipTransferred"
	MerkleRootSet       = "merkleRootSet"
	MerkleClaimsReset   = "merkleClaimsReset"
	MerkleClaimed       = "merkleClaimed"
	BatchCreated        = "auctionBatchCreated"
	AuctionPurchased    = "auctionPurchased"
	Withdrawn           = "withdrawn"
	PaymentForwarded    = "paymentForwarded"
	RecordChanged       = "recordChanged"
)

type Activity struct {
	Tmstmp  uint64 `serialize:"true" json:"timestamp"`
	Sender  string `serialize:"true" json:"sender"`
	Typ     string `serialize:"true" json:"type"`
	Name    string `serialize:"true" json:"name,omitempty"`
	Node    string `serialize:"true" json:"node,omitempty"`
	To      string `serialize:"true" json:"to,omitempty"` // common.Address will be 0x000 when not populated
	Expiry  uint64 `serialize:"true" json:"expiry,omitempty"`
	Amount  string `serialize:"true" json:"amount,omitempty"`
	Batch   uint64 `serialize:"true" json:"batch,omitempty"`
	Details string `serialize:"true" json:"details,omitempty"`
}

// ID is the sha3 digest of the encoded activity.
func (a *Activity) ID() (ids.ID, error) {
	b, err := Marshal(a)
	if err != nil {
		return ids.Empty, err
	}
	return ids.ID(sha3.Sum256(b)), nil
}
