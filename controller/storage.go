// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package controller

import (
	"math/big"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ethereum/go-ethereum/common"

	"github.com/dothype/hypevm/chain"
	"github.com/dothype/hypevm/parser"
)

const (
	initializedSetting = "controller.initialized"
	ownerSetting       = "controller.owner"
	signerSetting      = "controller.signer"
	recipientSetting   = "controller.recipient"
	merkleRootSetting  = "controller.merkleRoot"
	oracleSetting      = "controller.oracle"
	lastBatchSetting   = "auction.lastBatch"

	registrationKind byte = 0x0
	renewalKind      byte = 0x1
)

func settingKey(name string) []byte {
	return chain.Key(chain.SettingPrefix, []byte(name))
}

func priceKey(kind byte, tier int) []byte {
	return chain.Key(chain.PricePrefix, []byte{kind, byte(tier)})
}

func getTierPrice(db database.KeyValueReader, kind byte, tier int) (*big.Int, error) {
	return chain.GetBig(db, priceKey(kind, tier))
}

func putTierPrice(db database.KeyValueWriter, kind byte, tier int, price *big.Int) error {
	return chain.PutBig(db, priceKey(kind, tier), price)
}

// AnnualPrice is the USD registration price per year for [tier].
func AnnualPrice(db database.KeyValueReader, tier int) (*big.Int, error) {
	return getTierPrice(db, registrationKind, tier)
}

// AnnualRenewalPrice is the USD renewal price per year for [tier].
func AnnualRenewalPrice(db database.KeyValueReader, tier int) (*big.Int, error) {
	return getTierPrice(db, renewalKind, tier)
}

func reservationKey(name string) []byte {
	h := parser.LabelHash(name)
	return chain.Key(chain.ReservationPrefix, h[:])
}

func nonceKey(owner common.Address) []byte {
	return chain.Key(chain.NoncePrefix, owner[:])
}

func claimKey(addr common.Address) []byte {
	return chain.Key(chain.ClaimPrefix, addr[:])
}

func batchKey(id uint64) []byte {
	return chain.Key(chain.BatchPrefix, new(big.Int).SetUint64(id).Bytes())
}

func assignmentKey(name string) []byte {
	h := parser.LabelHash(name)
	return chain.Key(chain.AssignmentPrefix, h[:])
}
