// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package controller

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/dothype/hypevm/chain"
	"github.com/dothype/hypevm/ledger"
	"github.com/dothype/hypevm/oracle"
	"github.com/dothype/hypevm/parser"
)

func checkTier(tier int) error {
	if tier < 1 || tier > chain.Tiers {
		return fmt.Errorf("%w: tier %d", chain.ErrInvalidCharacterCount, tier)
	}
	return nil
}

func (c *Controller) setTierPrice(t *chain.TransactionContext, kind byte, tier int, price *big.Int) error {
	if err := checkTier(tier); err != nil {
		return err
	}
	if price == nil || price.Sign() < 0 {
		return fmt.Errorf("%w: negative price", chain.ErrPricingNotSet)
	}
	if err := putTierPrice(t.Database, kind, tier, price); err != nil {
		return err
	}
	typ := chain.PriceUpdated
	if kind == renewalKind {
		typ = chain.RenewalPriceUpdated
	}
	t.Emit(&chain.Activity{Typ: typ, Amount: price.String(), Details: fmt.Sprintf("tier=%d", tier)})
	return nil
}

// SetAnnualPrice sets the USD registration price per year of [tier].
func (c *Controller) SetAnnualPrice(t *chain.TransactionContext, tier int, price *big.Int) error {
	exit, err := c.admin(t)
	if err != nil {
		return err
	}
	defer exit()
	return c.setTierPrice(t, registrationKind, tier, price)
}

// SetAnnualRenewalPrice sets the USD renewal price per year of [tier].
func (c *Controller) SetAnnualRenewalPrice(t *chain.TransactionContext, tier int, price *big.Int) error {
	exit, err := c.admin(t)
	if err != nil {
		return err
	}
	defer exit()
	return c.setTierPrice(t, renewalKind, tier, price)
}

// SetAllAnnualPrices replaces the registration price of every tier.
func (c *Controller) SetAllAnnualPrices(t *chain.TransactionContext, prices [chain.Tiers]*big.Int) error {
	exit, err := c.admin(t)
	if err != nil {
		return err
	}
	defer exit()
	for i, p := range prices {
		if err := c.setTierPrice(t, registrationKind, i+1, p); err != nil {
			return err
		}
	}
	return nil
}

// SetAllAnnualRenewalPrices replaces the renewal price of every tier.
func (c *Controller) SetAllAnnualRenewalPrices(t *chain.TransactionContext, prices [chain.Tiers]*big.Int) error {
	exit, err := c.admin(t)
	if err != nil {
		return err
	}
	defer exit()
	for i, p := range prices {
		if err := c.setTierPrice(t, renewalKind, i+1, p); err != nil {
			return err
		}
	}
	return nil
}

func (c *Controller) SetPaymentRecipient(t *chain.TransactionContext, recipient common.Address) error {
	exit, err := c.admin(t)
	if err != nil {
		return err
	}
	defer exit()
	if recipient == (common.Address{}) {
		return chain.ErrZeroAddress
	}
	if err := chain.PutAddress(t.Database, settingKey(recipientSetting), recipient); err != nil {
		return err
	}
	t.Emit(&chain.Activity{Typ: chain.RecipientSet, To: recipient.Hex()})
	return nil
}

// SetPriceOracle stores [spec] as the conversion source. Prices read through
// the call database pick it up once the call commits.
func (c *Controller) SetPriceOracle(t *chain.TransactionContext, spec *oracle.Spec) error {
	exit, err := c.admin(t)
	if err != nil {
		return err
	}
	defer exit()
	if err := spec.Verify(); err != nil {
		return fmt.Errorf("%w: %v", chain.ErrInvalidOracle, err)
	}
	if err := chain.PutObject(t.Database, settingKey(oracleSetting), spec); err != nil {
		return err
	}
	t.Emit(&chain.Activity{Typ: chain.OracleSet, Details: spec.String()})
	return nil
}

// SetSigner replaces the key that approves signature registrations. The zero
// address disables the signature path.
func (c *Controller) SetSigner(t *chain.TransactionContext, signer common.Address) error {
	exit, err := c.admin(t)
	if err != nil {
		return err
	}
	defer exit()
	if err := chain.PutAddress(t.Database, settingKey(signerSetting), signer); err != nil {
		return err
	}
	t.Emit(&chain.Activity{Typ: chain.SignerSet, To: signer.Hex()})
	return nil
}

func (c *Controller) setReservation(t *chain.TransactionContext, name string, addr common.Address) error {
	if err := parser.CheckName(name); err != nil {
		return fmt.Errorf("%w: %v", chain.ErrInvalidName, err)
	}
	if err := chain.PutAddress(t.Database, reservationKey(name), addr); err != nil {
		return err
	}
	t.Emit(&chain.Activity{Typ: chain.ReservationSet, Name: name, To: addr.Hex()})
	return nil
}

// SetReservation holds [name] for [addr]. The zero address clears it.
func (c *Controller) SetReservation(t *chain.TransactionContext, name string, addr common.Address) error {
	exit, err := c.admin(t)
	if err != nil {
		return err
	}
	defer exit()
	return c.setReservation(t, name, addr)
}

func (c *Controller) SetReservations(t *chain.TransactionContext, names []string, addrs []common.Address) error {
	exit, err := c.admin(t)
	if err != nil {
		return err
	}
	defer exit()
	if len(names) != len(addrs) {
		return fmt.Errorf("%w: %d names for %d addresses", chain.ErrLengthMismatch, len(names), len(addrs))
	}
	for i, name := range names {
		if err := c.setReservation(t, name, addrs[i]); err != nil {
			return err
		}
	}
	return nil
}

// SetMerkleRoot replaces the allow-list root. Existing claims are kept.
func (c *Controller) SetMerkleRoot(t *chain.TransactionContext, root common.Hash) error {
	exit, err := c.admin(t)
	if err != nil {
		return err
	}
	defer exit()
	k := settingKey(merkleRootSetting)
	if root == (common.Hash{}) {
		err = t.Database.Delete(k)
	} else {
		err = t.Database.Put(k, root[:])
	}
	if err != nil {
		return err
	}
	t.Emit(&chain.Activity{Typ: chain.MerkleRootSet, Details: root.Hex()})
	return nil
}

// ResetMerkleClaims lets each of [addrs] claim again.
func (c *Controller) ResetMerkleClaims(t *chain.TransactionContext, addrs []common.Address) error {
	exit, err := c.admin(t)
	if err != nil {
		return err
	}
	defer exit()
	for _, addr := range addrs {
		if err := t.Database.Delete(claimKey(addr)); err != nil {
			return err
		}
		t.Emit(&chain.Activity{Typ: chain.MerkleClaimsReset, To: addr.Hex()})
	}
	return nil
}

// Withdraw sends the whole controller balance to the owner.
func (c *Controller) Withdraw(t *chain.TransactionContext) (*big.Int, error) {
	exit, err := c.admin(t)
	if err != nil {
		return nil, err
	}
	defer exit()
	bal, err := ledger.GetBalance(t.Database, c.address)
	if err != nil {
		return nil, err
	}
	if err := c.ledger.Transfer(t, c.address, t.Sender, bal); err != nil {
		return nil, fmt.Errorf("%w: %v", chain.ErrFundsTransferFailed, err)
	}
	t.Emit(&chain.Activity{Typ: chain.Withdrawn, To: t.Sender.Hex(), Amount: bal.String()})
	return bal, nil
}

func (c *Controller) TransferOwnership(t *chain.TransactionContext, owner common.Address) error {
	exit, err := c.admin(t)
	if err != nil {
		return err
	}
	defer exit()
	if owner == (common.Address{}) {
		return chain.ErrZeroAddress
	}
	if err := chain.PutAddress(t.Database, settingKey(ownerSetting), owner); err != nil {
		return err
	}
	t.Emit(&chain.Activity{Typ: chain.OwnershipSet, To: owner.Hex()})
	return nil
}
