// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package controller

import (
	"fmt"
	"math/big"

	"github.com/dothype/hypevm/chain"
)

// payable guards a mutating call that accepts value. The attached value is
// moved into the controller account until the call settles it.
func (c *Controller) payable(t *chain.TransactionContext) (func(), error) {
	exit, err := c.enter()
	if err != nil {
		return nil, err
	}
	if err := c.ledger.Transfer(t, t.Sender, c.address, t.Value); err != nil {
		exit()
		return nil, fmt.Errorf("%w: escrow: %v", chain.ErrFundsTransferFailed, err)
	}
	return exit, nil
}

// processPayment forwards exactly [price] to the payment recipient and
// refunds the rest of the attached value to the sender.
func (c *Controller) processPayment(t *chain.TransactionContext, price *big.Int) error {
	if t.Value.Cmp(price) < 0 {
		return chain.InsufficientPayment(price, t.Value)
	}
	recipient, err := c.PaymentRecipient(t.Database)
	if err != nil {
		return err
	}
	if err := c.ledger.Transfer(t, c.address, recipient, price); err != nil {
		return fmt.Errorf("%w: payment: %v", chain.ErrFundsTransferFailed, err)
	}
	refund := new(big.Int).Sub(t.Value, price)
	if err := c.ledger.Transfer(t, c.address, t.Sender, refund); err != nil {
		return fmt.Errorf("%w: refund: %v", chain.ErrFundsTransferFailed, err)
	}
	return nil
}
