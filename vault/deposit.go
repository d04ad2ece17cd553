// Copyright (C) 2025, Stable Foundation Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vault

import (
	"fmt"

	"github.com/luxfi/geth/common"

	"github.com/stablefdn/usdx/token"
)

// Deposit takes amount collateral from user into custody and mints the
// synthetic token net of the tiered fee. The fee stays in the vault
// account and accrues to the fee counter.
func (v *Vault) Deposit(user common.Address, amount uint64) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.ledger.Initialized {
		return ErrNotInitialized
	}
	if v.ledger.Paused {
		return ErrPaused
	}
	if amount < MinDeposit {
		return ErrBelowMinimum
	}
	if amount > MaxDeposit {
		return ErrAboveMaximum
	}

	fee, err := DepositFee(amount)
	if err != nil {
		return err
	}
	minted := amount - fee // fee <= amount by construction

	// Validate everything before the first bank call so a failure
	// cannot leave a partial update. The mint authority check matters
	// once the bridge has taken over the synthetic mint: without it
	// the collateral transfer would land and the mint would not.
	if v.bank.MintAuthority(v.ledger.SyntheticMint) != v.ledger.VaultAccount {
		return ErrMintAuthorityLost
	}
	if v.bank.Balance(v.ledger.CollateralMint, user) < amount {
		return ErrInsufficientCollateral
	}
	newCollateral, ok := token.CheckedAdd(v.ledger.TotalCollateral, amount)
	if !ok {
		return ErrOverflow
	}
	newMinted, ok := token.CheckedAdd(v.ledger.TotalMinted, minted)
	if !ok {
		return ErrOverflow
	}
	newFees, ok := token.CheckedAdd(v.ledger.TotalFees, fee)
	if !ok {
		return ErrOverflow
	}
	if _, ok := token.CheckedAdd(v.bank.Supply(v.ledger.SyntheticMint), minted); !ok {
		return ErrOverflow
	}

	if err := v.bank.Transfer(v.ledger.CollateralMint, user, v.ledger.VaultAccount, amount); err != nil {
		return fmt.Errorf("vault: collateral transfer: %w", err)
	}
	if err := v.bank.MintTo(v.ledger.VaultAccount, v.ledger.SyntheticMint, user, minted); err != nil {
		return fmt.Errorf("vault: synthetic mint: %w", err)
	}

	v.ledger.TotalCollateral = newCollateral
	v.ledger.TotalMinted = newMinted
	v.ledger.TotalFees = newFees
	if err := v.persist(); err != nil {
		return err
	}

	now := v.now()
	v.sink.Emit(DepositEvent{
		User:            user,
		CollateralIn:    amount,
		SyntheticMinted: minted,
		Fee:             fee,
		Timestamp:       now,
	})
	v.log.Info(fmt.Sprintf("deposit %d from %s, fee %d, minted %d", amount, user, fee, minted))
	return nil
}
