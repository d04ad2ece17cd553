// Copyright (C) 2025, Stable Foundation Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vault

import (
	"fmt"

	"github.com/luxfi/geth/common"

	"github.com/stablefdn/usdx/token"
)

// Treasury operations move uncollateralized funds in and out of the
// vault account. Deposits add slack above the backing requirement;
// withdrawals may only draw that excess, never the collateral backing
// outstanding synthetic supply.

// DepositTreasury moves amount collateral from the authority into the
// vault account without minting.
func (v *Vault) DepositTreasury(authority common.Address, amount uint64) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.ledger.Initialized {
		return ErrNotInitialized
	}
	if authority != v.ledger.Authority {
		return ErrUnauthorized
	}
	if amount == 0 {
		return ErrInvalidAmount
	}

	if v.bank.Balance(v.ledger.CollateralMint, authority) < amount {
		return ErrInsufficientCollateral
	}
	newCollateral, ok := token.CheckedAdd(v.ledger.TotalCollateral, amount)
	if !ok {
		return ErrOverflow
	}

	if err := v.bank.Transfer(v.ledger.CollateralMint, authority, v.ledger.VaultAccount, amount); err != nil {
		return fmt.Errorf("vault: treasury deposit: %w", err)
	}
	v.ledger.TotalCollateral = newCollateral
	if err := v.persist(); err != nil {
		return err
	}

	v.sink.Emit(TreasuryDepositEvent{Authority: authority, Amount: amount, Timestamp: v.now()})
	v.log.Info(fmt.Sprintf("treasury deposit %d", amount))
	return nil
}

// WithdrawTreasury draws amount from the excess collateral above the
// outstanding synthetic supply.
func (v *Vault) WithdrawTreasury(authority common.Address, amount uint64) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.ledger.Initialized {
		return ErrNotInitialized
	}
	if authority != v.ledger.Authority {
		return ErrUnauthorized
	}

	vaultBalance := v.bank.Balance(v.ledger.CollateralMint, v.ledger.VaultAccount)
	if vaultBalance < v.ledger.TotalMinted {
		return ErrInsufficientVault
	}
	available := vaultBalance - v.ledger.TotalMinted
	if amount > available {
		return ErrInsufficientVault
	}
	newCollateral, ok := token.CheckedSub(v.ledger.TotalCollateral, amount)
	if !ok {
		return ErrOverflow
	}

	if err := v.bank.Transfer(v.ledger.CollateralMint, v.ledger.VaultAccount, authority, amount); err != nil {
		return fmt.Errorf("vault: treasury withdrawal: %w", err)
	}
	v.ledger.TotalCollateral = newCollateral
	if err := v.persist(); err != nil {
		return err
	}

	v.sink.Emit(TreasuryWithdrawalEvent{Authority: authority, Amount: amount, Timestamp: v.now()})
	v.log.Info(fmt.Sprintf("treasury withdrawal %d", amount))
	return nil
}

// WithdrawFees pays out accrued fees from the vault account to the
// authority. Capped by the fee counter so backing collateral cannot
// leave through this path.
func (v *Vault) WithdrawFees(authority common.Address, amount uint64) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.ledger.Initialized {
		return ErrNotInitialized
	}
	if authority != v.ledger.Authority {
		return ErrUnauthorized
	}
	if amount > v.ledger.TotalFees {
		return ErrInsufficientFees
	}
	if v.bank.Balance(v.ledger.CollateralMint, v.ledger.VaultAccount) < amount {
		return ErrInsufficientVault
	}

	newFees, ok := token.CheckedSub(v.ledger.TotalFees, amount)
	if !ok {
		return ErrOverflow
	}
	newCollateral, ok := token.CheckedSub(v.ledger.TotalCollateral, amount)
	if !ok {
		return ErrOverflow
	}

	if err := v.bank.Transfer(v.ledger.CollateralMint, v.ledger.VaultAccount, authority, amount); err != nil {
		return fmt.Errorf("vault: fee withdrawal: %w", err)
	}
	v.ledger.TotalFees = newFees
	v.ledger.TotalCollateral = newCollateral
	if err := v.persist(); err != nil {
		return err
	}

	v.sink.Emit(FeesWithdrawnEvent{Authority: authority, Amount: amount, Timestamp: v.now()})
	v.log.Info(fmt.Sprintf("fees withdrawn %d", amount))
	return nil
}
