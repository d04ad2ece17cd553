// Copyright (C) 2025, Stable Foundation Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vault

import (
	"fmt"

	"github.com/luxfi/geth/common"

	"github.com/stablefdn/usdx/token"
)

// The withdrawal pipeline is two-phase: RequestWithdrawal records the
// intent and starts the clock; SettleWithdrawal burns and pays out
// once the delay has elapsed. The tokens stay in the user's account
// during the delay; balances are re-checked at settlement. There is no
// cancellation path for a pending request.

// RequestWithdrawal locks in a withdrawal intent for user. At most one
// request may be pending per user.
func (v *Vault) RequestWithdrawal(user common.Address, amount uint64) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.ledger.Initialized {
		return ErrNotInitialized
	}
	if v.ledger.Paused {
		return ErrPaused
	}
	if amount == 0 {
		return ErrInvalidAmount
	}
	if amount > MaxWithdrawal {
		return ErrAboveMaximum
	}
	if v.bank.Balance(v.ledger.SyntheticMint, user) < amount {
		return ErrInsufficientBalance
	}

	req := pendingWithdrawal{Owner: user, Amount: amount, RequestedAt: v.now()}
	created, err := v.withdrawals.PutIfAbsent(user.Bytes(), req.encode())
	if err != nil {
		return fmt.Errorf("vault: store withdrawal request: %w", err)
	}
	if !created {
		return ErrWithdrawalPending
	}

	v.sink.Emit(WithdrawalInitiatedEvent{User: user, Amount: amount, RequestTime: req.RequestedAt})
	v.log.Info(fmt.Sprintf("withdrawal of %d requested by %s", amount, user))
	return nil
}

// SettleWithdrawal completes user's pending request once the delay has
// elapsed: burns the synthetic amount, pays out collateral minus the
// redemption fee, and destroys the request record.
func (v *Vault) SettleWithdrawal(user common.Address) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.ledger.Initialized {
		return ErrNotInitialized
	}
	if v.ledger.Paused {
		return ErrPaused
	}

	raw, err := v.withdrawals.Get(user.Bytes())
	if err != nil {
		return fmt.Errorf("vault: load withdrawal request: %w", err)
	}
	if raw == nil {
		return ErrNoPendingWithdrawal
	}
	req, err := decodeWithdrawal(raw)
	if err != nil {
		return fmt.Errorf("vault: load withdrawal request: %w", err)
	}
	if req.Owner != user {
		return ErrUnauthorizedWithdrawal
	}

	now := v.now()
	if now-req.RequestedAt < WithdrawalDelay {
		return ErrDelayNotMet
	}

	amount := req.Amount
	if v.bank.Balance(v.ledger.SyntheticMint, user) < amount {
		return ErrInsufficientBalance
	}

	fee, err := RedemptionFee(amount)
	if err != nil {
		return err
	}
	payout := amount - fee

	if v.bank.Balance(v.ledger.CollateralMint, v.ledger.VaultAccount) < payout {
		return ErrInsufficientVault
	}
	if _, ok := token.CheckedAdd(v.bank.Balance(v.ledger.CollateralMint, user), payout); !ok {
		return ErrOverflow
	}
	newMinted, ok := token.CheckedSub(v.ledger.TotalMinted, amount)
	if !ok {
		return ErrOverflow
	}
	newCollateral, ok := token.CheckedSub(v.ledger.TotalCollateral, payout)
	if !ok {
		return ErrOverflow
	}
	newFees, ok := token.CheckedAdd(v.ledger.TotalFees, fee)
	if !ok {
		return ErrOverflow
	}

	// Every bank failure mode was checked above, so the request record
	// is destroyed first: a delete failure aborts with no state change,
	// and a settled request can never pay out twice.
	if err := v.withdrawals.Delete(user.Bytes()); err != nil {
		return fmt.Errorf("vault: delete withdrawal request: %w", err)
	}

	if err := v.bank.Burn(user, v.ledger.SyntheticMint, user, amount); err != nil {
		return fmt.Errorf("vault: synthetic burn: %w", err)
	}
	if err := v.bank.Transfer(v.ledger.CollateralMint, v.ledger.VaultAccount, user, payout); err != nil {
		return fmt.Errorf("vault: collateral payout: %w", err)
	}

	v.ledger.TotalMinted = newMinted
	v.ledger.TotalCollateral = newCollateral
	v.ledger.TotalFees = newFees
	if err := v.persist(); err != nil {
		return err
	}

	v.sink.Emit(WithdrawalCompletedEvent{
		User:          user,
		Burned:        amount,
		CollateralOut: payout,
		RedemptionFee: fee,
		Timestamp:     now,
	})
	v.log.Info(fmt.Sprintf("withdrawal settled for %s: burned %d, paid %d, fee %d", user, amount, payout, fee))
	return nil
}

// PendingWithdrawal reports user's pending request, if any.
func (v *Vault) PendingWithdrawal(user common.Address) (amount uint64, requestedAt int64, ok bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	raw, err := v.withdrawals.Get(user.Bytes())
	if err != nil || raw == nil {
		return 0, 0, false
	}
	req, err := decodeWithdrawal(raw)
	if err != nil {
		return 0, 0, false
	}
	return req.Amount, req.RequestedAt, true
}
