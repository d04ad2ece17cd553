// Copyright (C) 2025, Stable Foundation Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vault

import "errors"

var (
	ErrPaused                 = errors.New("vault is paused")
	ErrNotInitialized         = errors.New("vault not initialized")
	ErrAlreadyInitialized     = errors.New("vault already initialized")
	ErrUnauthorized           = errors.New("unauthorized authority")
	ErrInvalidAmount          = errors.New("amount must be greater than zero")
	ErrBelowMinimum           = errors.New("amount below minimum deposit")
	ErrAboveMaximum           = errors.New("amount above maximum limit")
	ErrInsufficientBalance    = errors.New("insufficient synthetic balance")
	ErrInsufficientCollateral = errors.New("insufficient collateral balance")
	ErrInsufficientVault      = errors.New("insufficient vault balance")
	ErrInsufficientFees       = errors.New("insufficient fees collected")
	ErrDelayNotMet            = errors.New("withdrawal delay not met")
	ErrNoPendingWithdrawal    = errors.New("no pending withdrawal for user")
	ErrWithdrawalPending      = errors.New("a withdrawal is already pending for user")
	ErrUnauthorizedWithdrawal = errors.New("withdrawal request owner mismatch")
	ErrMintAuthorityLost      = errors.New("vault does not hold the synthetic mint authority")
	ErrOverflow               = errors.New("arithmetic overflow")
)
