// Copyright (C) 2025, Stable Foundation Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package token

import "math/bits"

// Checked unsigned 64-bit arithmetic. The ledger counters and every
// wire amount in the system are u64; a wrap here would corrupt the
// backing invariant, so callers must abort on ok == false.

// CheckedAdd returns a+b and whether the sum fits in 64 bits.
func CheckedAdd(a, b uint64) (uint64, bool) {
	sum, carry := bits.Add64(a, b, 0)
	return sum, carry == 0
}

// CheckedSub returns a-b and whether the difference is non-negative.
func CheckedSub(a, b uint64) (uint64, bool) {
	diff, borrow := bits.Sub64(a, b, 0)
	return diff, borrow == 0
}

// CheckedMul returns a*b and whether the product fits in 64 bits.
func CheckedMul(a, b uint64) (uint64, bool) {
	hi, lo := bits.Mul64(a, b)
	return lo, hi == 0
}
