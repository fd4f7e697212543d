// Package fixedpoint implements the overflow-checked integer arithmetic used
// by every pool operation. Operands and results are uint64; intermediate
// products are held in 256-bit integers so they can never wrap.
package fixedpoint

import (
	"math/bits"

	errorsmod "cosmossdk.io/errors"
	"github.com/holiman/uint256"

	"ammCore/internal/model"
)

// MulDiv returns floor(a*b/c).
func MulDiv(a, b, c uint64) (uint64, error) {
	if c == 0 {
		return 0, errorsmod.Wrapf(model.ErrDivisionByZero, "%d * %d / 0", a, b)
	}
	z := mul(a, b)
	z.Div(z, uint256.NewInt(c))
	if !z.IsUint64() {
		return 0, errorsmod.Wrapf(model.ErrOverflow, "%d * %d / %d exceeds 64 bits", a, b, c)
	}
	return z.Uint64(), nil
}

// Add returns a+b, failing instead of wrapping.
func Add(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, errorsmod.Wrapf(model.ErrOverflow, "%d + %d exceeds 64 bits", a, b)
	}
	return sum, nil
}

// Sub returns a-b, failing instead of wrapping below zero.
func Sub(a, b uint64) (uint64, error) {
	diff, borrow := bits.Sub64(a, b, 0)
	if borrow != 0 {
		return 0, errorsmod.Wrapf(model.ErrOverflow, "%d - %d underflows", a, b)
	}
	return diff, nil
}

// MulEqual reports whether a*b == c*d, compared without narrowing.
func MulEqual(a, b, c, d uint64) bool {
	return mul(a, b).Eq(mul(c, d))
}

// SqrtProduct returns floor(sqrt(a*b)). The result always fits in 64 bits.
func SqrtProduct(a, b uint64) uint64 {
	z := mul(a, b)
	z.Sqrt(z)
	return z.Uint64()
}

// Min returns the smaller of a and b.
func Min(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}

func mul(a, b uint64) *uint256.Int {
	return new(uint256.Int).Mul(uint256.NewInt(a), uint256.NewInt(b))
}
