package stats

import (
	"math/big"
)

const ratioScale = 18

// spotPrice is reserveY/reserveX, the price of one unit of X in Y.
func spotPrice(reserveX, reserveY uint64) *string {
	if reserveX == 0 {
		return nil
	}
	rat := new(big.Rat).SetFrac(new(big.Int).SetUint64(reserveY), new(big.Int).SetUint64(reserveX))
	val := rat.FloatString(ratioScale)
	return &val
}

func computeRate(fee *big.Int, reserve uint64) *string {
	if fee == nil || fee.Sign() == 0 || reserve == 0 {
		return nil
	}
	rat := new(big.Rat).SetFrac(fee, new(big.Int).SetUint64(reserve))
	val := rat.FloatString(ratioScale)
	return &val
}

func windowStart(ts uint64, windowSec uint64) uint64 {
	return ts - (ts % windowSec)
}
