package amm

import (
	errorsmod "cosmossdk.io/errors"

	"ammCore/internal/fixedpoint"
	"ammCore/internal/model"
)

// SwapRequest trades AmountIn of the input asset selected by Direction.
type SwapRequest struct {
	User          string
	Direction     model.Direction
	AmountIn      uint64
	UserBalanceIn uint64
}

// SwapResult is the pool after the swap and the transfers to apply.
type SwapResult struct {
	Pool      model.Pool
	AmountOut uint64
	Fee       uint64
	Transfers []model.Transfer
}

// Quote is the outcome of a swap computed without touching balances.
type Quote struct {
	AmountOut uint64
	Fee       uint64
}

// Swap dispatches on req.Direction.
func Swap(pool model.Pool, req SwapRequest) (SwapResult, error) {
	switch req.Direction {
	case model.XForY:
		return SwapXForY(pool, req)
	case model.YForX:
		return SwapYForX(pool, req)
	default:
		return SwapResult{}, errorsmod.Wrapf(model.ErrInvalidDirection, "%q", req.Direction)
	}
}

// SwapXForY sells X for Y. The fee is taken from the input before pricing and
// stays in the X reserve.
func SwapXForY(pool model.Pool, req SwapRequest) (SwapResult, error) {
	req.Direction = model.XForY
	return swap(pool, req)
}

// SwapYForX sells Y for X. Unlike SwapXForY this direction charges no fee;
// the asymmetry is kept as observed in the deployed pools.
func SwapYForX(pool model.Pool, req SwapRequest) (SwapResult, error) {
	req.Direction = model.YForX
	return swap(pool, req)
}

// QuoteSwap computes the output of a swap without a balance precondition.
func QuoteSwap(pool model.Pool, direction model.Direction, amountIn uint64) (Quote, error) {
	out, fee, err := amountOut(pool, direction, amountIn)
	if err != nil {
		return Quote{}, err
	}
	return Quote{AmountOut: out, Fee: fee}, nil
}

func swap(pool model.Pool, req SwapRequest) (SwapResult, error) {
	assetIn, assetOut := pool.AssetX, pool.AssetY
	if req.Direction == model.YForX {
		assetIn, assetOut = pool.AssetY, pool.AssetX
	}

	if req.UserBalanceIn < req.AmountIn {
		return SwapResult{}, errorsmod.Wrapf(model.ErrInsufficientFunds,
			"%s balance %d < %d", assetIn, req.UserBalanceIn, req.AmountIn)
	}

	out, fee, err := amountOut(pool, req.Direction, req.AmountIn)
	if err != nil {
		return SwapResult{}, err
	}

	next := pool
	switch req.Direction {
	case model.XForY:
		if next.ReserveX, err = fixedpoint.Add(pool.ReserveX, req.AmountIn); err != nil {
			return SwapResult{}, err
		}
		if next.ReserveY, err = fixedpoint.Sub(pool.ReserveY, out); err != nil {
			return SwapResult{}, err
		}
	case model.YForX:
		if next.ReserveY, err = fixedpoint.Add(pool.ReserveY, req.AmountIn); err != nil {
			return SwapResult{}, err
		}
		if next.ReserveX, err = fixedpoint.Sub(pool.ReserveX, out); err != nil {
			return SwapResult{}, err
		}
	}

	transfers := []model.Transfer{
		{Kind: model.KindTransfer, Asset: assetIn, From: req.User, To: pool.ID, Amount: req.AmountIn},
		{Kind: model.KindTransfer, Asset: assetOut, From: pool.ID, To: req.User, Amount: out},
	}

	return SwapResult{Pool: next, AmountOut: out, Fee: fee, Transfers: transfers}, nil
}

// amountOut prices amountIn on the constant-product curve:
// out = floor(reserveOut * in' / (reserveIn + in')), where in' is amountIn
// less the fee for X->Y and amountIn itself for Y->X.
func amountOut(pool model.Pool, direction model.Direction, amountIn uint64) (uint64, uint64, error) {
	var (
		reserveIn, reserveOut uint64
		fee                   uint64
		err                   error
	)
	switch direction {
	case model.XForY:
		reserveIn, reserveOut = pool.ReserveX, pool.ReserveY
		fee, err = fixedpoint.MulDiv(amountIn, uint64(pool.FeeBps), model.BasisPoints)
		if err != nil {
			return 0, 0, err
		}
	case model.YForX:
		reserveIn, reserveOut = pool.ReserveY, pool.ReserveX
	default:
		return 0, 0, errorsmod.Wrapf(model.ErrInvalidDirection, "%q", direction)
	}

	afterFee, err := fixedpoint.Sub(amountIn, fee)
	if err != nil {
		return 0, 0, err
	}
	denominator, err := fixedpoint.Add(reserveIn, afterFee)
	if err != nil {
		return 0, 0, err
	}
	out, err := fixedpoint.MulDiv(reserveOut, afterFee, denominator)
	if err != nil {
		return 0, 0, err
	}
	if out == 0 {
		return 0, 0, errorsmod.Wrapf(model.ErrInvalidRatio,
			"swap of %d against reserves %d/%d yields nothing", amountIn, reserveIn, reserveOut)
	}
	return out, fee, nil
}
