package amm

import (
	errorsmod "cosmossdk.io/errors"

	"ammCore/internal/fixedpoint"
	"ammCore/internal/model"
)

// AddLiquidityRequest is a deposit of both assets into a pool.
type AddLiquidityRequest struct {
	User         string
	AmountX      uint64
	AmountY      uint64
	UserBalanceX uint64
	UserBalanceY uint64
}

// AddLiquidityResult is the pool after the deposit and the transfers to apply.
type AddLiquidityResult struct {
	Pool         model.Pool
	SharesMinted uint64
	Transfers    []model.Transfer
}

// AddLiquidity deposits AmountX and AmountY and mints shares to the user.
//
// The first deposit mints floor(sqrt(x*y)) shares and fixes the price.
// Later deposits must match the current reserve ratio exactly and mint the
// smaller of the two proportional share amounts.
func AddLiquidity(pool model.Pool, req AddLiquidityRequest) (AddLiquidityResult, error) {
	if req.UserBalanceX < req.AmountX {
		return AddLiquidityResult{}, errorsmod.Wrapf(model.ErrInsufficientFunds,
			"%s balance %d < %d", pool.AssetX, req.UserBalanceX, req.AmountX)
	}
	if req.UserBalanceY < req.AmountY {
		return AddLiquidityResult{}, errorsmod.Wrapf(model.ErrInsufficientFunds,
			"%s balance %d < %d", pool.AssetY, req.UserBalanceY, req.AmountY)
	}

	var minted uint64
	if pool.TotalShares == 0 {
		minted = fixedpoint.SqrtProduct(req.AmountX, req.AmountY)
	} else {
		if !fixedpoint.MulEqual(req.AmountX, pool.ReserveY, req.AmountY, pool.ReserveX) {
			return AddLiquidityResult{}, errorsmod.Wrapf(model.ErrInvalidRatio,
				"deposit %d:%d does not match reserves %d:%d", req.AmountX, req.AmountY, pool.ReserveX, pool.ReserveY)
		}
		fromX, err := fixedpoint.MulDiv(req.AmountX, pool.TotalShares, pool.ReserveX)
		if err != nil {
			return AddLiquidityResult{}, err
		}
		fromY, err := fixedpoint.MulDiv(req.AmountY, pool.TotalShares, pool.ReserveY)
		if err != nil {
			return AddLiquidityResult{}, err
		}
		// Truncation can make the two sides disagree even when the ratio
		// check passes.
		minted = fixedpoint.Min(fromX, fromY)
	}
	if minted == 0 {
		return AddLiquidityResult{}, errorsmod.Wrapf(model.ErrInvalidRatio,
			"deposit %d:%d mints no shares", req.AmountX, req.AmountY)
	}

	next := pool
	var err error
	if next.ReserveX, err = fixedpoint.Add(pool.ReserveX, req.AmountX); err != nil {
		return AddLiquidityResult{}, err
	}
	if next.ReserveY, err = fixedpoint.Add(pool.ReserveY, req.AmountY); err != nil {
		return AddLiquidityResult{}, err
	}
	if next.TotalShares, err = fixedpoint.Add(pool.TotalShares, minted); err != nil {
		return AddLiquidityResult{}, err
	}

	transfers := make([]model.Transfer, 0, 3)
	transfers = appendTransfer(transfers, model.Transfer{Kind: model.KindTransfer, Asset: pool.AssetX, From: req.User, To: pool.ID, Amount: req.AmountX})
	transfers = appendTransfer(transfers, model.Transfer{Kind: model.KindTransfer, Asset: pool.AssetY, From: req.User, To: pool.ID, Amount: req.AmountY})
	transfers = appendTransfer(transfers, model.Transfer{Kind: model.KindMint, Asset: pool.ShareAsset, To: req.User, Amount: minted})

	return AddLiquidityResult{Pool: next, SharesMinted: minted, Transfers: transfers}, nil
}

// RemoveLiquidityRequest burns shares for a proportional cut of the reserves.
// PoolHoldingX and PoolHoldingY are the pool account's balances as reported by
// the ledger.
type RemoveLiquidityRequest struct {
	User             string
	Shares           uint64
	UserShareBalance uint64
	PoolHoldingX     uint64
	PoolHoldingY     uint64
}

// RemoveLiquidityResult is the pool after the withdrawal and the transfers to apply.
type RemoveLiquidityResult struct {
	Pool       model.Pool
	AmountOutX uint64
	AmountOutY uint64
	Transfers  []model.Transfer
}

// RemoveLiquidity burns Shares and pays out floor(shares*reserve/totalShares)
// of each asset. Rounding dust stays in the pool.
func RemoveLiquidity(pool model.Pool, req RemoveLiquidityRequest) (RemoveLiquidityResult, error) {
	if req.UserShareBalance < req.Shares {
		return RemoveLiquidityResult{}, errorsmod.Wrapf(model.ErrInsufficientFunds,
			"share balance %d < %d", req.UserShareBalance, req.Shares)
	}
	if req.Shares > pool.TotalShares {
		return RemoveLiquidityResult{}, errorsmod.Wrapf(model.ErrInsufficientFunds,
			"pool has %d shares outstanding, %d requested", pool.TotalShares, req.Shares)
	}

	outX, err := fixedpoint.MulDiv(req.Shares, pool.ReserveX, pool.TotalShares)
	if err != nil {
		return RemoveLiquidityResult{}, err
	}
	outY, err := fixedpoint.MulDiv(req.Shares, pool.ReserveY, pool.TotalShares)
	if err != nil {
		return RemoveLiquidityResult{}, err
	}

	if req.PoolHoldingX < outX {
		return RemoveLiquidityResult{}, errorsmod.Wrapf(model.ErrInsufficientFunds,
			"pool holds %d %s, owes %d", req.PoolHoldingX, pool.AssetX, outX)
	}
	if req.PoolHoldingY < outY {
		return RemoveLiquidityResult{}, errorsmod.Wrapf(model.ErrInsufficientFunds,
			"pool holds %d %s, owes %d", req.PoolHoldingY, pool.AssetY, outY)
	}

	next := pool
	if next.ReserveX, err = fixedpoint.Sub(pool.ReserveX, outX); err != nil {
		return RemoveLiquidityResult{}, err
	}
	if next.ReserveY, err = fixedpoint.Sub(pool.ReserveY, outY); err != nil {
		return RemoveLiquidityResult{}, err
	}
	if next.TotalShares, err = fixedpoint.Sub(pool.TotalShares, req.Shares); err != nil {
		return RemoveLiquidityResult{}, err
	}

	transfers := make([]model.Transfer, 0, 3)
	transfers = appendTransfer(transfers, model.Transfer{Kind: model.KindBurn, Asset: pool.ShareAsset, From: req.User, Amount: req.Shares})
	transfers = appendTransfer(transfers, model.Transfer{Kind: model.KindTransfer, Asset: pool.AssetX, From: pool.ID, To: req.User, Amount: outX})
	transfers = appendTransfer(transfers, model.Transfer{Kind: model.KindTransfer, Asset: pool.AssetY, From: pool.ID, To: req.User, Amount: outY})

	return RemoveLiquidityResult{Pool: next, AmountOutX: outX, AmountOutY: outY, Transfers: transfers}, nil
}

func appendTransfer(transfers []model.Transfer, t model.Transfer) []model.Transfer {
	if t.Amount == 0 {
		return transfers
	}
	return append(transfers, t)
}
