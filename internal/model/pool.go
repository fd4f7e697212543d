package model

import (
	errorsmod "cosmossdk.io/errors"
)

// BasisPoints is 100% expressed in basis points.
const BasisPoints = 10_000

// MaxFeeBps is the highest fee a pool may be created with.
const MaxFeeBps = BasisPoints

// Pool is the persistent record of a trading pair.
type Pool struct {
	ID          string `json:"id"`
	Authority   string `json:"authority"`
	AssetX      string `json:"asset_x"`
	AssetY      string `json:"asset_y"`
	ShareAsset  string `json:"share_asset"`
	ReserveX    uint64 `json:"reserve_x"`
	ReserveY    uint64 `json:"reserve_y"`
	TotalShares uint64 `json:"total_shares"`
	FeeBps      uint32 `json:"fee_bps"`
}

// Empty reports whether the pool has never been seeded or was fully drained.
func (p Pool) Empty() bool {
	return p.TotalShares == 0
}

// Validate checks that the pool is either empty or fully seeded.
func (p Pool) Validate() error {
	emptyReserves := p.ReserveX == 0 && p.ReserveY == 0
	if emptyReserves != (p.TotalShares == 0) {
		return errorsmod.Wrapf(ErrInvariant, "pool %s: reserves %d/%d with %d shares",
			p.ID, p.ReserveX, p.ReserveY, p.TotalShares)
	}
	if p.FeeBps > MaxFeeBps {
		return errorsmod.Wrapf(ErrInvalidFee, "pool %s: fee %d bps", p.ID, p.FeeBps)
	}
	return nil
}
