package amm

import (
	"strings"

	errorsmod "cosmossdk.io/errors"

	"ammCore/internal/model"
)

// InitializeParams describes a new pool. ID and ShareAsset are resolved by
// the caller's identity registry.
type InitializeParams struct {
	ID         string
	AssetX     string
	AssetY     string
	ShareAsset string
	Authority  string
	FeeBps     uint32
}

// Initialize creates an empty pool record. Rejecting a duplicate pool for the
// same pair is the caller's responsibility.
func Initialize(params InitializeParams) (model.Pool, error) {
	if strings.TrimSpace(params.AssetX) == "" || strings.TrimSpace(params.AssetY) == "" {
		return model.Pool{}, errorsmod.Wrap(model.ErrInvalidAsset, "asset ids are required")
	}
	if params.AssetX == params.AssetY {
		return model.Pool{}, errorsmod.Wrapf(model.ErrSameAsset, "%s", params.AssetX)
	}
	if params.FeeBps > model.MaxFeeBps {
		return model.Pool{}, errorsmod.Wrapf(model.ErrInvalidFee, "%d bps exceeds %d", params.FeeBps, model.MaxFeeBps)
	}
	if params.ID == "" || params.ShareAsset == "" {
		return model.Pool{}, errorsmod.Wrap(model.ErrInvalidAsset, "pool id and share asset are required")
	}

	return model.Pool{
		ID:         params.ID,
		Authority:  params.Authority,
		AssetX:     params.AssetX,
		AssetY:     params.AssetY,
		ShareAsset: params.ShareAsset,
		FeeBps:     params.FeeBps,
	}, nil
}
