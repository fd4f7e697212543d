// Package ledger defines the asset-transfer collaborator that moves value on
// behalf of pool operations, and an in-memory implementation of it.
package ledger

import (
	"context"
	"fmt"

	"ammCore/internal/model"
)

// Collaborator holds balances per (asset, account) and moves them.
// Transfer and Burn fail with model.ErrInsufficientFunds when the source
// account is short; Transfer and Mint fail with model.ErrOverflow when the
// destination would exceed 64 bits. Transfer refuses from == to with
// model.ErrSelfTransfer.
type Collaborator interface {
	Balance(ctx context.Context, asset, account string) (uint64, error)
	Transfer(ctx context.Context, asset, from, to string, amount uint64) error
	Mint(ctx context.Context, asset, to string, amount uint64) error
	Burn(ctx context.Context, asset, from string, amount uint64) error
}

// Apply performs transfers in order and stops at the first failure.
// Callers rely on their transaction to discard the earlier ones.
func Apply(ctx context.Context, c Collaborator, transfers []model.Transfer) error {
	for i, t := range transfers {
		var err error
		switch t.Kind {
		case model.KindTransfer:
			err = c.Transfer(ctx, t.Asset, t.From, t.To, t.Amount)
		case model.KindMint:
			err = c.Mint(ctx, t.Asset, t.To, t.Amount)
		case model.KindBurn:
			err = c.Burn(ctx, t.Asset, t.From, t.Amount)
		default:
			err = fmt.Errorf("unknown transfer kind %q", t.Kind)
		}
		if err != nil {
			return fmt.Errorf("transfer %d (%s %d %s): %w", i, t.Kind, t.Amount, t.Asset, err)
		}
	}
	return nil
}
