// Package engine hosts the pool core: it loads state from a store, runs the
// pure operations in internal/amm, applies the resulting transfers to the
// ledger and commits everything as one unit of work.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	errorsmod "cosmossdk.io/errors"
	"go.uber.org/zap"

	"ammCore/internal/amm"
	"ammCore/internal/identity"
	"ammCore/internal/ledger"
	"ammCore/internal/model"
	"ammCore/internal/storage"
)

// Engine runs pool operations against a store and journals the committed ones.
type Engine struct {
	store   storage.Store
	journal storage.Journal
	logger  *zap.Logger
	now     func() time.Time
}

// New returns an Engine. A nil journal discards records; a nil logger is a no-op.
func New(store storage.Store, journal storage.Journal, logger *zap.Logger) *Engine {
	if journal == nil {
		journal = storage.NopJournal{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{store: store, journal: journal, logger: logger, now: time.Now}
}

// InitializeRequest names the pair and fee of a new pool.
type InitializeRequest struct {
	AssetX    string
	AssetY    string
	Authority string
	FeeBps    uint32
}

// InitializePool creates an empty pool for the pair. A pool for the same
// unordered pair fails with model.ErrPoolExists.
func (e *Engine) InitializePool(ctx context.Context, req InitializeRequest) (model.Pool, error) {
	id := identity.PoolID(req.AssetX, req.AssetY)
	pool, err := amm.Initialize(amm.InitializeParams{
		ID:         id,
		AssetX:     req.AssetX,
		AssetY:     req.AssetY,
		ShareAsset: identity.ShareAsset(id),
		Authority:  req.Authority,
		FeeBps:     req.FeeBps,
	})
	if err != nil {
		return model.Pool{}, err
	}

	err = e.store.Update(ctx, func(ctx context.Context, tx storage.Tx) error {
		if err := pool.Validate(); err != nil {
			return err
		}
		return tx.CreatePool(ctx, pool)
	})
	if err != nil {
		return model.Pool{}, err
	}

	e.logger.Info("pool initialized",
		zap.String("pool", pool.ID),
		zap.String("asset_x", pool.AssetX),
		zap.String("asset_y", pool.AssetY),
		zap.Uint32("fee_bps", pool.FeeBps),
	)
	e.record(model.OperationRecord{Operation: model.OpInitialize, PoolID: pool.ID, User: req.Authority}, pool)
	return pool, nil
}

// AddLiquidity deposits both assets from user into the pool.
func (e *Engine) AddLiquidity(ctx context.Context, poolID, user string, amountX, amountY uint64) (amm.AddLiquidityResult, error) {
	var res amm.AddLiquidityResult
	err := e.store.Update(ctx, func(ctx context.Context, tx storage.Tx) error {
		if err := checkUser(ctx, tx, user); err != nil {
			return err
		}
		pool, err := tx.Pool(ctx, poolID)
		if err != nil {
			return err
		}
		balX, err := tx.Ledger().Balance(ctx, pool.AssetX, user)
		if err != nil {
			return err
		}
		balY, err := tx.Ledger().Balance(ctx, pool.AssetY, user)
		if err != nil {
			return err
		}

		res, err = amm.AddLiquidity(pool, amm.AddLiquidityRequest{
			User:         user,
			AmountX:      amountX,
			AmountY:      amountY,
			UserBalanceX: balX,
			UserBalanceY: balY,
		})
		if err != nil {
			return err
		}
		return commit(ctx, tx, res.Pool, res.Transfers)
	})
	if err != nil {
		e.logger.Debug("add liquidity rejected", zap.String("pool", poolID), zap.String("user", user), zap.Error(err))
		return amm.AddLiquidityResult{}, err
	}

	e.logger.Info("liquidity added",
		zap.String("pool", poolID),
		zap.String("user", user),
		zap.Uint64("amount_x", amountX),
		zap.Uint64("amount_y", amountY),
		zap.Uint64("shares", res.SharesMinted),
	)
	e.record(model.OperationRecord{
		Operation: model.OpAddLiquidity,
		PoolID:    poolID,
		User:      user,
		AmountX:   amountX,
		AmountY:   amountY,
		Shares:    res.SharesMinted,
	}, res.Pool)
	return res, nil
}

// RemoveLiquidity burns shares and pays the user a proportional cut of the
// reserves. The pool account's holdings are read from the ledger.
func (e *Engine) RemoveLiquidity(ctx context.Context, poolID, user string, shares uint64) (amm.RemoveLiquidityResult, error) {
	var res amm.RemoveLiquidityResult
	err := e.store.Update(ctx, func(ctx context.Context, tx storage.Tx) error {
		if err := checkUser(ctx, tx, user); err != nil {
			return err
		}
		pool, err := tx.Pool(ctx, poolID)
		if err != nil {
			return err
		}
		l := tx.Ledger()
		userShares, err := l.Balance(ctx, pool.ShareAsset, user)
		if err != nil {
			return err
		}
		holdingX, err := l.Balance(ctx, pool.AssetX, pool.ID)
		if err != nil {
			return err
		}
		holdingY, err := l.Balance(ctx, pool.AssetY, pool.ID)
		if err != nil {
			return err
		}

		res, err = amm.RemoveLiquidity(pool, amm.RemoveLiquidityRequest{
			User:             user,
			Shares:           shares,
			UserShareBalance: userShares,
			PoolHoldingX:     holdingX,
			PoolHoldingY:     holdingY,
		})
		if err != nil {
			return err
		}
		return commit(ctx, tx, res.Pool, res.Transfers)
	})
	if err != nil {
		e.logger.Debug("remove liquidity rejected", zap.String("pool", poolID), zap.String("user", user), zap.Error(err))
		return amm.RemoveLiquidityResult{}, err
	}

	e.logger.Info("liquidity removed",
		zap.String("pool", poolID),
		zap.String("user", user),
		zap.Uint64("shares", shares),
		zap.Uint64("amount_x", res.AmountOutX),
		zap.Uint64("amount_y", res.AmountOutY),
	)
	e.record(model.OperationRecord{
		Operation: model.OpRemoveLiquidity,
		PoolID:    poolID,
		User:      user,
		AmountX:   res.AmountOutX,
		AmountY:   res.AmountOutY,
		Shares:    shares,
	}, res.Pool)
	return res, nil
}

// SwapXForY sells amountIn of the pool's X asset for Y.
func (e *Engine) SwapXForY(ctx context.Context, poolID, user string, amountIn uint64) (amm.SwapResult, error) {
	return e.Swap(ctx, poolID, user, model.XForY, amountIn)
}

// SwapYForX sells amountIn of the pool's Y asset for X.
func (e *Engine) SwapYForX(ctx context.Context, poolID, user string, amountIn uint64) (amm.SwapResult, error) {
	return e.Swap(ctx, poolID, user, model.YForX, amountIn)
}

// Swap trades amountIn of the input asset selected by direction.
func (e *Engine) Swap(ctx context.Context, poolID, user string, direction model.Direction, amountIn uint64) (amm.SwapResult, error) {
	var res amm.SwapResult
	err := e.store.Update(ctx, func(ctx context.Context, tx storage.Tx) error {
		if err := checkUser(ctx, tx, user); err != nil {
			return err
		}
		pool, err := tx.Pool(ctx, poolID)
		if err != nil {
			return err
		}
		assetIn := pool.AssetX
		if direction == model.YForX {
			assetIn = pool.AssetY
		}
		balance, err := tx.Ledger().Balance(ctx, assetIn, user)
		if err != nil {
			return err
		}

		res, err = amm.Swap(pool, amm.SwapRequest{
			User:          user,
			Direction:     direction,
			AmountIn:      amountIn,
			UserBalanceIn: balance,
		})
		if err != nil {
			return err
		}
		return commit(ctx, tx, res.Pool, res.Transfers)
	})
	if err != nil {
		e.logger.Debug("swap rejected", zap.String("pool", poolID), zap.String("direction", string(direction)), zap.Error(err))
		return amm.SwapResult{}, err
	}

	e.logger.Info("swap",
		zap.String("pool", poolID),
		zap.String("user", user),
		zap.String("direction", string(direction)),
		zap.Uint64("amount_in", amountIn),
		zap.Uint64("amount_out", res.AmountOut),
		zap.Uint64("fee", res.Fee),
	)
	rec := model.OperationRecord{
		Operation: model.OpSwap,
		PoolID:    poolID,
		User:      user,
		Direction: direction,
		AmountIn:  amountIn,
		AmountOut: res.AmountOut,
		Fee:       res.Fee,
	}
	if direction == model.XForY {
		rec.AmountX, rec.AmountY = amountIn, res.AmountOut
	} else {
		rec.AmountX, rec.AmountY = res.AmountOut, amountIn
	}
	e.record(rec, res.Pool)
	return res, nil
}

// Quote prices a swap against the committed pool without moving funds.
func (e *Engine) Quote(ctx context.Context, poolID string, direction model.Direction, amountIn uint64) (amm.Quote, error) {
	var quote amm.Quote
	err := e.store.View(ctx, func(ctx context.Context, tx storage.Tx) error {
		pool, err := tx.Pool(ctx, poolID)
		if err != nil {
			return err
		}
		quote, err = amm.QuoteSwap(pool, direction, amountIn)
		return err
	})
	return quote, err
}

// Pool returns the committed pool record.
func (e *Engine) Pool(ctx context.Context, poolID string) (model.Pool, error) {
	var pool model.Pool
	err := e.store.View(ctx, func(ctx context.Context, tx storage.Tx) error {
		var err error
		pool, err = tx.Pool(ctx, poolID)
		return err
	})
	return pool, err
}

// Pools returns every pool ordered by id.
func (e *Engine) Pools(ctx context.Context) ([]model.Pool, error) {
	var pools []model.Pool
	err := e.store.View(ctx, func(ctx context.Context, tx storage.Tx) error {
		var err error
		pools, err = tx.Pools(ctx)
		return err
	})
	return pools, err
}

// Balance returns account's committed balance of asset.
func (e *Engine) Balance(ctx context.Context, asset, account string) (uint64, error) {
	var balance uint64
	err := e.store.View(ctx, func(ctx context.Context, tx storage.Tx) error {
		var err error
		balance, err = tx.Ledger().Balance(ctx, asset, account)
		return err
	})
	return balance, err
}

// Credit mints amount of asset to account. It funds accounts from outside
// the pools and is not a pool operation, so share assets and pool accounts
// are refused with model.ErrReservedAccount.
func (e *Engine) Credit(ctx context.Context, asset, account string, amount uint64) (uint64, error) {
	if asset == "" || account == "" {
		return 0, errorsmod.Wrap(model.ErrInvalidAsset, "asset and account are required")
	}
	var balance uint64
	err := e.store.Update(ctx, func(ctx context.Context, tx storage.Tx) error {
		if err := checkUser(ctx, tx, account); err != nil {
			return err
		}
		if err := checkCreditAsset(ctx, tx, asset); err != nil {
			return err
		}
		l := tx.Ledger()
		if err := l.Mint(ctx, asset, account, amount); err != nil {
			return err
		}
		var err error
		balance, err = l.Balance(ctx, asset, account)
		return err
	})
	if err != nil {
		return 0, err
	}
	e.logger.Info("account credited", zap.String("asset", asset), zap.String("account", account), zap.Uint64("amount", amount))
	return balance, nil
}

// checkUser refuses pool accounts acting as users. A pool paying itself would
// move reserves without moving holdings.
func checkUser(ctx context.Context, tx storage.Tx, user string) error {
	_, err := tx.Pool(ctx, user)
	switch {
	case err == nil:
		return errorsmod.Wrapf(model.ErrReservedAccount, "%s is a pool account", user)
	case errors.Is(err, model.ErrPoolNotFound):
		return nil
	default:
		return err
	}
}

// checkCreditAsset refuses share assets; only a pool mints its own shares.
func checkCreditAsset(ctx context.Context, tx storage.Tx, asset string) error {
	pools, err := tx.Pools(ctx)
	if err != nil {
		return err
	}
	for _, pool := range pools {
		if pool.ShareAsset == asset {
			return errorsmod.Wrapf(model.ErrReservedAccount, "%s is the share asset of pool %s", asset, pool.ID)
		}
	}
	return nil
}

func commit(ctx context.Context, tx storage.Tx, pool model.Pool, transfers []model.Transfer) error {
	if err := pool.Validate(); err != nil {
		return err
	}
	if err := ledger.Apply(ctx, tx.Ledger(), transfers); err != nil {
		return err
	}
	if err := tx.SavePool(ctx, pool); err != nil {
		return fmt.Errorf("save pool: %w", err)
	}
	return nil
}

// record journals a committed operation. The operation already took effect,
// so a journal failure is only logged.
func (e *Engine) record(rec model.OperationRecord, pool model.Pool) {
	now := e.now().UTC()
	rec.Timestamp = uint64(now.Unix())
	rec.RecordedAt = now.Format(time.RFC3339Nano)
	rec.ReserveX = pool.ReserveX
	rec.ReserveY = pool.ReserveY
	rec.TotalShares = pool.TotalShares
	if err := e.journal.Append(rec); err != nil {
		e.logger.Error("journal append failed", zap.String("pool", rec.PoolID), zap.String("operation", rec.Operation), zap.Error(err))
	}
}
