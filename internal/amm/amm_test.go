package amm

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ammCore/internal/model"
)

const (
	testPool  = "pool-1"
	testShare = "share-1"
	alice     = "alice"
)

func newTestPool(t *testing.T, feeBps uint32) model.Pool {
	t.Helper()
	pool, err := Initialize(InitializeParams{
		ID:         testPool,
		AssetX:     "usdc",
		AssetY:     "weth",
		ShareAsset: testShare,
		Authority:  "admin",
		FeeBps:     feeBps,
	})
	require.NoError(t, err)
	return pool
}

func seededPool(t *testing.T, reserveX, reserveY, shares uint64, feeBps uint32) model.Pool {
	t.Helper()
	pool := newTestPool(t, feeBps)
	pool.ReserveX = reserveX
	pool.ReserveY = reserveY
	pool.TotalShares = shares
	return pool
}

func TestInitialize(t *testing.T) {
	pool := newTestPool(t, 30)

	assert.Equal(t, "usdc", pool.AssetX)
	assert.Equal(t, "weth", pool.AssetY)
	assert.Equal(t, testShare, pool.ShareAsset)
	assert.Equal(t, "admin", pool.Authority)
	assert.Equal(t, uint32(30), pool.FeeBps)
	assert.Zero(t, pool.ReserveX)
	assert.Zero(t, pool.ReserveY)
	assert.Zero(t, pool.TotalShares)
	require.NoError(t, pool.Validate())
}

func TestInitializeValidation(t *testing.T) {
	testCases := []struct {
		name        string
		params      InitializeParams
		expectedErr error
	}{
		{
			name:        "same asset",
			params:      InitializeParams{ID: testPool, AssetX: "usdc", AssetY: "usdc", ShareAsset: testShare},
			expectedErr: model.ErrSameAsset,
		},
		{
			name:        "missing asset",
			params:      InitializeParams{ID: testPool, AssetX: "usdc", ShareAsset: testShare},
			expectedErr: model.ErrInvalidAsset,
		},
		{
			name:        "fee above 100%",
			params:      InitializeParams{ID: testPool, AssetX: "usdc", AssetY: "weth", ShareAsset: testShare, FeeBps: model.MaxFeeBps + 1},
			expectedErr: model.ErrInvalidFee,
		},
		{
			name:        "missing identity",
			params:      InitializeParams{AssetX: "usdc", AssetY: "weth"},
			expectedErr: model.ErrInvalidAsset,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Initialize(tc.params)
			require.ErrorIs(t, err, tc.expectedErr)
		})
	}
}

func TestAddLiquidityFirstDeposit(t *testing.T) {
	pool := newTestPool(t, 30)

	res, err := AddLiquidity(pool, AddLiquidityRequest{
		User: alice, AmountX: 100, AmountY: 400, UserBalanceX: 100, UserBalanceY: 400,
	})
	require.NoError(t, err)

	assert.Equal(t, uint64(200), res.SharesMinted)
	assert.Equal(t, uint64(100), res.Pool.ReserveX)
	assert.Equal(t, uint64(400), res.Pool.ReserveY)
	assert.Equal(t, uint64(200), res.Pool.TotalShares)
	assert.Equal(t, []model.Transfer{
		{Kind: model.KindTransfer, Asset: "usdc", From: alice, To: testPool, Amount: 100},
		{Kind: model.KindTransfer, Asset: "weth", From: alice, To: testPool, Amount: 400},
		{Kind: model.KindMint, Asset: testShare, To: alice, Amount: 200},
	}, res.Transfers)

	// the input record is untouched
	assert.Zero(t, pool.TotalShares)
}

func TestAddLiquidityFirstDepositLargeAmounts(t *testing.T) {
	pool := newTestPool(t, 30)

	res, err := AddLiquidity(pool, AddLiquidityRequest{
		User: alice, AmountX: math.MaxUint64, AmountY: math.MaxUint64,
		UserBalanceX: math.MaxUint64, UserBalanceY: math.MaxUint64,
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64), res.SharesMinted)
}

func TestAddLiquidityRejectsZeroShares(t *testing.T) {
	pool := newTestPool(t, 30)

	_, err := AddLiquidity(pool, AddLiquidityRequest{User: alice, AmountX: 0, AmountY: 50, UserBalanceY: 50})
	require.ErrorIs(t, err, model.ErrInvalidRatio)
}

func TestAddLiquidityProportional(t *testing.T) {
	pool := seededPool(t, 100, 400, 200, 30)

	res, err := AddLiquidity(pool, AddLiquidityRequest{
		User: alice, AmountX: 50, AmountY: 200, UserBalanceX: 1000, UserBalanceY: 1000,
	})
	require.NoError(t, err)

	assert.Equal(t, uint64(100), res.SharesMinted)
	assert.Equal(t, uint64(150), res.Pool.ReserveX)
	assert.Equal(t, uint64(600), res.Pool.ReserveY)
	assert.Equal(t, uint64(300), res.Pool.TotalShares)
}

func TestAddLiquidityFloorsShares(t *testing.T) {
	// 3:6 matches 1000:2000; 3*999/1000 floors to 2.
	pool := seededPool(t, 1000, 2000, 999, 0)

	res, err := AddLiquidity(pool, AddLiquidityRequest{
		User: alice, AmountX: 3, AmountY: 6, UserBalanceX: 3, UserBalanceY: 6,
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), res.SharesMinted)
}

func TestAddLiquidityErrors(t *testing.T) {
	testCases := []struct {
		name        string
		pool        func(t *testing.T) model.Pool
		req         AddLiquidityRequest
		expectedErr error
	}{
		{
			name:        "insufficient x",
			pool:        func(t *testing.T) model.Pool { return newTestPool(t, 30) },
			req:         AddLiquidityRequest{AmountX: 10, AmountY: 10, UserBalanceX: 9, UserBalanceY: 10},
			expectedErr: model.ErrInsufficientFunds,
		},
		{
			name:        "insufficient y",
			pool:        func(t *testing.T) model.Pool { return newTestPool(t, 30) },
			req:         AddLiquidityRequest{AmountX: 10, AmountY: 10, UserBalanceX: 10, UserBalanceY: 9},
			expectedErr: model.ErrInsufficientFunds,
		},
		{
			name:        "wrong ratio",
			pool:        func(t *testing.T) model.Pool { return seededPool(t, 100, 400, 200, 30) },
			req:         AddLiquidityRequest{AmountX: 50, AmountY: 201, UserBalanceX: 50, UserBalanceY: 201},
			expectedErr: model.ErrInvalidRatio,
		},
		{
			name:        "reserve overflow",
			pool:        func(t *testing.T) model.Pool { return seededPool(t, math.MaxUint64-1, math.MaxUint64-1, math.MaxUint64-1, 30) },
			req:         AddLiquidityRequest{AmountX: 2, AmountY: 2, UserBalanceX: 2, UserBalanceY: 2},
			expectedErr: model.ErrOverflow,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			pool := tc.pool(t)
			_, err := AddLiquidity(pool, tc.req)
			require.ErrorIs(t, err, tc.expectedErr)
		})
	}
}

func TestRemoveLiquidity(t *testing.T) {
	pool := seededPool(t, 100, 400, 200, 30)

	res, err := RemoveLiquidity(pool, RemoveLiquidityRequest{
		User: alice, Shares: 50, UserShareBalance: 200, PoolHoldingX: 100, PoolHoldingY: 400,
	})
	require.NoError(t, err)

	assert.Equal(t, uint64(25), res.AmountOutX)
	assert.Equal(t, uint64(100), res.AmountOutY)
	assert.Equal(t, uint64(75), res.Pool.ReserveX)
	assert.Equal(t, uint64(300), res.Pool.ReserveY)
	assert.Equal(t, uint64(150), res.Pool.TotalShares)
	assert.Equal(t, []model.Transfer{
		{Kind: model.KindBurn, Asset: testShare, From: alice, Amount: 50},
		{Kind: model.KindTransfer, Asset: "usdc", From: testPool, To: alice, Amount: 25},
		{Kind: model.KindTransfer, Asset: "weth", From: testPool, To: alice, Amount: 100},
	}, res.Transfers)
}

func TestRemoveLiquidityAllSharesEmptiesPool(t *testing.T) {
	pool := seededPool(t, 12345, 67891, 777, 30)

	res, err := RemoveLiquidity(pool, RemoveLiquidityRequest{
		User: alice, Shares: 777, UserShareBalance: 777, PoolHoldingX: 12345, PoolHoldingY: 67891,
	})
	require.NoError(t, err)

	assert.Equal(t, uint64(12345), res.AmountOutX)
	assert.Equal(t, uint64(67891), res.AmountOutY)
	assert.True(t, res.Pool.Empty())
	require.NoError(t, res.Pool.Validate())
}

func TestRemoveLiquidityErrors(t *testing.T) {
	testCases := []struct {
		name        string
		pool        model.Pool
		req         RemoveLiquidityRequest
		expectedErr error
	}{
		{
			name:        "share balance too low",
			pool:        model.Pool{ReserveX: 100, ReserveY: 400, TotalShares: 200},
			req:         RemoveLiquidityRequest{Shares: 201, UserShareBalance: 200, PoolHoldingX: 100, PoolHoldingY: 400},
			expectedErr: model.ErrInsufficientFunds,
		},
		{
			name:        "more than outstanding",
			pool:        model.Pool{ReserveX: 100, ReserveY: 400, TotalShares: 200},
			req:         RemoveLiquidityRequest{Shares: 201, UserShareBalance: 500, PoolHoldingX: 100, PoolHoldingY: 400},
			expectedErr: model.ErrInsufficientFunds,
		},
		{
			name:        "pool holdings drifted",
			pool:        model.Pool{ReserveX: 100, ReserveY: 400, TotalShares: 200},
			req:         RemoveLiquidityRequest{Shares: 200, UserShareBalance: 200, PoolHoldingX: 99, PoolHoldingY: 400},
			expectedErr: model.ErrInsufficientFunds,
		},
		{
			name:        "empty pool",
			pool:        model.Pool{},
			req:         RemoveLiquidityRequest{Shares: 0, UserShareBalance: 0},
			expectedErr: model.ErrDivisionByZero,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := RemoveLiquidity(tc.pool, tc.req)
			require.ErrorIs(t, err, tc.expectedErr)
		})
	}
}

func TestSwapXForY(t *testing.T) {
	pool := seededPool(t, 1000, 1000, 1000, 30)

	res, err := SwapXForY(pool, SwapRequest{User: alice, AmountIn: 1000, UserBalanceIn: 1000})
	require.NoError(t, err)

	assert.Equal(t, uint64(3), res.Fee)
	assert.Equal(t, uint64(499), res.AmountOut)
	assert.Equal(t, uint64(2000), res.Pool.ReserveX)
	assert.Equal(t, uint64(501), res.Pool.ReserveY)
	assert.Equal(t, uint64(1000), res.Pool.TotalShares)
	assert.Equal(t, []model.Transfer{
		{Kind: model.KindTransfer, Asset: "usdc", From: alice, To: testPool, Amount: 1000},
		{Kind: model.KindTransfer, Asset: "weth", From: testPool, To: alice, Amount: 499},
	}, res.Transfers)
}

func TestSwapXForYFeeFloorsToZero(t *testing.T) {
	pool := seededPool(t, 1000, 1000, 1000, 30)

	res, err := SwapXForY(pool, SwapRequest{User: alice, AmountIn: 100, UserBalanceIn: 100})
	require.NoError(t, err)

	assert.Zero(t, res.Fee)
	// floor(1000*100/1100)
	assert.Equal(t, uint64(90), res.AmountOut)
}

func TestSwapYForXChargesNoFee(t *testing.T) {
	pool := seededPool(t, 1000, 1000, 1000, 30)

	res, err := SwapYForX(pool, SwapRequest{User: alice, AmountIn: 1000, UserBalanceIn: 1000})
	require.NoError(t, err)

	assert.Zero(t, res.Fee)
	assert.Equal(t, uint64(500), res.AmountOut)
	assert.Equal(t, uint64(500), res.Pool.ReserveX)
	assert.Equal(t, uint64(2000), res.Pool.ReserveY)
	assert.Equal(t, []model.Transfer{
		{Kind: model.KindTransfer, Asset: "weth", From: alice, To: testPool, Amount: 1000},
		{Kind: model.KindTransfer, Asset: "usdc", From: testPool, To: alice, Amount: 500},
	}, res.Transfers)
}

func TestSwapErrors(t *testing.T) {
	testCases := []struct {
		name        string
		pool        model.Pool
		req         SwapRequest
		expectedErr error
	}{
		{
			name:        "insufficient balance",
			pool:        model.Pool{ReserveX: 1000, ReserveY: 1000, TotalShares: 1000},
			req:         SwapRequest{Direction: model.XForY, AmountIn: 10, UserBalanceIn: 9},
			expectedErr: model.ErrInsufficientFunds,
		},
		{
			name:        "zero output",
			pool:        model.Pool{ReserveX: 1_000_000_000, ReserveY: 1_000_000_000, TotalShares: 1},
			req:         SwapRequest{Direction: model.YForX, AmountIn: 1, UserBalanceIn: 1},
			expectedErr: model.ErrInvalidRatio,
		},
		{
			name:        "fee eats whole input",
			pool:        model.Pool{ReserveX: 1000, ReserveY: 1000, TotalShares: 1000, FeeBps: model.MaxFeeBps},
			req:         SwapRequest{Direction: model.XForY, AmountIn: 10, UserBalanceIn: 10},
			expectedErr: model.ErrInvalidRatio,
		},
		{
			name:        "empty pool",
			pool:        model.Pool{},
			req:         SwapRequest{Direction: model.XForY, AmountIn: 10, UserBalanceIn: 10},
			expectedErr: model.ErrInvalidRatio,
		},
		{
			name:        "reserve overflow",
			pool:        model.Pool{ReserveX: math.MaxUint64 - 10, ReserveY: math.MaxUint64 - 10, TotalShares: 1},
			req:         SwapRequest{Direction: model.XForY, AmountIn: math.MaxUint64 / 2, UserBalanceIn: math.MaxUint64},
			expectedErr: model.ErrOverflow,
		},
		{
			name:        "reserve overflow y for x",
			pool:        model.Pool{ReserveX: math.MaxUint64, ReserveY: math.MaxUint64, TotalShares: 1},
			req:         SwapRequest{Direction: model.YForX, AmountIn: 1, UserBalanceIn: 1},
			expectedErr: model.ErrOverflow,
		},
		{
			name:        "unknown direction",
			pool:        model.Pool{ReserveX: 1000, ReserveY: 1000, TotalShares: 1000},
			req:         SwapRequest{Direction: "sideways", AmountIn: 10, UserBalanceIn: 10},
			expectedErr: model.ErrInvalidDirection,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Swap(tc.pool, tc.req)
			require.ErrorIs(t, err, tc.expectedErr)
		})
	}
}

func TestQuoteSwapMatchesSwap(t *testing.T) {
	pool := seededPool(t, 5_000, 20_000, 10_000, 25)

	quote, err := QuoteSwap(pool, model.XForY, 750)
	require.NoError(t, err)

	res, err := SwapXForY(pool, SwapRequest{User: alice, AmountIn: 750, UserBalanceIn: 750})
	require.NoError(t, err)

	assert.Equal(t, res.AmountOut, quote.AmountOut)
	assert.Equal(t, res.Fee, quote.Fee)
}
