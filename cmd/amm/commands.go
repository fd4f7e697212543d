package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ammCore/internal/engine"
	"ammCore/internal/identity"
	"ammCore/internal/model"
	"ammCore/internal/storage/postgres"
)

func newPoolCmd() *cobra.Command {
	poolCmd := &cobra.Command{
		Use:   "pool",
		Short: "Create and inspect pools",
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create an empty pool for an asset pair",
		RunE:  runPoolInit,
	}
	initCmd.Flags().String("asset-x", "", "first asset id")
	initCmd.Flags().String("asset-y", "", "second asset id")
	initCmd.Flags().String("authority", "", "pool authority (recorded, not enforced)")
	initCmd.Flags().Uint32("fee-bps", 30, "swap fee in basis points, charged on x-for-y swaps")

	showCmd := &cobra.Command{
		Use:   "show <pool-id>",
		Short: "Print a pool",
		Args:  cobra.ExactArgs(1),
		RunE:  runPoolShow,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Print all pools",
		RunE:  runPoolList,
	}

	poolCmd.AddCommand(initCmd, showCmd, listCmd)
	return poolCmd
}

func runPoolInit(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	assetX, _ := cmd.Flags().GetString("asset-x")
	assetY, _ := cmd.Flags().GetString("asset-y")
	authority, _ := cmd.Flags().GetString("authority")
	feeBps, _ := cmd.Flags().GetUint32("fee-bps")

	pool, err := s.engine.InitializePool(s.ctx, engine.InitializeRequest{
		AssetX:    assetX,
		AssetY:    assetY,
		Authority: authority,
		FeeBps:    feeBps,
	})
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), pool)
}

func runPoolShow(cmd *cobra.Command, args []string) error {
	if err := identity.Validate(args[0]); err != nil {
		return err
	}
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	pool, err := s.engine.Pool(s.ctx, args[0])
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), pool)
}

func runPoolList(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	pools, err := s.engine.Pools(s.ctx)
	if err != nil {
		return err
	}
	if pools == nil {
		pools = []model.Pool{}
	}
	return printJSON(cmd.OutOrStdout(), pools)
}

func newLiquidityCmd() *cobra.Command {
	liquidityCmd := &cobra.Command{
		Use:   "liquidity",
		Short: "Deposit into or withdraw from a pool",
	}

	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Deposit both assets and receive shares",
		RunE:  runLiquidityAdd,
	}
	addCmd.Flags().String("pool", "", "pool id")
	addCmd.Flags().String("user", "", "depositing account")
	addCmd.Flags().Uint64("amount-x", 0, "amount of asset x")
	addCmd.Flags().Uint64("amount-y", 0, "amount of asset y")

	removeCmd := &cobra.Command{
		Use:   "remove",
		Short: "Burn shares for a proportional cut of the reserves",
		RunE:  runLiquidityRemove,
	}
	removeCmd.Flags().String("pool", "", "pool id")
	removeCmd.Flags().String("user", "", "withdrawing account")
	removeCmd.Flags().Uint64("shares", 0, "shares to burn")

	liquidityCmd.AddCommand(addCmd, removeCmd)
	return liquidityCmd
}

func runLiquidityAdd(cmd *cobra.Command, _ []string) error {
	poolID, user, err := poolAndUser(cmd)
	if err != nil {
		return err
	}
	amountX, _ := cmd.Flags().GetUint64("amount-x")
	amountY, _ := cmd.Flags().GetUint64("amount-y")

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	res, err := s.engine.AddLiquidity(s.ctx, poolID, user, amountX, amountY)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), liquidityOutput{
		Pool:      res.Pool,
		Shares:    res.SharesMinted,
		AmountX:   amountX,
		AmountY:   amountY,
		Transfers: res.Transfers,
	})
}

func runLiquidityRemove(cmd *cobra.Command, _ []string) error {
	poolID, user, err := poolAndUser(cmd)
	if err != nil {
		return err
	}
	shares, _ := cmd.Flags().GetUint64("shares")

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	res, err := s.engine.RemoveLiquidity(s.ctx, poolID, user, shares)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), liquidityOutput{
		Pool:      res.Pool,
		Shares:    shares,
		AmountX:   res.AmountOutX,
		AmountY:   res.AmountOutY,
		Transfers: res.Transfers,
	})
}

func newSwapCmd() *cobra.Command {
	swapCmd := &cobra.Command{
		Use:   "swap",
		Short: "Trade one pool asset for the other",
		RunE:  runSwap,
	}
	swapCmd.Flags().String("pool", "", "pool id")
	swapCmd.Flags().String("user", "", "trading account")
	swapCmd.Flags().String("direction", string(model.XForY), "x-for-y or y-for-x")
	swapCmd.Flags().Uint64("amount-in", 0, "amount of the input asset")
	return swapCmd
}

func runSwap(cmd *cobra.Command, _ []string) error {
	poolID, user, err := poolAndUser(cmd)
	if err != nil {
		return err
	}
	direction, err := directionFlag(cmd)
	if err != nil {
		return err
	}
	amountIn, _ := cmd.Flags().GetUint64("amount-in")

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	res, err := s.engine.Swap(s.ctx, poolID, user, direction, amountIn)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), swapOutput{
		Pool:      &res.Pool,
		Direction: direction,
		AmountIn:  amountIn,
		AmountOut: res.AmountOut,
		Fee:       res.Fee,
		Transfers: res.Transfers,
	})
}

func newQuoteCmd() *cobra.Command {
	quoteCmd := &cobra.Command{
		Use:   "quote",
		Short: "Price a swap without executing it",
		RunE:  runQuote,
	}
	quoteCmd.Flags().String("pool", "", "pool id")
	quoteCmd.Flags().String("direction", string(model.XForY), "x-for-y or y-for-x")
	quoteCmd.Flags().Uint64("amount-in", 0, "amount of the input asset")
	return quoteCmd
}

func runQuote(cmd *cobra.Command, _ []string) error {
	poolID, _ := cmd.Flags().GetString("pool")
	if poolID == "" {
		return fmt.Errorf("pool is required")
	}
	direction, err := directionFlag(cmd)
	if err != nil {
		return err
	}
	amountIn, _ := cmd.Flags().GetUint64("amount-in")

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	quote, err := s.engine.Quote(s.ctx, poolID, direction, amountIn)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), swapOutput{
		Direction: direction,
		AmountIn:  amountIn,
		AmountOut: quote.AmountOut,
		Fee:       quote.Fee,
	})
}

func newCreditCmd() *cobra.Command {
	creditCmd := &cobra.Command{
		Use:   "credit",
		Short: "Fund an account from outside the pools",
		RunE:  runCredit,
	}
	creditCmd.Flags().String("asset", "", "asset id")
	creditCmd.Flags().String("account", "", "account to credit")
	creditCmd.Flags().Uint64("amount", 0, "amount to credit")
	return creditCmd
}

func runCredit(cmd *cobra.Command, _ []string) error {
	asset, _ := cmd.Flags().GetString("asset")
	account, _ := cmd.Flags().GetString("account")
	amount, _ := cmd.Flags().GetUint64("amount")

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	balance, err := s.engine.Credit(s.ctx, asset, account, amount)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), balanceOutput{Asset: asset, Account: account, Balance: balance})
}

func newBalanceCmd() *cobra.Command {
	balanceCmd := &cobra.Command{
		Use:   "balance",
		Short: "Print an account balance",
		RunE:  runBalance,
	}
	balanceCmd.Flags().String("asset", "", "asset id")
	balanceCmd.Flags().String("account", "", "account")
	return balanceCmd
}

func runBalance(cmd *cobra.Command, _ []string) error {
	asset, _ := cmd.Flags().GetString("asset")
	account, _ := cmd.Flags().GetString("account")
	if asset == "" || account == "" {
		return fmt.Errorf("asset and account are required")
	}

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	balance, err := s.engine.Balance(s.ctx, asset, account)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), balanceOutput{Asset: asset, Account: account, Balance: balance})
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Install the Postgres schema",
		RunE:  runMigrate,
	}
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	pg, ok := s.store.(*postgres.Store)
	if !ok {
		s.logger.Info("nothing to migrate", zap.String("store", s.cfg.Store))
		return nil
	}
	if err := pg.Migrate(s.ctx); err != nil {
		return err
	}
	s.logger.Info("schema applied")
	return nil
}

func poolAndUser(cmd *cobra.Command) (string, string, error) {
	poolID, _ := cmd.Flags().GetString("pool")
	user, _ := cmd.Flags().GetString("user")
	if poolID == "" {
		return "", "", fmt.Errorf("pool is required")
	}
	if user == "" {
		return "", "", fmt.Errorf("user is required")
	}
	return poolID, user, nil
}

func directionFlag(cmd *cobra.Command) (model.Direction, error) {
	raw, _ := cmd.Flags().GetString("direction")
	return model.ParseDirection(raw)
}
