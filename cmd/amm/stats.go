package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ammCore/internal/config"
	"ammCore/internal/stats"
)

func newStatsCmd() *cobra.Command {
	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Aggregate the operation journal into per-pool window metrics",
		RunE:  runStats,
	}
	statsCmd.Flags().String("in", "./data/journal.jsonl", "input journal JSONL")
	statsCmd.Flags().String("out", "./data/pool_metrics.jsonl", "output metrics JSONL")
	statsCmd.Flags().String("window", "1h", "aggregation window (e.g. 1m, 5m, 1h)")
	statsCmd.Flags().String("since", "", "ignore records before this time (unix seconds or RFC3339)")
	statsCmd.Flags().String("stats-state", "", "optional state file to resume from the last run")
	return statsCmd
}

func runStats(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadStats(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.In == "" {
		return fmt.Errorf("input path is required")
	}
	if cfg.Out == "" {
		return fmt.Errorf("output path is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	input, err := os.Open(cfg.In)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer input.Close()

	statsCfg := stats.Config{
		WindowSeconds: uint64(cfg.Window.Seconds()),
		Since:         cfg.Since,
	}
	if cfg.StateFile != "" {
		statsCfg.StateStore = &stats.FileStateStore{Path: cfg.StateFile}
	}

	logger.Info("stats start",
		zap.String("in", cfg.In),
		zap.String("out", cfg.Out),
		zap.Duration("window", cfg.Window),
		zap.Uint64("since", cfg.Since),
	)

	metrics, err := stats.NewAggregator(statsCfg, logger).Run(ctx, input)
	if err != nil {
		return err
	}

	out, err := newJSONLWriter(cfg.Out)
	if err != nil {
		return err
	}
	for _, m := range metrics {
		if err := out.Write(m); err != nil {
			out.Close()
			return err
		}
	}
	return out.Close()
}
