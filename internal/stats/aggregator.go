// Package stats rolls the operation journal up into per-pool time windows.
package stats

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"go.uber.org/zap"

	"ammCore/internal/model"
)

// Config controls aggregation behavior.
type Config struct {
	WindowSeconds uint64
	// Since drops records older than this unix timestamp. When zero the
	// StateStore checkpoint, if any, decides where to resume.
	Since      uint64
	StateStore StateStore
}

// Aggregator aggregates journal records into pool window metrics.
type Aggregator struct {
	cfg          Config
	logger       *zap.Logger
	accumulators map[string]*Accumulator
}

func NewAggregator(cfg Config, logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{
		cfg:          cfg,
		logger:       logger,
		accumulators: make(map[string]*Accumulator),
	}
}

// Aggregate is a one-shot Aggregator run without logging.
func Aggregate(ctx context.Context, in io.Reader, cfg Config) ([]model.PoolWindowMetrics, error) {
	return NewAggregator(cfg, nil).Run(ctx, in)
}

// Run reads JSONL operation records from in and returns one metrics row per
// pool and window, ordered by pool then window start. Malformed lines are
// logged and skipped.
func (a *Aggregator) Run(ctx context.Context, in io.Reader) ([]model.PoolWindowMetrics, error) {
	if a.cfg.WindowSeconds == 0 {
		return nil, fmt.Errorf("window seconds must be > 0")
	}

	startTs, err := a.loadStartTimestamp(ctx)
	if err != nil {
		return nil, err
	}

	scanner := bufio.NewScanner(in)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	var out []model.PoolWindowMetrics
	maxTs := startTs
	var total, aggregated, skipped, failed int

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		total++

		var record model.OperationRecord
		if err := json.Unmarshal(line, &record); err != nil {
			failed++
			a.logger.Warn("decode operation record", zap.Error(err))
			continue
		}
		if record.Timestamp <= startTs && (startTs > 0 || a.cfg.Since > 0) {
			skipped++
			continue
		}

		start := windowStart(record.Timestamp, a.cfg.WindowSeconds)
		acc := a.accumulators[record.PoolID]
		if acc != nil && acc.WindowStart != start {
			out = append(out, a.metrics(acc))
			acc = nil
		}
		if acc == nil {
			acc = NewAccumulator(record.PoolID, start, start+a.cfg.WindowSeconds)
			a.accumulators[record.PoolID] = acc
		}

		if err := acc.AddRecord(record); err != nil {
			failed++
			a.logger.Warn("aggregate record", zap.Error(err), zap.String("pool", record.PoolID), zap.String("operation", record.Operation))
			continue
		}
		aggregated++
		if record.Timestamp > maxTs {
			maxTs = record.Timestamp
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan journal: %w", err)
	}

	for _, acc := range a.accumulators {
		out = append(out, a.metrics(acc))
	}
	a.accumulators = make(map[string]*Accumulator)

	sort.Slice(out, func(i, j int) bool {
		if out[i].PoolID != out[j].PoolID {
			return out[i].PoolID < out[j].PoolID
		}
		return out[i].WindowStart.Before(out[j].WindowStart)
	})

	if a.cfg.StateStore != nil && maxTs > startTs {
		cp := Checkpoint{LastTimestamp: maxTs, WindowSeconds: a.cfg.WindowSeconds}
		if err := a.cfg.StateStore.Save(ctx, cp); err != nil {
			return nil, err
		}
	}

	a.logger.Info("stats complete",
		zap.Int("total", total),
		zap.Int("aggregated", aggregated),
		zap.Int("skipped", skipped),
		zap.Int("failed", failed),
		zap.Int("windows", len(out)),
	)
	return out, nil
}

// loadStartTimestamp returns the newest timestamp to skip. A checkpoint left
// by a run with a different window size is refused; its last window would be
// split across two sizes.
func (a *Aggregator) loadStartTimestamp(ctx context.Context) (uint64, error) {
	if a.cfg.Since > 0 {
		return a.cfg.Since - 1, nil
	}
	if a.cfg.StateStore == nil {
		return 0, nil
	}
	cp, ok, err := a.cfg.StateStore.Load(ctx)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	if cp.WindowSeconds != a.cfg.WindowSeconds {
		return 0, fmt.Errorf("checkpoint was taken with %ds windows, run uses %ds", cp.WindowSeconds, a.cfg.WindowSeconds)
	}
	return cp.LastTimestamp, nil
}

func (a *Aggregator) metrics(acc *Accumulator) model.PoolWindowMetrics {
	return model.PoolWindowMetrics{
		PoolID:         acc.PoolID,
		WindowSizeSecs: int64(a.cfg.WindowSeconds),
		WindowStart:    time.Unix(int64(acc.WindowStart), 0).UTC(),
		WindowEnd:      time.Unix(int64(acc.WindowEnd), 0).UTC(),
		SwapCountXForY: acc.SwapsXForY,
		SwapCountYForX: acc.SwapsYForX,
		VolumeInX:      acc.VolumeInX.String(),
		VolumeInY:      acc.VolumeInY.String(),
		VolumeOutX:     acc.VolumeOutX.String(),
		VolumeOutY:     acc.VolumeOutY.String(),
		FeeX:           acc.FeeX.String(),
		AddCount:       acc.Adds,
		RemoveCount:    acc.Removes,
		SharesMinted:   acc.SharesMinted.String(),
		SharesBurned:   acc.SharesBurned.String(),
		ReserveX:       acc.ReserveX,
		ReserveY:       acc.ReserveY,
		TotalShares:    acc.TotalShares,
		SpotPrice:      spotPrice(acc.ReserveX, acc.ReserveY),
		FeeYieldX:      computeRate(acc.FeeX, acc.ReserveX),
	}
}
