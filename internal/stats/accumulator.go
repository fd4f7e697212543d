package stats

import (
	"fmt"
	"math/big"

	"ammCore/internal/model"
)

// Accumulator holds aggregate values for one pool window.
type Accumulator struct {
	PoolID      string
	WindowStart uint64
	WindowEnd   uint64

	SwapsXForY   uint64
	SwapsYForX   uint64
	VolumeInX    *big.Int
	VolumeInY    *big.Int
	VolumeOutX   *big.Int
	VolumeOutY   *big.Int
	FeeX         *big.Int
	Adds         uint64
	Removes      uint64
	SharesMinted *big.Int
	SharesBurned *big.Int

	ReserveX    uint64
	ReserveY    uint64
	TotalShares uint64
	LastTS      uint64
}

func NewAccumulator(poolID string, windowStart, windowEnd uint64) *Accumulator {
	return &Accumulator{
		PoolID:       poolID,
		WindowStart:  windowStart,
		WindowEnd:    windowEnd,
		VolumeInX:    new(big.Int),
		VolumeInY:    new(big.Int),
		VolumeOutX:   new(big.Int),
		VolumeOutY:   new(big.Int),
		FeeX:         new(big.Int),
		SharesMinted: new(big.Int),
		SharesBurned: new(big.Int),
	}
}

// AddRecord folds one journal record into the window. The closing reserves
// follow the latest record seen.
func (a *Accumulator) AddRecord(record model.OperationRecord) error {
	switch record.Operation {
	case model.OpInitialize:
	case model.OpAddLiquidity:
		a.Adds++
		addUint(a.SharesMinted, record.Shares)
	case model.OpRemoveLiquidity:
		a.Removes++
		addUint(a.SharesBurned, record.Shares)
	case model.OpSwap:
		if err := a.applySwap(record); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown operation %q", record.Operation)
	}

	if record.Timestamp >= a.LastTS {
		a.LastTS = record.Timestamp
		a.ReserveX = record.ReserveX
		a.ReserveY = record.ReserveY
		a.TotalShares = record.TotalShares
	}
	return nil
}

func (a *Accumulator) applySwap(record model.OperationRecord) error {
	switch record.Direction {
	case model.XForY:
		a.SwapsXForY++
		addUint(a.VolumeInX, record.AmountIn)
		addUint(a.VolumeOutY, record.AmountOut)
		addUint(a.FeeX, record.Fee)
	case model.YForX:
		a.SwapsYForX++
		addUint(a.VolumeInY, record.AmountIn)
		addUint(a.VolumeOutX, record.AmountOut)
	default:
		return fmt.Errorf("swap without direction in pool %s", record.PoolID)
	}
	return nil
}

func addUint(target *big.Int, value uint64) {
	if value == 0 {
		return
	}
	target.Add(target, new(big.Int).SetUint64(value))
}
