package model

import "time"

// PoolWindowMetrics stores aggregated journal metrics for a pool window.
type PoolWindowMetrics struct {
	PoolID         string    `json:"pool_id"`
	WindowSizeSecs int64     `json:"window_size_seconds"`
	WindowStart    time.Time `json:"window_start"`
	WindowEnd      time.Time `json:"window_end"`
	SwapCountXForY uint64    `json:"swap_count_x_for_y"`
	SwapCountYForX uint64    `json:"swap_count_y_for_x"`
	VolumeInX      string    `json:"volume_in_x"`
	VolumeInY      string    `json:"volume_in_y"`
	VolumeOutX     string    `json:"volume_out_x"`
	VolumeOutY     string    `json:"volume_out_y"`
	FeeX           string    `json:"fee_x"`
	AddCount       uint64    `json:"add_count"`
	RemoveCount    uint64    `json:"remove_count"`
	SharesMinted   string    `json:"shares_minted"`
	SharesBurned   string    `json:"shares_burned"`
	ReserveX       uint64    `json:"reserve_x"`
	ReserveY       uint64    `json:"reserve_y"`
	TotalShares    uint64    `json:"total_shares"`
	SpotPrice      *string   `json:"spot_price,omitempty"`
	FeeYieldX      *string   `json:"fee_yield_x,omitempty"`
}
