package model

import (
	"encoding/json"
)

// Operation names recorded in the journal.
const (
	OpInitialize      = "initialize"
	OpAddLiquidity    = "add_liquidity"
	OpRemoveLiquidity = "remove_liquidity"
	OpSwap            = "swap"
)

// OperationRecord is one committed pool operation as written to the journal.
type OperationRecord struct {
	Timestamp   uint64    `json:"timestamp"`
	Operation   string    `json:"operation"`
	PoolID      string    `json:"pool_id"`
	User        string    `json:"user,omitempty"`
	Direction   Direction `json:"direction,omitempty"`
	AmountX     uint64    `json:"amount_x"`
	AmountY     uint64    `json:"amount_y"`
	AmountIn    uint64    `json:"amount_in,omitempty"`
	AmountOut   uint64    `json:"amount_out,omitempty"`
	Fee         uint64    `json:"fee,omitempty"`
	Shares      uint64    `json:"shares,omitempty"`
	ReserveX    uint64    `json:"reserve_x"`
	ReserveY    uint64    `json:"reserve_y"`
	TotalShares uint64    `json:"total_shares"`
	RecordedAt  string    `json:"recorded_at"`
}

// MarshalJSON ensures OperationRecord is encoded with stable field names.
func (r OperationRecord) MarshalJSON() ([]byte, error) {
	type Alias OperationRecord
	return json.Marshal(Alias(r))
}

// UnmarshalJSON decodes an OperationRecord and normalizes the direction.
func (r *OperationRecord) UnmarshalJSON(data []byte) error {
	type Alias OperationRecord
	var a Alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	if a.Direction != "" {
		dir, err := ParseDirection(string(a.Direction))
		if err != nil {
			return err
		}
		a.Direction = dir
	}
	*r = OperationRecord(a)
	return nil
}
