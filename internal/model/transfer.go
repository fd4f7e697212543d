package model

import (
	"strings"

	errorsmod "cosmossdk.io/errors"
)

// Direction selects which asset a swap takes in.
type Direction string

const (
	XForY Direction = "x-for-y"
	YForX Direction = "y-for-x"
)

// ParseDirection accepts "x-for-y"/"y-for-x" and the underscore and
// compact spellings ("x_for_y", "xfory").
func ParseDirection(input string) (Direction, error) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	normalized = strings.NewReplacer("_", "", "-", "").Replace(normalized)
	switch normalized {
	case "xfory":
		return XForY, nil
	case "yforx":
		return YForX, nil
	default:
		return "", errorsmod.Wrapf(ErrInvalidDirection, "%q", input)
	}
}

// TransferKind is the kind of value movement requested from the ledger.
type TransferKind string

const (
	KindTransfer TransferKind = "transfer"
	KindMint     TransferKind = "mint"
	KindBurn     TransferKind = "burn"
)

// Transfer is a single value movement the core asks the ledger to perform.
// From is empty for mints and To is empty for burns.
type Transfer struct {
	Kind   TransferKind `json:"kind"`
	Asset  string       `json:"asset"`
	From   string       `json:"from,omitempty"`
	To     string       `json:"to,omitempty"`
	Amount uint64       `json:"amount"`
}
