package model

import (
	errorsmod "cosmossdk.io/errors"
)

// ModuleName is the error codespace for pool errors.
const ModuleName = "amm"

// Pool error taxonomy. All of these are returned before any state is mutated.
var (
	ErrInsufficientFunds = errorsmod.Register(ModuleName, 2, "insufficient funds")
	ErrInvalidRatio      = errorsmod.Register(ModuleName, 3, "provided token ratio is incorrect")
	ErrOverflow          = errorsmod.Register(ModuleName, 4, "arithmetic overflow")
	ErrDivisionByZero    = errorsmod.Register(ModuleName, 5, "division by zero")
	ErrSameAsset         = errorsmod.Register(ModuleName, 6, "pool assets must differ")
	ErrInvalidFee        = errorsmod.Register(ModuleName, 7, "invalid fee")
	ErrInvalidAsset      = errorsmod.Register(ModuleName, 8, "invalid asset id")
	ErrPoolNotFound      = errorsmod.Register(ModuleName, 9, "pool not found")
	ErrPoolExists        = errorsmod.Register(ModuleName, 10, "pool already exists")
	ErrInvalidDirection  = errorsmod.Register(ModuleName, 11, "invalid swap direction")
	ErrInvariant         = errorsmod.Register(ModuleName, 12, "pool invariant violated")
	ErrReservedAccount   = errorsmod.Register(ModuleName, 13, "account or asset is reserved for a pool")
	ErrSelfTransfer      = errorsmod.Register(ModuleName, 14, "transfer source and destination are the same account")
)
