// Package amm implements the state transitions of a two-asset
// constant-product pool: initialize, add liquidity, remove liquidity and the
// two swap directions.
//
// Every function is pure. It takes the pool record as loaded by the caller
// together with the balances the caller observed, and returns the updated
// record plus the transfers the ledger must perform. Nothing is mutated on
// failure. Committing the new record and the transfers atomically is the
// caller's job (see package engine).
package amm
