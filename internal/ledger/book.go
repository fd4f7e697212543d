package ledger

import (
	"context"
	"encoding/json"
	"sync"

	errorsmod "cosmossdk.io/errors"

	"ammCore/internal/fixedpoint"
	"ammCore/internal/model"
)

var _ Collaborator = (*Book)(nil)

// Book is an in-memory Collaborator. It is safe for concurrent use, but a
// sequence of calls is only atomic when the caller works on a Clone and
// swaps it in on success.
type Book struct {
	mu       sync.RWMutex
	balances map[string]map[string]uint64
}

func NewBook() *Book {
	return &Book{balances: make(map[string]map[string]uint64)}
}

func (b *Book) Balance(_ context.Context, asset, account string) (uint64, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.balances[asset][account], nil
}

func (b *Book) Transfer(_ context.Context, asset, from, to string, amount uint64) error {
	if from == to {
		return errorsmod.Wrapf(model.ErrSelfTransfer, "%s %s", from, asset)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	fromBal := b.balances[asset][from]
	if fromBal < amount {
		return errorsmod.Wrapf(model.ErrInsufficientFunds, "%s holds %d %s, needs %d", from, fromBal, asset, amount)
	}
	toBal, err := fixedpoint.Add(b.balances[asset][to], amount)
	if err != nil {
		return err
	}
	b.set(asset, from, fromBal-amount)
	b.set(asset, to, toBal)
	return nil
}

func (b *Book) Mint(_ context.Context, asset, to string, amount uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	toBal, err := fixedpoint.Add(b.balances[asset][to], amount)
	if err != nil {
		return err
	}
	b.set(asset, to, toBal)
	return nil
}

func (b *Book) Burn(_ context.Context, asset, from string, amount uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	fromBal := b.balances[asset][from]
	if fromBal < amount {
		return errorsmod.Wrapf(model.ErrInsufficientFunds, "%s holds %d %s, burning %d", from, fromBal, asset, amount)
	}
	b.set(asset, from, fromBal-amount)
	return nil
}

// Clone returns a deep copy of the book.
func (b *Book) Clone() *Book {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := NewBook()
	for asset, accounts := range b.balances {
		copied := make(map[string]uint64, len(accounts))
		for account, bal := range accounts {
			copied[account] = bal
		}
		out.balances[asset] = copied
	}
	return out
}

// MarshalJSON encodes balances as {asset: {account: amount}}.
func (b *Book) MarshalJSON() ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return json.Marshal(b.balances)
}

// UnmarshalJSON replaces the book's balances.
func (b *Book) UnmarshalJSON(data []byte) error {
	balances := make(map[string]map[string]uint64)
	if err := json.Unmarshal(data, &balances); err != nil {
		return err
	}
	b.mu.Lock()
	b.balances = balances
	b.mu.Unlock()
	return nil
}

func (b *Book) set(asset, account string, amount uint64) {
	accounts := b.balances[asset]
	if accounts == nil {
		accounts = make(map[string]uint64)
		b.balances[asset] = accounts
	}
	if amount == 0 {
		delete(accounts, account)
		if len(accounts) == 0 {
			delete(b.balances, asset)
		}
		return
	}
	accounts[account] = amount
}
