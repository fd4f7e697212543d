package storage

import (
	"context"

	"ammCore/internal/ledger"
	"ammCore/internal/model"
)

// Store runs pool operations as atomic units of work.
type Store interface {
	// Update runs fn in a read-write transaction. If fn returns an error
	// nothing it did is kept.
	Update(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// View runs fn in a read-only transaction.
	View(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	Close()
}

// Tx is the state visible to one unit of work. Pool returns
// model.ErrPoolNotFound for unknown ids.
type Tx interface {
	Pool(ctx context.Context, id string) (model.Pool, error)
	Pools(ctx context.Context) ([]model.Pool, error)
	CreatePool(ctx context.Context, pool model.Pool) error
	SavePool(ctx context.Context, pool model.Pool) error
	Ledger() ledger.Collaborator
}

// Journal is a sink for committed operation records.
type Journal interface {
	Append(records ...model.OperationRecord) error
}

// NopJournal discards records.
type NopJournal struct{}

func (NopJournal) Append(...model.OperationRecord) error { return nil }
