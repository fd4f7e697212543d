// Package memory provides an in-process Store. Each Update works on a private
// copy of the state and swaps it in only when the unit of work succeeds, so a
// failed operation leaves no trace. Views read the committed state in place.
// With a snapshot path the committed state is also written to disk.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	errorsmod "cosmossdk.io/errors"

	"ammCore/internal/ledger"
	"ammCore/internal/model"
	"ammCore/internal/storage"
)

var _ storage.Store = (*Store)(nil)

var errReadOnly = errors.New("write inside a read-only view")

type state struct {
	Pools    map[string]model.Pool `json:"pools"`
	Balances *ledger.Book          `json:"balances"`
}

func newState() *state {
	return &state{Pools: make(map[string]model.Pool), Balances: ledger.NewBook()}
}

func (s *state) clone() *state {
	out := &state{Pools: make(map[string]model.Pool, len(s.Pools)), Balances: s.Balances.Clone()}
	for id, pool := range s.Pools {
		out.Pools[id] = pool
	}
	return out
}

type snapshot struct {
	State     *state `json:"state"`
	UpdatedAt string `json:"updated_at"`
}

// Store serializes units of work behind one lock; views share it.
type Store struct {
	mu    sync.RWMutex
	state *state
	path  string
}

// New returns an empty store that lives only in memory.
func New() *Store {
	return &Store{state: newState()}
}

// Open returns a store backed by the snapshot file at path, loading it if it
// exists.
func Open(path string) (*Store, error) {
	s := &Store{state: newState(), path: path}
	if path == "" {
		return s, nil
	}

	snap := snapshot{State: newState()}
	if _, err := storage.ReadJSONFile(path, &snap); err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	if snap.State == nil {
		snap.State = newState()
	}
	if snap.State.Pools == nil {
		snap.State.Pools = make(map[string]model.Pool)
	}
	if snap.State.Balances == nil {
		snap.State.Balances = ledger.NewBook()
	}
	s.state = snap.State
	return s, nil
}

func (s *Store) Update(ctx context.Context, fn func(ctx context.Context, tx storage.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	working := s.state.clone()
	if err := fn(ctx, &tx{state: working}); err != nil {
		return err
	}
	if err := s.persist(working); err != nil {
		return err
	}
	s.state = working
	return nil
}

// View runs fn against the committed state without copying it. Writes made
// through the tx fail.
func (s *Store) View(ctx context.Context, fn func(ctx context.Context, tx storage.Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx, &tx{state: s.state, readOnly: true})
}

func (s *Store) Close() {}

func (s *Store) persist(st *state) error {
	if s.path == "" {
		return nil
	}
	err := storage.WriteJSONFile(s.path, snapshot{
		State:     st,
		UpdatedAt: time.Now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("persist snapshot: %w", err)
	}
	return nil
}

type tx struct {
	state    *state
	readOnly bool
}

func (t *tx) Pool(_ context.Context, id string) (model.Pool, error) {
	pool, ok := t.state.Pools[id]
	if !ok {
		return model.Pool{}, errorsmod.Wrapf(model.ErrPoolNotFound, "%s", id)
	}
	return pool, nil
}

func (t *tx) Pools(_ context.Context) ([]model.Pool, error) {
	pools := make([]model.Pool, 0, len(t.state.Pools))
	for _, pool := range t.state.Pools {
		pools = append(pools, pool)
	}
	sort.Slice(pools, func(i, j int) bool { return pools[i].ID < pools[j].ID })
	return pools, nil
}

func (t *tx) CreatePool(_ context.Context, pool model.Pool) error {
	if t.readOnly {
		return errReadOnly
	}
	if _, ok := t.state.Pools[pool.ID]; ok {
		return errorsmod.Wrapf(model.ErrPoolExists, "%s", pool.ID)
	}
	t.state.Pools[pool.ID] = pool
	return nil
}

func (t *tx) SavePool(_ context.Context, pool model.Pool) error {
	if t.readOnly {
		return errReadOnly
	}
	if _, ok := t.state.Pools[pool.ID]; !ok {
		return errorsmod.Wrapf(model.ErrPoolNotFound, "%s", pool.ID)
	}
	t.state.Pools[pool.ID] = pool
	return nil
}

func (t *tx) Ledger() ledger.Collaborator {
	if t.readOnly {
		return readOnlyLedger{t.state.Balances}
	}
	return t.state.Balances
}

// readOnlyLedger passes balance reads through and refuses every movement.
type readOnlyLedger struct {
	ledger.Collaborator
}

func (readOnlyLedger) Transfer(context.Context, string, string, string, uint64) error {
	return errReadOnly
}

func (readOnlyLedger) Mint(context.Context, string, string, uint64) error {
	return errReadOnly
}

func (readOnlyLedger) Burn(context.Context, string, string, uint64) error {
	return errReadOnly
}
