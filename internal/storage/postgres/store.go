package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strconv"
	"time"

	errorsmod "cosmossdk.io/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"ammCore/internal/ledger"
	"ammCore/internal/model"
	"ammCore/internal/storage"
)

//go:embed schema.sql
var schemaSQL string

const checkViolation = "23514"

var _ storage.Store = (*Store)(nil)

// Options tunes how the store connects.
type Options struct {
	ConnectAttempts int
	ConnectBackoff  time.Duration
	Logger          *zap.Logger
}

// Store provides Postgres persistence for pools and balances. Every Update
// is a single database transaction; pool and balance rows touched by it are
// locked until commit, so operations on the same pool are serialized while
// different pools proceed in parallel.
type Store struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewStore(ctx context.Context, dsn string, opts Options) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := pingWithRetry(ctx, pool.Ping, opts.ConnectAttempts, opts.ConnectBackoff, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Store{pool: pool, logger: logger}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Migrate creates the tables if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func (s *Store) Update(ctx context.Context, fn func(ctx context.Context, tx storage.Tx) error) error {
	return s.run(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, true, fn)
}

func (s *Store) View(ctx context.Context, fn func(ctx context.Context, tx storage.Tx) error) error {
	return s.run(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly}, false, fn)
}

func (s *Store) run(ctx context.Context, opts pgx.TxOptions, forUpdate bool, fn func(ctx context.Context, tx storage.Tx) error) error {
	dbTx, err := s.pool.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err := dbTx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			s.logger.Warn("rollback failed", zap.Error(err))
		}
	}()

	if err := fn(ctx, &tx{db: dbTx, forUpdate: forUpdate}); err != nil {
		return err
	}
	if err := dbTx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

type tx struct {
	db        pgx.Tx
	forUpdate bool
}

const poolColumns = `id, authority, asset_x, asset_y, share_asset,
	reserve_x::text, reserve_y::text, total_shares::text, fee_bps`

func (t *tx) lockClause() string {
	if t.forUpdate {
		return " FOR UPDATE"
	}
	return ""
}

func (t *tx) Pool(ctx context.Context, id string) (model.Pool, error) {
	row := t.db.QueryRow(ctx, `SELECT `+poolColumns+` FROM pools WHERE id=$1`+t.lockClause(), id)
	pool, err := scanPool(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Pool{}, errorsmod.Wrapf(model.ErrPoolNotFound, "%s", id)
		}
		return model.Pool{}, err
	}
	return pool, nil
}

func (t *tx) Pools(ctx context.Context) ([]model.Pool, error) {
	rows, err := t.db.Query(ctx, `SELECT `+poolColumns+` FROM pools ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pools []model.Pool
	for rows.Next() {
		pool, err := scanPool(rows)
		if err != nil {
			return nil, err
		}
		pools = append(pools, pool)
	}
	return pools, rows.Err()
}

func (t *tx) CreatePool(ctx context.Context, pool model.Pool) error {
	tag, err := t.db.Exec(ctx, `
		INSERT INTO pools (
			id, authority, asset_x, asset_y, share_asset, reserve_x, reserve_y, total_shares, fee_bps, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6::text::numeric, $7::text::numeric, $8::text::numeric, $9, now(), now())
		ON CONFLICT (id) DO NOTHING
	`,
		pool.ID,
		pool.Authority,
		pool.AssetX,
		pool.AssetY,
		pool.ShareAsset,
		formatAmount(pool.ReserveX),
		formatAmount(pool.ReserveY),
		formatAmount(pool.TotalShares),
		int32(pool.FeeBps),
	)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return errorsmod.Wrapf(model.ErrPoolExists, "%s", pool.ID)
	}
	return nil
}

// SavePool writes the mutable fields of a pool. Identity, assets and fee are
// fixed at creation and never rewritten.
func (t *tx) SavePool(ctx context.Context, pool model.Pool) error {
	tag, err := t.db.Exec(ctx, `
		UPDATE pools SET
			reserve_x = $2::text::numeric,
			reserve_y = $3::text::numeric,
			total_shares = $4::text::numeric,
			updated_at = now()
		WHERE id = $1
	`,
		pool.ID,
		formatAmount(pool.ReserveX),
		formatAmount(pool.ReserveY),
		formatAmount(pool.TotalShares),
	)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return errorsmod.Wrapf(model.ErrPoolNotFound, "%s", pool.ID)
	}
	return nil
}

func (t *tx) Ledger() ledger.Collaborator {
	return &balances{tx: t}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPool(row rowScanner) (model.Pool, error) {
	var (
		pool                       model.Pool
		reserveX, reserveY, shares string
		feeBps                     int32
	)
	if err := row.Scan(&pool.ID, &pool.Authority, &pool.AssetX, &pool.AssetY, &pool.ShareAsset,
		&reserveX, &reserveY, &shares, &feeBps); err != nil {
		return model.Pool{}, err
	}

	var err error
	if pool.ReserveX, err = parseAmount(reserveX); err != nil {
		return model.Pool{}, fmt.Errorf("pool %s reserve_x: %w", pool.ID, err)
	}
	if pool.ReserveY, err = parseAmount(reserveY); err != nil {
		return model.Pool{}, fmt.Errorf("pool %s reserve_y: %w", pool.ID, err)
	}
	if pool.TotalShares, err = parseAmount(shares); err != nil {
		return model.Pool{}, fmt.Errorf("pool %s total_shares: %w", pool.ID, err)
	}
	pool.FeeBps = uint32(feeBps)
	return pool, nil
}

// balances implements ledger.Collaborator on the balances table within the
// surrounding transaction.
type balances struct {
	tx *tx
}

var _ ledger.Collaborator = (*balances)(nil)

func (b *balances) Balance(ctx context.Context, asset, account string) (uint64, error) {
	var amount string
	row := b.tx.db.QueryRow(ctx, `SELECT amount::text FROM balances WHERE asset=$1 AND account=$2`+b.tx.lockClause(), asset, account)
	if err := row.Scan(&amount); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	return parseAmount(amount)
}

func (b *balances) Transfer(ctx context.Context, asset, from, to string, amount uint64) error {
	if from == to {
		return errorsmod.Wrapf(model.ErrSelfTransfer, "%s %s", from, asset)
	}
	if err := b.debit(ctx, asset, from, amount); err != nil {
		return err
	}
	return b.credit(ctx, asset, to, amount)
}

func (b *balances) Mint(ctx context.Context, asset, to string, amount uint64) error {
	return b.credit(ctx, asset, to, amount)
}

func (b *balances) Burn(ctx context.Context, asset, from string, amount uint64) error {
	return b.debit(ctx, asset, from, amount)
}

func (b *balances) debit(ctx context.Context, asset, account string, amount uint64) error {
	if amount == 0 {
		return nil
	}
	tag, err := b.tx.db.Exec(ctx, `
		UPDATE balances
		SET amount = amount - $3::text::numeric, updated_at = now()
		WHERE asset = $1 AND account = $2 AND amount >= $3::text::numeric
	`, asset, account, formatAmount(amount))
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return errorsmod.Wrapf(model.ErrInsufficientFunds, "%s lacks %d %s", account, amount, asset)
	}
	return nil
}

func (b *balances) credit(ctx context.Context, asset, account string, amount uint64) error {
	if amount == 0 {
		return nil
	}
	_, err := b.tx.db.Exec(ctx, `
		INSERT INTO balances (asset, account, amount, updated_at)
		VALUES ($1, $2, $3::text::numeric, now())
		ON CONFLICT (asset, account)
		DO UPDATE SET amount = balances.amount + EXCLUDED.amount, updated_at = now()
	`, asset, account, formatAmount(amount))
	return mapError(err)
}

// mapError turns range check violations into ErrOverflow.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == checkViolation {
		return errorsmod.Wrapf(model.ErrOverflow, "%s", pgErr.ConstraintName)
	}
	return err
}

func formatAmount(v uint64) string {
	return strconv.FormatUint(v, 10)
}

func parseAmount(s string) (uint64, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return v, nil
}
