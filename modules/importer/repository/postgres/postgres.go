package postgres

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ledger-importer/common/errs"
	"github.com/gaze-network/ledger-importer/internal/postgres"
	"github.com/gaze-network/ledger-importer/modules/importer/datagateway"
	"github.com/gaze-network/ledger-importer/pkg/logger"
	"github.com/jackc/pgx/v5"
)

type Repository struct {
	db postgres.DB
	tx pgx.Tx

	// mu serializes batches on tx, a pgx.Tx owns a single connection.
	mu *sync.Mutex
}

func NewRepository(db postgres.DB) *Repository {
	return &Repository{
		db: db,
		mu: &sync.Mutex{},
	}
}

var ErrTxAlreadyExists = errors.New("Transaction already exists. Call Commit() or Rollback() first.")

func (r *Repository) BeginImporterTx(ctx context.Context) (datagateway.ImporterDataGatewayWithTx, error) {
	repo := NewRepository(r.db)
	if err := repo.Begin(ctx); err != nil {
		return nil, errors.WithStack(err)
	}
	return repo, nil
}

func (r *Repository) Begin(ctx context.Context) (err error) {
	if r.tx != nil {
		return errors.WithStack(ErrTxAlreadyExists)
	}
	r.tx, err = r.db.Begin(ctx)
	if err != nil {
		return errors.Mark(errors.Wrap(err, "failed to begin transaction"), errs.Storage)
	}
	return nil
}

func (r *Repository) Commit(ctx context.Context) error {
	if r.tx == nil {
		return nil
	}
	err := r.tx.Commit(ctx)
	if err != nil {
		return errors.Mark(errors.Wrap(err, "failed to commit transaction"), errs.Storage)
	}
	r.tx = nil
	return nil
}

func (r *Repository) Rollback(ctx context.Context) error {
	if r.tx == nil {
		return nil
	}
	err := r.tx.Rollback(ctx)
	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return errors.Mark(errors.Wrap(err, "failed to rollback transaction"), errs.Storage)
	}
	if err == nil {
		logger.InfoContext(ctx, "rolled back transaction")
	}
	r.tx = nil
	return nil
}

// queryable returns the open transaction, or the pool outside of one.
func (r *Repository) queryable() postgres.Queryable {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

func (r *Repository) sendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	if r.tx != nil {
		return r.tx.SendBatch(ctx, b)
	}
	return r.db.SendBatch(ctx, b)
}
