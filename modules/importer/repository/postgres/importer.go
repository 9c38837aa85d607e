package postgres

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ledger-importer/common/errs"
	"github.com/gaze-network/ledger-importer/modules/importer/datagateway"
	"github.com/gaze-network/ledger-importer/modules/importer/domain"
	"github.com/gaze-network/ledger-importer/modules/importer/entityid"
	"github.com/jackc/pgx/v5"
)

var _ datagateway.ImporterDataGateway = (*Repository)(nil)

const getEntityIdByAlias = `SELECT "id" FROM "entity" WHERE "alias" = $1 ORDER BY "created_timestamp" ASC NULLS LAST LIMIT 1`

const getEntityIdByEvmAddress = `SELECT "id" FROM "entity" WHERE "evm_address" = $1 ORDER BY "created_timestamp" ASC NULLS LAST LIMIT 1`

const getLatestRecordFile = `SELECT "consensus_start", "consensus_end", "name", "index", "hash", "prev_hash", "count",
	coalesce("hapi_version", ''), "node_id", coalesce("size", 0), coalesce("gas_used", 0), "load_start", "load_end"
FROM "record_file" ORDER BY "consensus_end" DESC LIMIT 1`

func (r *Repository) GetEntityIdByAlias(ctx context.Context, alias []byte) (entityid.EntityId, error) {
	return r.getEntityId(ctx, getEntityIdByAlias, alias)
}

func (r *Repository) GetEntityIdByEvmAddress(ctx context.Context, evmAddress []byte) (entityid.EntityId, error) {
	return r.getEntityId(ctx, getEntityIdByEvmAddress, evmAddress)
}

func (r *Repository) getEntityId(ctx context.Context, query string, value []byte) (entityid.EntityId, error) {
	var id int64
	if err := r.queryable().QueryRow(ctx, query, value).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entityid.EmptyId, errors.WithStack(errs.NotFound)
		}
		return entityid.EmptyId, errors.Wrap(err, "error during query")
	}
	return entityid.EntityId(id), nil
}

func (r *Repository) GetLatestRecordFile(ctx context.Context) (*domain.RecordFile, error) {
	var file domain.RecordFile
	err := r.queryable().QueryRow(ctx, getLatestRecordFile).Scan(
		&file.ConsensusStart,
		&file.ConsensusEnd,
		&file.Name,
		&file.Index,
		&file.Hash,
		&file.PreviousHash,
		&file.Count,
		&file.HapiVersion,
		&file.NodeId,
		&file.Size,
		&file.GasUsed,
		&file.LoadStart,
		&file.LoadEnd,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.WithStack(errs.NotFound)
		}
		return nil, errors.Wrap(err, "error during query")
	}
	return &file, nil
}

// Upsert queues one statement per model and sends them as a single batch.
func (r *Repository) Upsert(ctx context.Context, t domain.Type, models []domain.Model) error {
	if len(models) == 0 {
		return nil
	}
	stmt, ok := statements[t]
	if !ok {
		return errors.Wrapf(errs.Unsupported, "no table for %s", t)
	}

	batch := &pgx.Batch{}
	for _, m := range models {
		if m.Type() != t {
			return errors.Wrapf(errs.Precondition, "%s model in %s upsert", m.Type(), t)
		}
		args, err := stmt.args(m)
		if err != nil {
			return errors.Wrapf(err, "can't map %s", t)
		}
		batch.Queue(stmt.sql, args...)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	results := r.sendBatch(ctx, batch)
	for range models {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return errors.Mark(errors.Wrapf(err, "failed to upsert %s", t), errs.Storage)
		}
	}
	if err := results.Close(); err != nil {
		return errors.Mark(errors.Wrapf(err, "failed to upsert %s", t), errs.Storage)
	}
	return nil
}
