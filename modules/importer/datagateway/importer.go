package datagateway

import (
	"context"

	"github.com/gaze-network/ledger-importer/modules/importer/domain"
	"github.com/gaze-network/ledger-importer/modules/importer/entityid"
)

type ImporterDataGateway interface {
	ImporterReaderDataGateway
	ImporterWriterDataGateway

	// BeginImporterTx returns a new ImporterDataGateway with transaction enabled. All write operations performed in this datagateway must be committed to persist changes.
	BeginImporterTx(ctx context.Context) (ImporterDataGatewayWithTx, error)
}

type ImporterDataGatewayWithTx interface {
	ImporterDataGateway
	Tx
}

type ImporterReaderDataGateway interface {
	// GetEntityIdByAlias and GetEntityIdByEvmAddress return errs.NotFound if no committed entity carries the value.
	entityid.Store

	// GetLatestRecordFile returns the last committed record file. Returns errs.NotFound if nothing was committed yet.
	GetLatestRecordFile(ctx context.Context) (*domain.RecordFile, error)
}

type ImporterWriterDataGateway interface {
	// Upsert writes models of one type. Writes are idempotent by natural key: slowly-changing
	// entities are merged onto the stored row, line items that already exist are left untouched.
	Upsert(ctx context.Context, t domain.Type, models []domain.Model) error
}
