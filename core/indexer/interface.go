package indexer

import (
	"context"

	"github.com/gaze-network/ledger-importer/core/types"
)

type IndexerWorker interface {
	Run(ctx context.Context) error
}

type Input interface {
	Header() types.RecordFileHeader
}

type Processor[T Input] interface {
	Name() string

	// Process processes the input data and commits it.
	Process(ctx context.Context, inputs []T) error

	// CurrentRecordFile returns the latest committed record file header.
	// It returns errs.NotFound when nothing has been committed yet.
	CurrentRecordFile(ctx context.Context) (types.RecordFileHeader, error)

	Shutdown(ctx context.Context) error
}
