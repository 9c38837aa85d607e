package datasources

import (
	"context"

	"github.com/gaze-network/ledger-importer/core/types"
	"github.com/gaze-network/ledger-importer/internal/subscription"
)

// Datasource serves decoded record files by index. A negative to means up to the latest file.
type Datasource[T any] interface {
	Name() string
	Fetch(ctx context.Context, from, to int64) ([]T, error)
	// FetchAsync streams batches in index order and closes the subscription after the last one.
	FetchAsync(ctx context.Context, from, to int64, ch chan<- []T) (*subscription.ClientSubscription[[]T], error)
	// GetRecordFileHeader returns errs.NotFound when the file is not available.
	GetRecordFileHeader(ctx context.Context, index int64) (types.RecordFileHeader, error)
}
