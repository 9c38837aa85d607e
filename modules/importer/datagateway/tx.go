package datagateway

import "context"

type Tx interface {
	// Commit makes every Upsert since BeginImporterTx visible at once and closes the transaction.
	// Commit without an open transaction is a no-op.
	Commit(ctx context.Context) error
	// Rollback discards every Upsert since BeginImporterTx. It is safe to call when no transaction is
	// active, so a deferred Rollback after a successful Commit does nothing.
	Rollback(ctx context.Context) error
}
