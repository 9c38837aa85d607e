package indexer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ledger-importer/common/errs"
	"github.com/gaze-network/ledger-importer/core/datasources"
	"github.com/gaze-network/ledger-importer/core/types"
	"github.com/gaze-network/ledger-importer/pkg/logger"
	"github.com/gaze-network/ledger-importer/pkg/logger/slogx"
)

// DefaultPollingInterval is the default polling interval for the indexer polling worker
const DefaultPollingInterval = 5 * time.Second

// Indexer generic indexer for fetching and processing record files
type Indexer[T Input] struct {
	Processor       Processor[T]
	Datasource      datasources.Datasource[T]
	PollingInterval time.Duration
	current         types.RecordFileHeader

	quitOnce sync.Once
	quit     chan struct{}
	done     chan struct{}
}

// New create new generic indexer
func New[T Input](processor Processor[T], datasource datasources.Datasource[T]) *Indexer[T] {
	return &Indexer[T]{
		Processor:       processor,
		Datasource:      datasource,
		PollingInterval: DefaultPollingInterval,

		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
}

func (i *Indexer[T]) Shutdown() error {
	return i.ShutdownWithContext(context.Background())
}

func (i *Indexer[T]) ShutdownWithTimeout(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return i.ShutdownWithContext(ctx)
}

func (i *Indexer[T]) ShutdownWithContext(ctx context.Context) (err error) {
	i.quitOnce.Do(func() {
		close(i.quit)
		select {
		case <-i.done:
		case <-time.After(180 * time.Second):
			err = errors.Wrap(errs.Timeout, "indexer shutdown timeout")
		case <-ctx.Done():
			err = errors.Wrap(ctx.Err(), "indexer shutdown context canceled")
		}
	})
	return
}

func (i *Indexer[T]) Run(ctx context.Context) (err error) {
	defer close(i.done)

	ctx = logger.WithContext(ctx,
		slog.String("package", "indexer"),
		slog.String("processor", i.Processor.Name()),
		slog.String("datasource", i.Datasource.Name()),
	)

	// set to -1 to start from the first record file
	i.current, err = i.Processor.CurrentRecordFile(ctx)
	if err != nil {
		if !errors.Is(err, errs.NotFound) {
			return errors.Wrap(err, "can't init state, failed to get current record file")
		}
		i.current = types.RecordFileHeader{Index: -1}
	}
	if err := i.verifyCurrent(ctx); err != nil {
		return errors.WithStack(err)
	}

	interval := i.PollingInterval
	if interval <= 0 {
		interval = DefaultPollingInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-i.quit:
			logger.InfoContext(ctx, "Got quit signal, stopping indexer")
			if err := i.Processor.Shutdown(ctx); err != nil {
				logger.ErrorContext(ctx, "Failed to shutdown processor", slogx.Error(err))
				return errors.Wrap(err, "processor shutdown failed")
			}
			return nil
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := i.process(ctx); err != nil {
				logger.ErrorContext(ctx, "Indexer failed while processing", slogx.Error(err))
				return errors.Wrap(err, "process failed")
			}
			logger.DebugContext(ctx, "Waiting for next polling interval")
		}
	}
}

func (i *Indexer[T]) process(ctx context.Context) (err error) {
	from, to := i.current.Index+1, int64(-1)

	logger.DebugContext(ctx, "Start fetching record files", slog.Int64("from", from))
	ch := make(chan []T)
	subscription, err := i.Datasource.FetchAsync(ctx, from, to, ch)
	if err != nil {
		return errors.Wrap(err, "failed to fetch input data")
	}
	defer subscription.Unsubscribe()

	for {
		select {
		case <-i.quit:
			return nil
		case inputs := <-ch:
			if len(inputs) == 0 {
				continue
			}

			startAt := time.Now()
			ctx := logger.WithContext(ctx,
				slogx.Int64("from", inputs[0].Header().Index),
				slogx.Int64("to", inputs[len(inputs)-1].Header().Index),
			)

			if err := i.validateContinuity(inputs); err != nil {
				return errors.WithStack(err)
			}

			ctx = logger.WithContext(ctx, slog.Int("total_inputs", len(inputs)))

			logger.InfoContext(ctx, "Processing record files")
			if err := i.Processor.Process(ctx, inputs); err != nil {
				return errors.WithStack(err)
			}

			i.current = inputs[len(inputs)-1].Header()

			logger.InfoContext(ctx, "Processed record files successfully",
				slogx.String("event", "processed_inputs"),
				slogx.String("current_file", i.current.Name),
				slogx.Int64("current_index", i.current.Index),
				slogx.Duration("duration", time.Since(startAt)),
			)
		case <-subscription.Done():
			// end current round
			if err := ctx.Err(); err != nil {
				return errors.Wrap(err, "context done")
			}
			return nil
		case <-ctx.Done():
			return errors.WithStack(ctx.Err())
		case err := <-subscription.Err():
			if err != nil {
				return errors.Wrap(err, "got error while fetch async")
			}
		}
	}
}

// verifyCurrent checks that the datasource still serves the committed file with the same hash.
// A datasource that no longer has the file is fine, it only has to continue the chain.
func (i *Indexer[T]) verifyCurrent(ctx context.Context) error {
	if i.current.Index < 0 {
		return nil
	}
	header, err := i.Datasource.GetRecordFileHeader(ctx, i.current.Index)
	if errors.Is(err, errs.NotFound) {
		logger.WarnContext(ctx, "Committed record file is not in the datasource, skipped verification",
			slogx.Int64("current_index", i.current.Index),
		)
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "failed to get committed record file from datasource")
	}
	if header.Hash != i.current.Hash {
		return errors.Wrapf(errs.DataIntegrity, "datasource record file %d hash %s differs from committed hash %s", header.Index, header.Hash, i.current.Hash)
	}
	return nil
}

// validateContinuity checks that inputs extend the hash chain of the last committed file.
// The stream is consensus-finalized, so a broken chain is never a reorg.
func (i *Indexer[T]) validateContinuity(inputs []T) error {
	prev := i.current
	for n, input := range inputs {
		header := input.Header()
		if prev.Index >= 0 && header.Index != prev.Index+1 {
			return errors.Wrapf(errs.DataIntegrity, "record file is not continuous, input[%d] index: %d, previous index: %d", n, header.Index, prev.Index)
		}
		if prev.Hash != "" && header.PreviousHash != prev.Hash {
			return errors.Wrapf(errs.DataIntegrity, "record file %s previous hash mismatch, expected: %s, got: %s", header.Name, prev.Hash, header.PreviousHash)
		}
		prev = header
	}
	return nil
}
