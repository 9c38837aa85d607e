package batch

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ledger-importer/modules/importer/domain"
	"github.com/gaze-network/ledger-importer/pkg/logger"
	"github.com/gaze-network/ledger-importer/pkg/logger/slogx"
	"golang.org/x/sync/errgroup"
)

func (c *Coordinator) flush(ctx context.Context) error {
	startAt := time.Now()
	types := c.pc.Types()

	for _, level := range domain.Order.LevelsOf(types) {
		if err := c.flushLevel(ctx, level); err != nil {
			return errors.WithStack(err)
		}
	}

	row := domain.NewRecordFile(c.file, c.loadStart.Unix(), time.Now().Unix())
	if err := c.tx.Upsert(ctx, domain.TypeRecordFile, []domain.Model{row}); err != nil {
		return errors.Wrap(err, "failed to upsert record file")
	}

	snapshot := c.pc.Snapshot()
	for _, p := range c.publishers {
		for _, t := range snapshot.Types() {
			p.Enqueue(snapshot.Get(t))
		}
	}

	if err := c.tx.Commit(ctx); err != nil {
		return errors.Wrap(err, "failed to commit transaction")
	}

	// the file is durable from here on
	for _, b := range c.pc.Bindings() {
		if actual, loaded := c.resolver.Table().PutIfAbsent(b.Kind, b.Value, b.Id); loaded && actual != b.Id {
			logger.WarnContext(ctx, "Alias already bound to another entity",
				slogx.Stringer("kind", b.Kind),
				slogx.Stringer("bound", actual),
				slogx.Stringer("ignored", b.Id),
			)
		}
	}

	file := c.file
	c.mu.Lock()
	c.last = row
	c.stats.FilesCommitted++
	c.mu.Unlock()
	c.release()

	duration := time.Since(startAt)
	for _, t := range snapshot.Types() {
		c.metrics.flushed(t, len(snapshot.Get(t)))
	}
	c.metrics.filesCommitted.Inc()
	c.metrics.flushDuration.Observe(duration.Seconds())
	c.metrics.consensusEnd.Set(float64(row.ConsensusEnd))

	for _, p := range c.publishers {
		if err := p.OnEnd(ctx, file); err != nil {
			logger.WarnContext(ctx, "Publisher failed to emit committed record file",
				slogx.String("publisher", p.Name()),
				slogx.Error(err),
			)
		}
	}

	logger.InfoContext(ctx, "Committed record file",
		slogx.String("event", "commit_record_file"),
		slogx.String(logger.RecordFileKey, row.Name),
		slogx.Int64("index", row.Index),
		slogx.Int64("count", row.Count),
		slogx.Duration("duration", duration),
	)
	return nil
}

// flushLevel writes the types of one dependency level. Types in a level don't reference each other,
// so they may be written concurrently within the transaction.
func (c *Coordinator) flushLevel(ctx context.Context, level []domain.Type) error {
	if c.config.FlushConcurrency <= 1 || len(level) == 1 {
		for _, t := range level {
			if err := c.upsert(ctx, t); err != nil {
				return errors.WithStack(err)
			}
		}
		return nil
	}

	eg, ectx := errgroup.WithContext(ctx)
	eg.SetLimit(c.config.FlushConcurrency)
	for _, t := range level {
		eg.Go(func() error {
			return c.upsert(ectx, t)
		})
	}
	return errors.WithStack(eg.Wait())
}

func (c *Coordinator) upsert(ctx context.Context, t domain.Type) error {
	models := c.pc.GetAll(t)
	if err := c.tx.Upsert(ctx, t, models); err != nil {
		return errors.Wrapf(err, "failed to upsert %s", t)
	}
	return nil
}
