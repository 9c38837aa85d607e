// Package batch commits record files atomically: every model derived from a file is flushed in
// Domain Class Order within one transaction, and publishers only see files that were committed.
package batch

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ledger-importer/common/errs"
	"github.com/gaze-network/ledger-importer/core/indexer"
	"github.com/gaze-network/ledger-importer/core/types"
	"github.com/gaze-network/ledger-importer/modules/importer/config"
	"github.com/gaze-network/ledger-importer/modules/importer/datagateway"
	"github.com/gaze-network/ledger-importer/modules/importer/domain"
	"github.com/gaze-network/ledger-importer/modules/importer/entityid"
	"github.com/gaze-network/ledger-importer/modules/importer/parsercontext"
	"github.com/gaze-network/ledger-importer/modules/importer/processor"
	"github.com/gaze-network/ledger-importer/modules/importer/publisher"
	"github.com/gaze-network/ledger-importer/pkg/logger"
	"github.com/gaze-network/ledger-importer/pkg/logger/slogx"
)

var _ indexer.Processor[*types.RecordFile] = (*Coordinator)(nil)

// Coordinator owns the parser context and the transaction of the file being imported. One file is
// open at a time; OnStart, OnItem and OnEnd must be called from a single goroutine.
type Coordinator struct {
	config     *config.Config
	dg         datagateway.ImporterDataGateway
	processor  *processor.Processor
	resolver   *entityid.Resolver
	publishers []publisher.BatchPublisher
	metrics    *Metrics

	cleanupFuncs []func(context.Context) error

	state atomic.Int32

	// mu guards last and stats, which are read by Status and CurrentRecordFile.
	mu    sync.RWMutex
	last  *domain.RecordFile
	stats Stats

	pc        *parsercontext.Context
	tx        datagateway.ImporterDataGatewayWithTx
	lookup    *entityid.Lookup
	file      *types.RecordFile
	fault     *FileError
	loadStart time.Time
}

// Stats are running totals since the coordinator was created.
type Stats struct {
	FilesCommitted int64
	FilesAborted   int64
	ItemsProcessed int64
	LastError      string
}

type Status struct {
	State    string                  `json:"state"`
	LastFile *types.RecordFileHeader `json:"last_file,omitempty"`
	Stats
}

type Option func(*Coordinator)

func WithPublishers(publishers ...publisher.BatchPublisher) Option {
	return func(c *Coordinator) {
		c.publishers = append(c.publishers, publishers...)
	}
}

func WithMetrics(m *Metrics) Option {
	return func(c *Coordinator) {
		c.metrics = m
	}
}

// WithCleanupFuncs registers funcs run by Shutdown, e.g. closing the connection pool.
func WithCleanupFuncs(funcs ...func(context.Context) error) Option {
	return func(c *Coordinator) {
		c.cleanupFuncs = append(c.cleanupFuncs, funcs...)
	}
}

func New(cfg *config.Config, dg datagateway.ImporterDataGateway, p *processor.Processor, resolver *entityid.Resolver, opts ...Option) *Coordinator {
	c := &Coordinator{
		config:    cfg,
		dg:        dg,
		processor: p,
		resolver:  resolver,
		pc:        parsercontext.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.metrics == nil {
		c.metrics = NewMetrics(nil)
	}
	return c
}

func (c *Coordinator) Name() string {
	return "importer"
}

func (c *Coordinator) State() State {
	return State(c.state.Load())
}

func (c *Coordinator) setState(s State) {
	c.state.Store(int32(s))
}

// OnStart opens the transaction of file. file must extend the hash chain of the last committed file.
func (c *Coordinator) OnStart(ctx context.Context, file *types.RecordFile) error {
	if state := c.State(); state != StateIdle {
		return errors.Wrapf(errs.Precondition, "can't start record file while %s", state)
	}
	if file == nil {
		return errors.Wrap(errs.Precondition, "record file is nil")
	}
	if !c.pc.IsEmpty() {
		return errors.Wrapf(errs.Precondition, "parser context holds %d models of a previous file", c.pc.Len())
	}

	last, err := c.lastCommitted(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get last committed record file")
	}
	if last != nil && last.Hash != "" && file.PreviousHash != last.Hash {
		return errors.Wrapf(errs.DataIntegrity, "record file %s previous hash mismatch, expected: %s, got: %s", file.Name, last.Hash, file.PreviousHash)
	}

	tx, err := c.dg.BeginImporterTx(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	c.tx = tx
	c.lookup = c.resolver.Bind(c.pc, tx)
	c.file = file
	c.fault = nil
	c.loadStart = time.Now()
	c.setState(StateFileOpen)

	logger.DebugContext(ctx, "Opened record file",
		slogx.String(logger.RecordFileKey, file.Name),
		slogx.Int64("index", file.Index),
		slogx.Int("items", file.Len()),
	)
	return nil
}

// OnItem derives the mutations of item into the parser context. The first fault aborts the file:
// later items are rejected and OnEnd rolls back.
func (c *Coordinator) OnItem(ctx context.Context, item *types.RecordItem) error {
	switch state := c.State(); state {
	case StateFileOpen, StateProcessing:
	case StateAborted:
		return errors.Wrapf(errs.Precondition, "record file %s was aborted", c.file.Name)
	default:
		return errors.Wrapf(errs.Precondition, "can't process record item while %s", state)
	}
	c.setState(StateProcessing)

	if err := c.processor.Process(ctx, c.lookup, c.pc, item); err != nil {
		c.fault = &FileError{File: c.file.Name, Err: err}
		if item != nil {
			c.fault.ConsensusTimestamp = item.ConsensusTimestamp
			c.fault.TransactionType = item.TransactionType()
		}
		c.setState(StateAborted)
		return c.fault
	}
	c.metrics.itemsProcessed.Inc()
	c.mu.Lock()
	c.stats.ItemsProcessed++
	c.mu.Unlock()
	return nil
}

// OnEnd commits the file, or rolls it back when cause is set or an item failed. A failed file
// returns a *FileError.
func (c *Coordinator) OnEnd(ctx context.Context, file *types.RecordFile, cause error) error {
	switch state := c.State(); state {
	case StateFileOpen, StateProcessing, StateAborted:
	default:
		return errors.Wrapf(errs.Precondition, "can't end record file while %s", state)
	}
	if file != nil && file != c.file && file.Name != c.file.Name {
		cause = errors.Wrapf(errs.Precondition, "ending record file %s while %s is open", file.Name, c.file.Name)
	}
	if cause == nil && c.fault != nil {
		cause = c.fault
	}
	if cause != nil {
		return c.abort(ctx, cause)
	}

	c.setState(StateFlushing)
	if err := c.flush(ctx); err != nil {
		return c.abort(ctx, err)
	}
	return nil
}

// ProcessFile runs one file through OnStart, OnItem and OnEnd.
func (c *Coordinator) ProcessFile(ctx context.Context, file *types.RecordFile) error {
	if err := c.OnStart(ctx, file); err != nil {
		return errors.WithStack(err)
	}
	var cause error
	for i := range file.Items {
		if err := ctx.Err(); err != nil {
			cause = errors.WithStack(err)
			break
		}
		if err := c.OnItem(ctx, &file.Items[i]); err != nil {
			cause = err
			break
		}
	}
	return errors.WithStack(c.OnEnd(ctx, file, cause))
}

// Process imports files in order and stops at the first file that fails.
func (c *Coordinator) Process(ctx context.Context, files []*types.RecordFile) error {
	for _, file := range files {
		ctx := logger.WithContext(ctx,
			slogx.String(logger.RecordFileKey, file.Name),
			slogx.Int64(logger.ConsensusStartKey, file.ConsensusStart),
			slogx.Int64(logger.ConsensusEndKey, file.ConsensusEnd),
		)
		if err := c.ProcessFile(ctx, file); err != nil {
			return errors.Wrapf(err, "failed to import record file %d", file.Index)
		}
	}
	return nil
}

func (c *Coordinator) CurrentRecordFile(ctx context.Context) (types.RecordFileHeader, error) {
	last, err := c.lastCommitted(ctx)
	if err != nil {
		return types.RecordFileHeader{}, errors.WithStack(err)
	}
	if last == nil {
		return types.RecordFileHeader{}, errors.WithStack(errs.NotFound)
	}
	return last.Header(), nil
}

// lastCommitted returns nil when nothing has been committed yet.
func (c *Coordinator) lastCommitted(ctx context.Context) (*domain.RecordFile, error) {
	c.mu.RLock()
	last := c.last
	c.mu.RUnlock()
	if last != nil {
		return last, nil
	}

	last, err := c.dg.GetLatestRecordFile(ctx)
	if errors.Is(err, errs.NotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.WithStack(err)
	}
	c.mu.Lock()
	c.last = last
	c.mu.Unlock()
	c.metrics.consensusEnd.Set(float64(last.ConsensusEnd))
	return last, nil
}

func (c *Coordinator) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	status := Status{
		State: c.State().String(),
		Stats: c.stats,
	}
	if c.last != nil {
		header := c.last.Header()
		status.LastFile = &header
	}
	return status
}

// Shutdown rolls back a file left open, closes the publishers' streams and runs the cleanup funcs.
func (c *Coordinator) Shutdown(ctx context.Context) error {
	if state := c.State(); state != StateIdle {
		logger.WarnContext(ctx, "Shutting down with an open record file", slog.String("state", state.String()))
		_ = c.abort(ctx, errors.Wrap(errs.Closed, "importer is shutting down"))
	}
	for _, p := range c.publishers {
		if closer, ok := p.(interface{ Close() }); ok {
			closer.Close()
		}
	}

	var cleanupErrs []error
	for _, cleanup := range c.cleanupFuncs {
		if err := cleanup(ctx); err != nil {
			cleanupErrs = append(cleanupErrs, err)
		}
	}
	return errors.WithStack(errors.Join(cleanupErrs...))
}

func (c *Coordinator) abort(ctx context.Context, cause error) error {
	fault, ok := cause.(*FileError)
	if !ok {
		fault = &FileError{Err: cause}
		if c.file != nil {
			fault.File = c.file.Name
		}
	}

	if c.tx != nil {
		if err := c.tx.Rollback(ctx); err != nil {
			logger.WarnContext(ctx, "failed to rollback transaction",
				slogx.Error(err),
				slogx.String("event", "rollback_record_file"),
			)
		}
	}
	for _, p := range c.publishers {
		p.OnError(ctx)
	}
	c.release()

	c.metrics.filesAborted.WithLabelValues(faultKind(fault)).Inc()
	c.mu.Lock()
	c.stats.FilesAborted++
	c.stats.LastError = fault.Error()
	c.mu.Unlock()

	logger.ErrorContext(ctx, "Aborted record file",
		slogx.String(logger.RecordFileKey, fault.File),
		slogx.Int64(logger.ConsensusTimestampKey, fault.ConsensusTimestamp),
		slogx.Stringer(logger.TransactionTypeKey, fault.TransactionType),
		slogx.Error(fault.Err),
	)
	return fault
}

// release returns the coordinator to Idle.
func (c *Coordinator) release() {
	c.pc.Clear()
	c.tx = nil
	c.lookup = nil
	c.file = nil
	c.fault = nil
	c.setState(StateIdle)
}
