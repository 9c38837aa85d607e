package batch

import (
	"context"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ledger-importer/common/errs"
	"github.com/gaze-network/ledger-importer/core/types"
	"github.com/gaze-network/ledger-importer/modules/importer/config"
	"github.com/gaze-network/ledger-importer/modules/importer/datagateway"
	"github.com/gaze-network/ledger-importer/modules/importer/domain"
	"github.com/gaze-network/ledger-importer/modules/importer/entityid"
	"github.com/gaze-network/ledger-importer/modules/importer/processor"
	"github.com/gaze-network/ledger-importer/modules/importer/publisher"
	"github.com/gaze-network/ledger-importer/modules/importer/repository/memory"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func account(num int64) types.AccountID {
	return types.AccountID{EntityRef: types.EntityRef{Num: num}}
}

func transfer(num, amount int64) types.AccountAmount {
	return types.AccountAmount{AccountID: account(num), Amount: amount}
}

func id(num int64) entityid.EntityId {
	return entityid.MustNew(0, 0, num)
}

func newItem(ts, payer int64, b types.Body, transfers ...types.AccountAmount) types.RecordItem {
	return types.RecordItem{
		ConsensusTimestamp: ts,
		Transaction: types.TransactionBody{
			TransactionID: types.TransactionID{AccountID: account(payer), ValidStartNs: ts - 1},
			NodeAccountID: account(3),
			Data:          b,
		},
		Record: types.TransactionRecord{
			ConsensusTimestamp: ts,
			Receipt:            types.TransactionReceipt{Status: types.ResponseCodeSuccess},
			TransferList:       transfers,
		},
	}
}

func createAccount(ts, num int64, alias []byte) types.RecordItem {
	item := newItem(ts, 2, &types.CryptoCreateBody{InitialBalance: 1000, Alias: alias},
		transfer(2, -1010), transfer(num, 1000), transfer(98, 10),
	)
	item.Record.Receipt.AccountID = domain.Ptr(account(num))
	return item
}

func submitMessage(ts, topic int64, message string) types.RecordItem {
	item := newItem(ts, 2, &types.ConsensusSubmitMessageBody{
		TopicID: types.EntityRef{Num: topic},
		Message: []byte(message),
	})
	item.Record.Receipt.TopicSequenceNumber = ts
	return item
}

var unknownAlias = types.AccountID{Alias: []byte("not-bound")}

func transferToUnknown(ts int64) types.RecordItem {
	return newItem(ts, 2, &types.CryptoTransferBody{},
		transfer(2, -10), types.AccountAmount{AccountID: unknownAlias, Amount: 10},
	)
}

type fileChain struct {
	index int64
	hash  string
}

func (c *fileChain) next(items ...types.RecordItem) *types.RecordFile {
	c.index++
	prev := c.hash
	c.hash = string(rune('a'+c.index)) + "-hash"
	file := &types.RecordFile{
		Name:         time.Unix(c.index, 0).UTC().Format(time.RFC3339) + ".rcd",
		Index:        c.index,
		Hash:         c.hash,
		PreviousHash: prev,
		Count:        int64(len(items)),
		Items:        items,
	}
	if len(items) > 0 {
		file.ConsensusStart = items[0].ConsensusTimestamp
		file.ConsensusEnd = items[len(items)-1].ConsensusTimestamp
	} else {
		file.ConsensusEnd = c.index
	}
	return file
}

// gateway wraps the memory repository to record and fail writes.
type gateway struct {
	*memory.Repository

	mu         sync.Mutex
	upserts    []domain.Type
	failUpsert string
	failCommit bool
}

func (g *gateway) BeginImporterTx(ctx context.Context) (datagateway.ImporterDataGatewayWithTx, error) {
	tx, err := g.Repository.BeginImporterTx(ctx)
	if err != nil {
		return nil, err
	}
	return &gatewayTx{ImporterDataGatewayWithTx: tx, g: g}, nil
}

type gatewayTx struct {
	datagateway.ImporterDataGatewayWithTx
	g *gateway
}

func (tx *gatewayTx) Upsert(ctx context.Context, t domain.Type, models []domain.Model) error {
	tx.g.mu.Lock()
	tx.g.upserts = append(tx.g.upserts, t)
	fail := tx.g.failUpsert != "" && tx.g.failUpsert == t.String()
	tx.g.mu.Unlock()
	if fail {
		return errors.Wrap(errs.Storage, "upsert failed")
	}
	return tx.ImporterDataGatewayWithTx.Upsert(ctx, t, models)
}

func (tx *gatewayTx) Commit(ctx context.Context) error {
	if tx.g.failCommit {
		return errors.Wrap(errs.Storage, "commit failed")
	}
	return tx.ImporterDataGatewayWithTx.Commit(ctx)
}

type harness struct {
	coordinator *Coordinator
	repo        *memory.Repository
	gateway     *gateway
	messages    *publisher.TypedPublisher[*domain.TopicMessage]
	chain       fileChain
}

func newHarness(t *testing.T, opts ...func(*config.Config)) *harness {
	t.Helper()
	cfg := config.Default()
	for _, opt := range opts {
		opt(&cfg)
	}
	repo := memory.NewRepository()
	g := &gateway{Repository: repo}
	messages := publisher.NewTopicMessagePublisher(true, 16)
	resolver := entityid.NewResolver(cfg.Shard, cfg.Realm, cfg.PartialDataPolicy, nil)
	return &harness{
		coordinator: New(&cfg, g, processor.New(&cfg, nil), resolver, WithPublishers(messages)),
		repo:        repo,
		gateway:     g,
		messages:    messages,
	}
}

func (h *harness) upserted() []domain.Type {
	h.gateway.mu.Lock()
	defer h.gateway.mu.Unlock()
	return slices.Clone(h.gateway.upserts)
}

func all[T domain.Model](repo *memory.Repository, typ domain.Type) []T {
	var out []T
	for _, m := range repo.All(typ) {
		out = append(out, m.(T))
	}
	return out
}

func TestCommitCreateThenTransfer(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	file := h.chain.next(
		createAccount(100, 1001, nil),
		newItem(200, 1001, &types.CryptoTransferBody{}, transfer(1001, -505), transfer(1002, 500), transfer(98, 5)),
	)
	require.NoError(t, h.coordinator.ProcessFile(ctx, file))
	assert.Equal(t, StateIdle, h.coordinator.State())

	created, ok := h.repo.Get(domain.TypeEntity, id(1001))
	require.True(t, ok)
	assert.Equal(t, int64(100), *created.(*domain.Entity).CreatedTimestamp)

	transfers := all[*domain.CryptoTransfer](h.repo, domain.TypeCryptoTransfer)
	require.Len(t, transfers, 6)
	assert.Equal(t, int64(100), transfers[0].ConsensusTimestamp)
	assert.Equal(t, int64(200), transfers[5].ConsensusTimestamp)
	assert.Len(t, h.repo.All(domain.TypeTransaction), 2)

	upserts := h.upserted()
	entityAt := slices.Index(upserts, domain.TypeEntity)
	transferAt := slices.Index(upserts, domain.TypeCryptoTransfer)
	require.GreaterOrEqual(t, entityAt, 0)
	require.GreaterOrEqual(t, transferAt, 0)
	assert.Less(t, entityAt, transferAt, "entities are written before transfers referencing them")
	assert.Equal(t, domain.TypeRecordFile, upserts[len(upserts)-1])

	header, err := h.coordinator.CurrentRecordFile(ctx)
	require.NoError(t, err)
	assert.Equal(t, file.Header(), header)
	assert.Equal(t, 1, h.repo.Commits())
}

func TestOrderPreservedAcrossItems(t *testing.T) {
	h := newHarness(t)
	items := make([]types.RecordItem, 0, 20)
	for ts := int64(1); ts <= 20; ts++ {
		items = append(items, submitMessage(ts*10, 500, "m"))
	}
	require.NoError(t, h.coordinator.ProcessFile(context.Background(), h.chain.next(items...)))

	messages := all[*domain.TopicMessage](h.repo, domain.TypeTopicMessage)
	require.Len(t, messages, 20)
	for i, m := range messages {
		assert.Equal(t, int64(i+1)*10, m.ConsensusTimestamp)
	}
}

func TestAbortedFileLeavesNothing(t *testing.T) {
	h := newHarness(t, func(c *config.Config) { c.PartialDataPolicy = config.PartialDataPolicyError })
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	cursor := h.messages.Subscribe()

	file := h.chain.next(
		submitMessage(100, 500, "hello"),
		createAccount(150, 1001, nil),
		transferToUnknown(200),
		submitMessage(300, 500, "never processed"),
	)
	err := h.coordinator.ProcessFile(ctx, file)
	require.Error(t, err)

	var fault *FileError
	require.True(t, errors.As(err, &fault))
	assert.Equal(t, file.Name, fault.File)
	assert.Equal(t, int64(200), fault.ConsensusTimestamp)
	assert.Equal(t, types.TransactionTypeCryptoTransfer, fault.TransactionType)
	assert.True(t, errors.Is(err, errs.DataIntegrity))
	assert.True(t, errors.Is(err, errs.UnresolvedReference))

	assert.Zero(t, h.repo.Len())
	assert.Zero(t, h.repo.Commits())
	assert.Equal(t, StateIdle, h.coordinator.State())
	_, err = h.coordinator.CurrentRecordFile(ctx)
	assert.True(t, errors.Is(err, errs.NotFound))

	// a later committed file is the first thing subscribers see
	h.chain.index, h.chain.hash = 0, ""
	require.NoError(t, h.coordinator.ProcessFile(ctx, h.chain.next(submitMessage(400, 500, "committed"))))
	m, err := cursor.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(400), m.ConsensusTimestamp)

	status := h.coordinator.Status()
	assert.Equal(t, int64(1), status.FilesAborted)
	assert.Equal(t, int64(1), status.FilesCommitted)
	assert.NotEmpty(t, status.LastError)
}

func TestPublishersSeeCommittedFiles(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	first, second := h.messages.Subscribe(), h.messages.Subscribe()

	require.NoError(t, h.coordinator.ProcessFile(ctx, h.chain.next(submitMessage(100, 500, "a"), submitMessage(200, 500, "b"))))
	require.NoError(t, h.coordinator.ProcessFile(ctx, h.chain.next(submitMessage(300, 500, "c"))))

	for _, cursor := range []*publisher.Cursor[*domain.TopicMessage]{first, second} {
		var got []string
		for range 3 {
			m, err := cursor.Next(ctx)
			require.NoError(t, err)
			got = append(got, string(m.Message))
		}
		assert.Equal(t, []string{"a", "b", "c"}, got)
	}
}

func TestStorageFailureAborts(t *testing.T) {
	t.Run("upsert", func(t *testing.T) {
		h := newHarness(t)
		h.gateway.failUpsert = domain.TypeCryptoTransfer.String()
		cursor := h.messages.Subscribe()

		err := h.coordinator.ProcessFile(context.Background(), h.chain.next(submitMessage(50, 500, "x"), createAccount(100, 1001, nil)))
		require.Error(t, err)
		assert.True(t, errors.Is(err, errs.Storage))
		assert.Zero(t, h.repo.Len())
		assert.Equal(t, StateIdle, h.coordinator.State())

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		_, err = cursor.Next(ctx)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("commit", func(t *testing.T) {
		h := newHarness(t)
		h.gateway.failCommit = true
		cursor := h.messages.Subscribe()

		err := h.coordinator.ProcessFile(context.Background(), h.chain.next(submitMessage(50, 500, "x")))
		require.Error(t, err)
		assert.True(t, errors.Is(err, errs.Storage))
		assert.Zero(t, h.repo.Len())

		// the queue of the failed file is dropped
		h.gateway.failCommit = false
		require.NoError(t, h.coordinator.ProcessFile(context.Background(), h.chain.next(submitMessage(60, 500, "y"))))
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		m, err := cursor.Next(ctx)
		require.NoError(t, err)
		assert.Equal(t, "y", string(m.Message))
	})
}

func TestRowsCountedOnCommit(t *testing.T) {
	h := newHarness(t)
	rows := h.coordinator.metrics.rowsFlushed.WithLabelValues(domain.TypeTopicMessage.String())

	h.gateway.failCommit = true
	require.Error(t, h.coordinator.ProcessFile(context.Background(), h.chain.next(submitMessage(50, 500, "x"))))
	assert.Zero(t, testutil.ToFloat64(rows))

	h.gateway.failCommit = false
	require.NoError(t, h.coordinator.ProcessFile(context.Background(), h.chain.next(submitMessage(60, 500, "y"), submitMessage(70, 500, "z"))))
	assert.Equal(t, float64(2), testutil.ToFloat64(rows))
}

func TestAliasAcrossFiles(t *testing.T) {
	alias := append([]byte{0x12, 0x20}, make([]byte, 32)...)
	alias[2] = 0x07

	h := newHarness(t, func(c *config.Config) { c.PartialDataPolicy = config.PartialDataPolicyError })
	ctx := context.Background()
	require.NoError(t, h.coordinator.ProcessFile(ctx, h.chain.next(createAccount(100, 1001, alias))))
	assert.Equal(t, 1, h.coordinator.resolver.Table().Len())

	require.NoError(t, h.coordinator.ProcessFile(ctx, h.chain.next(
		newItem(200, 2, &types.CryptoTransferBody{}, transfer(2, -50), types.AccountAmount{AccountID: types.AccountID{Alias: alias}, Amount: 50}),
	)))
	transfers := all[*domain.CryptoTransfer](h.repo, domain.TypeCryptoTransfer)
	assert.Equal(t, id(1001), transfers[len(transfers)-1].EntityId)
}

func TestPartialDataPolicyPerFile(t *testing.T) {
	t.Run("DEFAULT commits an absent reference", func(t *testing.T) {
		h := newHarness(t)
		require.NoError(t, h.coordinator.ProcessFile(context.Background(), h.chain.next(transferToUnknown(100))))
		transfers := all[*domain.CryptoTransfer](h.repo, domain.TypeCryptoTransfer)
		require.Len(t, transfers, 2)
		assert.True(t, transfers[1].EntityId.IsEmpty())
	})

	t.Run("SKIP commits without the record", func(t *testing.T) {
		h := newHarness(t, func(c *config.Config) { c.PartialDataPolicy = config.PartialDataPolicySkip })
		require.NoError(t, h.coordinator.ProcessFile(context.Background(), h.chain.next(transferToUnknown(100))))
		assert.Len(t, h.repo.All(domain.TypeCryptoTransfer), 1)
		assert.Len(t, h.repo.All(domain.TypeTransaction), 1)
	})

	t.Run("ERROR aborts the file", func(t *testing.T) {
		h := newHarness(t, func(c *config.Config) { c.PartialDataPolicy = config.PartialDataPolicyError })
		err := h.coordinator.ProcessFile(context.Background(), h.chain.next(transferToUnknown(100)))
		assert.True(t, errors.Is(err, errs.DataIntegrity))
		assert.Zero(t, h.repo.Len())
	})
}

func TestCryptoTransferAmountsDisabled(t *testing.T) {
	h := newHarness(t, func(c *config.Config) { c.Persist.CryptoTransferAmounts = false })
	file := h.chain.next(newItem(100, 2, &types.CryptoTransferBody{Transfers: []types.AccountAmount{transfer(2, -5), transfer(1002, 5)}},
		transfer(2, -15), transfer(1002, 5), transfer(98, 10),
	))
	require.NoError(t, h.coordinator.ProcessFile(context.Background(), file))
	assert.Empty(t, h.repo.All(domain.TypeCryptoTransfer))
	assert.Len(t, h.repo.All(domain.TypeTransaction), 1)
}

func TestParallelFlush(t *testing.T) {
	h := newHarness(t, func(c *config.Config) { c.FlushConcurrency = 4 })
	require.NoError(t, h.coordinator.ProcessFile(context.Background(), h.chain.next(
		createAccount(100, 1001, nil),
		submitMessage(200, 500, "m"),
	)))
	assert.Len(t, h.repo.All(domain.TypeTopicMessage), 1)
	assert.Len(t, h.repo.All(domain.TypeCryptoTransfer), 3)

	upserts := h.upserted()
	assert.Less(t, slices.Index(upserts, domain.TypeEntity), slices.Index(upserts, domain.TypeCryptoTransfer))
}

func TestHashChainMismatch(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.coordinator.ProcessFile(ctx, h.chain.next(submitMessage(100, 500, "a"))))

	file := h.chain.next(submitMessage(200, 500, "b"))
	file.PreviousHash = "forked"
	err := h.coordinator.ProcessFile(ctx, file)
	assert.True(t, errors.Is(err, errs.DataIntegrity))
	assert.Equal(t, StateIdle, h.coordinator.State())
	assert.Len(t, h.repo.All(domain.TypeTopicMessage), 1)
}

func TestInvalidTransitions(t *testing.T) {
	h := newHarness(t, func(c *config.Config) { c.PartialDataPolicy = config.PartialDataPolicyError })
	ctx := context.Background()
	file := h.chain.next(transferToUnknown(100), submitMessage(200, 500, "m"))

	item := file.Items[0]
	assert.True(t, errors.Is(h.coordinator.OnItem(ctx, &item), errs.Precondition), "item before start")
	assert.True(t, errors.Is(h.coordinator.OnEnd(ctx, file, nil), errs.Precondition), "end before start")
	assert.True(t, errors.Is(h.coordinator.OnStart(ctx, nil), errs.Precondition), "nil file")

	require.NoError(t, h.coordinator.OnStart(ctx, file))
	assert.Equal(t, StateFileOpen, h.coordinator.State())
	assert.True(t, errors.Is(h.coordinator.OnStart(ctx, file), errs.Precondition), "start twice")

	require.Error(t, h.coordinator.OnItem(ctx, &file.Items[0]))
	assert.Equal(t, StateAborted, h.coordinator.State())
	assert.True(t, errors.Is(h.coordinator.OnItem(ctx, &file.Items[1]), errs.Precondition), "item after abort")

	err := h.coordinator.OnEnd(ctx, file, nil)
	assert.True(t, errors.Is(err, errs.DataIntegrity))
	assert.Equal(t, StateIdle, h.coordinator.State())
	assert.Zero(t, h.repo.Len())
}

func TestOnEndWithCause(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	file := h.chain.next(submitMessage(100, 500, "m"))

	require.NoError(t, h.coordinator.OnStart(ctx, file))
	require.NoError(t, h.coordinator.OnItem(ctx, &file.Items[0]))
	assert.Equal(t, StateProcessing, h.coordinator.State())

	err := h.coordinator.OnEnd(ctx, file, errors.Wrap(errs.DataIntegrity, "decoder failed"))
	var fault *FileError
	require.True(t, errors.As(err, &fault))
	assert.Equal(t, file.Name, fault.File)
	assert.Zero(t, h.repo.Len())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "flushing", StateFlushing.String())
	assert.Equal(t, "state_9", State(9).String())
}

func TestShutdownRunsCleanup(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	var cleaned []string
	WithCleanupFuncs(
		func(context.Context) error { cleaned = append(cleaned, "pool"); return nil },
		func(context.Context) error { return errors.New("sink close failed") },
	)(h.coordinator)

	file := h.chain.next(submitMessage(100, 500, "m"))
	require.NoError(t, h.coordinator.OnStart(ctx, file))

	err := h.coordinator.Shutdown(ctx)
	assert.ErrorContains(t, err, "sink close failed")
	assert.Equal(t, []string{"pool"}, cleaned)
	assert.Equal(t, StateIdle, h.coordinator.State())
	assert.Zero(t, h.repo.Len())

	_, err = h.messages.Subscribe().Next(ctx)
	assert.True(t, errors.Is(err, errs.Closed))
}
