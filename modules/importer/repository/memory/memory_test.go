package memory

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ledger-importer/common/errs"
	"github.com/gaze-network/ledger-importer/modules/importer/domain"
	"github.com/gaze-network/ledger-importer/modules/importer/entityid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func id(num int64) entityid.EntityId {
	return entityid.MustNew(0, 0, num)
}

func TestCommitMakesWritesVisible(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()

	tx, err := repo.BeginImporterTx(ctx)
	require.NoError(t, err)
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	alias := []byte{0x12, 0x20, 0x01}
	evmAddress := []byte{0xaa, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19}
	require.NoError(t, tx.Upsert(ctx, domain.TypeEntity, []domain.Model{
		&domain.Entity{Id: id(1001), EntityType: domain.EntityTypeAccount, Alias: alias, EvmAddress: evmAddress},
	}))

	_, ok := repo.Get(domain.TypeEntity, id(1001))
	assert.False(t, ok, "staged writes must not be visible")
	_, err = repo.GetEntityIdByAlias(ctx, alias)
	assert.True(t, errors.Is(err, errs.NotFound))

	require.NoError(t, tx.Commit(ctx))
	assert.Equal(t, 1, repo.Commits())

	got, err := repo.GetEntityIdByAlias(ctx, alias)
	require.NoError(t, err)
	assert.Equal(t, id(1001), got)
	got, err = repo.GetEntityIdByEvmAddress(ctx, evmAddress)
	require.NoError(t, err)
	assert.Equal(t, id(1001), got)

	// rollback after commit is a no-op
	require.NoError(t, tx.Rollback(ctx))
	assert.Equal(t, 1, repo.Len())
}

func TestAliasBindingIsNotReassigned(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()
	alias := []byte{0x12, 0x20, 0x02}
	evmAddress := []byte{0xbb, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19}

	for _, num := range []int64{1001, 1002} {
		tx, err := repo.BeginImporterTx(ctx)
		require.NoError(t, err)
		require.NoError(t, tx.Upsert(ctx, domain.TypeEntity, []domain.Model{
			&domain.Entity{Id: id(num), EntityType: domain.EntityTypeAccount, Alias: alias, EvmAddress: evmAddress},
		}))
		require.NoError(t, tx.Commit(ctx))
	}

	got, err := repo.GetEntityIdByAlias(ctx, alias)
	require.NoError(t, err)
	assert.Equal(t, id(1001), got)
	got, err = repo.GetEntityIdByEvmAddress(ctx, evmAddress)
	require.NoError(t, err)
	assert.Equal(t, id(1001), got)
}

func TestRollbackDiscardsWrites(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()

	tx, err := repo.BeginImporterTx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.Upsert(ctx, domain.TypeTransaction, []domain.Model{&domain.Transaction{ConsensusTimestamp: 100}}))
	require.NoError(t, tx.Upsert(ctx, domain.TypeRecordFile, []domain.Model{&domain.RecordFile{ConsensusEnd: 100, Name: "a"}}))
	require.NoError(t, tx.Rollback(ctx))

	assert.Zero(t, repo.Len())
	assert.Zero(t, repo.Commits())
	_, err = repo.GetLatestRecordFile(ctx)
	assert.True(t, errors.Is(err, errs.NotFound))

	// commit after rollback has nothing to apply
	require.NoError(t, tx.Commit(ctx))
	assert.Zero(t, repo.Len())
}

func TestConflictResolution(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()

	upsert := func(typ domain.Type, models ...domain.Model) {
		tx, err := repo.BeginImporterTx(ctx)
		require.NoError(t, err)
		require.NoError(t, tx.Upsert(ctx, typ, models))
		require.NoError(t, tx.Commit(ctx))
	}

	t.Run("entities merge", func(t *testing.T) {
		upsert(domain.TypeEntity, &domain.Entity{Id: id(5), EntityType: domain.EntityTypeAccount, Memo: domain.Ptr("a"), BalanceDelta: 10, TimestampLower: 1})
		upsert(domain.TypeEntity, &domain.Entity{Id: id(5), BalanceDelta: -3, BalanceTimestamp: 2})

		m, ok := repo.Get(domain.TypeEntity, id(5))
		require.True(t, ok)
		entity := m.(*domain.Entity)
		assert.Equal(t, domain.EntityTypeAccount, entity.EntityType)
		assert.Equal(t, "a", *entity.Memo)
		assert.Equal(t, int64(7), entity.BalanceDelta)
		assert.Equal(t, int64(2), entity.BalanceTimestamp)
	})

	t.Run("line items are written once", func(t *testing.T) {
		upsert(domain.TypeCryptoTransfer, &domain.CryptoTransfer{ConsensusTimestamp: 1, EntityId: id(5), Amount: 10})
		upsert(domain.TypeCryptoTransfer, &domain.CryptoTransfer{ConsensusTimestamp: 1, EntityId: id(5), Amount: 99})

		rows := repo.All(domain.TypeCryptoTransfer)
		require.Len(t, rows, 1)
		assert.Equal(t, int64(10), rows[0].(*domain.CryptoTransfer).Amount)
	})

	t.Run("allowances are replaced", func(t *testing.T) {
		upsert(domain.TypeCryptoAllowance, &domain.CryptoAllowance{Owner: id(5), Spender: id(6), Amount: 10, TimestampLower: 1})
		upsert(domain.TypeCryptoAllowance, &domain.CryptoAllowance{Owner: id(5), Spender: id(6), Amount: 4, TimestampLower: 2})

		rows := repo.All(domain.TypeCryptoAllowance)
		require.Len(t, rows, 1)
		assert.Equal(t, int64(4), rows[0].(*domain.CryptoAllowance).Amount)
	})

	t.Run("latest record file", func(t *testing.T) {
		upsert(domain.TypeRecordFile, &domain.RecordFile{ConsensusEnd: 200, Name: "b"}, &domain.RecordFile{ConsensusEnd: 100, Name: "a"})

		file, err := repo.GetLatestRecordFile(ctx)
		require.NoError(t, err)
		assert.Equal(t, "b", file.Name)
	})
}

func TestUpsertRejectsMismatchedType(t *testing.T) {
	repo := NewRepository()
	err := repo.Upsert(context.Background(), domain.TypeEntity, []domain.Model{&domain.Token{}})
	assert.True(t, errors.Is(err, errs.Precondition))
}
