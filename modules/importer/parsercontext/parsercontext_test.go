package parsercontext

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ledger-importer/common/errs"
	"github.com/gaze-network/ledger-importer/modules/importer/domain"
	"github.com/gaze-network/ledger-importer/modules/importer/entityid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func account(num int64) entityid.EntityId {
	return entityid.MustNew(0, 0, num)
}

func TestAddRejectsNil(t *testing.T) {
	c := New()

	err := c.Add(nil)
	assert.True(t, errors.Is(err, errs.Precondition))

	var entity *domain.Entity
	err = c.Add(entity)
	assert.True(t, errors.Is(err, errs.Precondition), "typed nil")

	err = c.AddAll(&domain.Prng{ConsensusTimestamp: 1}, nil)
	assert.True(t, errors.Is(err, errs.Precondition))

	err = c.AddAll(nil...)
	assert.True(t, errors.Is(err, errs.Precondition))

	_, err = c.Merge(nil)
	assert.True(t, errors.Is(err, errs.Precondition))
}

func TestAddReplacesInPlace(t *testing.T) {
	c := New()
	require.NoError(t, c.AddAll(
		&domain.Entity{Id: account(1), Memo: domain.Ptr("a")},
		&domain.Entity{Id: account(2)},
		&domain.Entity{Id: account(3)},
	))
	require.NoError(t, c.Add(&domain.Entity{Id: account(1), Memo: domain.Ptr("b")}))

	assert.Equal(t, 3, c.Len())
	all := c.GetAll(domain.TypeEntity)
	require.Len(t, all, 3)
	assert.Equal(t, account(1), all[0].(*domain.Entity).Id)
	assert.Equal(t, "b", *all[0].(*domain.Entity).Memo)

	got, ok := c.Get(domain.TypeEntity, account(2))
	require.True(t, ok)
	assert.Equal(t, account(2), got.(*domain.Entity).Id)

	_, ok = c.Get(domain.TypeEntity, account(4))
	assert.False(t, ok)
	_, ok = c.Get(domain.TypeToken, account(1))
	assert.False(t, ok)
}

func TestMergeFoldsInArrivalOrder(t *testing.T) {
	c := New()
	id := account(1001)
	mutations := []*domain.Entity{
		{Id: id, CreatedTimestamp: domain.Ptr(int64(10)), BalanceDelta: 1000, TimestampLower: 10},
		{Id: id, BalanceDelta: -500},
		{Id: id, Memo: domain.Ptr("memo"), TimestampLower: 30},
	}
	var expected domain.Model
	for _, m := range mutations {
		expected = domain.Merge(expected, m)
		_, err := c.Merge(m)
		require.NoError(t, err)
	}

	got, ok := c.Get(domain.TypeEntity, id)
	require.True(t, ok)
	assert.Equal(t, expected, got)
	assert.Equal(t, int64(500), got.(*domain.Entity).BalanceDelta)
	assert.Equal(t, 1, c.Len())
}

func TestForEachFollowsDomainOrder(t *testing.T) {
	c := New()
	payer := account(2)
	require.NoError(t, c.AddAll(
		&domain.CryptoTransfer{ConsensusTimestamp: 1, EntityId: payer, Amount: -10},
		&domain.Transaction{ConsensusTimestamp: 1, PayerAccountId: payer},
		&domain.Entity{Id: payer},
		&domain.RecordFile{ConsensusEnd: 1},
		&domain.CryptoTransfer{ConsensusTimestamp: 1, EntityId: account(3), Amount: 10},
	))

	var visited []domain.Type
	var transfers []domain.Model
	err := c.ForEach(func(t domain.Type, models []domain.Model) error {
		visited = append(visited, t)
		if t == domain.TypeCryptoTransfer {
			transfers = models
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []domain.Type{domain.TypeEntity, domain.TypeTransaction, domain.TypeCryptoTransfer, domain.TypeRecordFile}, visited)
	require.Len(t, transfers, 2)
	assert.Equal(t, int64(-10), transfers[0].(*domain.CryptoTransfer).Amount)

	boom := errors.New("boom")
	calls := 0
	err = c.ForEach(func(domain.Type, []domain.Model) error {
		calls++
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestRemoveAndClear(t *testing.T) {
	c := New()
	require.NoError(t, c.AddAll(
		&domain.Entity{Id: account(1), Alias: []byte("alias")},
		&domain.Prng{ConsensusTimestamp: 1},
		&domain.Prng{ConsensusTimestamp: 2},
	))
	c.Remove(domain.TypePrng)
	assert.Equal(t, 1, c.Len())
	assert.Empty(t, c.GetAll(domain.TypePrng))
	assert.Equal(t, []domain.Type{domain.TypeEntity}, c.Types())

	c.Clear()
	assert.True(t, c.IsEmpty())
	assert.Empty(t, c.Types())
	assert.Empty(t, c.Bindings())
	_, ok := c.LookupAlias(entityid.AliasKindAlias, []byte("alias"))
	assert.False(t, ok)
}

func TestLookupAlias(t *testing.T) {
	c := New()
	evm := make([]byte, 20)
	evm[19] = 0xaa

	require.NoError(t, c.Add(&domain.Entity{Id: account(1001), Alias: []byte("first-alias"), EvmAddress: evm}))
	// a binding is never overwritten
	require.NoError(t, c.Add(&domain.Entity{Id: account(1002), Alias: []byte("first-alias")}))
	// entities without id don't bind
	require.NoError(t, c.Add(&domain.Entity{Id: entityid.EmptyId, Alias: []byte("orphan")}))

	id, ok := c.LookupAlias(entityid.AliasKindAlias, []byte("first-alias"))
	require.True(t, ok)
	assert.Equal(t, account(1001), id)

	id, ok = c.LookupAlias(entityid.AliasKindEvmAddress, evm)
	require.True(t, ok)
	assert.Equal(t, account(1001), id)

	_, ok = c.LookupAlias(entityid.AliasKindAlias, []byte("orphan"))
	assert.False(t, ok)

	assert.Equal(t, []AliasBinding{
		{Kind: entityid.AliasKindAlias, Value: []byte("first-alias"), Id: account(1001)},
		{Kind: entityid.AliasKindEvmAddress, Value: evm, Id: account(1001)},
	}, c.Bindings())
}

func TestSnapshotIsDetached(t *testing.T) {
	c := New()
	require.NoError(t, c.AddAll(
		&domain.TopicMessage{ConsensusTimestamp: 1, SequenceNumber: 1},
		&domain.TopicMessage{ConsensusTimestamp: 2, SequenceNumber: 2},
	))
	snapshot := c.Snapshot()
	c.Clear()

	assert.Equal(t, 2, snapshot.Len())
	assert.Equal(t, []domain.Type{domain.TypeTopicMessage}, snapshot.Types())
	messages := snapshot.Get(domain.TypeTopicMessage)
	require.Len(t, messages, 2)
	assert.Equal(t, int64(1), messages[0].(*domain.TopicMessage).SequenceNumber)
	assert.Empty(t, snapshot.Get(domain.TypeContractLog))
}
