package entityid

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ledger-importer/common/errs"
	"github.com/gaze-network/ledger-importer/core/types"
	"github.com/gaze-network/ledger-importer/modules/importer/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pendingMap map[string]EntityId

func (p pendingMap) LookupAlias(kind AliasKind, value []byte) (EntityId, bool) {
	id, ok := p[kind.String()+string(value)]
	return id, ok
}

type storeMap struct {
	aliases map[string]EntityId
	evm     map[string]EntityId
	calls   atomic.Int32
	err     error
}

func (s *storeMap) GetEntityIdByAlias(_ context.Context, alias []byte) (EntityId, error) {
	s.calls.Add(1)
	if s.err != nil {
		return EmptyId, s.err
	}
	if id, ok := s.aliases[string(alias)]; ok {
		return id, nil
	}
	return EmptyId, errors.WithStack(errs.NotFound)
}

func (s *storeMap) GetEntityIdByEvmAddress(_ context.Context, addr []byte) (EntityId, error) {
	s.calls.Add(1)
	if s.err != nil {
		return EmptyId, s.err
	}
	if id, ok := s.evm[string(addr)]; ok {
		return id, nil
	}
	return EmptyId, errors.WithStack(errs.NotFound)
}

func TestLookupNumeric(t *testing.T) {
	lookup := NewResolver(0, 0, config.PartialDataPolicyError, nil).Bind(nil, nil)
	id, err := lookup.Account(context.Background(), types.AccountID{EntityRef: types.EntityRef{Num: 1001}})
	require.NoError(t, err)
	assert.Equal(t, MustNew(0, 0, 1001), id)

	id, err = lookup.Contract(context.Background(), types.ContractID{EntityRef: types.EntityRef{Realm: 1, Num: 5}})
	require.NoError(t, err)
	assert.Equal(t, MustNew(0, 1, 5), id)
}

func TestLookupOrder(t *testing.T) {
	ctx := context.Background()
	alias := []byte("alias-a")
	store := &storeMap{aliases: map[string]EntityId{string(alias): MustNew(0, 0, 300)}}
	resolver := NewResolver(0, 0, config.PartialDataPolicyDefault, nil)

	t.Run("PendingFirst", func(t *testing.T) {
		pending := pendingMap{AliasKindAlias.String() + string(alias): MustNew(0, 0, 200)}
		id, err := resolver.Bind(pending, store).Account(ctx, types.AccountID{Alias: alias})
		require.NoError(t, err)
		assert.Equal(t, MustNew(0, 0, 200), id)
		assert.Zero(t, store.calls.Load())
	})
	t.Run("StoreHitIsCached", func(t *testing.T) {
		lookup := resolver.Bind(pendingMap{}, store)
		id, err := lookup.Account(ctx, types.AccountID{Alias: alias})
		require.NoError(t, err)
		assert.Equal(t, MustNew(0, 0, 300), id)
		assert.Equal(t, int32(1), store.calls.Load())

		id, err = lookup.Account(ctx, types.AccountID{Alias: alias})
		require.NoError(t, err)
		assert.Equal(t, MustNew(0, 0, 300), id)
		assert.Equal(t, int32(1), store.calls.Load())

		cached, ok := resolver.Table().Load(AliasKindAlias, alias)
		assert.True(t, ok)
		assert.Equal(t, MustNew(0, 0, 300), cached)
	})
	t.Run("StoreFailureIsStorageFault", func(t *testing.T) {
		failing := &storeMap{err: errors.New("connection reset")}
		_, err := NewResolver(0, 0, config.PartialDataPolicyDefault, nil).Bind(nil, failing).Alias(ctx, []byte("other"))
		assert.True(t, errors.Is(err, errs.Storage))
	})
}

func TestLookupPartialDataPolicy(t *testing.T) {
	ctx := context.Background()
	unknown := types.AccountID{Alias: []byte("missing-alias")}

	t.Run("DEFAULT", func(t *testing.T) {
		id, err := NewResolver(0, 0, config.PartialDataPolicyDefault, nil).Bind(nil, &storeMap{}).Account(ctx, unknown)
		require.NoError(t, err)
		assert.True(t, id.IsEmpty())
	})
	t.Run("SKIP", func(t *testing.T) {
		id, err := NewResolver(0, 0, config.PartialDataPolicySkip, nil).Bind(nil, &storeMap{}).Account(ctx, unknown)
		assert.True(t, errors.Is(err, ErrSkip))
		assert.False(t, errors.Is(err, errs.DataIntegrity))
		assert.True(t, id.IsEmpty())
	})
	t.Run("ERROR", func(t *testing.T) {
		_, err := NewResolver(0, 0, config.PartialDataPolicyError, nil).Bind(nil, &storeMap{}).Account(ctx, unknown)
		assert.True(t, errors.Is(err, errs.UnresolvedReference))
		assert.True(t, errors.Is(err, errs.DataIntegrity))
		assert.False(t, errors.Is(err, ErrSkip), "an ERROR fault must not read as a skip")
	})
	t.Run("KindIsNotSkip", func(t *testing.T) {
		assert.False(t, errors.Is(errs.UnresolvedReference, ErrSkip))
		assert.False(t, errors.Is(errors.Wrap(errs.UnresolvedReference, "wrapped"), ErrSkip))
		assert.True(t, errors.Is(errors.Wrap(ErrSkip, "wrapped"), ErrSkip))
	})
}

func TestLookupEvmAddress(t *testing.T) {
	ctx := context.Background()

	t.Run("LongZero", func(t *testing.T) {
		lookup := NewResolver(0, 0, config.PartialDataPolicyError, nil).Bind(nil, nil)
		id, err := lookup.EvmAddress(ctx, MustNew(0, 0, 1234).ToEvmAddress())
		require.NoError(t, err)
		assert.Equal(t, MustNew(0, 0, 1234), id)
	})
	t.Run("LongZeroOtherRealm", func(t *testing.T) {
		lookup := NewResolver(0, 0, config.PartialDataPolicyError, nil).Bind(nil, nil)
		_, err := lookup.EvmAddress(ctx, MustNew(0, 7, 1234).ToEvmAddress())
		assert.True(t, errors.Is(err, errs.UnresolvedReference))

		lookup = NewResolver(0, 0, config.PartialDataPolicyDefault, nil).Bind(nil, nil)
		id, err := lookup.EvmAddress(ctx, MustNew(0, 7, 1234).ToEvmAddress())
		require.NoError(t, err)
		assert.True(t, id.IsEmpty())
	})
	t.Run("Create2", func(t *testing.T) {
		addr := []byte{0xde, 0xad, 0xbe, 0xef, 0xde, 0xad, 0xbe, 0xef, 0xde, 0xad, 0xbe, 0xef, 0, 0, 0, 0, 0, 0, 0, 1}
		store := &storeMap{evm: map[string]EntityId{string(addr): MustNew(0, 0, 777)}}
		id, err := NewResolver(0, 0, config.PartialDataPolicyError, nil).Bind(nil, store).Contract(ctx, types.ContractID{EvmAddress: addr})
		require.NoError(t, err)
		assert.Equal(t, MustNew(0, 0, 777), id)
	})
	t.Run("AliasAsEvmAddress", func(t *testing.T) {
		addr := []byte{0xab, 0xad, 0xbe, 0xef, 0xde, 0xad, 0xbe, 0xef, 0xde, 0xad, 0xbe, 0xef, 0, 0, 0, 0, 0, 0, 0, 2}
		pending := pendingMap{AliasKindEvmAddress.String() + string(addr): MustNew(0, 0, 55)}
		id, err := NewResolver(0, 0, config.PartialDataPolicyError, nil).Bind(pending, nil).Account(ctx, types.AccountID{Alias: addr})
		require.NoError(t, err)
		assert.Equal(t, MustNew(0, 0, 55), id)
	})
}
