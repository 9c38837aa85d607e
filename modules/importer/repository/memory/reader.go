package memory

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ledger-importer/common/errs"
	"github.com/gaze-network/ledger-importer/modules/importer/domain"
	"github.com/gaze-network/ledger-importer/modules/importer/entityid"
)

// Reads see committed rows only.

func (r *Repository) GetEntityIdByAlias(_ context.Context, alias []byte) (entityid.EntityId, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	id, ok := r.store.aliases[string(alias)]
	if !ok {
		return entityid.EmptyId, errors.WithStack(errs.NotFound)
	}
	return id, nil
}

func (r *Repository) GetEntityIdByEvmAddress(_ context.Context, evmAddress []byte) (entityid.EntityId, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	id, ok := r.store.evmAddresses[string(evmAddress)]
	if !ok {
		return entityid.EmptyId, errors.WithStack(errs.NotFound)
	}
	return id, nil
}

func (r *Repository) GetLatestRecordFile(_ context.Context) (*domain.RecordFile, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if r.store.latest == nil {
		return nil, errors.WithStack(errs.NotFound)
	}
	file := *r.store.latest
	return &file, nil
}

// Get returns the committed row of type t with the given key.
func (r *Repository) Get(t domain.Type, key any) (domain.Model, bool) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	m, ok := r.store.rows[t][key]
	return m, ok
}

// All returns the committed rows of type t in first-write order.
func (r *Repository) All(t domain.Type) []domain.Model {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	keys := r.store.keys[t]
	out := make([]domain.Model, 0, len(keys))
	for _, key := range keys {
		out = append(out, r.store.rows[t][key])
	}
	return out
}

// Len returns the number of committed rows across every type.
func (r *Repository) Len() int {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	n := 0
	for _, rows := range r.store.rows {
		n += len(rows)
	}
	return n
}

// Commits returns how many transactions were committed.
func (r *Repository) Commits() int {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return r.store.commits
}
