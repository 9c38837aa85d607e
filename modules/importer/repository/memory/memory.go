// Package memory is a transactional in-memory ImporterDataGateway for dry runs and tests.
// Conflicts resolve the way the postgres repository resolves them.
package memory

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ledger-importer/common/errs"
	"github.com/gaze-network/ledger-importer/modules/importer/datagateway"
	"github.com/gaze-network/ledger-importer/modules/importer/domain"
	"github.com/gaze-network/ledger-importer/modules/importer/entityid"
	"github.com/gaze-network/ledger-importer/pkg/logger"
)

type conflict int

const (
	conflictIgnore conflict = iota
	conflictMerge
	conflictReplace
)

var conflicts = map[domain.Type]conflict{
	domain.TypeEntity:          conflictMerge,
	domain.TypeContract:        conflictMerge,
	domain.TypeSchedule:        conflictMerge,
	domain.TypeToken:           conflictMerge,
	domain.TypeTokenAccount:    conflictMerge,
	domain.TypeNft:             conflictMerge,
	domain.TypeCryptoAllowance: conflictReplace,
	domain.TypeTokenAllowance:  conflictReplace,
	domain.TypeNftAllowance:    conflictReplace,
}

type store struct {
	mu           sync.RWMutex
	rows         map[domain.Type]map[any]domain.Model
	keys         map[domain.Type][]any
	aliases      map[string]entityid.EntityId
	evmAddresses map[string]entityid.EntityId
	latest       *domain.RecordFile
	commits      int
}

type write struct {
	typ    domain.Type
	models []domain.Model
}

type Repository struct {
	store *store

	mu     sync.Mutex
	tx     bool
	staged []write
}

var (
	_ datagateway.ImporterDataGateway       = (*Repository)(nil)
	_ datagateway.ImporterDataGatewayWithTx = (*Repository)(nil)
)

func NewRepository() *Repository {
	return &Repository{
		store: &store{
			rows:         make(map[domain.Type]map[any]domain.Model),
			keys:         make(map[domain.Type][]any),
			aliases:      make(map[string]entityid.EntityId),
			evmAddresses: make(map[string]entityid.EntityId),
		},
	}
}

func (r *Repository) BeginImporterTx(_ context.Context) (datagateway.ImporterDataGatewayWithTx, error) {
	return &Repository{store: r.store, tx: true}, nil
}

func (r *Repository) Commit(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.tx {
		return nil
	}
	r.store.mu.Lock()
	for _, w := range r.staged {
		r.store.apply(w.typ, w.models)
	}
	r.store.commits++
	r.store.mu.Unlock()

	logger.DebugContext(ctx, "committed in-memory transaction", "writes", len(r.staged))
	r.tx = false
	r.staged = nil
	return nil
}

func (r *Repository) Rollback(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.tx {
		return nil
	}
	r.tx = false
	r.staged = nil
	logger.InfoContext(ctx, "rolled back transaction")
	return nil
}

// Upsert stages models until Commit. Outside a transaction they are applied at once.
func (r *Repository) Upsert(_ context.Context, t domain.Type, models []domain.Model) error {
	for _, m := range models {
		if m == nil {
			return errors.Wrapf(errs.Precondition, "nil model in %s upsert", t)
		}
		if m.Type() != t {
			return errors.Wrapf(errs.Precondition, "%s model in %s upsert", m.Type(), t)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.tx {
		r.staged = append(r.staged, write{typ: t, models: append([]domain.Model(nil), models...)})
		return nil
	}
	r.store.mu.Lock()
	r.store.apply(t, models)
	r.store.mu.Unlock()
	return nil
}

func (s *store) apply(t domain.Type, models []domain.Model) {
	rows, ok := s.rows[t]
	if !ok {
		rows = make(map[any]domain.Model)
		s.rows[t] = rows
	}
	for _, m := range models {
		key := m.Key()
		prev, exists := rows[key]
		switch {
		case !exists:
			s.keys[t] = append(s.keys[t], key)
			rows[key] = m
		case conflicts[t] == conflictMerge:
			rows[key] = domain.Merge(prev, m)
		case conflicts[t] == conflictReplace:
			rows[key] = m
		}

		switch row := rows[key].(type) {
		case *domain.Entity:
			// first binding wins, as in the alias table
			bindIfAbsent(s.aliases, row.Alias, row.Id)
			bindIfAbsent(s.evmAddresses, row.EvmAddress, row.Id)
		case *domain.RecordFile:
			if s.latest == nil || row.ConsensusEnd > s.latest.ConsensusEnd {
				s.latest = row
			}
		}
	}
}

func bindIfAbsent(bindings map[string]entityid.EntityId, value []byte, id entityid.EntityId) {
	if value == nil {
		return
	}
	if _, ok := bindings[string(value)]; !ok {
		bindings[string(value)] = id
	}
}
