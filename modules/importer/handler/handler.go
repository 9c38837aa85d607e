// Package handler derives domain mutations from decoded transactions, one Handler per transaction type.
package handler

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ledger-importer/common/errs"
	"github.com/gaze-network/ledger-importer/core/types"
	"github.com/gaze-network/ledger-importer/modules/importer/config"
	"github.com/gaze-network/ledger-importer/modules/importer/domain"
	"github.com/gaze-network/ledger-importer/modules/importer/entityid"
)

// Handler extracts the mutations of one transaction type.
type Handler interface {
	Type() types.TransactionType

	// EntityId returns the main entity affected by the transaction. It is only called for successful transactions.
	EntityId(ctx context.Context, env *Env) (entityid.EntityId, error)

	// Mutations returns the mutations derived from the transaction body and record. Handlers may
	// fill transaction specific columns of tx. An error marked errs.DataIntegrity aborts the record file,
	// entityid.ErrSkip drops the returned mutations. Handlers omit records depending on an optional
	// reference themselves and return ErrSkip only when the main record can't be built.
	Mutations(ctx context.Context, env *Env, tx *domain.Transaction) ([]domain.Model, error)

	Traits() Traits
}

// Traits declares how generic processing treats a transaction type.
type Traits struct {
	// SkipEntityTransactions excludes the transaction from entity transaction links.
	SkipEntityTransactions bool
}

// ItemizedTransferer is implemented by handlers whose body carries transfers as requested by the
// payer, before fees.
type ItemizedTransferer interface {
	ItemizedTransfers(env *Env) []types.AccountAmount
}

// ContextReader is a read-only view of the mutations accumulated for the current record file.
type ContextReader interface {
	Get(t domain.Type, key any) (domain.Model, bool)
}

// Env is everything a handler may read while processing one record item.
type Env struct {
	Item    *types.RecordItem
	Lookup  *entityid.Lookup
	Config  *config.Config
	Context ContextReader

	// Payer is the resolved payer account of the transaction.
	Payer entityid.EntityId
}

func (e *Env) Timestamp() int64 {
	return e.Item.ConsensusTimestamp
}

func (e *Env) Successful() bool {
	return e.Item.Successful()
}

func (e *Env) Receipt() *types.TransactionReceipt {
	return &e.Item.Record.Receipt
}

func (e *Env) Persist() *config.PersistConfig {
	return &e.Config.Persist
}

// pending returns the mutation accumulated for (t, key) earlier in the record file.
func (e *Env) pending(t domain.Type, key any) (domain.Model, bool) {
	if e.Context == nil {
		return nil, false
	}
	return e.Context.Get(t, key)
}

func (e *Env) Account(ctx context.Context, account types.AccountID) (entityid.EntityId, error) {
	id, err := e.Lookup.Account(ctx, account)
	return id, errors.WithStack(err)
}

// OptionalAccount resolves an optional account reference. Nil and unresolved references yield nil,
// under SKIP only the field is omitted and the record carrying it is kept.
func (e *Env) OptionalAccount(ctx context.Context, account *types.AccountID) (*entityid.EntityId, error) {
	if account == nil {
		return nil, nil
	}
	id, err := e.Lookup.Account(ctx, *account)
	if IsSkip(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if id.IsEmpty() && account.HasAlias() {
		return nil, nil
	}
	return &id, nil
}

func (e *Env) Contract(ctx context.Context, contract types.ContractID) (entityid.EntityId, error) {
	id, err := e.Lookup.Contract(ctx, contract)
	return id, errors.WithStack(err)
}

func (e *Env) Entity(ref types.EntityRef) (entityid.EntityId, error) {
	id, err := e.Lookup.Entity(ref)
	return id, errors.WithStack(err)
}

func (e *Env) OptionalEntity(ref *types.EntityRef) (*entityid.EntityId, error) {
	if ref == nil {
		return nil, nil
	}
	id, err := e.Lookup.Entity(*ref)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &id, nil
}

// base provides the defaults of a handler.
type base struct {
	transactionType types.TransactionType
}

func (b base) Type() types.TransactionType {
	return b.transactionType
}

func (b base) EntityId(context.Context, *Env) (entityid.EntityId, error) {
	return entityid.EmptyId, nil
}

func (b base) Mutations(context.Context, *Env, *domain.Transaction) ([]domain.Model, error) {
	return nil, nil
}

func (b base) Traits() Traits {
	return Traits{}
}

// body asserts the body of the record item to the type expected by a handler.
func body[T types.Body](env *Env) (T, error) {
	b, ok := env.Item.Transaction.Data.(T)
	if !ok {
		var zero T
		return zero, errors.Wrapf(errs.DataIntegrity, "unexpected body %T for %s", env.Item.Transaction.Data, env.Item.TransactionType())
	}
	return b, nil
}

// updatedEntity returns the skeleton of an entity update effective at the consensus timestamp.
func updatedEntity(env *Env, id entityid.EntityId) *domain.Entity {
	return &domain.Entity{
		Id:             id,
		TimestampLower: env.Timestamp(),
	}
}

// createdEntity returns the skeleton of an entity created at the consensus timestamp.
func createdEntity(env *Env, id entityid.EntityId, entityType domain.EntityType) *domain.Entity {
	return &domain.Entity{
		Id:               id,
		EntityType:       entityType,
		CreatedTimestamp: domain.Ptr(env.Timestamp()),
		Deleted:          domain.Ptr(false),
		TimestampLower:   env.Timestamp(),
	}
}
