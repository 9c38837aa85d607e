package entityid

import (
	"context"
	"encoding/hex"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ledger-importer/common/errs"
	"github.com/gaze-network/ledger-importer/core/types"
	"github.com/gaze-network/ledger-importer/modules/importer/config"
)

// ErrSkip is returned under the SKIP policy. The caller omits the record depending on the unresolved reference.
// It carries no error kind so that errors.Is never matches an UnresolvedReference fault raised under ERROR.
var ErrSkip = errors.New("unresolved reference, skip dependent record")

// PendingLookup resolves bindings created earlier in the record file being processed.
type PendingLookup interface {
	LookupAlias(kind AliasKind, value []byte) (EntityId, bool)
}

// Store resolves committed bindings. Implementations return errs.NotFound for unknown values.
type Store interface {
	GetEntityIdByAlias(ctx context.Context, alias []byte) (EntityId, error)
	GetEntityIdByEvmAddress(ctx context.Context, evmAddress []byte) (EntityId, error)
}

type Resolver struct {
	shard  int64
	realm  int64
	policy config.PartialDataPolicy
	table  *AliasTable
}

func NewResolver(shard, realm int64, policy config.PartialDataPolicy, table *AliasTable) *Resolver {
	if table == nil {
		table = NewAliasTable()
	}
	if !policy.IsValid() {
		policy = config.PartialDataPolicyDefault
	}
	return &Resolver{
		shard:  shard,
		realm:  realm,
		policy: policy.Normalize(),
		table:  table,
	}
}

func (r *Resolver) Table() *AliasTable {
	return r.table
}

func (r *Resolver) Policy() config.PartialDataPolicy {
	return r.policy
}

// Bind returns the lookup handle for one record file.
func (r *Resolver) Bind(pending PendingLookup, store Store) *Lookup {
	return &Lookup{
		resolver: r,
		pending:  pending,
		store:    store,
	}
}

// Lookup resolves references for one record file. Resolution order is the file's
// pending bindings, then the committed alias table, then the store.
type Lookup struct {
	resolver *Resolver
	pending  PendingLookup
	store    Store
}

func (l *Lookup) Policy() config.PartialDataPolicy {
	return l.resolver.policy
}

// Entity resolves a numeric reference.
func (l *Lookup) Entity(ref types.EntityRef) (EntityId, error) {
	return FromRef(ref)
}

// Account resolves an account referenced by number or alias.
func (l *Lookup) Account(ctx context.Context, account types.AccountID) (EntityId, error) {
	if !account.HasAlias() {
		return FromRef(account.EntityRef)
	}
	if IsEvmAddress(account.Alias) {
		return l.EvmAddress(ctx, account.Alias)
	}
	return l.Alias(ctx, account.Alias)
}

// Contract resolves a contract referenced by number or EVM address.
func (l *Lookup) Contract(ctx context.Context, contract types.ContractID) (EntityId, error) {
	if !contract.HasEvmAddress() {
		return FromRef(contract.EntityRef)
	}
	return l.EvmAddress(ctx, contract.EvmAddress)
}

// EvmAddress resolves a long-zero or create2 EVM address.
func (l *Lookup) EvmAddress(ctx context.Context, addr []byte) (EntityId, error) {
	if !IsEvmAddress(addr) {
		return l.unresolved(AliasKindEvmAddress, addr, errors.Wrapf(errs.InvalidArgument, "invalid evm address length %d", len(addr)))
	}
	if shard, realm, num, ok := DecodeLongZero(addr); ok {
		if shard != l.resolver.shard || realm != l.resolver.realm {
			return l.unresolved(AliasKindEvmAddress, addr, errors.Newf("evm address belongs to shard %d realm %d", shard, realm))
		}
		return New(shard, realm, num)
	}
	id, found, err := l.lookup(ctx, AliasKindEvmAddress, addr)
	if err != nil {
		return EmptyId, errors.WithStack(err)
	}
	if found {
		return id, nil
	}
	return l.unresolved(AliasKindEvmAddress, addr, nil)
}

// Alias resolves a key alias. ECDSA key aliases fall back to their derived EVM address.
func (l *Lookup) Alias(ctx context.Context, alias []byte) (EntityId, error) {
	if len(alias) == 0 {
		return l.unresolved(AliasKindAlias, alias, errors.Wrap(errs.InvalidArgument, "empty alias"))
	}
	id, found, err := l.lookup(ctx, AliasKindAlias, alias)
	if err != nil {
		return EmptyId, errors.WithStack(err)
	}
	if found {
		return id, nil
	}
	if evmAddress := EvmAddressFromAlias(alias); evmAddress != nil {
		id, found, err := l.lookup(ctx, AliasKindEvmAddress, evmAddress)
		if err != nil {
			return EmptyId, errors.WithStack(err)
		}
		if found {
			return id, nil
		}
	}
	return l.unresolved(AliasKindAlias, alias, nil)
}

func (l *Lookup) lookup(ctx context.Context, kind AliasKind, value []byte) (EntityId, bool, error) {
	if l.pending != nil {
		if id, ok := l.pending.LookupAlias(kind, value); ok {
			return id, true, nil
		}
	}
	if id, ok := l.resolver.table.Load(kind, value); ok {
		return id, true, nil
	}
	if l.store == nil {
		return EmptyId, false, nil
	}

	var (
		id  EntityId
		err error
	)
	switch kind {
	case AliasKindAlias:
		id, err = l.store.GetEntityIdByAlias(ctx, value)
	case AliasKindEvmAddress:
		id, err = l.store.GetEntityIdByEvmAddress(ctx, value)
	default:
		return EmptyId, false, errors.Wrapf(errs.Precondition, "unknown alias kind %d", kind)
	}
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return EmptyId, false, nil
		}
		return EmptyId, false, errors.Mark(errors.Wrapf(err, "can't lookup %s", kind), errs.Storage)
	}

	// committed in storage, safe to cache
	id, _ = l.resolver.table.PutIfAbsent(kind, value, id)
	return id, true, nil
}

func (l *Lookup) unresolved(kind AliasKind, value []byte, cause error) (EntityId, error) {
	switch l.resolver.policy {
	case config.PartialDataPolicySkip:
		return EmptyId, ErrSkip
	case config.PartialDataPolicyError:
		err := errors.Wrapf(errs.UnresolvedReference, "can't resolve %s 0x%s", kind, hex.EncodeToString(value))
		if cause != nil {
			err = errors.WithSecondaryError(err, cause)
		}
		return EmptyId, errors.Mark(err, errs.DataIntegrity)
	default:
		return EmptyId, nil
	}
}
