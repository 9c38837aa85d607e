package handler

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ledger-importer/core/types"
	"github.com/gaze-network/ledger-importer/modules/importer/domain"
	"github.com/gaze-network/ledger-importer/modules/importer/entityid"
)

type cryptoCreateHandler struct{ base }

func (h *cryptoCreateHandler) EntityId(ctx context.Context, env *Env) (entityid.EntityId, error) {
	if env.Receipt().AccountID == nil {
		return entityid.EmptyId, nil
	}
	return env.Account(ctx, *env.Receipt().AccountID)
}

func (h *cryptoCreateHandler) Mutations(ctx context.Context, env *Env, tx *domain.Transaction) ([]domain.Model, error) {
	b, err := body[*types.CryptoCreateBody](env)
	if err != nil {
		return nil, err
	}
	tx.InitialBalance = b.InitialBalance
	if !env.Successful() || tx.EntityId == nil {
		return nil, nil
	}

	entity := createdEntity(env, *tx.EntityId, domain.EntityTypeAccount)
	entity.AdminKey = b.Key
	entity.Memo = domain.Ptr(b.Memo)
	entity.AutoRenewPeriod = b.AutoRenewPeriod
	entity.ReceiverSigRequired = domain.Ptr(b.ReceiverSigRequired)
	entity.MaxAutomaticTokenAssociations = domain.Ptr(b.MaxAutomaticTokenAssociations)
	entity.DeclineReward = domain.Ptr(b.DeclineReward)
	entity.EthereumNonce = domain.Ptr(int64(0))

	// alias from the record wins, the body alias is only set on the user submitted transaction
	entity.Alias = env.Item.Record.Alias
	if entity.Alias == nil {
		entity.Alias = b.Alias
	}
	entity.EvmAddress = env.Item.Record.EvmAddress
	if entity.EvmAddress == nil {
		entity.EvmAddress = entityid.EvmAddressFromAlias(entity.Alias)
	}
	if entityid.IsEvmAddress(entity.Alias) {
		// a 20 bytes alias is the evm address itself
		entity.EvmAddress = entity.Alias
		entity.Alias = nil
	}

	if entity.ProxyAccountId, err = env.OptionalAccount(ctx, b.ProxyAccountID); err != nil {
		return nil, errors.Wrap(err, "proxy account")
	}
	if err := setStaking(ctx, env, entity, b.StakedAccountID, b.StakedNodeID); err != nil {
		return nil, err
	}
	return []domain.Model{entity}, nil
}

func (h *cryptoCreateHandler) ItemizedTransfers(env *Env) []types.AccountAmount {
	b, err := body[*types.CryptoCreateBody](env)
	if err != nil || b.InitialBalance == 0 || env.Receipt().AccountID == nil {
		return nil
	}
	return []types.AccountAmount{
		{AccountID: env.Item.PayerAccountID(), Amount: -b.InitialBalance},
		{AccountID: *env.Receipt().AccountID, Amount: b.InitialBalance},
	}
}

type cryptoUpdateHandler struct{ base }

func (h *cryptoUpdateHandler) EntityId(ctx context.Context, env *Env) (entityid.EntityId, error) {
	b, err := body[*types.CryptoUpdateBody](env)
	if err != nil {
		return entityid.EmptyId, err
	}
	return env.Account(ctx, b.AccountID)
}

func (h *cryptoUpdateHandler) Mutations(ctx context.Context, env *Env, tx *domain.Transaction) ([]domain.Model, error) {
	b, err := body[*types.CryptoUpdateBody](env)
	if err != nil {
		return nil, err
	}
	if !env.Successful() || tx.EntityId == nil || tx.EntityId.IsEmpty() {
		return nil, nil
	}

	entity := updatedEntity(env, *tx.EntityId)
	entity.AdminKey = b.Key
	entity.Memo = b.Memo
	entity.AutoRenewPeriod = b.AutoRenewPeriod
	entity.ExpirationTimestamp = b.ExpirationTime
	entity.ReceiverSigRequired = b.ReceiverSigRequired
	entity.MaxAutomaticTokenAssociations = b.MaxAutomaticTokenAssociations
	entity.DeclineReward = b.DeclineReward
	if entity.ProxyAccountId, err = env.OptionalAccount(ctx, b.ProxyAccountID); err != nil {
		return nil, errors.Wrap(err, "proxy account")
	}
	if err := setStaking(ctx, env, entity, b.StakedAccountID, b.StakedNodeID); err != nil {
		return nil, err
	}
	return []domain.Model{entity}, nil
}

type cryptoDeleteHandler struct{ base }

func (h *cryptoDeleteHandler) EntityId(ctx context.Context, env *Env) (entityid.EntityId, error) {
	b, err := body[*types.CryptoDeleteBody](env)
	if err != nil {
		return entityid.EmptyId, err
	}
	return env.Account(ctx, b.DeleteAccountID)
}

func (h *cryptoDeleteHandler) Mutations(ctx context.Context, env *Env, tx *domain.Transaction) ([]domain.Model, error) {
	b, err := body[*types.CryptoDeleteBody](env)
	if err != nil {
		return nil, err
	}
	if !env.Successful() || tx.EntityId == nil || tx.EntityId.IsEmpty() {
		return nil, nil
	}

	entity := updatedEntity(env, *tx.EntityId)
	entity.Deleted = domain.Ptr(true)
	if entity.ObtainerId, err = env.OptionalAccount(ctx, &b.TransferAccountID); err != nil {
		return nil, errors.Wrap(err, "obtainer account")
	}
	return []domain.Model{entity}, nil
}

// cryptoTransferHandler has no mutations of its own, transfer lists are handled generically.
type cryptoTransferHandler struct{ base }

func (h *cryptoTransferHandler) ItemizedTransfers(env *Env) []types.AccountAmount {
	b, err := body[*types.CryptoTransferBody](env)
	if err != nil {
		return nil
	}
	return b.Transfers
}

type cryptoApproveAllowanceHandler struct{ base }

func (h *cryptoApproveAllowanceHandler) Mutations(ctx context.Context, env *Env, _ *domain.Transaction) ([]domain.Model, error) {
	b, err := body[*types.CryptoApproveAllowanceBody](env)
	if err != nil {
		return nil, err
	}
	if !env.Successful() || !env.Persist().Allowances {
		return nil, nil
	}

	ts := env.Timestamp()
	models := make([]domain.Model, 0, len(b.CryptoAllowances)+len(b.TokenAllowances)+len(b.NftAllowances))
	for _, grant := range b.CryptoAllowances {
		owner, spender, err := h.parties(ctx, env, grant.Owner, grant.Spender)
		if IsSkip(err) {
			continue
		}
		if err != nil {
			return nil, errors.Wrap(err, "crypto allowance")
		}
		models = append(models, &domain.CryptoAllowance{
			Owner:          owner,
			Spender:        spender,
			Amount:         grant.Amount,
			AmountGranted:  grant.Amount,
			PayerAccountId: env.Payer,
			TimestampLower: ts,
		})
	}
	for _, grant := range b.TokenAllowances {
		owner, spender, err := h.parties(ctx, env, grant.Owner, grant.Spender)
		if IsSkip(err) {
			continue
		}
		if err != nil {
			return nil, errors.Wrap(err, "token allowance")
		}
		token, err := env.Entity(grant.TokenID)
		if err != nil {
			return nil, errors.Wrap(err, "token allowance")
		}
		models = append(models, &domain.TokenAllowance{
			Owner:          owner,
			Spender:        spender,
			TokenId:        token,
			Amount:         grant.Amount,
			AmountGranted:  grant.Amount,
			PayerAccountId: env.Payer,
			TimestampLower: ts,
		})
	}
	for _, grant := range b.NftAllowances {
		owner, spender, err := h.parties(ctx, env, grant.Owner, grant.Spender)
		if IsSkip(err) {
			continue
		}
		if err != nil {
			return nil, errors.Wrap(err, "nft allowance")
		}
		token, err := env.Entity(grant.TokenID)
		if err != nil {
			return nil, errors.Wrap(err, "nft allowance")
		}
		if grant.ApprovedForAll != nil {
			models = append(models, &domain.NftAllowance{
				Owner:          owner,
				Spender:        spender,
				TokenId:        token,
				ApprovedForAll: *grant.ApprovedForAll,
				PayerAccountId: env.Payer,
				TimestampLower: ts,
			})
		}

		delegating := entityid.EmptyId
		if grant.DelegatingSpender != nil {
			if delegating, err = env.Account(ctx, *grant.DelegatingSpender); err != nil && !IsSkip(err) {
				return nil, errors.Wrap(err, "delegating spender")
			}
		}
		for _, serial := range grant.SerialNumbers {
			models = append(models, &domain.Nft{
				TokenId:             token,
				SerialNumber:        serial,
				SpenderId:           domain.Ptr(spender),
				DelegatingSpenderId: domain.Ptr(delegating),
				TimestampLower:      ts,
			})
		}
	}
	return models, nil
}

// parties resolves the owner, defaulting to the payer, and the spender of an allowance.
func (h *cryptoApproveAllowanceHandler) parties(ctx context.Context, env *Env, owner *types.AccountID, spender types.AccountID) (entityid.EntityId, entityid.EntityId, error) {
	ownerId := env.Payer
	if owner != nil {
		id, err := env.Account(ctx, *owner)
		if err != nil {
			return entityid.EmptyId, entityid.EmptyId, err
		}
		ownerId = id
	}
	spenderId, err := env.Account(ctx, spender)
	if err != nil {
		return entityid.EmptyId, entityid.EmptyId, err
	}
	if ownerId.IsEmpty() || spenderId.IsEmpty() {
		// an allowance without one of its parties can't be keyed
		return entityid.EmptyId, entityid.EmptyId, entityid.ErrSkip
	}
	return ownerId, spenderId, nil
}

type cryptoDeleteAllowanceHandler struct{ base }

func (h *cryptoDeleteAllowanceHandler) Mutations(ctx context.Context, env *Env, _ *domain.Transaction) ([]domain.Model, error) {
	b, err := body[*types.CryptoDeleteAllowanceBody](env)
	if err != nil {
		return nil, err
	}
	if !env.Successful() || !env.Persist().Allowances {
		return nil, nil
	}

	var models []domain.Model
	for _, removal := range b.NftAllowances {
		token, err := env.Entity(removal.TokenID)
		if err != nil {
			return nil, errors.Wrap(err, "nft allowance removal")
		}
		for _, serial := range removal.SerialNumbers {
			models = append(models, &domain.Nft{
				TokenId:             token,
				SerialNumber:        serial,
				SpenderId:           domain.Ptr(entityid.EmptyId),
				DelegatingSpenderId: domain.Ptr(entityid.EmptyId),
				TimestampLower:      env.Timestamp(),
			})
		}
	}
	return models, nil
}

// setStaking applies a staking election. Staking to an account clears the node election and vice versa.
func setStaking(ctx context.Context, env *Env, entity *domain.Entity, account *types.AccountID, node *int64) error {
	switch {
	case account != nil:
		id, err := env.OptionalAccount(ctx, account)
		if err != nil {
			return errors.Wrap(err, "staked account")
		}
		if id != nil {
			entity.StakedAccountId = id
			entity.StakedNodeId = domain.Ptr(int64(-1))
		}
	case node != nil:
		entity.StakedNodeId = node
		entity.StakedAccountId = domain.Ptr(entityid.EmptyId)
	}
	return nil
}
