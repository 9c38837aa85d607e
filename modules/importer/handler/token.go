package handler

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ledger-importer/common/errs"
	"github.com/gaze-network/ledger-importer/core/types"
	"github.com/gaze-network/ledger-importer/modules/importer/domain"
	"github.com/gaze-network/ledger-importer/modules/importer/entityid"
)

type tokenCreateHandler struct{ base }

func (h *tokenCreateHandler) EntityId(ctx context.Context, env *Env) (entityid.EntityId, error) {
	if env.Receipt().TokenID == nil {
		return entityid.EmptyId, nil
	}
	return env.Entity(*env.Receipt().TokenID)
}

func (h *tokenCreateHandler) Mutations(ctx context.Context, env *Env, tx *domain.Transaction) ([]domain.Model, error) {
	b, err := body[*types.TokenCreateBody](env)
	if err != nil {
		return nil, err
	}
	if !env.Successful() || tx.EntityId == nil || tx.EntityId.IsEmpty() {
		return nil, nil
	}
	id, ts := *tx.EntityId, env.Timestamp()

	entity := createdEntity(env, id, domain.EntityTypeToken)
	entity.AdminKey = b.AdminKey
	entity.Memo = domain.Ptr(b.Memo)
	entity.AutoRenewPeriod = b.AutoRenewPeriod
	entity.ExpirationTimestamp = b.ExpirationTime
	if entity.AutoRenewAccountId, err = env.OptionalAccount(ctx, b.AutoRenewAccount); err != nil {
		return nil, errors.Wrap(err, "auto renew account")
	}
	if !env.Persist().Tokens {
		return []domain.Model{entity}, nil
	}

	treasury, err := env.Account(ctx, b.Treasury)
	if IsSkip(err) {
		return []domain.Model{entity}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "treasury")
	}
	pauseStatus := domain.TokenPauseStatusNotApplicable
	if b.PauseKey != nil {
		pauseStatus = domain.TokenPauseStatusUnpaused
	}
	totalSupply := b.InitialSupply
	if b.TokenType == types.TokenTypeNonFungibleUnique {
		totalSupply = 0
	}
	token := &domain.Token{
		TokenId:           id,
		CreatedTimestamp:  domain.Ptr(ts),
		Name:              domain.Ptr(b.Name),
		Symbol:            domain.Ptr(b.Symbol),
		Decimals:          domain.Ptr(b.Decimals),
		InitialSupply:     domain.Ptr(b.InitialSupply),
		TotalSupply:       domain.Ptr(totalSupply),
		TreasuryAccountId: &treasury,
		AdminKey:          b.AdminKey,
		KycKey:            b.KycKey,
		FreezeKey:         b.FreezeKey,
		WipeKey:           b.WipeKey,
		SupplyKey:         b.SupplyKey,
		FeeScheduleKey:    b.FeeScheduleKey,
		PauseKey:          b.PauseKey,
		MetadataKey:       b.MetadataKey,
		FreezeDefault:     domain.Ptr(b.FreezeDefault),
		PauseStatus:       &pauseStatus,
		TokenType:         domain.Ptr(b.TokenType),
		SupplyType:        domain.Ptr(b.SupplyType),
		MaxSupply:         domain.Ptr(b.MaxSupply),
		Metadata:          b.Metadata,
		TimestampLower:    ts,
	}
	models := []domain.Model{entity, token}

	if !treasury.IsEmpty() {
		// the treasury is implicitly associated, unfrozen and kyc granted
		models = append(models, &domain.TokenAccount{
			AccountId:            treasury,
			TokenId:              id,
			Associated:           domain.Ptr(true),
			AutomaticAssociation: domain.Ptr(false),
			CreatedTimestamp:     domain.Ptr(ts),
			FreezeStatus:         domain.Ptr(statusIf(b.FreezeKey != nil, domain.FreezeStatusUnfrozen)),
			KycStatus:            domain.Ptr(statusIf(b.KycKey != nil, domain.KycStatusGranted)),
			TimestampLower:       ts,
		})
	}
	return models, nil
}

type tokenUpdateHandler struct{ base }

func (h *tokenUpdateHandler) EntityId(ctx context.Context, env *Env) (entityid.EntityId, error) {
	b, err := body[*types.TokenUpdateBody](env)
	if err != nil {
		return entityid.EmptyId, err
	}
	return env.Entity(b.Token)
}

func (h *tokenUpdateHandler) Mutations(ctx context.Context, env *Env, tx *domain.Transaction) ([]domain.Model, error) {
	b, err := body[*types.TokenUpdateBody](env)
	if err != nil {
		return nil, err
	}
	if !env.Successful() || tx.EntityId == nil || tx.EntityId.IsEmpty() {
		return nil, nil
	}
	id := *tx.EntityId

	entity := updatedEntity(env, id)
	entity.AdminKey = b.AdminKey
	entity.Memo = b.Memo
	entity.AutoRenewPeriod = b.AutoRenewPeriod
	entity.ExpirationTimestamp = b.ExpirationTime
	if entity.AutoRenewAccountId, err = env.OptionalAccount(ctx, b.AutoRenewAccount); err != nil {
		return nil, errors.Wrap(err, "auto renew account")
	}
	if !env.Persist().Tokens {
		return []domain.Model{entity}, nil
	}

	token := &domain.Token{
		TokenId:        id,
		Name:           b.Name,
		Symbol:         b.Symbol,
		AdminKey:       b.AdminKey,
		KycKey:         b.KycKey,
		FreezeKey:      b.FreezeKey,
		WipeKey:        b.WipeKey,
		SupplyKey:      b.SupplyKey,
		FeeScheduleKey: b.FeeScheduleKey,
		PauseKey:       b.PauseKey,
		MetadataKey:    b.MetadataKey,
		Metadata:       b.Metadata,
		TimestampLower: env.Timestamp(),
	}
	if token.TreasuryAccountId, err = env.OptionalAccount(ctx, b.Treasury); err != nil {
		return nil, errors.Wrap(err, "treasury")
	}
	return []domain.Model{entity, token}, nil
}

// supplyChange is shared by mint, burn and wipe. The receipt's new total supply is authoritative
// and overwrites the value computed from the amount.
func supplyChange(env *Env, id entityid.EntityId, delta int64) *domain.Token {
	token := &domain.Token{TokenId: id, TimestampLower: env.Timestamp()}
	if prev, ok := env.pending(domain.TypeToken, id); ok && prev.(*domain.Token).TotalSupply != nil {
		token.TotalSupply = domain.Ptr(*prev.(*domain.Token).TotalSupply + delta)
	} else {
		token.SupplyDelta = delta
	}
	if total := env.Receipt().NewTotalSupply; total != nil {
		token.TotalSupply = domain.Ptr(*total)
		token.SupplyDelta = 0
	}
	return token
}

type tokenMintHandler struct{ base }

func (h *tokenMintHandler) EntityId(ctx context.Context, env *Env) (entityid.EntityId, error) {
	b, err := body[*types.TokenMintBody](env)
	if err != nil {
		return entityid.EmptyId, err
	}
	return env.Entity(b.Token)
}

func (h *tokenMintHandler) Mutations(ctx context.Context, env *Env, tx *domain.Transaction) ([]domain.Model, error) {
	b, err := body[*types.TokenMintBody](env)
	if err != nil {
		return nil, err
	}
	if !env.Successful() || !env.Persist().Tokens || tx.EntityId == nil {
		return nil, nil
	}
	id, ts := *tx.EntityId, env.Timestamp()

	serials := env.Receipt().SerialNumbers
	delta := b.Amount
	if len(serials) > 0 {
		delta = int64(len(serials))
	}
	models := []domain.Model{supplyChange(env, id, delta)}
	for i, serial := range serials {
		nft := &domain.Nft{
			TokenId:          id,
			SerialNumber:     serial,
			CreatedTimestamp: domain.Ptr(ts),
			Deleted:          domain.Ptr(false),
			TimestampLower:   ts,
		}
		if i < len(b.Metadata) {
			nft.Metadata = b.Metadata[i]
		}
		models = append(models, nft)
	}
	return models, nil
}

type tokenBurnHandler struct{ base }

func (h *tokenBurnHandler) EntityId(ctx context.Context, env *Env) (entityid.EntityId, error) {
	b, err := body[*types.TokenBurnBody](env)
	if err != nil {
		return entityid.EmptyId, err
	}
	return env.Entity(b.Token)
}

func (h *tokenBurnHandler) Mutations(ctx context.Context, env *Env, tx *domain.Transaction) ([]domain.Model, error) {
	b, err := body[*types.TokenBurnBody](env)
	if err != nil {
		return nil, err
	}
	if !env.Successful() || !env.Persist().Tokens || tx.EntityId == nil {
		return nil, nil
	}
	return removeSupply(env, *tx.EntityId, b.Amount, b.SerialNumbers), nil
}

type tokenWipeHandler struct{ base }

func (h *tokenWipeHandler) EntityId(ctx context.Context, env *Env) (entityid.EntityId, error) {
	b, err := body[*types.TokenWipeBody](env)
	if err != nil {
		return entityid.EmptyId, err
	}
	return env.Entity(b.Token)
}

func (h *tokenWipeHandler) Mutations(ctx context.Context, env *Env, tx *domain.Transaction) ([]domain.Model, error) {
	b, err := body[*types.TokenWipeBody](env)
	if err != nil {
		return nil, err
	}
	if !env.Successful() || !env.Persist().Tokens || tx.EntityId == nil {
		return nil, nil
	}
	return removeSupply(env, *tx.EntityId, b.Amount, b.SerialNumbers), nil
}

// removeSupply burns fungible amount or NFT serials. Balances move through the token transfer list.
func removeSupply(env *Env, id entityid.EntityId, amount int64, serials []int64) []domain.Model {
	delta := amount
	if len(serials) > 0 {
		delta = int64(len(serials))
	}
	models := []domain.Model{supplyChange(env, id, -delta)}
	for _, serial := range serials {
		models = append(models, &domain.Nft{
			TokenId:        id,
			SerialNumber:   serial,
			AccountId:      domain.Ptr(entityid.EmptyId),
			Deleted:        domain.Ptr(true),
			TimestampLower: env.Timestamp(),
		})
	}
	return models
}

type tokenAssociateHandler struct{ base }

func (h *tokenAssociateHandler) EntityId(ctx context.Context, env *Env) (entityid.EntityId, error) {
	b, err := body[*types.TokenAssociateBody](env)
	if err != nil {
		return entityid.EmptyId, err
	}
	return env.Account(ctx, b.Account)
}

func (h *tokenAssociateHandler) Mutations(ctx context.Context, env *Env, tx *domain.Transaction) ([]domain.Model, error) {
	b, err := body[*types.TokenAssociateBody](env)
	if err != nil {
		return nil, err
	}
	if !env.Successful() || !env.Persist().Tokens || tx.EntityId == nil || tx.EntityId.IsEmpty() {
		return nil, nil
	}

	models := make([]domain.Model, 0, len(b.Tokens))
	for _, ref := range b.Tokens {
		token, err := env.Entity(ref)
		if err != nil {
			return nil, errors.Wrap(err, "token")
		}
		models = append(models, Association(env, *tx.EntityId, token, false))
	}
	return models, nil
}

// Association returns a new association of account with token. Freeze and kyc status are derived
// from the token when it was created or updated in the same record file.
func Association(env *Env, account, token entityid.EntityId, automatic bool) *domain.TokenAccount {
	ts := env.Timestamp()
	association := &domain.TokenAccount{
		AccountId:            account,
		TokenId:              token,
		Associated:           domain.Ptr(true),
		AutomaticAssociation: domain.Ptr(automatic),
		CreatedTimestamp:     domain.Ptr(ts),
		TimestampLower:       ts,
	}
	if prev, ok := env.pending(domain.TypeToken, token); ok {
		t := prev.(*domain.Token)
		frozen := t.FreezeDefault != nil && *t.FreezeDefault
		freeze := statusIf(t.FreezeKey != nil, domain.FreezeStatusUnfrozen)
		if t.FreezeKey != nil && frozen {
			freeze = domain.FreezeStatusFrozen
		}
		association.FreezeStatus = domain.Ptr(freeze)
		association.KycStatus = domain.Ptr(statusIf(t.KycKey != nil, domain.KycStatusRevoked))
	}
	return association
}

type tokenDissociateHandler struct{ base }

func (h *tokenDissociateHandler) EntityId(ctx context.Context, env *Env) (entityid.EntityId, error) {
	b, err := body[*types.TokenDissociateBody](env)
	if err != nil {
		return entityid.EmptyId, err
	}
	return env.Account(ctx, b.Account)
}

func (h *tokenDissociateHandler) Mutations(ctx context.Context, env *Env, tx *domain.Transaction) ([]domain.Model, error) {
	b, err := body[*types.TokenDissociateBody](env)
	if err != nil {
		return nil, err
	}
	if !env.Successful() || !env.Persist().Tokens || tx.EntityId == nil || tx.EntityId.IsEmpty() {
		return nil, nil
	}

	models := make([]domain.Model, 0, len(b.Tokens))
	for _, ref := range b.Tokens {
		token, err := env.Entity(ref)
		if err != nil {
			return nil, errors.Wrap(err, "token")
		}
		models = append(models, &domain.TokenAccount{
			AccountId:      *tx.EntityId,
			TokenId:        token,
			Associated:     domain.Ptr(false),
			TimestampLower: env.Timestamp(),
		})
	}
	return models, nil
}

// tokenAccountStatusHandler handles freeze, unfreeze, grant kyc and revoke kyc.
type tokenAccountStatusHandler struct{ base }

func (h *tokenAccountStatusHandler) accountBody(env *Env) (*types.TokenAccountBody, error) {
	switch b := env.Item.Transaction.Data.(type) {
	case *types.TokenFreezeBody:
		return &b.TokenAccountBody, nil
	case *types.TokenUnfreezeBody:
		return &b.TokenAccountBody, nil
	case *types.TokenGrantKycBody:
		return &b.TokenAccountBody, nil
	case *types.TokenRevokeKycBody:
		return &b.TokenAccountBody, nil
	default:
		return nil, errors.Wrapf(errs.DataIntegrity, "unexpected body %T for %s", b, h.Type())
	}
}

func (h *tokenAccountStatusHandler) EntityId(ctx context.Context, env *Env) (entityid.EntityId, error) {
	b, err := h.accountBody(env)
	if err != nil {
		return entityid.EmptyId, err
	}
	return env.Entity(b.Token)
}

func (h *tokenAccountStatusHandler) Mutations(ctx context.Context, env *Env, _ *domain.Transaction) ([]domain.Model, error) {
	b, err := h.accountBody(env)
	if err != nil {
		return nil, err
	}
	if !env.Successful() || !env.Persist().Tokens {
		return nil, nil
	}
	token, err := env.Entity(b.Token)
	if err != nil {
		return nil, errors.Wrap(err, "token")
	}
	account, err := env.Account(ctx, b.Account)
	if err != nil {
		return nil, errors.Wrap(err, "account")
	}
	if account.IsEmpty() {
		return nil, nil
	}

	tokenAccount := &domain.TokenAccount{AccountId: account, TokenId: token, TimestampLower: env.Timestamp()}
	switch h.Type() {
	case types.TransactionTypeTokenFreeze:
		tokenAccount.FreezeStatus = domain.Ptr(domain.FreezeStatusFrozen)
	case types.TransactionTypeTokenUnfreeze:
		tokenAccount.FreezeStatus = domain.Ptr(domain.FreezeStatusUnfrozen)
	case types.TransactionTypeTokenGrantKyc:
		tokenAccount.KycStatus = domain.Ptr(domain.KycStatusGranted)
	case types.TransactionTypeTokenRevokeKyc:
		tokenAccount.KycStatus = domain.Ptr(domain.KycStatusRevoked)
	}
	return []domain.Model{tokenAccount}, nil
}

// tokenPauseHandler handles pause and unpause.
type tokenPauseHandler struct{ base }

func (h *tokenPauseHandler) tokenRef(env *Env) (types.EntityRef, error) {
	switch b := env.Item.Transaction.Data.(type) {
	case *types.TokenPauseBody:
		return b.Token, nil
	case *types.TokenUnpauseBody:
		return b.Token, nil
	default:
		return types.EntityRef{}, errors.Wrapf(errs.DataIntegrity, "unexpected body %T for %s", b, h.Type())
	}
}

func (h *tokenPauseHandler) EntityId(ctx context.Context, env *Env) (entityid.EntityId, error) {
	ref, err := h.tokenRef(env)
	if err != nil {
		return entityid.EmptyId, err
	}
	return env.Entity(ref)
}

func (h *tokenPauseHandler) Mutations(ctx context.Context, env *Env, tx *domain.Transaction) ([]domain.Model, error) {
	if _, err := h.tokenRef(env); err != nil {
		return nil, err
	}
	if !env.Successful() || !env.Persist().Tokens || tx.EntityId == nil {
		return nil, nil
	}
	status := domain.TokenPauseStatusPaused
	if h.Type() == types.TransactionTypeTokenUnpause {
		status = domain.TokenPauseStatusUnpaused
	}
	return []domain.Model{&domain.Token{
		TokenId:        *tx.EntityId,
		PauseStatus:    &status,
		TimestampLower: env.Timestamp(),
	}}, nil
}

type tokenDeleteHandler struct{ base }

func (h *tokenDeleteHandler) EntityId(ctx context.Context, env *Env) (entityid.EntityId, error) {
	b, err := body[*types.TokenDeleteBody](env)
	if err != nil {
		return entityid.EmptyId, err
	}
	return env.Entity(b.Token)
}

func (h *tokenDeleteHandler) Mutations(ctx context.Context, env *Env, tx *domain.Transaction) ([]domain.Model, error) {
	if _, err := body[*types.TokenDeleteBody](env); err != nil {
		return nil, err
	}
	return deletedEntity(env, tx, true), nil
}

// tokenFeeScheduleUpdateHandler only links the token, custom fee schedules are not persisted.
type tokenFeeScheduleUpdateHandler struct{ base }

func (h *tokenFeeScheduleUpdateHandler) EntityId(ctx context.Context, env *Env) (entityid.EntityId, error) {
	b, err := body[*types.TokenFeeScheduleUpdateBody](env)
	if err != nil {
		return entityid.EmptyId, err
	}
	return env.Entity(b.Token)
}

type tokenUpdateNftsHandler struct{ base }

func (h *tokenUpdateNftsHandler) EntityId(ctx context.Context, env *Env) (entityid.EntityId, error) {
	b, err := body[*types.TokenUpdateNftsBody](env)
	if err != nil {
		return entityid.EmptyId, err
	}
	return env.Entity(b.Token)
}

func (h *tokenUpdateNftsHandler) Mutations(ctx context.Context, env *Env, tx *domain.Transaction) ([]domain.Model, error) {
	b, err := body[*types.TokenUpdateNftsBody](env)
	if err != nil {
		return nil, err
	}
	if !env.Successful() || !env.Persist().Tokens || tx.EntityId == nil || b.Metadata == nil {
		return nil, nil
	}
	models := make([]domain.Model, 0, len(b.SerialNumbers))
	for _, serial := range b.SerialNumbers {
		models = append(models, &domain.Nft{
			TokenId:        *tx.EntityId,
			SerialNumber:   serial,
			Metadata:       b.Metadata,
			TimestampLower: env.Timestamp(),
		})
	}
	return models, nil
}

// statusIf returns status when the token has the governing key and not applicable otherwise.
func statusIf(hasKey bool, status int16) int16 {
	if !hasKey {
		return domain.TokenStatusNotApplicable
	}
	return status
}
