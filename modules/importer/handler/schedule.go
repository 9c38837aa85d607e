package handler

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ledger-importer/core/types"
	"github.com/gaze-network/ledger-importer/modules/importer/domain"
	"github.com/gaze-network/ledger-importer/modules/importer/entityid"
)

type scheduleCreateHandler struct{ base }

func (h *scheduleCreateHandler) EntityId(ctx context.Context, env *Env) (entityid.EntityId, error) {
	if env.Receipt().ScheduleID == nil {
		return entityid.EmptyId, nil
	}
	return env.Entity(*env.Receipt().ScheduleID)
}

func (h *scheduleCreateHandler) Mutations(ctx context.Context, env *Env, tx *domain.Transaction) ([]domain.Model, error) {
	b, err := body[*types.ScheduleCreateBody](env)
	if err != nil {
		return nil, err
	}
	if !env.Successful() || tx.EntityId == nil || tx.EntityId.IsEmpty() {
		return nil, nil
	}
	id := *tx.EntityId

	entity := createdEntity(env, id, domain.EntityTypeSchedule)
	entity.AdminKey = b.AdminKey
	entity.Memo = domain.Ptr(b.Memo)
	entity.ExpirationTimestamp = b.ExpirationTime
	models := []domain.Model{entity}

	if env.Persist().Schedules {
		payer, err := h.payer(ctx, env, b.PayerAccountID)
		switch {
		case IsSkip(err):
		case err != nil:
			return nil, errors.Wrap(err, "schedule payer")
		default:
			models = append(models, h.schedule(env, b, id, payer))
		}
	}
	return append(models, signatures(env, id)...), nil
}

// payer resolves the account paying for the scheduled transaction, defaulting to the creator.
func (h *scheduleCreateHandler) payer(ctx context.Context, env *Env, account *types.AccountID) (entityid.EntityId, error) {
	if account == nil {
		return env.Payer, nil
	}
	return env.Account(ctx, *account)
}

func (h *scheduleCreateHandler) schedule(env *Env, b *types.ScheduleCreateBody, id, payer entityid.EntityId) *domain.Schedule {
	return &domain.Schedule{
		ScheduleId:         id,
		CreatorAccountId:   env.Payer,
		PayerAccountId:     payer,
		TransactionBody:    b.ScheduledTransactionBody,
		ConsensusTimestamp: env.Timestamp(),
		ExpirationTime:     b.ExpirationTime,
		WaitForExpiry:      b.WaitForExpiry,
	}
}

type scheduleSignHandler struct{ base }

func (h *scheduleSignHandler) EntityId(ctx context.Context, env *Env) (entityid.EntityId, error) {
	b, err := body[*types.ScheduleSignBody](env)
	if err != nil {
		return entityid.EmptyId, err
	}
	return env.Entity(b.ScheduleID)
}

func (h *scheduleSignHandler) Mutations(ctx context.Context, env *Env, tx *domain.Transaction) ([]domain.Model, error) {
	if _, err := body[*types.ScheduleSignBody](env); err != nil {
		return nil, err
	}
	if !env.Successful() || tx.EntityId == nil {
		return nil, nil
	}
	return signatures(env, *tx.EntityId), nil
}

type scheduleDeleteHandler struct{ base }

func (h *scheduleDeleteHandler) EntityId(ctx context.Context, env *Env) (entityid.EntityId, error) {
	b, err := body[*types.ScheduleDeleteBody](env)
	if err != nil {
		return entityid.EmptyId, err
	}
	return env.Entity(b.ScheduleID)
}

func (h *scheduleDeleteHandler) Mutations(ctx context.Context, env *Env, tx *domain.Transaction) ([]domain.Model, error) {
	return deletedEntity(env, tx, true), nil
}

// signatures returns the signatures of the transaction. Repeated public key prefixes collapse to
// the first signature observed.
func signatures(env *Env, schedule entityid.EntityId) []domain.Model {
	if !env.Persist().TransactionSignatures {
		return nil
	}
	seen := make(map[string]struct{}, len(env.Item.SignatureMap))
	models := make([]domain.Model, 0, len(env.Item.SignatureMap))
	for _, pair := range env.Item.SignatureMap {
		if _, ok := seen[string(pair.PubKeyPrefix)]; ok {
			continue
		}
		seen[string(pair.PubKeyPrefix)] = struct{}{}
		models = append(models, &domain.TransactionSignature{
			ConsensusTimestamp: env.Timestamp(),
			EntityId:           schedule,
			PublicKeyPrefix:    pair.PubKeyPrefix,
			Signature:          pair.Signature,
			SignatureType:      pair.Type,
		})
	}
	return models
}
