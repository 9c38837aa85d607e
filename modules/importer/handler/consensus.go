package handler

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ledger-importer/core/types"
	"github.com/gaze-network/ledger-importer/modules/importer/domain"
	"github.com/gaze-network/ledger-importer/modules/importer/entityid"
)

type topicCreateHandler struct{ base }

func (h *topicCreateHandler) EntityId(ctx context.Context, env *Env) (entityid.EntityId, error) {
	if env.Receipt().TopicID == nil {
		return entityid.EmptyId, nil
	}
	return env.Entity(*env.Receipt().TopicID)
}

func (h *topicCreateHandler) Mutations(ctx context.Context, env *Env, tx *domain.Transaction) ([]domain.Model, error) {
	b, err := body[*types.ConsensusCreateTopicBody](env)
	if err != nil {
		return nil, err
	}
	if !env.Successful() || tx.EntityId == nil || tx.EntityId.IsEmpty() {
		return nil, nil
	}

	entity := createdEntity(env, *tx.EntityId, domain.EntityTypeTopic)
	entity.AdminKey = b.AdminKey
	entity.SubmitKey = b.SubmitKey
	entity.Memo = domain.Ptr(b.Memo)
	entity.AutoRenewPeriod = b.AutoRenewPeriod
	if entity.AutoRenewAccountId, err = env.OptionalAccount(ctx, b.AutoRenewAccount); err != nil {
		return nil, errors.Wrap(err, "auto renew account")
	}
	return []domain.Model{entity}, nil
}

type topicUpdateHandler struct{ base }

func (h *topicUpdateHandler) EntityId(ctx context.Context, env *Env) (entityid.EntityId, error) {
	b, err := body[*types.ConsensusUpdateTopicBody](env)
	if err != nil {
		return entityid.EmptyId, err
	}
	return env.Entity(b.TopicID)
}

func (h *topicUpdateHandler) Mutations(ctx context.Context, env *Env, tx *domain.Transaction) ([]domain.Model, error) {
	b, err := body[*types.ConsensusUpdateTopicBody](env)
	if err != nil {
		return nil, err
	}
	if !env.Successful() || tx.EntityId == nil || tx.EntityId.IsEmpty() {
		return nil, nil
	}

	entity := updatedEntity(env, *tx.EntityId)
	entity.AdminKey = b.AdminKey
	entity.SubmitKey = b.SubmitKey
	entity.Memo = b.Memo
	entity.ExpirationTimestamp = b.ExpirationTime
	entity.AutoRenewPeriod = b.AutoRenewPeriod
	if entity.AutoRenewAccountId, err = env.OptionalAccount(ctx, b.AutoRenewAccount); err != nil {
		return nil, errors.Wrap(err, "auto renew account")
	}
	return []domain.Model{entity}, nil
}

type topicDeleteHandler struct{ base }

func (h *topicDeleteHandler) EntityId(ctx context.Context, env *Env) (entityid.EntityId, error) {
	b, err := body[*types.ConsensusDeleteTopicBody](env)
	if err != nil {
		return entityid.EmptyId, err
	}
	return env.Entity(b.TopicID)
}

func (h *topicDeleteHandler) Mutations(ctx context.Context, env *Env, tx *domain.Transaction) ([]domain.Model, error) {
	return deletedEntity(env, tx, true), nil
}

type topicSubmitMessageHandler struct{ base }

func (h *topicSubmitMessageHandler) EntityId(ctx context.Context, env *Env) (entityid.EntityId, error) {
	b, err := body[*types.ConsensusSubmitMessageBody](env)
	if err != nil {
		return entityid.EmptyId, err
	}
	return env.Entity(b.TopicID)
}

func (h *topicSubmitMessageHandler) Mutations(ctx context.Context, env *Env, tx *domain.Transaction) ([]domain.Model, error) {
	b, err := body[*types.ConsensusSubmitMessageBody](env)
	if err != nil {
		return nil, err
	}
	if !env.Successful() || !env.Persist().TopicMessages || tx.EntityId == nil {
		return nil, nil
	}

	receipt := env.Receipt()
	message := &domain.TopicMessage{
		ConsensusTimestamp: env.Timestamp(),
		TopicId:            *tx.EntityId,
		Message:            b.Message,
		PayerAccountId:     env.Payer,
		RunningHash:        receipt.TopicRunningHash,
		RunningHashVersion: int32(receipt.TopicRunningHashVersion),
		SequenceNumber:     receipt.TopicSequenceNumber,
	}
	if chunk := b.ChunkInfo; chunk != nil {
		message.ChunkNum = domain.Ptr(chunk.Number)
		message.ChunkTotal = domain.Ptr(chunk.Total)
		message.InitialTransactionId = domain.Ptr(FormatTransactionID(chunk.InitialTransactionID))
		message.ValidStartTimestamp = domain.Ptr(chunk.InitialTransactionID.ValidStartNs)
	}
	return []domain.Model{message}, nil
}

// FormatTransactionID renders a transaction id as payer@seconds.nanos.
func FormatTransactionID(id types.TransactionID) string {
	payer := id.AccountID.EntityRef.String()
	if id.AccountID.HasAlias() {
		payer = fmt.Sprintf("%x", id.AccountID.Alias)
	}
	s := fmt.Sprintf("%s@%d.%09d", payer, id.ValidStartNs/1e9, id.ValidStartNs%1e9)
	if id.Scheduled {
		s += "?scheduled"
	}
	if id.Nonce != 0 {
		s += fmt.Sprintf("/%d", id.Nonce)
	}
	return s
}
