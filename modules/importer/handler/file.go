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

type fileCreateHandler struct{ base }

func (h *fileCreateHandler) EntityId(ctx context.Context, env *Env) (entityid.EntityId, error) {
	if env.Receipt().FileID == nil {
		return entityid.EmptyId, nil
	}
	return env.Entity(*env.Receipt().FileID)
}

func (h *fileCreateHandler) Mutations(ctx context.Context, env *Env, tx *domain.Transaction) ([]domain.Model, error) {
	b, err := body[*types.FileCreateBody](env)
	if err != nil {
		return nil, err
	}
	if !env.Successful() || tx.EntityId == nil || tx.EntityId.IsEmpty() {
		return nil, nil
	}

	entity := createdEntity(env, *tx.EntityId, domain.EntityTypeFile)
	entity.AdminKey = b.Keys
	entity.Memo = domain.Ptr(b.Memo)
	entity.ExpirationTimestamp = b.ExpirationTime
	return appendFileData(env, *tx.EntityId, b.Contents, entity), nil
}

type fileAppendHandler struct{ base }

func (h *fileAppendHandler) EntityId(ctx context.Context, env *Env) (entityid.EntityId, error) {
	b, err := body[*types.FileAppendBody](env)
	if err != nil {
		return entityid.EmptyId, err
	}
	return env.Entity(b.FileID)
}

func (h *fileAppendHandler) Mutations(ctx context.Context, env *Env, tx *domain.Transaction) ([]domain.Model, error) {
	b, err := body[*types.FileAppendBody](env)
	if err != nil {
		return nil, err
	}
	if !env.Successful() || tx.EntityId == nil {
		return nil, nil
	}
	return appendFileData(env, *tx.EntityId, b.Contents), nil
}

type fileUpdateHandler struct{ base }

func (h *fileUpdateHandler) EntityId(ctx context.Context, env *Env) (entityid.EntityId, error) {
	b, err := body[*types.FileUpdateBody](env)
	if err != nil {
		return entityid.EmptyId, err
	}
	return env.Entity(b.FileID)
}

func (h *fileUpdateHandler) Mutations(ctx context.Context, env *Env, tx *domain.Transaction) ([]domain.Model, error) {
	b, err := body[*types.FileUpdateBody](env)
	if err != nil {
		return nil, err
	}
	if !env.Successful() || tx.EntityId == nil {
		return nil, nil
	}

	entity := updatedEntity(env, *tx.EntityId)
	entity.AdminKey = b.Keys
	entity.Memo = b.Memo
	entity.ExpirationTimestamp = b.ExpirationTime
	return appendFileData(env, *tx.EntityId, b.Contents, entity), nil
}

type fileDeleteHandler struct{ base }

func (h *fileDeleteHandler) EntityId(ctx context.Context, env *Env) (entityid.EntityId, error) {
	b, err := body[*types.FileDeleteBody](env)
	if err != nil {
		return entityid.EmptyId, err
	}
	return env.Entity(b.FileID)
}

func (h *fileDeleteHandler) Mutations(ctx context.Context, env *Env, tx *domain.Transaction) ([]domain.Model, error) {
	return deletedEntity(env, tx, true), nil
}

type systemDeleteHandler struct{ base }

func (h *systemDeleteHandler) EntityId(ctx context.Context, env *Env) (entityid.EntityId, error) {
	b, err := body[*types.SystemDeleteBody](env)
	if err != nil {
		return entityid.EmptyId, err
	}
	return systemTarget(ctx, env, b.FileID, b.ContractID)
}

func (h *systemDeleteHandler) Mutations(ctx context.Context, env *Env, tx *domain.Transaction) ([]domain.Model, error) {
	return deletedEntity(env, tx, true), nil
}

type systemUndeleteHandler struct{ base }

func (h *systemUndeleteHandler) EntityId(ctx context.Context, env *Env) (entityid.EntityId, error) {
	b, err := body[*types.SystemUndeleteBody](env)
	if err != nil {
		return entityid.EmptyId, err
	}
	return systemTarget(ctx, env, b.FileID, b.ContractID)
}

func (h *systemUndeleteHandler) Mutations(ctx context.Context, env *Env, tx *domain.Transaction) ([]domain.Model, error) {
	return deletedEntity(env, tx, false), nil
}

func systemTarget(ctx context.Context, env *Env, file *types.EntityRef, contract *types.ContractID) (entityid.EntityId, error) {
	switch {
	case file != nil:
		return env.Entity(*file)
	case contract != nil:
		return env.Contract(ctx, *contract)
	default:
		return entityid.EmptyId, errors.Wrap(errs.DataIntegrity, "system delete without target")
	}
}

func deletedEntity(env *Env, tx *domain.Transaction, deleted bool) []domain.Model {
	if !env.Successful() || tx.EntityId == nil || tx.EntityId.IsEmpty() {
		return nil
	}
	entity := updatedEntity(env, *tx.EntityId)
	entity.Deleted = domain.Ptr(deleted)
	return []domain.Model{entity}
}

// appendFileData appends the FileData row of a file write to models when file contents are persisted.
func appendFileData(env *Env, id entityid.EntityId, contents []byte, models ...domain.Model) []domain.Model {
	if contents == nil {
		return models
	}
	persist := env.Persist()
	if !persist.Files && !(persist.SystemFiles && config.IsSystemFile(id.Num())) {
		return models
	}
	return append(models, &domain.FileData{
		ConsensusTimestamp: env.Timestamp(),
		EntityId:           id,
		FileData:           contents,
		TransactionType:    env.Item.TransactionType(),
	})
}
