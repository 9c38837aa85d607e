// Package processor turns one record item into the mutations accumulated in the parser context.
package processor

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ledger-importer/common/errs"
	"github.com/gaze-network/ledger-importer/core/types"
	"github.com/gaze-network/ledger-importer/modules/importer/config"
	"github.com/gaze-network/ledger-importer/modules/importer/domain"
	"github.com/gaze-network/ledger-importer/modules/importer/entityid"
	"github.com/gaze-network/ledger-importer/modules/importer/handler"
	"github.com/gaze-network/ledger-importer/modules/importer/parsercontext"
	"github.com/gaze-network/ledger-importer/pkg/logger"
	"github.com/gaze-network/ledger-importer/pkg/logger/slogx"
	"github.com/samber/lo"
)

// Processor is stateless, every per-file state lives in the parser context passed to Process.
type Processor struct {
	config   *config.Config
	registry *handler.Registry
}

func New(cfg *config.Config, registry *handler.Registry) *Processor {
	if registry == nil {
		registry = handler.Default()
	}
	return &Processor{
		config:   cfg,
		registry: registry,
	}
}

// Process dispatches item to its handler, derives the generic records of the transaction and
// merges everything into pc. On error pc may hold a part of the item's mutations, the caller
// must discard the whole file.
func (p *Processor) Process(ctx context.Context, lookup *entityid.Lookup, pc *parsercontext.Context, item *types.RecordItem) error {
	if lookup == nil || pc == nil || item == nil {
		return errors.Wrap(errs.Precondition, "nil lookup, parser context or record item")
	}
	ctx = logger.WithContext(ctx,
		slogx.Int64(logger.ConsensusTimestampKey, item.ConsensusTimestamp),
		slogx.Stringer(logger.TransactionTypeKey, item.TransactionType()),
	)

	h := p.registry.Get(item.TransactionType())
	payer, err := lookup.Account(ctx, item.PayerAccountID())
	if err != nil && !handler.IsSkip(err) {
		return errors.Wrap(err, "payer account")
	}
	env := &handler.Env{
		Item:    item,
		Lookup:  lookup,
		Config:  p.config,
		Context: pc,
		Payer:   payer,
	}

	tx, err := p.transaction(env)
	if err != nil {
		return errors.WithStack(err)
	}
	if env.Successful() {
		id, err := h.EntityId(ctx, env)
		switch {
		case handler.IsSkip(err):
		case err != nil:
			return errors.Wrap(err, "entity id")
		case !id.IsEmpty():
			tx.EntityId = &id
		}
	}

	mutations, err := h.Mutations(ctx, env, tx)
	if handler.IsSkip(err) {
		logger.DebugContext(ctx, "Skipped transaction mutations with unresolved reference", slogx.Error(err))
		mutations, err = nil, nil
	}
	if err != nil {
		return errors.Wrapf(err, "%s mutations", item.TransactionType())
	}

	derived, err := p.derive(ctx, env, h)
	if err != nil {
		return errors.WithStack(err)
	}

	models := make([]domain.Model, 0, 1+len(mutations)+len(derived))
	models = append(models, tx)
	models = append(models, mutations...)
	models = append(models, derived...)
	if p.config.Persist.EntityTransactions && !h.Traits().SkipEntityTransactions {
		models = append(models, p.entityTransactions(tx, models)...)
	}

	for _, m := range models {
		if _, err := pc.Merge(m); err != nil {
			return errors.Wrapf(err, "can't merge %s", m.Type())
		}
	}
	logger.DebugContext(ctx, "Processed record item", slogx.Int("mutations", len(models)))
	return nil
}

// transaction builds the row persisted for every record item, successful or not.
func (p *Processor) transaction(env *handler.Env) (*domain.Transaction, error) {
	item := env.Item
	body := item.Transaction
	tx := &domain.Transaction{
		ConsensusTimestamp:   item.ConsensusTimestamp,
		TransactionType:      item.TransactionType(),
		Result:               item.Record.Receipt.Status,
		PayerAccountId:       env.Payer,
		ValidStartNs:         body.TransactionID.ValidStartNs,
		ValidDurationSeconds: body.ValidDurationSeconds,
		MaxFee:               body.MaxFee,
		ChargedTxFee:         item.Record.TransactionFee,
		TransactionHash:      item.Record.TransactionHash,
		Scheduled:            item.IsScheduled(),
		Nonce:                body.TransactionID.Nonce,
		Index:                item.Index,
	}
	if body.Memo != "" {
		tx.Memo = []byte(body.Memo)
	}
	if p.config.Persist.TransactionBytes {
		tx.TransactionBytes = item.TransactionBytes
	}
	if item.IsChild() {
		tx.ParentConsensusTimestamp = domain.Ptr(item.Record.ParentConsensusTimestamp)
	}
	if node := body.NodeAccountID; node.Num != 0 && !node.HasAlias() {
		id, err := env.Entity(node.EntityRef)
		if err != nil {
			return nil, errors.Wrap(err, "node account")
		}
		tx.NodeAccountId = &id
	}
	return tx, nil
}

// entityTransactions links the transaction to every entity its models reference.
func (p *Processor) entityTransactions(tx *domain.Transaction, models []domain.Model) []domain.Model {
	exclusion := p.config.Persist.EntityTransactionExclusion
	seen := make(map[entityid.EntityId]struct{})
	var links []domain.Model
	for _, m := range models {
		referencer, ok := m.(domain.Referencer)
		if !ok {
			continue
		}
		for _, id := range referencer.ReferencedEntityIds() {
			if id.IsEmpty() || lo.Contains(exclusion, id.Int64()) {
				continue
			}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			links = append(links, &domain.EntityTransaction{
				EntityId:           id,
				ConsensusTimestamp: tx.ConsensusTimestamp,
				PayerAccountId:     tx.PayerAccountId,
				Result:             tx.Result,
				TransactionType:    tx.TransactionType,
			})
		}
	}
	return links
}
