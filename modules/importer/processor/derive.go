package processor

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ledger-importer/modules/importer/domain"
	"github.com/gaze-network/ledger-importer/modules/importer/entityid"
	"github.com/gaze-network/ledger-importer/modules/importer/handler"
)

// derive returns the records every transaction type shares: transfer lists, staking rewards,
// custom fees, automatic associations and scheduled execution.
func (p *Processor) derive(ctx context.Context, env *handler.Env, h handler.Handler) ([]domain.Model, error) {
	var models []domain.Model
	steps := []func(context.Context, *handler.Env) ([]domain.Model, error){
		p.cryptoTransfers,
		func(ctx context.Context, env *handler.Env) ([]domain.Model, error) {
			return p.nonFeeTransfers(ctx, env, h)
		},
		p.tokenTransfers,
		p.stakingRewards,
		p.assessedCustomFees,
		p.automaticAssociations,
		p.scheduledExecution,
	}
	for _, step := range steps {
		derived, err := step(ctx, env)
		if err != nil {
			return nil, err
		}
		models = append(models, derived...)
	}
	return models, nil
}

// cryptoTransfers derives the balance-affecting transfer list of the record, fees included.
// Failed transactions in the errata window reported a fee entry twice, the repeated entry is
// kept but marked deleted and never applied to balances.
func (p *Processor) cryptoTransfers(ctx context.Context, env *handler.Env) ([]domain.Model, error) {
	persist := env.Persist()
	list := env.Item.Record.TransferList
	if len(list) == 0 || (!persist.CryptoTransferAmounts && !persist.EntityBalances) {
		return nil, nil
	}
	ts := env.Timestamp()
	errata := !env.Successful() && p.config.Errata.Contains(ts)

	type seenKey struct {
		id     entityid.EntityId
		amount int64
	}
	seen := make(map[seenKey]struct{}, len(list))
	aggregated := make(map[entityid.EntityId]*domain.CryptoTransfer)
	var transfers, balances []domain.Model
	for i, entry := range list {
		id, err := env.Account(ctx, entry.AccountID)
		if handler.IsSkip(err) {
			continue
		}
		if err != nil {
			return nil, errors.Wrapf(err, "crypto transfer %d", i)
		}

		transfer := &domain.CryptoTransfer{
			ConsensusTimestamp: ts,
			EntityId:           id,
			Index:              i,
			Amount:             entry.Amount,
			PayerAccountId:     env.Payer,
			IsApproval:         entry.IsApproval,
		}
		if errata {
			key := seenKey{id, entry.Amount}
			if _, ok := seen[key]; ok {
				transfer.Errata = domain.Ptr(domain.ErrataDelete)
			}
			seen[key] = struct{}{}
		}

		if persist.EntityBalances && transfer.Errata == nil && !id.IsEmpty() {
			balances = append(balances, &domain.Entity{Id: id, BalanceDelta: entry.Amount, BalanceTimestamp: ts})
		}
		if !persist.CryptoTransferAmounts {
			continue
		}
		if persist.AggregatedTransfers && transfer.Errata == nil {
			if prev, ok := aggregated[id]; ok {
				prev.Amount += transfer.Amount
				prev.IsApproval = prev.IsApproval || transfer.IsApproval
				continue
			}
			aggregated[id] = transfer
		}
		transfers = append(transfers, transfer)
	}
	return append(transfers, balances...), nil
}

// nonFeeTransfers derives the transfers requested in the body. Unresolved aliases are kept
// with an absent entity under the DEFAULT policy.
func (p *Processor) nonFeeTransfers(ctx context.Context, env *handler.Env, h handler.Handler) ([]domain.Model, error) {
	if !env.Persist().NonFeeTransfers {
		return nil, nil
	}
	itemizer, ok := h.(handler.ItemizedTransferer)
	if !ok {
		return nil, nil
	}
	var models []domain.Model
	for i, entry := range itemizer.ItemizedTransfers(env) {
		id, err := env.Account(ctx, entry.AccountID)
		if handler.IsSkip(err) {
			continue
		}
		if err != nil {
			return nil, errors.Wrapf(err, "non fee transfer %d", i)
		}
		transfer := &domain.NonFeeTransfer{
			ConsensusTimestamp: env.Timestamp(),
			Index:              i,
			Amount:             entry.Amount,
			PayerAccountId:     env.Payer,
			IsApproval:         entry.IsApproval,
		}
		if !id.IsEmpty() {
			transfer.EntityId = &id
		}
		models = append(models, transfer)
	}
	return models, nil
}

// tokenTransfers derives fungible and NFT transfers with their balance and ownership effects.
func (p *Processor) tokenTransfers(ctx context.Context, env *handler.Env) ([]domain.Model, error) {
	persist := env.Persist()
	if !persist.Tokens || !env.Successful() {
		return nil, nil
	}
	ts := env.Timestamp()
	var models []domain.Model
	for _, list := range env.Item.Record.TokenTransferLists {
		token, err := env.Entity(list.Token)
		if err != nil {
			return nil, errors.Wrap(err, "token transfer list")
		}

		for _, entry := range list.Transfers {
			account, err := env.Account(ctx, entry.AccountID)
			if handler.IsSkip(err) {
				continue
			}
			if err != nil {
				return nil, errors.Wrapf(err, "token %s transfer", token)
			}
			if account.IsEmpty() {
				continue
			}
			models = append(models, &domain.TokenTransfer{
				ConsensusTimestamp: ts,
				TokenId:            token,
				AccountId:          account,
				Amount:             entry.Amount,
				PayerAccountId:     env.Payer,
				IsApproval:         entry.IsApproval,
			})
			if persist.EntityBalances {
				models = append(models, tokenBalance(account, token, entry.Amount, ts))
			}
		}

		for _, entry := range list.NftTransfers {
			sender, err := env.Account(ctx, entry.Sender)
			if err != nil && !handler.IsSkip(err) {
				return nil, errors.Wrapf(err, "nft %s/%d sender", token, entry.SerialNumber)
			}
			receiver, err := env.Account(ctx, entry.Receiver)
			if err != nil && !handler.IsSkip(err) {
				return nil, errors.Wrapf(err, "nft %s/%d receiver", token, entry.SerialNumber)
			}
			models = append(models, &domain.NftTransfer{
				ConsensusTimestamp: ts,
				TokenId:            token,
				SerialNumber:       entry.SerialNumber,
				SenderAccountId:    sender,
				ReceiverAccountId:  receiver,
				PayerAccountId:     env.Payer,
				IsApproval:         entry.IsApproval,
			})

			if !receiver.IsEmpty() {
				// a new owner clears any spender allowance of the serial
				models = append(models, &domain.Nft{
					TokenId:             token,
					SerialNumber:        entry.SerialNumber,
					AccountId:           domain.Ptr(receiver),
					SpenderId:           domain.Ptr(entityid.EmptyId),
					DelegatingSpenderId: domain.Ptr(entityid.EmptyId),
					TimestampLower:      ts,
				})
			}
			if persist.EntityBalances {
				if !sender.IsEmpty() {
					models = append(models, tokenBalance(sender, token, -1, ts))
				}
				if !receiver.IsEmpty() {
					models = append(models, tokenBalance(receiver, token, 1, ts))
				}
			}
		}
	}
	return models, nil
}

func tokenBalance(account, token entityid.EntityId, delta, ts int64) *domain.TokenAccount {
	return &domain.TokenAccount{
		AccountId:        account,
		TokenId:          token,
		BalanceDelta:     delta,
		BalanceTimestamp: ts,
	}
}

func (p *Processor) stakingRewards(ctx context.Context, env *handler.Env) ([]domain.Model, error) {
	var models []domain.Model
	for _, reward := range env.Item.Record.PaidStakingRewards {
		account, err := env.Account(ctx, reward.AccountID)
		if handler.IsSkip(err) {
			continue
		}
		if err != nil {
			return nil, errors.Wrap(err, "staking reward")
		}
		if account.IsEmpty() {
			continue
		}
		models = append(models, &domain.StakingRewardTransfer{
			ConsensusTimestamp: env.Timestamp(),
			AccountId:          account,
			Amount:             reward.Amount,
			PayerAccountId:     env.Payer,
		})
	}
	return models, nil
}

func (p *Processor) assessedCustomFees(ctx context.Context, env *handler.Env) ([]domain.Model, error) {
	if !env.Persist().Tokens {
		return nil, nil
	}
	var models []domain.Model
	for i, fee := range env.Item.Record.AssessedCustomFees {
		collector, err := env.Account(ctx, fee.FeeCollector)
		if handler.IsSkip(err) {
			continue
		}
		if err != nil {
			return nil, errors.Wrapf(err, "assessed custom fee %d collector", i)
		}
		token, err := env.OptionalEntity(fee.TokenID)
		if err != nil {
			return nil, errors.Wrapf(err, "assessed custom fee %d token", i)
		}
		row := &domain.AssessedCustomFee{
			ConsensusTimestamp: env.Timestamp(),
			Index:              i,
			Amount:             fee.Amount,
			CollectorAccountId: collector,
			TokenId:            token,
			PayerAccountId:     env.Payer,
		}
		for _, payer := range fee.EffectivePayers {
			id, err := env.Account(ctx, payer)
			if err != nil && !handler.IsSkip(err) {
				return nil, errors.Wrapf(err, "assessed custom fee %d payer", i)
			}
			if !id.IsEmpty() {
				row.EffectivePayerAccountIds = append(row.EffectivePayerAccountIds, id)
			}
		}
		models = append(models, row)
	}
	return models, nil
}

func (p *Processor) automaticAssociations(ctx context.Context, env *handler.Env) ([]domain.Model, error) {
	if !env.Persist().Tokens || !env.Successful() {
		return nil, nil
	}
	var models []domain.Model
	for _, association := range env.Item.Record.AutomaticTokenAssociations {
		account, err := env.Account(ctx, association.AccountID)
		if handler.IsSkip(err) {
			continue
		}
		if err != nil {
			return nil, errors.Wrap(err, "automatic association")
		}
		token, err := env.Entity(association.TokenID)
		if err != nil {
			return nil, errors.Wrap(err, "automatic association")
		}
		if account.IsEmpty() {
			continue
		}
		models = append(models, handler.Association(env, account, token, true))
	}
	return models, nil
}

// scheduledExecution marks the schedule executed by a successful scheduled transaction.
func (p *Processor) scheduledExecution(_ context.Context, env *handler.Env) ([]domain.Model, error) {
	ref := env.Item.Record.ScheduleRef
	if ref == nil || !env.Item.IsScheduled() || !env.Successful() || !env.Persist().Schedules {
		return nil, nil
	}
	id, err := env.Entity(*ref)
	if err != nil {
		return nil, errors.Wrap(err, "schedule ref")
	}
	return []domain.Model{&domain.Schedule{ScheduleId: id, ExecutedTimestamp: domain.Ptr(env.Timestamp())}}, nil
}
