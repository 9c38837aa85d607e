package handler

import (
	"context"

	"github.com/gaze-network/ledger-importer/core/types"
	"github.com/gaze-network/ledger-importer/modules/importer/domain"
)

type utilPrngHandler struct{ base }

func (h *utilPrngHandler) Mutations(ctx context.Context, env *Env, _ *domain.Transaction) ([]domain.Model, error) {
	b, err := body[*types.UtilPrngBody](env)
	if err != nil {
		return nil, err
	}
	if !env.Successful() {
		return nil, nil
	}
	record := env.Item.Record
	if record.PrngBytes == nil && record.PrngNumber == nil {
		return nil, nil
	}
	return []domain.Model{&domain.Prng{
		ConsensusTimestamp: env.Timestamp(),
		Range:              b.Range,
		PrngBytes:          record.PrngBytes,
		PrngNumber:         record.PrngNumber,
		PayerAccountId:     env.Payer,
	}}, nil
}

const nanosPerDay = int64(86_400_000_000_000)

type nodeStakeUpdateHandler struct{ base }

func (h *nodeStakeUpdateHandler) Mutations(ctx context.Context, env *Env, _ *domain.Transaction) ([]domain.Model, error) {
	b, err := body[*types.NodeStakeUpdateBody](env)
	if err != nil {
		return nil, err
	}
	if !env.Successful() {
		return nil, nil
	}

	// the staking period ends on the last nanosecond of a utc day
	epochDay := b.EndOfStakingPeriod / nanosPerDay
	stakingPeriod := b.EndOfStakingPeriod + 1 - nanosPerDay
	models := make([]domain.Model, 0, len(b.NodeStakes))
	for _, stake := range b.NodeStakes {
		models = append(models, &domain.NodeStake{
			ConsensusTimestamp: env.Timestamp(),
			NodeId:             stake.NodeID,
			EpochDay:           epochDay,
			Stake:              stake.Stake,
			StakeRewarded:      stake.StakeRewarded,
			StakeNotRewarded:   stake.StakeNotRewarded,
			RewardRate:         stake.RewardRate,
			MinStake:           stake.MinStake,
			MaxStake:           stake.MaxStake,
			StakingPeriod:      stakingPeriod,
		})
	}
	return models, nil
}

func (h *nodeStakeUpdateHandler) Traits() Traits {
	return Traits{SkipEntityTransactions: true}
}
