package types

type UtilPrngBody struct {
	Range int32 `json:"range,omitempty"`
}

func (*UtilPrngBody) TransactionType() TransactionType { return TransactionTypeUtilPrng }

type NodeStake struct {
	NodeID           int64 `json:"node_id"`
	Stake            int64 `json:"stake"`
	StakeRewarded    int64 `json:"stake_rewarded"`
	StakeNotRewarded int64 `json:"stake_not_rewarded"`
	RewardRate       int64 `json:"reward_rate"`
	MinStake         int64 `json:"min_stake"`
	MaxStake         int64 `json:"max_stake"`
}

type NodeStakeUpdateBody struct {
	EndOfStakingPeriod          int64       `json:"end_of_staking_period"`
	NodeStakes                  []NodeStake `json:"node_stakes"`
	MaxStakingRewardRatePerHbar int64       `json:"max_staking_reward_rate_per_hbar"`
	StakingPeriodMinutes        int64       `json:"staking_period_minutes"`
	StakingPeriodsStored        int64       `json:"staking_periods_stored"`
	StakingRewardRate           int64       `json:"staking_reward_rate"`
	StakingStartThreshold       int64       `json:"staking_start_threshold"`
	NodeRewardFeeNumerator      int64       `json:"node_reward_fee_numerator"`
	NodeRewardFeeDenominator    int64       `json:"node_reward_fee_denominator"`
}

func (*NodeStakeUpdateBody) TransactionType() TransactionType { return TransactionTypeNodeStakeUpdate }
