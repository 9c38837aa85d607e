package postgres

import (
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ledger-importer/common/errs"
	"github.com/gaze-network/ledger-importer/core/types"
	"github.com/gaze-network/ledger-importer/modules/importer/domain"
	"github.com/gaze-network/ledger-importer/modules/importer/entityid"
	"github.com/samber/lo"
)

// EmptyId is stored as 0, not NULL: a zero spender or staked account clears the stored value.
func nullableId(id *entityid.EntityId) *int64 {
	if id == nil {
		return nil
	}
	return lo.ToPtr(id.Int64())
}

func int64s(ids []entityid.EntityId) []int64 {
	return lo.Map(ids, func(id entityid.EntityId, _ int) int64 { return id.Int64() })
}

func mapPtr[T, R any](v *T, fn func(T) R) *R {
	if v == nil {
		return nil
	}
	return lo.ToPtr(fn(*v))
}

func model[T domain.Model](m domain.Model) (T, error) {
	v, ok := m.(T)
	if !ok {
		var zero T
		return zero, errors.Wrapf(errs.Precondition, "unexpected model %T", m)
	}
	return v, nil
}

func entityArgs(m domain.Model) ([]any, error) {
	e, err := model[*domain.Entity](m)
	if err != nil {
		return nil, err
	}
	var entityType *string
	if e.EntityType != "" {
		entityType = lo.ToPtr(string(e.EntityType))
	}
	return []any{
		e.Id.Int64(), entityType, e.Alias, e.EvmAddress, e.AdminKey, e.SubmitKey, e.Memo, e.AutoRenewPeriod,
		nullableId(e.AutoRenewAccountId), e.ExpirationTimestamp, e.CreatedTimestamp, e.Deleted, e.PermanentRemoval,
		nullableId(e.ObtainerId), nullableId(e.ProxyAccountId), e.ReceiverSigRequired, e.MaxAutomaticTokenAssociations,
		nullableId(e.StakedAccountId), e.StakedNodeId, e.DeclineReward, e.EthereumNonce, e.BalanceDelta,
		e.BalanceTimestamp, e.TimestampLower,
	}, nil
}

func contractArgs(m domain.Model) ([]any, error) {
	c, err := model[*domain.Contract](m)
	if err != nil {
		return nil, err
	}
	return []any{c.Id.Int64(), nullableId(c.FileId), c.Initcode, c.RuntimeBytecode}, nil
}

func scheduleArgs(m domain.Model) ([]any, error) {
	s, err := model[*domain.Schedule](m)
	if err != nil {
		return nil, err
	}
	return []any{
		s.ScheduleId.Int64(), s.CreatorAccountId.Int64(), s.PayerAccountId.Int64(), s.TransactionBody,
		s.ConsensusTimestamp, s.ExecutedTimestamp, s.ExpirationTime, s.WaitForExpiry,
	}, nil
}

// tokenArgs appends the flag telling whether total_supply is absolute or a delta.
func tokenArgs(m domain.Model) ([]any, error) {
	t, err := model[*domain.Token](m)
	if err != nil {
		return nil, err
	}
	supply := t.SupplyDelta
	if t.TotalSupply != nil {
		supply = *t.TotalSupply
	}
	return []any{
		t.TokenId.Int64(), t.CreatedTimestamp, t.Name, t.Symbol, t.Decimals, t.InitialSupply, supply,
		nullableId(t.TreasuryAccountId), t.AdminKey, t.KycKey, t.FreezeKey, t.WipeKey, t.SupplyKey,
		t.FeeScheduleKey, t.PauseKey, t.MetadataKey, t.FreezeDefault,
		mapPtr(t.PauseStatus, func(s domain.TokenPauseStatus) string { return string(s) }),
		mapPtr(t.TokenType, func(v types.TokenType) int16 { return int16(v) }),
		mapPtr(t.SupplyType, func(v types.TokenSupplyType) int16 { return int16(v) }),
		t.MaxSupply, t.Metadata, t.TimestampLower,
		t.TotalSupply != nil,
	}, nil
}

func tokenAccountArgs(m domain.Model) ([]any, error) {
	a, err := model[*domain.TokenAccount](m)
	if err != nil {
		return nil, err
	}
	return []any{
		a.AccountId.Int64(), a.TokenId.Int64(), a.Associated, a.AutomaticAssociation, a.CreatedTimestamp,
		a.FreezeStatus, a.KycStatus, a.BalanceDelta, a.BalanceTimestamp, a.TimestampLower,
	}, nil
}

func nftArgs(m domain.Model) ([]any, error) {
	n, err := model[*domain.Nft](m)
	if err != nil {
		return nil, err
	}
	return []any{
		n.TokenId.Int64(), n.SerialNumber, nullableId(n.AccountId), n.CreatedTimestamp, n.Deleted, n.Metadata,
		nullableId(n.SpenderId), nullableId(n.DelegatingSpenderId), n.TimestampLower,
	}, nil
}

func cryptoAllowanceArgs(m domain.Model) ([]any, error) {
	a, err := model[*domain.CryptoAllowance](m)
	if err != nil {
		return nil, err
	}
	return []any{
		a.Owner.Int64(), a.Spender.Int64(), a.Amount, a.AmountGranted, a.PayerAccountId.Int64(), a.TimestampLower,
	}, nil
}

func tokenAllowanceArgs(m domain.Model) ([]any, error) {
	a, err := model[*domain.TokenAllowance](m)
	if err != nil {
		return nil, err
	}
	return []any{
		a.Owner.Int64(), a.Spender.Int64(), a.TokenId.Int64(), a.Amount, a.AmountGranted, a.PayerAccountId.Int64(),
		a.TimestampLower,
	}, nil
}

func nftAllowanceArgs(m domain.Model) ([]any, error) {
	a, err := model[*domain.NftAllowance](m)
	if err != nil {
		return nil, err
	}
	return []any{
		a.Owner.Int64(), a.Spender.Int64(), a.TokenId.Int64(), a.ApprovedForAll, a.PayerAccountId.Int64(),
		a.TimestampLower,
	}, nil
}

func errata(e *domain.Errata) *string {
	return mapPtr(e, func(e domain.Errata) string { return string(e) })
}

func transactionArgs(m domain.Model) ([]any, error) {
	t, err := model[*domain.Transaction](m)
	if err != nil {
		return nil, err
	}
	return []any{
		t.ConsensusTimestamp, int32(t.TransactionType), int32(t.Result), t.PayerAccountId.Int64(),
		nullableId(t.NodeAccountId), nullableId(t.EntityId), t.ValidStartNs, t.ValidDurationSeconds, t.MaxFee,
		t.ChargedTxFee, t.InitialBalance, t.Memo, t.TransactionHash, t.TransactionBytes, t.Scheduled, t.Nonce,
		t.ParentConsensusTimestamp, t.Index, errata(t.Errata),
	}, nil
}

func transactionSignatureArgs(m domain.Model) ([]any, error) {
	s, err := model[*domain.TransactionSignature](m)
	if err != nil {
		return nil, err
	}
	return []any{s.ConsensusTimestamp, s.EntityId.Int64(), s.PublicKeyPrefix, s.Signature, s.SignatureType}, nil
}

func cryptoTransferArgs(m domain.Model) ([]any, error) {
	t, err := model[*domain.CryptoTransfer](m)
	if err != nil {
		return nil, err
	}
	return []any{
		t.ConsensusTimestamp, t.EntityId.Int64(), t.Index, t.Amount, t.PayerAccountId.Int64(), t.IsApproval,
		errata(t.Errata),
	}, nil
}

func nonFeeTransferArgs(m domain.Model) ([]any, error) {
	t, err := model[*domain.NonFeeTransfer](m)
	if err != nil {
		return nil, err
	}
	return []any{
		t.ConsensusTimestamp, t.Index, nullableId(t.EntityId), t.Amount, t.PayerAccountId.Int64(), t.IsApproval,
	}, nil
}

func stakingRewardTransferArgs(m domain.Model) ([]any, error) {
	t, err := model[*domain.StakingRewardTransfer](m)
	if err != nil {
		return nil, err
	}
	return []any{t.ConsensusTimestamp, t.AccountId.Int64(), t.Amount, t.PayerAccountId.Int64()}, nil
}

func tokenTransferArgs(m domain.Model) ([]any, error) {
	t, err := model[*domain.TokenTransfer](m)
	if err != nil {
		return nil, err
	}
	return []any{
		t.ConsensusTimestamp, t.TokenId.Int64(), t.AccountId.Int64(), t.Amount, t.PayerAccountId.Int64(), t.IsApproval,
	}, nil
}

// an empty sender is a mint and an empty receiver a burn, both stored as NULL
func nftTransferArgs(m domain.Model) ([]any, error) {
	t, err := model[*domain.NftTransfer](m)
	if err != nil {
		return nil, err
	}
	return []any{
		t.ConsensusTimestamp, t.TokenId.Int64(), t.SerialNumber, nonZero(t.SenderAccountId),
		nonZero(t.ReceiverAccountId), t.PayerAccountId.Int64(), t.IsApproval,
	}, nil
}

func nonZero(id entityid.EntityId) *int64 {
	if id.IsEmpty() {
		return nil
	}
	return lo.ToPtr(id.Int64())
}

func assessedCustomFeeArgs(m domain.Model) ([]any, error) {
	f, err := model[*domain.AssessedCustomFee](m)
	if err != nil {
		return nil, err
	}
	return []any{
		f.ConsensusTimestamp, f.Index, f.Amount, f.CollectorAccountId.Int64(), nullableId(f.TokenId),
		int64s(f.EffectivePayerAccountIds), f.PayerAccountId.Int64(),
	}, nil
}

func contractResultArgs(m domain.Model) ([]any, error) {
	r, err := model[*domain.ContractResult](m)
	if err != nil {
		return nil, err
	}
	return []any{
		r.ConsensusTimestamp, r.ContractId.Int64(), r.Amount, r.Bloom, r.CallResult, r.ErrorMessage,
		r.FunctionParameters, r.GasLimit, r.GasUsed, r.PayerAccountId.Int64(), nullableId(r.SenderId),
		int64s(r.CreatedContractIds), r.TransactionHash, r.TransactionIndex, r.TransactionNonce, r.TransactionResult,
	}, nil
}

func contractLogArgs(m domain.Model) ([]any, error) {
	l, err := model[*domain.ContractLog](m)
	if err != nil {
		return nil, err
	}
	return []any{
		l.ConsensusTimestamp, l.Index, l.ContractId.Int64(), nonZero(l.RootContractId), l.Bloom, l.Data, l.Topic0,
		l.Topic1, l.Topic2, l.Topic3, l.PayerAccountId.Int64(), l.TransactionHash, l.TransactionIndex,
	}, nil
}

func contractStateChangeArgs(m domain.Model) ([]any, error) {
	c, err := model[*domain.ContractStateChange](m)
	if err != nil {
		return nil, err
	}
	return []any{
		c.ConsensusTimestamp, c.ContractId.Int64(), c.Slot, c.ValueRead, c.ValueWritten, c.Migration,
		c.PayerAccountId.Int64(),
	}, nil
}

func ethereumTransactionArgs(m domain.Model) ([]any, error) {
	e, err := model[*domain.EthereumTransaction](m)
	if err != nil {
		return nil, err
	}
	return []any{
		e.ConsensusTimestamp, e.Hash, int16(e.TxType), e.ChainId, e.Nonce, e.GasPrice, e.MaxFeePerGas,
		e.MaxPriorityFeePerGas, e.GasLimit, e.Value, e.ToAddress, e.CallData, nullableId(e.CallDataId),
		e.AccessList, e.SignatureR, e.SignatureS, e.SignatureV, e.RecoveryId, e.FromAddress, e.Data,
		e.MaxGasAllowance, e.PayerAccountId.Int64(),
	}, nil
}

func fileDataArgs(m domain.Model) ([]any, error) {
	f, err := model[*domain.FileData](m)
	if err != nil {
		return nil, err
	}
	return []any{f.ConsensusTimestamp, f.EntityId.Int64(), f.FileData, int32(f.TransactionType)}, nil
}

func topicMessageArgs(m domain.Model) ([]any, error) {
	t, err := model[*domain.TopicMessage](m)
	if err != nil {
		return nil, err
	}
	return []any{
		t.ConsensusTimestamp, t.TopicId.Int64(), t.Message, t.PayerAccountId.Int64(), t.RunningHash,
		t.RunningHashVersion, t.SequenceNumber, t.ChunkNum, t.ChunkTotal, t.InitialTransactionId,
		t.ValidStartTimestamp,
	}, nil
}

func prngArgs(m domain.Model) ([]any, error) {
	p, err := model[*domain.Prng](m)
	if err != nil {
		return nil, err
	}
	return []any{p.ConsensusTimestamp, p.Range, p.PrngBytes, p.PrngNumber, p.PayerAccountId.Int64()}, nil
}

func nodeStakeArgs(m domain.Model) ([]any, error) {
	n, err := model[*domain.NodeStake](m)
	if err != nil {
		return nil, err
	}
	return []any{
		n.ConsensusTimestamp, n.NodeId, n.EpochDay, n.Stake, n.StakeRewarded, n.StakeNotRewarded, n.RewardRate,
		n.MinStake, n.MaxStake, n.StakingPeriod,
	}, nil
}

func entityTransactionArgs(m domain.Model) ([]any, error) {
	e, err := model[*domain.EntityTransaction](m)
	if err != nil {
		return nil, err
	}
	return []any{
		e.EntityId.Int64(), e.ConsensusTimestamp, e.PayerAccountId.Int64(), int32(e.Result), int32(e.TransactionType),
	}, nil
}

func recordFileArgs(m domain.Model) ([]any, error) {
	r, err := model[*domain.RecordFile](m)
	if err != nil {
		return nil, err
	}
	return []any{
		r.ConsensusEnd, r.ConsensusStart, r.Name, r.Index, r.Hash, r.PreviousHash, r.Count, r.HapiVersion,
		r.NodeId, r.Size, r.GasUsed, r.LoadStart, r.LoadEnd,
	}, nil
}
