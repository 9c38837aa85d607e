package domain

import (
	"github.com/gaze-network/ledger-importer/modules/importer/entityid"
)

// Errata marks a row corrected after the fact without revising the original record.
type Errata string

const (
	ErrataInsert Errata = "INSERT"
	ErrataDelete Errata = "DELETE"
)

type CryptoTransferKey struct {
	ConsensusTimestamp int64
	EntityId           entityid.EntityId
	Index              int
}

// CryptoTransfer is one balance-affecting entry of a transfer list. Index is the position of the
// entry in the list; aggregated transfers use the position of the first entry of the account.
type CryptoTransfer struct {
	ConsensusTimestamp int64
	EntityId           entityid.EntityId
	Index              int
	Amount             int64
	PayerAccountId     entityid.EntityId
	IsApproval         bool
	Errata             *Errata
}

func (t *CryptoTransfer) Type() Type { return TypeCryptoTransfer }
func (t *CryptoTransfer) Key() any {
	return CryptoTransferKey{ConsensusTimestamp: t.ConsensusTimestamp, EntityId: t.EntityId, Index: t.Index}
}

func (t *CryptoTransfer) ReferencedEntityIds() []entityid.EntityId {
	return nonEmpty(t.EntityId)
}

type LineItemKey struct {
	ConsensusTimestamp int64
	Index              int
}

// NonFeeTransfer is a transfer as requested in the transaction body, before fees.
// A nil EntityId is an alias that could not be resolved.
type NonFeeTransfer struct {
	ConsensusTimestamp int64
	Index              int
	EntityId           *entityid.EntityId
	Amount             int64
	PayerAccountId     entityid.EntityId
	IsApproval         bool
}

func (t *NonFeeTransfer) Type() Type { return TypeNonFeeTransfer }
func (t *NonFeeTransfer) Key() any {
	return LineItemKey{ConsensusTimestamp: t.ConsensusTimestamp, Index: t.Index}
}

func (t *NonFeeTransfer) ReferencedEntityIds() []entityid.EntityId {
	return derefIds(t.EntityId)
}

type StakingRewardTransferKey struct {
	ConsensusTimestamp int64
	AccountId          entityid.EntityId
}

type StakingRewardTransfer struct {
	ConsensusTimestamp int64
	AccountId          entityid.EntityId
	Amount             int64
	PayerAccountId     entityid.EntityId
}

func (t *StakingRewardTransfer) Type() Type { return TypeStakingRewardTransfer }
func (t *StakingRewardTransfer) Key() any {
	return StakingRewardTransferKey{ConsensusTimestamp: t.ConsensusTimestamp, AccountId: t.AccountId}
}

func (t *StakingRewardTransfer) ReferencedEntityIds() []entityid.EntityId {
	return nonEmpty(t.AccountId)
}

type TokenTransferKey struct {
	ConsensusTimestamp int64
	TokenId            entityid.EntityId
	AccountId          entityid.EntityId
}

type TokenTransfer struct {
	ConsensusTimestamp int64
	TokenId            entityid.EntityId
	AccountId          entityid.EntityId
	Amount             int64
	PayerAccountId     entityid.EntityId
	IsApproval         bool
}

func (t *TokenTransfer) Type() Type { return TypeTokenTransfer }
func (t *TokenTransfer) Key() any {
	return TokenTransferKey{ConsensusTimestamp: t.ConsensusTimestamp, TokenId: t.TokenId, AccountId: t.AccountId}
}

// MergeOnto sums repeated entries for the same account.
func (t *TokenTransfer) MergeOnto(prev Model) Model {
	p, ok := prev.(*TokenTransfer)
	if !ok {
		return t
	}
	merged := *p
	merged.Amount += t.Amount
	merged.IsApproval = p.IsApproval || t.IsApproval
	return &merged
}

func (t *TokenTransfer) ReferencedEntityIds() []entityid.EntityId {
	return nonEmpty(t.TokenId, t.AccountId)
}

type NftTransferKey struct {
	ConsensusTimestamp int64
	TokenId            entityid.EntityId
	SerialNumber       int64
}

// NftTransfer moves one serial. An empty sender is a mint, an empty receiver a burn or wipe.
type NftTransfer struct {
	ConsensusTimestamp int64
	TokenId            entityid.EntityId
	SerialNumber       int64
	SenderAccountId    entityid.EntityId
	ReceiverAccountId  entityid.EntityId
	PayerAccountId     entityid.EntityId
	IsApproval         bool
}

func (t *NftTransfer) Type() Type { return TypeNftTransfer }
func (t *NftTransfer) Key() any {
	return NftTransferKey{ConsensusTimestamp: t.ConsensusTimestamp, TokenId: t.TokenId, SerialNumber: t.SerialNumber}
}

func (t *NftTransfer) ReferencedEntityIds() []entityid.EntityId {
	return nonEmpty(t.TokenId, t.SenderAccountId, t.ReceiverAccountId)
}

type AssessedCustomFee struct {
	ConsensusTimestamp       int64
	Index                    int
	Amount                   int64
	CollectorAccountId       entityid.EntityId
	TokenId                  *entityid.EntityId
	EffectivePayerAccountIds []entityid.EntityId
	PayerAccountId           entityid.EntityId
}

func (f *AssessedCustomFee) Type() Type { return TypeAssessedCustomFee }
func (f *AssessedCustomFee) Key() any {
	return LineItemKey{ConsensusTimestamp: f.ConsensusTimestamp, Index: f.Index}
}

func (f *AssessedCustomFee) ReferencedEntityIds() []entityid.EntityId {
	ids := append(nonEmpty(f.CollectorAccountId), derefIds(f.TokenId)...)
	return append(ids, nonEmpty(f.EffectivePayerAccountIds...)...)
}
