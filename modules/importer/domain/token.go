package domain

import (
	"github.com/gaze-network/ledger-importer/core/types"
	"github.com/gaze-network/ledger-importer/modules/importer/entityid"
)

type TokenPauseStatus string

const (
	TokenPauseStatusNotApplicable TokenPauseStatus = "NOT_APPLICABLE"
	TokenPauseStatusPaused        TokenPauseStatus = "PAUSED"
	TokenPauseStatusUnpaused      TokenPauseStatus = "UNPAUSED"
)

// Freeze and kyc status of a token account. Zero means the token has no freeze or kyc key.
const (
	TokenStatusNotApplicable int16 = 0

	FreezeStatusFrozen   int16 = 1
	FreezeStatusUnfrozen int16 = 2

	KycStatusGranted int16 = 1
	KycStatusRevoked int16 = 2
)

type Token struct {
	TokenId          entityid.EntityId
	CreatedTimestamp *int64
	Name             *string
	Symbol           *string
	Decimals         *int32
	InitialSupply    *int64

	// TotalSupply is an absolute value when set. SupplyDelta accumulates mint/burn/wipe amounts that
	// have no authoritative total yet.
	TotalSupply *int64
	SupplyDelta int64

	TreasuryAccountId *entityid.EntityId
	AdminKey          []byte
	KycKey            []byte
	FreezeKey         []byte
	WipeKey           []byte
	SupplyKey         []byte
	FeeScheduleKey    []byte
	PauseKey          []byte
	MetadataKey       []byte
	FreezeDefault     *bool
	PauseStatus       *TokenPauseStatus
	TokenType         *types.TokenType
	SupplyType        *types.TokenSupplyType
	MaxSupply         *int64
	Metadata          []byte
	TimestampLower    int64
}

func (t *Token) Type() Type { return TypeToken }
func (t *Token) Key() any   { return t.TokenId }

func (t *Token) MergeOnto(prev Model) Model {
	p, ok := prev.(*Token)
	if !ok {
		return t
	}
	merged := *p
	merged.CreatedTimestamp = earliest(t.CreatedTimestamp, p.CreatedTimestamp)
	merged.Name = coalesce(t.Name, p.Name)
	merged.Symbol = coalesce(t.Symbol, p.Symbol)
	merged.Decimals = coalesce(t.Decimals, p.Decimals)
	merged.InitialSupply = coalesce(t.InitialSupply, p.InitialSupply)
	switch {
	case t.TotalSupply != nil:
		merged.TotalSupply = t.TotalSupply
		merged.SupplyDelta = 0
	case p.TotalSupply != nil:
		merged.TotalSupply = Ptr(*p.TotalSupply + t.SupplyDelta)
		merged.SupplyDelta = 0
	default:
		merged.SupplyDelta = p.SupplyDelta + t.SupplyDelta
	}
	merged.TreasuryAccountId = coalesce(t.TreasuryAccountId, p.TreasuryAccountId)
	merged.AdminKey = coalesceBytes(t.AdminKey, p.AdminKey)
	merged.KycKey = coalesceBytes(t.KycKey, p.KycKey)
	merged.FreezeKey = coalesceBytes(t.FreezeKey, p.FreezeKey)
	merged.WipeKey = coalesceBytes(t.WipeKey, p.WipeKey)
	merged.SupplyKey = coalesceBytes(t.SupplyKey, p.SupplyKey)
	merged.FeeScheduleKey = coalesceBytes(t.FeeScheduleKey, p.FeeScheduleKey)
	merged.PauseKey = coalesceBytes(t.PauseKey, p.PauseKey)
	merged.MetadataKey = coalesceBytes(t.MetadataKey, p.MetadataKey)
	merged.FreezeDefault = coalesce(t.FreezeDefault, p.FreezeDefault)
	merged.PauseStatus = coalesce(t.PauseStatus, p.PauseStatus)
	merged.TokenType = coalesce(t.TokenType, p.TokenType)
	merged.SupplyType = coalesce(t.SupplyType, p.SupplyType)
	merged.MaxSupply = coalesce(t.MaxSupply, p.MaxSupply)
	merged.Metadata = coalesceBytes(t.Metadata, p.Metadata)
	merged.TimestampLower = max(p.TimestampLower, t.TimestampLower)
	return &merged
}

func (t *Token) ReferencedEntityIds() []entityid.EntityId {
	return append(nonEmpty(t.TokenId), derefIds(t.TreasuryAccountId)...)
}

type TokenAccountKey struct {
	AccountId entityid.EntityId
	TokenId   entityid.EntityId
}

type TokenAccount struct {
	AccountId            entityid.EntityId
	TokenId              entityid.EntityId
	Associated           *bool
	AutomaticAssociation *bool
	CreatedTimestamp     *int64
	FreezeStatus         *int16
	KycStatus            *int16
	BalanceDelta         int64
	BalanceTimestamp     int64
	TimestampLower       int64
}

func (a *TokenAccount) Type() Type { return TypeTokenAccount }
func (a *TokenAccount) Key() any {
	return TokenAccountKey{AccountId: a.AccountId, TokenId: a.TokenId}
}

func (a *TokenAccount) MergeOnto(prev Model) Model {
	p, ok := prev.(*TokenAccount)
	if !ok {
		return a
	}
	merged := *p
	merged.Associated = coalesce(a.Associated, p.Associated)
	merged.AutomaticAssociation = coalesce(a.AutomaticAssociation, p.AutomaticAssociation)
	merged.CreatedTimestamp = earliest(a.CreatedTimestamp, p.CreatedTimestamp)
	merged.FreezeStatus = coalesce(a.FreezeStatus, p.FreezeStatus)
	merged.KycStatus = coalesce(a.KycStatus, p.KycStatus)
	merged.BalanceDelta = p.BalanceDelta + a.BalanceDelta
	merged.BalanceTimestamp = max(p.BalanceTimestamp, a.BalanceTimestamp)
	merged.TimestampLower = max(p.TimestampLower, a.TimestampLower)
	return &merged
}

func (a *TokenAccount) ReferencedEntityIds() []entityid.EntityId {
	return nonEmpty(a.AccountId, a.TokenId)
}

type NftKey struct {
	TokenId      entityid.EntityId
	SerialNumber int64
}

type Nft struct {
	TokenId          entityid.EntityId
	SerialNumber     int64
	AccountId        *entityid.EntityId
	CreatedTimestamp *int64
	Deleted          *bool
	Metadata         []byte

	// SpenderId and DelegatingSpenderId set to EmptyId clear the allowance.
	SpenderId           *entityid.EntityId
	DelegatingSpenderId *entityid.EntityId
	TimestampLower      int64
}

func (n *Nft) Type() Type { return TypeNft }
func (n *Nft) Key() any {
	return NftKey{TokenId: n.TokenId, SerialNumber: n.SerialNumber}
}

func (n *Nft) MergeOnto(prev Model) Model {
	p, ok := prev.(*Nft)
	if !ok {
		return n
	}
	merged := *p
	merged.AccountId = coalesce(n.AccountId, p.AccountId)
	merged.CreatedTimestamp = earliest(n.CreatedTimestamp, p.CreatedTimestamp)
	merged.Deleted = coalesce(n.Deleted, p.Deleted)
	merged.Metadata = coalesceBytes(n.Metadata, p.Metadata)
	merged.SpenderId = coalesce(n.SpenderId, p.SpenderId)
	merged.DelegatingSpenderId = coalesce(n.DelegatingSpenderId, p.DelegatingSpenderId)
	merged.TimestampLower = max(p.TimestampLower, n.TimestampLower)
	return &merged
}

func (n *Nft) ReferencedEntityIds() []entityid.EntityId {
	return append(nonEmpty(n.TokenId), derefIds(n.AccountId, n.SpenderId)...)
}
