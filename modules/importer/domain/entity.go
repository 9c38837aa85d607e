package domain

import (
	"github.com/gaze-network/ledger-importer/modules/importer/entityid"
)

type EntityType string

const (
	EntityTypeAccount  EntityType = "ACCOUNT"
	EntityTypeContract EntityType = "CONTRACT"
	EntityTypeFile     EntityType = "FILE"
	EntityTypeTopic    EntityType = "TOPIC"
	EntityTypeToken    EntityType = "TOKEN"
	EntityTypeSchedule EntityType = "SCHEDULE"
)

// Entity is the slowly-changing row shared by every ledger entity. Nil fields are left unchanged.
type Entity struct {
	Id         entityid.EntityId
	EntityType EntityType

	// Alias and EvmAddress are bound once and never reassigned.
	Alias      []byte
	EvmAddress []byte

	AdminKey                      []byte
	SubmitKey                     []byte
	Memo                          *string
	AutoRenewPeriod               *int64
	AutoRenewAccountId            *entityid.EntityId
	ExpirationTimestamp           *int64
	CreatedTimestamp              *int64
	Deleted                       *bool
	PermanentRemoval              *bool
	ObtainerId                    *entityid.EntityId
	ProxyAccountId                *entityid.EntityId
	ReceiverSigRequired           *bool
	MaxAutomaticTokenAssociations *int32
	StakedAccountId               *entityid.EntityId
	StakedNodeId                  *int64
	DeclineReward                 *bool
	EthereumNonce                 *int64

	// BalanceDelta is added to the stored balance.
	BalanceDelta     int64
	BalanceTimestamp int64

	// TimestampLower is the lower bound of the effective timestamp range. Zero for balance-only mutations.
	TimestampLower int64
}

func (e *Entity) Type() Type { return TypeEntity }
func (e *Entity) Key() any   { return e.Id }

func (e *Entity) MergeOnto(prev Model) Model {
	p, ok := prev.(*Entity)
	if !ok {
		return e
	}
	merged := *p
	if merged.EntityType == "" {
		merged.EntityType = e.EntityType
	}
	if merged.Alias == nil {
		merged.Alias = e.Alias
	}
	if merged.EvmAddress == nil {
		merged.EvmAddress = e.EvmAddress
	}
	merged.AdminKey = coalesceBytes(e.AdminKey, p.AdminKey)
	merged.SubmitKey = coalesceBytes(e.SubmitKey, p.SubmitKey)
	merged.Memo = coalesce(e.Memo, p.Memo)
	merged.AutoRenewPeriod = coalesce(e.AutoRenewPeriod, p.AutoRenewPeriod)
	merged.AutoRenewAccountId = coalesce(e.AutoRenewAccountId, p.AutoRenewAccountId)
	merged.ExpirationTimestamp = coalesce(e.ExpirationTimestamp, p.ExpirationTimestamp)
	merged.CreatedTimestamp = earliest(e.CreatedTimestamp, p.CreatedTimestamp)
	merged.Deleted = coalesce(e.Deleted, p.Deleted)
	merged.PermanentRemoval = coalesce(e.PermanentRemoval, p.PermanentRemoval)
	merged.ObtainerId = coalesce(e.ObtainerId, p.ObtainerId)
	merged.ProxyAccountId = coalesce(e.ProxyAccountId, p.ProxyAccountId)
	merged.ReceiverSigRequired = coalesce(e.ReceiverSigRequired, p.ReceiverSigRequired)
	merged.MaxAutomaticTokenAssociations = coalesce(e.MaxAutomaticTokenAssociations, p.MaxAutomaticTokenAssociations)
	merged.StakedAccountId = coalesce(e.StakedAccountId, p.StakedAccountId)
	merged.StakedNodeId = coalesce(e.StakedNodeId, p.StakedNodeId)
	merged.DeclineReward = coalesce(e.DeclineReward, p.DeclineReward)
	merged.EthereumNonce = coalesce(e.EthereumNonce, p.EthereumNonce)
	merged.BalanceDelta = p.BalanceDelta + e.BalanceDelta
	merged.BalanceTimestamp = max(p.BalanceTimestamp, e.BalanceTimestamp)
	merged.TimestampLower = max(p.TimestampLower, e.TimestampLower)
	return &merged
}

func (e *Entity) ReferencedEntityIds() []entityid.EntityId {
	return append(nonEmpty(e.Id), derefIds(e.AutoRenewAccountId, e.ObtainerId, e.ProxyAccountId, e.StakedAccountId)...)
}

// Contract holds the contract specific columns of a contract entity.
type Contract struct {
	Id              entityid.EntityId
	FileId          *entityid.EntityId
	Initcode        []byte
	RuntimeBytecode []byte
}

func (c *Contract) Type() Type { return TypeContract }
func (c *Contract) Key() any   { return c.Id }

func (c *Contract) MergeOnto(prev Model) Model {
	p, ok := prev.(*Contract)
	if !ok {
		return c
	}
	merged := *p
	merged.FileId = coalesce(c.FileId, p.FileId)
	merged.Initcode = coalesceBytes(c.Initcode, p.Initcode)
	merged.RuntimeBytecode = coalesceBytes(c.RuntimeBytecode, p.RuntimeBytecode)
	return &merged
}

func (c *Contract) ReferencedEntityIds() []entityid.EntityId {
	return append(nonEmpty(c.Id), derefIds(c.FileId)...)
}

type Schedule struct {
	ScheduleId         entityid.EntityId
	CreatorAccountId   entityid.EntityId
	PayerAccountId     entityid.EntityId
	TransactionBody    []byte
	ConsensusTimestamp int64
	ExecutedTimestamp  *int64
	ExpirationTime     *int64
	WaitForExpiry      bool
}

func (s *Schedule) Type() Type { return TypeSchedule }
func (s *Schedule) Key() any   { return s.ScheduleId }

func (s *Schedule) MergeOnto(prev Model) Model {
	p, ok := prev.(*Schedule)
	if !ok {
		return s
	}
	merged := *p
	if merged.ConsensusTimestamp == 0 {
		merged.ConsensusTimestamp = s.ConsensusTimestamp
		merged.CreatorAccountId = s.CreatorAccountId
		merged.PayerAccountId = s.PayerAccountId
		merged.TransactionBody = s.TransactionBody
		merged.WaitForExpiry = s.WaitForExpiry
	}
	merged.ExecutedTimestamp = coalesce(s.ExecutedTimestamp, p.ExecutedTimestamp)
	merged.ExpirationTime = coalesce(s.ExpirationTime, p.ExpirationTime)
	return &merged
}

func (s *Schedule) ReferencedEntityIds() []entityid.EntityId {
	return nonEmpty(s.ScheduleId, s.CreatorAccountId, s.PayerAccountId)
}
