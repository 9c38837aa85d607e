package domain

import (
	"github.com/gaze-network/ledger-importer/core/types"
	"github.com/gaze-network/ledger-importer/modules/importer/entityid"
)

type FileData struct {
	ConsensusTimestamp int64
	EntityId           entityid.EntityId
	FileData           []byte
	TransactionType    types.TransactionType
}

func (f *FileData) Type() Type { return TypeFileData }
func (f *FileData) Key() any   { return f.ConsensusTimestamp }

func (f *FileData) ReferencedEntityIds() []entityid.EntityId {
	return nonEmpty(f.EntityId)
}

type TopicMessage struct {
	ConsensusTimestamp   int64             `json:"consensus_timestamp"`
	TopicId              entityid.EntityId `json:"topic_id"`
	Message              []byte            `json:"message"`
	PayerAccountId       entityid.EntityId `json:"payer_account_id"`
	RunningHash          []byte            `json:"running_hash"`
	RunningHashVersion   int32             `json:"running_hash_version"`
	SequenceNumber       int64             `json:"sequence_number"`
	ChunkNum             *int32            `json:"chunk_num,omitempty"`
	ChunkTotal           *int32            `json:"chunk_total,omitempty"`
	InitialTransactionId *string           `json:"initial_transaction_id,omitempty"`
	ValidStartTimestamp  *int64            `json:"valid_start_timestamp,omitempty"`
}

func (m *TopicMessage) Type() Type { return TypeTopicMessage }
func (m *TopicMessage) Key() any   { return m.ConsensusTimestamp }

func (m *TopicMessage) ReferencedEntityIds() []entityid.EntityId {
	return nonEmpty(m.TopicId)
}

type Prng struct {
	ConsensusTimestamp int64
	Range              int32
	PrngBytes          []byte
	PrngNumber         *int32
	PayerAccountId     entityid.EntityId
}

func (p *Prng) Type() Type { return TypePrng }
func (p *Prng) Key() any   { return p.ConsensusTimestamp }

type NodeStakeKey struct {
	ConsensusTimestamp int64
	NodeId             int64
}

type NodeStake struct {
	ConsensusTimestamp int64
	NodeId             int64
	EpochDay           int64
	Stake              int64
	StakeRewarded      int64
	StakeNotRewarded   int64
	RewardRate         int64
	MinStake           int64
	MaxStake           int64
	StakingPeriod      int64
}

func (n *NodeStake) Type() Type { return TypeNodeStake }
func (n *NodeStake) Key() any {
	return NodeStakeKey{ConsensusTimestamp: n.ConsensusTimestamp, NodeId: n.NodeId}
}
