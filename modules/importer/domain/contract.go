package domain

import (
	"github.com/gaze-network/ledger-importer/modules/importer/entityid"
)

type ContractResult struct {
	ConsensusTimestamp int64
	ContractId         entityid.EntityId
	Amount             int64
	Bloom              []byte
	CallResult         []byte
	ErrorMessage       string
	FunctionParameters []byte
	GasLimit           int64
	GasUsed            int64
	PayerAccountId     entityid.EntityId
	SenderId           *entityid.EntityId
	CreatedContractIds []entityid.EntityId
	TransactionHash    []byte
	TransactionIndex   int64
	TransactionNonce   int32
	TransactionResult  int32
}

func (r *ContractResult) Type() Type { return TypeContractResult }
func (r *ContractResult) Key() any   { return r.ConsensusTimestamp }

func (r *ContractResult) ReferencedEntityIds() []entityid.EntityId {
	ids := append(nonEmpty(r.ContractId), derefIds(r.SenderId)...)
	return append(ids, nonEmpty(r.CreatedContractIds...)...)
}

type ContractLog struct {
	ConsensusTimestamp int64             `json:"consensus_timestamp"`
	Index              int               `json:"index"`
	ContractId         entityid.EntityId `json:"contract_id"`
	RootContractId     entityid.EntityId `json:"root_contract_id"`
	Bloom              []byte            `json:"bloom"`
	Data               []byte            `json:"data"`
	Topic0             []byte            `json:"topic0,omitempty"`
	Topic1             []byte            `json:"topic1,omitempty"`
	Topic2             []byte            `json:"topic2,omitempty"`
	Topic3             []byte            `json:"topic3,omitempty"`
	PayerAccountId     entityid.EntityId `json:"payer_account_id"`
	TransactionHash    []byte            `json:"transaction_hash"`
	TransactionIndex   int64             `json:"transaction_index"`
}

func (l *ContractLog) Type() Type { return TypeContractLog }
func (l *ContractLog) Key() any {
	return LineItemKey{ConsensusTimestamp: l.ConsensusTimestamp, Index: l.Index}
}

func (l *ContractLog) ReferencedEntityIds() []entityid.EntityId {
	return nonEmpty(l.ContractId)
}

type ContractStateChangeKey struct {
	ConsensusTimestamp int64
	ContractId         entityid.EntityId
	Slot               string
}

type ContractStateChange struct {
	ConsensusTimestamp int64
	ContractId         entityid.EntityId
	Slot               []byte
	ValueRead          []byte
	ValueWritten       []byte
	Migration          bool
	PayerAccountId     entityid.EntityId
}

func (c *ContractStateChange) Type() Type { return TypeContractStateChange }
func (c *ContractStateChange) Key() any {
	return ContractStateChangeKey{ConsensusTimestamp: c.ConsensusTimestamp, ContractId: c.ContractId, Slot: string(c.Slot)}
}

// EthereumTransaction is the normalized shape of a legacy, EIP-2930 or EIP-1559 transaction.
type EthereumTransaction struct {
	ConsensusTimestamp   int64
	Hash                 []byte
	TxType               uint8
	ChainId              []byte
	Nonce                int64
	GasPrice             []byte
	MaxFeePerGas         []byte
	MaxPriorityFeePerGas []byte
	GasLimit             int64
	Value                []byte
	ToAddress            []byte
	CallData             []byte
	CallDataId           *entityid.EntityId
	AccessList           []byte
	SignatureR           []byte
	SignatureS           []byte
	SignatureV           []byte
	RecoveryId           *int32
	FromAddress          []byte
	Data                 []byte
	MaxGasAllowance      int64
	PayerAccountId       entityid.EntityId
}

func (e *EthereumTransaction) Type() Type { return TypeEthereumTransaction }
func (e *EthereumTransaction) Key() any   { return e.ConsensusTimestamp }

func (e *EthereumTransaction) ReferencedEntityIds() []entityid.EntityId {
	return derefIds(e.CallDataId)
}
