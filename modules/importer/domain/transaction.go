package domain

import (
	"github.com/gaze-network/ledger-importer/core/types"
	"github.com/gaze-network/ledger-importer/modules/importer/entityid"
)

// Transaction is persisted for every record item, successful or not.
type Transaction struct {
	ConsensusTimestamp       int64
	TransactionType          types.TransactionType
	Result                   types.ResponseCode
	PayerAccountId           entityid.EntityId
	NodeAccountId            *entityid.EntityId
	EntityId                 *entityid.EntityId
	ValidStartNs             int64
	ValidDurationSeconds     int64
	MaxFee                   int64
	ChargedTxFee             int64
	InitialBalance           int64
	Memo                     []byte
	TransactionHash          []byte
	TransactionBytes         []byte
	Scheduled                bool
	Nonce                    int32
	ParentConsensusTimestamp *int64
	Index                    int64
	Errata                   *Errata
}

func (t *Transaction) Type() Type { return TypeTransaction }
func (t *Transaction) Key() any   { return t.ConsensusTimestamp }

// Successful reports whether the ledger applied the transaction.
func (t *Transaction) Successful() bool {
	return t.Result.IsSuccessful()
}

func (t *Transaction) ReferencedEntityIds() []entityid.EntityId {
	return append(nonEmpty(t.PayerAccountId), derefIds(t.NodeAccountId, t.EntityId)...)
}

type TransactionSignatureKey struct {
	ConsensusTimestamp int64
	EntityId           entityid.EntityId
	PublicKeyPrefix    string
}

type TransactionSignature struct {
	ConsensusTimestamp int64
	EntityId           entityid.EntityId
	PublicKeyPrefix    []byte
	Signature          []byte
	SignatureType      int16
}

func (s *TransactionSignature) Type() Type { return TypeTransactionSignature }
func (s *TransactionSignature) Key() any {
	return TransactionSignatureKey{
		ConsensusTimestamp: s.ConsensusTimestamp,
		EntityId:           s.EntityId,
		PublicKeyPrefix:    string(s.PublicKeyPrefix),
	}
}

type EntityTransactionKey struct {
	EntityId           entityid.EntityId
	ConsensusTimestamp int64
}

type EntityTransaction struct {
	EntityId           entityid.EntityId
	ConsensusTimestamp int64
	PayerAccountId     entityid.EntityId
	Result             types.ResponseCode
	TransactionType    types.TransactionType
}

func (e *EntityTransaction) Type() Type { return TypeEntityTransaction }
func (e *EntityTransaction) Key() any {
	return EntityTransactionKey{EntityId: e.EntityId, ConsensusTimestamp: e.ConsensusTimestamp}
}

type RecordFile struct {
	ConsensusStart int64
	ConsensusEnd   int64
	Name           string
	Index          int64
	Hash           string
	PreviousHash   string
	Count          int64
	HapiVersion    string
	NodeId         int64
	Size           int64
	GasUsed        int64
	LoadStart      int64
	LoadEnd        int64
}

func (r *RecordFile) Type() Type { return TypeRecordFile }
func (r *RecordFile) Key() any   { return r.ConsensusEnd }

// NewRecordFile builds the RecordFile row of a file. Load timestamps are unix seconds.
func NewRecordFile(file *types.RecordFile, loadStart, loadEnd int64) *RecordFile {
	return &RecordFile{
		ConsensusStart: file.ConsensusStart,
		ConsensusEnd:   file.ConsensusEnd,
		Name:           file.Name,
		Index:          file.Index,
		Hash:           file.Hash,
		PreviousHash:   file.PreviousHash,
		Count:          file.Count,
		HapiVersion:    file.HapiVersion,
		NodeId:         file.NodeID,
		Size:           file.Size,
		GasUsed:        file.GasUsed,
		LoadStart:      loadStart,
		LoadEnd:        loadEnd,
	}
}

// Header returns the chain position of the row.
func (r *RecordFile) Header() types.RecordFileHeader {
	return types.RecordFileHeader{
		Name:         r.Name,
		Index:        r.Index,
		Hash:         r.Hash,
		PreviousHash: r.PreviousHash,
		ConsensusEnd: r.ConsensusEnd,
	}
}
