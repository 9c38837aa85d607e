package types

type SignaturePair struct {
	PubKeyPrefix []byte `json:"pub_key_prefix"`
	Signature    []byte `json:"signature"`
	Type         int16  `json:"type"`
}

// RecordItem is one decoded consensus transaction and its result, the unit of ingestion.
// It must not be mutated after the decoder hands it over.
type RecordItem struct {
	ConsensusTimestamp int64             `json:"consensus_timestamp"`
	Index              int64             `json:"index"`
	HapiVersion        string            `json:"hapi_version,omitempty"`
	Transaction        TransactionBody   `json:"transaction"`
	Record             TransactionRecord `json:"record"`
	Sidecars           []SidecarRecord   `json:"sidecars,omitempty"`
	SignatureMap       []SignaturePair   `json:"signature_map,omitempty"`
	TransactionBytes   []byte            `json:"transaction_bytes,omitempty"`
}

func (r *RecordItem) PayerAccountID() AccountID {
	return r.Transaction.TransactionID.AccountID
}

func (r *RecordItem) TransactionType() TransactionType {
	return r.Transaction.TransactionType()
}

func (r *RecordItem) Successful() bool {
	return r.Record.Receipt.Status.IsSuccessful()
}

// IsChild reports whether the ledger executed this transaction on behalf of a parent transaction.
func (r *RecordItem) IsChild() bool {
	return r.Record.ParentConsensusTimestamp != 0
}

func (r *RecordItem) IsScheduled() bool {
	return r.Transaction.TransactionID.Scheduled
}
