package types

// RecordFile is one source file of the ledger stream. The decoder hands it over with all items in consensus order.
type RecordFile struct {
	Name           string       `json:"name"`
	Index          int64        `json:"index"`
	ConsensusStart int64        `json:"consensus_start"`
	ConsensusEnd   int64        `json:"consensus_end"`
	Count          int64        `json:"count"`
	Hash           string       `json:"hash"`
	PreviousHash   string       `json:"previous_hash"`
	HapiVersion    string       `json:"hapi_version,omitempty"`
	NodeID         int64        `json:"node_id"`
	Size           int64        `json:"size,omitempty"`
	GasUsed        int64        `json:"gas_used,omitempty"`
	Items          []RecordItem `json:"items"`
}

func (f *RecordFile) Len() int {
	return len(f.Items)
}

// RecordFileHeader identifies a record file in the hash chain.
type RecordFileHeader struct {
	Name         string `json:"name"`
	Index        int64  `json:"index"`
	Hash         string `json:"hash"`
	PreviousHash string `json:"previous_hash"`
	ConsensusEnd int64  `json:"consensus_end"`
}

func (f *RecordFile) Header() RecordFileHeader {
	return RecordFileHeader{
		Name:         f.Name,
		Index:        f.Index,
		Hash:         f.Hash,
		PreviousHash: f.PreviousHash,
		ConsensusEnd: f.ConsensusEnd,
	}
}
