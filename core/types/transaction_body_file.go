package types

type FileCreateBody struct {
	Keys           []byte `json:"keys,omitempty"`
	Contents       []byte `json:"contents,omitempty"`
	ExpirationTime *int64 `json:"expiration_time,omitempty"`
	Memo           string `json:"memo,omitempty"`
}

func (*FileCreateBody) TransactionType() TransactionType { return TransactionTypeFileCreate }

type FileAppendBody struct {
	FileID   EntityRef `json:"file_id"`
	Contents []byte    `json:"contents,omitempty"`
}

func (*FileAppendBody) TransactionType() TransactionType { return TransactionTypeFileAppend }

type FileUpdateBody struct {
	FileID         EntityRef `json:"file_id"`
	Keys           []byte    `json:"keys,omitempty"`
	Contents       []byte    `json:"contents,omitempty"`
	ExpirationTime *int64    `json:"expiration_time,omitempty"`
	Memo           *string   `json:"memo,omitempty"`
}

func (*FileUpdateBody) TransactionType() TransactionType { return TransactionTypeFileUpdate }

type FileDeleteBody struct {
	FileID EntityRef `json:"file_id"`
}

func (*FileDeleteBody) TransactionType() TransactionType { return TransactionTypeFileDelete }

// SystemDeleteBody targets either a file or a contract.
type SystemDeleteBody struct {
	FileID         *EntityRef  `json:"file_id,omitempty"`
	ContractID     *ContractID `json:"contract_id,omitempty"`
	ExpirationTime int64       `json:"expiration_time"`
}

func (*SystemDeleteBody) TransactionType() TransactionType { return TransactionTypeSystemDelete }

type SystemUndeleteBody struct {
	FileID     *EntityRef  `json:"file_id,omitempty"`
	ContractID *ContractID `json:"contract_id,omitempty"`
}

func (*SystemUndeleteBody) TransactionType() TransactionType { return TransactionTypeSystemUndelete }

type FreezeBody struct {
	StartTime  int64      `json:"start_time"`
	FileID     *EntityRef `json:"file_id,omitempty"`
	FileHash   []byte     `json:"file_hash,omitempty"`
	FreezeType int32      `json:"freeze_type"`
}

func (*FreezeBody) TransactionType() TransactionType { return TransactionTypeFreeze }

type UncheckedSubmitBody struct {
	TransactionBytes []byte `json:"transaction_bytes,omitempty"`
}

func (*UncheckedSubmitBody) TransactionType() TransactionType { return TransactionTypeUncheckedSubmit }
