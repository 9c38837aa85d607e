package types

type TransactionReceipt struct {
	Status                  ResponseCode   `json:"status"`
	AccountID               *AccountID     `json:"account_id,omitempty"`
	FileID                  *EntityRef     `json:"file_id,omitempty"`
	ContractID              *ContractID    `json:"contract_id,omitempty"`
	TopicID                 *EntityRef     `json:"topic_id,omitempty"`
	TokenID                 *EntityRef     `json:"token_id,omitempty"`
	ScheduleID              *EntityRef     `json:"schedule_id,omitempty"`
	ScheduledTransactionID  *TransactionID `json:"scheduled_transaction_id,omitempty"`
	NewTotalSupply          *int64         `json:"new_total_supply,omitempty"`
	SerialNumbers           []int64        `json:"serial_numbers,omitempty"`
	TopicSequenceNumber     int64          `json:"topic_sequence_number,omitempty"`
	TopicRunningHash        []byte         `json:"topic_running_hash,omitempty"`
	TopicRunningHashVersion int64          `json:"topic_running_hash_version,omitempty"`
}

type ContractLogInfo struct {
	ContractID ContractID `json:"contract_id"`
	Bloom      []byte     `json:"bloom,omitempty"`
	Topics     [][]byte   `json:"topics,omitempty"`
	Data       []byte     `json:"data,omitempty"`
}

type ContractNonce struct {
	ContractID ContractID `json:"contract_id"`
	Nonce      int64      `json:"nonce"`
}

type ContractFunctionResult struct {
	ContractID         *ContractID       `json:"contract_id,omitempty"`
	ContractCallResult []byte            `json:"contract_call_result,omitempty"`
	ErrorMessage       string            `json:"error_message,omitempty"`
	Bloom              []byte            `json:"bloom,omitempty"`
	GasUsed            int64             `json:"gas_used"`
	Logs               []ContractLogInfo `json:"logs,omitempty"`
	CreatedContractIDs []ContractID      `json:"created_contract_ids,omitempty"`
	EvmAddress         []byte            `json:"evm_address,omitempty"`
	Gas                int64             `json:"gas,omitempty"`
	Amount             int64             `json:"amount,omitempty"`
	FunctionParameters []byte            `json:"function_parameters,omitempty"`
	SenderID           *AccountID        `json:"sender_id,omitempty"`
	ContractNonces     []ContractNonce   `json:"contract_nonces,omitempty"`
	SignerNonce        *int64            `json:"signer_nonce,omitempty"`
}

type AssessedCustomFee struct {
	Amount          int64       `json:"amount"`
	TokenID         *EntityRef  `json:"token_id,omitempty"`
	FeeCollector    AccountID   `json:"fee_collector"`
	EffectivePayers []AccountID `json:"effective_payers,omitempty"`
}

type TokenAssociation struct {
	TokenID   EntityRef `json:"token_id"`
	AccountID AccountID `json:"account_id"`
}

// TransactionRecord is the ledger's result of executing a transaction.
type TransactionRecord struct {
	ConsensusTimestamp         int64                   `json:"consensus_timestamp"`
	Receipt                    TransactionReceipt      `json:"receipt"`
	TransactionHash            []byte                  `json:"transaction_hash,omitempty"`
	TransactionFee             int64                   `json:"transaction_fee"`
	Memo                       string                  `json:"memo,omitempty"`
	TransferList               []AccountAmount         `json:"transfer_list,omitempty"`
	TokenTransferLists         []TokenTransferList     `json:"token_transfer_lists,omitempty"`
	ContractResult             *ContractFunctionResult `json:"contract_result,omitempty"`
	ParentConsensusTimestamp   int64                   `json:"parent_consensus_timestamp,omitempty"`
	Alias                      []byte                  `json:"alias,omitempty"`
	EvmAddress                 []byte                  `json:"evm_address,omitempty"`
	EthereumHash               []byte                  `json:"ethereum_hash,omitempty"`
	PaidStakingRewards         []AccountAmount         `json:"paid_staking_rewards,omitempty"`
	AssessedCustomFees         []AssessedCustomFee     `json:"assessed_custom_fees,omitempty"`
	AutomaticTokenAssociations []TokenAssociation      `json:"automatic_token_associations,omitempty"`
	PrngBytes                  []byte                  `json:"prng_bytes,omitempty"`
	PrngNumber                 *int32                  `json:"prng_number,omitempty"`
	ScheduleRef                *EntityRef              `json:"schedule_ref,omitempty"`
}

type StorageChange struct {
	Slot         []byte `json:"slot"`
	ValueRead    []byte `json:"value_read,omitempty"`
	ValueWritten []byte `json:"value_written,omitempty"`
}

type ContractStateChanges struct {
	ContractID     ContractID      `json:"contract_id"`
	StorageChanges []StorageChange `json:"storage_changes"`
}

type ContractBytecode struct {
	ContractID      ContractID `json:"contract_id"`
	Initcode        []byte     `json:"initcode,omitempty"`
	RuntimeBytecode []byte     `json:"runtime_bytecode,omitempty"`
}

// SidecarRecord holds additional execution detail of a transaction.
type SidecarRecord struct {
	ConsensusTimestamp int64                  `json:"consensus_timestamp"`
	Migration          bool                   `json:"migration,omitempty"`
	StateChanges       []ContractStateChanges `json:"state_changes,omitempty"`
	Bytecode           *ContractBytecode      `json:"bytecode,omitempty"`
}
