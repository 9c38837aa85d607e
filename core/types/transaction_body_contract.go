package types

type ContractCreateBody struct {
	FileID                        *EntityRef `json:"file_id,omitempty"`
	Initcode                      []byte     `json:"initcode,omitempty"`
	AdminKey                      []byte     `json:"admin_key,omitempty"`
	Gas                           int64      `json:"gas"`
	InitialBalance                int64      `json:"initial_balance"`
	ProxyAccountID                *AccountID `json:"proxy_account_id,omitempty"`
	AutoRenewPeriod               *int64     `json:"auto_renew_period,omitempty"`
	ConstructorParameters         []byte     `json:"constructor_parameters,omitempty"`
	Memo                          string     `json:"memo,omitempty"`
	MaxAutomaticTokenAssociations int32      `json:"max_automatic_token_associations,omitempty"`
	AutoRenewAccountID            *AccountID `json:"auto_renew_account_id,omitempty"`
	StakedAccountID               *AccountID `json:"staked_account_id,omitempty"`
	StakedNodeID                  *int64     `json:"staked_node_id,omitempty"`
	DeclineReward                 bool       `json:"decline_reward,omitempty"`
}

func (*ContractCreateBody) TransactionType() TransactionType { return TransactionTypeContractCreate }

type ContractCallBody struct {
	ContractID         ContractID `json:"contract_id"`
	Gas                int64      `json:"gas"`
	Amount             int64      `json:"amount"`
	FunctionParameters []byte     `json:"function_parameters,omitempty"`
}

func (*ContractCallBody) TransactionType() TransactionType { return TransactionTypeContractCall }

// ContractUpdateBody uses nil for fields that are left unchanged.
// FileID is present on the wire but the ledger rejects it.
type ContractUpdateBody struct {
	ContractID                    ContractID `json:"contract_id"`
	ExpirationTime                *int64     `json:"expiration_time,omitempty"`
	AdminKey                      []byte     `json:"admin_key,omitempty"`
	ProxyAccountID                *AccountID `json:"proxy_account_id,omitempty"`
	AutoRenewPeriod               *int64     `json:"auto_renew_period,omitempty"`
	FileID                        *EntityRef `json:"file_id,omitempty"`
	Memo                          *string    `json:"memo,omitempty"`
	MaxAutomaticTokenAssociations *int32     `json:"max_automatic_token_associations,omitempty"`
	AutoRenewAccountID            *AccountID `json:"auto_renew_account_id,omitempty"`
	StakedAccountID               *AccountID `json:"staked_account_id,omitempty"`
	StakedNodeID                  *int64     `json:"staked_node_id,omitempty"`
	DeclineReward                 *bool      `json:"decline_reward,omitempty"`
}

func (*ContractUpdateBody) TransactionType() TransactionType { return TransactionTypeContractUpdate }

type ContractDeleteBody struct {
	ContractID         ContractID  `json:"contract_id"`
	TransferAccountID  *AccountID  `json:"transfer_account_id,omitempty"`
	TransferContractID *ContractID `json:"transfer_contract_id,omitempty"`
	PermanentRemoval   bool        `json:"permanent_removal,omitempty"`
}

func (*ContractDeleteBody) TransactionType() TransactionType { return TransactionTypeContractDelete }

// EthereumTransactionBody carries raw RLP bytes. When CallData is set the call data
// was offloaded into a file because it didn't fit into the transaction.
type EthereumTransactionBody struct {
	EthereumData    []byte     `json:"ethereum_data"`
	CallData        *EntityRef `json:"call_data,omitempty"`
	MaxGasAllowance int64      `json:"max_gas_allowance"`
}

func (*EthereumTransactionBody) TransactionType() TransactionType {
	return TransactionTypeEthereumTransaction
}
