package types

type CryptoCreateBody struct {
	Key                           []byte     `json:"key,omitempty"`
	Alias                         []byte     `json:"alias,omitempty"`
	InitialBalance                int64      `json:"initial_balance"`
	ProxyAccountID                *AccountID `json:"proxy_account_id,omitempty"`
	AutoRenewPeriod               *int64     `json:"auto_renew_period,omitempty"`
	ReceiverSigRequired           bool       `json:"receiver_sig_required,omitempty"`
	Memo                          string     `json:"memo,omitempty"`
	MaxAutomaticTokenAssociations int32      `json:"max_automatic_token_associations,omitempty"`
	StakedAccountID               *AccountID `json:"staked_account_id,omitempty"`
	StakedNodeID                  *int64     `json:"staked_node_id,omitempty"`
	DeclineReward                 bool       `json:"decline_reward,omitempty"`
}

func (*CryptoCreateBody) TransactionType() TransactionType { return TransactionTypeCryptoCreate }

// CryptoUpdateBody uses nil for fields that are left unchanged.
type CryptoUpdateBody struct {
	AccountID                     AccountID  `json:"account_id"`
	Key                           []byte     `json:"key,omitempty"`
	ProxyAccountID                *AccountID `json:"proxy_account_id,omitempty"`
	AutoRenewPeriod               *int64     `json:"auto_renew_period,omitempty"`
	ExpirationTime                *int64     `json:"expiration_time,omitempty"`
	ReceiverSigRequired           *bool      `json:"receiver_sig_required,omitempty"`
	Memo                          *string    `json:"memo,omitempty"`
	MaxAutomaticTokenAssociations *int32     `json:"max_automatic_token_associations,omitempty"`
	StakedAccountID               *AccountID `json:"staked_account_id,omitempty"`
	StakedNodeID                  *int64     `json:"staked_node_id,omitempty"`
	DeclineReward                 *bool      `json:"decline_reward,omitempty"`
}

func (*CryptoUpdateBody) TransactionType() TransactionType { return TransactionTypeCryptoUpdate }

type CryptoDeleteBody struct {
	DeleteAccountID   AccountID `json:"delete_account_id"`
	TransferAccountID AccountID `json:"transfer_account_id"`
}

func (*CryptoDeleteBody) TransactionType() TransactionType { return TransactionTypeCryptoDelete }

type AccountAmount struct {
	AccountID  AccountID `json:"account_id"`
	Amount     int64     `json:"amount"`
	IsApproval bool      `json:"is_approval,omitempty"`
}

type NftTransferEntry struct {
	Sender       AccountID `json:"sender"`
	Receiver     AccountID `json:"receiver"`
	SerialNumber int64     `json:"serial_number"`
	IsApproval   bool      `json:"is_approval,omitempty"`
}

type TokenTransferList struct {
	Token            EntityRef          `json:"token"`
	Transfers        []AccountAmount    `json:"transfers,omitempty"`
	NftTransfers     []NftTransferEntry `json:"nft_transfers,omitempty"`
	ExpectedDecimals *uint32            `json:"expected_decimals,omitempty"`
}

type CryptoTransferBody struct {
	Transfers      []AccountAmount     `json:"transfers,omitempty"`
	TokenTransfers []TokenTransferList `json:"token_transfers,omitempty"`
}

func (*CryptoTransferBody) TransactionType() TransactionType { return TransactionTypeCryptoTransfer }

type CryptoAllowanceGrant struct {
	Owner   *AccountID `json:"owner,omitempty"`
	Spender AccountID  `json:"spender"`
	Amount  int64      `json:"amount"`
}

type TokenAllowanceGrant struct {
	TokenID EntityRef  `json:"token_id"`
	Owner   *AccountID `json:"owner,omitempty"`
	Spender AccountID  `json:"spender"`
	Amount  int64      `json:"amount"`
}

type NftAllowanceGrant struct {
	TokenID           EntityRef  `json:"token_id"`
	Owner             *AccountID `json:"owner,omitempty"`
	Spender           AccountID  `json:"spender"`
	SerialNumbers     []int64    `json:"serial_numbers,omitempty"`
	ApprovedForAll    *bool      `json:"approved_for_all,omitempty"`
	DelegatingSpender *AccountID `json:"delegating_spender,omitempty"`
}

type CryptoApproveAllowanceBody struct {
	CryptoAllowances []CryptoAllowanceGrant `json:"crypto_allowances,omitempty"`
	TokenAllowances  []TokenAllowanceGrant  `json:"token_allowances,omitempty"`
	NftAllowances    []NftAllowanceGrant    `json:"nft_allowances,omitempty"`
}

func (*CryptoApproveAllowanceBody) TransactionType() TransactionType {
	return TransactionTypeCryptoApproveAllow
}

type NftRemoveAllowance struct {
	TokenID       EntityRef  `json:"token_id"`
	Owner         *AccountID `json:"owner,omitempty"`
	SerialNumbers []int64    `json:"serial_numbers,omitempty"`
}

type CryptoDeleteAllowanceBody struct {
	NftAllowances []NftRemoveAllowance `json:"nft_allowances,omitempty"`
}

func (*CryptoDeleteAllowanceBody) TransactionType() TransactionType {
	return TransactionTypeCryptoDeleteAllow
}
