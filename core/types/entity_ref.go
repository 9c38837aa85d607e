package types

import "fmt"

// EntityRef is a ledger-native numeric shard.realm.num reference.
type EntityRef struct {
	Shard int64 `json:"shard"`
	Realm int64 `json:"realm"`
	Num   int64 `json:"num"`
}

func (r EntityRef) String() string {
	return fmt.Sprintf("%d.%d.%d", r.Shard, r.Realm, r.Num)
}

// AccountID references an account either by number or by alias bytes.
// When Alias is non-empty the numeric part is ignored.
type AccountID struct {
	EntityRef
	Alias []byte `json:"alias,omitempty"`
}

func (a AccountID) HasAlias() bool {
	return len(a.Alias) > 0
}

// ContractID references a contract either by number or by 20 bytes EVM address.
type ContractID struct {
	EntityRef
	EvmAddress []byte `json:"evm_address,omitempty"`
}

func (c ContractID) HasEvmAddress() bool {
	return len(c.EvmAddress) > 0
}

// TransactionID is the payer-assigned identity of a transaction.
type TransactionID struct {
	AccountID    AccountID `json:"account_id"`
	ValidStartNs int64     `json:"valid_start_ns"`
	Scheduled    bool      `json:"scheduled,omitempty"`
	Nonce        int32     `json:"nonce,omitempty"`
}
