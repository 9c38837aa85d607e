package domain

import "strconv"

// Type identifies a domain entity type. Every Type is persisted to its own table.
type Type int

const (
	TypeEntity Type = iota + 1
	TypeContract
	TypeSchedule
	TypeToken
	TypeTokenAccount
	TypeNft
	TypeCryptoAllowance
	TypeTokenAllowance
	TypeNftAllowance
	TypeTransaction
	TypeTransactionSignature
	TypeCryptoTransfer
	TypeNonFeeTransfer
	TypeStakingRewardTransfer
	TypeTokenTransfer
	TypeNftTransfer
	TypeAssessedCustomFee
	TypeContractResult
	TypeContractLog
	TypeContractStateChange
	TypeEthereumTransaction
	TypeFileData
	TypeTopicMessage
	TypePrng
	TypeNodeStake
	TypeEntityTransaction
	TypeRecordFile
)

var typeNames = map[Type]string{
	TypeEntity:                "entity",
	TypeContract:              "contract",
	TypeSchedule:              "schedule",
	TypeToken:                 "token",
	TypeTokenAccount:          "token_account",
	TypeNft:                   "nft",
	TypeCryptoAllowance:       "crypto_allowance",
	TypeTokenAllowance:        "token_allowance",
	TypeNftAllowance:          "nft_allowance",
	TypeTransaction:           "transaction",
	TypeTransactionSignature:  "transaction_signature",
	TypeCryptoTransfer:        "crypto_transfer",
	TypeNonFeeTransfer:        "non_fee_transfer",
	TypeStakingRewardTransfer: "staking_reward_transfer",
	TypeTokenTransfer:         "token_transfer",
	TypeNftTransfer:           "nft_transfer",
	TypeAssessedCustomFee:     "assessed_custom_fee",
	TypeContractResult:        "contract_result",
	TypeContractLog:           "contract_log",
	TypeContractStateChange:   "contract_state_change",
	TypeEthereumTransaction:   "ethereum_transaction",
	TypeFileData:              "file_data",
	TypeTopicMessage:          "topic_message",
	TypePrng:                  "prng",
	TypeNodeStake:             "node_stake",
	TypeEntityTransaction:     "entity_transaction",
	TypeRecordFile:            "record_file",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "type_" + strconv.Itoa(int(t))
}

// Known reports whether t is a member of the domain.
func (t Type) Known() bool {
	_, ok := typeNames[t]
	return ok
}
