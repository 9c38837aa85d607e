package types

import (
	"strconv"
	"strings"
)

// TransactionType is the ledger discriminant of a transaction body.
type TransactionType int32

const (
	TransactionTypeUnknown              TransactionType = -1
	TransactionTypeContractCall         TransactionType = 7
	TransactionTypeContractCreate       TransactionType = 8
	TransactionTypeContractUpdate       TransactionType = 9
	TransactionTypeCryptoAddLiveHash    TransactionType = 10
	TransactionTypeCryptoCreate         TransactionType = 11
	TransactionTypeCryptoDelete         TransactionType = 12
	TransactionTypeCryptoDeleteLiveHash TransactionType = 13
	TransactionTypeCryptoTransfer       TransactionType = 14
	TransactionTypeCryptoUpdate         TransactionType = 15
	TransactionTypeFileAppend           TransactionType = 16
	TransactionTypeFileCreate           TransactionType = 17
	TransactionTypeFileDelete           TransactionType = 18
	TransactionTypeFileUpdate           TransactionType = 19
	TransactionTypeSystemDelete         TransactionType = 20
	TransactionTypeSystemUndelete       TransactionType = 21
	TransactionTypeContractDelete       TransactionType = 22
	TransactionTypeFreeze               TransactionType = 23
	TransactionTypeConsensusCreateTopic TransactionType = 24
	TransactionTypeConsensusUpdateTopic TransactionType = 25
	TransactionTypeConsensusDeleteTopic TransactionType = 26
	TransactionTypeConsensusSubmitMsg   TransactionType = 27
	TransactionTypeUncheckedSubmit      TransactionType = 28
	TransactionTypeTokenCreate          TransactionType = 29
	TransactionTypeTokenFreeze          TransactionType = 31
	TransactionTypeTokenUnfreeze        TransactionType = 32
	TransactionTypeTokenGrantKyc        TransactionType = 33
	TransactionTypeTokenRevokeKyc       TransactionType = 34
	TransactionTypeTokenDelete          TransactionType = 35
	TransactionTypeTokenUpdate          TransactionType = 36
	TransactionTypeTokenMint            TransactionType = 37
	TransactionTypeTokenBurn            TransactionType = 38
	TransactionTypeTokenWipe            TransactionType = 39
	TransactionTypeTokenAssociate       TransactionType = 40
	TransactionTypeTokenDissociate      TransactionType = 41
	TransactionTypeScheduleCreate       TransactionType = 42
	TransactionTypeScheduleDelete       TransactionType = 43
	TransactionTypeScheduleSign         TransactionType = 44
	TransactionTypeTokenFeeScheduleUpd  TransactionType = 45
	TransactionTypeTokenPause           TransactionType = 46
	TransactionTypeTokenUnpause         TransactionType = 47
	TransactionTypeCryptoApproveAllow   TransactionType = 48
	TransactionTypeCryptoDeleteAllow    TransactionType = 49
	TransactionTypeEthereumTransaction  TransactionType = 50
	TransactionTypeNodeStakeUpdate      TransactionType = 51
	TransactionTypeUtilPrng             TransactionType = 52
	TransactionTypeTokenUpdateNfts      TransactionType = 53
)

var transactionTypeNames = map[TransactionType]string{
	TransactionTypeUnknown:              "UNKNOWN",
	TransactionTypeContractCall:         "CONTRACTCALL",
	TransactionTypeContractCreate:       "CONTRACTCREATEINSTANCE",
	TransactionTypeContractUpdate:       "CONTRACTUPDATEINSTANCE",
	TransactionTypeCryptoAddLiveHash:    "CRYPTOADDLIVEHASH",
	TransactionTypeCryptoCreate:         "CRYPTOCREATEACCOUNT",
	TransactionTypeCryptoDelete:         "CRYPTODELETE",
	TransactionTypeCryptoDeleteLiveHash: "CRYPTODELETELIVEHASH",
	TransactionTypeCryptoTransfer:       "CRYPTOTRANSFER",
	TransactionTypeCryptoUpdate:         "CRYPTOUPDATEACCOUNT",
	TransactionTypeFileAppend:           "FILEAPPEND",
	TransactionTypeFileCreate:           "FILECREATE",
	TransactionTypeFileDelete:           "FILEDELETE",
	TransactionTypeFileUpdate:           "FILEUPDATE",
	TransactionTypeSystemDelete:         "SYSTEMDELETE",
	TransactionTypeSystemUndelete:       "SYSTEMUNDELETE",
	TransactionTypeContractDelete:       "CONTRACTDELETEINSTANCE",
	TransactionTypeFreeze:               "FREEZE",
	TransactionTypeConsensusCreateTopic: "CONSENSUSCREATETOPIC",
	TransactionTypeConsensusUpdateTopic: "CONSENSUSUPDATETOPIC",
	TransactionTypeConsensusDeleteTopic: "CONSENSUSDELETETOPIC",
	TransactionTypeConsensusSubmitMsg:   "CONSENSUSSUBMITMESSAGE",
	TransactionTypeUncheckedSubmit:      "UNCHECKEDSUBMIT",
	TransactionTypeTokenCreate:          "TOKENCREATION",
	TransactionTypeTokenFreeze:          "TOKENFREEZE",
	TransactionTypeTokenUnfreeze:        "TOKENUNFREEZE",
	TransactionTypeTokenGrantKyc:        "TOKENGRANTKYC",
	TransactionTypeTokenRevokeKyc:       "TOKENREVOKEKYC",
	TransactionTypeTokenDelete:          "TOKENDELETION",
	TransactionTypeTokenUpdate:          "TOKENUPDATE",
	TransactionTypeTokenMint:            "TOKENMINT",
	TransactionTypeTokenBurn:            "TOKENBURN",
	TransactionTypeTokenWipe:            "TOKENWIPE",
	TransactionTypeTokenAssociate:       "TOKENASSOCIATE",
	TransactionTypeTokenDissociate:      "TOKENDISSOCIATE",
	TransactionTypeScheduleCreate:       "SCHEDULECREATE",
	TransactionTypeScheduleDelete:       "SCHEDULEDELETE",
	TransactionTypeScheduleSign:         "SCHEDULESIGN",
	TransactionTypeTokenFeeScheduleUpd:  "TOKENFEESCHEDULEUPDATE",
	TransactionTypeTokenPause:           "TOKENPAUSE",
	TransactionTypeTokenUnpause:         "TOKENUNPAUSE",
	TransactionTypeCryptoApproveAllow:   "CRYPTOAPPROVEALLOWANCE",
	TransactionTypeCryptoDeleteAllow:    "CRYPTODELETEALLOWANCE",
	TransactionTypeEthereumTransaction:  "ETHEREUMTRANSACTION",
	TransactionTypeNodeStakeUpdate:      "NODESTAKEUPDATE",
	TransactionTypeUtilPrng:             "UTILPRNG",
	TransactionTypeTokenUpdateNfts:      "TOKENUPDATENFTS",
}

var transactionTypeValues = func() map[string]TransactionType {
	values := make(map[string]TransactionType, len(transactionTypeNames))
	for t, name := range transactionTypeNames {
		values[name] = t
	}
	return values
}()

func (t TransactionType) String() string {
	if name, ok := transactionTypeNames[t]; ok {
		return name
	}
	return "UNKNOWN(" + strconv.Itoa(int(t)) + ")"
}

// ParseTransactionType parses a ledger transaction type name, e.g. "CRYPTOTRANSFER".
func ParseTransactionType(s string) (TransactionType, bool) {
	t, ok := transactionTypeValues[strings.ToUpper(strings.TrimSpace(s))]
	return t, ok
}
