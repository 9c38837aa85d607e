package types

import "strconv"

// ResponseCode is the ledger status of a transaction receipt.
type ResponseCode int32

const (
	ResponseCodeOK                            ResponseCode = 0
	ResponseCodeInvalidTransaction            ResponseCode = 1
	ResponseCodeInvalidSignature              ResponseCode = 7
	ResponseCodeInsufficientPayerBalance      ResponseCode = 10
	ResponseCodeDuplicateTransaction          ResponseCode = 11
	ResponseCodeInsufficientTxFee             ResponseCode = 9
	ResponseCodeInvalidAccountID              ResponseCode = 15
	ResponseCodeSuccess                       ResponseCode = 22
	ResponseCodeContractRevertExecuted        ResponseCode = 33
	ResponseCodeFeeScheduleFilePartUploaded   ResponseCode = 104
	ResponseCodeWrongNonce                    ResponseCode = 313
	ResponseCodeSuccessButMissingExpectedOper ResponseCode = 220
)

var responseCodeNames = map[ResponseCode]string{
	ResponseCodeOK:                            "OK",
	ResponseCodeInvalidTransaction:            "INVALID_TRANSACTION",
	ResponseCodeInvalidSignature:              "INVALID_SIGNATURE",
	ResponseCodeInsufficientTxFee:             "INSUFFICIENT_TX_FEE",
	ResponseCodeInsufficientPayerBalance:      "INSUFFICIENT_PAYER_BALANCE",
	ResponseCodeDuplicateTransaction:          "DUPLICATE_TRANSACTION",
	ResponseCodeInvalidAccountID:              "INVALID_ACCOUNT_ID",
	ResponseCodeSuccess:                       "SUCCESS",
	ResponseCodeContractRevertExecuted:        "CONTRACT_REVERT_EXECUTED",
	ResponseCodeFeeScheduleFilePartUploaded:   "FEE_SCHEDULE_FILE_PART_UPLOADED",
	ResponseCodeSuccessButMissingExpectedOper: "SUCCESS_BUT_MISSING_EXPECTED_OPERATION",
	ResponseCodeWrongNonce:                    "WRONG_NONCE",
}

// IsSuccessful reports whether the ledger applied the transaction.
func (c ResponseCode) IsSuccessful() bool {
	switch c {
	case ResponseCodeSuccess, ResponseCodeFeeScheduleFilePartUploaded, ResponseCodeSuccessButMissingExpectedOper:
		return true
	default:
		return false
	}
}

func (c ResponseCode) String() string {
	if name, ok := responseCodeNames[c]; ok {
		return name
	}
	return strconv.Itoa(int(c))
}
