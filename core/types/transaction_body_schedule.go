package types

type ScheduleCreateBody struct {
	ScheduledTransactionBody []byte     `json:"scheduled_transaction_body,omitempty"`
	Memo                     string     `json:"memo,omitempty"`
	AdminKey                 []byte     `json:"admin_key,omitempty"`
	PayerAccountID           *AccountID `json:"payer_account_id,omitempty"`
	ExpirationTime           *int64     `json:"expiration_time,omitempty"`
	WaitForExpiry            bool       `json:"wait_for_expiry,omitempty"`
}

func (*ScheduleCreateBody) TransactionType() TransactionType { return TransactionTypeScheduleCreate }

type ScheduleSignBody struct {
	ScheduleID EntityRef `json:"schedule_id"`
}

func (*ScheduleSignBody) TransactionType() TransactionType { return TransactionTypeScheduleSign }

type ScheduleDeleteBody struct {
	ScheduleID EntityRef `json:"schedule_id"`
}

func (*ScheduleDeleteBody) TransactionType() TransactionType { return TransactionTypeScheduleDelete }
