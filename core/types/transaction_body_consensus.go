package types

type ConsensusCreateTopicBody struct {
	Memo             string     `json:"memo,omitempty"`
	AdminKey         []byte     `json:"admin_key,omitempty"`
	SubmitKey        []byte     `json:"submit_key,omitempty"`
	AutoRenewPeriod  *int64     `json:"auto_renew_period,omitempty"`
	AutoRenewAccount *AccountID `json:"auto_renew_account,omitempty"`
}

func (*ConsensusCreateTopicBody) TransactionType() TransactionType {
	return TransactionTypeConsensusCreateTopic
}

type ConsensusUpdateTopicBody struct {
	TopicID          EntityRef  `json:"topic_id"`
	Memo             *string    `json:"memo,omitempty"`
	ExpirationTime   *int64     `json:"expiration_time,omitempty"`
	AdminKey         []byte     `json:"admin_key,omitempty"`
	SubmitKey        []byte     `json:"submit_key,omitempty"`
	AutoRenewPeriod  *int64     `json:"auto_renew_period,omitempty"`
	AutoRenewAccount *AccountID `json:"auto_renew_account,omitempty"`
}

func (*ConsensusUpdateTopicBody) TransactionType() TransactionType {
	return TransactionTypeConsensusUpdateTopic
}

type ConsensusDeleteTopicBody struct {
	TopicID EntityRef `json:"topic_id"`
}

func (*ConsensusDeleteTopicBody) TransactionType() TransactionType {
	return TransactionTypeConsensusDeleteTopic
}

type ChunkInfo struct {
	InitialTransactionID TransactionID `json:"initial_transaction_id"`
	Number               int32         `json:"number"`
	Total                int32         `json:"total"`
}

type ConsensusSubmitMessageBody struct {
	TopicID   EntityRef  `json:"topic_id"`
	Message   []byte     `json:"message"`
	ChunkInfo *ChunkInfo `json:"chunk_info,omitempty"`
}

func (*ConsensusSubmitMessageBody) TransactionType() TransactionType {
	return TransactionTypeConsensusSubmitMsg
}
