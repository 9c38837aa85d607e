package types

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ledger-importer/common/errs"
)

// Body is the type specific part of a transaction. Every transaction type has exactly one Body implementation.
type Body interface {
	TransactionType() TransactionType
}

// TransactionBody is the decoded signed transaction body.
type TransactionBody struct {
	TransactionID        TransactionID `json:"transaction_id"`
	NodeAccountID        AccountID     `json:"node_account_id"`
	MaxFee               int64         `json:"max_fee"`
	ValidDurationSeconds int64         `json:"valid_duration_seconds"`
	Memo                 string        `json:"memo,omitempty"`
	Data                 Body          `json:"-"`
}

func (b *TransactionBody) TransactionType() TransactionType {
	if b == nil || b.Data == nil {
		return TransactionTypeUnknown
	}
	return b.Data.TransactionType()
}

type transactionBodyJSON struct {
	TransactionID        TransactionID   `json:"transaction_id"`
	NodeAccountID        AccountID       `json:"node_account_id"`
	MaxFee               int64           `json:"max_fee"`
	ValidDurationSeconds int64           `json:"valid_duration_seconds"`
	Memo                 string          `json:"memo,omitempty"`
	Type                 string          `json:"type"`
	Data                 json.RawMessage `json:"data,omitempty"`
}

func (b TransactionBody) MarshalJSON() ([]byte, error) {
	out := transactionBodyJSON{
		TransactionID:        b.TransactionID,
		NodeAccountID:        b.NodeAccountID,
		MaxFee:               b.MaxFee,
		ValidDurationSeconds: b.ValidDurationSeconds,
		Memo:                 b.Memo,
		Type:                 b.TransactionType().String(),
	}
	if b.Data != nil {
		data, err := json.Marshal(b.Data)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		out.Data = data
	}
	return json.Marshal(out)
}

func (b *TransactionBody) UnmarshalJSON(data []byte) error {
	var in transactionBodyJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return errors.WithStack(err)
	}
	b.TransactionID = in.TransactionID
	b.NodeAccountID = in.NodeAccountID
	b.MaxFee = in.MaxFee
	b.ValidDurationSeconds = in.ValidDurationSeconds
	b.Memo = in.Memo
	b.Data = nil

	t, ok := ParseTransactionType(in.Type)
	if !ok {
		// unknown bodies are kept as opaque payloads, they are still persisted as Transaction rows
		b.Data = &UnknownBody{Type: TransactionTypeUnknown, Raw: in.Data}
		return nil
	}
	factory, ok := bodyFactories[t]
	if !ok {
		b.Data = &UnknownBody{Type: t, Raw: in.Data}
		return nil
	}
	body := factory()
	if len(in.Data) > 0 {
		if err := json.Unmarshal(in.Data, body); err != nil {
			return errors.Wrapf(errs.DataIntegrity, "can't decode %s body: %v", t, err)
		}
	}
	b.Data = body
	return nil
}

var bodyFactories = map[TransactionType]func() Body{
	TransactionTypeContractCall:         func() Body { return &ContractCallBody{} },
	TransactionTypeContractCreate:       func() Body { return &ContractCreateBody{} },
	TransactionTypeContractUpdate:       func() Body { return &ContractUpdateBody{} },
	TransactionTypeContractDelete:       func() Body { return &ContractDeleteBody{} },
	TransactionTypeEthereumTransaction:  func() Body { return &EthereumTransactionBody{} },
	TransactionTypeCryptoCreate:         func() Body { return &CryptoCreateBody{} },
	TransactionTypeCryptoUpdate:         func() Body { return &CryptoUpdateBody{} },
	TransactionTypeCryptoDelete:         func() Body { return &CryptoDeleteBody{} },
	TransactionTypeCryptoTransfer:       func() Body { return &CryptoTransferBody{} },
	TransactionTypeCryptoApproveAllow:   func() Body { return &CryptoApproveAllowanceBody{} },
	TransactionTypeCryptoDeleteAllow:    func() Body { return &CryptoDeleteAllowanceBody{} },
	TransactionTypeFileCreate:           func() Body { return &FileCreateBody{} },
	TransactionTypeFileAppend:           func() Body { return &FileAppendBody{} },
	TransactionTypeFileUpdate:           func() Body { return &FileUpdateBody{} },
	TransactionTypeFileDelete:           func() Body { return &FileDeleteBody{} },
	TransactionTypeSystemDelete:         func() Body { return &SystemDeleteBody{} },
	TransactionTypeSystemUndelete:       func() Body { return &SystemUndeleteBody{} },
	TransactionTypeFreeze:               func() Body { return &FreezeBody{} },
	TransactionTypeUncheckedSubmit:      func() Body { return &UncheckedSubmitBody{} },
	TransactionTypeConsensusCreateTopic: func() Body { return &ConsensusCreateTopicBody{} },
	TransactionTypeConsensusUpdateTopic: func() Body { return &ConsensusUpdateTopicBody{} },
	TransactionTypeConsensusDeleteTopic: func() Body { return &ConsensusDeleteTopicBody{} },
	TransactionTypeConsensusSubmitMsg:   func() Body { return &ConsensusSubmitMessageBody{} },
	TransactionTypeTokenCreate:          func() Body { return &TokenCreateBody{} },
	TransactionTypeTokenUpdate:          func() Body { return &TokenUpdateBody{} },
	TransactionTypeTokenMint:            func() Body { return &TokenMintBody{} },
	TransactionTypeTokenBurn:            func() Body { return &TokenBurnBody{} },
	TransactionTypeTokenWipe:            func() Body { return &TokenWipeBody{} },
	TransactionTypeTokenAssociate:       func() Body { return &TokenAssociateBody{} },
	TransactionTypeTokenDissociate:      func() Body { return &TokenDissociateBody{} },
	TransactionTypeTokenFreeze:          func() Body { return &TokenFreezeBody{} },
	TransactionTypeTokenUnfreeze:        func() Body { return &TokenUnfreezeBody{} },
	TransactionTypeTokenGrantKyc:        func() Body { return &TokenGrantKycBody{} },
	TransactionTypeTokenRevokeKyc:       func() Body { return &TokenRevokeKycBody{} },
	TransactionTypeTokenDelete:          func() Body { return &TokenDeleteBody{} },
	TransactionTypeTokenPause:           func() Body { return &TokenPauseBody{} },
	TransactionTypeTokenUnpause:         func() Body { return &TokenUnpauseBody{} },
	TransactionTypeTokenFeeScheduleUpd:  func() Body { return &TokenFeeScheduleUpdateBody{} },
	TransactionTypeTokenUpdateNfts:      func() Body { return &TokenUpdateNftsBody{} },
	TransactionTypeScheduleCreate:       func() Body { return &ScheduleCreateBody{} },
	TransactionTypeScheduleSign:         func() Body { return &ScheduleSignBody{} },
	TransactionTypeScheduleDelete:       func() Body { return &ScheduleDeleteBody{} },
	TransactionTypeUtilPrng:             func() Body { return &UtilPrngBody{} },
	TransactionTypeNodeStakeUpdate:      func() Body { return &NodeStakeUpdateBody{} },
}

// UnknownBody carries a body whose type this importer doesn't understand.
type UnknownBody struct {
	Type TransactionType
	Raw  json.RawMessage
}

func (b *UnknownBody) TransactionType() TransactionType { return b.Type }

func (b *UnknownBody) MarshalJSON() ([]byte, error) {
	if len(b.Raw) == 0 {
		return []byte("null"), nil
	}
	return b.Raw, nil
}
