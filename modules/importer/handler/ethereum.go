package handler

import (
	"context"
	"math/big"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/gaze-network/ledger-importer/common/errs"
	"github.com/gaze-network/ledger-importer/core/types"
	"github.com/gaze-network/ledger-importer/modules/importer/domain"
	"github.com/gaze-network/ledger-importer/modules/importer/entityid"
	"github.com/gaze-network/ledger-importer/pkg/logger"
	"github.com/gaze-network/ledger-importer/pkg/logger/slogx"
)

type ethereumTransactionHandler struct{ base }

func (h *ethereumTransactionHandler) EntityId(ctx context.Context, env *Env) (entityid.EntityId, error) {
	return createdContractId(ctx, env)
}

func (h *ethereumTransactionHandler) Mutations(ctx context.Context, env *Env, tx *domain.Transaction) ([]domain.Model, error) {
	b, err := body[*types.EthereumTransactionBody](env)
	if err != nil {
		return nil, err
	}
	// malformed bytes fail the record file even if the ledger rejected the transaction
	ethTx, err := DecodeEthereumTransaction(b.EthereumData)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	var models []domain.Model
	if env.Persist().EthereumTransactions {
		row, err := normalizeEthereumTransaction(ctx, env, b, ethTx)
		if err != nil {
			return nil, err
		}
		models = append(models, row)
	}

	contractId := entityid.EmptyId
	if tx.EntityId != nil {
		contractId = *tx.EntityId
	}
	gasLimit := int64(ethTx.Gas())
	results, err := contractResultMutations(ctx, env, contractId, contractCall{
		gasLimit:   gasLimit,
		parameters: ethTx.Data(),
	})
	if err != nil {
		return nil, err
	}
	models = append(models, results...)

	signer, err := h.signerNonce(ctx, env, ethTx)
	if err != nil {
		return nil, err
	}
	if signer != nil {
		models = append(models, signer)
	}
	return models, nil
}

// signerNonce tracks the nonce of the sender. The nonce reported by the ledger wins over the
// nonce derived from the transaction.
func (h *ethereumTransactionHandler) signerNonce(ctx context.Context, env *Env, ethTx *ethtypes.Transaction) (*domain.Entity, error) {
	result := env.Item.Record.ContractResult
	if result == nil || result.SenderID == nil {
		return nil, nil
	}
	var nonce int64
	switch {
	case result.SignerNonce != nil:
		nonce = *result.SignerNonce
	case env.Successful():
		nonce = int64(ethTx.Nonce()) + 1
	default:
		return nil, nil
	}
	sender, err := env.Account(ctx, *result.SenderID)
	if IsSkip(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "ethereum sender")
	}
	if sender.IsEmpty() {
		return nil, nil
	}
	return &domain.Entity{Id: sender, EthereumNonce: domain.Ptr(nonce)}, nil
}

// DecodeEthereumTransaction decodes legacy RLP or an EIP-2718 typed transaction envelope.
func DecodeEthereumTransaction(raw []byte) (*ethtypes.Transaction, error) {
	if len(raw) == 0 {
		return nil, errors.Wrap(errs.DataIntegrity, "empty ethereum transaction")
	}
	var tx ethtypes.Transaction
	if err := tx.UnmarshalBinary(raw); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "can't decode ethereum transaction"), errs.DataIntegrity)
	}
	return &tx, nil
}

func normalizeEthereumTransaction(ctx context.Context, env *Env, b *types.EthereumTransactionBody, ethTx *ethtypes.Transaction) (*domain.EthereumTransaction, error) {
	v, r, s := ethTx.RawSignatureValues()
	chainId := ethTx.ChainId()

	row := &domain.EthereumTransaction{
		ConsensusTimestamp: env.Timestamp(),
		Hash:               ethTx.Hash().Bytes(),
		TxType:             ethTx.Type(),
		ChainId:            bigBytes(chainId),
		Nonce:              int64(ethTx.Nonce()),
		GasLimit:           int64(ethTx.Gas()),
		Value:              bigBytes(ethTx.Value()),
		CallData:           ethTx.Data(),
		SignatureR:         common.LeftPadBytes(bigBytes(r), 32),
		SignatureS:         common.LeftPadBytes(bigBytes(s), 32),
		SignatureV:         bigBytes(v),
		RecoveryId:         recoveryId(ethTx.Type(), v, chainId),
		Data:               b.EthereumData,
		MaxGasAllowance:    b.MaxGasAllowance,
		PayerAccountId:     env.Payer,
	}
	if len(env.Item.Record.EthereumHash) > 0 {
		row.Hash = env.Item.Record.EthereumHash
	}
	if to := ethTx.To(); to != nil {
		row.ToAddress = to.Bytes()
	}

	switch ethTx.Type() {
	case ethtypes.LegacyTxType, ethtypes.AccessListTxType:
		row.GasPrice = bigBytes(ethTx.GasPrice())
	default:
		row.MaxFeePerGas = bigBytes(ethTx.GasFeeCap())
		row.MaxPriorityFeePerGas = bigBytes(ethTx.GasTipCap())
	}

	if accessList := ethTx.AccessList(); len(accessList) > 0 {
		encoded, err := rlp.EncodeToBytes(accessList)
		if err != nil {
			return nil, errors.Wrap(err, "can't encode access list")
		}
		row.AccessList = encoded
	}

	if b.CallData != nil {
		id, err := env.Entity(*b.CallData)
		if err != nil {
			return nil, errors.Wrap(err, "call data file")
		}
		row.CallDataId = &id
	}

	from, err := ethtypes.LatestSignerForChainID(chainId).Sender(ethTx)
	if err != nil {
		logger.DebugContext(ctx, "Can't recover ethereum transaction sender", slogx.Error(err))
	} else {
		row.FromAddress = from.Bytes()
	}
	return row, nil
}

// recoveryId normalizes the signature parity of legacy and typed transactions to 0 or 1.
func recoveryId(txType uint8, v, chainId *big.Int) *int32 {
	if v == nil {
		return nil
	}
	if txType != ethtypes.LegacyTxType {
		return domain.Ptr(int32(v.Int64()))
	}
	switch vv := v.Int64(); {
	case vv == 27 || vv == 28:
		return domain.Ptr(int32(vv - 27))
	case chainId != nil && chainId.Sign() > 0:
		// EIP-155: v = chainId*2 + 35 + parity
		parity := new(big.Int).Sub(v, new(big.Int).Add(new(big.Int).Mul(chainId, big.NewInt(2)), big.NewInt(35)))
		if parity.IsInt64() && (parity.Int64() == 0 || parity.Int64() == 1) {
			return domain.Ptr(int32(parity.Int64()))
		}
	}
	return nil
}

func bigBytes(v *big.Int) []byte {
	if v == nil || v.Sign() == 0 {
		return nil
	}
	return v.Bytes()
}
