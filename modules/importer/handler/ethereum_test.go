package handler

import (
	"math/big"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gaze-network/ledger-importer/common/errs"
	"github.com/gaze-network/ledger-importer/core/types"
	"github.com/gaze-network/ledger-importer/modules/importer/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testChainId = big.NewInt(295)

func signedEthereumTransaction(t *testing.T, inner ethtypes.TxData) ([]byte, common.Address) {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	tx, err := ethtypes.SignNewTx(key, ethtypes.LatestSignerForChainID(testChainId), inner)
	require.NoError(t, err)
	raw, err := tx.MarshalBinary()
	require.NoError(t, err)
	return raw, crypto.PubkeyToAddress(key.PublicKey)
}

func ethereumItem(raw []byte, status types.ResponseCode) *types.RecordItem {
	item := newItem(900, &types.EthereumTransactionBody{EthereumData: raw, MaxGasAllowance: 10}, status)
	item.Record.ContractResult = &types.ContractFunctionResult{
		ContractID: &types.ContractID{EntityRef: ref(2001)},
		GasUsed:    21_000,
		SenderID:   domain.Ptr(account(1001)),
	}
	return item
}

func TestEthereumTransactionNormalization(t *testing.T) {
	to := common.HexToAddress("0x00000000000000000000000000000000000007d1")

	testCases := []struct {
		name   string
		inner  ethtypes.TxData
		assert func(t *testing.T, row *domain.EthereumTransaction)
	}{
		{
			name: "legacy",
			inner: &ethtypes.LegacyTx{
				Nonce:    5,
				GasPrice: big.NewInt(100),
				Gas:      30_000,
				To:       &to,
				Value:    big.NewInt(1),
				Data:     []byte{0x01, 0x02},
			},
			assert: func(t *testing.T, row *domain.EthereumTransaction) {
				assert.Equal(t, uint8(ethtypes.LegacyTxType), row.TxType)
				assert.Equal(t, big.NewInt(100).Bytes(), row.GasPrice)
				assert.Nil(t, row.MaxFeePerGas)
				assert.Equal(t, big.NewInt(1).Bytes(), row.Value)
			},
		},
		{
			name: "dynamic fee",
			inner: &ethtypes.DynamicFeeTx{
				ChainID:   testChainId,
				Nonce:     5,
				GasTipCap: big.NewInt(2),
				GasFeeCap: big.NewInt(50),
				Gas:       30_000,
				To:        &to,
				Data:      []byte{0x01, 0x02},
				AccessList: ethtypes.AccessList{
					{Address: to, StorageKeys: []common.Hash{{0x01}}},
				},
			},
			assert: func(t *testing.T, row *domain.EthereumTransaction) {
				assert.Equal(t, uint8(ethtypes.DynamicFeeTxType), row.TxType)
				assert.Nil(t, row.GasPrice)
				assert.Equal(t, big.NewInt(50).Bytes(), row.MaxFeePerGas)
				assert.Equal(t, big.NewInt(2).Bytes(), row.MaxPriorityFeePerGas)
				assert.NotEmpty(t, row.AccessList)
				assert.Nil(t, row.Value)
			},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			raw, from := signedEthereumTransaction(t, tc.inner)
			_, models, err := run(t, newEnv(t, ethereumItem(raw, types.ResponseCodeSuccess)).Env)
			require.NoError(t, err)

			rows := ofType[*domain.EthereumTransaction](models)
			require.Len(t, rows, 1)
			row := rows[0]
			assert.Equal(t, testChainId.Bytes(), row.ChainId)
			assert.Equal(t, int64(5), row.Nonce)
			assert.Equal(t, int64(30_000), row.GasLimit)
			assert.Equal(t, to.Bytes(), row.ToAddress)
			assert.Equal(t, from.Bytes(), row.FromAddress)
			assert.Equal(t, []byte{0x01, 0x02}, row.CallData)
			assert.Len(t, row.SignatureR, 32)
			assert.Len(t, row.SignatureS, 32)
			require.NotNil(t, row.RecoveryId)
			assert.Contains(t, []int32{0, 1}, *row.RecoveryId)
			assert.Equal(t, raw, row.Data)
			tc.assert(t, row)

			results := ofType[*domain.ContractResult](models)
			require.Len(t, results, 1)
			assert.Equal(t, int64(30_000), results[0].GasLimit)

			// the sender nonce advances past the executed transaction
			entities := ofType[*domain.Entity](models)
			require.Len(t, entities, 1)
			assert.Equal(t, id(1001), entities[0].Id)
			assert.Equal(t, int64(6), *entities[0].EthereumNonce)
		})
	}
}

func TestEthereumTransactionSignerNonce(t *testing.T) {
	to := common.HexToAddress("0x00000000000000000000000000000000000007d1")
	raw, _ := signedEthereumTransaction(t, &ethtypes.LegacyTx{Nonce: 5, GasPrice: big.NewInt(1), Gas: 21_000, To: &to})

	t.Run("ledger reported nonce wins", func(t *testing.T) {
		item := ethereumItem(raw, types.ResponseCodeContractRevertExecuted)
		item.Record.ContractResult.SignerNonce = domain.Ptr(int64(42))
		_, models, err := run(t, newEnv(t, item).Env)
		require.NoError(t, err)
		entities := ofType[*domain.Entity](models)
		require.Len(t, entities, 1)
		assert.Equal(t, int64(42), *entities[0].EthereumNonce)
	})

	t.Run("failed without reported nonce", func(t *testing.T) {
		_, models, err := run(t, newEnv(t, ethereumItem(raw, types.ResponseCodeContractRevertExecuted)).Env)
		require.NoError(t, err)
		assert.Empty(t, ofType[*domain.Entity](models))
		assert.Len(t, ofType[*domain.ContractResult](models), 1, "failed transactions keep their contract result")
	})
}

func TestEthereumTransactionMalformed(t *testing.T) {
	testCases := []struct {
		name string
		raw  []byte
	}{
		{name: "empty", raw: nil},
		{name: "truncated rlp", raw: []byte{0xf8, 0x01, 0x02}},
		{name: "unknown envelope", raw: []byte{0x7f, 0x01}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// decoding applies to failed transactions too
			_, _, err := run(t, newEnv(t, ethereumItem(tc.raw, types.ResponseCodeWrongNonce)).Env)
			assert.True(t, errors.Is(err, errs.DataIntegrity))
		})
	}
}

func TestRecoveryId(t *testing.T) {
	testCases := []struct {
		name     string
		txType   uint8
		v        *big.Int
		chainId  *big.Int
		expected *int32
	}{
		{name: "pre eip-155", txType: ethtypes.LegacyTxType, v: big.NewInt(28), expected: domain.Ptr(int32(1))},
		{name: "eip-155", txType: ethtypes.LegacyTxType, v: big.NewInt(295*2 + 35), chainId: big.NewInt(295), expected: domain.Ptr(int32(0))},
		{name: "typed", txType: ethtypes.DynamicFeeTxType, v: big.NewInt(1), expected: domain.Ptr(int32(1))},
		{name: "invalid legacy", txType: ethtypes.LegacyTxType, v: big.NewInt(99), chainId: big.NewInt(295)},
		{name: "missing", txType: ethtypes.LegacyTxType},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, recoveryId(tc.txType, tc.v, tc.chainId))
		})
	}
}
