package handler

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ledger-importer/common/errs"
	"github.com/gaze-network/ledger-importer/core/types"
	"github.com/gaze-network/ledger-importer/modules/importer/config"
	"github.com/gaze-network/ledger-importer/modules/importer/domain"
	"github.com/gaze-network/ledger-importer/modules/importer/entityid"
	"github.com/gaze-network/ledger-importer/modules/importer/parsercontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const payerNum = 2

func ref(num int64) types.EntityRef {
	return types.EntityRef{Num: num}
}

func account(num int64) types.AccountID {
	return types.AccountID{EntityRef: ref(num)}
}

func id(num int64) entityid.EntityId {
	return entityid.MustNew(0, 0, num)
}

func newItem(ts int64, b types.Body, status types.ResponseCode) *types.RecordItem {
	return &types.RecordItem{
		ConsensusTimestamp: ts,
		Transaction: types.TransactionBody{
			TransactionID: types.TransactionID{AccountID: account(payerNum), ValidStartNs: ts - 10},
			Data:          b,
		},
		Record: types.TransactionRecord{
			ConsensusTimestamp: ts,
			Receipt:            types.TransactionReceipt{Status: status},
		},
	}
}

type testEnv struct {
	*Env
	pc *parsercontext.Context
}

func newEnv(t *testing.T, item *types.RecordItem, opts ...func(*config.Config)) testEnv {
	t.Helper()
	cfg := config.Default()
	for _, opt := range opts {
		opt(&cfg)
	}
	pc := parsercontext.New()
	resolver := entityid.NewResolver(0, 0, cfg.PartialDataPolicy, nil)
	return testEnv{
		Env: &Env{
			Item:    item,
			Lookup:  resolver.Bind(pc, nil),
			Config:  &cfg,
			Context: pc,
			Payer:   id(payerNum),
		},
		pc: pc,
	}
}

// run drives a handler the way the processor does.
func run(t *testing.T, env *Env) (*domain.Transaction, []domain.Model, error) {
	t.Helper()
	ctx := context.Background()
	h := Default().Get(env.Item.TransactionType())
	tx := &domain.Transaction{ConsensusTimestamp: env.Timestamp(), PayerAccountId: env.Payer}
	if env.Successful() {
		entityId, err := h.EntityId(ctx, env)
		if err != nil {
			return tx, nil, err
		}
		tx.EntityId = &entityId
	}
	models, err := h.Mutations(ctx, env, tx)
	return tx, models, err
}

func ofType[T domain.Model](models []domain.Model) []T {
	var out []T
	for _, m := range models {
		if v, ok := m.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

func TestRegistry(t *testing.T) {
	r := Default()
	for _, typ := range r.Types() {
		assert.Equal(t, typ, r.Get(typ).Type())
	}
	assert.Contains(t, r.Types(), types.TransactionTypeCryptoTransfer)
	assert.Contains(t, r.Types(), types.TransactionTypeEthereumTransaction)
	assert.Contains(t, r.Types(), types.TransactionTypeNodeStakeUpdate)

	fallback := r.Get(types.TransactionType(999))
	assert.Equal(t, types.TransactionTypeUnknown, fallback.Type())

	custom := NewRegistry()
	require.NoError(t, custom.Register(&defaultHandler{base{types.TransactionTypeFreeze}}))
	err := custom.Register(&defaultHandler{base{types.TransactionTypeFreeze}})
	assert.True(t, errors.Is(err, errs.ConflictSetting))
	assert.True(t, errors.Is(custom.Register(nil), errs.Precondition))
}

func TestUnexpectedBodyIsDataIntegrity(t *testing.T) {
	item := newItem(100, &types.CryptoCreateBody{}, types.ResponseCodeSuccess)
	env := newEnv(t, item)
	_, err := Default().Get(types.TransactionTypeCryptoUpdate).Mutations(context.Background(), env.Env, &domain.Transaction{})
	assert.True(t, errors.Is(err, errs.DataIntegrity))
}

func TestCryptoCreate(t *testing.T) {
	evm := make([]byte, 20)
	evm[0] = 0xab
	item := newItem(100, &types.CryptoCreateBody{
		Key:            []byte("key"),
		InitialBalance: 1000,
		Memo:           "hello",
		StakedNodeID:   domain.Ptr(int64(3)),
	}, types.ResponseCodeSuccess)
	item.Record.Receipt.AccountID = domain.Ptr(account(1001))
	item.Record.Alias = evm

	env := newEnv(t, item)
	tx, models, err := run(t, env.Env)
	require.NoError(t, err)
	assert.Equal(t, id(1001), *tx.EntityId)
	assert.Equal(t, int64(1000), tx.InitialBalance)

	entities := ofType[*domain.Entity](models)
	require.Len(t, entities, 1)
	entity := entities[0]
	assert.Equal(t, domain.EntityTypeAccount, entity.EntityType)
	assert.Equal(t, int64(100), *entity.CreatedTimestamp)
	assert.Equal(t, evm, entity.EvmAddress)
	assert.Nil(t, entity.Alias)
	assert.Equal(t, int64(3), *entity.StakedNodeId)
	assert.Equal(t, entityid.EmptyId, *entity.StakedAccountId)

	itemized := Default().Get(types.TransactionTypeCryptoCreate).(ItemizedTransferer).ItemizedTransfers(env.Env)
	assert.Equal(t, []types.AccountAmount{
		{AccountID: account(payerNum), Amount: -1000},
		{AccountID: account(1001), Amount: 1000},
	}, itemized)
}

func TestFailedTransactionHasNoEntityMutations(t *testing.T) {
	item := newItem(100, &types.CryptoUpdateBody{AccountID: account(1001), Memo: domain.Ptr("x")}, types.ResponseCodeInvalidSignature)
	tx, models, err := run(t, newEnv(t, item).Env)
	require.NoError(t, err)
	assert.Nil(t, tx.EntityId)
	assert.Empty(t, models)
}

func TestContractUpdateNeverAppliesFileId(t *testing.T) {
	item := newItem(100, &types.ContractUpdateBody{
		ContractID:     types.ContractID{EntityRef: ref(1001)},
		FileID:         domain.Ptr(ref(150)),
		Memo:           domain.Ptr("updated"),
		AdminKey:       []byte("admin"),
		ExpirationTime: domain.Ptr(int64(999)),
	}, types.ResponseCodeSuccess)

	_, models, err := run(t, newEnv(t, item).Env)
	require.NoError(t, err)
	require.Len(t, models, 1)
	entity := models[0].(*domain.Entity)
	assert.Equal(t, "updated", *entity.Memo)
	assert.Equal(t, []byte("admin"), entity.AdminKey)
	assert.Equal(t, int64(999), *entity.ExpirationTimestamp)
	assert.Nil(t, entity.CreatedTimestamp, "updates never set the created timestamp")
	assert.Empty(t, ofType[*domain.Contract](models))
}

func TestContractCreate(t *testing.T) {
	// create2 addresses, not long-zero
	resultEvm := make([]byte, 20)
	resultEvm[0], resultEvm[19] = 0xaa, 0x01
	sidecarEvm := make([]byte, 20)
	sidecarEvm[0], sidecarEvm[19] = 0xbb, 0x02

	newCreate := func(status types.ResponseCode) *types.RecordItem {
		item := newItem(200, &types.ContractCreateBody{
			FileID:         domain.Ptr(ref(150)),
			Gas:            100_000,
			InitialBalance: 10,
			Memo:           "contract",
		}, status)
		item.Record.Receipt.ContractID = &types.ContractID{EntityRef: ref(2001)}
		item.Record.ContractResult = &types.ContractFunctionResult{
			ContractID: &types.ContractID{EntityRef: ref(2001)},
			GasUsed:    50_000,
			Logs: []types.ContractLogInfo{
				{ContractID: types.ContractID{EntityRef: ref(2001)}, Topics: [][]byte{{0x01}, {0x02}}, Data: []byte{0xff}},
			},
		}
		return item
	}

	t.Run("result evm address wins", func(t *testing.T) {
		item := newCreate(types.ResponseCodeSuccess)
		item.Record.ContractResult.EvmAddress = resultEvm
		item.Sidecars = []types.SidecarRecord{{
			ConsensusTimestamp: 200,
			Bytecode: &types.ContractBytecode{
				ContractID:      types.ContractID{EntityRef: ref(2001), EvmAddress: sidecarEvm},
				RuntimeBytecode: []byte{0x60, 0x80},
			},
		}}

		_, models, err := run(t, newEnv(t, item).Env)
		require.NoError(t, err)

		entities := ofType[*domain.Entity](models)
		require.Len(t, entities, 1)
		assert.Equal(t, resultEvm, entities[0].EvmAddress)
		assert.Equal(t, int64(200), *entities[0].CreatedTimestamp)

		contracts := ofType[*domain.Contract](models)
		require.Len(t, contracts, 2, "create and bytecode sidecar")
		assert.Equal(t, id(150), *contracts[0].FileId)
		assert.Equal(t, []byte{0x60, 0x80}, contracts[1].RuntimeBytecode)

		results := ofType[*domain.ContractResult](models)
		require.Len(t, results, 1)
		assert.Equal(t, id(2001), results[0].ContractId)
		assert.Equal(t, int64(100_000), results[0].GasLimit)

		logs := ofType[*domain.ContractLog](models)
		require.Len(t, logs, 1)
		assert.Equal(t, []byte{0x02}, logs[0].Topic1)
		assert.Nil(t, logs[0].Topic2)
	})

	t.Run("sidecar evm address is the fallback", func(t *testing.T) {
		item := newCreate(types.ResponseCodeSuccess)
		item.Sidecars = []types.SidecarRecord{{
			Bytecode: &types.ContractBytecode{ContractID: types.ContractID{EntityRef: ref(2001), EvmAddress: sidecarEvm}},
		}}
		_, models, err := run(t, newEnv(t, item).Env)
		require.NoError(t, err)
		assert.Equal(t, sidecarEvm, ofType[*domain.Entity](models)[0].EvmAddress)
	})

	t.Run("failed create keeps the contract result", func(t *testing.T) {
		item := newCreate(types.ResponseCodeContractRevertExecuted)
		_, models, err := run(t, newEnv(t, item).Env)
		require.NoError(t, err)
		assert.Empty(t, ofType[*domain.Entity](models))
		assert.Len(t, ofType[*domain.ContractResult](models), 1)
	})

	t.Run("contract results disabled", func(t *testing.T) {
		item := newCreate(types.ResponseCodeSuccess)
		env := newEnv(t, item, func(c *config.Config) {
			c.Persist.ContractResults = false
			c.Persist.ContractLogs = false
		})
		_, models, err := run(t, env.Env)
		require.NoError(t, err)
		assert.Empty(t, ofType[*domain.ContractResult](models))
		assert.Empty(t, ofType[*domain.ContractLog](models))
		assert.Len(t, ofType[*domain.Entity](models), 1)
	})
}

func TestTokenMintSupply(t *testing.T) {
	token := ref(3001)

	t.Run("receipt total supply is authoritative", func(t *testing.T) {
		item := newItem(300, &types.TokenMintBody{Token: token, Amount: 50}, types.ResponseCodeSuccess)
		item.Record.Receipt.NewTotalSupply = domain.Ptr(int64(1234))
		env := newEnv(t, item)
		require.NoError(t, env.pc.Add(&domain.Token{TokenId: id(3001), TotalSupply: domain.Ptr(int64(100))}))

		_, models, err := run(t, env.Env)
		require.NoError(t, err)
		require.Len(t, models, 1)
		assert.Equal(t, int64(1234), *models[0].(*domain.Token).TotalSupply)
	})

	t.Run("computed from the pending total", func(t *testing.T) {
		item := newItem(300, &types.TokenMintBody{Token: token, Amount: 50}, types.ResponseCodeSuccess)
		env := newEnv(t, item)
		require.NoError(t, env.pc.Add(&domain.Token{TokenId: id(3001), TotalSupply: domain.Ptr(int64(100))}))

		_, models, err := run(t, env.Env)
		require.NoError(t, err)
		assert.Equal(t, int64(150), *models[0].(*domain.Token).TotalSupply)
	})

	t.Run("delta without pending total", func(t *testing.T) {
		item := newItem(300, &types.TokenBurnBody{Token: token, Amount: 7}, types.ResponseCodeSuccess)
		_, models, err := run(t, newEnv(t, item).Env)
		require.NoError(t, err)
		supply := models[0].(*domain.Token)
		assert.Nil(t, supply.TotalSupply)
		assert.Equal(t, int64(-7), supply.SupplyDelta)
	})

	t.Run("nft serials", func(t *testing.T) {
		item := newItem(300, &types.TokenMintBody{Token: token, Metadata: [][]byte{[]byte("a"), []byte("b")}}, types.ResponseCodeSuccess)
		item.Record.Receipt.SerialNumbers = []int64{1, 2}
		item.Record.Receipt.NewTotalSupply = domain.Ptr(int64(2))
		_, models, err := run(t, newEnv(t, item).Env)
		require.NoError(t, err)
		nfts := ofType[*domain.Nft](models)
		require.Len(t, nfts, 2)
		assert.Equal(t, []byte("b"), nfts[1].Metadata)
		assert.Equal(t, int64(300), *nfts[0].CreatedTimestamp)
	})
}

func TestTokenCreateTreasury(t *testing.T) {
	item := newItem(400, &types.TokenCreateBody{
		Name:          "Token",
		Symbol:        "TKN",
		InitialSupply: 1_000,
		Treasury:      account(1001),
		FreezeKey:     []byte("freeze"),
	}, types.ResponseCodeSuccess)
	item.Record.Receipt.TokenID = domain.Ptr(ref(3001))

	_, models, err := run(t, newEnv(t, item).Env)
	require.NoError(t, err)
	tokens := ofType[*domain.Token](models)
	require.Len(t, tokens, 1)
	assert.Equal(t, int64(1_000), *tokens[0].TotalSupply)
	assert.Equal(t, domain.TokenPauseStatusNotApplicable, *tokens[0].PauseStatus)

	accounts := ofType[*domain.TokenAccount](models)
	require.Len(t, accounts, 1)
	assert.Equal(t, id(1001), accounts[0].AccountId)
	assert.Equal(t, domain.FreezeStatusUnfrozen, *accounts[0].FreezeStatus)
	assert.Equal(t, domain.TokenStatusNotApplicable, *accounts[0].KycStatus)
}

func TestScheduleSignCollapsesDuplicatePrefixes(t *testing.T) {
	item := newItem(500, &types.ScheduleSignBody{ScheduleID: ref(4001)}, types.ResponseCodeSuccess)
	item.SignatureMap = []types.SignaturePair{
		{PubKeyPrefix: []byte{0x01}, Signature: []byte("first"), Type: 1},
		{PubKeyPrefix: []byte{0x02}, Signature: []byte("other"), Type: 1},
		{PubKeyPrefix: []byte{0x01}, Signature: []byte("second"), Type: 1},
	}

	_, models, err := run(t, newEnv(t, item).Env)
	require.NoError(t, err)
	signatures := ofType[*domain.TransactionSignature](models)
	require.Len(t, signatures, 2)
	assert.Equal(t, []byte("first"), signatures[0].Signature)
	assert.Equal(t, id(4001), signatures[0].EntityId)
}

func TestApproveAllowanceUnresolvedSpender(t *testing.T) {
	unknownAlias := types.AccountID{Alias: []byte("unknown-alias")}
	newApprove := func() *types.RecordItem {
		return newItem(600, &types.CryptoApproveAllowanceBody{
			CryptoAllowances: []types.CryptoAllowanceGrant{
				{Spender: unknownAlias, Amount: 5},
				{Spender: account(1002), Amount: 10},
			},
		}, types.ResponseCodeSuccess)
	}

	testCases := []struct {
		policy config.PartialDataPolicy
		count  int
		err    error
	}{
		{policy: config.PartialDataPolicyDefault, count: 1},
		{policy: config.PartialDataPolicySkip, count: 1},
		{policy: config.PartialDataPolicyError, err: errs.UnresolvedReference},
	}
	for _, tc := range testCases {
		t.Run(string(tc.policy), func(t *testing.T) {
			env := newEnv(t, newApprove(), func(c *config.Config) { c.PartialDataPolicy = tc.policy })
			_, models, err := run(t, env.Env)
			if tc.err != nil {
				assert.True(t, errors.Is(err, tc.err))
				assert.True(t, errors.Is(err, errs.DataIntegrity))
				return
			}
			require.NoError(t, err)
			allowances := ofType[*domain.CryptoAllowance](models)
			require.Len(t, allowances, tc.count)
			assert.Equal(t, id(1002), allowances[0].Spender)
			assert.Equal(t, id(payerNum), allowances[0].Owner)
		})
	}
}

func TestTopicSubmitMessage(t *testing.T) {
	item := newItem(700, &types.ConsensusSubmitMessageBody{
		TopicID: ref(5001),
		Message: []byte("hello"),
		ChunkInfo: &types.ChunkInfo{
			InitialTransactionID: types.TransactionID{AccountID: account(payerNum), ValidStartNs: 1_500_000_000_000_000_001},
			Number:               1,
			Total:                2,
		},
	}, types.ResponseCodeSuccess)
	item.Record.Receipt.TopicSequenceNumber = 9
	item.Record.Receipt.TopicRunningHashVersion = 3

	_, models, err := run(t, newEnv(t, item).Env)
	require.NoError(t, err)
	require.Len(t, models, 1)
	message := models[0].(*domain.TopicMessage)
	assert.Equal(t, id(5001), message.TopicId)
	assert.Equal(t, int64(9), message.SequenceNumber)
	assert.Equal(t, "0.0.2@1500000000.000000001", *message.InitialTransactionId)

	_, models, err = run(t, newEnv(t, item, func(c *config.Config) { c.Persist.TopicMessages = false }).Env)
	require.NoError(t, err)
	assert.Empty(t, models)
}

func TestFileDataPersistFlags(t *testing.T) {
	testCases := []struct {
		name        string
		fileNum     int64
		files       bool
		systemFiles bool
		expected    int
	}{
		{name: "all files", fileNum: 5000, files: true, expected: 1},
		{name: "files disabled", fileNum: 5000, systemFiles: true, expected: 0},
		{name: "system file", fileNum: 102, systemFiles: true, expected: 1},
		{name: "nothing", fileNum: 102, expected: 0},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			item := newItem(800, &types.FileAppendBody{FileID: ref(tc.fileNum), Contents: []byte("data")}, types.ResponseCodeSuccess)
			env := newEnv(t, item, func(c *config.Config) {
				c.Persist.Files = tc.files
				c.Persist.SystemFiles = tc.systemFiles
			})
			_, models, err := run(t, env.Env)
			require.NoError(t, err)
			assert.Len(t, ofType[*domain.FileData](models), tc.expected)
		})
	}
}

func TestSkipOmitsOnlyDependentRecord(t *testing.T) {
	skip := func(c *config.Config) { c.PartialDataPolicy = config.PartialDataPolicySkip }
	unbound := &types.AccountID{Alias: []byte("unbound-alias")}

	t.Run("contract auto renew account", func(t *testing.T) {
		item := newItem(200, &types.ContractCreateBody{
			Gas:                100_000,
			AutoRenewAccountID: unbound,
			ProxyAccountID:     unbound,
		}, types.ResponseCodeSuccess)
		item.Record.Receipt.ContractID = &types.ContractID{EntityRef: ref(2001)}
		item.Record.ContractResult = &types.ContractFunctionResult{
			ContractID: &types.ContractID{EntityRef: ref(2001)},
			Logs: []types.ContractLogInfo{
				{ContractID: types.ContractID{EntityRef: ref(2001)}, Data: []byte{0x01}},
			},
		}

		_, models, err := run(t, newEnv(t, item, skip).Env)
		require.NoError(t, err)
		entities := ofType[*domain.Entity](models)
		require.Len(t, entities, 1)
		assert.Equal(t, id(2001), entities[0].Id)
		assert.Nil(t, entities[0].AutoRenewAccountId)
		assert.Nil(t, entities[0].ProxyAccountId)
		assert.Len(t, ofType[*domain.Contract](models), 1)
		assert.Len(t, ofType[*domain.ContractResult](models), 1)
		assert.Len(t, ofType[*domain.ContractLog](models), 1)
	})

	t.Run("schedule payer", func(t *testing.T) {
		item := newItem(300, &types.ScheduleCreateBody{
			Memo:           "scheduled",
			PayerAccountID: unbound,
		}, types.ResponseCodeSuccess)
		item.Record.Receipt.ScheduleID = domain.Ptr(ref(4001))
		item.SignatureMap = []types.SignaturePair{{PubKeyPrefix: []byte{0x01}, Signature: []byte("sig"), Type: 1}}

		_, models, err := run(t, newEnv(t, item, skip).Env)
		require.NoError(t, err)
		assert.Empty(t, ofType[*domain.Schedule](models))
		require.Len(t, ofType[*domain.Entity](models), 1)
		assert.Len(t, ofType[*domain.TransactionSignature](models), 1)
	})

	t.Run("schedule payer under ERROR", func(t *testing.T) {
		item := newItem(300, &types.ScheduleCreateBody{PayerAccountID: unbound}, types.ResponseCodeSuccess)
		item.Record.Receipt.ScheduleID = domain.Ptr(ref(4001))

		_, _, err := run(t, newEnv(t, item, func(c *config.Config) { c.PartialDataPolicy = config.PartialDataPolicyError }).Env)
		assert.True(t, errors.Is(err, errs.DataIntegrity))
		assert.False(t, IsSkip(err))
	})
}
