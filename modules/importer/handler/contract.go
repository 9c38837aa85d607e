package handler

import (
	"bytes"
	"context"
	"encoding/hex"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ledger-importer/core/types"
	"github.com/gaze-network/ledger-importer/modules/importer/domain"
	"github.com/gaze-network/ledger-importer/modules/importer/entityid"
	"github.com/gaze-network/ledger-importer/pkg/logger"
	"github.com/gaze-network/ledger-importer/pkg/logger/slogx"
)

type contractCreateHandler struct{ base }

func (h *contractCreateHandler) EntityId(ctx context.Context, env *Env) (entityid.EntityId, error) {
	return createdContractId(ctx, env)
}

func (h *contractCreateHandler) Mutations(ctx context.Context, env *Env, tx *domain.Transaction) ([]domain.Model, error) {
	b, err := body[*types.ContractCreateBody](env)
	if err != nil {
		return nil, err
	}
	tx.InitialBalance = b.InitialBalance

	var models []domain.Model
	if env.Successful() && tx.EntityId != nil && !tx.EntityId.IsEmpty() {
		id := *tx.EntityId
		entity := createdEntity(env, id, domain.EntityTypeContract)
		entity.AdminKey = b.AdminKey
		entity.Memo = domain.Ptr(b.Memo)
		entity.AutoRenewPeriod = b.AutoRenewPeriod
		entity.MaxAutomaticTokenAssociations = domain.Ptr(b.MaxAutomaticTokenAssociations)
		entity.DeclineReward = domain.Ptr(b.DeclineReward)
		entity.EvmAddress = contractEvmAddress(ctx, env, id)
		entity.EthereumNonce = domain.Ptr(int64(1))
		if entity.ProxyAccountId, err = env.OptionalAccount(ctx, b.ProxyAccountID); err != nil {
			return nil, errors.Wrap(err, "proxy account")
		}
		if entity.AutoRenewAccountId, err = env.OptionalAccount(ctx, b.AutoRenewAccountID); err != nil {
			return nil, errors.Wrap(err, "auto renew account")
		}
		if err := setStaking(ctx, env, entity, b.StakedAccountID, b.StakedNodeID); err != nil {
			return nil, err
		}

		contract := &domain.Contract{Id: id, Initcode: b.Initcode}
		if contract.FileId, err = env.OptionalEntity(b.FileID); err != nil {
			return nil, errors.Wrap(err, "bytecode file")
		}
		models = append(models, entity, contract)
	}

	contractId := entityid.EmptyId
	if tx.EntityId != nil {
		contractId = *tx.EntityId
	}
	results, err := contractResultMutations(ctx, env, contractId, contractCall{
		gasLimit:   b.Gas,
		amount:     b.InitialBalance,
		parameters: b.ConstructorParameters,
	})
	if err != nil {
		return nil, err
	}
	return append(models, results...), nil
}

func (h *contractCreateHandler) ItemizedTransfers(env *Env) []types.AccountAmount {
	b, err := body[*types.ContractCreateBody](env)
	if err != nil || b.InitialBalance == 0 || env.Receipt().ContractID == nil {
		return nil
	}
	return []types.AccountAmount{
		{AccountID: env.Item.PayerAccountID(), Amount: -b.InitialBalance},
		{AccountID: types.AccountID{EntityRef: env.Receipt().ContractID.EntityRef}, Amount: b.InitialBalance},
	}
}

type contractCallHandler struct{ base }

func (h *contractCallHandler) EntityId(ctx context.Context, env *Env) (entityid.EntityId, error) {
	b, err := body[*types.ContractCallBody](env)
	if err != nil {
		return entityid.EmptyId, err
	}
	return env.Contract(ctx, b.ContractID)
}

func (h *contractCallHandler) Mutations(ctx context.Context, env *Env, tx *domain.Transaction) ([]domain.Model, error) {
	b, err := body[*types.ContractCallBody](env)
	if err != nil {
		return nil, err
	}

	// failed calls still carry a contract result
	contractId := entityid.EmptyId
	if tx.EntityId != nil {
		contractId = *tx.EntityId
	} else if result := env.Item.Record.ContractResult; result != nil && result.ContractID != nil && !result.ContractID.HasEvmAddress() {
		if contractId, err = env.Entity(result.ContractID.EntityRef); err != nil {
			return nil, errors.Wrap(err, "contract result")
		}
	}
	return contractResultMutations(ctx, env, contractId, contractCall{
		gasLimit:   b.Gas,
		amount:     b.Amount,
		parameters: b.FunctionParameters,
	})
}

func (h *contractCallHandler) ItemizedTransfers(env *Env) []types.AccountAmount {
	b, err := body[*types.ContractCallBody](env)
	if err != nil || b.Amount == 0 || b.ContractID.HasEvmAddress() {
		return nil
	}
	return []types.AccountAmount{
		{AccountID: env.Item.PayerAccountID(), Amount: -b.Amount},
		{AccountID: types.AccountID{EntityRef: b.ContractID.EntityRef}, Amount: b.Amount},
	}
}

type contractUpdateHandler struct{ base }

func (h *contractUpdateHandler) EntityId(ctx context.Context, env *Env) (entityid.EntityId, error) {
	b, err := body[*types.ContractUpdateBody](env)
	if err != nil {
		return entityid.EmptyId, err
	}
	return env.Contract(ctx, b.ContractID)
}

// Mutations never applies the body's FileID, the ledger rejects bytecode changes.
func (h *contractUpdateHandler) Mutations(ctx context.Context, env *Env, tx *domain.Transaction) ([]domain.Model, error) {
	b, err := body[*types.ContractUpdateBody](env)
	if err != nil {
		return nil, err
	}
	if !env.Successful() || tx.EntityId == nil || tx.EntityId.IsEmpty() {
		return nil, nil
	}

	entity := updatedEntity(env, *tx.EntityId)
	entity.AdminKey = b.AdminKey
	entity.Memo = b.Memo
	entity.AutoRenewPeriod = b.AutoRenewPeriod
	entity.ExpirationTimestamp = b.ExpirationTime
	entity.MaxAutomaticTokenAssociations = b.MaxAutomaticTokenAssociations
	entity.DeclineReward = b.DeclineReward
	if entity.ProxyAccountId, err = env.OptionalAccount(ctx, b.ProxyAccountID); err != nil {
		return nil, errors.Wrap(err, "proxy account")
	}
	if entity.AutoRenewAccountId, err = env.OptionalAccount(ctx, b.AutoRenewAccountID); err != nil {
		return nil, errors.Wrap(err, "auto renew account")
	}
	if err := setStaking(ctx, env, entity, b.StakedAccountID, b.StakedNodeID); err != nil {
		return nil, err
	}
	return []domain.Model{entity}, nil
}

type contractDeleteHandler struct{ base }

func (h *contractDeleteHandler) EntityId(ctx context.Context, env *Env) (entityid.EntityId, error) {
	b, err := body[*types.ContractDeleteBody](env)
	if err != nil {
		return entityid.EmptyId, err
	}
	return env.Contract(ctx, b.ContractID)
}

func (h *contractDeleteHandler) Mutations(ctx context.Context, env *Env, tx *domain.Transaction) ([]domain.Model, error) {
	b, err := body[*types.ContractDeleteBody](env)
	if err != nil {
		return nil, err
	}
	if !env.Successful() || tx.EntityId == nil || tx.EntityId.IsEmpty() {
		return nil, nil
	}

	entity := updatedEntity(env, *tx.EntityId)
	entity.Deleted = domain.Ptr(true)
	entity.PermanentRemoval = domain.Ptr(b.PermanentRemoval)
	switch {
	case b.TransferAccountID != nil:
		if entity.ObtainerId, err = env.OptionalAccount(ctx, b.TransferAccountID); err != nil {
			return nil, errors.Wrap(err, "obtainer account")
		}
	case b.TransferContractID != nil:
		obtainer, err := env.Contract(ctx, *b.TransferContractID)
		if err != nil && !IsSkip(err) {
			return nil, errors.Wrap(err, "obtainer contract")
		}
		if !obtainer.IsEmpty() {
			entity.ObtainerId = &obtainer
		}
	}
	return []domain.Model{entity}, nil
}

// createdContractId resolves the contract created by the record item from its receipt or contract result.
func createdContractId(ctx context.Context, env *Env) (entityid.EntityId, error) {
	if contract := env.Receipt().ContractID; contract != nil {
		return env.Contract(ctx, *contract)
	}
	if result := env.Item.Record.ContractResult; result != nil && result.ContractID != nil {
		return env.Contract(ctx, *result.ContractID)
	}
	return entityid.EmptyId, nil
}

// contractEvmAddress returns the EVM address of a created contract. The contract result is
// authoritative, the bytecode sidecar is the fallback. Divergent values are logged.
func contractEvmAddress(ctx context.Context, env *Env, id entityid.EntityId) []byte {
	var fromResult, fromSidecar []byte
	if result := env.Item.Record.ContractResult; result != nil && len(result.EvmAddress) == entityid.EvmAddressLength {
		fromResult = result.EvmAddress
	} else if len(env.Item.Record.EvmAddress) == entityid.EvmAddressLength {
		fromResult = env.Item.Record.EvmAddress
	}
	for _, sidecar := range env.Item.Sidecars {
		if sidecar.Bytecode != nil && sidecar.Bytecode.ContractID.HasEvmAddress() {
			fromSidecar = sidecar.Bytecode.ContractID.EvmAddress
			break
		}
	}

	switch {
	case fromResult != nil:
		if fromSidecar != nil && !bytes.Equal(fromResult, fromSidecar) {
			logger.WarnContext(ctx, "Contract evm address differs between contract result and bytecode sidecar, using contract result",
				slogx.Stringer("contract_id", id),
				slogx.String("result_evm_address", hex.EncodeToString(fromResult)),
				slogx.String("sidecar_evm_address", hex.EncodeToString(fromSidecar)),
			)
		}
		return fromResult
	case fromSidecar != nil:
		return fromSidecar
	default:
		return nil
	}
}

type contractCall struct {
	gasLimit   int64
	amount     int64
	parameters []byte
}

// contractResultMutations derives the contract result, logs, state changes, bytecode and nonces
// of a contract call, create or ethereum transaction.
func contractResultMutations(ctx context.Context, env *Env, contractId entityid.EntityId, call contractCall) ([]domain.Model, error) {
	result := env.Item.Record.ContractResult
	if result == nil {
		return nil, nil
	}
	ts := env.Timestamp()
	persist := env.Persist()

	var models []domain.Model
	if persist.ContractResults {
		row := &domain.ContractResult{
			ConsensusTimestamp: ts,
			ContractId:         contractId,
			Amount:             call.amount,
			Bloom:              result.Bloom,
			CallResult:         result.ContractCallResult,
			ErrorMessage:       result.ErrorMessage,
			FunctionParameters: call.parameters,
			GasLimit:           call.gasLimit,
			GasUsed:            result.GasUsed,
			PayerAccountId:     env.Payer,
			TransactionHash:    transactionHash(env),
			TransactionIndex:   env.Item.Index,
			TransactionNonce:   env.Item.Transaction.TransactionID.Nonce,
			TransactionResult:  int32(env.Receipt().Status),
		}
		if result.Gas != 0 {
			row.GasLimit = result.Gas
		}
		if result.Amount != 0 {
			row.Amount = result.Amount
		}
		if result.FunctionParameters != nil {
			row.FunctionParameters = result.FunctionParameters
		}
		sender, err := env.OptionalAccount(ctx, result.SenderID)
		if err != nil && !IsSkip(err) {
			return nil, errors.Wrap(err, "contract result sender")
		}
		row.SenderId = sender
		for _, created := range result.CreatedContractIDs {
			id, err := env.Contract(ctx, created)
			if IsSkip(err) {
				continue
			}
			if err != nil {
				return nil, errors.Wrap(err, "created contract")
			}
			if !id.IsEmpty() {
				row.CreatedContractIds = append(row.CreatedContractIds, id)
			}
		}
		models = append(models, row)
	}

	if persist.ContractLogs {
		for i, log := range result.Logs {
			logContract, err := env.Contract(ctx, log.ContractID)
			if IsSkip(err) {
				continue
			}
			if err != nil {
				return nil, errors.Wrapf(err, "contract log %d", i)
			}
			row := &domain.ContractLog{
				ConsensusTimestamp: ts,
				Index:              i,
				ContractId:         logContract,
				RootContractId:     contractId,
				Bloom:              log.Bloom,
				Data:               log.Data,
				PayerAccountId:     env.Payer,
				TransactionHash:    transactionHash(env),
				TransactionIndex:   env.Item.Index,
			}
			topics := []*[]byte{&row.Topic0, &row.Topic1, &row.Topic2, &row.Topic3}
			for j, topic := range log.Topics {
				if j >= len(topics) {
					break
				}
				*topics[j] = topic
			}
			models = append(models, row)
		}
	}

	if !env.Successful() {
		return models, nil
	}

	for _, nonce := range result.ContractNonces {
		id, err := env.Contract(ctx, nonce.ContractID)
		if IsSkip(err) {
			continue
		}
		if err != nil {
			return nil, errors.Wrap(err, "contract nonce")
		}
		if id.IsEmpty() {
			continue
		}
		models = append(models, &domain.Entity{Id: id, EthereumNonce: domain.Ptr(nonce.Nonce)})
	}

	sidecars, err := sidecarMutations(ctx, env, contractId)
	if err != nil {
		return nil, err
	}
	return append(models, sidecars...), nil
}

// sidecarMutations derives state changes and bytecode. Bytecode of a contract that can't be resolved
// yet, such as one created by this very transaction, is attributed to contractId.
func sidecarMutations(ctx context.Context, env *Env, contractId entityid.EntityId) ([]domain.Model, error) {
	var models []domain.Model
	for _, sidecar := range env.Item.Sidecars {
		if env.Persist().ContractStateChanges {
			for _, changes := range sidecar.StateChanges {
				id, err := env.Contract(ctx, changes.ContractID)
				if IsSkip(err) {
					continue
				}
				if err != nil {
					return nil, errors.Wrap(err, "state change contract")
				}
				for _, change := range changes.StorageChanges {
					models = append(models, &domain.ContractStateChange{
						ConsensusTimestamp: env.Timestamp(),
						ContractId:         id,
						Slot:               change.Slot,
						ValueRead:          change.ValueRead,
						ValueWritten:       change.ValueWritten,
						Migration:          sidecar.Migration,
						PayerAccountId:     env.Payer,
					})
				}
			}
		}
		if sidecar.Bytecode != nil {
			id, err := env.Contract(ctx, sidecar.Bytecode.ContractID)
			if err != nil && !IsSkip(err) {
				return nil, errors.Wrap(err, "bytecode contract")
			}
			if id.IsEmpty() {
				id = contractId
			}
			if !id.IsEmpty() {
				models = append(models, &domain.Contract{
					Id:              id,
					Initcode:        sidecar.Bytecode.Initcode,
					RuntimeBytecode: sidecar.Bytecode.RuntimeBytecode,
				})
			}
		}
	}
	return models, nil
}

// transactionHash is the ethereum hash for ethereum transactions and the ledger hash otherwise.
func transactionHash(env *Env) []byte {
	if len(env.Item.Record.EthereumHash) > 0 {
		return env.Item.Record.EthereumHash
	}
	return env.Item.Record.TransactionHash
}
