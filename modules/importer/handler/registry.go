package handler

import (
	"slices"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ledger-importer/common/errs"
	"github.com/gaze-network/ledger-importer/core/types"
	"github.com/samber/lo"
)

// Registry maps transaction types to their handler.
type Registry struct {
	handlers map[types.TransactionType]Handler
	fallback Handler
}

func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[types.TransactionType]Handler),
		fallback: &defaultHandler{base{types.TransactionTypeUnknown}},
	}
}

// Register adds h to the registry. A type can only be registered once.
func (r *Registry) Register(handlers ...Handler) error {
	for _, h := range handlers {
		if h == nil {
			return errors.Wrap(errs.Precondition, "nil handler")
		}
		if _, ok := r.handlers[h.Type()]; ok {
			return errors.Wrapf(errs.ConflictSetting, "handler for %s already registered", h.Type())
		}
		r.handlers[h.Type()] = h
	}
	return nil
}

// Get returns the handler of t, or the default handler for types without one.
func (r *Registry) Get(t types.TransactionType) Handler {
	if h, ok := r.handlers[t]; ok {
		return h
	}
	return r.fallback
}

// Types returns the registered transaction types in ascending order.
func (r *Registry) Types() []types.TransactionType {
	keys := lo.Keys(r.handlers)
	slices.Sort(keys)
	return keys
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// Default returns the registry with a handler for every supported transaction type.
func Default() *Registry {
	defaultRegistryOnce.Do(func() {
		r := NewRegistry()
		if err := r.Register(All()...); err != nil {
			panic(err)
		}
		defaultRegistry = r
	})
	return defaultRegistry
}

// All returns a new instance of every handler.
func All() []Handler {
	return []Handler{
		// crypto
		&cryptoCreateHandler{base{types.TransactionTypeCryptoCreate}},
		&cryptoUpdateHandler{base{types.TransactionTypeCryptoUpdate}},
		&cryptoDeleteHandler{base{types.TransactionTypeCryptoDelete}},
		&cryptoTransferHandler{base{types.TransactionTypeCryptoTransfer}},
		&cryptoApproveAllowanceHandler{base{types.TransactionTypeCryptoApproveAllow}},
		&cryptoDeleteAllowanceHandler{base{types.TransactionTypeCryptoDeleteAllow}},

		// contract
		&contractCreateHandler{base{types.TransactionTypeContractCreate}},
		&contractCallHandler{base{types.TransactionTypeContractCall}},
		&contractUpdateHandler{base{types.TransactionTypeContractUpdate}},
		&contractDeleteHandler{base{types.TransactionTypeContractDelete}},
		&ethereumTransactionHandler{base{types.TransactionTypeEthereumTransaction}},

		// file
		&fileCreateHandler{base{types.TransactionTypeFileCreate}},
		&fileAppendHandler{base{types.TransactionTypeFileAppend}},
		&fileUpdateHandler{base{types.TransactionTypeFileUpdate}},
		&fileDeleteHandler{base{types.TransactionTypeFileDelete}},
		&systemDeleteHandler{base{types.TransactionTypeSystemDelete}},
		&systemUndeleteHandler{base{types.TransactionTypeSystemUndelete}},

		// token
		&tokenCreateHandler{base{types.TransactionTypeTokenCreate}},
		&tokenUpdateHandler{base{types.TransactionTypeTokenUpdate}},
		&tokenMintHandler{base{types.TransactionTypeTokenMint}},
		&tokenBurnHandler{base{types.TransactionTypeTokenBurn}},
		&tokenWipeHandler{base{types.TransactionTypeTokenWipe}},
		&tokenAssociateHandler{base{types.TransactionTypeTokenAssociate}},
		&tokenDissociateHandler{base{types.TransactionTypeTokenDissociate}},
		&tokenAccountStatusHandler{base{types.TransactionTypeTokenFreeze}},
		&tokenAccountStatusHandler{base{types.TransactionTypeTokenUnfreeze}},
		&tokenAccountStatusHandler{base{types.TransactionTypeTokenGrantKyc}},
		&tokenAccountStatusHandler{base{types.TransactionTypeTokenRevokeKyc}},
		&tokenPauseHandler{base{types.TransactionTypeTokenPause}},
		&tokenPauseHandler{base{types.TransactionTypeTokenUnpause}},
		&tokenDeleteHandler{base{types.TransactionTypeTokenDelete}},
		&tokenFeeScheduleUpdateHandler{base{types.TransactionTypeTokenFeeScheduleUpd}},
		&tokenUpdateNftsHandler{base{types.TransactionTypeTokenUpdateNfts}},

		// consensus
		&topicCreateHandler{base{types.TransactionTypeConsensusCreateTopic}},
		&topicUpdateHandler{base{types.TransactionTypeConsensusUpdateTopic}},
		&topicDeleteHandler{base{types.TransactionTypeConsensusDeleteTopic}},
		&topicSubmitMessageHandler{base{types.TransactionTypeConsensusSubmitMsg}},

		// schedule
		&scheduleCreateHandler{base{types.TransactionTypeScheduleCreate}},
		&scheduleSignHandler{base{types.TransactionTypeScheduleSign}},
		&scheduleDeleteHandler{base{types.TransactionTypeScheduleDelete}},

		// util
		&utilPrngHandler{base{types.TransactionTypeUtilPrng}},
		&nodeStakeUpdateHandler{base{types.TransactionTypeNodeStakeUpdate}},
		&defaultHandler{base{types.TransactionTypeFreeze}},
		&defaultHandler{base{types.TransactionTypeUncheckedSubmit}},
	}
}

// defaultHandler persists nothing beyond what generic processing derives.
type defaultHandler struct{ base }
