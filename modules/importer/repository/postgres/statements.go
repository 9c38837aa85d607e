package postgres

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gaze-network/ledger-importer/modules/importer/domain"
	"github.com/samber/lo"
)

// Conflict expressions. %[1]s is the table, %[2]s the column, %[3]d the first parameter after the
// inserted columns.
const (
	setNewer    = `"%[2]s" = coalesce(excluded."%[2]s", "%[1]s"."%[2]s")`
	setFirst    = `"%[2]s" = coalesce("%[1]s"."%[2]s", excluded."%[2]s")`
	setReplace  = `"%[2]s" = excluded."%[2]s"`
	setAdd      = `"%[2]s" = "%[1]s"."%[2]s" + excluded."%[2]s"`
	setEarliest = `"%[2]s" = least("%[1]s"."%[2]s", excluded."%[2]s")`
	setLatest   = `"%[2]s" = greatest("%[1]s"."%[2]s", excluded."%[2]s")`

	// schedule columns written once by the create transaction
	setUntilCreated = `"%[2]s" = CASE WHEN "%[1]s"."consensus_timestamp" = 0 THEN excluded."%[2]s" ELSE "%[1]s"."%[2]s" END`

	// an authoritative total replaces the stored one, otherwise the inserted value is a delta
	setSupply = `"%[2]s" = CASE WHEN $%[3]d::BOOLEAN THEN excluded."%[2]s" ELSE "%[1]s"."%[2]s" + excluded."%[2]s" END`
)

type set struct {
	column string
	expr   string
}

func sets(expr string, columns ...string) []set {
	return lo.Map(columns, func(column string, _ int) set {
		return set{column: column, expr: expr}
	})
}

type statement struct {
	sql  string
	args func(domain.Model) ([]any, error)
}

type table struct {
	name    string
	columns []string
	keys    []string
	// sets is empty for append-only tables, which ignore conflicting rows
	sets []set
	args func(domain.Model) ([]any, error)
}

func (t table) statement() statement {
	quote := func(s string, _ int) string { return strconv.Quote(s) }
	placeholders := make([]string, len(t.columns))
	for i := range t.columns {
		placeholders[i] = "$" + strconv.Itoa(i+1)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %q (%s) VALUES (%s) ON CONFLICT (%s)",
		t.name,
		strings.Join(lo.Map(t.columns, quote), ", "),
		strings.Join(placeholders, ", "),
		strings.Join(lo.Map(t.keys, quote), ", "),
	)
	if len(t.sets) == 0 {
		b.WriteString(" DO NOTHING")
	} else {
		b.WriteString(" DO UPDATE SET ")
		b.WriteString(strings.Join(lo.Map(t.sets, func(s set, _ int) string {
			return fmt.Sprintf(s.expr, t.name, s.column, len(t.columns)+1)
		}), ", "))
	}
	return statement{sql: b.String(), args: t.args}
}

var statements = lo.SliceToMap(tables, func(t table) (domain.Type, statement) {
	return domainType(t.name), t.statement()
})

func domainType(name string) domain.Type {
	for _, t := range domain.Order.Types() {
		if t.String() == name {
			return t
		}
	}
	panic("postgres: no domain type for table " + name)
}

var tables = []table{
	{
		name: "entity",
		columns: []string{
			"id", "type", "alias", "evm_address", "key", "submit_key", "memo", "auto_renew_period",
			"auto_renew_account_id", "expiration_timestamp", "created_timestamp", "deleted", "permanent_removal",
			"obtainer_id", "proxy_account_id", "receiver_sig_required", "max_automatic_token_associations",
			"staked_account_id", "staked_node_id", "decline_reward", "ethereum_nonce", "balance",
			"balance_timestamp", "timestamp_lower",
		},
		keys: []string{"id"},
		sets: lo.Flatten([][]set{
			sets(setFirst, "type", "alias", "evm_address"),
			sets(setNewer, "key", "submit_key", "memo", "auto_renew_period", "auto_renew_account_id",
				"expiration_timestamp", "deleted", "permanent_removal", "obtainer_id", "proxy_account_id",
				"receiver_sig_required", "max_automatic_token_associations", "staked_account_id", "staked_node_id",
				"decline_reward", "ethereum_nonce"),
			sets(setEarliest, "created_timestamp"),
			sets(setAdd, "balance"),
			sets(setLatest, "balance_timestamp", "timestamp_lower"),
		}),
		args: entityArgs,
	},
	{
		name:    "contract",
		columns: []string{"id", "file_id", "initcode", "runtime_bytecode"},
		keys:    []string{"id"},
		sets:    sets(setNewer, "file_id", "initcode", "runtime_bytecode"),
		args:    contractArgs,
	},
	{
		name: "schedule",
		columns: []string{
			"schedule_id", "creator_account_id", "payer_account_id", "transaction_body", "consensus_timestamp",
			"executed_timestamp", "expiration_time", "wait_for_expiry",
		},
		keys: []string{"schedule_id"},
		sets: append(
			sets(setUntilCreated, "creator_account_id", "payer_account_id", "transaction_body", "wait_for_expiry", "consensus_timestamp"),
			sets(setNewer, "executed_timestamp", "expiration_time")...,
		),
		args: scheduleArgs,
	},
	{
		name: "token",
		columns: []string{
			"token_id", "created_timestamp", "name", "symbol", "decimals", "initial_supply", "total_supply",
			"treasury_account_id", "admin_key", "kyc_key", "freeze_key", "wipe_key", "supply_key",
			"fee_schedule_key", "pause_key", "metadata_key", "freeze_default", "pause_status", "type",
			"supply_type", "max_supply", "metadata", "timestamp_lower",
		},
		keys: []string{"token_id"},
		sets: lo.Flatten([][]set{
			sets(setEarliest, "created_timestamp"),
			sets(setNewer, "name", "symbol", "decimals", "initial_supply", "treasury_account_id", "admin_key",
				"kyc_key", "freeze_key", "wipe_key", "supply_key", "fee_schedule_key", "pause_key", "metadata_key",
				"freeze_default", "pause_status", "type", "supply_type", "max_supply", "metadata"),
			sets(setSupply, "total_supply"),
			sets(setLatest, "timestamp_lower"),
		}),
		args: tokenArgs,
	},
	{
		name: "token_account",
		columns: []string{
			"account_id", "token_id", "associated", "automatic_association", "created_timestamp", "freeze_status",
			"kyc_status", "balance", "balance_timestamp", "timestamp_lower",
		},
		keys: []string{"account_id", "token_id"},
		sets: lo.Flatten([][]set{
			sets(setNewer, "associated", "automatic_association", "freeze_status", "kyc_status"),
			sets(setEarliest, "created_timestamp"),
			sets(setAdd, "balance"),
			sets(setLatest, "balance_timestamp", "timestamp_lower"),
		}),
		args: tokenAccountArgs,
	},
	{
		name: "nft",
		columns: []string{
			"token_id", "serial_number", "account_id", "created_timestamp", "deleted", "metadata", "spender",
			"delegating_spender", "timestamp_lower",
		},
		keys: []string{"token_id", "serial_number"},
		sets: lo.Flatten([][]set{
			sets(setNewer, "account_id", "deleted", "metadata", "spender", "delegating_spender"),
			sets(setEarliest, "created_timestamp"),
			sets(setLatest, "timestamp_lower"),
		}),
		args: nftArgs,
	},
	{
		name:    "crypto_allowance",
		columns: []string{"owner", "spender", "amount", "amount_granted", "payer_account_id", "timestamp_lower"},
		keys:    []string{"owner", "spender"},
		sets:    sets(setReplace, "amount", "amount_granted", "payer_account_id", "timestamp_lower"),
		args:    cryptoAllowanceArgs,
	},
	{
		name:    "token_allowance",
		columns: []string{"owner", "spender", "token_id", "amount", "amount_granted", "payer_account_id", "timestamp_lower"},
		keys:    []string{"owner", "spender", "token_id"},
		sets:    sets(setReplace, "amount", "amount_granted", "payer_account_id", "timestamp_lower"),
		args:    tokenAllowanceArgs,
	},
	{
		name:    "nft_allowance",
		columns: []string{"owner", "spender", "token_id", "approved_for_all", "payer_account_id", "timestamp_lower"},
		keys:    []string{"owner", "spender", "token_id"},
		sets:    sets(setReplace, "approved_for_all", "payer_account_id", "timestamp_lower"),
		args:    nftAllowanceArgs,
	},
	{
		name: "transaction",
		columns: []string{
			"consensus_timestamp", "type", "result", "payer_account_id", "node_account_id", "entity_id",
			"valid_start_ns", "valid_duration_seconds", "max_fee", "charged_tx_fee", "initial_balance", "memo",
			"transaction_hash", "transaction_bytes", "scheduled", "nonce", "parent_consensus_timestamp", "index",
			"errata",
		},
		keys: []string{"consensus_timestamp"},
		args: transactionArgs,
	},
	{
		name:    "transaction_signature",
		columns: []string{"consensus_timestamp", "entity_id", "public_key_prefix", "signature", "type"},
		keys:    []string{"entity_id", "public_key_prefix", "consensus_timestamp"},
		args:    transactionSignatureArgs,
	},
	{
		name:    "crypto_transfer",
		columns: []string{"consensus_timestamp", "entity_id", "index", "amount", "payer_account_id", "is_approval", "errata"},
		keys:    []string{"consensus_timestamp", "entity_id", "index"},
		args:    cryptoTransferArgs,
	},
	{
		name:    "non_fee_transfer",
		columns: []string{"consensus_timestamp", "index", "entity_id", "amount", "payer_account_id", "is_approval"},
		keys:    []string{"consensus_timestamp", "index"},
		args:    nonFeeTransferArgs,
	},
	{
		name:    "staking_reward_transfer",
		columns: []string{"consensus_timestamp", "account_id", "amount", "payer_account_id"},
		keys:    []string{"consensus_timestamp", "account_id"},
		args:    stakingRewardTransferArgs,
	},
	{
		name:    "token_transfer",
		columns: []string{"consensus_timestamp", "token_id", "account_id", "amount", "payer_account_id", "is_approval"},
		keys:    []string{"consensus_timestamp", "token_id", "account_id"},
		args:    tokenTransferArgs,
	},
	{
		name: "nft_transfer",
		columns: []string{
			"consensus_timestamp", "token_id", "serial_number", "sender_account_id", "receiver_account_id",
			"payer_account_id", "is_approval",
		},
		keys: []string{"consensus_timestamp", "token_id", "serial_number"},
		args: nftTransferArgs,
	},
	{
		name: "assessed_custom_fee",
		columns: []string{
			"consensus_timestamp", "index", "amount", "collector_account_id", "token_id",
			"effective_payer_account_ids", "payer_account_id",
		},
		keys: []string{"consensus_timestamp", "index"},
		args: assessedCustomFeeArgs,
	},
	{
		name: "contract_result",
		columns: []string{
			"consensus_timestamp", "contract_id", "amount", "bloom", "call_result", "error_message",
			"function_parameters", "gas_limit", "gas_used", "payer_account_id", "sender_id", "created_contract_ids",
			"transaction_hash", "transaction_index", "transaction_nonce", "transaction_result",
		},
		keys: []string{"consensus_timestamp"},
		args: contractResultArgs,
	},
	{
		name: "contract_log",
		columns: []string{
			"consensus_timestamp", "index", "contract_id", "root_contract_id", "bloom", "data", "topic0", "topic1",
			"topic2", "topic3", "payer_account_id", "transaction_hash", "transaction_index",
		},
		keys: []string{"consensus_timestamp", "index"},
		args: contractLogArgs,
	},
	{
		name: "contract_state_change",
		columns: []string{
			"consensus_timestamp", "contract_id", "slot", "value_read", "value_written", "migration", "payer_account_id",
		},
		keys: []string{"consensus_timestamp", "contract_id", "slot"},
		args: contractStateChangeArgs,
	},
	{
		name: "ethereum_transaction",
		columns: []string{
			"consensus_timestamp", "hash", "type", "chain_id", "nonce", "gas_price", "max_fee_per_gas",
			"max_priority_fee_per_gas", "gas_limit", "value", "to_address", "call_data", "call_data_id",
			"access_list", "signature_r", "signature_s", "signature_v", "recovery_id", "from_address", "data",
			"max_gas_allowance", "payer_account_id",
		},
		keys: []string{"consensus_timestamp"},
		args: ethereumTransactionArgs,
	},
	{
		name:    "file_data",
		columns: []string{"consensus_timestamp", "entity_id", "file_data", "transaction_type"},
		keys:    []string{"consensus_timestamp"},
		args:    fileDataArgs,
	},
	{
		name: "topic_message",
		columns: []string{
			"consensus_timestamp", "topic_id", "message", "payer_account_id", "running_hash", "running_hash_version",
			"sequence_number", "chunk_num", "chunk_total", "initial_transaction_id", "valid_start_timestamp",
		},
		keys: []string{"consensus_timestamp"},
		args: topicMessageArgs,
	},
	{
		name:    "prng",
		columns: []string{"consensus_timestamp", "range", "prng_bytes", "prng_number", "payer_account_id"},
		keys:    []string{"consensus_timestamp"},
		args:    prngArgs,
	},
	{
		name: "node_stake",
		columns: []string{
			"consensus_timestamp", "node_id", "epoch_day", "stake", "stake_rewarded", "stake_not_rewarded",
			"reward_rate", "min_stake", "max_stake", "staking_period",
		},
		keys: []string{"consensus_timestamp", "node_id"},
		args: nodeStakeArgs,
	},
	{
		name:    "entity_transaction",
		columns: []string{"entity_id", "consensus_timestamp", "payer_account_id", "result", "type"},
		keys:    []string{"entity_id", "consensus_timestamp"},
		args:    entityTransactionArgs,
	},
	{
		name: "record_file",
		columns: []string{
			"consensus_end", "consensus_start", "name", "index", "hash", "prev_hash", "count", "hapi_version",
			"node_id", "size", "gas_used", "load_start", "load_end",
		},
		keys: []string{"consensus_end"},
		args: recordFileArgs,
	},
}
