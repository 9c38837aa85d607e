package config

import (
	"runtime"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ledger-importer/common/errs"
	"github.com/gaze-network/ledger-importer/internal/postgres"
)

// PartialDataPolicy decides what happens when an alias or EVM address reference can't be resolved.
type PartialDataPolicy string

const (
	// PartialDataPolicyDefault stores an absent reference and continues.
	PartialDataPolicyDefault PartialDataPolicy = "DEFAULT"
	// PartialDataPolicySkip omits the dependent record.
	PartialDataPolicySkip PartialDataPolicy = "SKIP"
	// PartialDataPolicyError aborts the whole record file.
	PartialDataPolicyError PartialDataPolicy = "ERROR"
)

func (p PartialDataPolicy) Normalize() PartialDataPolicy {
	return PartialDataPolicy(strings.ToUpper(strings.TrimSpace(string(p))))
}

func (p PartialDataPolicy) IsValid() bool {
	switch p.Normalize() {
	case PartialDataPolicyDefault, PartialDataPolicySkip, PartialDataPolicyError:
		return true
	}
	return false
}

type Config struct {
	Datasource          string            `mapstructure:"datasource"`      // Datasource to fetch decoded record files e.g. `directory`
	DatasourcePath      string            `mapstructure:"datasource_path"` // Directory with `*.rcd.json` files.
	DatasourceBatchSize int               `mapstructure:"datasource_batch_size"`
	PollingInterval     time.Duration     `mapstructure:"polling_interval"`
	Database            string            `mapstructure:"database"` // Database to store importer data. `postgresql` | `memory`
	Postgres            postgres.Config   `mapstructure:"postgres"`
	Shard               int64             `mapstructure:"shard"`
	Realm               int64             `mapstructure:"realm"`
	PartialDataPolicy   PartialDataPolicy `mapstructure:"partial_data_policy"`
	Persist             PersistConfig     `mapstructure:"persist"`
	Errata              ErrataConfig      `mapstructure:"errata"`
	FlushConcurrency    int               `mapstructure:"flush_concurrency"` // 0 is sequential, negative is GOMAXPROCS
	Publisher           PublisherConfig   `mapstructure:"publisher"`
	Metrics             MetricsConfig     `mapstructure:"metrics"`
}

type PersistConfig struct {
	CryptoTransferAmounts      bool    `mapstructure:"crypto_transfer_amounts"`
	AggregatedTransfers        bool    `mapstructure:"aggregated_transfers"`
	NonFeeTransfers            bool    `mapstructure:"non_fee_transfers"`
	EntityTransactions         bool    `mapstructure:"entity_transactions"`
	EntityTransactionExclusion []int64 `mapstructure:"entity_transaction_exclusion"`
	Files                      bool    `mapstructure:"files"`
	SystemFiles                bool    `mapstructure:"system_files"`
	TransactionBytes           bool    `mapstructure:"transaction_bytes"`
	ContractResults            bool    `mapstructure:"contract_results"`
	ContractLogs               bool    `mapstructure:"contract_logs"`
	ContractStateChanges       bool    `mapstructure:"contract_state_changes"`
	EthereumTransactions       bool    `mapstructure:"ethereum_transactions"`
	Tokens                     bool    `mapstructure:"tokens"`
	Schedules                  bool    `mapstructure:"schedules"`
	Topics                     bool    `mapstructure:"topics"`
	Allowances                 bool    `mapstructure:"allowances"`
	TopicMessages              bool    `mapstructure:"topic_messages"`
	TransactionSignatures      bool    `mapstructure:"transaction_signatures"`
	EntityBalances             bool    `mapstructure:"entity_balances"`
}

// ErrataConfig is the consensus timestamp window in which the ledger reported duplicated fee transfers for failed transactions.
type ErrataConfig struct {
	Enabled bool  `mapstructure:"enabled"`
	Start   int64 `mapstructure:"start"`
	End     int64 `mapstructure:"end"`
}

func (e ErrataConfig) Contains(consensusTimestamp int64) bool {
	return e.Enabled && consensusTimestamp >= e.Start && consensusTimestamp <= e.End
}

type PublisherConfig struct {
	TopicMessages TypedPublisherConfig `mapstructure:"topic_messages"`
	ContractLogs  TypedPublisherConfig `mapstructure:"contract_logs"`
	Kafka         KafkaConfig          `mapstructure:"kafka"`
}

type TypedPublisherConfig struct {
	Enabled    bool `mapstructure:"enabled"`
	BufferSize int  `mapstructure:"buffer_size"`
}

type KafkaConfig struct {
	Enabled  bool     `mapstructure:"enabled"`
	Brokers  []string `mapstructure:"brokers"`
	Topic    string   `mapstructure:"topic"`
	ClientID string   `mapstructure:"client_id"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

const (
	DefaultPublisherBufferSize = 4096

	// mainnet window with duplicated fee transfers on failed transactions
	MainnetErrataStart int64 = 1568415600193620000
	MainnetErrataEnd   int64 = 1570118944399195000

	// SystemFileMaxNum is the highest file number reserved for system files.
	SystemFileMaxNum int64 = 1000
)

// Default returns the importer configuration used when a key is absent from the config file.
func Default() Config {
	return Config{
		Datasource:          "directory",
		DatasourcePath:      "./data/records",
		DatasourceBatchSize: 10,
		PollingInterval:     5 * time.Second,
		Database:            "postgresql",
		PartialDataPolicy:   PartialDataPolicyDefault,
		Persist: PersistConfig{
			CryptoTransferAmounts:      true,
			EntityTransactionExclusion: []int64{98, 800, 801},
			Files:                      true,
			SystemFiles:                true,
			ContractResults:            true,
			ContractLogs:               true,
			ContractStateChanges:       true,
			EthereumTransactions:       true,
			Tokens:                     true,
			Schedules:                  true,
			Topics:                     true,
			Allowances:                 true,
			TopicMessages:              true,
			TransactionSignatures:      true,
			EntityBalances:             true,
		},
		Errata: ErrataConfig{
			Start: MainnetErrataStart,
			End:   MainnetErrataEnd,
		},
		FlushConcurrency: 1,
		Publisher: PublisherConfig{
			TopicMessages: TypedPublisherConfig{Enabled: true, BufferSize: DefaultPublisherBufferSize},
			ContractLogs:  TypedPublisherConfig{Enabled: false, BufferSize: DefaultPublisherBufferSize},
			Kafka:         KafkaConfig{ClientID: "ledger-importer"},
		},
		Metrics: MetricsConfig{Enabled: true},
	}
}

// Validate checks the configuration and normalizes enum values.
func (c *Config) Validate() error {
	c.PartialDataPolicy = c.PartialDataPolicy.Normalize()
	if c.PartialDataPolicy == "" {
		c.PartialDataPolicy = PartialDataPolicyDefault
	}
	if !c.PartialDataPolicy.IsValid() {
		return errors.Wrapf(errs.InvalidArgument, "invalid partial_data_policy %q", c.PartialDataPolicy)
	}
	switch {
	case c.FlushConcurrency < 0:
		// one writer per usable CPU, GOMAXPROCS is already sized to the container quota
		c.FlushConcurrency = runtime.GOMAXPROCS(0)
	case c.FlushConcurrency == 0:
		c.FlushConcurrency = 1
	}
	if c.Shard < 0 || c.Shard >= 1<<10 {
		return errors.Wrapf(errs.InvalidArgument, "shard %d out of range", c.Shard)
	}
	if c.Realm < 0 || c.Realm >= 1<<16 {
		return errors.Wrapf(errs.InvalidArgument, "realm %d out of range", c.Realm)
	}
	if c.Publisher.Kafka.Enabled {
		if len(c.Publisher.Kafka.Brokers) == 0 || c.Publisher.Kafka.Topic == "" {
			return errors.Wrap(errs.InvalidArgument, "kafka publisher requires brokers and topic")
		}
	}
	return nil
}

// IsSystemFile reports whether a file number is reserved for the network's system files.
func IsSystemFile(num int64) bool {
	return num > 0 && num <= SystemFileMaxNum
}
