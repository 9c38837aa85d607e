package logger

import "log/slog"

const (
	TimeKey            = slog.TimeKey
	LevelKey           = slog.LevelKey
	MessageKey         = slog.MessageKey
	SourceKey          = slog.SourceKey
	ErrorKey           = "error"
	ErrorVerboseKey    = "error_verbose"
	ErrorStackTraceKey = "error_stacktrace"
)

// Attribute keys shared by the import pipeline.
const (
	RecordFileKey         = "record_file"
	ConsensusStartKey     = "consensus_start"
	ConsensusEndKey       = "consensus_end"
	ConsensusTimestampKey = "consensus_timestamp"
	TransactionTypeKey    = "transaction_type"
)
