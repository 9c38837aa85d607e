package batch

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ledger-importer/common/errs"
	"github.com/gaze-network/ledger-importer/core/types"
)

// FileError is the fault of a record file that was not committed. It unwraps to the cause, so
// errors.Is(err, errs.DataIntegrity) and the other error kinds work through it.
type FileError struct {
	File string

	// ConsensusTimestamp and TransactionType identify the offending record item, zero when the
	// file failed outside of one.
	ConsensusTimestamp int64
	TransactionType    types.TransactionType

	Err error
}

func (e *FileError) Error() string {
	if e.ConsensusTimestamp != 0 {
		return fmt.Sprintf("record file %s aborted at %s transaction %d: %v", e.File, e.TransactionType, e.ConsensusTimestamp, e.Err)
	}
	return fmt.Sprintf("record file %s aborted: %v", e.File, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// faultKind names the error kind of err for metrics.
func faultKind(err error) string {
	switch {
	case errors.Is(err, errs.UnresolvedReference):
		return "unresolved_reference"
	case errors.Is(err, errs.DataIntegrity):
		return "data_integrity"
	case errors.Is(err, errs.Precondition):
		return "precondition"
	case errors.Is(err, errs.Storage):
		return "storage"
	default:
		return "other"
	}
}
