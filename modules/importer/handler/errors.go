package handler

import (
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ledger-importer/modules/importer/entityid"
)

// IsSkip reports whether err asks to omit the record depending on an unresolved reference.
func IsSkip(err error) bool {
	return errors.Is(err, entityid.ErrSkip)
}
