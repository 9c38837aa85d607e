package httphandler

import (
	"context"

	"github.com/gaze-network/ledger-importer/common"
	"github.com/gaze-network/ledger-importer/core/types"
	"github.com/gaze-network/ledger-importer/modules/importer/batch"
	"github.com/prometheus/client_golang/prometheus"
)

// Importer is the read side of the batch coordinator.
type Importer interface {
	Status() batch.Status
	CurrentRecordFile(ctx context.Context) (types.RecordFileHeader, error)
}

var _ Importer = (*batch.Coordinator)(nil)

type HttpHandler struct {
	importer Importer
	network  common.Network
	gatherer prometheus.Gatherer
}

// New creates the importer handler. A nil gatherer leaves /metrics unmounted.
func New(network common.Network, importer Importer, gatherer prometheus.Gatherer) *HttpHandler {
	return &HttpHandler{
		importer: importer,
		network:  network,
		gatherer: gatherer,
	}
}

type HttpResponse[T any] struct {
	Error  *string `json:"error"`
	Result *T      `json:"result,omitempty"`
}
