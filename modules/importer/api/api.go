package api

import (
	"github.com/gaze-network/ledger-importer/common"
	"github.com/gaze-network/ledger-importer/modules/importer/api/httphandler"
	"github.com/prometheus/client_golang/prometheus"
)

func NewHTTPHandler(network common.Network, importer httphandler.Importer, gatherer prometheus.Gatherer) *httphandler.HttpHandler {
	return httphandler.New(network, importer, gatherer)
}
