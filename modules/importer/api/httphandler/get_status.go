package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ledger-importer/modules/importer/batch"
	"github.com/gofiber/fiber/v2"
)

type getStatusResult struct {
	Network string `json:"network"`
	batch.Status
}

type getStatusResponse = HttpResponse[getStatusResult]

func (h *HttpHandler) GetStatus(ctx *fiber.Ctx) (err error) {
	resp := getStatusResponse{
		Result: &getStatusResult{
			Network: h.network.String(),
			Status:  h.importer.Status(),
		},
	}
	return errors.WithStack(ctx.JSON(resp))
}
