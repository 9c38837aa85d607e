package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ledger-importer/common/errs"
	"github.com/gofiber/fiber/v2"
)

type getCurrentRecordFileResult struct {
	Name         string `json:"name"`
	Index        int64  `json:"index"`
	Hash         string `json:"hash"`
	PreviousHash string `json:"previousHash"`
	ConsensusEnd int64  `json:"consensusEnd"`
}

type getCurrentRecordFileResponse = HttpResponse[getCurrentRecordFileResult]

func (h *HttpHandler) GetCurrentRecordFile(ctx *fiber.Ctx) (err error) {
	header, err := h.importer.CurrentRecordFile(ctx.UserContext())
	if errors.Is(err, errs.NotFound) {
		return errs.WithPublicMessage(err, "no record file has been committed yet")
	}
	if err != nil {
		return errors.Wrap(err, "error during CurrentRecordFile")
	}

	resp := getCurrentRecordFileResponse{
		Result: &getCurrentRecordFileResult{
			Name:         header.Name,
			Index:        header.Index,
			Hash:         header.Hash,
			PreviousHash: header.PreviousHash,
			ConsensusEnd: header.ConsensusEnd,
		},
	}
	return errors.WithStack(ctx.JSON(resp))
}
