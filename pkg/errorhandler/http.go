package errorhandler

import (
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ledger-importer/common/errs"
	"github.com/gaze-network/ledger-importer/pkg/logger"
	"github.com/gaze-network/ledger-importer/pkg/logger/slogx"
	"github.com/gofiber/fiber/v2"
)

// statuses maps error kinds to response statuses, first match wins.
var statuses = []struct {
	kind   errs.ErrorKind
	status int
}{
	{errs.NotFound, http.StatusNotFound},
	{errs.InvalidArgument, http.StatusBadRequest},
	{errs.Precondition, http.StatusConflict},
	{errs.Closed, http.StatusServiceUnavailable},
	{errs.Timeout, http.StatusGatewayTimeout},
}

func NewHTTPErrorHandler() func(ctx *fiber.Ctx, err error) error {
	return func(ctx *fiber.Ctx, err error) error {
		if e := new(fiber.Error); errors.As(err, &e) {
			return errors.WithStack(ctx.Status(e.Code).JSON(fiber.Map{
				"error": e.Error(),
			}))
		}

		status := 0
		for _, s := range statuses {
			if errors.Is(err, s.kind) {
				status = s.status
				break
			}
		}

		if e := new(errs.PublicError); errors.As(err, &e) {
			if status == 0 {
				status = http.StatusBadRequest
			}
			return errors.WithStack(ctx.Status(status).JSON(fiber.Map{
				"error": e.Message(),
			}))
		}
		if status != 0 {
			return errors.WithStack(ctx.Status(status).JSON(fiber.Map{
				"error": http.StatusText(status),
			}))
		}

		logger.ErrorContext(ctx.UserContext(), "Something went wrong, unhandled api error",
			slogx.String("event", "api_unhandled_error"),
			slogx.Error(err),
		)

		return errors.WithStack(ctx.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal Server Error",
		}))
	}
}
