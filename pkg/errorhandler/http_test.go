package errorhandler

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ledger-importer/common/errs"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPErrorHandler(t *testing.T) {
	testCases := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"not found", errors.WithStack(errs.NotFound), http.StatusNotFound, `{"error":"Not Found"}`},
		{"public message keeps kind status", errs.WithPublicMessage(errors.Wrap(errs.Precondition, "busy"), "importer is busy"), http.StatusConflict, `{"error":"importer is busy"}`},
		{"public message without kind", errs.WithPublicMessage(errors.New("bad"), "bad request"), http.StatusBadRequest, `{"error":"bad request"}`},
		{"closed", errors.Wrap(errs.Closed, "shutting down"), http.StatusServiceUnavailable, `{"error":"Service Unavailable"}`},
		{"fiber error", fiber.ErrMethodNotAllowed, http.StatusMethodNotAllowed, `{"error":"Method Not Allowed"}`},
		{"unhandled", errors.New("boom"), http.StatusInternalServerError, `{"error":"Internal Server Error"}`},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New(fiber.Config{ErrorHandler: NewHTTPErrorHandler()})
			app.Get("/", func(*fiber.Ctx) error { return tc.err })

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
			require.NoError(t, err)
			defer resp.Body.Close()
			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)

			assert.Equal(t, tc.status, resp.StatusCode)
			assert.JSONEq(t, tc.body, string(body))
		})
	}
}
