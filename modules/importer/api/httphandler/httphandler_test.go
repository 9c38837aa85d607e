package httphandler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ledger-importer/common"
	"github.com/gaze-network/ledger-importer/common/errs"
	"github.com/gaze-network/ledger-importer/core/types"
	"github.com/gaze-network/ledger-importer/modules/importer/batch"
	"github.com/gaze-network/ledger-importer/pkg/errorhandler"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeImporter struct {
	status batch.Status
	header *types.RecordFileHeader
}

func (f *fakeImporter) Status() batch.Status {
	return f.status
}

func (f *fakeImporter) CurrentRecordFile(context.Context) (types.RecordFileHeader, error) {
	if f.header == nil {
		return types.RecordFileHeader{}, errors.WithStack(errs.NotFound)
	}
	return *f.header, nil
}

func newApp(t *testing.T, importer Importer, gatherer prometheus.Gatherer) *fiber.App {
	t.Helper()
	app := fiber.New(fiber.Config{ErrorHandler: errorhandler.NewHTTPErrorHandler()})
	require.NoError(t, New(common.NetworkTestnet, importer, gatherer).Mount(app))
	return app
}

func get(t *testing.T, app *fiber.App, path string) (int, []byte) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, body
}

func TestGetStatus(t *testing.T) {
	importer := &fakeImporter{status: batch.Status{
		State:    batch.StateIdle.String(),
		LastFile: &types.RecordFileHeader{Name: "f1", Index: 7},
		Stats:    batch.Stats{FilesCommitted: 7, ItemsProcessed: 70},
	}}
	code, body := get(t, newApp(t, importer, nil), "/v1/importer/status")
	require.Equal(t, http.StatusOK, code)

	var resp getStatusResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	require.NotNil(t, resp.Result)
	assert.Equal(t, "testnet", resp.Result.Network)
	assert.Equal(t, "idle", resp.Result.State)
	assert.Equal(t, int64(7), resp.Result.FilesCommitted)
	assert.Equal(t, int64(7), resp.Result.LastFile.Index)
}

func TestGetCurrentRecordFile(t *testing.T) {
	t.Run("nothing committed", func(t *testing.T) {
		code, body := get(t, newApp(t, &fakeImporter{}, nil), "/v1/importer/record-file")
		assert.Equal(t, http.StatusNotFound, code)
		assert.JSONEq(t, `{"error":"no record file has been committed yet"}`, string(body))
	})

	t.Run("committed", func(t *testing.T) {
		importer := &fakeImporter{header: &types.RecordFileHeader{Name: "f2", Index: 2, Hash: "h2", PreviousHash: "h1", ConsensusEnd: 99}}
		code, body := get(t, newApp(t, importer, nil), "/v1/importer/record-file")
		require.Equal(t, http.StatusOK, code)

		var resp getCurrentRecordFileResponse
		require.NoError(t, json.Unmarshal(body, &resp))
		assert.Equal(t, "h1", resp.Result.PreviousHash)
		assert.Equal(t, int64(99), resp.Result.ConsensusEnd)
	})
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	batch.NewMetrics(reg)

	code, body := get(t, newApp(t, &fakeImporter{}, reg), "/metrics")
	require.Equal(t, http.StatusOK, code)
	assert.True(t, strings.Contains(string(body), "importer_flush_duration_seconds"))

	code, _ = get(t, newApp(t, &fakeImporter{}, nil), "/metrics")
	assert.Equal(t, http.StatusNotFound, code)
}
