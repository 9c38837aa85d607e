package reportingclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ledger-importer/common"
	"github.com/gaze-network/ledger-importer/common/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequiresName(t *testing.T) {
	_, err := New(Config{})
	assert.True(t, errors.Is(err, errs.InvalidArgument))
}

func TestSubmitReports(t *testing.T) {
	received := make(map[string]map[string]any)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err == nil {
			received[r.URL.Path] = body
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client, err := New(Config{BaseURL: server.URL, Name: "local-importer"})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, client.SubmitNodeReport(ctx, "importer", common.NetworkTestnet))
	require.NoError(t, client.SubmitRecordFileReport(ctx, SubmitRecordFileReportPayload{
		Type:    "importer",
		Network: common.NetworkTestnet,
		Name:    "2024-01-01T00_00_00Z.rcd",
		Index:   42,
	}))

	require.Contains(t, received, "/v1/report/node")
	assert.Equal(t, "local-importer", received["/v1/report/node"]["name"])
	require.Contains(t, received, "/v1/report/record-file")
	assert.Equal(t, float64(42), received["/v1/report/record-file"]["index"])
}
