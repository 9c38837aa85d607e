package httpclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient(t *testing.T) {
	var gotPath, gotQuery, gotBody, gotHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotHeader = r.Header.Get("X-Client")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	client, err := New(server.URL+"/api?key=k", Config{Headers: map[string]string{"X-Client": "importer"}})
	require.NoError(t, err)

	resp, err := client.Post(context.Background(), "/v1/report", RequestOptions{Body: []byte(`{"a":1}`)})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Equal(t, "/api/v1/report", gotPath)
	assert.Equal(t, "key=k", gotQuery)
	assert.Equal(t, `{"a":1}`, gotBody)
	assert.Equal(t, "importer", gotHeader)

	var out struct {
		OK bool `json:"ok"`
	}
	require.NoError(t, resp.UnmarshalBody(&out))
	assert.True(t, out.OK)
}

func TestNewRequiresAbsoluteURL(t *testing.T) {
	_, err := New("/relative")
	assert.Error(t, err)
}
