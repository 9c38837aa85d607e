package migrate

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDatabaseURL(t *testing.T) {
	_, err := parseDatabaseURL("")
	assert.Error(t, err)

	_, err = parseDatabaseURL("mysql://localhost:3306/ledger")
	assert.ErrorContains(t, err, "unsupported database driver")

	u, err := parseDatabaseURL("postgres://localhost:5432/ledger?sslmode=disable")
	require.NoError(t, err)
	assert.Equal(t, "postgres", u.Scheme)
}

func TestCloneURLWithQuery(t *testing.T) {
	u, err := url.Parse("postgres://localhost:5432/ledger?sslmode=disable")
	require.NoError(t, err)

	clone := cloneURLWithQuery(u, url.Values{"x-migrations-table": {"importer_schema_migrations"}})
	assert.Equal(t, "disable", clone.Query().Get("sslmode"))
	assert.Equal(t, "importer_schema_migrations", clone.Query().Get("x-migrations-table"))
	assert.Empty(t, u.Query().Get("x-migrations-table"), "original is untouched")
}

func TestUpArgs(t *testing.T) {
	var args migrateUpCmdArgs
	require.NoError(t, args.ParseArgs([]string{"3"}))
	assert.Equal(t, 3, args.N)
	assert.Error(t, args.ParseArgs([]string{"-1"}))
	assert.Error(t, args.ParseArgs([]string{"x"}))
}
