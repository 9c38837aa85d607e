package migrate

import (
	"net/url"

	"github.com/cockroachdb/errors"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

const (
	importerMigrationSource = "modules/importer/database/postgresql/migrations"
)

// NewMigrateCommand groups the schema commands. Importer versions live in their own migration table.
func NewMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or revert the importer database schema",
	}
	cmd.AddCommand(
		NewMigrateUpCommand(),
		NewMigrateDownCommand(),
	)
	return cmd
}

func cloneURLWithQuery(u *url.URL, newQuery url.Values) *url.URL {
	clone := *u
	query := clone.Query()
	for key, values := range newQuery {
		for _, value := range values {
			query.Add(key, value)
		}
	}
	clone.RawQuery = query.Encode()
	return &clone
}

var supportedDrivers = map[string]struct{}{
	"postgres":   {},
	"postgresql": {},
}

func parseDatabaseURL(rawURL string) (*url.URL, error) {
	if rawURL == "" {
		return nil, errors.New("--database is required")
	}
	databaseURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse database URL")
	}
	if _, ok := supportedDrivers[databaseURL.Scheme]; !ok {
		return nil, errors.Errorf("unsupported database driver: %s", databaseURL.Scheme)
	}
	return databaseURL, nil
}

// newMigrate opens the migrations of one module, versioned in their own migration table.
func newMigrate(module string, sourcePath string, migrationTable string, databaseURL *url.URL) (*migrate.Migrate, error) {
	newDatabaseURL := cloneURLWithQuery(databaseURL, url.Values{"x-migrations-table": {migrationTable}})
	m, err := migrate.New("file://"+sourcePath, newDatabaseURL.String())
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create Migrate instance for %s", module)
	}
	m.Log = newMigrateLogger(module, false)
	return m, nil
}

func isConfirmed(input string) bool {
	return lo.Contains([]string{"y", "yes"}, input)
}
