package migrate

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/gaze-network/ledger-importer/pkg/logger"
	"github.com/gaze-network/ledger-importer/pkg/logger/slogx"
	"github.com/golang-migrate/migrate/v4"
)

var _ migrate.Logger = (*migrateLogger)(nil)

// migrateLogger forwards golang-migrate progress lines to the structured logger.
type migrateLogger struct {
	log     *slog.Logger
	verbose bool
}

func newMigrateLogger(module string, verbose bool) *migrateLogger {
	return &migrateLogger{
		log:     logger.With(slogx.String("package", "migrate"), slogx.String("module", module)),
		verbose: verbose,
	}
}

func (l *migrateLogger) Printf(format string, v ...interface{}) {
	l.log.Info(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l *migrateLogger) Verbose() bool {
	return l.verbose
}
