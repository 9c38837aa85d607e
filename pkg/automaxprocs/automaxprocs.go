// Package automaxprocs sizes GOMAXPROCS to the container CPU quota before the importer starts.
package automaxprocs

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/Cleverse/go-utilities/utils"
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ledger-importer/pkg/logger"
	"github.com/gaze-network/ledger-importer/pkg/logger/slogx"
	"go.uber.org/automaxprocs/maxprocs"
)

// Init applies the CPU quota, if any, and returns the resulting GOMAXPROCS.
// A GOMAXPROCS environment variable always wins over the quota.
func Init() (int, error) {
	prev := runtime.GOMAXPROCS(0)
	log := logger.With(
		slogx.String("package", "automaxprocs"),
		slogx.String("event", "set_gomaxprocs"),
		slogx.Int("prev_maxprocs", prev),
	)

	printf := func(format string, v ...any) {
		var attrs []slog.Attr
		// maxprocs passes the value it set as the only argument
		if val, ok := utils.Optional(v); ok {
			if _, exists := os.LookupEnv("GOMAXPROCS"); exists {
				val = runtime.GOMAXPROCS(0)
			}
			if n, ok := val.(int); ok {
				attrs = append(attrs, slogx.Int("set_maxprocs", n))
			}
		}
		log.LogAttrs(context.Background(), slog.LevelInfo, fmt.Sprintf(format, v...), attrs...)
	}

	if _, err := maxprocs.Set(maxprocs.Logger(printf), maxprocs.Min(1)); err != nil {
		return prev, errors.Wrap(err, "failed to set GOMAXPROCS")
	}
	return runtime.GOMAXPROCS(0), nil
}
