// Package slogx has typed slog.Attr constructors, so call sites never pass loose key value pairs.
package slogx

import (
	"fmt"
	"log/slog"
	"time"
)

// ErrorKey is the key of the attribute built by [Error].
const ErrorKey = "error"

// Error returns an empty attribute for a nil err, which slog handlers drop.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any(ErrorKey, err)
}

func Any(key string, value any) slog.Attr {
	return slog.Any(key, value)
}

func String(key, value string) slog.Attr {
	return slog.String(key, value)
}

// Stringer evaluates value.String() immediately.
func Stringer(key string, value fmt.Stringer) slog.Attr {
	return slog.String(key, value.String())
}

func Int(key string, value int) slog.Attr {
	return slog.Int64(key, int64(value))
}

func Int64(key string, value int64) slog.Attr {
	return slog.Int64(key, value)
}

func Duration(key string, value time.Duration) slog.Attr {
	return slog.Duration(key, value)
}
