package logger

import (
	"fmt"
	"log/slog"
)

const (
	LevelCritical = slog.Level(12)
	LevelPanic    = slog.Level(14)
	LevelFatal    = slog.Level(16)
)

type replacer = func(groups []string, attr slog.Attr) slog.Attr

// extraLevels is ordered from the highest level down.
var extraLevels = []struct {
	level slog.Level
	name  string
}{
	{LevelFatal, "FATAL"},
	{LevelPanic, "PANIC"},
	{LevelCritical, "CRITICAL"},
}

// levelAttrReplacer names the levels above ERROR that slog doesn't know about.
func levelAttrReplacer(groups []string, attr slog.Attr) slog.Attr {
	if len(groups) > 0 || attr.Key != LevelKey {
		return attr
	}
	l, ok := attr.Value.Any().(slog.Level)
	if !ok {
		return attr
	}
	for _, extra := range extraLevels {
		if l < extra.level {
			continue
		}
		name := extra.name
		if d := l - extra.level; d != 0 {
			name = fmt.Sprintf("%s%+d", name, d)
		}
		return slog.String(attr.Key, name)
	}
	return attr
}

// errorAttrReplacer renders errors by message, JSON handlers would otherwise emit "{}".
func errorAttrReplacer(groups []string, attr slog.Attr) slog.Attr {
	if len(groups) == 0 && (attr.Key == ErrorKey || attr.Key == "err") {
		if err, ok := attr.Value.Any().(error); ok && err != nil {
			return slog.String(attr.Key, err.Error())
		}
	}
	return attr
}

// durationMsAttrReplacer writes durations as integer milliseconds.
func durationMsAttrReplacer(_ []string, attr slog.Attr) slog.Attr {
	if attr.Value.Kind() != slog.KindDuration {
		return attr
	}
	return slog.Int64(attr.Key, attr.Value.Duration().Milliseconds())
}

// gcpAttrReplacer maps the standard keys and levels onto Cloud Logging's structured payload.
func gcpAttrReplacer(_ []string, attr slog.Attr) slog.Attr {
	switch attr.Key {
	case MessageKey:
		attr.Key = "message"
	case SourceKey:
		attr.Key = "logging.googleapis.com/sourceLocation"
	case LevelKey:
		attr.Key = "severity"
		if l, ok := attr.Value.Any().(slog.Level); ok {
			attr.Value = slog.StringValue(gcpSeverity(l))
		}
	}
	return attr
}

// https://cloud.google.com/logging/docs/reference/v2/rest/v2/LogEntry#logseverity
func gcpSeverity(l slog.Level) string {
	switch {
	case l >= LevelFatal:
		return "EMERGENCY"
	case l >= LevelPanic:
		return "ALERT"
	case l >= LevelCritical:
		return "CRITICAL"
	case l >= slog.LevelError:
		return "ERROR"
	case l >= slog.LevelWarn:
		return "WARNING"
	case l >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}

func attrReplacerChain(replacers ...replacer) replacer {
	return func(groups []string, attr slog.Attr) slog.Attr {
		for _, r := range replacers {
			if r != nil {
				attr = r(groups, attr)
			}
		}
		return attr
	}
}
