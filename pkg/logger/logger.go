// Package logger is the process wide structured logger, built on log/slog.
//
// nolint: sloglint
package logger

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"time"
)

var (
	lvl = new(slog.LevelVar)

	logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level:       lvl,
		ReplaceAttr: levelAttrReplacer,
	}))
)

func init() {
	lvl.Set(slog.LevelDebug)
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(slog.LevelDebug)
}

type Config struct {
	// Output is one of text (default), json or gcp.
	// gcp writes JSON with the keys and severities Cloud Logging expects.
	Output string `mapstructure:"output"`

	// Debug lowers the level to debug and adds source locations and error stack traces.
	Debug bool `mapstructure:"debug"`
}

// Init replaces the global logger and the slog default with one built from cfg.
func Init(cfg Config) error {
	replacers := []replacer{levelAttrReplacer, errorAttrReplacer}
	var middlewares []middleware

	lvl.Set(slog.LevelInfo)
	if cfg.Debug {
		lvl.Set(slog.LevelDebug)
		middlewares = append(middlewares, middlewareErrorStackTrace())
	}
	opts := &slog.HandlerOptions{AddSource: cfg.Debug, Level: lvl}

	var handler slog.Handler
	switch strings.ToLower(cfg.Output) {
	case "json":
		opts.ReplaceAttr = attrReplacerChain(append(replacers, durationMsAttrReplacer)...)
		handler = slog.NewJSONHandler(os.Stdout, opts)
	case "gcp":
		opts.AddSource = true
		opts.ReplaceAttr = attrReplacerChain(append([]replacer{gcpAttrReplacer, durationMsAttrReplacer}, replacers...)...)
		handler = slog.NewJSONHandler(os.Stdout, opts)
	default:
		opts.ReplaceAttr = attrReplacerChain(replacers...)
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger = slog.New(newChainHandlers(handler, middlewares...))
	slog.SetDefault(logger)
	return nil
}

// With returns the global logger with args attached to every record.
func With(args ...any) *slog.Logger {
	return logger.With(args...)
}

func Error(msg string, args ...any) {
	log(context.Background(), logger, slog.LevelError, msg, args...)
}

// Panic logs at [LevelPanic] and then panics with msg.
func Panic(msg string, args ...any) {
	log(context.Background(), logger, LevelPanic, msg, args...)
	panic(msg)
}

// LogAttrs logs attrs with the logger carried by ctx.
func LogAttrs(ctx context.Context, level slog.Level, msg string, attrs ...slog.Attr) {
	if ctx == nil {
		ctx = context.Background()
	}
	l := FromContext(ctx)
	if !l.Enabled(ctx, level) {
		return
	}
	r := slog.NewRecord(time.Now(), level, msg, callerPC(3))
	r.AddAttrs(attrs...)
	_ = l.Handler().Handle(ctx, r)
}

// log must be called directly by an exported function, the caller pc is taken at a fixed depth.
func log(ctx context.Context, l *slog.Logger, level slog.Level, msg string, args ...any) {
	if ctx == nil {
		ctx = context.Background()
	}
	if !l.Enabled(ctx, level) {
		return
	}
	r := slog.NewRecord(time.Now(), level, msg, callerPC(4))
	r.Add(args...)
	_ = l.Handler().Handle(ctx, r)
}

// callerPC returns the pc skip frames up, counting runtime.Callers and callerPC itself.
func callerPC(skip int) uintptr {
	var pcs [1]uintptr
	runtime.Callers(skip, pcs[:])
	return pcs[0]
}
