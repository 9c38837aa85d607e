package logger

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strings"

	"github.com/cockroachdb/errors/errbase"
)

type (
	handleFunc func(context.Context, slog.Record) error
	middleware func(handleFunc) handleFunc
)

// chainHandlers runs every record through its middlewares before the wrapped handler.
type chainHandlers struct {
	h           slog.Handler
	middlewares []middleware
}

func newChainHandlers(h slog.Handler, middlewares ...middleware) *chainHandlers {
	return &chainHandlers{h: h, middlewares: middlewares}
}

func (c *chainHandlers) Enabled(ctx context.Context, l slog.Level) bool {
	return c.h.Enabled(ctx, l)
}

func (c *chainHandlers) Handle(ctx context.Context, rec slog.Record) error {
	next := c.h.Handle
	for i := len(c.middlewares) - 1; i >= 0; i-- {
		next = c.middlewares[i](next)
	}
	return next(ctx, rec)
}

func (c *chainHandlers) WithAttrs(attrs []slog.Attr) slog.Handler {
	return newChainHandlers(c.h.WithAttrs(attrs), c.middlewares...)
}

func (c *chainHandlers) WithGroup(name string) slog.Handler {
	return newChainHandlers(c.h.WithGroup(name), c.middlewares...)
}

// middlewareErrorStackTrace adds the verbose error and its stack trace to the first error attribute of a record.
func middlewareErrorStackTrace() middleware {
	return func(next handleFunc) handleFunc {
		return func(ctx context.Context, rec slog.Record) error {
			var extra []slog.Attr
			rec.Attrs(func(attr slog.Attr) bool {
				if attr.Key != ErrorKey && attr.Key != "err" {
					return true
				}
				err, ok := attr.Value.Any().(error)
				if !ok || err == nil {
					return true
				}
				extra = append(extra, slog.String(ErrorVerboseKey, fmt.Sprintf("%+v", err)))
				if p, ok := err.(errbase.StackTraceProvider); ok {
					extra = append(extra, slog.Any(ErrorStackTraceKey, traceFrames(p.StackTrace())))
				}
				return false
			})
			rec.AddAttrs(extra...)
			return next(ctx, rec)
		}
	}
}

// traceFrames formats a stack trace as "function file:line" lines, outermost call first,
// without the runtime frames at the bottom of the stack.
func traceFrames(st errbase.StackTrace) []string {
	frames := make([]string, 0, len(st))
	skipping := true
	for i := len(st) - 1; i >= 0; i-- {
		pc := uintptr(st[i]) - 1
		fn := runtime.FuncForPC(pc)
		if fn == nil {
			frames = append(frames, "unknown")
			skipping = false
			continue
		}
		if skipping && strings.HasPrefix(fn.Name(), "runtime.") {
			continue
		}
		skipping = false
		file, line := fn.FileLine(pc)
		frames = append(frames, fmt.Sprintf("%s %s:%d", fn.Name(), file, line))
	}
	return frames
}
