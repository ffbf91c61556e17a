// Package slogobs implements the observability facade on top of the
// standard library's log/slog, providing structured logging and span
// lifecycle events without external dependencies.
package slogobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/bigduu/llmbridge/providers/observability"
)

// Observer routes observability events through a slog.Logger.
type Observer struct {
	logger *slog.Logger
}

// New creates a slog-based observer. If logger is nil, slog.Default() is used.
func New(logger *slog.Logger) *Observer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Observer{logger: logger}
}

var (
	_ observability.Observer = (*Observer)(nil)
	_ observability.Tracer   = (*Observer)(nil)
)

// levelTrace sits below slog.LevelDebug; slog has no trace level of its own.
const levelTrace = slog.LevelDebug - 4

func (o *Observer) log(ctx context.Context, level slog.Level, msg string, attrs []observability.Attribute) {
	logAttrs := make([]slog.Attr, 0, len(attrs))
	for _, attr := range attrs {
		logAttrs = append(logAttrs, slog.Any(attr.Key, attr.Value))
	}
	o.logger.LogAttrs(ctx, level, msg, logAttrs...)
}

// Trace logs at a level below Debug, used for per-chunk stream diagnostics.
func (o *Observer) Trace(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.log(ctx, levelTrace, msg, attrs)
}

// Debug logs at slog.LevelDebug.
func (o *Observer) Debug(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.log(ctx, slog.LevelDebug, msg, attrs)
}

// Info logs at slog.LevelInfo.
func (o *Observer) Info(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.log(ctx, slog.LevelInfo, msg, attrs)
}

// Warn logs at slog.LevelWarn.
func (o *Observer) Warn(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.log(ctx, slog.LevelWarn, msg, attrs)
}

// Error logs at slog.LevelError.
func (o *Observer) Error(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.log(ctx, slog.LevelError, msg, attrs)
}

// StartSpan begins a named span. The span start and end are emitted as debug
// log lines carrying the span name and elapsed duration; the returned context
// carries the span so downstream code can enrich it.
func (o *Observer) StartSpan(ctx context.Context, name string, attrs ...observability.Attribute) (context.Context, observability.Span) {
	span := &slogSpan{
		name:     name,
		started:  time.Now(),
		observer: o,
		ctx:      ctx,
	}
	span.attrs = append(span.attrs, attrs...)

	o.log(ctx, slog.LevelDebug, "span started", append([]observability.Attribute{
		observability.String("span", name),
	}, attrs...))

	return observability.ContextWithSpan(ctx, span), span
}

type slogSpan struct {
	name     string
	started  time.Time
	observer *Observer
	ctx      context.Context
	attrs    []observability.Attribute
	err      error
}

func (s *slogSpan) End() {
	attrs := []observability.Attribute{
		observability.String("span", s.name),
		observability.Duration("span.duration", time.Since(s.started)),
	}
	attrs = append(attrs, s.attrs...)

	if s.err != nil {
		attrs = append(attrs, observability.Error(s.err))
		s.observer.log(s.ctx, slog.LevelWarn, "span ended with error", attrs)
		return
	}
	s.observer.log(s.ctx, slog.LevelDebug, "span ended", attrs)
}

func (s *slogSpan) SetAttributes(attrs ...observability.Attribute) {
	s.attrs = append(s.attrs, attrs...)
}

func (s *slogSpan) RecordError(err error) {
	s.err = err
}

func (s *slogSpan) AddEvent(name string, attrs ...observability.Attribute) {
	eventAttrs := []observability.Attribute{observability.String("span", s.name)}
	eventAttrs = append(eventAttrs, attrs...)
	s.observer.log(s.ctx, slog.LevelDebug, name, eventAttrs)
}
