// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package logging provides a custom slog handler that integrates with the Event Log system.
// It forwards logs at WARN level and above to the database-backed Event Log for auditing.
package logging

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"

	"github.com/olegiv/zen-cms/internal/model"
	"github.com/olegiv/zen-cms/internal/store"
)

// CategoryKey is the attribute that selects the Event Log category.
const CategoryKey = "category"

// EventWriter persists Event Log rows. *store.Queries satisfies it.
type EventWriter interface {
	CreateEvent(ctx context.Context, arg store.CreateEventParams) error
}

// EventLogHandler is a slog.Handler that wraps another handler and also writes
// WARN and ERROR level logs to the Event Log database.
type EventLogHandler struct {
	inner  slog.Handler
	events EventWriter
	level  slog.Level // Minimum level to forward to Event Log (default: WARN)

	attrs  []slog.Attr // accumulated through WithAttrs, keys already qualified
	prefix string      // group prefix for record attributes
}

// NewEventLogHandler creates a new EventLogHandler that wraps the given handler.
// Logs at WARN level and above will be written to both the wrapped handler and the Event Log.
func NewEventLogHandler(inner slog.Handler, events EventWriter) *EventLogHandler {
	return NewEventLogHandlerWithLevel(inner, events, slog.LevelWarn)
}

// NewEventLogHandlerWithLevel creates a new EventLogHandler with a custom minimum level.
func NewEventLogHandlerWithLevel(inner slog.Handler, events EventWriter, level slog.Level) *EventLogHandler {
	return &EventLogHandler{
		inner:  inner,
		events: events,
		level:  level,
	}
}

// Enabled implements slog.Handler.
func (h *EventLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *EventLogHandler) Handle(ctx context.Context, r slog.Record) error {
	if id := RequestID(ctx); id != "" {
		r.AddAttrs(slog.String("request_id", id))
	}

	if err := h.inner.Handle(ctx, r); err != nil {
		return err
	}

	if r.Level >= h.level && h.events != nil {
		h.writeToEventLog(ctx, r)
	}

	return nil
}

// WithAttrs implements slog.Handler.
func (h *EventLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := h.clone()
	clone.inner = h.inner.WithAttrs(attrs)
	for _, a := range attrs {
		a.Key = h.prefix + a.Key
		clone.attrs = append(clone.attrs, a)
	}
	return clone
}

// WithGroup implements slog.Handler.
func (h *EventLogHandler) WithGroup(name string) slog.Handler {
	clone := h.clone()
	clone.inner = h.inner.WithGroup(name)
	if name != "" {
		clone.prefix = h.prefix + name + "."
	}
	return clone
}

func (h *EventLogHandler) clone() *EventLogHandler {
	return &EventLogHandler{
		inner:  h.inner,
		events: h.events,
		level:  h.level,
		attrs:  append([]slog.Attr(nil), h.attrs...),
		prefix: h.prefix,
	}
}

// writeToEventLog writes a log record to the Event Log database.
func (h *EventLogHandler) writeToEventLog(ctx context.Context, r slog.Record) {
	fields := h.collect(r)

	category, _ := fields[CategoryKey].(string)
	delete(fields, CategoryKey)
	if category == "" {
		category = inferCategory(r.Message)
	}

	requestID := RequestID(ctx)
	delete(fields, "request_id")

	// The request context may already be cancelled when an error is logged.
	_ = h.events.CreateEvent(context.WithoutCancel(ctx), store.CreateEventParams{
		Level:     slogLevelToEventLevel(r.Level),
		Category:  category,
		Message:   r.Message,
		RequestID: requestID,
		Metadata:  encodeMetadata(fields),
		CreatedAt: r.Time.UTC(),
	})
}

// collect flattens handler and record attributes into one map. Record
// attributes win over handler attributes with the same key. A "category"
// attribute is read at any group depth.
func (h *EventLogHandler) collect(r slog.Record) map[string]any {
	fields := make(map[string]any, len(h.attrs)+r.NumAttrs())
	for _, a := range h.attrs {
		addAttr(fields, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == CategoryKey {
			fields[CategoryKey] = a.Value.Resolve().String()
			return true
		}
		addAttr(fields, h.prefix, a)
		return true
	})
	return fields
}

func addAttr(fields map[string]any, prefix string, a slog.Attr) {
	v := a.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		p := prefix
		if a.Key != "" {
			p = prefix + a.Key + "."
		}
		for _, ga := range v.Group() {
			addAttr(fields, p, ga)
		}
		return
	}
	if a.Key == "" {
		return
	}

	switch v.Kind() {
	case slog.KindString:
		fields[prefix+a.Key] = v.String()
	case slog.KindInt64:
		fields[prefix+a.Key] = v.Int64()
	case slog.KindUint64:
		fields[prefix+a.Key] = v.Uint64()
	case slog.KindFloat64:
		fields[prefix+a.Key] = v.Float64()
	case slog.KindBool:
		fields[prefix+a.Key] = v.Bool()
	default:
		if err, ok := v.Any().(error); ok {
			fields[prefix+a.Key] = err.Error()
			return
		}
		fields[prefix+a.Key] = v.String()
	}
}

func encodeMetadata(fields map[string]any) string {
	if len(fields) == 0 {
		return "{}"
	}
	b, err := json.Marshal(fields)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// slogLevelToEventLevel converts a slog.Level to an Event Log level.
func slogLevelToEventLevel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return model.EventLevelError
	case level >= slog.LevelWarn:
		return model.EventLevelWarning
	default:
		return model.EventLevelInfo
	}
}

// inferCategory guesses a category from the message when none was given.
func inferCategory(msg string) string {
	msg = strings.ToLower(msg)
	switch {
	case strings.Contains(msg, "menu"):
		return model.EventCategoryMenu
	case strings.Contains(msg, "package") || strings.Contains(msg, "module"):
		return model.EventCategoryPackage
	case strings.Contains(msg, "setting"):
		return model.EventCategorySetting
	case strings.Contains(msg, "config"):
		return model.EventCategoryConfig
	case strings.Contains(msg, "cache"):
		return model.EventCategoryCache
	default:
		return model.EventCategorySystem
	}
}

// Options configures New.
type Options struct {
	Level  slog.Level
	JSON   bool
	Events EventWriter // nil disables the Event Log
}

// New builds the application logger writing to w.
func New(w io.Writer, opts Options) *slog.Logger {
	hopts := &slog.HandlerOptions{Level: opts.Level}

	var inner slog.Handler
	if opts.JSON {
		inner = slog.NewJSONHandler(w, hopts)
	} else {
		inner = slog.NewTextHandler(w, hopts)
	}

	return slog.New(NewEventLogHandler(inner, opts.Events))
}
