package logging

import (
	"sort"

	"go.uber.org/zap"
)

// Event names emitted by the CLI.
const (
	EventComparisonCompleted = "comparison_completed"
	EventShareEncoded        = "share_encoded"
)

// EventSink receives product events. Implementations must not block.
type EventSink interface {
	Emit(event string, fields map[string]any)
}

// NopSink drops every event.
type NopSink struct{}

func (NopSink) Emit(string, map[string]any) {}

// ZapSink writes events as structured info logs.
type ZapSink struct {
	Logger *zap.Logger
}

// NewZapSink creates a sink on l; a nil logger discards events.
func NewZapSink(l *zap.Logger) *ZapSink {
	if l == nil {
		l = zap.NewNop()
	}
	return &ZapSink{Logger: l}
}

func (s *ZapSink) Emit(event string, fields map[string]any) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	zf := make([]zap.Field, 0, len(keys)+2)
	zf = append(zf, zap.String("op", "event"), zap.String("event", event))
	for _, k := range keys {
		zf = append(zf, zap.Any(k, fields[k]))
	}
	s.Logger.Info("event", zf...)
}
