package eventbus

import (
	"context"
	"log/slog"

	"github.com/vsinha/restock/pkg/domain/events"
)

// LogObserver writes events as structured slog records
type LogObserver struct {
	logger *slog.Logger
}

var _ events.Observer = (*LogObserver)(nil)

// NewLogObserver creates a LogObserver; a nil logger means slog.Default()
func NewLogObserver(logger *slog.Logger) *LogObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogObserver{logger: logger}
}

func (o *LogObserver) Observe(event events.Event) {
	level := slog.LevelInfo
	switch event.Type() {
	case events.ForecastFailedEvent:
		level = slog.LevelError
	case events.ForecastShortfallEvent:
		level = slog.LevelWarn
	case events.ForecastStrategySelectedEvent:
		level = slog.LevelDebug
	}

	attrs := []slog.Attr{
		slog.String("event", event.Type()),
		slog.String("stream_id", event.StreamID()),
	}
	if event.Version() > 0 {
		attrs = append(attrs, slog.Int("version", event.Version()))
	}
	if logged, ok := event.Data().(interface{ LogAttrs() []slog.Attr }); ok {
		attrs = append(attrs, logged.LogAttrs()...)
	}
	o.logger.LogAttrs(context.Background(), level, event.Type(), attrs...)
}
