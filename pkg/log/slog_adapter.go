package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes diagnostics events to an slog.Logger.
// Useful for development when you want to see events in the console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a SlogAdapter that writes to the given
// slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger at Debug level.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("session_id", event.SessionID),
		slog.String("category", event.Category.String()),
	}

	if event.NodeNum != 0 {
		attrs = append(attrs, slog.Uint64("node", uint64(event.NodeNum)))
	}

	switch {
	case event.Boot != nil:
		attrs = append(attrs,
			slog.String("phase", event.Boot.Phase),
			slog.Uint64("node_num", uint64(event.Boot.NodeNum)),
			slog.Int("num_nodes", event.Boot.NumNodes),
		)
	case event.Persistence != nil:
		attrs = append(attrs,
			slog.String("op", event.Persistence.Op),
			slog.String("outcome", event.Persistence.Outcome),
		)
		if event.Persistence.Version != 0 {
			attrs = append(attrs, slog.Uint64("version", uint64(event.Persistence.Version)))
		}
		if event.Persistence.NumNodes != 0 {
			attrs = append(attrs, slog.Int("num_nodes", event.Persistence.NumNodes))
		}
	case event.Channel != nil:
		attrs = append(attrs,
			slog.String("channel", event.Channel.Name),
			slog.Int("key_len", event.Channel.KeyLen),
			slog.Uint64("generation", uint64(event.Channel.Generation)),
		)
		if event.Channel.FactoryReset {
			attrs = append(attrs, slog.Bool("factory_reset", true))
		}
	case event.NodeUpdate != nil:
		attrs = append(attrs,
			slog.String("kind", event.NodeUpdate.Kind.String()),
			slog.Bool("changed", event.NodeUpdate.Changed),
			slog.Bool("created", event.NodeUpdate.Created),
		)
	case event.Error != nil:
		attrs = append(attrs,
			slog.String("code", event.Error.Code.String()),
			slog.String("error_msg", event.Error.Message),
			slog.String("error_context", event.Error.Context),
		)
		if event.Error.Address != 0 {
			attrs = append(attrs, slog.Uint64("address", uint64(event.Error.Address)))
		}
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "diagnostics", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
