package events

import (
	"context"

	"budgetbot/internal/logger"
)

// Notify publishes each event and logs, rather than returns, any failure.
// Callers invoke it after their database transaction has committed.
func Notify(ctx context.Context, p Publisher, evts ...Event) {
	if p == nil {
		return
	}
	for _, e := range evts {
		if err := p.Publish(ctx, e); err != nil {
			logger.Named("events").Warnw("failed to publish event",
				"type", e.Type,
				"key", e.Key,
				"error", err,
			)
		}
	}
}
