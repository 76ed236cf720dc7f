package events

import (
	"context"

	"go.uber.org/zap"
)

// LogPublisher writes events to the structured log. It is the default backend
// when no broker is configured.
type LogPublisher struct {
	log *zap.SugaredLogger
}

// NewLogPublisher creates a LogPublisher.
func NewLogPublisher(log *zap.SugaredLogger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Publish(_ context.Context, event Event) error {
	data, err := event.Encode()
	if err != nil {
		return err
	}
	p.log.Infow("domain event", "type", event.Type, "key", event.Key, "event", string(data))
	return nil
}

func (p *LogPublisher) Close() error { return nil }
