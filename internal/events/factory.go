package events

import (
	"fmt"

	"budgetbot/internal/config"
	"budgetbot/internal/logger"
)

// NewPublisher builds the publisher selected by EVENTS_BACKEND.
func NewPublisher(cfg *config.Config) (Publisher, error) {
	switch cfg.EventsBackend {
	case "none":
		return NopPublisher{}, nil
	case "log":
		return NewLogPublisher(logger.Named("events")), nil
	case "kafka":
		return NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic), nil
	case "amqp":
		return NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	default:
		return nil, fmt.Errorf("unknown events backend %q", cfg.EventsBackend)
	}
}
