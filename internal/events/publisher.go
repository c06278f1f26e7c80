// Package events publishes finalized lead records to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"leadpilot.com/lead-qualifier/internal/observability/metrics"
	"leadpilot.com/lead-qualifier/internal/store"
)

// Publisher emits one event per finalized lead. When disabled it degrades to
// log-only mode and every publish is a no-op.
type Publisher struct {
	writer  *kafka.Writer
	topic   string
	enabled bool
	metrics *metrics.Metrics
}

// Config holds Kafka publisher configuration.
type Config struct {
	Brokers []string
	Topic   string
	Enabled bool
}

// New creates a lead event publisher.
func New(cfg *Config) *Publisher {
	m := metrics.DefaultMetrics

	if cfg == nil || !cfg.Enabled || len(cfg.Brokers) == 0 {
		log.Info().Msg("Kafka disabled, finalized leads will be logged only")
		p := &Publisher{enabled: false, metrics: m}
		if cfg != nil {
			p.topic = cfg.Topic
		}
		return p
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
	}

	log.Info().
		Strs("brokers", cfg.Brokers).
		Str("topic", cfg.Topic).
		Msg("Kafka lead publisher initialized")

	return &Publisher{
		writer:  writer,
		topic:   cfg.Topic,
		enabled: true,
		metrics: m,
	}
}

// PublishLead emits the finalized lead record, keyed by session id so events
// for one session stay ordered within a partition.
func (p *Publisher) PublishLead(ctx context.Context, rec *store.LeadRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode lead record: %w", err)
	}

	if !p.enabled {
		log.Debug().Str("leadId", rec.ID).Msg("Kafka disabled, skipping lead event")
		return nil
	}

	p.metrics.EventPublishTotal.Inc()
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(rec.SessionID),
		Value: payload,
	})
	if err != nil {
		p.metrics.EventPublishErrors.Inc()
		return fmt.Errorf("failed to publish lead event: %w", err)
	}

	log.Debug().Str("leadId", rec.ID).Str("topic", p.topic).Msg("lead event published")
	return nil
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}
