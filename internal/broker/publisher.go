package broker

import (
	"context"
	"log/slog"
	"time"

	"github.com/IliaW/lead-hunter/config"
	"github.com/IliaW/lead-hunter/internal/model"
	jsoniter "github.com/json-iterator/go"
	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/compress/lz4"
)

const (
	EventApplicationScored = "application.scored"
	EventLeadFound         = "lead.found"
)

// Publisher emits domain events. Delivery is best-effort: callers log and move on.
type Publisher interface {
	Publish(ctx context.Context, eventType, key string, payload any) error
	Close()
}

type Event struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer messageWriter
	topic  string
	now    func() time.Time
}

func NewKafkaPublisher(cfg *config.ProducerConfig) *KafkaPublisher {
	slog.Info("starting kafka producer...", slog.String("topic", cfg.WriteTopicName))
	kafkaWriter := kafka.Writer{
		Addr:         kafka.TCP(cfg.Addr...),
		Topic:        cfg.WriteTopicName,
		Balancer:     &kafka.Hash{},
		MaxAttempts:  cfg.MaxAttempts,
		BatchSize:    cfg.BatchSize,
		BatchTimeout: cfg.BatchTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		RequiredAcks: kafka.RequiredAcks(cfg.RequiredAsks),
		Compression:  kafka.Compression(new(lz4.Codec).Code()),
	}
	return &KafkaPublisher{
		writer: &kafkaWriter,
		topic:  cfg.WriteTopicName,
		now:    time.Now,
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, eventType, key string, payload any) error {
	body, err := jsoniter.Marshal(Event{Type: eventType, OccurredAt: p.now().UTC(), Payload: payload})
	if err != nil {
		slog.Error("marshaling error.", slog.String("err", err.Error()), slog.String("type", eventType))
		return err
	}
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:     []byte(key),
		Value:   body,
		Headers: []kafka.Header{{Key: "type", Value: []byte(eventType)}},
	})
	if err != nil {
		slog.Error("failed to send message to kafka.", slog.String("err", err.Error()),
			slog.String("type", eventType))
		return err
	}
	slog.Debug("successfully sent message to kafka.", slog.String("type", eventType), slog.String("key", key))

	return nil
}

func (p *KafkaPublisher) Close() {
	slog.Info("stopping kafka writer.")
	if err := p.writer.Close(); err != nil {
		slog.Error("failed to close kafka writer.", slog.String("err", err.Error()))
	}
}

type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, string, any) error { return nil }

func (NoopPublisher) Close() {}

// PublishLeads sends one lead.found event per signal that carries contacts and returns how
// many were sent.
func PublishLeads(ctx context.Context, p Publisher, report *model.LeadReport) int {
	sent := 0
	for i := range report.Signals {
		s := &report.Signals[i]
		if !s.HasContacts() {
			continue
		}
		if err := p.Publish(ctx, EventLeadFound, s.URL, s); err != nil {
			continue
		}
		sent++
	}
	if sent > 0 {
		slog.Info("leads published.", slog.Int("count", sent), slog.String("kind", string(report.Kind)))
	}

	return sent
}
