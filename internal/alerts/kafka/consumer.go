// Package kafka consumes raw security alerts from the intake topic and
// feeds them into the alerts service.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/opswatch/opswatch/internal/alerts"
	"github.com/opswatch/opswatch/internal/domain"
)

// Config holds consumer connection settings.
type Config struct {
	Brokers []string
	Topic   string
	GroupID string
}

// message is the wire shape of one intake alert. Producers send the
// same field names the API accepts.
type message struct {
	Source         string          `json:"source"`
	Type           string          `json:"type"`
	Severity       string          `json:"severity"`
	Description    *string         `json:"description"`
	DetectedAt     *time.Time      `json:"detected_at"`
	OrganizationID string          `json:"organization_id"`
	RawData        json.RawMessage `json:"raw_data"`
}

// Consumer reads alert messages from Kafka and persists them.
type Consumer struct {
	reader  *kafka.Reader
	service *alerts.Service
}

// NewConsumer creates a consumer for the intake topic.
func NewConsumer(cfg Config, service *alerts.Service) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:        cfg.Brokers,
			Topic:          cfg.Topic,
			GroupID:        cfg.GroupID,
			MinBytes:       1,
			MaxBytes:       10e6,
			CommitInterval: time.Second,
		}),
		service: service,
	}
}

// Run consumes until the context is cancelled. Malformed or rejected
// messages are logged, committed and skipped; they never stop the
// consumer.
func (c *Consumer) Run(ctx context.Context) error {
	slog.Info("alert consumer started", "topic", c.reader.Config().Topic)

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			slog.Error("failed to fetch message", "error", err)
			time.Sleep(time.Second)
			continue
		}

		c.handle(ctx, msg)

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			slog.Error("failed to commit message", "error", err)
		}
	}
}

// Close shuts the reader down.
func (c *Consumer) Close() error {
	return c.reader.Close()
}

func (c *Consumer) handle(ctx context.Context, msg kafka.Message) {
	var m message
	if err := json.Unmarshal(msg.Value, &m); err != nil {
		slog.Warn("skipping malformed alert message",
			"partition", msg.Partition,
			"offset", msg.Offset,
			"error", err,
		)
		return
	}

	alert, err := c.service.Ingest(ctx, alerts.CreateAlertInput{
		Source:         m.Source,
		Type:           m.Type,
		Severity:       domain.Severity(m.Severity),
		Description:    m.Description,
		DetectedAt:     m.DetectedAt,
		OrganizationID: m.OrganizationID,
		RawData:        m.RawData,
	})
	if err != nil {
		slog.Warn("skipping rejected alert message",
			"partition", msg.Partition,
			"offset", msg.Offset,
			"error", err,
		)
		return
	}

	slog.Info("alert ingested", "alert_id", alert.ID, "source", alert.Source)
}
