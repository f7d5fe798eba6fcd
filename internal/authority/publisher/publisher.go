// Package publisher sends link-update notifications to the tenant's
// notification topic.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"authlinks/internal/authority/models"
	"authlinks/internal/platform/kafka/producer"
	"authlinks/internal/platform/kafka/topics"
	"authlinks/internal/platform/metrics"
	id "authlinks/pkg/domain"
	dErrors "authlinks/pkg/domain-errors"
	"authlinks/pkg/requestcontext"
)

// Producer writes records and waits for their acknowledgement.
type Producer interface {
	Produce(ctx context.Context, msgs ...producer.Message) error
}

// Publisher writes notifications keyed by authority id so every notification
// for one authority lands on the same partition.
type Publisher struct {
	producer Producer
	env      string
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

type Option func(*Publisher)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Publisher) {
		p.metrics = m
	}
}

func New(prod Producer, env string, opts ...Option) *Publisher {
	p := &Publisher{
		producer: prod,
		env:      env,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Publish writes events to tenant's notification topic in one produce call.
// Failures are returned to the caller and never retried here.
func (p *Publisher) Publish(ctx context.Context, events []models.Notification, tenant id.TenantID) error {
	if len(events) == 0 {
		return nil
	}
	if tenant.IsNil() {
		return dErrors.New(dErrors.CodeInvariantViolation, "tenant scope required")
	}

	topic := topics.Name(p.env, tenant, topics.LinkNotifications)
	headers := p.headers(ctx, tenant)
	msgs := make([]producer.Message, 0, len(events))
	for _, e := range events {
		value, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("encode notification for authority %s: %w", e.AuthorityID, err)
		}
		msgs = append(msgs, producer.Message{
			Topic:   topic,
			Key:     []byte(e.AuthorityID.String()),
			Value:   value,
			Headers: headers,
		})
	}

	if err := p.producer.Produce(ctx, msgs...); err != nil {
		if p.metrics != nil {
			p.metrics.IncrementPublishFailures()
		}
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to publish link notifications")
	}
	if p.metrics != nil {
		p.metrics.AddPublished(len(msgs))
	}
	p.logger.DebugContext(ctx, "published link notifications",
		"tenant", tenant,
		"topic", topic,
		"count", len(msgs),
	)
	return nil
}

func (p *Publisher) headers(ctx context.Context, tenant id.TenantID) map[string]string {
	h := map[string]string{topics.HeaderTenant: tenant.String()}
	if user := requestcontext.UserID(ctx); !user.IsNil() {
		h[topics.HeaderUserID] = user.String()
	}
	if reqID := requestcontext.RequestID(ctx); reqID != "" {
		h[topics.HeaderRequestID] = reqID
	}
	return h
}
