// Package kafkatransport decodes Kafka records into domain calls. It holds no
// business logic: authority events go to the ingest coordinator and link
// update reports to the stats service.
package kafkatransport

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"authlinks/internal/authority/models"
	"authlinks/internal/platform/kafka/consumer"
	"authlinks/internal/platform/kafka/topics"
	id "authlinks/pkg/domain"
)

// Ingester runs a batch of authority events through the change pipeline.
type Ingester interface {
	Ingest(ctx context.Context, events []models.Event) error
}

// authorityEvent is the upstream domain event payload.
type authorityEvent struct {
	ID            id.AuthorityID       `json:"id"`
	Type          string               `json:"type"`
	DeleteSubType models.DeleteSubType `json:"deleteEventSubType"`
	Tenant        id.TenantID          `json:"tenant"`
	Old           *models.Snapshot     `json:"old"`
	New           *models.Snapshot     `json:"new"`
}

// AuthorityListener turns authority domain events into ingest batches.
type AuthorityListener struct {
	ingester Ingester
	env      string
	logger   *slog.Logger
}

type Option func(*settings)

type settings struct {
	logger *slog.Logger
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

func newSettings(opts []Option) settings {
	s := settings{logger: slog.Default()}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

func NewAuthorityListener(ingester Ingester, env string, opts ...Option) *AuthorityListener {
	s := newSettings(opts)
	return &AuthorityListener{
		ingester: ingester,
		env:      env,
		logger:   s.logger,
	}
}

// HandleBatch decodes msgs and ingests the UPDATE and DELETE events among
// them. Other event types and records without a tenant are logged and
// skipped. An undecodable record or an ingest error is returned, so the
// consumer retries the batch.
func (l *AuthorityListener) HandleBatch(ctx context.Context, msgs []*consumer.Message) error {
	events := make([]models.Event, 0, len(msgs))
	for _, msg := range msgs {
		ev, ok, err := l.decode(ctx, msg)
		if err != nil {
			return err
		}
		if ok {
			events = append(events, ev)
		}
	}
	if len(events) == 0 {
		return nil
	}

	l.logger.InfoContext(ctx, "processing authority events",
		"records", len(msgs),
		"events", len(events),
	)
	if err := l.ingester.Ingest(ctx, events); err != nil {
		return fmt.Errorf("ingest authority events: %w", err)
	}
	return nil
}

func (l *AuthorityListener) decode(ctx context.Context, msg *consumer.Message) (models.Event, bool, error) {
	var payload authorityEvent
	if err := json.Unmarshal(msg.Value, &payload); err != nil {
		return models.Event{}, false, fmt.Errorf("decode authority event %s/%d@%d: %w",
			msg.Topic, msg.Partition, msg.Offset, err)
	}

	eventType := models.EventType(payload.Type)
	if !eventType.Valid() {
		l.logger.DebugContext(ctx, "ignoring authority event type",
			"event_type", payload.Type,
			"authority_id", payload.ID,
		)
		return models.Event{}, false, nil
	}

	tenant := l.tenant(msg, payload.Tenant)
	if tenant.IsNil() {
		l.skip(ctx, msg, "authority event without tenant", nil)
		return models.Event{}, false, nil
	}

	return models.Event{
		ID:            authorityID(msg, payload),
		Type:          eventType,
		DeleteSubType: payload.DeleteSubType,
		Old:           payload.Old,
		New:           payload.New,
		Tenant:        tenant,
		UserID:        actingUser(msg, payload.New, payload.Old),
	}, true, nil
}

// authorityID prefers the payload id, then the record key, then the id of
// the new or old snapshot.
func authorityID(msg *consumer.Message, payload authorityEvent) id.AuthorityID {
	if !payload.ID.IsNil() {
		return payload.ID
	}
	if key, err := id.ParseAuthorityID(string(msg.Key)); err == nil && !key.IsNil() {
		return key
	}
	for _, s := range []*models.Snapshot{payload.New, payload.Old} {
		if s != nil && !s.ID.IsNil() {
			return s.ID
		}
	}
	return id.AuthorityID{}
}

// tenant prefers the payload, then the tenant header, then the topic name.
func (l *AuthorityListener) tenant(msg *consumer.Message, payload id.TenantID) id.TenantID {
	if !payload.IsNil() {
		return payload
	}
	return recordTenant(l.env, msg)
}

func (l *AuthorityListener) skip(ctx context.Context, msg *consumer.Message, reason string, err error) {
	logSkipped(ctx, l.logger, msg, reason, err)
}

// recordTenant reads the tenant header and falls back to the topic name.
func recordTenant(env string, msg *consumer.Message) id.TenantID {
	if h := msg.Header(topics.HeaderTenant); h != "" {
		return id.TenantID(h)
	}
	tenant, _ := topics.TenantFromTopic(env, msg.Topic)
	return tenant
}

func logSkipped(ctx context.Context, logger *slog.Logger, msg *consumer.Message, reason string, err error) {
	logger.WarnContext(ctx, reason,
		"topic", msg.Topic,
		"partition", msg.Partition,
		"offset", msg.Offset,
		"error", err,
	)
}

// actingUser reads the user header and falls back to the snapshot metadata.
// A missing user leaves the zero id, which downstream treats as the system.
func actingUser(msg *consumer.Message, snapshots ...*models.Snapshot) id.UserID {
	if user, err := id.ParseUserID(msg.Header(topics.HeaderUserID)); err == nil {
		return user
	}
	for _, s := range snapshots {
		if user, ok := s.UpdatedBy(); ok {
			return user
		}
	}
	return id.UserID{}
}
