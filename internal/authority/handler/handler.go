// Package handler turns classified authority changes into link-update
// notifications, one handler per change type.
package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"authlinks/internal/authority/change"
	"authlinks/internal/authority/models"
	dErrors "authlinks/pkg/domain-errors"
	"authlinks/pkg/requestcontext"
)

// ErrNoHandler is returned by Dispatch for a change type without a handler.
var ErrNoHandler = errors.New("no handler for change type")

// TagLookup resolves the record tag a heading field is mapped to.
type TagLookup interface {
	TagFor(ctx context.Context, field models.Field) (string, bool, error)
}

// HandleFunc builds the notifications for records of one change type.
type HandleFunc func(ctx context.Context, records []change.Record) []models.Notification

// Table dispatches records to the handler registered for their change type.
type Table struct {
	arms   map[change.Type]HandleFunc
	tags   TagLookup
	logger *slog.Logger
}

type Option func(*Table)

func WithLogger(logger *slog.Logger) Option {
	return func(t *Table) {
		t.logger = logger
	}
}

// New builds the dispatch table with the UPDATE and DELETE handlers.
func New(tags TagLookup, opts ...Option) *Table {
	t := &Table{
		tags:   tags,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.arms = map[change.Type]HandleFunc{
		change.TypeUpdate: t.handleUpdate,
		change.TypeDelete: t.handleDelete,
	}
	return t
}

// Validate fails when a change type has no registered handler.
func (t *Table) Validate() error {
	for _, ct := range []change.Type{change.TypeUpdate, change.TypeDelete} {
		if _, ok := t.arms[ct]; !ok {
			return dErrors.New(dErrors.CodeConfiguration, fmt.Sprintf("no handler registered for change type %s", ct))
		}
	}
	return nil
}

// Dispatch returns one notification per record, built by the handler for
// changeType.
func (t *Table) Dispatch(ctx context.Context, changeType change.Type, records []change.Record) ([]models.Notification, error) {
	arm, ok := t.arms[changeType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoHandler, changeType)
	}
	if len(records) == 0 {
		return nil, nil
	}
	return arm(ctx, records), nil
}

func (t *Table) handleUpdate(ctx context.Context, records []change.Record) []models.Notification {
	out := make([]models.Notification, 0, len(records))
	for _, rec := range records {
		field, ok := updateHeadingField(rec)
		n := t.notification(ctx, change.TypeUpdate, rec, field, ok)
		n.SourceRecord = rec.SourceRecord()
		out = append(out, n)
	}
	return out
}

func (t *Table) handleDelete(ctx context.Context, records []change.Record) []models.Notification {
	out := make([]models.Notification, 0, len(records))
	for _, rec := range records {
		field, ok := deleteHeadingField(rec)
		out = append(out, t.notification(ctx, change.TypeDelete, rec, field, ok))
	}
	return out
}

func (t *Table) notification(ctx context.Context, changeType change.Type, rec change.Record, field models.Field, hasField bool) models.Notification {
	jobID, _ := rec.StatID()
	tenant := requestcontext.TenantID(ctx)
	if tenant.IsNil() {
		tenant = rec.Event().Tenant
	}
	n := models.Notification{
		JobID:        jobID,
		Type:         changeType,
		Tenant:       tenant,
		AuthorityID:  rec.AuthorityID(),
		NaturalIDOld: rec.NaturalIDOld(),
		NaturalIDNew: rec.NaturalIDNew(),
		LinkCount:    rec.LinkCount(),
		Timestamp:    requestcontext.Now(ctx),
	}
	if hasField {
		n.HeadingTag = t.tagFor(ctx, rec, field)
	}
	return n
}

// tagFor returns an empty tag when the lookup fails; the notification is
// still sent.
func (t *Table) tagFor(ctx context.Context, rec change.Record, field models.Field) string {
	tag, ok, err := t.tags.TagFor(ctx, field)
	if err != nil {
		t.logger.WarnContext(ctx, "heading tag lookup failed",
			"authority_id", rec.AuthorityID(),
			"field", field,
			"error", err,
		)
		return ""
	}
	if !ok {
		t.logger.DebugContext(ctx, "no tag mapped for heading field",
			"authority_id", rec.AuthorityID(),
			"field", field,
		)
		return ""
	}
	return tag
}

// updateHeadingField is the changed heading, or for a pure rename the heading
// the authority currently has.
func updateHeadingField(rec change.Record) (models.Field, bool) {
	if f, ok := rec.HeadingField(); ok {
		return f, true
	}
	return populatedHeading(rec.Event().New)
}

// deleteHeadingField is the heading existing links were made against.
func deleteHeadingField(rec change.Record) (models.Field, bool) {
	if f, ok := populatedHeading(rec.Event().Old); ok {
		return f, true
	}
	return rec.HeadingField()
}

func populatedHeading(s *models.Snapshot) (models.Field, bool) {
	for _, f := range models.HeadingFields() {
		if _, ok := s.Heading(f); ok {
			return f, true
		}
	}
	return 0, false
}
