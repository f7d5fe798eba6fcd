package stats

import (
	"context"
	"fmt"
	"log/slog"

	"authlinks/internal/authority/change"
	"authlinks/internal/authority/models"
)

// TagLookup resolves the record tag a heading field is mapped to.
type TagLookup interface {
	TagFor(ctx context.Context, field models.Field) (string, bool, error)
}

// Adjuster modifies a stat built for rec before it is persisted.
type Adjuster func(rec change.Record, stat *DataStat)

// Recorder turns classified changes into data stats and persists them.
type Recorder struct {
	service *Service
	tags    TagLookup
	logger  *slog.Logger
}

type RecorderOption func(*Recorder)

func WithRecorderLogger(logger *slog.Logger) RecorderOption {
	return func(r *Recorder) {
		r.logger = logger
	}
}

func NewRecorder(service *Service, tags TagLookup, opts ...RecorderOption) *Recorder {
	r := &Recorder{
		service: service,
		tags:    tags,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record persists one stat per record whose action is not DELETE and returns
// every record, the persisted ones stamped with their stat id, along with the
// created stats.
func (r *Recorder) Record(ctx context.Context, records []change.Record) ([]change.Record, []DataStat, error) {
	return r.RecordWith(ctx, records, nil)
}

// RecordWith is Record with a hook applied to each stat before persistence.
func (r *Recorder) RecordWith(ctx context.Context, records []change.Record, adjust Adjuster) ([]change.Record, []DataStat, error) {
	out := make([]change.Record, len(records))
	copy(out, records)

	var (
		pending []DataStat
		indexes []int
	)
	for i, rec := range records {
		stat := r.Build(ctx, rec)
		if stat.Action == ActionDelete {
			continue
		}
		if adjust != nil {
			adjust(rec, &stat)
		}
		pending = append(pending, stat)
		indexes = append(indexes, i)
	}
	if len(pending) == 0 {
		return out, nil, nil
	}

	created, err := r.service.CreateInBatch(ctx, pending)
	if err != nil {
		return nil, nil, err
	}
	for n, i := range indexes {
		out[i] = out[i].WithStatID(created[n].ID)
	}
	return out, created, nil
}

// Build derives the stat for rec without persisting it. With a single changed
// heading both sides come from that field. With two, the field that gained a
// value supplies the new heading and the field that lost one the old heading.
func (r *Recorder) Build(ctx context.Context, rec change.Record) DataStat {
	stat := DataStat{
		AuthorityID:   rec.AuthorityID(),
		Action:        ActionFor(rec),
		NaturalIDOld:  rec.NaturalIDOld(),
		NaturalIDNew:  rec.NaturalIDNew(),
		SourceFileOld: rec.SourceFileOld(),
		SourceFileNew: rec.SourceFileNew(),
		LbTotal:       rec.LinkCount(),
	}
	if user, ok := rec.StartedBy(); ok {
		stat.StartedByUserID = &user
	}

	headings := rec.HeadingChanges()
	if len(headings) == 1 {
		c := headings[0]
		headingType := r.headingType(ctx, c.Field)
		stat.HeadingOld = stringify(c.Old)
		stat.HeadingNew = stringify(c.New)
		stat.HeadingTypeOld = headingType
		stat.HeadingTypeNew = headingType
		return stat
	}
	for _, c := range headings {
		switch {
		case c.New != nil:
			stat.HeadingNew = stringify(c.New)
			stat.HeadingTypeNew = r.headingType(ctx, c.Field)
		case c.Old != nil:
			stat.HeadingOld = stringify(c.Old)
			stat.HeadingTypeOld = r.headingType(ctx, c.Field)
		}
	}
	return stat
}

// ActionFor maps a classified change to its stat action.
func ActionFor(rec change.Record) Action {
	switch {
	case rec.ChangeType() == change.TypeDelete:
		return ActionDelete
	case rec.IsOnlyNaturalIDChange():
		return ActionUpdateNaturalID
	default:
		return ActionUpdateHeading
	}
}

func (r *Recorder) headingType(ctx context.Context, field models.Field) string {
	if r.tags == nil {
		return field.String()
	}
	tag, ok, err := r.tags.TagFor(ctx, field)
	if err != nil {
		r.logger.DebugContext(ctx, "heading tag lookup failed", "field", field.String(), "error", err)
		return field.String()
	}
	if !ok {
		return field.String()
	}
	return tag
}

func stringify(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
