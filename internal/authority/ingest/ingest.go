// Package ingest runs batches of authority change events through the change
// pipeline: count links, diff, classify, record, notify and propagate.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"authlinks/internal/authority/change"
	"authlinks/internal/authority/models"
	"authlinks/internal/authority/stats"
	"authlinks/internal/platform/metrics"
	id "authlinks/pkg/domain"
	"authlinks/pkg/platform/batch"
	"authlinks/pkg/requestcontext"
)

// Runner executes fn scoped to a tenant and acting user.
type Runner interface {
	Run(ctx context.Context, tenant id.TenantID, user id.UserID, fn func(ctx context.Context) error) error
}

// LinkCounter counts the links of each authority in the context tenant.
type LinkCounter interface {
	CountLinksByAuthorityIDs(ctx context.Context, authorityIDs []id.AuthorityID) (map[id.AuthorityID]int, error)
}

// Differ computes the trackable field changes between two snapshots.
type Differ interface {
	Compute(old, updated *models.Snapshot) models.Changes
}

// SourceFetcher loads the current source content of authorities.
type SourceFetcher interface {
	FetchContent(ctx context.Context, authorityIDs []id.AuthorityID) ([]models.SourceRecord, error)
}

// StatRecorder persists data stats for change records.
type StatRecorder interface {
	Record(ctx context.Context, records []change.Record) ([]change.Record, []stats.DataStat, error)
}

// Dispatcher turns records of one change type into notifications.
type Dispatcher interface {
	Dispatch(ctx context.Context, changeType change.Type, records []change.Record) ([]models.Notification, error)
}

// Publisher sends notifications to a tenant's link updaters.
type Publisher interface {
	Publish(ctx context.Context, events []models.Notification, tenant id.TenantID) error
}

// Propagator schedules records for the consortium members of a tenant.
type Propagator interface {
	Propagate(ctx context.Context, records []change.Record, tenant id.TenantID) int
}

// Deps are the collaborators of a Coordinator. Propagator may be nil when
// consortium propagation is disabled.
type Deps struct {
	Runner     Runner
	Links      LinkCounter
	Differ     Differ
	Sources    SourceFetcher
	Recorder   StatRecorder
	Dispatcher Dispatcher
	Publisher  Publisher
	Propagator Propagator
}

// Coordinator processes change event batches one tenant and user at a time.
type Coordinator struct {
	deps    Deps
	policy  batch.Policy
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Coordinator)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) {
		c.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Coordinator) {
		c.metrics = m
	}
}

// WithPolicy sets the retry policy of the whole sub-batch phase.
func WithPolicy(p batch.Policy) Option {
	return func(c *Coordinator) {
		c.policy = p
	}
}

func New(deps Deps, opts ...Option) *Coordinator {
	c := &Coordinator{
		deps:   deps,
		policy: batch.DefaultPolicy,
		tracer: otel.Tracer("authlinks/ingest"),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type subBatch struct {
	tenant id.TenantID
	user   id.UserID
	events []models.Event
}

// Ingest processes events grouped by tenant and then by acting user, in
// arrival order. A sub-batch that keeps failing is retried event by event and
// events that still fail are logged and skipped. Ingest only returns an error
// when ctx is done.
func (c *Coordinator) Ingest(ctx context.Context, events []models.Event) error {
	if len(events) == 0 {
		return nil
	}
	if c.metrics != nil {
		c.metrics.AddEventsReceived(len(events))
	}

	for _, sb := range group(events) {
		err := batch.ProcessWithFallback(ctx, sb.events, c.policy,
			func(ctx context.Context, items []models.Event) error {
				return c.deps.Runner.Run(ctx, sb.tenant, sb.user, func(ctx context.Context) error {
					return c.process(ctx, items)
				})
			},
			func(ev models.Event, err error) {
				c.itemFailed(ctx, ev, metrics.StageBatch, err)
			},
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// group splits events by tenant, then by user, keeping first-seen order.
func group(events []models.Event) []*subBatch {
	type key struct {
		tenant id.TenantID
		user   id.UserID
	}
	var tenants []id.TenantID
	byTenant := make(map[id.TenantID][]*subBatch)
	index := make(map[key]*subBatch)
	for _, ev := range events {
		k := key{tenant: ev.Tenant, user: ev.UserID}
		sb, ok := index[k]
		if !ok {
			if _, seen := byTenant[ev.Tenant]; !seen {
				tenants = append(tenants, ev.Tenant)
			}
			sb = &subBatch{tenant: ev.Tenant, user: ev.UserID}
			index[k] = sb
			byTenant[ev.Tenant] = append(byTenant[ev.Tenant], sb)
		}
		sb.events = append(sb.events, ev)
	}

	out := make([]*subBatch, 0, len(index))
	for _, tenant := range tenants {
		out = append(out, byTenant[tenant]...)
	}
	return out
}

func (c *Coordinator) process(ctx context.Context, events []models.Event) (err error) {
	tenant := requestcontext.TenantID(ctx)
	ctx, span := c.tracer.Start(ctx, "ingest.sub_batch", trace.WithAttributes(
		attribute.String("tenant", tenant.String()),
		attribute.Int("events", len(events)),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	if c.metrics != nil {
		defer c.metrics.ObserveIngest(time.Now())
	}

	ids := make([]id.AuthorityID, 0, len(events))
	for _, ev := range events {
		ids = append(ids, ev.ID)
	}
	counts, err := c.deps.Links.CountLinksByAuthorityIDs(ctx, ids)
	if err != nil {
		return err
	}

	changed := c.classify(ctx, events, counts)
	if len(changed) == 0 {
		return nil
	}

	var processable []int
	for i, rec := range changed {
		if !rec.IsProcessable() {
			continue
		}
		processable = append(processable, i)
		if c.metrics != nil {
			c.metrics.IncrementClassified(string(rec.ChangeType()))
		}
	}

	if len(processable) > 0 {
		records := make([]change.Record, len(processable))
		for j, i := range processable {
			records[j] = changed[i]
		}
		if records, err = c.attachSources(ctx, records); err != nil {
			return err
		}
		if records, _, err = c.deps.Recorder.Record(ctx, records); err != nil {
			return err
		}
		for j, i := range processable {
			changed[i] = records[j]
		}
		c.notify(ctx, tenant, records)
	}

	c.propagate(ctx, tenant, changed)
	return nil
}

// classify diffs and classifies each event. Events without changes are
// dropped; malformed events are logged and dropped.
func (c *Coordinator) classify(ctx context.Context, events []models.Event, counts map[id.AuthorityID]int) []change.Record {
	out := make([]change.Record, 0, len(events))
	for _, ev := range events {
		changes := c.deps.Differ.Compute(ev.Old, ev.New)
		rec, err := change.Classify(ev, changes, counts[ev.ID])
		switch {
		case errors.Is(err, change.ErrNoChanges):
			c.logger.DebugContext(ctx, "authority event without trackable changes",
				"authority_id", ev.ID,
				"tenant", ev.Tenant,
			)
			continue
		case err != nil:
			c.itemFailed(ctx, ev, metrics.StageClassify, err)
			continue
		}
		out = append(out, rec)
	}
	return out
}

// attachSources fetches the current source content once per authority for
// UPDATE records that change a heading.
func (c *Coordinator) attachSources(ctx context.Context, records []change.Record) ([]change.Record, error) {
	var ids []id.AuthorityID
	for _, rec := range records {
		if needsSource(rec) {
			ids = append(ids, rec.AuthorityID())
		}
	}
	if len(ids) == 0 {
		return records, nil
	}

	sources, err := c.deps.Sources.FetchContent(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("fetch source records: %w", err)
	}
	byAuthority := make(map[id.AuthorityID]*models.SourceRecord, len(sources))
	for i := range sources {
		byAuthority[sources[i].AuthorityID] = &sources[i]
	}

	out := make([]change.Record, len(records))
	for i, rec := range records {
		out[i] = rec
		if !needsSource(rec) {
			continue
		}
		if sr, ok := byAuthority[rec.AuthorityID()]; ok {
			out[i] = rec.WithSourceRecord(sr)
		} else {
			c.logger.DebugContext(ctx, "no source record for authority",
				"authority_id", rec.AuthorityID(),
			)
		}
	}
	return out, nil
}

func needsSource(rec change.Record) bool {
	return rec.ChangeType() == change.TypeUpdate && !rec.IsOnlyNaturalIDChange()
}

// notify dispatches and publishes each change type group. A failing group is
// logged and skipped.
func (c *Coordinator) notify(ctx context.Context, tenant id.TenantID, records []change.Record) {
	order, groups := change.GroupByType(records)
	for _, changeType := range order {
		events, err := c.deps.Dispatcher.Dispatch(ctx, changeType, groups[changeType])
		if err != nil {
			c.groupFailed(ctx, tenant, changeType, metrics.StageDispatch, err)
			continue
		}
		if len(events) == 0 {
			continue
		}
		if err := c.deps.Publisher.Publish(ctx, events, tenant); err != nil {
			c.groupFailed(ctx, tenant, changeType, metrics.StagePublish, err)
		}
	}
}

// propagate hands every changed record except hard deletes to the consortium
// propagator. Members recount links, so records unprocessable here may still
// be processable there.
func (c *Coordinator) propagate(ctx context.Context, tenant id.TenantID, records []change.Record) {
	if c.deps.Propagator == nil {
		return
	}
	out := make([]change.Record, 0, len(records))
	for _, rec := range records {
		ev := rec.Event()
		if ev.Type == models.EventDelete && ev.DeleteSubType == models.HardDelete {
			continue
		}
		out = append(out, rec)
	}
	if len(out) == 0 {
		return
	}
	c.deps.Propagator.Propagate(ctx, out, tenant)
}

func (c *Coordinator) itemFailed(ctx context.Context, ev models.Event, stage string, err error) {
	c.logger.ErrorContext(ctx, "failed to process authority change",
		"authority_id", ev.ID,
		"tenant", ev.Tenant,
		"event_type", ev.Type,
		"stage", stage,
		"error", err,
	)
	if c.metrics != nil {
		c.metrics.IncrementFailed(stage)
	}
}

func (c *Coordinator) groupFailed(ctx context.Context, tenant id.TenantID, changeType change.Type, stage string, err error) {
	c.logger.ErrorContext(ctx, "failed to notify link updaters",
		"tenant", tenant,
		"change_type", changeType,
		"stage", stage,
		"error", err,
	)
	if c.metrics != nil {
		c.metrics.IncrementFailed(stage)
	}
}
