package consortium

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"authlinks/internal/authority/change"
	"authlinks/internal/authority/models"
	"authlinks/internal/authority/stats"
	id "authlinks/pkg/domain"
	"authlinks/pkg/requestcontext"
)

const kindLinks = "links"

// LinkCounter counts the links of each authority in the context tenant.
type LinkCounter interface {
	CountLinksByAuthorityIDs(ctx context.Context, authorityIDs []id.AuthorityID) (map[id.AuthorityID]int, error)
}

// StatRecorder persists data stats for change records.
type StatRecorder interface {
	RecordWith(ctx context.Context, records []change.Record, adjust stats.Adjuster) ([]change.Record, []stats.DataStat, error)
}

// Dispatcher turns records of one change type into notifications.
type Dispatcher interface {
	Dispatch(ctx context.Context, changeType change.Type, records []change.Record) ([]models.Notification, error)
}

// Publisher sends notifications to a tenant's link updaters.
type Publisher interface {
	Publish(ctx context.Context, events []models.Notification, tenant id.TenantID) error
}

// LinkPropagator re-runs change handling for central tenant records in every
// member tenant, using the member's own link counts.
type LinkPropagator struct {
	propagator *Propagator[[]change.Record]
	links      LinkCounter
	recorder   StatRecorder
	dispatcher Dispatcher
	publisher  Publisher
	logger     *slog.Logger
}

func NewLinkPropagator(
	members Members,
	pool Submitter,
	runner Runner,
	links LinkCounter,
	recorder StatRecorder,
	dispatcher Dispatcher,
	publisher Publisher,
	opts ...Option,
) *LinkPropagator {
	cfg := settings{logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}
	lp := &LinkPropagator{
		links:      links,
		recorder:   recorder,
		dispatcher: dispatcher,
		publisher:  publisher,
		logger:     cfg.logger,
	}
	lp.propagator = NewPropagator(kindLinks, members, pool, runner, lp.apply, opts...)
	return lp
}

// Propagate schedules records for every member of tenant and returns the
// number of member tasks submitted.
func (lp *LinkPropagator) Propagate(ctx context.Context, records []change.Record, tenant id.TenantID) int {
	if len(records) == 0 {
		return 0
	}
	return lp.propagator.Propagate(ctx, records, PropagationUpdate, tenant)
}

func (lp *LinkPropagator) apply(ctx context.Context, records []change.Record, _ PropagationType) error {
	member := requestcontext.TenantID(ctx)

	central := make(map[id.AuthorityID]change.Record, len(records))
	ids := make([]id.AuthorityID, 0, len(records))
	for _, rec := range records {
		central[rec.AuthorityID()] = rec
		ids = append(ids, rec.AuthorityID())
	}
	counts, err := lp.links.CountLinksByAuthorityIDs(ctx, ids)
	if err != nil {
		return err
	}

	var processable []change.Record
	for _, rec := range records {
		cp := rec.CopyForTenant(member).WithLinkCount(counts[rec.AuthorityID()])
		if sr := rec.SourceRecord(); sr != nil {
			cp = cp.WithSourceRecord(sr)
		}
		if cp.IsProcessable() {
			processable = append(processable, cp)
		}
	}
	if len(processable) == 0 {
		lp.logger.DebugContext(ctx, "no processable changes for member tenant",
			"tenant", member,
			"changes", len(records),
		)
		return nil
	}

	recorded, _, err := lp.recorder.RecordWith(ctx, processable, func(rec change.Record, stat *stats.DataStat) {
		orig, ok := central[rec.AuthorityID()]
		if !ok {
			return
		}
		stat.LbTotal += orig.LinkCount()
		if statID, ok := orig.StatID(); ok {
			stat.OriginJobID = &statID
		}
	})
	if err != nil {
		lp.logger.ErrorContext(ctx, "failed to record member data stats",
			"tenant", member,
			"error", err,
		)
		recorded = processable
	}

	var errs []error
	order, groups := change.GroupByType(recorded)
	for _, changeType := range order {
		events, err := lp.dispatcher.Dispatch(ctx, changeType, groups[changeType])
		if err != nil {
			errs = append(errs, fmt.Errorf("dispatch %s: %w", changeType, err))
			continue
		}
		if len(events) == 0 {
			continue
		}
		if err := lp.publisher.Publish(ctx, events, member); err != nil {
			errs = append(errs, fmt.Errorf("publish %s: %w", changeType, err))
		}
	}
	return errors.Join(errs...)
}
