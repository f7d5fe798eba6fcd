package stats

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"authlinks/internal/authority/models"
	"authlinks/internal/platform/metrics"
	id "authlinks/pkg/domain"
	dErrors "authlinks/pkg/domain-errors"
	"authlinks/pkg/platform/sentinel"
	"authlinks/pkg/requestcontext"
)

// LinkStatusUpdater records link update outcomes on the tenant's links.
type LinkStatusUpdater interface {
	UpdateStatusByIDs(ctx context.Context, tenant id.TenantID, linkIDs []int64, status models.LinkStatus, errorCause string) error
	UpdateStatusByAuthorityID(ctx context.Context, tenant id.TenantID, authorityID id.AuthorityID, status models.LinkStatus, errorCause string) error
}

// TxRunner runs fn inside a transaction carried by its context.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type directTx struct{}

func (directTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// Service owns the data stat lifecycle. The tenant is taken from the request
// context, so every call must run inside a tenant scope.
type Service struct {
	store   Store
	links   LinkStatusUpdater
	tx      TxRunner
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithTx makes report application atomic across links and stats.
func WithTx(tx TxRunner) Option {
	return func(s *Service) {
		s.tx = tx
	}
}

func New(store Store, links LinkStatusUpdater, opts ...Option) *Service {
	s := &Service{
		store:  store,
		links:  links,
		tx:     directTx{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateInBatch assigns ids to new stats, marks them in progress and persists
// them with one store call.
func (s *Service) CreateInBatch(ctx context.Context, stats []DataStat) ([]DataStat, error) {
	if len(stats) == 0 {
		return nil, nil
	}
	tenant, err := tenantFrom(ctx)
	if err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)
	out := make([]DataStat, len(stats))
	for i, st := range stats {
		if st.ID.IsNil() {
			st.ID = id.JobID(uuid.New())
		}
		st.Status = StatusInProgress
		if st.StartedAt.IsZero() {
			st.StartedAt = now
		}
		out[i] = st
	}
	if err := s.store.CreateInBatch(ctx, tenant, out); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create data stats")
	}
	if s.metrics != nil {
		s.metrics.AddStatsCreated(len(out))
	}
	return out, nil
}

// UpdateForReports applies link update reports to the links and to the stat
// of jobID. A missing stat still updates the links named by the reports.
func (s *Service) UpdateForReports(ctx context.Context, jobID id.JobID, reports []models.LinkUpdateReport) error {
	tenant, err := tenantFrom(ctx)
	if err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "updating links and stats for reports",
		"tenant", tenant,
		"job_id", jobID,
		"reports", len(reports),
	)

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		stat, err := s.store.FindByID(ctx, tenant, jobID)
		found := err == nil
		if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load data stat")
		}

		if err := s.updateLinks(ctx, tenant, stat, found, reports); err != nil {
			return err
		}
		if !found {
			s.logger.WarnContext(ctx, "no data stat found for job", "tenant", tenant, "job_id", jobID)
			return nil
		}

		updated := ApplyReports(stat, reports, requestcontext.Now(ctx))
		if err := s.store.SaveOutcome(ctx, tenant, updated); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save data stat")
		}
		s.logger.InfoContext(ctx, "data stat updated",
			"tenant", tenant,
			"job_id", jobID,
			"status", updated.Status,
		)
		return nil
	})
	if err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.AddReportsApplied(len(reports))
	}
	return nil
}

func (s *Service) updateLinks(ctx context.Context, tenant id.TenantID, stat DataStat, found bool, reports []models.LinkUpdateReport) error {
	for _, r := range reports {
		status := models.LinkStatusFor(r.Status)
		cause := strings.TrimSpace(r.FailCause)
		switch {
		case len(r.LinkIDs) > 0:
			if err := s.links.UpdateStatusByIDs(ctx, tenant, r.LinkIDs, status, cause); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update link status")
			}
		case found:
			if err := s.links.UpdateStatusByAuthorityID(ctx, tenant, stat.AuthorityID, status, cause); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update link status")
			}
		}
	}
	return nil
}

// UpdateOnlyStatsForReports applies reports to the stats of jobID without
// touching links. Member tenants match their copies through the origin job id.
func (s *Service) UpdateOnlyStatsForReports(ctx context.Context, jobID id.JobID, reports []models.LinkUpdateReport) error {
	tenant, err := tenantFrom(ctx)
	if err != nil {
		return err
	}
	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		stats, err := s.store.FindByJob(ctx, tenant, jobID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load data stats")
		}
		if len(stats) == 0 {
			s.logger.WarnContext(ctx, "no data stat found for job", "tenant", tenant, "job_id", jobID)
			return nil
		}
		now := requestcontext.Now(ctx)
		for _, st := range stats {
			if err := s.store.SaveOutcome(ctx, tenant, ApplyReports(st, reports, now)); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save data stat")
			}
		}
		return nil
	})
}

// DeleteByAuthorityID removes every stat of an authority in the current tenant.
func (s *Service) DeleteByAuthorityID(ctx context.Context, authorityID id.AuthorityID) error {
	tenant, err := tenantFrom(ctx)
	if err != nil {
		return err
	}
	n, err := s.store.DeleteByAuthorityID(ctx, tenant, authorityID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete data stats")
	}
	s.logger.DebugContext(ctx, "data stats deleted", "tenant", tenant, "authority_id", authorityID, "count", n)
	return nil
}

// ApplyReports folds reports into stat. Only reports naming links are counted;
// a failure without links fails the whole job. Once every link has an
// outcome the stat is completed and its status derived from the failures.
func ApplyReports(stat DataStat, reports []models.LinkUpdateReport, now time.Time) DataStat {
	var succeeded, failed int
	allFailed := false
	for _, r := range reports {
		if len(r.LinkIDs) == 0 {
			if r.Status == models.ReportFail {
				allFailed = true
			}
			continue
		}
		switch r.Status {
		case models.ReportSuccess:
			succeeded++
		case models.ReportFail:
			failed++
		}
	}
	stat.LbUpdated += succeeded
	stat.LbFailed += failed
	if allFailed {
		stat.LbFailed = stat.LbTotal
	}

	if !stat.IsComplete() {
		return stat
	}
	completed := now
	stat.CompletedAt = &completed
	switch {
	case stat.LbFailed == 0:
		stat.Status = StatusCompletedSuccess
		return stat
	case stat.LbFailed == stat.LbTotal:
		stat.Status = StatusFailed
	default:
		stat.Status = StatusCompletedWithErrors
	}
	for _, r := range reports {
		if strings.TrimSpace(r.FailCause) != "" {
			stat.FailCause = r.FailCause
			break
		}
	}
	return stat
}

func tenantFrom(ctx context.Context) (id.TenantID, error) {
	tenant := requestcontext.TenantID(ctx)
	if tenant.IsNil() {
		return "", dErrors.New(dErrors.CodeInvariantViolation, "tenant scope required")
	}
	return tenant, nil
}
