package kafkatransport

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"authlinks/internal/authority/models"
	"authlinks/internal/consortium"
	"authlinks/internal/platform/kafka/consumer"
	id "authlinks/pkg/domain"
	"authlinks/pkg/platform/batch"
)

// Runner executes fn scoped to a tenant and acting user.
type Runner interface {
	Run(ctx context.Context, tenant id.TenantID, user id.UserID, fn func(ctx context.Context) error) error
}

// ReportApplier applies link update reports to the links and stat of a job.
type ReportApplier interface {
	UpdateForReports(ctx context.Context, jobID id.JobID, reports []models.LinkUpdateReport) error
}

// StatsPropagator mirrors stat outcomes into consortium member tenants.
type StatsPropagator interface {
	Propagate(ctx context.Context, data consortium.PropagationData, tenant id.TenantID, op consortium.PropagationType) int
}

// ReportListener applies link update reports sent back by the bib-link
// updater.
type ReportListener struct {
	runner     Runner
	applier    ReportApplier
	propagator StatsPropagator
	env        string
	policy     batch.Policy
	logger     *slog.Logger
}

// NewReportListener builds a listener. propagator may be nil when consortium
// propagation is disabled.
func NewReportListener(runner Runner, applier ReportApplier, propagator StatsPropagator, env string, policy batch.Policy, opts ...Option) *ReportListener {
	s := newSettings(opts)
	return &ReportListener{
		runner:     runner,
		applier:    applier,
		propagator: propagator,
		env:        env,
		policy:     policy,
		logger:     s.logger,
	}
}

type jobReports struct {
	jobID   id.JobID
	reports []models.LinkUpdateReport
}

type tenantReports struct {
	tenant id.TenantID
	jobs   []*jobReports
}

// HandleBatch groups reports by tenant and then by job. Each job is applied
// in one transaction, retried, and on persistent failure applied report by
// report. Applied reports of a central tenant are propagated to its members.
// An undecodable record fails the batch before anything is applied.
func (l *ReportListener) HandleBatch(ctx context.Context, msgs []*consumer.Message) error {
	groups, err := l.group(ctx, msgs)
	if err != nil {
		return err
	}
	for _, group := range groups {
		err := l.runner.Run(ctx, group.tenant, id.UserID{}, func(ctx context.Context) error {
			for _, job := range group.jobs {
				if err := l.applyJob(ctx, group.tenant, job); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (l *ReportListener) applyJob(ctx context.Context, tenant id.TenantID, job *jobReports) error {
	return batch.ProcessWithFallback(ctx, job.reports, l.policy,
		func(ctx context.Context, reports []models.LinkUpdateReport) error {
			if err := l.applier.UpdateForReports(ctx, job.jobID, reports); err != nil {
				return err
			}
			if l.propagator != nil {
				l.propagator.Propagate(ctx, consortium.ForUpdate(job.jobID, reports), tenant, consortium.PropagationUpdate)
			}
			return nil
		},
		func(r models.LinkUpdateReport, err error) {
			l.logger.WarnContext(ctx, "failed to process link update report",
				"tenant", tenant,
				"job_id", job.jobID,
				"instance_id", r.InstanceID,
				"status", r.Status,
				"error", err,
			)
		},
	)
}

// group decodes msgs and keeps first-seen order of tenants and jobs.
func (l *ReportListener) group(ctx context.Context, msgs []*consumer.Message) ([]*tenantReports, error) {
	var out []*tenantReports
	byTenant := make(map[id.TenantID]*tenantReports)
	byJob := make(map[id.TenantID]map[id.JobID]*jobReports)

	for _, msg := range msgs {
		var r models.LinkUpdateReport
		if err := json.Unmarshal(msg.Value, &r); err != nil {
			return nil, fmt.Errorf("decode link update report %s/%d@%d: %w",
				msg.Topic, msg.Partition, msg.Offset, err)
		}
		if r.Tenant.IsNil() {
			r.Tenant = recordTenant(l.env, msg)
		}
		if r.Tenant.IsNil() || r.JobID.IsNil() {
			logSkipped(ctx, l.logger, msg, "link update report without tenant or job", nil)
			continue
		}

		tr, ok := byTenant[r.Tenant]
		if !ok {
			tr = &tenantReports{tenant: r.Tenant}
			byTenant[r.Tenant] = tr
			byJob[r.Tenant] = make(map[id.JobID]*jobReports)
			out = append(out, tr)
		}
		jr, ok := byJob[r.Tenant][r.JobID]
		if !ok {
			jr = &jobReports{jobID: r.JobID}
			byJob[r.Tenant][r.JobID] = jr
			tr.jobs = append(tr.jobs, jr)
		}
		jr.reports = append(jr.reports, r)
	}
	return out, nil
}
