package consortium

import (
	"context"
	"fmt"

	"authlinks/internal/authority/models"
	"authlinks/internal/authority/stats"
	id "authlinks/pkg/domain"
)

const kindStats = "stats"

// StatsService is the part of the data stat service member tenants apply
// propagated stats with.
type StatsService interface {
	CreateInBatch(ctx context.Context, batch []stats.DataStat) ([]stats.DataStat, error)
	UpdateOnlyStatsForReports(ctx context.Context, jobID id.JobID, reports []models.LinkUpdateReport) error
	DeleteByAuthorityID(ctx context.Context, authorityID id.AuthorityID) error
}

// PropagationData carries what a member tenant needs for one propagation
// type. Build it with ForCreate, ForUpdate or ForDelete.
type PropagationData struct {
	Stats       []stats.DataStat
	JobID       id.JobID
	Reports     []models.LinkUpdateReport
	AuthorityID id.AuthorityID
}

func ForCreate(created []stats.DataStat) PropagationData {
	return PropagationData{Stats: created}
}

func ForUpdate(jobID id.JobID, reports []models.LinkUpdateReport) PropagationData {
	return PropagationData{JobID: jobID, Reports: reports}
}

func ForDelete(authorityID id.AuthorityID) PropagationData {
	return PropagationData{AuthorityID: authorityID}
}

// StatsPropagator mirrors central tenant data stats into member tenants.
type StatsPropagator struct {
	propagator *Propagator[PropagationData]
	service    StatsService
	links      LinkCounter
}

func NewStatsPropagator(members Members, pool Submitter, runner Runner, service StatsService, links LinkCounter, opts ...Option) *StatsPropagator {
	sp := &StatsPropagator{
		service: service,
		links:   links,
	}
	sp.propagator = NewPropagator(kindStats, members, pool, runner, sp.apply, opts...)
	return sp
}

// Propagate schedules data for every member of tenant and returns the number
// of member tasks submitted.
func (sp *StatsPropagator) Propagate(ctx context.Context, data PropagationData, tenant id.TenantID, op PropagationType) int {
	return sp.propagator.Propagate(ctx, data, op, tenant)
}

func (sp *StatsPropagator) apply(ctx context.Context, data PropagationData, op PropagationType) error {
	switch op {
	case PropagationCreate:
		return sp.create(ctx, data.Stats)
	case PropagationUpdate:
		return sp.service.UpdateOnlyStatsForReports(ctx, data.JobID, data.Reports)
	case PropagationDelete:
		return sp.service.DeleteByAuthorityID(ctx, data.AuthorityID)
	default:
		return fmt.Errorf("unexpected propagation type %q", op)
	}
}

// create copies each central stat and adds the member's own link count to
// the central total.
func (sp *StatsPropagator) create(ctx context.Context, central []stats.DataStat) error {
	if len(central) == 0 {
		return nil
	}
	ids := make([]id.AuthorityID, 0, len(central))
	for _, st := range central {
		ids = append(ids, st.AuthorityID)
	}
	counts, err := sp.links.CountLinksByAuthorityIDs(ctx, ids)
	if err != nil {
		return err
	}

	copies := make([]stats.DataStat, len(central))
	for i, st := range central {
		cp := st.CopyForMember()
		cp.LbTotal += counts[st.AuthorityID]
		copies[i] = cp
	}
	_, err = sp.service.CreateInBatch(ctx, copies)
	return err
}
