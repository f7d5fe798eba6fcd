package stats

import (
	"context"

	id "authlinks/pkg/domain"
)

// Store persists data stats in a tenant's schema.
type Store interface {
	CreateInBatch(ctx context.Context, tenant id.TenantID, stats []DataStat) error
	FindByID(ctx context.Context, tenant id.TenantID, jobID id.JobID) (DataStat, error)
	// FindByJob returns the stat whose id is jobID or that was copied from it.
	FindByJob(ctx context.Context, tenant id.TenantID, jobID id.JobID) ([]DataStat, error)
	SaveOutcome(ctx context.Context, tenant id.TenantID, stat DataStat) error
	DeleteByAuthorityID(ctx context.Context, tenant id.TenantID, authorityID id.AuthorityID) (int, error)
}
