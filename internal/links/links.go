// Package links reads and updates the instance-authority links of a tenant.
package links

import (
	"context"

	"authlinks/internal/authority/models"
	id "authlinks/pkg/domain"
	dErrors "authlinks/pkg/domain-errors"
	"authlinks/pkg/platform/collections"
	"authlinks/pkg/requestcontext"
)

// Link ties one bibliographic instance to one authority.
type Link struct {
	ID           int64
	AuthorityID  id.AuthorityID
	InstanceID   id.InstanceID
	BibRecordTag string
	Status       models.LinkStatus
	ErrorCause   string
}

// Store persists links per tenant.
type Store interface {
	Insert(ctx context.Context, tenant id.TenantID, links []Link) ([]Link, error)
	CountByAuthorityIDs(ctx context.Context, tenant id.TenantID, authorityIDs []id.AuthorityID) (map[id.AuthorityID]int, error)
	UpdateStatusByIDs(ctx context.Context, tenant id.TenantID, linkIDs []int64, status models.LinkStatus, errorCause string) error
	UpdateStatusByAuthorityID(ctx context.Context, tenant id.TenantID, authorityID id.AuthorityID, status models.LinkStatus, errorCause string) error
}

// Resolver counts links in the tenant of the request context.
type Resolver struct {
	store Store
}

func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

// CountLinksByAuthorityIDs returns the number of links per authority. Ids
// without links are absent from the result. An empty id set returns an empty
// map without touching the store.
func (r *Resolver) CountLinksByAuthorityIDs(ctx context.Context, authorityIDs []id.AuthorityID) (map[id.AuthorityID]int, error) {
	if len(authorityIDs) == 0 {
		return map[id.AuthorityID]int{}, nil
	}
	tenant := requestcontext.TenantID(ctx)
	if tenant.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "tenant scope required")
	}
	counts, err := r.store.CountByAuthorityIDs(ctx, tenant, collections.Dedupe(authorityIDs))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to count links")
	}
	return counts, nil
}
