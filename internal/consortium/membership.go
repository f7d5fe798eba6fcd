// Package consortium resolves consortium membership and propagates changes
// recorded in a central tenant to its member tenants.
package consortium

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"authlinks/internal/platform/cache"
	id "authlinks/pkg/domain"
	dErrors "authlinks/pkg/domain-errors"
	"authlinks/pkg/platform/sentinel"
	"authlinks/pkg/requestcontext"
)

const (
	userTenantsPath = "user-tenants"
	tenantsLimit    = 10000

	userTenantCacheKey = "consortium-user-tenant"
	membersCacheKey    = "consortium-members"
)

// ErrIntegrationUnavailable means the consortium peer modules could not be
// reached or returned an unusable answer.
var ErrIntegrationUnavailable = errors.New("consortium integration unavailable")

// Peer performs tenant-scoped GET requests against peer modules.
type Peer interface {
	GetJSON(ctx context.Context, path string, query url.Values, dest any) error
}

// Affiliation is a tenant's place in a consortium. A tenant outside any
// consortium has a zero Affiliation.
type Affiliation struct {
	ConsortiumID  string      `json:"consortiumId"`
	CentralTenant id.TenantID `json:"centralTenantId"`
}

func (a Affiliation) InConsortium() bool { return a.ConsortiumID != "" }

type userTenantsResponse struct {
	UserTenants []Affiliation `json:"userTenants"`
}

type memberTenant struct {
	ID        id.TenantID `json:"id"`
	IsCentral bool        `json:"isCentral"`
}

type tenantsResponse struct {
	Tenants []memberTenant `json:"tenants"`
}

// Membership answers consortium questions for a tenant. Answers are cached
// per tenant.
type Membership struct {
	peer         Peer
	affiliations *cache.Loader[Affiliation]
	members      *cache.Loader[[]id.TenantID]
	logger       *slog.Logger
}

type MembershipOption func(*Membership)

func WithMembershipLogger(logger *slog.Logger) MembershipOption {
	return func(m *Membership) {
		m.logger = logger
	}
}

func NewMembership(peer Peer, store cache.Store, opts ...MembershipOption) *Membership {
	m := &Membership{
		peer:   peer,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.affiliations = cache.NewLoader[Affiliation](store, m.logger)
	m.members = cache.NewLoader[[]id.TenantID](store, m.logger)
	return m
}

// MembersOf lists the non-central tenants of tenant's consortium when tenant
// is its central tenant. Any other tenant has no members.
func (m *Membership) MembersOf(ctx context.Context, tenant id.TenantID) ([]id.TenantID, error) {
	if tenant.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "tenant scope required")
	}
	return m.members.GetOrLoad(ctx, tenant, membersCacheKey, func(ctx context.Context) ([]id.TenantID, error) {
		aff, err := m.Affiliation(ctx, tenant)
		if err != nil {
			return nil, err
		}
		if !aff.InConsortium() || aff.CentralTenant != tenant {
			return []id.TenantID{}, nil
		}

		var resp tenantsResponse
		query := url.Values{"limit": {strconv.Itoa(tenantsLimit)}}
		path := fmt.Sprintf("consortia/%s/tenants", url.PathEscape(aff.ConsortiumID))
		if err := m.peer.GetJSON(scoped(ctx, tenant), path, query, &resp); err != nil {
			return nil, integrationError(err, "failed to list consortium tenants")
		}

		members := make([]id.TenantID, 0, len(resp.Tenants))
		for _, t := range resp.Tenants {
			if t.IsCentral || t.ID.IsNil() {
				continue
			}
			members = append(members, t.ID)
		}
		return members, nil
	})
}

// CentralTenant returns the central tenant of tenant's consortium. ok is false
// when tenant is not in a consortium.
func (m *Membership) CentralTenant(ctx context.Context, tenant id.TenantID) (central id.TenantID, ok bool, err error) {
	aff, err := m.Affiliation(ctx, tenant)
	if err != nil {
		return "", false, err
	}
	if !aff.InConsortium() || aff.CentralTenant.IsNil() {
		return "", false, nil
	}
	return aff.CentralTenant, true, nil
}

// IsCentral reports whether tenant is the central tenant of its consortium.
func (m *Membership) IsCentral(ctx context.Context, tenant id.TenantID) (bool, error) {
	central, ok, err := m.CentralTenant(ctx, tenant)
	if err != nil || !ok {
		return false, err
	}
	return central == tenant, nil
}

// Affiliation returns tenant's consortium affiliation.
func (m *Membership) Affiliation(ctx context.Context, tenant id.TenantID) (Affiliation, error) {
	if tenant.IsNil() {
		return Affiliation{}, dErrors.New(dErrors.CodeInvariantViolation, "tenant scope required")
	}
	return m.affiliations.GetOrLoad(ctx, tenant, userTenantCacheKey, func(ctx context.Context) (Affiliation, error) {
		var resp userTenantsResponse
		if err := m.peer.GetJSON(scoped(ctx, tenant), userTenantsPath, url.Values{"limit": {"1"}}, &resp); err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return Affiliation{}, nil
			}
			return Affiliation{}, integrationError(err, "failed to read user tenants")
		}
		if len(resp.UserTenants) == 0 {
			return Affiliation{}, nil
		}
		return resp.UserTenants[0], nil
	})
}

func scoped(ctx context.Context, tenant id.TenantID) context.Context {
	if requestcontext.TenantID(ctx) == tenant {
		return ctx
	}
	return requestcontext.WithTenantID(ctx, tenant)
}

func integrationError(err error, msg string) error {
	return dErrors.Wrap(fmt.Errorf("%w: %w", ErrIntegrationUnavailable, err), dErrors.CodeUnavailable, msg)
}
