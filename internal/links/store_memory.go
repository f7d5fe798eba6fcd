package links

import (
	"context"
	"sync"

	"authlinks/internal/authority/models"
	id "authlinks/pkg/domain"
)

// InMemoryStore keeps links per tenant in memory.
type InMemoryStore struct {
	mu     sync.RWMutex
	nextID int64
	links  map[id.TenantID][]Link
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{links: make(map[id.TenantID][]Link)}
}

func (s *InMemoryStore) Insert(_ context.Context, tenant id.TenantID, links []Link) ([]Link, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Link, len(links))
	for i, l := range links {
		s.nextID++
		l.ID = s.nextID
		if l.Status == "" {
			l.Status = models.LinkActual
		}
		s.links[tenant] = append(s.links[tenant], l)
		out[i] = l
	}
	return out, nil
}

func (s *InMemoryStore) CountByAuthorityIDs(_ context.Context, tenant id.TenantID, authorityIDs []id.AuthorityID) (map[id.AuthorityID]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	wanted := make(map[id.AuthorityID]struct{}, len(authorityIDs))
	for _, a := range authorityIDs {
		wanted[a] = struct{}{}
	}
	counts := make(map[id.AuthorityID]int)
	for _, l := range s.links[tenant] {
		if _, ok := wanted[l.AuthorityID]; ok {
			counts[l.AuthorityID]++
		}
	}
	return counts, nil
}

func (s *InMemoryStore) UpdateStatusByIDs(_ context.Context, tenant id.TenantID, linkIDs []int64, status models.LinkStatus, errorCause string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make(map[int64]struct{}, len(linkIDs))
	for _, i := range linkIDs {
		ids[i] = struct{}{}
	}
	for i, l := range s.links[tenant] {
		if _, ok := ids[l.ID]; ok {
			s.links[tenant][i].Status = status
			s.links[tenant][i].ErrorCause = errorCause
		}
	}
	return nil
}

func (s *InMemoryStore) UpdateStatusByAuthorityID(_ context.Context, tenant id.TenantID, authorityID id.AuthorityID, status models.LinkStatus, errorCause string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, l := range s.links[tenant] {
		if l.AuthorityID == authorityID {
			s.links[tenant][i].Status = status
			s.links[tenant][i].ErrorCause = errorCause
		}
	}
	return nil
}

// List returns a copy of tenant's links.
func (s *InMemoryStore) List(tenant id.TenantID) []Link {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Link(nil), s.links[tenant]...)
}
