package stats

import (
	"context"
	"sync"

	id "authlinks/pkg/domain"
	"authlinks/pkg/platform/sentinel"
)

// InMemoryStore keeps data stats per tenant in memory.
type InMemoryStore struct {
	mu    sync.RWMutex
	stats map[id.TenantID]map[id.JobID]DataStat
	// order keeps insertion order so reads are deterministic.
	order map[id.TenantID][]id.JobID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		stats: make(map[id.TenantID]map[id.JobID]DataStat),
		order: make(map[id.TenantID][]id.JobID),
	}
}

func (s *InMemoryStore) CreateInBatch(_ context.Context, tenant id.TenantID, stats []DataStat) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	byID, ok := s.stats[tenant]
	if !ok {
		byID = make(map[id.JobID]DataStat)
		s.stats[tenant] = byID
	}
	for _, st := range stats {
		if _, exists := byID[st.ID]; exists {
			return sentinel.ErrConflict
		}
	}
	for _, st := range stats {
		byID[st.ID] = st
		s.order[tenant] = append(s.order[tenant], st.ID)
	}
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, tenant id.TenantID, jobID id.JobID) (DataStat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if st, ok := s.stats[tenant][jobID]; ok {
		return st, nil
	}
	return DataStat{}, sentinel.ErrNotFound
}

func (s *InMemoryStore) FindByJob(_ context.Context, tenant id.TenantID, jobID id.JobID) ([]DataStat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []DataStat
	for _, statID := range s.order[tenant] {
		st, ok := s.stats[tenant][statID]
		if !ok {
			continue
		}
		if st.ID == jobID || (st.OriginJobID != nil && *st.OriginJobID == jobID) {
			out = append(out, st)
		}
	}
	return out, nil
}

func (s *InMemoryStore) SaveOutcome(_ context.Context, tenant id.TenantID, stat DataStat) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.stats[tenant][stat.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	existing.LbUpdated = stat.LbUpdated
	existing.LbFailed = stat.LbFailed
	existing.Status = stat.Status
	existing.FailCause = stat.FailCause
	existing.CompletedAt = stat.CompletedAt
	s.stats[tenant][stat.ID] = existing
	return nil
}

func (s *InMemoryStore) DeleteByAuthorityID(_ context.Context, tenant id.TenantID, authorityID id.AuthorityID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	deleted := 0
	for statID, st := range s.stats[tenant] {
		if st.AuthorityID == authorityID {
			delete(s.stats[tenant], statID)
			deleted++
		}
	}
	if deleted > 0 {
		kept := s.order[tenant][:0]
		for _, statID := range s.order[tenant] {
			if _, ok := s.stats[tenant][statID]; ok {
				kept = append(kept, statID)
			}
		}
		s.order[tenant] = kept
	}
	return deleted, nil
}
