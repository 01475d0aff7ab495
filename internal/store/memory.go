package store

import (
	"context"
	"sort"
	"sync"

	"github.com/nagarik-sewa/backend/internal/models"
)

// MemoryStore is the default VisitStore when no DATABASE_URL is configured.
// A single RWMutex keeps snapshot reads trivially consistent; the per-visit
// version field still carries the optimistic-concurrency contract so the
// service layer behaves identically against the postgres store.
type MemoryStore struct {
	mu      sync.RWMutex
	visits  map[string]models.Visit
	ratings map[string]models.Rating
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		visits:  make(map[string]models.Visit),
		ratings: make(map[string]models.Rating),
	}
}

func (s *MemoryStore) CreateVisit(_ context.Context, visit models.Visit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.visits[visit.ID]; ok {
		return ErrAlreadyExists
	}
	visit.Version = 1
	s.visits[visit.ID] = visit
	return nil
}

func (s *MemoryStore) GetVisit(_ context.Context, id string) (models.Visit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	visit, ok := s.visits[id]
	if !ok {
		return models.Visit{}, ErrNotFound
	}
	return visit, nil
}

func (s *MemoryStore) UpdateVisit(_ context.Context, visit models.Visit) (models.Visit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applyVisit(visit)
}

func (s *MemoryStore) SaveRating(_ context.Context, visit models.Visit, rating models.Rating) (models.Visit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ratings[visit.ID]; ok {
		return models.Visit{}, ErrRatingExists
	}
	updated, err := s.applyVisit(visit)
	if err != nil {
		return models.Visit{}, err
	}
	s.ratings[visit.ID] = rating
	return updated, nil
}

// applyVisit assumes the write lock is held.
func (s *MemoryStore) applyVisit(visit models.Visit) (models.Visit, error) {
	stored, ok := s.visits[visit.ID]
	if !ok {
		return models.Visit{}, ErrNotFound
	}
	if stored.Version != visit.Version {
		return models.Visit{}, ErrVersionConflict
	}
	visit.Version = stored.Version + 1
	s.visits[visit.ID] = visit
	return visit, nil
}

func (s *MemoryStore) GetRating(_ context.Context, visitID string) (models.Rating, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rating, ok := s.ratings[visitID]
	if !ok {
		return models.Rating{}, ErrNotFound
	}
	return rating, nil
}

func (s *MemoryStore) OfficeRecords(_ context.Context, officeID string) ([]VisitRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var records []VisitRecord
	for _, visit := range s.visits {
		if visit.OfficeID != officeID {
			continue
		}
		record := VisitRecord{Visit: visit}
		if rating, ok := s.ratings[visit.ID]; ok {
			r := rating
			record.Rating = &r
		}
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Visit.ID < records[j].Visit.ID
	})
	return records, nil
}

func (s *MemoryStore) ActiveVisits(_ context.Context) ([]models.Visit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var visits []models.Visit
	for _, visit := range s.visits {
		if visit.State == models.VisitRunning {
			visits = append(visits, visit)
		}
	}
	sort.Slice(visits, func(i, j int) bool {
		return visits[i].StartTime.Before(visits[j].StartTime)
	})
	return visits, nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Close() {}
