package records

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryRepo is an in-memory Repository used by tests and local runs.
type MemoryRepo struct {
	mu   sync.RWMutex
	recs map[string]Record
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{recs: make(map[string]Record)}
}

func (m *MemoryRepo) Insert(ctx context.Context, r Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recs[r.ID] = r
	return nil
}

func (m *MemoryRepo) Get(ctx context.Context, id string) (Record, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.recs[id]
	return r, ok, nil
}

func (m *MemoryRepo) Update(ctx context.Context, r Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.recs[r.ID]; !ok {
		return ErrNotFound
	}
	m.recs[r.ID] = r
	return nil
}

func (m *MemoryRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.recs[id]; !ok {
		return ErrNotFound
	}
	delete(m.recs, id)
	return nil
}

func (m *MemoryRepo) MaxOrderNumber(ctx context.Context, lotID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	max := 0
	for _, r := range m.recs {
		if r.LotID == lotID && r.OrderNumber > max {
			max = r.OrderNumber
		}
	}
	return max, nil
}

func (m *MemoryRepo) OrderNumberTaken(ctx context.Context, lotID string, n int, excludeID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.recs {
		if r.LotID == lotID && r.OrderNumber == n && r.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryRepo) ListByLot(ctx context.Context, lotID string) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Record
	for _, r := range m.recs {
		if r.LotID == lotID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderNumber < out[j].OrderNumber })
	return out, nil
}

func (m *MemoryRepo) ListByDateRange(ctx context.Context, lotID string, from, to time.Time) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Record
	for _, r := range m.recs {
		if r.LotID != lotID {
			continue
		}
		if r.Date.Before(from) || !r.Date.Before(to) {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderNumber < out[j].OrderNumber })
	return out, nil
}

func (m *MemoryRepo) Search(ctx context.Context, f Filter) ([]Record, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var all []Record
	for _, r := range m.recs {
		if matches(r, f) {
			all = append(all, r)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].Date.Equal(all[j].Date) {
			return all[i].Date.After(all[j].Date)
		}
		return all[i].OrderNumber > all[j].OrderNumber
	})

	total := len(all)
	start := (f.Page - 1) * f.Limit
	if start >= total {
		return nil, total, nil
	}
	end := start + f.Limit
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}

func matches(r Record, f Filter) bool {
	if f.LotID != "" && r.LotID != f.LotID {
		return false
	}
	if f.OrderNumber != 0 && r.OrderNumber != f.OrderNumber {
		return false
	}
	if f.TruckPlate != "" && !containsFold(r.TruckPlate, f.TruckPlate) {
		return false
	}
	if f.TruckDriver != "" && !containsFold(r.TruckDriver, f.TruckDriver) {
		return false
	}
	if f.Cereal != "" && !containsFold(r.Cereal, f.Cereal) {
		return false
	}
	if !f.DateFrom.IsZero() && r.Date.Before(f.DateFrom) {
		return false
	}
	if !f.DateTo.IsZero() && r.Date.After(f.DateTo) {
		return false
	}
	return true
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
