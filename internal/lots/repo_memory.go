package lots

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
	lots map[string]Lot
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{lots: make(map[string]Lot)}
}

func (m *MemoryRepo) Insert(ctx context.Context, l Lot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lots[l.ID] = l
	return nil
}

func (m *MemoryRepo) Get(ctx context.Context, id string) (Lot, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.lots[id]
	return l, ok, nil
}

func (m *MemoryRepo) Update(ctx context.Context, l Lot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.lots[l.ID]; !ok {
		return ErrNotFound
	}
	m.lots[l.ID] = l
	return nil
}

func (m *MemoryRepo) FindByCode(ctx context.Context, code string) (Lot, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, l := range m.lots {
		if l.Code == code && !l.Disabled {
			return l, true, nil
		}
	}
	return Lot{}, false, nil
}

func (m *MemoryRepo) CodeTaken(ctx context.Context, code string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, l := range m.lots {
		if l.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryRepo) Activate(ctx context.Context, id string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	target, ok := m.lots[id]
	if !ok {
		return ErrNotFound
	}
	for lid, l := range m.lots {
		if l.Active {
			l.Active = false
			m.lots[lid] = l
		}
	}
	target.Active = true
	target.UpdatedAt = now
	m.lots[id] = target
	return nil
}

func (m *MemoryRepo) Search(ctx context.Context, f Filter) ([]Lot, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var all []Lot
	for _, l := range m.lots {
		if l.Disabled && !f.IncludeDisabled {
			continue
		}
		if f.Code != "" && l.Code != f.Code {
			continue
		}
		if f.Name != "" && !strings.Contains(strings.ToLower(l.Name), strings.ToLower(f.Name)) {
			continue
		}
		if f.Cereal != "" && !strings.Contains(strings.ToLower(l.Cereal), strings.ToLower(f.Cereal)) {
			continue
		}
		all = append(all, l)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

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
