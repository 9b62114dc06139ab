package audit

import (
	"context"
	"sync"
)

// MemoryRepo is an in-memory append-only repository useful for tests.
// It is not intended for production use.
type MemoryRepo struct {
	mu      sync.Mutex
	entries []Entry
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{} }

func (r *MemoryRepo) Append(ctx context.Context, e Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
	return nil
}

func (r *MemoryRepo) LatestDayEvent(ctx context.Context, lotID, day string) (Entry, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out Entry
	found := false
	for _, e := range r.entries {
		if e.LotID != lotID {
			continue
		}
		if e.Action != ActionCloseDay && e.Action != ActionReopenDay {
			continue
		}
		if e.Meta == nil || e.Meta.Day != day {
			continue
		}
		// Entries share a coarse clock in tests; on ties, the later append wins.
		if !found || !e.CreatedAt.Before(out.CreatedAt) {
			out = e
			found = true
		}
	}
	return out, found, nil
}

func (r *MemoryRepo) ListByLot(ctx context.Context, lotID string) ([]Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Entry
	// entries are appended in order; walk backwards for newest-first.
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].LotID == lotID {
			out = append(out, r.entries[i])
		}
	}
	return out, nil
}

func (r *MemoryRepo) ListByRecord(ctx context.Context, recordID string) ([]Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Entry
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].RecordID == recordID && recordID != "" {
			out = append(out, r.entries[i])
		}
	}
	return out, nil
}

// Entries returns a copy of everything appended, oldest first.
func (r *MemoryRepo) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}
