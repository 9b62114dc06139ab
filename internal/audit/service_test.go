package audit

import (
	"context"
	"testing"
	"time"
)

// testClock hands out strictly increasing instants so ordering by CreatedAt
// is deterministic.
func testClock() func() time.Time {
	t := time.Unix(1700000000, 0).UTC()
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func newTestService() (*Service, *MemoryRepo) {
	repo := NewMemoryRepo()
	svc := NewService(repo, time.UTC)
	svc.clock = testClock()
	return svc, repo
}

func TestAppend_RequiresLotAndAction(t *testing.T) {
	svc, _ := newTestService()

	if _, err := svc.Append(context.Background(), Entry{Action: ActionCreate}); err == nil {
		t.Fatalf("expected error for missing lot")
	}
	if _, err := svc.Append(context.Background(), Entry{LotID: "lot-1"}); err == nil {
		t.Fatalf("expected error for missing action")
	}
}

func TestLogUpdate_SuppressesNoOpSaves(t *testing.T) {
	svc, repo := newTestService()

	snap := FieldMap{"kilograms": 1000.0, "orderNumber": 1}
	out, err := svc.LogUpdate(context.Background(), "rec-1", "lot-1", "admin", snap, snap)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if out != nil {
		t.Fatalf("expected nil entry for no-op update, got %+v", out)
	}
	if n := len(repo.Entries()); n != 0 {
		t.Fatalf("expected no audit write, got %d entries", n)
	}
}

func TestLogUpdate_RecordsDiff(t *testing.T) {
	svc, repo := newTestService()

	out, err := svc.LogUpdate(context.Background(), "rec-1", "lot-1", "admin",
		FieldMap{"kilograms": 1000.0},
		FieldMap{"kilograms": 1200.0},
	)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if out == nil {
		t.Fatalf("expected stored entry")
	}
	if out.Action != ActionUpdate || out.RecordID != "rec-1" {
		t.Fatalf("unexpected entry: %+v", out)
	}
	if len(out.Changes) != 1 || out.Changes[0].Field != "kilograms" {
		t.Fatalf("unexpected changes: %+v", out.Changes)
	}
	if n := len(repo.Entries()); n != 1 {
		t.Fatalf("expected 1 entry, got %d", n)
	}
}

func TestIsDayClosed_OpenByDefault(t *testing.T) {
	svc, _ := newTestService()

	closed, err := svc.IsDayClosed(context.Background(), "lot-1", time.Date(2025, 1, 10, 9, 30, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if closed {
		t.Fatalf("expected day open when no events exist")
	}
}

func TestIsDayClosed_FollowsLastEvent(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	day := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)

	mustClosed := func(want bool) {
		t.Helper()
		got, err := svc.IsDayClosed(ctx, "lot-1", day)
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		if got != want {
			t.Fatalf("expected closed=%v, got %v", want, got)
		}
	}

	if _, err := svc.CloseDay(ctx, "lot-1", day, "admin"); err != nil {
		t.Fatalf("close: %v", err)
	}
	mustClosed(true)

	if _, err := svc.ReopenDay(ctx, "lot-1", day, "admin", "correction"); err != nil {
		t.Fatalf("reopen: %v", err)
	}
	mustClosed(false)

	if _, err := svc.CloseDay(ctx, "lot-1", day, "admin"); err != nil {
		t.Fatalf("close again: %v", err)
	}
	mustClosed(true)
}

func TestIsDayClosed_NormalizesTimeOfDay(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	// Close using an afternoon timestamp, query with a morning one.
	if _, err := svc.CloseDay(ctx, "lot-1", time.Date(2025, 1, 10, 17, 45, 0, 0, time.UTC), "admin"); err != nil {
		t.Fatalf("close: %v", err)
	}
	closed, err := svc.IsDayClosed(ctx, "lot-1", time.Date(2025, 1, 10, 6, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !closed {
		t.Fatalf("expected closure to cover the whole calendar day")
	}

	// The neighboring day is unaffected.
	closed, err = svc.IsDayClosed(ctx, "lot-1", time.Date(2025, 1, 11, 6, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if closed {
		t.Fatalf("expected next day to stay open")
	}
}

func TestIsDayClosed_ScopedToLot(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	day := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)

	if _, err := svc.CloseDay(ctx, "lot-1", day, "admin"); err != nil {
		t.Fatalf("close: %v", err)
	}
	closed, err := svc.IsDayClosed(ctx, "lot-2", day)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if closed {
		t.Fatalf("expected other lot to stay open")
	}
}

func TestReopenDay_RequiresReason(t *testing.T) {
	svc, _ := newTestService()
	day := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)

	if _, err := svc.ReopenDay(context.Background(), "lot-1", day, "admin", ""); err != ErrReasonRequired {
		t.Fatalf("expected ErrReasonRequired, got %v", err)
	}
}

func TestHistoryByLot_NewestFirst(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	day := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)

	if _, err := svc.LogCreate(ctx, "rec-1", "lot-1", "lot_operator", 1); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.CloseDay(ctx, "lot-1", day, "admin"); err != nil {
		t.Fatalf("close: %v", err)
	}

	hist, err := svc.HistoryByLot(ctx, "lot-1")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(hist) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(hist))
	}
	if hist[0].Action != ActionCloseDay || hist[1].Action != ActionCreate {
		t.Fatalf("expected newest first, got %+v", hist)
	}
}
