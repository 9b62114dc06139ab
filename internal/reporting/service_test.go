package reporting

import (
	"context"
	"errors"
	"testing"
	"time"

	"harvest-intake/internal/records"
)

func seedRepo(t *testing.T) *records.MemoryRepo {
	t.Helper()
	repo := records.NewMemoryRepo()
	ctx := context.Background()

	rows := []records.Record{
		{ID: "r1", LotID: "lot-1", OrderNumber: 1, Date: time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC), Kilograms: 1000, TruckPlate: "AB 123"},
		{ID: "r2", LotID: "lot-1", OrderNumber: 2, Date: time.Date(2025, 1, 10, 17, 0, 0, 0, time.UTC), Kilograms: 1500, TruckPlate: "AB 123"},
		{ID: "r3", LotID: "lot-1", OrderNumber: 3, Date: time.Date(2025, 1, 11, 9, 0, 0, 0, time.UTC), Kilograms: 500, TruckPlate: "CD 456"},
		{ID: "r4", LotID: "lot-2", OrderNumber: 1, Date: time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC), Kilograms: 9999},
	}
	for _, r := range rows {
		if err := repo.Insert(ctx, r); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	return repo
}

func TestLotSummary_AggregatesPerDay(t *testing.T) {
	svc := NewService(seedRepo(t), time.UTC)

	sum, err := svc.LotSummary(context.Background(), LotSummaryRequest{LotID: "lot-1"})
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if sum.TotalRecords != 3 || sum.TotalKilograms != 3000 {
		t.Fatalf("unexpected totals: %+v", sum)
	}
	if sum.AverageLoadKg != 1000 {
		t.Fatalf("expected average 1000, got %v", sum.AverageLoadKg)
	}
	if sum.Trucks != 2 {
		t.Fatalf("expected 2 distinct trucks, got %d", sum.Trucks)
	}
	if len(sum.Days) != 2 {
		t.Fatalf("expected 2 day buckets, got %d", len(sum.Days))
	}
	// Oldest first; morning and evening tickets share one bucket.
	if sum.Days[0].Day != "2025-01-10" || sum.Days[0].Records != 2 || sum.Days[0].Kilograms != 2500 {
		t.Fatalf("unexpected first day: %+v", sum.Days[0])
	}
	if sum.Days[1].Day != "2025-01-11" || sum.Days[1].Kilograms != 500 {
		t.Fatalf("unexpected second day: %+v", sum.Days[1])
	}
}

func TestLotSummary_HonorsRange(t *testing.T) {
	svc := NewService(seedRepo(t), time.UTC)

	sum, err := svc.LotSummary(context.Background(), LotSummaryRequest{
		LotID: "lot-1",
		Range: TimeRange{
			From: time.Date(2025, 1, 11, 0, 0, 0, 0, time.UTC),
			To:   time.Date(2025, 1, 12, 0, 0, 0, 0, time.UTC),
		},
	})
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if sum.TotalRecords != 1 || sum.TotalKilograms != 500 {
		t.Fatalf("unexpected ranged totals: %+v", sum)
	}
}

func TestLotSummary_ValidatesRequest(t *testing.T) {
	svc := NewService(seedRepo(t), time.UTC)
	ctx := context.Background()

	if _, err := svc.LotSummary(ctx, LotSummaryRequest{}); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for missing lot, got %v", err)
	}

	bad := LotSummaryRequest{
		LotID: "lot-1",
		Range: TimeRange{
			From: time.Date(2025, 1, 12, 0, 0, 0, 0, time.UTC),
			To:   time.Date(2025, 1, 11, 0, 0, 0, 0, time.UTC),
		},
	}
	if _, err := svc.LotSummary(ctx, bad); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for inverted range, got %v", err)
	}
}

func TestLotSummary_EmptyLot(t *testing.T) {
	svc := NewService(records.NewMemoryRepo(), time.UTC)

	sum, err := svc.LotSummary(context.Background(), LotSummaryRequest{LotID: "lot-1"})
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if sum.TotalRecords != 0 || len(sum.Days) != 0 || sum.AverageLoadKg != 0 {
		t.Fatalf("expected empty summary, got %+v", sum)
	}
}
