package records

import (
	"context"
	"time"
)

// Repository is the persistence contract for intake records.
//
// Ordering contracts:
// - ListByLot / ListByDateRange: order_number ascending.
// - Search: date descending, then order_number descending.
type Repository interface {
	Insert(ctx context.Context, r Record) error
	Get(ctx context.Context, id string) (Record, bool, error)
	Update(ctx context.Context, r Record) error
	Delete(ctx context.Context, id string) error

	// MaxOrderNumber returns the highest order number assigned in the lot,
	// 0 when the lot has no records yet.
	MaxOrderNumber(ctx context.Context, lotID string) (int, error)

	// OrderNumberTaken reports whether another record in the lot already
	// uses n. excludeID skips the record being updated.
	OrderNumberTaken(ctx context.Context, lotID string, n int, excludeID string) (bool, error)

	ListByLot(ctx context.Context, lotID string) ([]Record, error)

	// ListByDateRange returns the lot's records with from <= date < to.
	ListByDateRange(ctx context.Context, lotID string, from, to time.Time) ([]Record, error)

	// Search applies f and returns the matching page plus the total match
	// count across all pages.
	Search(ctx context.Context, f Filter) ([]Record, int, error)
}

// Filter combines search criteria with logical AND. Zero values mean "no
// constraint". Plate, driver and cereal are case-insensitive substring
// matches; the date range is inclusive on both ends.
type Filter struct {
	LotID       string
	TruckPlate  string
	TruckDriver string
	Cereal      string
	OrderNumber int

	DateFrom time.Time
	DateTo   time.Time

	Page  int
	Limit int
}

func (f Filter) withDefaults() Filter {
	out := f
	if out.Page <= 0 {
		out.Page = 1
	}
	if out.Limit <= 0 {
		out.Limit = 50
	}
	if out.Limit > 200 {
		out.Limit = 200
	}
	return out
}
