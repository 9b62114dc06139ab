package lots

import (
	"context"
	"time"
)

// Repository is the persistence contract for lots.
type Repository interface {
	Insert(ctx context.Context, l Lot) error
	Get(ctx context.Context, id string) (Lot, bool, error)
	Update(ctx context.Context, l Lot) error

	// FindByCode matches enabled lots only; disabled lots keep their code
	// reserved but stop resolving.
	FindByCode(ctx context.Context, code string) (Lot, bool, error)

	CodeTaken(ctx context.Context, code string) (bool, error)

	// Activate clears the active flag on every lot and sets it on the one
	// with the given id, as a single atomic step. Returns ErrNotFound if
	// the id does not exist.
	Activate(ctx context.Context, id string, now time.Time) error

	// Search returns lots matching the filter, newest first, plus the
	// total match count. Disabled lots are excluded unless the filter asks
	// for them.
	Search(ctx context.Context, f Filter) ([]Lot, int, error)
}

// Filter combines lot search criteria with logical AND. Zero values mean "no
// constraint"; name and cereal are case-insensitive substring matches, code
// is an exact match.
type Filter struct {
	Name   string
	Cereal string
	Code   string

	IncludeDisabled bool

	Page  int
	Limit int
}

func (f Filter) withDefaults() Filter {
	out := f
	if out.Page <= 0 {
		out.Page = 1
	}
	if out.Limit <= 0 {
		out.Limit = 20
	}
	if out.Limit > 100 {
		out.Limit = 100
	}
	return out
}
