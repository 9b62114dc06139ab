package audit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence contract for audit entries.
//
// It MUST be append-only.
// There are deliberately no Update or Delete methods.
type Repository interface {
	Append(ctx context.Context, e Entry) error

	// LatestDayEvent returns the newest CLOSE_DAY/REOPEN_DAY entry for the
	// lot and normalized day key, by creation time descending.
	LatestDayEvent(ctx context.Context, lotID, day string) (Entry, bool, error)

	// ListByLot returns all entries for the lot, newest first.
	ListByLot(ctx context.Context, lotID string) ([]Entry, error)

	// ListByRecord returns all entries referencing the record, newest first.
	ListByRecord(ctx context.Context, recordID string) ([]Entry, error)
}

var (
	ErrInvalidEntry   = errors.New("audit: invalid entry")
	ErrReasonRequired = errors.New("audit: reopen reason is required")
)

// dayFormat is the wire form of a normalized day key in Meta.Day.
const dayFormat = "2006-01-02"

// DayStart truncates t to midnight of its calendar day in loc. Every place
// that derives a day key must go through this one function; mixing
// normalization rules between the write and read sides silently breaks day
// closure.
func DayStart(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// Service records immutable audit events and answers day-closure queries.
//
// IMPORTANT:
// - The log is the source of truth for closed days; do not cache IsDayClosed
//   results across appends.
// - The clock and location are injectable for deterministic tests.
type Service struct {
	repo  Repository
	clock func() time.Time
	loc   *time.Location
}

func NewService(repo Repository, loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{repo: repo, clock: time.Now, loc: loc}
}

// Append persists one immutable entry, filling in identity and timestamp.
func (s *Service) Append(ctx context.Context, e Entry) (Entry, error) {
	if s.repo == nil {
		return Entry{}, errors.New("audit: repository not configured")
	}
	if e.LotID == "" {
		return Entry{}, ErrInvalidEntry
	}
	if e.Action == "" {
		return Entry{}, ErrInvalidEntry
	}

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.clock().UTC()
	}
	if err := s.repo.Append(ctx, e); err != nil {
		return Entry{}, err
	}
	return e, nil
}

// LogCreate records the creation of a record.
func (s *Service) LogCreate(ctx context.Context, recordID, lotID, userID string, orderNumber int) (Entry, error) {
	return s.Append(ctx, Entry{
		Action:   ActionCreate,
		RecordID: recordID,
		LotID:    lotID,
		UserID:   userID,
		Meta:     &Meta{OrderNumber: orderNumber},
	})
}

// LogDelete records the removal of a record. The removed order number is kept
// so the ticket stays traceable after the record itself is gone.
func (s *Service) LogDelete(ctx context.Context, recordID, lotID, userID string, orderNumber int) (Entry, error) {
	return s.Append(ctx, Entry{
		Action:   ActionDelete,
		RecordID: recordID,
		LotID:    lotID,
		UserID:   userID,
		Meta:     &Meta{OrderNumber: orderNumber},
	})
}

// LogUpdate diffs the two snapshots and appends an UPDATE entry carrying the
// changes. A save that only touches structural fields is not an update worth
// auditing: LogUpdate returns nil and writes nothing.
func (s *Service) LogUpdate(ctx context.Context, recordID, lotID, userID string, before, after FieldMap) (*Entry, error) {
	changes := Compare(before, after)
	if len(changes) == 0 {
		return nil, nil
	}

	e, err := s.Append(ctx, Entry{
		Action:   ActionUpdate,
		RecordID: recordID,
		LotID:    lotID,
		UserID:   userID,
		Changes:  changes,
	})
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// CloseDay marks the lot's calendar day as closed for record mutation.
func (s *Service) CloseDay(ctx context.Context, lotID string, day time.Time, userID string) (Entry, error) {
	return s.Append(ctx, Entry{
		Action: ActionCloseDay,
		LotID:  lotID,
		UserID: userID,
		Meta: &Meta{
			Day:      s.dayKey(day),
			ClosedAt: s.clock().UTC(),
		},
	})
}

// ReopenDay lifts a closure. The reason is operator-supplied free text,
// required but not otherwise validated.
func (s *Service) ReopenDay(ctx context.Context, lotID string, day time.Time, userID, reason string) (Entry, error) {
	if reason == "" {
		return Entry{}, ErrReasonRequired
	}
	return s.Append(ctx, Entry{
		Action: ActionReopenDay,
		LotID:  lotID,
		UserID: userID,
		Meta: &Meta{
			Day:        s.dayKey(day),
			Reason:     reason,
			ReopenedAt: s.clock().UTC(),
		},
	})
}

// IsDayClosed reports whether the lot's day is currently closed: the latest
// CLOSE_DAY/REOPEN_DAY entry for the day key decides, no matter how many
// times the state has toggled. No entry means open.
func (s *Service) IsDayClosed(ctx context.Context, lotID string, day time.Time) (bool, error) {
	e, ok, err := s.repo.LatestDayEvent(ctx, lotID, s.dayKey(day))
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	return e.Action == ActionCloseDay, nil
}

// HistoryByLot returns the lot's full audit trail, newest first. Pure read.
func (s *Service) HistoryByLot(ctx context.Context, lotID string) ([]Entry, error) {
	if lotID == "" {
		return nil, ErrInvalidEntry
	}
	return s.repo.ListByLot(ctx, lotID)
}

// HistoryByRecord returns all entries touching one record, newest first.
func (s *Service) HistoryByRecord(ctx context.Context, recordID string) ([]Entry, error) {
	if recordID == "" {
		return nil, ErrInvalidEntry
	}
	return s.repo.ListByRecord(ctx, recordID)
}

// Location exposes the operational-day zone so collaborators derive day
// windows with the same rules the guard uses.
func (s *Service) Location() *time.Location { return s.loc }

func (s *Service) dayKey(t time.Time) string {
	return DayStart(t, s.loc).Format(dayFormat)
}
