package records

import (
	"context"
	"errors"
	"time"

	"harvest-intake/internal/audit"

	"github.com/google/uuid"
)

var (
	ErrNotFound         = errors.New("records: not found")
	ErrInvalidArgument  = errors.New("records: invalid argument")
	ErrDayClosed        = errors.New("records: day is closed")
	ErrLotMismatch      = errors.New("records: record belongs to another lot")
	ErrOrderNumberTaken = errors.New("records: order number already used in lot")
)

// Service implements the intake record lifecycle.
//
// Every mutation runs the same sequence: guard-check the operational day
// against the audit log, write the record, then append the audit entry.
// The guard check sits immediately before the write, with nothing
// asynchronous in between, which bounds the close-day race to the request
// itself.
// A crash between record write and audit append loses the audit entry; that
// gap is accepted, there is no cross-collection transaction here.
type Service struct {
	repo  Repository
	audit *audit.Service
	loc   *time.Location
	clock func() time.Time
}

func NewService(repo Repository, auditSvc *audit.Service) *Service {
	loc := time.Local
	if auditSvc != nil {
		// One normalization rule for everyone: the guard's zone is the
		// service's zone.
		loc = auditSvc.Location()
	}
	return &Service{repo: repo, audit: auditSvc, loc: loc, clock: time.Now}
}

// CreateInput carries the operator-supplied ticket fields. OrderNumber 0
// means "assign the next one".
type CreateInput struct {
	Date        time.Time
	OrderNumber int
	Kilograms   float64

	BolsonNumber int
	LoteNumber   string
	TruckPlate   string
	TruckDriver  string
	Tolvero      string
	Controller   string
	Cereal       string
}

// UpdateInput is the whitelist of updatable fields. Anything a client sends
// outside this set never reaches the stored record; immutable fields (lot
// reference, identity, attribution) simply have no slot here.
type UpdateInput struct {
	Date        *time.Time
	OrderNumber *int
	Kilograms   *float64

	BolsonNumber *int
	TruckPlate   *string
	TruckDriver  *string
	Tolvero      *string
	Controller   *string
	Cereal       *string
}

// Scope is the authorization context of a mutation. LotID is set for
// lot-token sessions and pins every operation to that lot; admin sessions
// leave it empty.
type Scope struct {
	LotID  string
	UserID string
	Admin  bool
}

// Actor resolves the audit actor for this scope.
func (s Scope) Actor() string {
	if s.UserID != "" {
		return s.UserID
	}
	return "lot_operator"
}

func (s *Service) Create(ctx context.Context, lotID string, in CreateInput, actor string) (Record, error) {
	if lotID == "" {
		return Record{}, ErrInvalidArgument
	}
	if in.Date.IsZero() {
		return Record{}, ErrInvalidArgument
	}
	if in.Kilograms <= 0 {
		return Record{}, ErrInvalidArgument
	}
	if in.OrderNumber < 0 {
		return Record{}, ErrInvalidArgument
	}

	if err := s.guardDayOpen(ctx, lotID, in.Date); err != nil {
		return Record{}, err
	}

	orderNumber := in.OrderNumber
	if orderNumber == 0 {
		max, err := s.repo.MaxOrderNumber(ctx, lotID)
		if err != nil {
			return Record{}, err
		}
		orderNumber = max + 1
	} else {
		taken, err := s.repo.OrderNumberTaken(ctx, lotID, orderNumber, "")
		if err != nil {
			return Record{}, err
		}
		if taken {
			return Record{}, ErrOrderNumberTaken
		}
	}

	now := s.clock().UTC()
	rec := Record{
		ID:           uuid.NewString(),
		LotID:        lotID,
		OrderNumber:  orderNumber,
		Date:         in.Date,
		Kilograms:    in.Kilograms,
		BolsonNumber: in.BolsonNumber,
		LoteNumber:   in.LoteNumber,
		TruckPlate:   in.TruckPlate,
		TruckDriver:  in.TruckDriver,
		Tolvero:      in.Tolvero,
		Controller:   in.Controller,
		Cereal:       in.Cereal,
		CreatedBy:    actor,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Insert(ctx, rec); err != nil {
		return Record{}, err
	}

	if _, err := s.audit.LogCreate(ctx, rec.ID, rec.LotID, actor, rec.OrderNumber); err != nil {
		return Record{}, err
	}
	return rec, nil
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput, scope Scope) (Record, error) {
	existing, ok, err := s.repo.Get(ctx, id)
	if err != nil {
		return Record{}, err
	}
	if !ok {
		return Record{}, ErrNotFound
	}
	if scope.LotID != "" && scope.LotID != existing.LotID {
		return Record{}, ErrLotMismatch
	}

	// The record is frozen once its own day is closed. The existing date
	// decides, not a date the patch may be trying to move it to.
	if err := s.guardDayOpen(ctx, existing.LotID, existing.Date); err != nil {
		return Record{}, err
	}

	updated := existing
	if in.Date != nil {
		if in.Date.IsZero() {
			return Record{}, ErrInvalidArgument
		}
		updated.Date = *in.Date
	}
	if in.OrderNumber != nil && *in.OrderNumber != existing.OrderNumber {
		if *in.OrderNumber <= 0 {
			return Record{}, ErrInvalidArgument
		}
		taken, err := s.repo.OrderNumberTaken(ctx, existing.LotID, *in.OrderNumber, existing.ID)
		if err != nil {
			return Record{}, err
		}
		if taken {
			return Record{}, ErrOrderNumberTaken
		}
		updated.OrderNumber = *in.OrderNumber
	}
	if in.Kilograms != nil {
		if *in.Kilograms <= 0 {
			return Record{}, ErrInvalidArgument
		}
		updated.Kilograms = *in.Kilograms
	}
	if in.BolsonNumber != nil {
		updated.BolsonNumber = *in.BolsonNumber
	}
	if in.TruckPlate != nil {
		updated.TruckPlate = *in.TruckPlate
	}
	if in.TruckDriver != nil {
		updated.TruckDriver = *in.TruckDriver
	}
	if in.Tolvero != nil {
		updated.Tolvero = *in.Tolvero
	}
	if in.Controller != nil {
		updated.Controller = *in.Controller
	}
	if in.Cereal != nil {
		updated.Cereal = *in.Cereal
	}
	updated.UpdatedAt = s.clock().UTC()

	if err := s.repo.Update(ctx, updated); err != nil {
		return Record{}, err
	}

	if _, err := s.audit.LogUpdate(ctx, updated.ID, updated.LotID, scope.Actor(), existing.Snapshot(), updated.Snapshot()); err != nil {
		return Record{}, err
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id, userID string) error {
	existing, ok, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}

	if err := s.guardDayOpen(ctx, existing.LotID, existing.Date); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	_, err = s.audit.LogDelete(ctx, existing.ID, existing.LotID, userID, existing.OrderNumber)
	return err
}

func (s *Service) Get(ctx context.Context, id string) (Record, error) {
	rec, ok, err := s.repo.Get(ctx, id)
	if err != nil {
		return Record{}, err
	}
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

func (s *Service) ListByLot(ctx context.Context, lotID string) ([]Record, error) {
	if lotID == "" {
		return nil, ErrInvalidArgument
	}
	return s.repo.ListByLot(ctx, lotID)
}

// ListByLotAndDay returns the lot's tickets for one operational day,
// order number ascending.
func (s *Service) ListByLotAndDay(ctx context.Context, lotID string, day time.Time) ([]Record, error) {
	if lotID == "" || day.IsZero() {
		return nil, ErrInvalidArgument
	}
	from := audit.DayStart(day, s.loc)
	return s.repo.ListByDateRange(ctx, lotID, from, from.AddDate(0, 0, 1))
}

func (s *Service) Search(ctx context.Context, f Filter) ([]Record, int, error) {
	return s.repo.Search(ctx, f.withDefaults())
}

// ExportByLot returns the rows to be formatted into a workbook. Exporting an
// empty lot is an error, not an empty file.
func (s *Service) ExportByLot(ctx context.Context, lotID string) ([]Record, error) {
	rows, err := s.ListByLot(ctx, lotID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return rows, nil
}

// ExportByLotAndDay is ExportByLot narrowed to one operational day.
func (s *Service) ExportByLotAndDay(ctx context.Context, lotID string, day time.Time) ([]Record, error) {
	rows, err := s.ListByLotAndDay(ctx, lotID, day)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return rows, nil
}

// guardDayOpen is the day-closure guard: consulted before every mutation,
// rejecting with ErrDayClosed before anything is written.
func (s *Service) guardDayOpen(ctx context.Context, lotID string, date time.Time) error {
	closed, err := s.audit.IsDayClosed(ctx, lotID, date)
	if err != nil {
		return err
	}
	if closed {
		return ErrDayClosed
	}
	return nil
}
