package lots

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("lots: not found")
	ErrInvalidArgument = errors.New("lots: invalid argument")
	ErrCodeTaken       = errors.New("lots: code already in use")
)

// Codes skip 0/O and 1/I; operators read them off a whiteboard and type them
// on a numeric-adjacent keyboard, so ambiguous glyphs cost real mistakes.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const codeLength = 6

type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

type CreateInput struct {
	Name      string
	Cereal    string
	StartDate time.Time
}

// UpdateInput is the whitelist of updatable lot fields. Code, active flag
// and enablement move through their own operations.
type UpdateInput struct {
	Name      *string
	Cereal    *string
	StartDate *time.Time
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Lot, error) {
	if in.Name == "" || in.Cereal == "" {
		return Lot{}, ErrInvalidArgument
	}
	start := in.StartDate
	if start.IsZero() {
		start = s.clock()
	}

	code, err := s.uniqueCode(ctx)
	if err != nil {
		return Lot{}, err
	}

	now := s.clock().UTC()
	lot := Lot{
		ID:        uuid.NewString(),
		Name:      in.Name,
		Cereal:    in.Cereal,
		StartDate: start,
		Code:      code,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Insert(ctx, lot); err != nil {
		return Lot{}, err
	}
	return lot, nil
}

func (s *Service) Get(ctx context.Context, id string) (Lot, error) {
	lot, ok, err := s.repo.Get(ctx, id)
	if err != nil {
		return Lot{}, err
	}
	if !ok {
		return Lot{}, ErrNotFound
	}
	return lot, nil
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Lot, error) {
	lot, ok, err := s.repo.Get(ctx, id)
	if err != nil {
		return Lot{}, err
	}
	if !ok {
		return Lot{}, ErrNotFound
	}

	if in.Name != nil {
		if *in.Name == "" {
			return Lot{}, ErrInvalidArgument
		}
		lot.Name = *in.Name
	}
	if in.Cereal != nil {
		if *in.Cereal == "" {
			return Lot{}, ErrInvalidArgument
		}
		lot.Cereal = *in.Cereal
	}
	if in.StartDate != nil {
		if in.StartDate.IsZero() {
			return Lot{}, ErrInvalidArgument
		}
		lot.StartDate = *in.StartDate
	}
	lot.UpdatedAt = s.clock().UTC()

	if err := s.repo.Update(ctx, lot); err != nil {
		return Lot{}, err
	}
	return lot, nil
}

// Deactivate disables a lot. Its records stay queryable, its code stops
// resolving at login, and if it was the active lot there is simply no active
// lot afterwards.
func (s *Service) Deactivate(ctx context.Context, id string) (Lot, error) {
	return s.setDisabled(ctx, id, true)
}

// Restore re-enables a disabled lot. It comes back inactive.
func (s *Service) Restore(ctx context.Context, id string) (Lot, error) {
	return s.setDisabled(ctx, id, false)
}

func (s *Service) setDisabled(ctx context.Context, id string, disabled bool) (Lot, error) {
	lot, ok, err := s.repo.Get(ctx, id)
	if err != nil {
		return Lot{}, err
	}
	if !ok {
		return Lot{}, ErrNotFound
	}
	lot.Disabled = disabled
	if disabled {
		lot.Active = false
	}
	lot.UpdatedAt = s.clock().UTC()
	if err := s.repo.Update(ctx, lot); err != nil {
		return Lot{}, err
	}
	return lot, nil
}

// SetActive makes the lot with the given code the single active lot. The
// repository swaps the flag atomically, so readers never see two active lots
// and concurrent activations settle on whichever call committed last.
func (s *Service) SetActive(ctx context.Context, code string) (Lot, error) {
	if code == "" {
		return Lot{}, ErrInvalidArgument
	}
	lot, ok, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		return Lot{}, err
	}
	if !ok {
		return Lot{}, ErrNotFound
	}

	now := s.clock().UTC()
	if err := s.repo.Activate(ctx, lot.ID, now); err != nil {
		return Lot{}, err
	}
	lot.Active = true
	lot.UpdatedAt = now
	return lot, nil
}

// FindActiveByCode resolves a lot code for operator login. Only the active
// lot resolves; a valid code for an inactive lot behaves like a wrong code.
func (s *Service) FindActiveByCode(ctx context.Context, code string) (Lot, error) {
	if code == "" {
		return Lot{}, ErrInvalidArgument
	}
	lot, ok, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		return Lot{}, err
	}
	if !ok || !lot.Active {
		return Lot{}, ErrNotFound
	}
	return lot, nil
}

func (s *Service) Search(ctx context.Context, f Filter) (Page, error) {
	f = f.withDefaults()
	rows, total, err := s.repo.Search(ctx, f)
	if err != nil {
		return Page{}, err
	}
	totalPages := (total + f.Limit - 1) / f.Limit
	return Page{
		Data:       rows,
		Total:      total,
		Page:       f.Page,
		Limit:      f.Limit,
		TotalPages: totalPages,
	}, nil
}

func (s *Service) uniqueCode(ctx context.Context) (string, error) {
	// Collisions are rare at this keyspace; a handful of retries outlives
	// any realistic lot count.
	for attempt := 0; attempt < 5; attempt++ {
		code, err := randomCode()
		if err != nil {
			return "", err
		}
		taken, err := s.repo.CodeTaken(ctx, code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "", ErrCodeTaken
}

func randomCode() (string, error) {
	buf := make([]byte, codeLength)
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = codeAlphabet[n.Int64()]
	}
	return string(buf), nil
}
