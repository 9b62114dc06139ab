package reporting

import (
	"context"
	"errors"
	"sort"
	"time"

	"harvest-intake/internal/audit"
	"harvest-intake/internal/records"
)

var ErrInvalidRequest = errors.New("reporting: invalid request")

// Repository abstracts data access for reporting. Both records.Repository
// implementations satisfy it, so summaries read the same store the intake
// path writes.
type Repository interface {
	ListByLot(ctx context.Context, lotID string) ([]records.Record, error)
	ListByDateRange(ctx context.Context, lotID string, from, to time.Time) ([]records.Record, error)
}

type Service struct {
	repo Repository
	loc  *time.Location
}

// NewService builds a reporting service. loc must be the same zone the
// intake path normalizes days with, or per-day buckets drift off the
// closure ledger.
func NewService(repo Repository, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{repo: repo, loc: loc}
}

func (s *Service) LotSummary(ctx context.Context, req LotSummaryRequest) (LotSummary, error) {
	if req.LotID == "" {
		return LotSummary{}, ErrInvalidRequest
	}
	ranged := !req.Range.From.IsZero() || !req.Range.To.IsZero()
	if ranged && !req.Range.To.After(req.Range.From) {
		return LotSummary{}, ErrInvalidRequest
	}
	if s.repo == nil {
		return LotSummary{}, errors.New("reporting: repository not configured")
	}

	var (
		rows []records.Record
		err  error
	)
	if ranged {
		rows, err = s.repo.ListByDateRange(ctx, req.LotID, req.Range.From, req.Range.To)
	} else {
		rows, err = s.repo.ListByLot(ctx, req.LotID)
	}
	if err != nil {
		return LotSummary{}, err
	}

	out := LotSummary{LotID: req.LotID}
	days := make(map[string]*DaySummary)
	plates := make(map[string]struct{})
	for _, r := range rows {
		out.TotalRecords++
		out.TotalKilograms += r.Kilograms
		if r.TruckPlate != "" {
			plates[r.TruckPlate] = struct{}{}
		}

		key := audit.DayStart(r.Date, s.loc).Format("2006-01-02")
		d, ok := days[key]
		if !ok {
			d = &DaySummary{Day: key}
			days[key] = d
		}
		d.Records++
		d.Kilograms += r.Kilograms
	}
	out.Trucks = len(plates)
	if out.TotalRecords > 0 {
		out.AverageLoadKg = out.TotalKilograms / float64(out.TotalRecords)
	}

	out.Days = make([]DaySummary, 0, len(days))
	for _, d := range days {
		out.Days = append(out.Days, *d)
	}
	sort.Slice(out.Days, func(i, j int) bool { return out.Days[i].Day < out.Days[j].Day })
	return out, nil
}
