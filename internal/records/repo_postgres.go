package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

const recordColumns = `
id, lot_id, order_number, date, kilograms, bolson_number, lote_number,
truck_plate, truck_driver, tolvero, controller, cereal, created_by,
created_at, updated_at`

// PostgresRepo persists records in the records table. The unique index on
// (lot_id, order_number) backstops the service-level uniqueness check.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) Insert(ctx context.Context, rec Record) error {
	const q = `
INSERT INTO records (` + recordColumns + `
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15
)
`
	_, err := r.db.ExecContext(ctx, q,
		rec.ID,
		rec.LotID,
		rec.OrderNumber,
		rec.Date,
		rec.Kilograms,
		rec.BolsonNumber,
		rec.LoteNumber,
		rec.TruckPlate,
		rec.TruckDriver,
		rec.Tolvero,
		rec.Controller,
		rec.Cereal,
		rec.CreatedBy,
		rec.CreatedAt,
		rec.UpdatedAt,
	)
	return err
}

func (r *PostgresRepo) Get(ctx context.Context, id string) (Record, bool, error) {
	q := `SELECT ` + recordColumns + ` FROM records WHERE id = $1`
	rec, err := scanRecord(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, false, nil
		}
		return Record{}, false, err
	}
	return rec, true, nil
}

func (r *PostgresRepo) Update(ctx context.Context, rec Record) error {
	const q = `
UPDATE records SET
  order_number = $2,
  date = $3,
  kilograms = $4,
  bolson_number = $5,
  truck_plate = $6,
  truck_driver = $7,
  tolvero = $8,
  controller = $9,
  cereal = $10,
  updated_at = $11
WHERE id = $1
`
	res, err := r.db.ExecContext(ctx, q,
		rec.ID,
		rec.OrderNumber,
		rec.Date,
		rec.Kilograms,
		rec.BolsonNumber,
		rec.TruckPlate,
		rec.TruckDriver,
		rec.Tolvero,
		rec.Controller,
		rec.Cereal,
		rec.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM records WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepo) MaxOrderNumber(ctx context.Context, lotID string) (int, error) {
	const q = `SELECT COALESCE(MAX(order_number), 0) FROM records WHERE lot_id = $1`
	var max int
	err := r.db.QueryRowContext(ctx, q, lotID).Scan(&max)
	return max, err
}

func (r *PostgresRepo) OrderNumberTaken(ctx context.Context, lotID string, n int, excludeID string) (bool, error) {
	const q = `
SELECT EXISTS (
  SELECT 1 FROM records
  WHERE lot_id = $1 AND order_number = $2 AND id <> $3
)
`
	var taken bool
	err := r.db.QueryRowContext(ctx, q, lotID, n, excludeID).Scan(&taken)
	return taken, err
}

func (r *PostgresRepo) ListByLot(ctx context.Context, lotID string) ([]Record, error) {
	q := `SELECT ` + recordColumns + ` FROM records WHERE lot_id = $1 ORDER BY order_number`
	return r.queryRecords(ctx, q, lotID)
}

func (r *PostgresRepo) ListByDateRange(ctx context.Context, lotID string, from, to time.Time) ([]Record, error) {
	q := `SELECT ` + recordColumns + `
FROM records
WHERE lot_id = $1 AND date >= $2 AND date < $3
ORDER BY order_number`
	return r.queryRecords(ctx, q, lotID, from, to)
}

func (r *PostgresRepo) Search(ctx context.Context, f Filter) ([]Record, int, error) {
	where, args := searchClauses(f)

	countQ := `SELECT COUNT(*) FROM records` + where
	var total int
	if err := r.db.QueryRowContext(ctx, countQ, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	pageQ := fmt.Sprintf(`SELECT `+recordColumns+`
FROM records%s
ORDER BY date DESC, order_number DESC
LIMIT $%d OFFSET $%d`, where, len(args)+1, len(args)+2)
	args = append(args, f.Limit, (f.Page-1)*f.Limit)

	rows, err := r.queryRecords(ctx, pageQ, args...)
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func searchClauses(f Filter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.LotID != "" {
		add("lot_id = $%d", f.LotID)
	}
	if f.OrderNumber != 0 {
		add("order_number = $%d", f.OrderNumber)
	}
	if f.TruckPlate != "" {
		add("truck_plate ILIKE $%d", "%"+f.TruckPlate+"%")
	}
	if f.TruckDriver != "" {
		add("truck_driver ILIKE $%d", "%"+f.TruckDriver+"%")
	}
	if f.Cereal != "" {
		add("cereal ILIKE $%d", "%"+f.Cereal+"%")
	}
	if !f.DateFrom.IsZero() {
		add("date >= $%d", f.DateFrom)
	}
	if !f.DateTo.IsZero() {
		add("date <= $%d", f.DateTo)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *PostgresRepo) queryRecords(ctx context.Context, q string, args ...any) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var rec Record
	err := row.Scan(
		&rec.ID,
		&rec.LotID,
		&rec.OrderNumber,
		&rec.Date,
		&rec.Kilograms,
		&rec.BolsonNumber,
		&rec.LoteNumber,
		&rec.TruckPlate,
		&rec.TruckDriver,
		&rec.Tolvero,
		&rec.Controller,
		&rec.Cereal,
		&rec.CreatedBy,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	return rec, err
}
