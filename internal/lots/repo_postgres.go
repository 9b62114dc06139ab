package lots

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"harvest-intake/pkg/utils"
)

const lotColumns = `
id, name, cereal, start_date, code, active, disabled, created_at, updated_at`

// PostgresRepo persists lots in the lots table. The unique index on code
// backstops the service-level collision retry.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) Insert(ctx context.Context, l Lot) error {
	const q = `
INSERT INTO lots (` + lotColumns + `
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9
)
`
	_, err := r.db.ExecContext(ctx, q,
		l.ID, l.Name, l.Cereal, l.StartDate, l.Code,
		l.Active, l.Disabled, l.CreatedAt, l.UpdatedAt,
	)
	return err
}

func (r *PostgresRepo) Get(ctx context.Context, id string) (Lot, bool, error) {
	q := `SELECT ` + lotColumns + ` FROM lots WHERE id = $1`
	return r.getOne(ctx, q, id)
}

func (r *PostgresRepo) FindByCode(ctx context.Context, code string) (Lot, bool, error) {
	q := `SELECT ` + lotColumns + ` FROM lots WHERE code = $1 AND NOT disabled`
	return r.getOne(ctx, q, code)
}

func (r *PostgresRepo) getOne(ctx context.Context, q string, arg any) (Lot, bool, error) {
	l, err := scanLot(r.db.QueryRowContext(ctx, q, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Lot{}, false, nil
		}
		return Lot{}, false, err
	}
	return l, true, nil
}

func (r *PostgresRepo) Update(ctx context.Context, l Lot) error {
	const q = `
UPDATE lots SET
  name = $2,
  cereal = $3,
  start_date = $4,
  active = $5,
  disabled = $6,
  updated_at = $7
WHERE id = $1
`
	res, err := r.db.ExecContext(ctx, q,
		l.ID, l.Name, l.Cereal, l.StartDate, l.Active, l.Disabled, l.UpdatedAt,
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

func (r *PostgresRepo) CodeTaken(ctx context.Context, code string) (bool, error) {
	var taken bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM lots WHERE code = $1)`, code,
	).Scan(&taken)
	return taken, err
}

// Activate runs the deactivate-all and activate-one statements in one
// transaction, so a reader never observes two active lots and a lost update
// cannot leave every lot inactive.
func (r *PostgresRepo) Activate(ctx context.Context, id string, now time.Time) error {
	return utils.WithTx(ctx, r.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `UPDATE lots SET active = FALSE WHERE active`); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx,
			`UPDATE lots SET active = TRUE, updated_at = $2 WHERE id = $1`, id, now,
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
	})
}

func (r *PostgresRepo) Search(ctx context.Context, f Filter) ([]Lot, int, error) {
	var conds []string
	var args []any
	if !f.IncludeDisabled {
		conds = append(conds, "NOT disabled")
	}
	if f.Code != "" {
		args = append(args, f.Code)
		conds = append(conds, fmt.Sprintf("code = $%d", len(args)))
	}
	if f.Name != "" {
		args = append(args, "%"+f.Name+"%")
		conds = append(conds, fmt.Sprintf("name ILIKE $%d", len(args)))
	}
	if f.Cereal != "" {
		args = append(args, "%"+f.Cereal+"%")
		conds = append(conds, fmt.Sprintf("cereal ILIKE $%d", len(args)))
	}
	var where string
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM lots`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	pageQ := fmt.Sprintf(`SELECT `+lotColumns+`
FROM lots%s
ORDER BY created_at DESC
LIMIT $%d OFFSET $%d`, where, len(args)+1, len(args)+2)
	args = append(args, f.Limit, (f.Page-1)*f.Limit)

	rows, err := r.db.QueryContext(ctx, pageQ, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Lot
	for rows.Next() {
		l, err := scanLot(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, l)
	}
	return out, total, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLot(row rowScanner) (Lot, error) {
	var l Lot
	err := row.Scan(
		&l.ID, &l.Name, &l.Cereal, &l.StartDate, &l.Code,
		&l.Active, &l.Disabled, &l.CreatedAt, &l.UpdatedAt,
	)
	return l, err
}
