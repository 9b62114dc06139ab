package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
)

// PostgresRepo persists audit entries in the audit_entries table.
//
// Assumed schema (see db/schema.sql):
// - changes and meta are JSONB columns
// - INSERT-only; this file has no UPDATE or DELETE statements
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) Append(ctx context.Context, e Entry) error {
	const q = `
INSERT INTO audit_entries (
  id, action, record_id, lot_id, user_id, changes, meta, created_at
) VALUES (
  $1,$2,NULLIF($3,''),$4,$5,$6,$7,$8
)
`
	changes, err := marshalOrNil(e.Changes)
	if err != nil {
		return err
	}
	meta, err := marshalOrNil(e.Meta)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, q,
		e.ID,
		string(e.Action),
		e.RecordID,
		e.LotID,
		e.UserID,
		changes,
		meta,
		e.CreatedAt,
	)
	return err
}

func (r *PostgresRepo) LatestDayEvent(ctx context.Context, lotID, day string) (Entry, bool, error) {
	const q = `
SELECT id, action, COALESCE(record_id, ''), lot_id, user_id, changes, meta, created_at
FROM audit_entries
WHERE lot_id = $1
  AND action IN ('CLOSE_DAY', 'REOPEN_DAY')
  AND meta->>'day' = $2
ORDER BY created_at DESC
LIMIT 1
`
	e, err := scanEntry(r.db.QueryRowContext(ctx, q, lotID, day))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, false, nil
		}
		return Entry{}, false, err
	}
	return e, true, nil
}

func (r *PostgresRepo) ListByLot(ctx context.Context, lotID string) ([]Entry, error) {
	const q = `
SELECT id, action, COALESCE(record_id, ''), lot_id, user_id, changes, meta, created_at
FROM audit_entries
WHERE lot_id = $1
ORDER BY created_at DESC
`
	return r.queryEntries(ctx, q, lotID)
}

func (r *PostgresRepo) ListByRecord(ctx context.Context, recordID string) ([]Entry, error) {
	const q = `
SELECT id, action, COALESCE(record_id, ''), lot_id, user_id, changes, meta, created_at
FROM audit_entries
WHERE record_id = $1
ORDER BY created_at DESC
`
	return r.queryEntries(ctx, q, recordID)
}

func (r *PostgresRepo) queryEntries(ctx context.Context, q string, arg any) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx, q, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (Entry, error) {
	var (
		e       Entry
		action  string
		changes []byte
		meta    []byte
	)
	if err := row.Scan(
		&e.ID,
		&action,
		&e.RecordID,
		&e.LotID,
		&e.UserID,
		&changes,
		&meta,
		&e.CreatedAt,
	); err != nil {
		return Entry{}, err
	}
	e.Action = Action(action)

	if len(changes) > 0 {
		if err := json.Unmarshal(changes, &e.Changes); err != nil {
			return Entry{}, err
		}
	}
	if len(meta) > 0 {
		var m Meta
		if err := json.Unmarshal(meta, &m); err != nil {
			return Entry{}, err
		}
		e.Meta = &m
	}
	return e, nil
}

func marshalOrNil(v any) (any, error) {
	switch t := v.(type) {
	case []FieldChange:
		if len(t) == 0 {
			return nil, nil
		}
	case *Meta:
		if t == nil {
			return nil, nil
		}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return b, nil
}
