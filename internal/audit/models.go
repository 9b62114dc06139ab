package audit

import "time"

// Entry is an immutable, append-only audit log record.
//
// Invariants:
// - Entries are never updated or deleted.
// - lot_id is required; every event belongs to exactly one lot.
// - The day-closure state of a (lot, day) pair is derived from the log:
//   the most recent CLOSE_DAY/REOPEN_DAY entry wins. Nothing stores a
//   "closed" boolean anywhere.
//
// Storage recommendation (Postgres):
// - Table audit_entries with an INSERT-only policy.
// - Index on (lot_id, action, (meta->>'day'), created_at DESC) for the
//   day-closure lookup.
type Entry struct {
	ID string `json:"id" db:"id"`

	// Action indicates the business category of the audit record.
	Action Action `json:"action" db:"action"`

	// RecordID is set for record-level events (CREATE/UPDATE/DELETE).
	RecordID string `json:"record_id,omitempty" db:"record_id"`

	LotID string `json:"lot_id" db:"lot_id"`

	// UserID is the acting identity: an admin/staff user id, or
	// "lot_operator" for anonymous lot-token sessions.
	UserID string `json:"user_id,omitempty" db:"user_id"`

	// Changes carries field-level diffs; only UPDATE entries have any.
	Changes []FieldChange `json:"changes,omitempty" db:"changes"`

	// Meta carries day-closure details for CLOSE_DAY/REOPEN_DAY and the
	// removed order number for DELETE.
	Meta *Meta `json:"meta,omitempty" db:"meta"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type Action string

const (
	ActionCreate    Action = "CREATE"
	ActionUpdate    Action = "UPDATE"
	ActionDelete    Action = "DELETE"
	ActionCloseDay  Action = "CLOSE_DAY"
	ActionReopenDay Action = "REOPEN_DAY"
)

// FieldChange is one field-level diff inside an UPDATE entry.
type FieldChange struct {
	Field  string `json:"field"`
	Before any    `json:"before"`
	After  any    `json:"after"`
}

// Meta is the free-form payload of day-state and delete events.
// Day is the normalized day key (YYYY-MM-DD); see DayStart.
type Meta struct {
	Day         string    `json:"day,omitempty"`
	Reason      string    `json:"reason,omitempty"`
	OrderNumber int       `json:"orderNumber,omitempty"`
	ClosedAt    time.Time `json:"closedAt,omitempty"`
	ReopenedAt  time.Time `json:"reopenedAt,omitempty"`
}
