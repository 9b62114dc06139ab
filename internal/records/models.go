package records

import (
	"time"

	"harvest-intake/internal/audit"
)

// Record is one truck-weighing intake ticket.
//
// Invariants:
// - LotID never changes after creation.
// - OrderNumber is unique within its lot; the database enforces this with a
//   unique index on (lot_id, order_number), the service check is only the
//   friendly fast path.
// - Date is the operational day the ticket belongs to, not the creation
//   timestamp; day closure keys off Date.
type Record struct {
	ID    string `json:"id" db:"id"`
	LotID string `json:"lotId" db:"lot_id"`

	OrderNumber int       `json:"orderNumber" db:"order_number"`
	Date        time.Time `json:"date" db:"date"`
	Kilograms   float64   `json:"kilograms" db:"kilograms"`

	BolsonNumber int    `json:"bolsonNumber,omitempty" db:"bolson_number"`
	LoteNumber   string `json:"loteNumber,omitempty" db:"lote_number"`
	TruckPlate   string `json:"truckPlate,omitempty" db:"truck_plate"`
	TruckDriver  string `json:"truckDriver,omitempty" db:"truck_driver"`
	Tolvero      string `json:"tolvero,omitempty" db:"tolvero"`
	Controller   string `json:"controller,omitempty" db:"controller"`
	Cereal       string `json:"cereal,omitempty" db:"cereal"`

	CreatedBy string    `json:"createdBy" db:"created_by"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// Snapshot flattens the record for the change detector. Keys are wire names;
// the structural ones are listed in audit.StructuralFields and dropped from
// diffs there, not here.
func (r Record) Snapshot() audit.FieldMap {
	return audit.FieldMap{
		"id":           r.ID,
		"lotId":        r.LotID,
		"orderNumber":  r.OrderNumber,
		"date":         r.Date,
		"kilograms":    r.Kilograms,
		"bolsonNumber": r.BolsonNumber,
		"loteNumber":   r.LoteNumber,
		"truckPlate":   r.TruckPlate,
		"truckDriver":  r.TruckDriver,
		"tolvero":      r.Tolvero,
		"controller":   r.Controller,
		"cereal":       r.Cereal,
		"createdBy":    r.CreatedBy,
		"createdAt":    r.CreatedAt,
		"updatedAt":    r.UpdatedAt,
	}
}
