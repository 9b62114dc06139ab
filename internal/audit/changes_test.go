package audit

import (
	"testing"
	"time"
)

func TestCompare_IdenticalSnapshotsYieldNothing(t *testing.T) {
	snap := FieldMap{
		"kilograms":  1000.0,
		"truckPlate": "AB 123 CD",
		"cereal":     "soja",
	}
	if diff := Compare(snap, snap); len(diff) != 0 {
		t.Fatalf("expected empty diff, got %+v", diff)
	}
}

func TestCompare_SkipsStructuralFields(t *testing.T) {
	before := FieldMap{
		"id":          "a",
		"lotId":       "lot-1",
		"orderNumber": 1,
		"createdAt":   time.Unix(1, 0),
		"kilograms":   1000.0,
	}
	after := FieldMap{
		"id":          "b",
		"lotId":       "lot-2",
		"orderNumber": 9,
		"createdAt":   time.Unix(2, 0),
		"kilograms":   1200.0,
	}

	diff := Compare(before, after)
	if len(diff) != 1 {
		t.Fatalf("expected 1 change, got %+v", diff)
	}
	if diff[0].Field != "kilograms" {
		t.Fatalf("expected kilograms change, got %q", diff[0].Field)
	}
}

func TestCompare_CanonicalizesEquivalentValues(t *testing.T) {
	instant := time.Date(2025, 1, 10, 15, 0, 0, 0, time.UTC)
	buenosAires := time.FixedZone("-03", -3*3600)

	before := FieldMap{
		"date":      instant,
		"kilograms": 1000,
	}
	after := FieldMap{
		"date":      instant.In(buenosAires), // same instant, different zone
		"kilograms": 1000.0,                  // same number, different Go type
	}

	if diff := Compare(before, after); len(diff) != 0 {
		t.Fatalf("expected no phantom diffs, got %+v", diff)
	}
}

func TestCompare_ReportsBeforeAndAfter(t *testing.T) {
	diff := Compare(
		FieldMap{"truckDriver": "Pérez", "kilograms": 1000.0},
		FieldMap{"truckDriver": "Gómez", "kilograms": 1000.0},
	)
	if len(diff) != 1 {
		t.Fatalf("expected 1 change, got %+v", diff)
	}
	c := diff[0]
	if c.Field != "truckDriver" || c.Before != "Pérez" || c.After != "Gómez" {
		t.Fatalf("unexpected change: %+v", c)
	}
}

func TestCompare_NewFieldCountsAsChange(t *testing.T) {
	diff := Compare(FieldMap{}, FieldMap{"cereal": "trigo"})
	if len(diff) != 1 || diff[0].Before != nil || diff[0].After != "trigo" {
		t.Fatalf("expected nil->trigo change, got %+v", diff)
	}
}

func TestCompare_EmptyAfterYieldsNothing(t *testing.T) {
	if diff := Compare(FieldMap{"kilograms": 1.0}, nil); len(diff) != 0 {
		t.Fatalf("expected empty diff, got %+v", diff)
	}
}

func TestCompare_StableOrder(t *testing.T) {
	before := FieldMap{"tolvero": "a", "cereal": "b", "controller": "c"}
	after := FieldMap{"tolvero": "x", "cereal": "y", "controller": "z"}

	diff := Compare(before, after)
	if len(diff) != 3 {
		t.Fatalf("expected 3 changes, got %+v", diff)
	}
	want := []string{"cereal", "controller", "tolvero"}
	for i, c := range diff {
		if c.Field != want[i] {
			t.Fatalf("expected stable order %v, got %+v", want, diff)
		}
	}
}
