package export

import (
	"bytes"
	"testing"
	"time"

	"harvest-intake/internal/records"

	"github.com/xuri/excelize/v2"
)

func TestWorkbook_RoundTrip(t *testing.T) {
	rows := []records.Record{
		{
			OrderNumber: 1,
			Date:        time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
			Kilograms:   1000,
			TruckPlate:  "AB 123 CD",
			TruckDriver: "Perez",
			Cereal:      "soy",
			CreatedBy:   "lot_operator",
		},
		{
			OrderNumber: 2,
			Date:        time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
			Kilograms:   1200.5,
			TruckPlate:  "EF 456 GH",
			Cereal:      "soy",
			CreatedBy:   "admin",
		},
	}

	out, err := Workbook(rows)
	if err != nil {
		t.Fatalf("workbook: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("open generated file: %v", err)
	}
	defer f.Close()

	got, err := f.GetRows(sheetName)
	if err != nil {
		t.Fatalf("read sheet: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(got))
	}
	if got[0][0] != "Order #" {
		t.Fatalf("unexpected header row: %v", got[0])
	}
	if got[1][0] != "1" || got[1][1] != "2025-01-10" || got[1][2] != "1000" {
		t.Fatalf("unexpected first data row: %v", got[1])
	}
	if got[2][2] != "1200.5" {
		t.Fatalf("unexpected kilograms cell: %v", got[2])
	}
}

func TestWorkbook_EmptyStillHasHeader(t *testing.T) {
	out, err := Workbook(nil)
	if err != nil {
		t.Fatalf("workbook: %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("open generated file: %v", err)
	}
	defer f.Close()

	got, err := f.GetRows(sheetName)
	if err != nil {
		t.Fatalf("read sheet: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected header only, got %d rows", len(got))
	}
}

func TestFilename(t *testing.T) {
	if got := Filename("campo-norte", ""); got != "records_campo-norte.xlsx" {
		t.Fatalf("unexpected filename: %q", got)
	}
	if got := Filename("campo-norte", "2025-01-10"); got != "records_campo-norte_2025-01-10.xlsx" {
		t.Fatalf("unexpected filename: %q", got)
	}
}
