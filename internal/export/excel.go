// Package export renders intake records as xlsx workbooks for the
// back office.
package export

import (
	"bytes"
	"fmt"

	"harvest-intake/internal/records"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Records"

var headers = []string{
	"Order #",
	"Date",
	"Kilograms",
	"Bolson #",
	"Lote",
	"Truck Plate",
	"Driver",
	"Tolvero",
	"Controller",
	"Cereal",
	"Created By",
}

// Workbook renders rows into a single-sheet xlsx file. Rows are written in
// the order given; callers decide the ordering.
func Workbook(rows []records.Record) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	for col, h := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return nil, err
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(sheetName, "A1", last, bold); err != nil {
		return nil, err
	}

	for i, r := range rows {
		values := []any{
			r.OrderNumber,
			r.Date.Format("2006-01-02"),
			r.Kilograms,
			r.BolsonNumber,
			r.LoteNumber,
			r.TruckPlate,
			r.TruckDriver,
			r.Tolvero,
			r.Controller,
			r.Cereal,
			r.CreatedBy,
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Filename builds the download name for a lot export, optionally narrowed
// to one day.
func Filename(lotName, day string) string {
	if day != "" {
		return fmt.Sprintf("records_%s_%s.xlsx", lotName, day)
	}
	return fmt.Sprintf("records_%s.xlsx", lotName)
}
