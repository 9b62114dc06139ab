package reporting

import "time"

// Common filtering inputs.

type TimeRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// LotSummaryRequest requests aggregated intake metrics for one lot. Range is
// optional; a zero range covers the whole lot.
type LotSummaryRequest struct {
	LotID string    `json:"lotId"`
	Range TimeRange `json:"range,omitempty"`
}

type LotSummary struct {
	LotID string `json:"lotId"`

	TotalRecords   int     `json:"totalRecords"`
	TotalKilograms float64 `json:"totalKilograms"`
	AverageLoadKg  float64 `json:"averageLoadKg"`

	// Trucks counts distinct plates, a rough proxy for fleet size.
	Trucks int `json:"trucks"`

	Days []DaySummary `json:"days"`
}

// DaySummary is one operational day's slice of the lot, oldest first.
type DaySummary struct {
	Day       string  `json:"day"`
	Records   int     `json:"records"`
	Kilograms float64 `json:"kilograms"`
}
