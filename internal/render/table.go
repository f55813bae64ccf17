package render

import (
	"math"
	"time"

	"beacon_analyzer/internal/models"
)

// Column describes one table column.
type Column struct {
	Key   string `json:"key"`
	Title string `json:"title"`
	Unit  string `json:"unit,omitempty"`
}

// Table is a column description plus row values; nil cells mean "no value".
type Table struct {
	Columns []Column `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

var summaryColumns = []Column{
	{Key: "beacon_id", Title: "Beacon"},
	{Key: "description", Title: "Description"},
	{Key: "count", Title: "Readings"},
	{Key: "temp_mean", Title: "Mean temperature", Unit: "°C"},
	{Key: "temp_min", Title: "Min temperature", Unit: "°C"},
	{Key: "temp_max", Title: "Max temperature", Unit: "°C"},
	{Key: "temp_ext1_mean", Title: "Mean temperature ext1", Unit: "°C"},
	{Key: "rssi_mean", Title: "Mean RSSI", Unit: "dBm"},
	{Key: "rssi_min", Title: "Min RSSI", Unit: "dBm"},
	{Key: "rssi_max", Title: "Max RSSI", Unit: "dBm"},
}

var previewColumns = []Column{
	{Key: "timestamp", Title: "Time"},
	{Key: "beacon_id", Title: "Beacon"},
	{Key: "description", Title: "Description"},
	{Key: "temperature", Title: "Temperature", Unit: "°C"},
	{Key: "temperature_ext1", Title: "Temperature ext1", Unit: "°C"},
	{Key: "rssi", Title: "RSSI", Unit: "dBm"},
}

// SummaryTable lays out per-beacon summaries, one row per beacon.
func SummaryTable(summaries []models.BeaconSummary) Table {
	t := Table{Columns: summaryColumns, Rows: make([][]any, 0, len(summaries))}
	for _, s := range summaries {
		t.Rows = append(t.Rows, []any{
			s.BeaconID,
			s.Description,
			s.Count,
			round(s.Temperature.Mean, 2),
			round(s.Temperature.Min, 2),
			round(s.Temperature.Max, 2),
			round(s.TemperatureExt1.Mean, 2),
			round(s.RSSI.Mean, 1),
			round(s.RSSI.Min, 1),
			round(s.RSSI.Max, 1),
		})
	}
	return t
}

// PreviewTable lays out the first n readings; n <= 0 yields no rows.
func PreviewTable(rows []models.Reading, n int) Table {
	if n < 0 {
		n = 0
	}
	if n > len(rows) {
		n = len(rows)
	}
	t := Table{Columns: previewColumns, Rows: make([][]any, 0, n)}
	for _, r := range rows[:n] {
		t.Rows = append(t.Rows, []any{
			r.Timestamp.UTC().Format(time.RFC3339),
			r.BeaconID,
			r.Description,
			round(r.TemperatureC, 2),
			round(r.TemperatureExt1C, 2),
			round(r.RSSI, 1),
		})
	}
	return t
}

// round returns v rounded to the given decimals, or nil for a missing value.
func round(v *float64, decimals int) any {
	if v == nil {
		return nil
	}
	p := math.Pow(10, float64(decimals))
	return math.Round(*v*p) / p
}
