// Package render turns analysis results into view descriptions and SVG charts.
package render

import (
	"fmt"
	"math"
	"time"

	"beacon_analyzer/internal/models"
)

// Chart axes.
const (
	AxisPrimary   = "primary"
	AxisSecondary = "secondary"
)

// Range is a closed numeric axis range.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// widen returns r stretched to contain every value of vs.
func (r Range) widen(vs ...float64) Range {
	for _, v := range vs {
		r.Min = math.Min(r.Min, v)
		r.Max = math.Max(r.Max, v)
	}
	return r
}

// Options control how a Result is presented.
type Options struct {
	Resample         string  // interval key, see ParseResample
	TargetTempC      float64 // schematic target
	TemperatureRange Range   // default temperature axis, °C
	RSSIRange        Range   // default RSSI axis, dBm
	SchematicRows    int
	SchematicCols    int
	PreviewRows      int
}

// DefaultOptions mirrors the dashboard defaults.
func DefaultOptions() Options {
	return Options{
		Resample:         "5m",
		TargetTempC:      115,
		TemperatureRange: Range{Min: 20, Max: 125},
		RSSIRange:        Range{Min: -100, Max: -50},
		SchematicRows:    3,
		SchematicCols:    11,
		PreviewRows:      10,
	}
}

// Point is one sample of a series.
type Point struct {
	T time.Time `json:"t"`
	V float64   `json:"v"`
}

// Series is one measured quantity of one beacon.
type Series struct {
	Name     string  `json:"name"`
	Quantity string  `json:"quantity"`
	Unit     string  `json:"unit"`
	Axis     string  `json:"axis"`
	Points   []Point `json:"points"`
}

// Chart is the time-series plot of one beacon.
type Chart struct {
	BeaconID        string   `json:"beacon_id"`
	Title           string   `json:"title"`
	Resample        string   `json:"resample"`
	Series          []Series `json:"series"`
	TemperatureAxis Range    `json:"temperature_axis"`
	RSSIAxis        Range    `json:"rssi_axis"`
}

// Stats are the dataset-level counters of a view.
type Stats struct {
	Records int `json:"records"`
	Days    int `json:"days"`
	Beacons int `json:"beacons"`
}

// View is everything the page needs to render one analysis.
type View struct {
	Window    models.Window `json:"window"`
	Empty     bool          `json:"empty"`
	Message   string        `json:"message,omitempty"`
	Selected  []string      `json:"selected"`
	Stats     Stats         `json:"stats"`
	Charts    []Chart       `json:"charts"`
	Summary   Table         `json:"summary"`
	Preview   Table         `json:"preview"`
	Schematic Schematic     `json:"schematic"`
}

// quantity describes how one reading field becomes a series.
type quantity struct {
	key    string
	name   string
	unit   string
	axis   string
	reduce reducer
}

var quantities = []quantity{
	{key: models.QuantityTemperature, name: "Temperature (°C)", unit: "°C", axis: AxisPrimary, reduce: mean},
	{key: models.QuantityTemperatureExt1, name: "Temperature Ext1 (°C)", unit: "°C", axis: AxisPrimary, reduce: mean},
	{key: models.QuantityRSSI, name: "RSSI Median", unit: "dBm", axis: AxisSecondary, reduce: median},
}

// BuildView describes res for display. It holds no state and does not touch res.
func BuildView(res models.Result, opts Options) (View, error) {
	key, step, err := ParseResample(opts.Resample)
	if err != nil {
		return View{}, err
	}

	v := View{
		Window:   res.Window,
		Empty:    res.Empty,
		Message:  res.Message,
		Selected: append([]string{}, res.Selected...),
		Stats:    Stats{Records: len(res.Rows), Days: res.Days, Beacons: res.Beacons},
		Charts:   []Chart{},
		Summary:  SummaryTable(res.Summary),
		Preview:  PreviewTable(res.Rows, opts.PreviewRows),
	}
	v.Schematic = BuildSchematic(res, opts.TargetTempC, opts.SchematicRows, opts.SchematicCols)

	byBeacon := groupByBeacon(res.Rows)
	for _, s := range res.Summary {
		v.Charts = append(v.Charts, buildChart(s, byBeacon[s.BeaconID], key, step, opts))
	}
	return v, nil
}

func groupByBeacon(rows []models.Reading) map[string][]models.Reading {
	out := make(map[string][]models.Reading)
	for _, r := range rows {
		out[r.BeaconID] = append(out[r.BeaconID], r)
	}
	return out
}

func buildChart(s models.BeaconSummary, rows []models.Reading, key string, step time.Duration, opts Options) Chart {
	label := s.Description
	if label == "" {
		label = s.BeaconID
	}
	c := Chart{
		BeaconID:        s.BeaconID,
		Title:           fmt.Sprintf("Temperature and RSSI vs Time - %s", label),
		Resample:        key,
		Series:          make([]Series, 0, len(quantities)),
		TemperatureAxis: opts.TemperatureRange,
		RSSIAxis:        opts.RSSIRange,
	}

	for _, q := range quantities {
		raw := make([]Point, 0, len(rows))
		for _, r := range rows {
			if val := r.Value(q.key); val != nil {
				raw = append(raw, Point{T: r.Timestamp, V: *val})
			}
		}
		points := resample(raw, step, q.reduce)

		values := make([]float64, 0, len(points))
		for _, p := range points {
			values = append(values, p.V)
		}
		if q.axis == AxisSecondary {
			c.RSSIAxis = c.RSSIAxis.widen(values...)
		} else {
			c.TemperatureAxis = c.TemperatureAxis.widen(values...)
		}

		c.Series = append(c.Series, Series{
			Name:     q.name,
			Quantity: q.key,
			Unit:     q.unit,
			Axis:     q.axis,
			Points:   points,
		})
	}
	return c
}

// FindChart returns the chart of beaconID.
func (v View) FindChart(beaconID string) (Chart, bool) {
	for _, c := range v.Charts {
		if c.BeaconID == beaconID {
			return c, true
		}
	}
	return Chart{}, false
}
