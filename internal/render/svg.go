package render

import (
	"errors"
	"io"
	"time"

	"beacon_analyzer/internal/models"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ErrNothingToPlot is returned when a chart has no points at all.
var ErrNothingToPlot = errors.New("chart has no data points")

const (
	chartWidth  = 1024
	chartHeight = 500
)

// seriesColors follows the dashboard palette, keyed by quantity.
var seriesColors = map[string]drawing.Color{
	models.QuantityTemperature:     chart.ColorBlue,
	models.QuantityTemperatureExt1: chart.ColorGreen,
	models.QuantityRSSI:            chart.ColorRed,
}

// lineStyle draws a line with small markers.
func lineStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeColor: col,
		StrokeWidth: 1.5,
		DotWidth:    2,
		DotColor:    col,
	}
}

// pointStyle returns a style that renders points only (no connecting line)
func pointStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeColor: drawing.ColorTransparent,
		StrokeWidth: 0,
		DotWidth:    3,
		DotColor:    col,
	}
}

// WriteChartSVG renders c as an SVG document. Temperatures use the left axis, RSSI the right.
func WriteChartSVG(c Chart, w io.Writer) error {
	var (
		series     []chart.Series
		minT, maxT time.Time
	)
	for _, s := range c.Series {
		if len(s.Points) == 0 {
			continue
		}
		xs := make([]time.Time, 0, len(s.Points))
		ys := make([]float64, 0, len(s.Points))
		for _, p := range s.Points {
			xs = append(xs, p.T)
			ys = append(ys, p.V)
			if minT.IsZero() || p.T.Before(minT) {
				minT = p.T
			}
			if maxT.IsZero() || p.T.After(maxT) {
				maxT = p.T
			}
		}

		col, ok := seriesColors[s.Quantity]
		if !ok {
			col = chart.ColorAlternateGray
		}
		ts := chart.TimeSeries{Name: s.Name, XValues: xs, YValues: ys, Style: lineStyle(col)}
		if s.Axis == AxisSecondary {
			ts.YAxis = chart.YAxisSecondary
			ts.Style = pointStyle(col)
		}
		series = append(series, ts)
	}
	if len(series) == 0 {
		return ErrNothingToPlot
	}

	// Ensure non-zero X range even when there's only one timestamp
	minF := chart.TimeToFloat64(minT)
	maxF := chart.TimeToFloat64(maxT)
	if maxF <= minF {
		maxF = chart.TimeToFloat64(minT.Add(time.Minute))
	}

	ch := chart.Chart{
		Title:      c.Title,
		Width:      chartWidth,
		Height:     chartHeight,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			Name:           "Time",
			ValueFormatter: chart.TimeValueFormatterWithFormat("01-02 15:04"),
			Range:          &chart.ContinuousRange{Min: minF, Max: maxF},
		},
		YAxis: chart.YAxis{
			Name:  "Temperature (°C)",
			Range: &chart.ContinuousRange{Min: c.TemperatureAxis.Min, Max: c.TemperatureAxis.Max},
		},
		YAxisSecondary: chart.YAxis{
			Name:  "RSSI (dBm)",
			Range: &chart.ContinuousRange{Min: c.RSSIAxis.Min, Max: c.RSSIAxis.Max},
		},
		Series: series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	return ch.Render(chart.SVG, w)
}
