package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"beacon_analyzer/internal/models"
	"beacon_analyzer/internal/render"
	"beacon_analyzer/internal/service"
)

func TestParseQueryTime(t *testing.T) {
	cases := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{in: "2024-03-01T10:20:30Z", want: time.Date(2024, 3, 1, 10, 20, 30, 0, time.UTC)},
		{in: "2024-03-01T12:20:30+02:00", want: time.Date(2024, 3, 1, 10, 20, 30, 0, time.UTC)},
		{in: "2024-03-01 10:20:30", want: time.Date(2024, 3, 1, 10, 20, 30, 0, time.UTC)},
		{in: "2024-03-01", want: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{in: "1709288430", wantErr: true},
		{in: "yesterday", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := parseQueryTime(tc.in)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tc.want) || got.Location() != time.UTC {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestParseWindow(t *testing.T) {
	w, msg := parseWindow(AnalyzeRequest{From: "2024-03-01", To: "2024-03-01"})
	if msg != "" {
		t.Fatalf("unexpected message: %s", msg)
	}
	wantTo := time.Date(2024, 3, 1, 23, 59, 59, 999999999, time.UTC)
	if !w.To.Equal(wantTo) {
		t.Fatalf("date-only 'to' should cover the day, got %v", w.To)
	}

	w, msg = parseWindow(AnalyzeRequest{})
	if msg != "" || !w.IsZero() {
		t.Fatalf("empty request should give a zero window, got %v %q", w, msg)
	}

	if _, msg = parseWindow(AnalyzeRequest{From: "2024-03-02", To: "2024-03-01"}); msg != errRangeInverted {
		t.Fatalf("inverted range: got %q", msg)
	}
	if _, msg = parseWindow(AnalyzeRequest{From: "bogus"}); msg != errFromInvalid {
		t.Fatalf("bad from: got %q", msg)
	}
	if _, msg = parseWindow(AnalyzeRequest{To: "bogus"}); msg != errToInvalid {
		t.Fatalf("bad to: got %q", msg)
	}
}

func TestAnalyze(t *testing.T) {
	s, _, views := newTestServices()
	views.view = render.View{
		Selected: []string{"1", "2"},
		Stats:    render.Stats{Records: 10, Days: 1, Beacons: 2},
	}
	r := newTestRouter(s)

	w := doJSON(t, r, http.MethodPost, "/api/v1/sessions/s1/analyze",
		`{"from":"2024-03-01 08:00:00","to":"2024-03-01","resample":"5m","target_temp_c":120}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var view render.View
	_ = json.Unmarshal(w.Body.Bytes(), &view)
	if view.Stats.Records != 10 || len(view.Selected) != 2 {
		t.Fatalf("unexpected view: %+v", view)
	}

	calls := views.analyzeCalls()
	if len(calls) != 1 {
		t.Fatalf("expected one analyze call, got %d", len(calls))
	}
	p := calls[0]
	if !p.Window.From.Equal(time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)) {
		t.Fatalf("from not forwarded: %v", p.Window.From)
	}
	if p.Window.To.Hour() != 23 || p.Resample != "5m" || p.TargetTempC == nil || *p.TargetTempC != 120 {
		t.Fatalf("unexpected params: %+v", p)
	}
}

func TestAnalyze_Errors(t *testing.T) {
	cases := []struct {
		name string
		body string
		err  error
		code int
	}{
		{name: "inverted window", body: `{"from":"2024-03-02","to":"2024-03-01"}`, code: http.StatusBadRequest},
		{name: "bad from", body: `{"from":"soon"}`, code: http.StatusBadRequest},
		{name: "empty selection", body: `{}`, err: models.ErrEmptySelection, code: http.StatusBadRequest},
		{name: "bad resample", body: `{"resample":"7m"}`, err: render.ErrInvalidResample, code: http.StatusBadRequest},
		{name: "no dataset", body: `{}`, err: service.ErrNoDataset, code: http.StatusConflict},
		{name: "bad row", body: `{}`, err: &models.FieldError{Field: "RSSI", Row: 2, BeaconID: "1"}, code: http.StatusUnprocessableEntity},
		{name: "internal", body: `{}`, err: errors.New("boom"), code: http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, _, views := newTestServices()
			views.analyzeErr = tc.err
			r := newTestRouter(s)

			w := doJSON(t, r, http.MethodPost, "/api/v1/sessions/s1/analyze", tc.body)
			if w.Code != tc.code {
				t.Fatalf("status: got %d, want %d (body=%s)", w.Code, tc.code, w.Body.String())
			}
		})
	}
}

func sampleChart() render.Chart {
	t0 := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	return render.Chart{
		BeaconID: "1",
		Title:    "Beacon 1",
		Resample: "1m",
		Series: []render.Series{
			{Name: "Temperature (°C)", Quantity: models.QuantityTemperature, Unit: "°C", Axis: render.AxisPrimary,
				Points: []render.Point{{T: t0, V: 100}, {T: t0.Add(time.Minute), V: 110}}},
			{Name: "RSSI Median", Quantity: models.QuantityRSSI, Unit: "dBm", Axis: render.AxisSecondary,
				Points: []render.Point{{T: t0, V: -70}, {T: t0.Add(time.Minute), V: -72}}},
		},
		TemperatureAxis: render.Range{Min: 20, Max: 125},
		RSSIAxis:        render.Range{Min: -100, Max: -50},
	}
}

func TestGetChart(t *testing.T) {
	s, _, views := newTestServices()
	views.chart = sampleChart()
	r := newTestRouter(s)

	w := doJSON(t, r, http.MethodGet, "/api/v1/sessions/s1/charts/1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("svg status=%d body=%s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != mimeSVG {
		t.Fatalf("content type: %q", ct)
	}
	if !strings.Contains(w.Body.String(), "<svg") {
		t.Fatalf("not an SVG document")
	}
	if views.lastBeacon != "1" {
		t.Fatalf("beacon not forwarded: %q", views.lastBeacon)
	}

	w = doJSON(t, r, http.MethodGet, "/api/v1/sessions/s1/charts/1?format=json", "")
	if w.Code != http.StatusOK {
		t.Fatalf("json status=%d", w.Code)
	}
	var ch render.Chart
	_ = json.Unmarshal(w.Body.Bytes(), &ch)
	if ch.BeaconID != "1" || len(ch.Series) != 2 {
		t.Fatalf("unexpected chart: %+v", ch)
	}

	views.chartErr = service.ErrUnknownBeacon
	w = doJSON(t, r, http.MethodGet, "/api/v1/sessions/s1/charts/99", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown beacon status=%d", w.Code)
	}

	views.chartErr = service.ErrNoResult
	w = doJSON(t, r, http.MethodGet, "/api/v1/sessions/s1/charts/1", "")
	if w.Code != http.StatusConflict {
		t.Fatalf("no result status=%d", w.Code)
	}
}

func TestGetChart_NothingToPlot(t *testing.T) {
	s, _, views := newTestServices()
	views.chart = render.Chart{BeaconID: "1", Series: []render.Series{{Quantity: models.QuantityTemperature}}}
	r := newTestRouter(s)

	w := doJSON(t, r, http.MethodGet, "/api/v1/sessions/s1/charts/1", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestGetSchematic(t *testing.T) {
	s, _, views := newTestServices()
	views.schematic = render.Schematic{Rows: 3, Cols: 11, TargetC: 100}
	r := newTestRouter(s)

	w := doJSON(t, r, http.MethodGet, "/api/v1/sessions/s1/schematic?target=100", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if views.lastTarget == nil || *views.lastTarget != 100 {
		t.Fatalf("target not forwarded: %v", views.lastTarget)
	}
	var sch render.Schematic
	_ = json.Unmarshal(w.Body.Bytes(), &sch)
	if sch.Rows != 3 || sch.Cols != 11 {
		t.Fatalf("unexpected schematic: %+v", sch)
	}

	w = doJSON(t, r, http.MethodGet, "/api/v1/sessions/s1/schematic", "")
	if w.Code != http.StatusOK || views.lastTarget != nil {
		t.Fatalf("no target: status=%d target=%v", w.Code, views.lastTarget)
	}

	for _, bad := range []string{"hot", "NaN", "Inf"} {
		w = doJSON(t, r, http.MethodGet, "/api/v1/sessions/s1/schematic?target="+bad, "")
		if w.Code != http.StatusBadRequest {
			t.Fatalf("target=%s status=%d", bad, w.Code)
		}
	}
}
