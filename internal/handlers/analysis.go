package handlers

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"beacon_analyzer/internal/models"
	"beacon_analyzer/internal/render"
	"beacon_analyzer/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	errFromInvalid   = "invalid 'from' time; use RFC3339, 'YYYY-MM-DD HH:MM:SS' or YYYY-MM-DD"
	errToInvalid     = "invalid 'to' time; use RFC3339, 'YYYY-MM-DD HH:MM:SS' or YYYY-MM-DD"
	errRangeInverted = "'from' must be <= 'to'"
	errTargetInvalid = "invalid 'target'; expected a number in °C"

	layoutDateTime = "2006-01-02 15:04:05"
	layoutDate     = "2006-01-02"

	formatJSON = "json"
	mimeSVG    = "image/svg+xml"
)

// AnalyzeRequest is the payload of an analysis run. Empty bounds default to the dataset span.
type AnalyzeRequest struct {
	// Start of the window (RFC3339, 'YYYY-MM-DD HH:MM:SS' or 'YYYY-MM-DD')
	From string `json:"from,omitempty" example:"2024-03-01"`
	// End of the window. Date-only means end of that day
	To string `json:"to,omitempty" example:"2024-03-02"`
	// Resample interval. Allowed: 1m, 5m, 10m, 30m, 1h
	Resample string `json:"resample,omitempty" example:"5m"`
	// Target temperature for the schematic, °C
	TargetTempC *float64 `json:"target_temp_c,omitempty" example:"115"`
}

// isDateOnly reports whether the query string represents a date without time component.
func isDateOnly(s string) bool {
	return !strings.ContainsAny(s, "T ")
}

func parseQueryTime(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, layoutDateTime, layoutDate} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf(
		"invalid time format %q, expected one of: "+
			"RFC3339 (e.g. 2024-03-01T15:04:05Z), "+
			"'YYYY-MM-DD HH:MM:SS', "+
			"'YYYY-MM-DD'",
		s,
	)
}

// parseWindow reads the optional bounds of req. A date-only 'to' covers the whole day.
func parseWindow(req AnalyzeRequest) (models.Window, string) {
	var w models.Window
	if s := strings.TrimSpace(req.From); s != "" {
		t, err := parseQueryTime(s)
		if err != nil {
			return models.Window{}, errFromInvalid
		}
		w.From = t
	}
	if s := strings.TrimSpace(req.To); s != "" {
		t, err := parseQueryTime(s)
		if err != nil {
			return models.Window{}, errToInvalid
		}
		if isDateOnly(s) {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		w.To = t
	}
	if !w.From.IsZero() && !w.To.IsZero() && w.From.After(w.To) {
		return models.Window{}, errRangeInverted
	}
	return w, ""
}

// @Summary      Analyze
// @Description  Filters the selected beacons' readings to the window and returns charts, summary, preview and schematic.
// @Tags         analysis
// @Accept       json
// @Produce      json
// @Param        id    path  string          true  "Session id"
// @Param        body  body  AnalyzeRequest  true  "Window and display options"
// @Success      200   {object}  render.View
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /api/v1/sessions/{id}/analyze [post]
func (h *Handler) analyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	view, msg, err := h.runAnalysis(c.Request.Context(), sessionID(c), req)
	if msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}
	if err != nil {
		h.respondError(c, err, "analyze_failed", "session_id", sessionID(c))
		return
	}
	c.JSON(http.StatusOK, view)
}

// runAnalysis validates req and runs it. A non-empty message is a request error.
func (h *Handler) runAnalysis(ctx context.Context, id string, req AnalyzeRequest) (render.View, string, error) {
	w, msg := parseWindow(req)
	if msg != "" {
		return render.View{}, msg, nil
	}
	view, err := h.services.Views.Analyze(ctx, id, service.AnalyzeParams{
		Window:      w,
		Resample:    strings.TrimSpace(req.Resample),
		TargetTempC: req.TargetTempC,
	})
	return view, "", err
}

// @Summary      Beacon chart
// @Description  Time-series chart of one beacon of the latest analysis, as SVG or as JSON series.
// @Tags         analysis
// @Produce      image/svg+xml
// @Produce      json
// @Param        id      path   string  true   "Session id"
// @Param        beacon  path   string  true   "Beacon id"
// @Param        format  query  string  false  "Output format"  Enums(svg,json)
// @Success      200     {object}  render.Chart
// @Failure      404     {object}  map[string]string
// @Failure      409     {object}  map[string]string
// @Router       /api/v1/sessions/{id}/charts/{beacon} [get]
func (h *Handler) getChart(c *gin.Context) {
	beaconID := c.Param("beacon")
	ch, err := h.services.Views.Chart(c.Request.Context(), sessionID(c), beaconID)
	if err != nil {
		h.respondError(c, err, "chart_failed", "session_id", sessionID(c), "beacon_id", beaconID)
		return
	}
	if strings.EqualFold(c.Query("format"), formatJSON) {
		c.JSON(http.StatusOK, ch)
		return
	}

	var buf bytes.Buffer
	if err := render.WriteChartSVG(ch, &buf); err != nil {
		h.respondError(c, err, "chart_render_failed", "session_id", sessionID(c), "beacon_id", beaconID)
		return
	}
	c.Data(http.StatusOK, mimeSVG, buf.Bytes())
}

// @Summary      Temperature schematic
// @Description  Grid of beacons coloured by how far their maximum temperature is from the target.
// @Tags         analysis
// @Produce      json
// @Param        id      path   string  true   "Session id"
// @Param        target  query  number  false  "Target temperature, °C"
// @Success      200     {object}  render.Schematic
// @Failure      400     {object}  map[string]string
// @Failure      409     {object}  map[string]string
// @Router       /api/v1/sessions/{id}/schematic [get]
func (h *Handler) getSchematic(c *gin.Context) {
	var target *float64
	if qs := strings.TrimSpace(c.Query("target")); qs != "" {
		v, err := strconv.ParseFloat(qs, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			c.JSON(http.StatusBadRequest, gin.H{"error": errTargetInvalid})
			return
		}
		target = &v
	}
	sch, err := h.services.Views.Schematic(c.Request.Context(), sessionID(c), target)
	if err != nil {
		h.respondError(c, err, "schematic_failed", "session_id", sessionID(c))
		return
	}
	c.JSON(http.StatusOK, sch)
}
