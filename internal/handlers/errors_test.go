package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"beacon_analyzer/internal/models"
	"beacon_analyzer/internal/render"
	"beacon_analyzer/internal/service"

	"github.com/gin-gonic/gin"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{service.ErrSessionNotFound, http.StatusNotFound},
		{fmt.Errorf("%w: %q", service.ErrUnknownBeacon, "7"), http.StatusNotFound},
		{render.ErrNothingToPlot, http.StatusNotFound},
		{service.ErrNoDataset, http.StatusConflict},
		{service.ErrNoResult, http.StatusConflict},
		{models.ErrEmptySelection, http.StatusBadRequest},
		{models.ErrInvalidWindow, http.StatusBadRequest},
		{fmt.Errorf("%w: lo > hi", service.ErrInvalidSelection), http.StatusBadRequest},
		{service.ErrUnsupportedFile, http.StatusBadRequest},
		{render.ErrInvalidResample, http.StatusBadRequest},
		{service.ErrUploadTooLarge, http.StatusRequestEntityTooLarge},
		{&models.DataSourceError{Path: "x.db", Element: "table Beacon"}, http.StatusUnprocessableEntity},
		{fmt.Errorf("query readings: %w", &models.FieldError{Field: "RSSI", Row: 3}), http.StatusUnprocessableEntity},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			if got := statusFor(tc.err); got != tc.want {
				t.Fatalf("statusFor(%v) = %d, want %d", tc.err, got, tc.want)
			}
		})
	}
}

func TestRespondError_Body(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewHandler(&service.Service{}, nil)

	run := func(err error) (int, map[string]interface{}) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		h.respondError(c, err, "test")
		var out map[string]interface{}
		if jerr := json.Unmarshal(w.Body.Bytes(), &out); jerr != nil {
			t.Fatalf("invalid JSON: %v", jerr)
		}
		return w.Code, out
	}

	code, out := run(errors.New("secret detail"))
	if code != http.StatusInternalServerError || out["error"] != errInternal {
		t.Fatalf("internal errors must be masked, got %d %v", code, out)
	}

	code, out = run(&models.DataSourceError{Path: "x.db", Element: "column BeaconEvent.RSSI"})
	if code != http.StatusUnprocessableEntity || out["element"] != "column BeaconEvent.RSSI" {
		t.Fatalf("data source error body: %d %v", code, out)
	}

	code, out = run(&models.FieldError{Field: "DateTime", Row: 4, BeaconID: "2", Value: int64(5)})
	if code != http.StatusUnprocessableEntity {
		t.Fatalf("field error status: %d", code)
	}
	if out["field"] != "DateTime" || out["row"] != float64(4) || out["beacon_id"] != "2" {
		t.Fatalf("field error body: %v", out)
	}
}
