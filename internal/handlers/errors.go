package handlers

import (
	"errors"
	"net/http"

	"beacon_analyzer/internal/models"
	"beacon_analyzer/internal/render"
	"beacon_analyzer/internal/service"

	"github.com/gin-gonic/gin"
)

// Common response/status constants to avoid magic strings and typos.
const (
	errInternal        = "internal error"
	errInvalidBodyPref = "invalid body: "
	errMissingFile     = "missing multipart field 'file'"
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// statusFor maps service and domain errors onto HTTP status codes.
func statusFor(err error) int {
	var (
		dse *models.DataSourceError
		fe  *models.FieldError
	)
	switch {
	case errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrUnknownBeacon),
		errors.Is(err, render.ErrNothingToPlot):
		return http.StatusNotFound
	case errors.Is(err, service.ErrNoDataset),
		errors.Is(err, service.ErrNoResult):
		return http.StatusConflict
	case errors.Is(err, models.ErrEmptySelection),
		errors.Is(err, models.ErrInvalidWindow),
		errors.Is(err, service.ErrInvalidSelection),
		errors.Is(err, service.ErrUnsupportedFile),
		errors.Is(err, render.ErrInvalidResample):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrUploadTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &dse), errors.As(err, &fe):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err with its mapped status. Client errors carry their message and,
// for data errors, the offending element; server errors are logged and masked.
func (h *Handler) respondError(c *gin.Context, err error, logKey string, kv ...interface{}) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		h.logAndJSONError(c, code, errInternal, logKey, err, kv...)
		return
	}
	if h.log != nil {
		fields := append([]interface{}{"err", err, "status", code}, kv...)
		h.log.Infow(logKey, fields...)
	}

	body := gin.H{"error": err.Error()}
	var (
		dse *models.DataSourceError
		fe  *models.FieldError
	)
	if errors.As(err, &dse) {
		body["element"] = dse.Element
	}
	if errors.As(err, &fe) {
		body["field"] = fe.Field
		body["row"] = fe.Row
		body["beacon_id"] = fe.BeaconID
	}
	c.JSON(code, body)
}
