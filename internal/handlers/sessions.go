package handlers

import (
	"errors"
	"net/http"

	"beacon_analyzer/internal/service"

	"github.com/gin-gonic/gin"
)

// multipartOverhead is the slack allowed above the upload limit for multipart framing.
const multipartOverhead = 1 << 20

// SelectionRequest is the payload of a selection operation.
type SelectionRequest struct {
	// Operation. Allowed: all, clear, first, pattern, quality, temperature_range, range
	Op string `json:"op" binding:"required" example:"first"`
	// Number of beacons (op=first)
	N int `json:"n,omitempty" example:"3"`
	// Case-insensitive substring of id or description (op=pattern)
	Text string `json:"text,omitempty" example:"kiln"`
	// Lower bound of the mean temperature in °C (op=temperature_range)
	Lo *float64 `json:"lo,omitempty" example:"50"`
	// Upper bound of the mean temperature in °C (op=temperature_range)
	Hi *float64 `json:"hi,omitempty" example:"150"`
	// First beacon id of the range, inclusive (op=range)
	From string `json:"from,omitempty" example:"3"`
	// Last beacon id of the range, inclusive (op=range)
	To string `json:"to,omitempty" example:"7"`
}

// @Summary      Create session
// @Description  Starts a dashboard session, attached to the configured default database when there is one.
// @Tags         sessions
// @Produce      json
// @Success      201  {object}  service.SessionInfo
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/sessions [post]
func (h *Handler) createSession(c *gin.Context) {
	info, err := h.services.Sessions.Create(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "session_create_failed")
		return
	}
	c.JSON(http.StatusCreated, info)
}

// @Summary      Get session
// @Tags         sessions
// @Produce      json
// @Param        id   path      string  true  "Session id"
// @Success      200  {object}  service.SessionInfo
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/sessions/{id} [get]
func (h *Handler) getSession(c *gin.Context) {
	info, err := h.services.Sessions.Info(c.Request.Context(), sessionID(c))
	if err != nil {
		h.respondError(c, err, "session_get_failed", "session_id", sessionID(c))
		return
	}
	c.JSON(http.StatusOK, info)
}

// @Summary      Delete session
// @Tags         sessions
// @Param        id   path  string  true  "Session id"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/sessions/{id} [delete]
func (h *Handler) deleteSession(c *gin.Context) {
	if err := h.services.Sessions.Delete(c.Request.Context(), sessionID(c)); err != nil {
		h.respondError(c, err, "session_delete_failed", "session_id", sessionID(c))
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary      Upload database
// @Description  Attaches a SQLite file (.db, .sqlite, .sqlite3) to the session. The file must hold the Beacon and BeaconEvent tables.
// @Tags         sessions
// @Accept       multipart/form-data
// @Produce      json
// @Param        id    path      string  true  "Session id"
// @Param        file  formData  file    true  "SQLite database"
// @Success      200   {object}  service.DatasetInfo
// @Failure      400   {object}  map[string]string
// @Failure      413   {object}  map[string]string
// @Failure      422   {object}  map[string]string  "error, element"
// @Router       /api/v1/sessions/{id}/dataset [post]
func (h *Handler) uploadDataset(c *gin.Context) {
	if h.maxUpload > 0 {
		limit := h.maxUpload + multipartOverhead
		if c.Request.ContentLength > limit {
			h.respondError(c, service.ErrUploadTooLarge, "dataset_upload_rejected", "session_id", sessionID(c), "content_length", c.Request.ContentLength)
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	}

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.respondError(c, service.ErrUploadTooLarge, "dataset_upload_rejected", "session_id", sessionID(c))
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": errMissingFile})
		return
	}
	f, err := fh.Open()
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errInternal, "upload_open_failed", err)
		return
	}
	defer f.Close()

	info, err := h.services.Sessions.Upload(c.Request.Context(), sessionID(c), fh.Filename, f)
	if err != nil {
		h.respondError(c, err, "dataset_upload_failed", "session_id", sessionID(c), "filename", fh.Filename)
		return
	}
	c.JSON(http.StatusOK, info)
}

// @Summary      List beacons
// @Description  The returned order is the one used by the "range" selection operation.
// @Tags         sessions
// @Produce      json
// @Param        id    path   string  true   "Session id"
// @Param        q     query  string  false  "Case-insensitive search on id or description"
// @Param        sort  query  string  false  "Sort order"  Enums(description,id)
// @Success      200   {object}  map[string]interface{}  "count, beacons"
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /api/v1/sessions/{id}/beacons [get]
func (h *Handler) listBeacons(c *gin.Context) {
	q := service.BeaconQuery{Search: c.Query("q"), Sort: c.Query("sort")}
	rows, err := h.services.Sessions.Beacons(c.Request.Context(), sessionID(c), q)
	if err != nil {
		h.respondError(c, err, "beacons_list_failed", "session_id", sessionID(c))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":   len(rows),
		"beacons": rows,
	})
}

// @Summary      Change selection
// @Description  all/clear/first/quality/temperature_range replace the selection; pattern/range add to it.
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Param        id    path  string            true  "Session id"
// @Param        body  body  SelectionRequest  true  "Selection operation"
// @Success      200   {object}  service.SessionInfo
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /api/v1/sessions/{id}/selection [post]
func (h *Handler) updateSelection(c *gin.Context) {
	var req SelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	info, err := h.services.Sessions.Select(c.Request.Context(), sessionID(c), service.SelectionRequest{
		Op:   req.Op,
		N:    req.N,
		Text: req.Text,
		Lo:   req.Lo,
		Hi:   req.Hi,
		From: req.From,
		To:   req.To,
	})
	if err != nil {
		h.respondError(c, err, "selection_failed", "session_id", sessionID(c), "op", req.Op)
		return
	}
	c.JSON(http.StatusOK, info)
}
