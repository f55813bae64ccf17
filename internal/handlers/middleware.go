package handlers

import (
	"errors"
	"net/http"
	"time"

	"beacon_analyzer/internal/service"

	"github.com/gin-gonic/gin"
)

const sessionIDKey = "sessionId"

// sessionMiddleware rejects requests for unknown sessions and stores the id in the context.
func (h *Handler) sessionMiddleware(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error": "missing session id",
		})
		return
	}

	if _, err := h.services.Sessions.Info(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
				"error": "session not found",
			})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, errInternal, "session_lookup_failed", err, "session_id", id)
		c.Abort()
		return
	}

	// store in Gin context
	c.Set(sessionIDKey, id)
	c.Next()
}

// sessionID returns the id stored by sessionMiddleware.
func sessionID(c *gin.Context) string {
	return c.GetString(sessionIDKey)
}

// requestLogger logs one line per request at debug level.
func (h *Handler) requestLogger(c *gin.Context) {
	start := time.Now()
	c.Next()
	if h.log != nil {
		h.log.Debugw("http_request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
