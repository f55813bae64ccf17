package handlers

import (
	_ "embed"
	"net/http"

	"github.com/gin-gonic/gin"
)

const statusOK = "ok"

//go:embed web/index.html
var indexHTML []byte

// index serves the single-page dashboard.
func (h *Handler) index(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", indexHTML)
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}
