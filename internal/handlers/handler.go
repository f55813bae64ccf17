package handlers

import (
	"beacon_analyzer/internal/logger"
	"beacon_analyzer/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services  *service.Service
	log       *logger.Logger
	maxUpload int64 // upload size limit in bytes; 0 means unlimited
}

// Option customises a Handler.
type Option func(*Handler)

// WithUploadLimit caps the database file size accepted by the upload endpoint.
func WithUploadLimit(n int64) Option {
	return func(h *Handler) { h.maxUpload = n }
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger, opts ...Option) *Handler {
	h := &Handler{services: services, log: log}
	for _, o := range opts {
		o(h)
	}
	return h
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), h.requestLogger)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Dashboard page and health endpoint
	router.GET("/", h.index)
	router.GET("/health", h.health)

	// Versioned API endpoints
	h.registerAPIRoutes(router)

	// Live analysis channel (HTTP upgrade) on the same port
	router.GET("/ws/sessions/:id", h.sessionMiddleware, h.wsConnect)

	return router
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		api.POST("/sessions", h.createSession)
		h.registerSessionRoutes(api)
	}
}

func (h *Handler) registerSessionRoutes(api *gin.RouterGroup) {
	session := api.Group("/sessions/:id", h.sessionMiddleware)
	{
		session.GET("", h.getSession)
		session.DELETE("", h.deleteSession)
		session.POST("/dataset", h.uploadDataset)
		session.GET("/beacons", h.listBeacons)
		// Body example: {"op":"first","n":3}
		session.POST("/selection", h.updateSelection)
		// Body example: {"from":"2024-01-01","to":"2024-01-02","resample":"5m"}
		session.POST("/analyze", h.analyze)
		session.GET("/charts/:beacon", h.getChart)
		session.GET("/schematic", h.getSchematic)
	}
}
