package api

import (
	"errors"
	"net/http"

	"gamefilter/internal/adapters/api/middleware"
	"gamefilter/internal/application/admission"
	"gamefilter/internal/application/auth"
	"gamefilter/internal/application/console"
	"gamefilter/internal/domain/filter"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"     // swagger embed files
	ginSwagger "github.com/swaggo/gin-swagger" // gin-swagger middleware

	_ "gamefilter/docs" // swagger docs
)

// Handler handles HTTP requests for the filter admin API
type Handler struct {
	service     *admission.Service
	console     *console.Console
	authService *auth.Service
	hub         *ChangeHub
	gatherer    prometheus.Gatherer
}

// NewHandler creates a new API handler. gatherer may be nil, in which case
// /metrics is not served.
func NewHandler(service *admission.Service, con *console.Console, authService *auth.Service, gatherer prometheus.Gatherer) *Handler {
	return &Handler{
		service:     service,
		console:     con,
		authService: authService,
		hub:         NewChangeHub(),
		gatherer:    gatherer,
	}
}

// Hub returns the websocket hub that should receive filter changes.
func (h *Handler) Hub() *ChangeHub { return h.hub }

// RegisterRoutes registers all API routes
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		api.GET("/health", h.Health)
		api.POST("/auth/token", h.IssueToken)

		admin := api.Group("")
		admin.Use(middleware.AuthMiddleware(h.authService), middleware.RequireAdmin())
		{
			filters := admin.Group("/filters")
			{
				filters.GET("", h.ListFilters)
				filters.POST("/write", h.WriteFilters)
				filters.PUT("/filterban", h.SetFilterBan)
				filters.POST("/ip", h.AddIP)
				filters.DELETE("/ip/:pattern", h.RemoveIP)
			}
			admin.POST("/bans", h.Ban)
			admin.DELETE("/bans/:id", h.RemoveBan)
			admin.POST("/mutes", h.Mute)
			admin.DELETE("/mutes/:id", h.RemoveMute)
			admin.POST("/console", h.ExecConsole)

			admissionGroup := admin.Group("/admission")
			{
				admissionGroup.GET("/address", h.CheckAddress)
				admissionGroup.GET("/identity/:id", h.CheckIdentity)
			}

			admin.GET("/ws", h.HandleWebSocket)
		}
	}
	if h.gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{})))
	}
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

// Health godoc
//
//	@Summary		Health check
//	@Description	Reports that the server is up and how many filter slots are in use
//	@Tags			health
//	@Produce		json
//	@Success		200	{object}	map[string]any
//	@Router			/health [get]
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"entries":   len(h.service.ListIP()),
		"capacity":  filter.MaxEntries,
		"filterban": h.service.FilterBan(),
	})
}

// ErrorResponse is returned by every failing endpoint. Applied is true when
// the change took effect in memory but could not be written out.
type ErrorResponse struct {
	Error   string `json:"error"`
	Applied bool   `json:"applied,omitempty"`
}

func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, filter.ErrFull):
		status = http.StatusConflict
	case errors.Is(err, filter.ErrInvalidPattern), errors.Is(err, filter.ErrZeroIdentity),
		errors.Is(err, filter.ErrInvalidMinutes):
		status = http.StatusBadRequest
	case errors.Is(err, filter.ErrNotFound):
		status = http.StatusNotFound
	}
	c.JSON(status, ErrorResponse{Error: err.Error(), Applied: errors.Is(err, admission.ErrPersist)})
}
