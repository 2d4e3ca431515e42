package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/SAP-F-2025/form-builder-service/internal/services"
	"github.com/SAP-F-2025/form-builder-service/internal/utils"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Pinger reports whether the storage backend is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

type HandlerManager struct {
	formHandler     *FormHandler
	responseHandler *ResponseHandler
	healthHandler   *HealthHandler
}

func NewHandlerManager(
	serviceManager *services.ServiceManager,
	storage Pinger,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		formHandler:     NewFormHandler(serviceManager.Forms, logger),
		responseHandler: NewResponseHandler(serviceManager.Responses, serviceManager.Export, logger),
		healthHandler:   NewHealthHandler(storage, logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	api := router.Group("/api")
	{
		api.GET("/health", hm.healthHandler.Health)

		// Form routes
		forms := api.Group("/forms")
		{
			forms.GET("", hm.formHandler.ListForms)
			forms.POST("", hm.formHandler.CreateForm)
			forms.GET("/:id", hm.formHandler.GetForm)
			forms.PUT("/:id", hm.formHandler.UpdateForm)
			forms.DELETE("/:id", hm.formHandler.DeleteForm)

			// Response routes
			forms.POST("/:id/submit", hm.responseHandler.SubmitResponse)
			forms.GET("/:id/responses", hm.responseHandler.ListResponses)
			forms.GET("/:id/responses/export", hm.responseHandler.ExportResponses)
			forms.GET("/:id/responses/:responseId", hm.responseHandler.GetResponse)
			forms.DELETE("/:id/responses/:responseId", hm.responseHandler.DeleteResponse)
			forms.POST("/:id/responses/:responseId/rescore", hm.responseHandler.RescoreResponse)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Success: false,
			Message: "Route not found",
		})
	})
}

// CORSMiddleware allows browser calls from the configured origins.
// Requests without an Origin header are not affected.
func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization", "X-Requested-With", "Origin", "Accept", utils.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", utils.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}

// RecoveryMiddleware turns panics into the generic 500 envelope
func RecoveryMiddleware(logger utils.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		utils.GetLoggerFromContext(c, logger).Error("Panic recovered", "panic", recovered)
		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
			Success:   false,
			Message:   "Something went wrong!",
			RequestID: utils.RequestID(c),
		})
	})
}

// ===== HEALTH =====

type HealthHandler struct {
	BaseHandler
	storage Pinger
}

func NewHealthHandler(storage Pinger, logger utils.Logger) *HealthHandler {
	return &HealthHandler{
		BaseHandler: NewBaseHandler(logger),
		storage:     storage,
	}
}

// Health reports liveness and storage reachability
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)

	if h.storage != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.storage.Ping(ctx); err != nil {
			h.LogError(c, err, "Storage ping failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"success":   false,
				"message":   "Database unavailable",
				"timestamp": timestamp,
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "Server is running",
		"timestamp": timestamp,
	})
}
