package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"mobile-auth/internal/service"
	"mobile-auth/internal/token"
)

// TokenCodec issues and verifies bearer tokens.
type TokenCodec interface {
	Issue(userID, email string) (string, error)
	Verify(raw string) (*token.Claims, error)
}

// Handler wires HTTP routes to domain services.
type Handler struct {
	users       service.UserService
	tokens      TokenCodec
	logger      logrus.FieldLogger
	allowOrigin string
}

func NewHandler(users service.UserService, tokens TokenCodec, logger logrus.FieldLogger, allowOrigin string) *Handler {
	if allowOrigin == "" {
		allowOrigin = "*"
	}
	return &Handler{
		users:       users,
		tokens:      tokens,
		logger:      logger,
		allowOrigin: allowOrigin,
	}
}

// NewRouter builds a gin engine with the standard middleware chain and all routes.
func NewRouter(h *Handler) *gin.Engine {
	router := gin.New()
	router.Use(h.recovery(), tracingMiddleware(), h.requestLogger())
	h.RegisterRoutes(router)
	return router
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware(h.allowOrigin))

	router.GET("/health", h.health)

	auth := router.Group("/auth")
	{
		auth.POST("/register", h.register)
		auth.POST("/login", h.login)
		auth.POST("/logout", h.logout)
	}

	users := router.Group("/users", h.RequireAuth())
	{
		users.GET("/me", h.getProfile)
		users.PUT("/me", h.updateProfile)
		users.PATCH("/password", h.changePassword)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Route not found"})
	})
}

func corsMiddleware(allowOrigin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", allowOrigin)
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func (h *Handler) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.users.Ping(ctx); err != nil {
		h.logger.WithError(err).Warn("health check: store unavailable")
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "message": "Database unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "status": "ok"})
}
