package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"mobile-auth/internal/domain"
	"mobile-auth/internal/service"
	"mobile-auth/internal/token"
)

const bearerPrefix = "Bearer "

type userContextKey struct{}

// UserFromContext returns the user attached by RequireAuth.
func UserFromContext(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(userContextKey{}).(*domain.User)
	return user, ok && user != nil
}

func mustUser(c *gin.Context) *domain.User {
	user, ok := UserFromContext(c.Request.Context())
	if !ok {
		panic("users route reached without RequireAuth")
	}
	return user
}

// RequireAuth rejects requests without a valid bearer token for an existing
// user and attaches that user to the request context.
func (h *Handler) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, bearerPrefix) {
			fail(c, http.StatusUnauthorized, "No token provided. Authorization header must be: Bearer <token>")
			return
		}

		raw := strings.TrimSpace(header[len(bearerPrefix):])
		if raw == "" {
			fail(c, http.StatusUnauthorized, "No token provided")
			return
		}

		claims, err := h.tokens.Verify(raw)
		if err != nil {
			switch {
			case errors.Is(err, token.ErrExpired):
				fail(c, http.StatusUnauthorized, "Token expired")
			case errors.Is(err, token.ErrMalformed):
				fail(c, http.StatusUnauthorized, "Invalid token")
			default:
				h.logger.WithError(err).Error("auth middleware: verify token")
				fail(c, http.StatusInternalServerError, "Authentication error")
			}
			return
		}

		user, err := h.users.GetByID(c.Request.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, service.ErrUserNotFound) {
				fail(c, http.StatusUnauthorized, "User not found")
				return
			}
			h.logger.WithError(err).WithField("user_id", claims.UserID).Error("auth middleware: load user")
			fail(c, http.StatusInternalServerError, "Authentication error")
			return
		}

		ctx := context.WithValue(c.Request.Context(), userContextKey{}, user)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func (h *Handler) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		entry := h.logger.WithFields(logrus.Fields{
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
			"status":    status,
			"latency":   time.Since(start).String(),
			"client_ip": c.ClientIP(),
		})
		switch {
		case status >= http.StatusInternalServerError:
			entry.Error("request")
		case status >= http.StatusBadRequest:
			entry.Warn("request")
		default:
			entry.Info("request")
		}
	}
}

func (h *Handler) recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		h.logger.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"panic":  fmt.Sprint(recovered),
		}).Error("panic recovered")
		fail(c, http.StatusInternalServerError, "Internal server error")
	})
}

func tracingMiddleware() gin.HandlerFunc {
	tracer := otel.Tracer("mobile-auth/http")
	return func(c *gin.Context) {
		ctx := otel.GetTextMapPropagator().Extract(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		ctx, span := tracer.Start(ctx, c.Request.Method+" "+route,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.request.method", c.Request.Method),
				attribute.String("http.route", route),
			),
		)
		defer span.End()

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		status := c.Writer.Status()
		span.SetAttributes(attribute.Int("http.response.status_code", status))
		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	}
}
