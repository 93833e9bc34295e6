package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/imaginify/backend/internal/logger"
	"github.com/imaginify/backend/middleware"
)

// GetUser returns the user record for the given provider id.
// GET /api/v1/users/:id
func (h *Handler) GetUser(c *gin.Context) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "http.get_user", trace.WithAttributes(
		attribute.String("layer", "web"),
		attribute.String("method", c.Request.Method),
		attribute.String("path", c.Request.URL.Path),
	))
	defer span.End()

	log := logger.FromContext(ctx)

	user, err := h.users.GetUserByID(ctx, c.Param("id"))
	if err != nil {
		span.RecordError(err)
		log.Warn().Err(err).Msg("User lookup failed")
		h.respondUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

type adjustCreditsRequest struct {
	// Pointer so presence is checked without rejecting a zero delta.
	Delta *int64 `json:"delta" binding:"required"`
}

// AdjustCredits applies a billing delta to the user's credit balance.
// POST /api/v1/users/:id/credits
func (h *Handler) AdjustCredits(c *gin.Context) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "http.adjust_credits", trace.WithAttributes(
		attribute.String("layer", "web"),
		attribute.String("method", c.Request.Method),
		attribute.String("path", c.Request.URL.Path),
	))
	defer span.End()

	log := logger.FromContext(ctx)

	var req adjustCreditsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.SetAttributes(attribute.Bool("request.valid", false))
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.AdjustCredits(ctx, c.Param("id"), *req.Delta)
	if err != nil {
		span.RecordError(err)
		log.Error().Err(err).Msg("Credit adjustment failed")
		h.respondUserError(c, err)
		return
	}

	log.Info().
		Str("clerk_id", user.ClerkID).
		Int64("delta", *req.Delta).
		Int64("balance", user.CreditBalance).
		Msg("Credits adjusted")
	c.JSON(http.StatusOK, user)
}
