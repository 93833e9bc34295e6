package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/imaginify/backend/internal/core/domain"
	"github.com/imaginify/backend/internal/logger"
	logicv1 "github.com/imaginify/backend/internal/logic/v1"
	"github.com/imaginify/backend/middleware"
)

// Handler groups HTTP handlers for the backend API.
// Dependencies are injected via the constructor — no global state.
type Handler struct {
	users    *logicv1.UserService
	media    domain.MediaStore
	verifier Verifier
}

// NewHandler creates a new Handler with the given collaborators.
func NewHandler(users *logicv1.UserService, media domain.MediaStore, verifier Verifier) *Handler {
	return &Handler{users: users, media: media, verifier: verifier}
}

// RegisterRoutes registers the user read and credit routes on the given
// router group. The webhook and upload endpoints live outside the
// versioned group and are registered separately in main.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/users/:id", h.GetUser)
	rg.POST("/users/:id/credits", h.AdjustCredits)
}

// Webhook handles signed user-lifecycle events from the identity provider.
// POST /api/webhooks/clerk
func (h *Handler) Webhook(c *gin.Context) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "http.webhook", trace.WithAttributes(
		attribute.String("layer", "web"),
		attribute.String("method", c.Request.Method),
		attribute.String("path", c.Request.URL.Path),
	))
	defer span.End()

	log := logger.FromContext(ctx)

	// The three correlation headers are required before the body is read.
	svixID := c.GetHeader("svix-id")
	svixTimestamp := c.GetHeader("svix-timestamp")
	svixSignature := c.GetHeader("svix-signature")
	if svixID == "" || svixTimestamp == "" || svixSignature == "" {
		span.SetAttributes(attribute.Bool("webhook.headers_present", false))
		log.Warn().Msg("Webhook rejected: missing svix headers")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing svix headers"})
		return
	}

	body, err := c.GetRawData()
	if err != nil {
		span.RecordError(err)
		log.Error().Err(err).Msg("Failed to read webhook body")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	// Verify the raw bytes exactly as received; a single flipped byte
	// must fail.
	if err := h.verifier.Verify(body, c.Request.Header); err != nil {
		span.SetAttributes(attribute.Bool("webhook.signature_valid", false))
		span.RecordError(err)
		log.Warn().Err(err).Str("svix_id", svixID).Msg("Webhook signature verification failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid webhook signature"})
		return
	}
	span.SetAttributes(attribute.Bool("webhook.signature_valid", true))

	event, err := domain.ParseEvent(body)
	if err != nil {
		span.RecordError(err)
		log.Warn().Err(err).Str("svix_id", svixID).Msg("Webhook rejected: bad event")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	switch ev := event.(type) {
	case domain.UserCreatedEvent:
		span.SetAttributes(attribute.String("webhook.event_type", "user.created"))

		user, err := h.users.CreateUser(ctx, ev.CreateParams())
		if err != nil {
			span.RecordError(err)
			log.Error().Err(err).Str("clerk_id", ev.ID).Msg("Failed to create user")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
			return
		}

		log.Info().Str("clerk_id", user.ClerkID).Msg("User created from webhook")
		c.JSON(http.StatusOK, gin.H{"message": "OK", "user": user})

	case domain.UserUpdatedEvent:
		span.SetAttributes(attribute.String("webhook.event_type", "user.updated"))

		user, err := h.users.UpdateUser(ctx, ev.ID, ev.UpdateParams())
		if err != nil {
			span.RecordError(err)
			log.Error().Err(err).Str("clerk_id", ev.ID).Msg("Failed to update user")
			h.respondUserError(c, err)
			return
		}

		log.Info().Str("clerk_id", user.ClerkID).Msg("User updated from webhook")
		c.JSON(http.StatusOK, gin.H{"message": "OK", "user": user})

	case domain.UserDeletedEvent:
		span.SetAttributes(attribute.String("webhook.event_type", "user.deleted"))

		user, err := h.users.DeleteUser(ctx, ev.ID)
		if err != nil {
			span.RecordError(err)
			log.Error().Err(err).Str("clerk_id", ev.ID).Msg("Failed to delete user")
			h.respondUserError(c, err)
			return
		}

		log.Info().Str("clerk_id", user.ClerkID).Msg("User deleted from webhook")
		c.JSON(http.StatusOK, gin.H{"message": "OK", "user": user})
	}
}

// respondUserError maps user-sync errors to HTTP responses.
func (h *Handler) respondUserError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, logicv1.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
