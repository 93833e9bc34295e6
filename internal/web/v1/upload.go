package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/imaginify/backend/internal/logger"
	"github.com/imaginify/backend/middleware"
)

type uploadRequest struct {
	// Path is a data: URI or a remote URL; the media host fetches or
	// decodes it, the backend never buffers image bytes itself.
	Path string `json:"path"`
}

// Upload proxies an image upload to the media host.
// POST /api/upload
func (h *Handler) Upload(c *gin.Context) {
	ctx, span := middleware.StartSpan(c.Request.Context(), "http.upload", trace.WithAttributes(
		attribute.String("layer", "web"),
		attribute.String("method", c.Request.Method),
		attribute.String("path", c.Request.URL.Path),
	))
	defer span.End()

	log := logger.FromContext(ctx)

	var req uploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.SetAttributes(attribute.Bool("request.valid", false))
		span.RecordError(err)
		log.Warn().Err(err).Msg("Invalid upload request")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Path == "" {
		span.SetAttributes(attribute.Bool("request.valid", false))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Path is required"})
		return
	}

	span.SetAttributes(attribute.Bool("request.valid", true))

	asset, err := h.media.Upload(ctx, req.Path)
	if err != nil {
		span.RecordError(err)
		log.Error().Err(err).Msg("Media upload failed")
		// Surface the upstream message for diagnostics.
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	log.Info().Str("public_id", asset.PublicID).Msg("Media upload successful")
	c.JSON(http.StatusOK, asset)
}
