// Package http provides HTTP handlers for source management and key rotation.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allisson/relay/internal/httputil"
	"github.com/allisson/relay/internal/source/http/dto"
	sourceUseCase "github.com/allisson/relay/internal/source/usecase"
	customValidation "github.com/allisson/relay/internal/validation"
)

// SourceHandler handles HTTP requests for source management.
type SourceHandler struct {
	sourceUseCase sourceUseCase.SourceUseCase
	logger        *slog.Logger
}

// NewSourceHandler creates a new source handler.
func NewSourceHandler(sourceUseCase sourceUseCase.SourceUseCase, logger *slog.Logger) *SourceHandler {
	return &SourceHandler{
		sourceUseCase: sourceUseCase,
		logger:        logger,
	}
}

// CreateHandler registers a new source without keys.
// POST /v1/sources - Returns 201 Created.
func (h *SourceHandler) CreateHandler(c *gin.Context) {
	var req dto.CreateSourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	source, err := h.sourceUseCase.Create(c.Request.Context(), req.ToInput())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapSourceToResponse(source))
}

// GetHandler retrieves a source by ID.
// GET /v1/sources/:id - Returns 200 OK without keys.
func (h *SourceHandler) GetHandler(c *gin.Context) {
	sourceID, err := httputil.ParseUUIDParam(c, "id")
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	source, err := h.sourceUseCase.Get(c.Request.Context(), sourceID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapSourceToResponse(source))
}

// UpdateHandler changes the name and flags of a source.
// PUT /v1/sources/:id - Returns 200 OK.
func (h *SourceHandler) UpdateHandler(c *gin.Context) {
	sourceID, err := httputil.ParseUUIDParam(c, "id")
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	var req dto.UpdateSourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	source, err := h.sourceUseCase.Update(c.Request.Context(), sourceID, req.ToInput())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapSourceToResponse(source))
}

// ListHandler lists sources with offset/limit pagination.
// GET /v1/sources?offset=0&limit=50 - Returns 200 OK.
func (h *SourceHandler) ListHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	sources, err := h.sourceUseCase.List(c.Request.Context(), offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapSourcesToListResponse(sources))
}

// DisableHandler soft deletes a source.
// DELETE /v1/sources/:id - Returns 204 No Content.
func (h *SourceHandler) DisableHandler(c *gin.Context) {
	sourceID, err := httputil.ParseUUIDParam(c, "id")
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := h.sourceUseCase.Disable(c.Request.Context(), sourceID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// SetupKeysHandler issues two fresh keys.
// POST /v1/sources/:id/keys/setup - Returns 200 OK with both plaintext keys.
func (h *SourceHandler) SetupKeysHandler(c *gin.Context) {
	sourceID, err := httputil.ParseUUIDParam(c, "id")
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	source, err := h.sourceUseCase.SetupKeys(c.Request.Context(), sourceID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	h.logger.Info("source keys set up", slog.String("source_id", source.ID.String()))
	c.JSON(http.StatusOK, dto.MapSourceToKeysResponse(source))
}

// RotateKeysHandler demotes the primary key and issues a new one.
// POST /v1/sources/:id/keys/rotate - Returns 200 OK with both plaintext keys.
func (h *SourceHandler) RotateKeysHandler(c *gin.Context) {
	sourceID, err := httputil.ParseUUIDParam(c, "id")
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	source, err := h.sourceUseCase.RotateKeys(c.Request.Context(), sourceID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	h.logger.Info("source keys rotated", slog.String("source_id", source.ID.String()))
	c.JSON(http.StatusOK, dto.MapSourceToKeysResponse(source))
}
