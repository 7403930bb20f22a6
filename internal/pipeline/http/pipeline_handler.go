// Package http provides HTTP handlers for the Pipeline Registry.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allisson/relay/internal/httputil"
	pipelineDomain "github.com/allisson/relay/internal/pipeline/domain"
	"github.com/allisson/relay/internal/pipeline/http/dto"
	pipelineUseCase "github.com/allisson/relay/internal/pipeline/usecase"
	customValidation "github.com/allisson/relay/internal/validation"
)

const maxDefinitionsBodyBytes = 1 << 20

// PipelineHandler handles HTTP requests for pipeline management.
type PipelineHandler struct {
	pipelineUseCase pipelineUseCase.PipelineUseCase
	logger          *slog.Logger
}

// NewPipelineHandler creates a new pipeline handler.
func NewPipelineHandler(pipelineUseCase pipelineUseCase.PipelineUseCase, logger *slog.Logger) *PipelineHandler {
	return &PipelineHandler{
		pipelineUseCase: pipelineUseCase,
		logger:          logger,
	}
}

// CreateHandler adds a pipeline to a source.
// POST /v1/pipelines - Returns 201 Created.
func (h *PipelineHandler) CreateHandler(c *gin.Context) {
	var req dto.CreatePipelineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	pipeline, err := h.pipelineUseCase.Create(c.Request.Context(), req.ToInput())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapPipelineToResponse(pipeline))
}

// GetHandler retrieves a pipeline by ID.
// GET /v1/pipelines/:id - Returns 200 OK.
func (h *PipelineHandler) GetHandler(c *gin.Context) {
	pipelineID, err := httputil.ParseUUIDParam(c, "id")
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	pipeline, err := h.pipelineUseCase.Get(c.Request.Context(), pipelineID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapPipelineToResponse(pipeline))
}

// UpdateHandler changes the name, flag and config of a pipeline.
// PUT /v1/pipelines/:id - Returns 200 OK.
func (h *PipelineHandler) UpdateHandler(c *gin.Context) {
	pipelineID, err := httputil.ParseUUIDParam(c, "id")
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	var req dto.UpdatePipelineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	pipeline, err := h.pipelineUseCase.Update(c.Request.Context(), pipelineID, req.ToInput())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapPipelineToResponse(pipeline))
}

// ListHandler lists pipelines, optionally for a single source.
// GET /v1/pipelines?source_id=&offset=0&limit=50 - Returns 200 OK.
func (h *PipelineHandler) ListHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	sourceID, err := httputil.ParseOptionalUUIDQuery(c, "source_id")
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	pipelines, err := h.pipelineUseCase.List(c.Request.Context(), pipelineDomain.ListFilter{
		SourceID: sourceID,
		Offset:   offset,
		Limit:    limit,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapPipelinesToListResponse(pipelines))
}

// ListActiveHandler returns the pipelines an event from the source would fan out to.
// GET /v1/sources/:id/pipelines/active - Returns 200 OK.
func (h *PipelineHandler) ListActiveHandler(c *gin.Context) {
	sourceID, err := httputil.ParseUUIDParam(c, "id")
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	pipelines, err := h.pipelineUseCase.ListActivePipelines(c.Request.Context(), sourceID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapPipelinesToListResponse(pipelines))
}

// DeactivateHandler clears the active flag of a pipeline.
// POST /v1/pipelines/:id/deactivate - Returns 204 No Content.
func (h *PipelineHandler) DeactivateHandler(c *gin.Context) {
	pipelineID, err := httputil.ParseUUIDParam(c, "id")
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	if err := h.pipelineUseCase.Deactivate(c.Request.Context(), pipelineID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// ImportHandler creates or updates pipelines from a definitions document.
// The body is YAML; JSON documents are accepted as well.
// POST /v1/pipelines/import - Returns 200 OK with created/updated counts.
func (h *PipelineHandler) ImportHandler(c *gin.Context) {
	body, err := httputil.ReadLimitedBody(c, maxDefinitionsBodyBytes)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	definitions, err := pipelineDomain.ParseDefinitions(body)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	result, err := h.pipelineUseCase.Import(c.Request.Context(), definitions)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	h.logger.Info("pipelines imported",
		slog.Int("created", result.Created),
		slog.Int("updated", result.Updated))

	c.JSON(http.StatusOK, result)
}
