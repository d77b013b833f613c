package handlers

import (
	"errors"
	"net/http"

	"github.com/courtscribe/courtscribe/internal/domains/brief"
	"github.com/courtscribe/courtscribe/internal/domains/recording"
	"github.com/courtscribe/courtscribe/pkg/Logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// BriefHandler handles case brief HTTP requests
type BriefHandler struct {
	briefService brief.BriefService
	logger       *Logger.Logger
}

// NewBriefHandler creates a new brief handler
func NewBriefHandler(briefService brief.BriefService, logger *Logger.Logger) *BriefHandler {
	return &BriefHandler{
		briefService: briefService,
		logger:       logger,
	}
}

// GenerateBrief handles (re)generating a case brief
// @Summary Generate case brief
// @Description Generate the case brief from a completed recording's transcript; pass force=true to regenerate
// @Tags Briefs
// @Produce json
// @Security BearerAuth
// @Param id path string true "Recording ID"
// @Param force query bool false "Regenerate even if a brief exists"
// @Success 200 {object} GenerateBriefResponse "Case brief"
// @Failure 400 {object} ErrorResponse "Invalid recording ID"
// @Failure 404 {object} ErrorResponse "Recording not found"
// @Failure 409 {object} ErrorResponse "Recording still processing"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /recordings/{id}/brief [post]
func (h *BriefHandler) GenerateBrief(c *gin.Context) {
	recordingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid recording ID"})
		return
	}
	force := c.Query("force") == "true"

	b, err := h.briefService.GenerateBrief(c.Request.Context(), recordingID, force)
	if err != nil {
		switch {
		case errors.Is(err, recording.ErrRecordingNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Recording not found"})
		case errors.Is(err, recording.ErrNotReady):
			c.JSON(http.StatusConflict, ErrorResponse{Error: "Recording still processing"})
		default:
			h.logger.Errorf("generate brief error: %v", err)
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, GenerateBriefResponse{
		Message: "Case brief generated successfully",
		Brief:   b.ToResponse(),
	})
}

// GetBrief handles fetching an existing case brief
// @Summary Get case brief
// @Description Get the stored case brief for a recording
// @Tags Briefs
// @Produce json
// @Security BearerAuth
// @Param id path string true "Recording ID"
// @Success 200 {object} brief.BriefResponse "Case brief"
// @Failure 400 {object} ErrorResponse "Invalid recording ID"
// @Failure 404 {object} ErrorResponse "Brief not found"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /recordings/{id}/brief [get]
func (h *BriefHandler) GetBrief(c *gin.Context) {
	recordingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid recording ID"})
		return
	}

	b, err := h.briefService.GetBrief(c.Request.Context(), recordingID)
	if err != nil {
		if errors.Is(err, brief.ErrBriefNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Brief not found"})
			return
		}
		h.logger.Errorf("get brief error: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, b.ToResponse())
}
