package handlers

import (
	"errors"
	"net/http"

	"github.com/courtscribe/courtscribe/internal/domains/recording"
	"github.com/courtscribe/courtscribe/pkg/Logger"
	"github.com/gin-gonic/gin"
)

// RecordingHandler handles recording-related HTTP requests
type RecordingHandler struct {
	recordingService recording.RecordingService
	logger           *Logger.Logger
}

// NewRecordingHandler creates a new recording handler
func NewRecordingHandler(recordingService recording.RecordingService, logger *Logger.Logger) *RecordingHandler {
	return &RecordingHandler{
		recordingService: recordingService,
		logger:           logger,
	}
}

// CreateRecording handles audio upload and starts the processing pipeline
// @Summary Upload a hearing recording
// @Description Upload a WAV recording with its case metadata; chunking and transcription start in the background
// @Tags Recordings
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param case_name formData string true "Case name"
// @Param case_number formData string false "Case number"
// @Param audio formData file true "WAV audio file"
// @Success 201 {object} CreateRecordingResponse "Recording created"
// @Failure 400 {object} ErrorResponse "Invalid request data"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /recordings [post]
func (h *RecordingHandler) CreateRecording(c *gin.Context) {
	var req recording.CreateRecordingRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request data",
			Details: err.Error(),
		})
		return
	}

	fileHeader, err := c.FormFile("audio")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Audio file is required"})
		return
	}
	audio, err := fileHeader.Open()
	if err != nil {
		h.logger.Errorf("open uploaded audio: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
		return
	}
	defer audio.Close()

	rec, err := h.recordingService.CreateRecording(c.Request.Context(), req, audio, fileHeader.Filename)
	if err != nil {
		h.logger.Errorf("create recording error: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
		return
	}

	c.JSON(http.StatusCreated, CreateRecordingResponse{
		Message:   "Recording uploaded successfully",
		Recording: *rec,
	})
}

// GetRecording handles getting a recording with its chunk progress
// @Summary Get recording by ID
// @Description Get a recording with per-chunk pipeline status
// @Tags Recordings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Recording ID"
// @Success 200 {object} recording.RecordingResponse "Recording data"
// @Failure 404 {object} ErrorResponse "Recording not found"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /recordings/{id} [get]
func (h *RecordingHandler) GetRecording(c *gin.Context) {
	rec, err := h.recordingService.GetRecording(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, recording.ErrRecordingNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Recording not found"})
			return
		}
		h.logger.Errorf("get recording error: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

// ListRecordings handles listing recordings
// @Summary List recordings
// @Description List recordings, optionally filtered by status
// @Tags Recordings
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status"
// @Param offset query int false "Pagination offset"
// @Param limit query int false "Page size"
// @Success 200 {object} ListRecordingsResponse "Page of recordings"
// @Failure 400 {object} ErrorResponse "Invalid request data"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /recordings [get]
func (h *RecordingHandler) ListRecordings(c *gin.Context) {
	var filters recording.ListRecordingsRequest
	if err := c.ShouldBindQuery(&filters); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request data",
			Details: err.Error(),
		})
		return
	}
	if filters.Status != nil && !filters.Status.IsValid() {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid status filter"})
		return
	}

	recordings, total, err := h.recordingService.ListRecordings(c.Request.Context(), filters)
	if err != nil {
		h.logger.Errorf("list recordings error: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, ListRecordingsResponse{
		Recordings: recordings,
		Pagination: PaginationInfo{Total: total, Offset: filters.Offset, Limit: filters.Limit},
	})
}

// GetTranscript handles fetching the assembled transcript
// @Summary Get recording transcript
// @Description Get the index-ordered transcript once the recording has finished processing
// @Tags Recordings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Recording ID"
// @Success 200 {object} TranscriptResponse "Transcript text"
// @Failure 404 {object} ErrorResponse "Recording not found"
// @Failure 409 {object} ErrorResponse "Recording still processing"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /recordings/{id}/transcript [get]
func (h *RecordingHandler) GetTranscript(c *gin.Context) {
	id := c.Param("id")
	transcript, err := h.recordingService.GetTranscript(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, recording.ErrRecordingNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Recording not found"})
		case errors.Is(err, recording.ErrNotReady):
			c.JSON(http.StatusConflict, ErrorResponse{Error: "Recording still processing"})
		default:
			h.logger.Errorf("get transcript error: %v", err)
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
		}
		return
	}
	c.JSON(http.StatusOK, TranscriptResponse{RecordingID: id, Transcript: transcript})
}

// GetDiarization handles fetching the joined diarized text
// @Summary Get recording diarization
// @Description Get the speaker-attributed text joined across all diarized chunks
// @Tags Recordings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Recording ID"
// @Success 200 {object} DiarizationResponse "Diarized text"
// @Failure 404 {object} ErrorResponse "Diarization not found"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /recordings/{id}/diarization [get]
func (h *RecordingHandler) GetDiarization(c *gin.Context) {
	id := c.Param("id")
	segment, err := h.recordingService.GetDiarizedSegment(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, recording.ErrRecordingNotFound), errors.Is(err, recording.ErrSegmentNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Diarization not found"})
		default:
			h.logger.Errorf("get diarization error: %v", err)
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
		}
		return
	}
	c.JSON(http.StatusOK, DiarizationResponse{RecordingID: id, Diarization: segment.Data})
}
