package handlers

import (
	"github.com/courtscribe/courtscribe/internal/domains/brief"
	"github.com/courtscribe/courtscribe/internal/domains/recording"
)

// Response wrapper types for Swagger documentation

// SuccessResponse represents a generic success response
type SuccessResponse struct {
	Message string `json:"message" example:"Operation completed successfully"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error" example:"Something went wrong"`
	Details string `json:"details,omitempty" example:"Validation error details"`
}

// CreateRecordingResponse represents the response for a new upload
type CreateRecordingResponse struct {
	Message   string                      `json:"message" example:"Recording uploaded successfully"`
	Recording recording.RecordingResponse `json:"recording"`
}

// PaginationInfo represents pagination information
type PaginationInfo struct {
	Total  int64 `json:"total" example:"42"`
	Offset int   `json:"offset" example:"0"`
	Limit  int   `json:"limit" example:"20"`
}

// ListRecordingsResponse represents a page of recordings
type ListRecordingsResponse struct {
	Recordings []recording.RecordingResponse `json:"recordings"`
	Pagination PaginationInfo                `json:"pagination"`
}

// TranscriptResponse represents the assembled transcript of a recording
type TranscriptResponse struct {
	RecordingID string `json:"recordingId"`
	Transcript  string `json:"transcript"`
}

// DiarizationResponse represents the joined diarized text of a recording
type DiarizationResponse struct {
	RecordingID string `json:"recordingId"`
	Diarization string `json:"diarization"`
}

// GenerateBriefResponse represents the response for brief generation
type GenerateBriefResponse struct {
	Message string              `json:"message" example:"Case brief generated successfully"`
	Brief   brief.BriefResponse `json:"brief"`
}
