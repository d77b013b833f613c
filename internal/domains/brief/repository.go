package brief

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrBriefNotFound  = errors.New("case brief not found")
	ErrEmptyResponse  = errors.New("model returned no usable content")
	ErrInvalidPayload = errors.New("model response is not valid JSON")
)

// CaseBrief is the structured summary generated from a completed
// recording's transcript. Fields holds the raw extracted key-value pairs,
// BriefText the formatted ruling document.
type CaseBrief struct {
	ID          uuid.UUID         `json:"id"`
	RecordingID uuid.UUID         `json:"recordingId"`
	Fields      map[string]string `json:"fields"`
	BriefText   string            `json:"briefText"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// BriefResponse is the API shape for a case brief.
type BriefResponse struct {
	ID          uuid.UUID `json:"id"`
	RecordingID uuid.UUID `json:"recordingId"`
	BriefText   string    `json:"briefText"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (b *CaseBrief) ToResponse() BriefResponse {
	return BriefResponse{
		ID:          b.ID,
		RecordingID: b.RecordingID,
		BriefText:   b.BriefText,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

// BriefRepository persists one brief per recording.
type BriefRepository interface {
	Upsert(ctx context.Context, b *CaseBrief) error
	GetByRecordingID(ctx context.Context, recordingID uuid.UUID) (*CaseBrief, error)
}
