package recording

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrRecordingNotFound = errors.New("recording not found")
	ErrChunkNotFound     = errors.New("chunk not found")
	ErrSegmentNotFound   = errors.New("diarized segment not found")
	ErrAlreadyChunked    = errors.New("recording already chunked")
	ErrNotReady          = errors.New("recording still processing")
)

// RecordingStatus is the lifecycle state of a whole recording.
type RecordingStatus string

const (
	RecordingPending    RecordingStatus = "pending"
	RecordingChunking   RecordingStatus = "chunking"
	RecordingInProgress RecordingStatus = "in_progress"
	RecordingCompleted  RecordingStatus = "completed"
	RecordingFailed     RecordingStatus = "failed"
)

func (s RecordingStatus) IsValid() bool {
	switch s {
	case RecordingPending, RecordingChunking, RecordingInProgress, RecordingCompleted, RecordingFailed:
		return true
	default:
		return false
	}
}

func (s RecordingStatus) IsTerminal() bool {
	return s == RecordingCompleted || s == RecordingFailed
}

// ChunkStatus moves strictly forward through the chunk state machine;
// failed is absorbing.
type ChunkStatus string

const (
	ChunkPending    ChunkStatus = "pending"
	ChunkProcessing ChunkStatus = "processing"
	ChunkCompleted  ChunkStatus = "completed"
	ChunkDiarized   ChunkStatus = "diarized"
	ChunkFailed     ChunkStatus = "failed"
)

func (s ChunkStatus) IsValid() bool {
	switch s {
	case ChunkPending, ChunkProcessing, ChunkCompleted, ChunkDiarized, ChunkFailed:
		return true
	default:
		return false
	}
}

// InFlight reports whether the chunk still has pipeline work pending.
func (s ChunkStatus) InFlight() bool {
	return s == ChunkPending || s == ChunkProcessing
}

// Recording is the parent unit: one uploaded hearing and its aggregate
// transcript. Mutated only by the coordinator and the chunk manager.
type Recording struct {
	ID             uuid.UUID       `json:"id"`
	CaseName       string          `json:"caseName"`
	CaseNumber     string          `json:"caseNumber"`
	AudioPath      string          `json:"audioPath"`
	TranscriptText string          `json:"transcriptText"`
	Status         RecordingStatus `json:"status"`
	Chunked        bool            `json:"chunked"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// Chunk is one fixed-duration slice of a recording's audio, processed
// independently of its siblings. Index defines reassembly order and is
// never reassigned.
type Chunk struct {
	ID              uuid.UUID   `json:"id"`
	RecordingID     uuid.UUID   `json:"recordingId"`
	Index           int         `json:"index"`
	AudioPath       string      `json:"audioPath"`
	TranscriptText  string      `json:"transcriptText"`
	DiarizationText string      `json:"diarizationText"`
	Status          ChunkStatus `json:"status"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

// DiarizedSegment is the recording-level join of every diarized chunk,
// ordered by chunk index.
type DiarizedSegment struct {
	ID          uuid.UUID `json:"id"`
	RecordingID uuid.UUID `json:"recordingId"`
	Data        string    `json:"data"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NewRecording creates a pending recording for an uploaded audio asset.
func NewRecording(req CreateRecordingRequest, audioPath string) *Recording {
	now := time.Now()
	return &Recording{
		ID:         uuid.New(),
		CaseName:   req.CaseName,
		CaseNumber: req.CaseNumber,
		AudioPath:  audioPath,
		Status:     RecordingPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// NewChunk creates a pending chunk at the given reassembly index.
func NewChunk(recordingID uuid.UUID, index int, audioPath string) Chunk {
	now := time.Now()
	return Chunk{
		ID:          uuid.New(),
		RecordingID: recordingID,
		Index:       index,
		AudioPath:   audioPath,
		Status:      ChunkPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// CreateRecordingRequest carries the upload metadata; the audio itself is
// streamed separately.
type CreateRecordingRequest struct {
	CaseName   string `form:"case_name" binding:"required,max=255"`
	CaseNumber string `form:"case_number" binding:"max=10"`
}

// ListRecordingsRequest filters and paginates recording listings.
type ListRecordingsRequest struct {
	Status *RecordingStatus `form:"status"`
	Offset int              `form:"offset"`
	Limit  int              `form:"limit"`
}

// RecordingResponse is the API shape for a recording.
type RecordingResponse struct {
	ID         uuid.UUID       `json:"id"`
	CaseName   string          `json:"caseName"`
	CaseNumber string          `json:"caseNumber"`
	Status     RecordingStatus `json:"status"`
	Chunked    bool            `json:"chunked"`
	Chunks     []ChunkResponse `json:"chunks,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// ChunkResponse summarizes one chunk for API consumers.
type ChunkResponse struct {
	ID     uuid.UUID   `json:"id"`
	Index  int         `json:"index"`
	Status ChunkStatus `json:"status"`
}

func (r *Recording) ToResponse() RecordingResponse {
	return RecordingResponse{
		ID:         r.ID,
		CaseName:   r.CaseName,
		CaseNumber: r.CaseNumber,
		Status:     r.Status,
		Chunked:    r.Chunked,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

func (c *Chunk) ToResponse() ChunkResponse {
	return ChunkResponse{ID: c.ID, Index: c.Index, Status: c.Status}
}

// RecordingRepository is the persistence boundary for recordings, their
// chunks and the joined diarized segment.
type RecordingRepository interface {
	CreateRecording(ctx context.Context, rec *Recording) error
	GetRecording(ctx context.Context, id uuid.UUID) (*Recording, error)
	ListRecordings(ctx context.Context, filters ListRecordingsRequest) ([]Recording, int64, error)
	UpdateRecordingStatus(ctx context.Context, id uuid.UUID, status RecordingStatus) error

	// ClaimForChunking checks and sets the chunked flag under an exclusive
	// row lock. A second claim returns ErrAlreadyChunked.
	ClaimForChunking(ctx context.Context, id uuid.UUID) error

	CreateChunks(ctx context.Context, chunks []Chunk) error
	GetChunk(ctx context.Context, id uuid.UUID) (*Chunk, error)
	ListChunks(ctx context.Context, recordingID uuid.UUID) ([]Chunk, error)
	UpdateChunkStatus(ctx context.Context, id uuid.UUID, status ChunkStatus) error
	SaveChunkTranscript(ctx context.Context, id uuid.UUID, text string) error
	SaveChunkDiarization(ctx context.Context, id uuid.UUID, text string) error

	// FinalizeRecording applies the Aggregate rule under an exclusive row
	// lock on the recording, making concurrent chunk completions safe.
	FinalizeRecording(ctx context.Context, recordingID uuid.UUID) (*Recording, error)

	GetDiarizedSegment(ctx context.Context, recordingID uuid.UUID) (*DiarizedSegment, error)
	GetTranscript(ctx context.Context, recordingID uuid.UUID) (string, error)
}
