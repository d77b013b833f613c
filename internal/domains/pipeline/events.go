package pipeline

import (
	"github.com/google/uuid"
)

// Task type names for the asynq queue. Each persistence-side event maps to
// one typed job; the coordinator consumes them and drives transitions.
const (
	TypeChunkRecording  = "pipeline:chunk_recording"
	TypeTranscribeChunk = "pipeline:transcribe_chunk"
	TypeDiarizeChunk    = "pipeline:diarize_chunk"
	TypeGenerateBrief   = "pipeline:generate_brief"
)

// RecordingPayload triggers chunking of a freshly created recording.
type RecordingPayload struct {
	RecordingID uuid.UUID `json:"recording_id"`
}

// ChunkPayload drives one chunk through a pipeline step.
type ChunkPayload struct {
	ChunkID     uuid.UUID `json:"chunk_id"`
	RecordingID uuid.UUID `json:"recording_id"`
	Index       int       `json:"index"`
}

// BriefPayload asks for a case brief once a recording completes.
type BriefPayload struct {
	RecordingID uuid.UUID `json:"recording_id"`
	Force       bool      `json:"force"`
}
