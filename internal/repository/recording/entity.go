package recording

import (
	"time"

	"github.com/courtscribe/courtscribe/internal/domains/recording"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RecordingEntity is the database row for a recording.
type RecordingEntity struct {
	ID             uuid.UUID `gorm:"primaryKey;type:char(36);not null"`
	CaseName       string    `gorm:"column:case_name;type:varchar(255);not null"`
	CaseNumber     string    `gorm:"column:case_number;type:varchar(10)"`
	AudioPath      string    `gorm:"column:audio_path;type:varchar(255);not null"`
	TranscriptText string    `gorm:"column:transcript_text;type:longtext"`
	Status         string    `gorm:"column:status;type:varchar(20);not null;index"`
	Chunked        bool      `gorm:"column:chunked;not null;default:false"`
	CreatedAt      time.Time `gorm:"autoCreateTime(3)"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime(3)"`
}

func (RecordingEntity) TableName() string {
	return "recordings"
}

func (r *RecordingEntity) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

func (r *RecordingEntity) ToDomain() *recording.Recording {
	return &recording.Recording{
		ID:             r.ID,
		CaseName:       r.CaseName,
		CaseNumber:     r.CaseNumber,
		AudioPath:      r.AudioPath,
		TranscriptText: r.TranscriptText,
		Status:         recording.RecordingStatus(r.Status),
		Chunked:        r.Chunked,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

func (r *RecordingEntity) FromDomain(rec *recording.Recording) {
	r.ID = rec.ID
	r.CaseName = rec.CaseName
	r.CaseNumber = rec.CaseNumber
	r.AudioPath = rec.AudioPath
	r.TranscriptText = rec.TranscriptText
	r.Status = string(rec.Status)
	r.Chunked = rec.Chunked
	r.CreatedAt = rec.CreatedAt
	r.UpdatedAt = rec.UpdatedAt
}

// ChunkEntity is the database row for one audio chunk. The recording and
// chunk index pair is unique so a chunking replay can never duplicate rows.
type ChunkEntity struct {
	ID              uuid.UUID `gorm:"primaryKey;type:char(36);not null"`
	RecordingID     uuid.UUID `gorm:"column:recording_id;type:char(36);not null;uniqueIndex:idx_recording_chunk"`
	ChunkIndex      int       `gorm:"column:chunk_index;not null;uniqueIndex:idx_recording_chunk"`
	AudioPath       string    `gorm:"column:audio_path;type:varchar(255);not null"`
	TranscriptText  string    `gorm:"column:transcript_text;type:longtext"`
	DiarizationText string    `gorm:"column:diarization_text;type:longtext"`
	Status          string    `gorm:"column:status;type:varchar(20);not null;index"`
	CreatedAt       time.Time `gorm:"autoCreateTime(3)"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime(3)"`
}

func (ChunkEntity) TableName() string {
	return "audio_chunks"
}

func (c *ChunkEntity) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (c *ChunkEntity) ToDomain() *recording.Chunk {
	return &recording.Chunk{
		ID:              c.ID,
		RecordingID:     c.RecordingID,
		Index:           c.ChunkIndex,
		AudioPath:       c.AudioPath,
		TranscriptText:  c.TranscriptText,
		DiarizationText: c.DiarizationText,
		Status:          recording.ChunkStatus(c.Status),
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

func (c *ChunkEntity) FromDomain(chunk *recording.Chunk) {
	c.ID = chunk.ID
	c.RecordingID = chunk.RecordingID
	c.ChunkIndex = chunk.Index
	c.AudioPath = chunk.AudioPath
	c.TranscriptText = chunk.TranscriptText
	c.DiarizationText = chunk.DiarizationText
	c.Status = string(chunk.Status)
	c.CreatedAt = chunk.CreatedAt
	c.UpdatedAt = chunk.UpdatedAt
}

// DiarizedSegmentEntity stores the recording-level join of diarized chunk
// text, one row per recording.
type DiarizedSegmentEntity struct {
	ID          uuid.UUID `gorm:"primaryKey;type:char(36);not null"`
	RecordingID uuid.UUID `gorm:"column:recording_id;type:char(36);not null;uniqueIndex"`
	Data        string    `gorm:"column:data;type:longtext"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime(3)"`
}

func (DiarizedSegmentEntity) TableName() string {
	return "diarized_segments"
}

func (d *DiarizedSegmentEntity) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

func (d *DiarizedSegmentEntity) ToDomain() *recording.DiarizedSegment {
	return &recording.DiarizedSegment{
		ID:          d.ID,
		RecordingID: d.RecordingID,
		Data:        d.Data,
		UpdatedAt:   d.UpdatedAt,
	}
}
