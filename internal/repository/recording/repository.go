package recording

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/courtscribe/courtscribe/internal/domains/recording"
	"github.com/courtscribe/courtscribe/pkg/Logger"
	"github.com/go-redis/redis"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StatusChannel is the redis pub/sub channel carrying StatusEvent
// payloads for live status streaming.
const StatusChannel = "recordings:status"

const transcriptCacheTTL = time.Hour

// StatusEvent is published whenever a recording or chunk changes state.
type StatusEvent struct {
	RecordingID uuid.UUID `json:"recordingId"`
	ChunkIndex  *int      `json:"chunkIndex,omitempty"`
	Status      string    `json:"status"`
}

// GormRecordingRepo persists recordings in MySQL and mirrors transcripts
// and status events through redis. The cache client is optional; with a
// nil client the repo degrades to database-only.
type GormRecordingRepo struct {
	db     *gorm.DB
	cache  *redis.Client
	logger *Logger.Logger
}

func NewGormRecordingRepo(db *gorm.DB, cache *redis.Client, logger *Logger.Logger) recording.RecordingRepository {
	return &GormRecordingRepo{db: db, cache: cache, logger: logger}
}

func transcriptCacheKey(recordingID uuid.UUID) string {
	return fmt.Sprintf("recordings:transcript:%s", recordingID)
}

func (g *GormRecordingRepo) publish(event StatusEvent) {
	if g.cache == nil {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	if err := g.cache.Publish(StatusChannel, payload).Err(); err != nil {
		g.logger.Warnf("status publish failed for recording %s: %v", event.RecordingID, err)
	}
}

// CreateRecording implements recording.RecordingRepository
func (g *GormRecordingRepo) CreateRecording(ctx context.Context, rec *recording.Recording) error {
	entity := &RecordingEntity{}
	entity.FromDomain(rec)
	if err := g.db.WithContext(ctx).Create(entity).Error; err != nil {
		return fmt.Errorf("failed to create recording: %w", err)
	}
	*rec = *entity.ToDomain()
	g.publish(StatusEvent{RecordingID: rec.ID, Status: string(rec.Status)})
	return nil
}

// GetRecording implements recording.RecordingRepository
func (g *GormRecordingRepo) GetRecording(ctx context.Context, id uuid.UUID) (*recording.Recording, error) {
	var entity RecordingEntity
	if err := g.db.WithContext(ctx).Where("id = ?", id).First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, recording.ErrRecordingNotFound
		}
		return nil, fmt.Errorf("failed to get recording: %w", err)
	}
	return entity.ToDomain(), nil
}

// ListRecordings implements recording.RecordingRepository
func (g *GormRecordingRepo) ListRecordings(ctx context.Context, filters recording.ListRecordingsRequest) ([]recording.Recording, int64, error) {
	var entities []RecordingEntity
	var total int64

	query := g.db.WithContext(ctx).Model(&RecordingEntity{})
	if filters.Status != nil {
		query = query.Where("status = ?", string(*filters.Status))
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count recordings: %w", err)
	}

	query = query.Order("created_at DESC")
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	if err := query.Find(&entities).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list recordings: %w", err)
	}

	recordings := make([]recording.Recording, len(entities))
	for i, entity := range entities {
		recordings[i] = *entity.ToDomain()
	}
	return recordings, total, nil
}

// UpdateRecordingStatus implements recording.RecordingRepository
func (g *GormRecordingRepo) UpdateRecordingStatus(ctx context.Context, id uuid.UUID, status recording.RecordingStatus) error {
	result := g.db.WithContext(ctx).Model(&RecordingEntity{}).Where("id = ?", id).Update("status", string(status))
	if result.Error != nil {
		return fmt.Errorf("failed to update recording status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return recording.ErrRecordingNotFound
	}
	g.publish(StatusEvent{RecordingID: id, Status: string(status)})
	return nil
}

// ClaimForChunking implements recording.RecordingRepository. The chunked
// flag is checked and set under FOR UPDATE so concurrent deliveries of the
// same chunking job cannot both pass.
func (g *GormRecordingRepo) ClaimForChunking(ctx context.Context, id uuid.UUID) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var entity RecordingEntity
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).First(&entity).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return recording.ErrRecordingNotFound
			}
			return fmt.Errorf("failed to lock recording: %w", err)
		}
		if entity.Chunked {
			return recording.ErrAlreadyChunked
		}
		if err := tx.Model(&entity).Update("chunked", true).Error; err != nil {
			return fmt.Errorf("failed to mark recording chunked: %w", err)
		}
		return nil
	})
}

// CreateChunks implements recording.RecordingRepository
func (g *GormRecordingRepo) CreateChunks(ctx context.Context, chunks []recording.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	entities := make([]ChunkEntity, len(chunks))
	for i := range chunks {
		entities[i].FromDomain(&chunks[i])
	}
	if err := g.db.WithContext(ctx).Create(&entities).Error; err != nil {
		return fmt.Errorf("failed to create chunks: %w", err)
	}
	return nil
}

// GetChunk implements recording.RecordingRepository
func (g *GormRecordingRepo) GetChunk(ctx context.Context, id uuid.UUID) (*recording.Chunk, error) {
	var entity ChunkEntity
	if err := g.db.WithContext(ctx).Where("id = ?", id).First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, recording.ErrChunkNotFound
		}
		return nil, fmt.Errorf("failed to get chunk: %w", err)
	}
	return entity.ToDomain(), nil
}

// ListChunks implements recording.RecordingRepository
func (g *GormRecordingRepo) ListChunks(ctx context.Context, recordingID uuid.UUID) ([]recording.Chunk, error) {
	var entities []ChunkEntity
	if err := g.db.WithContext(ctx).
		Where("recording_id = ?", recordingID).
		Order("chunk_index ASC").
		Find(&entities).Error; err != nil {
		return nil, fmt.Errorf("failed to list chunks: %w", err)
	}
	chunks := make([]recording.Chunk, len(entities))
	for i, entity := range entities {
		chunks[i] = *entity.ToDomain()
	}
	return chunks, nil
}

// UpdateChunkStatus implements recording.RecordingRepository
func (g *GormRecordingRepo) UpdateChunkStatus(ctx context.Context, id uuid.UUID, status recording.ChunkStatus) error {
	return g.updateChunk(ctx, id, map[string]interface{}{"status": string(status)})
}

// SaveChunkTranscript implements recording.RecordingRepository
func (g *GormRecordingRepo) SaveChunkTranscript(ctx context.Context, id uuid.UUID, text string) error {
	return g.updateChunk(ctx, id, map[string]interface{}{
		"transcript_text": text,
		"status":          string(recording.ChunkCompleted),
	})
}

// SaveChunkDiarization implements recording.RecordingRepository
func (g *GormRecordingRepo) SaveChunkDiarization(ctx context.Context, id uuid.UUID, text string) error {
	return g.updateChunk(ctx, id, map[string]interface{}{
		"diarization_text": text,
		"status":           string(recording.ChunkDiarized),
	})
}

func (g *GormRecordingRepo) updateChunk(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	var entity ChunkEntity
	if err := g.db.WithContext(ctx).Where("id = ?", id).First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return recording.ErrChunkNotFound
		}
		return fmt.Errorf("failed to get chunk for update: %w", err)
	}
	if err := g.db.WithContext(ctx).Model(&entity).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update chunk: %w", err)
	}
	if status, ok := updates["status"].(string); ok {
		index := entity.ChunkIndex
		g.publish(StatusEvent{RecordingID: entity.RecordingID, ChunkIndex: &index, Status: status})
	}
	return nil
}

// FinalizeRecording implements recording.RecordingRepository. The
// recording row is locked FOR UPDATE while the aggregation rule runs, so
// two chunk workers finishing at once serialize here and both observe the
// full chunk set.
func (g *GormRecordingRepo) FinalizeRecording(ctx context.Context, recordingID uuid.UUID) (*recording.Recording, error) {
	var result *recording.Recording

	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var entity RecordingEntity
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", recordingID).First(&entity).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return recording.ErrRecordingNotFound
			}
			return fmt.Errorf("failed to lock recording: %w", err)
		}

		var chunkEntities []ChunkEntity
		if err := tx.Where("recording_id = ?", recordingID).
			Order("chunk_index ASC").
			Find(&chunkEntities).Error; err != nil {
			return fmt.Errorf("failed to load chunks: %w", err)
		}
		chunks := make([]recording.Chunk, len(chunkEntities))
		for i, ce := range chunkEntities {
			chunks[i] = *ce.ToDomain()
		}

		agg := recording.Aggregate(chunks)
		if !agg.Done {
			result = entity.ToDomain()
			return nil
		}

		if err := tx.Model(&entity).Updates(map[string]interface{}{
			"status":          string(agg.Status),
			"transcript_text": agg.Transcript,
		}).Error; err != nil {
			return fmt.Errorf("failed to finalize recording: %w", err)
		}

		segment := DiarizedSegmentEntity{RecordingID: recordingID, Data: agg.Diarized}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "recording_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
		}).Create(&segment).Error; err != nil {
			return fmt.Errorf("failed to save diarized segment: %w", err)
		}

		entity.Status = string(agg.Status)
		entity.TranscriptText = agg.Transcript
		result = entity.ToDomain()
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Status.IsTerminal() {
		g.publish(StatusEvent{RecordingID: recordingID, Status: string(result.Status)})
		if g.cache != nil && result.TranscriptText != "" {
			if err := g.cache.Set(transcriptCacheKey(recordingID), result.TranscriptText, transcriptCacheTTL).Err(); err != nil {
				g.logger.Warnf("transcript cache write failed for recording %s: %v", recordingID, err)
			}
		}
	}
	return result, nil
}

// GetDiarizedSegment implements recording.RecordingRepository
func (g *GormRecordingRepo) GetDiarizedSegment(ctx context.Context, recordingID uuid.UUID) (*recording.DiarizedSegment, error) {
	var entity DiarizedSegmentEntity
	if err := g.db.WithContext(ctx).Where("recording_id = ?", recordingID).First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, recording.ErrSegmentNotFound
		}
		return nil, fmt.Errorf("failed to get diarized segment: %w", err)
	}
	return entity.ToDomain(), nil
}

// GetTranscript implements recording.RecordingRepository. Reads go through
// the redis cache when available.
func (g *GormRecordingRepo) GetTranscript(ctx context.Context, recordingID uuid.UUID) (string, error) {
	if g.cache != nil {
		if cached, err := g.cache.Get(transcriptCacheKey(recordingID)).Result(); err == nil && cached != "" {
			return cached, nil
		}
	}

	rec, err := g.GetRecording(ctx, recordingID)
	if err != nil {
		return "", err
	}
	if g.cache != nil && rec.TranscriptText != "" {
		if err := g.cache.Set(transcriptCacheKey(recordingID), rec.TranscriptText, transcriptCacheTTL).Err(); err != nil {
			g.logger.Warnf("transcript cache write failed for recording %s: %v", recordingID, err)
		}
	}
	return rec.TranscriptText, nil
}
