package brief

import (
	"context"
	"errors"
	"fmt"

	"github.com/courtscribe/courtscribe/internal/domains/brief"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormBriefRepo struct {
	db *gorm.DB
}

func NewGormBriefRepo(db *gorm.DB) brief.BriefRepository {
	return &GormBriefRepo{db: db}
}

// Upsert implements brief.BriefRepository. A regenerated brief replaces
// the existing row for its recording.
func (g *GormBriefRepo) Upsert(ctx context.Context, b *brief.CaseBrief) error {
	entity := &BriefEntity{}
	entity.FromDomain(b)
	if err := g.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "recording_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"fields", "brief_text", "updated_at"}),
	}).Create(entity).Error; err != nil {
		return fmt.Errorf("failed to save case brief: %w", err)
	}
	*b = *entity.ToDomain()
	return nil
}

// GetByRecordingID implements brief.BriefRepository
func (g *GormBriefRepo) GetByRecordingID(ctx context.Context, recordingID uuid.UUID) (*brief.CaseBrief, error) {
	var entity BriefEntity
	if err := g.db.WithContext(ctx).Where("recording_id = ?", recordingID).First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, brief.ErrBriefNotFound
		}
		return nil, fmt.Errorf("failed to get case brief: %w", err)
	}
	return entity.ToDomain(), nil
}
