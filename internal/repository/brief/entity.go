package brief

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/courtscribe/courtscribe/internal/domains/brief"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FieldMap stores the extracted case fields as a JSON column.
type FieldMap map[string]string

// Value implements driver.Valuer interface for GORM
func (f FieldMap) Value() (driver.Value, error) {
	if len(f) == 0 {
		return "{}", nil
	}
	return json.Marshal(f)
}

// Scan implements sql.Scanner interface for GORM
func (f *FieldMap) Scan(value interface{}) error {
	if value == nil {
		*f = FieldMap{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, f)
	case string:
		return json.Unmarshal([]byte(v), f)
	default:
		*f = FieldMap{}
		return nil
	}
}

// BriefEntity is the database row for a case brief, one per recording.
type BriefEntity struct {
	ID          uuid.UUID `gorm:"primaryKey;type:char(36);not null"`
	RecordingID uuid.UUID `gorm:"column:recording_id;type:char(36);not null;uniqueIndex"`
	Fields      FieldMap  `gorm:"type:json;column:fields"`
	BriefText   string    `gorm:"column:brief_text;type:longtext"`
	CreatedAt   time.Time `gorm:"autoCreateTime(3)"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime(3)"`
}

func (BriefEntity) TableName() string {
	return "case_briefs"
}

func (b *BriefEntity) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

func (b *BriefEntity) ToDomain() *brief.CaseBrief {
	return &brief.CaseBrief{
		ID:          b.ID,
		RecordingID: b.RecordingID,
		Fields:      map[string]string(b.Fields),
		BriefText:   b.BriefText,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

func (b *BriefEntity) FromDomain(cb *brief.CaseBrief) {
	b.ID = cb.ID
	b.RecordingID = cb.RecordingID
	b.Fields = FieldMap(cb.Fields)
	b.BriefText = cb.BriefText
	b.CreatedAt = cb.CreatedAt
	b.UpdatedAt = cb.UpdatedAt
}
