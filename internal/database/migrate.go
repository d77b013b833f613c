package database

import (
	briefrepo "github.com/courtscribe/courtscribe/internal/repository/brief"
	recordingrepo "github.com/courtscribe/courtscribe/internal/repository/recording"
	"gorm.io/gorm"
)

func MigrateDB(db *gorm.DB) error {
	return db.AutoMigrate(
		&recordingrepo.RecordingEntity{},
		&recordingrepo.ChunkEntity{},
		&recordingrepo.DiarizedSegmentEntity{},
		&briefrepo.BriefEntity{},
	)
}
