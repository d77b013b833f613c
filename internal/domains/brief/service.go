package brief

import (
	"context"
	"fmt"
	"time"

	"github.com/courtscribe/courtscribe/internal/domains/recording"
	"github.com/courtscribe/courtscribe/pkg/Logger"
	"github.com/google/uuid"
)

// BriefService generates and serves case briefs for completed recordings.
type BriefService interface {
	// GenerateBrief builds the brief from the recording's transcript. An
	// existing brief is returned as-is unless force is set.
	GenerateBrief(ctx context.Context, recordingID uuid.UUID, force bool) (*CaseBrief, error)
	GetBrief(ctx context.Context, recordingID uuid.UUID) (*CaseBrief, error)
}

type briefService struct {
	repository BriefRepository
	recordings recording.RecordingRepository
	extractor  Extractor
	logger     *Logger.Logger
}

func NewBriefService(repository BriefRepository, recordings recording.RecordingRepository, extractor Extractor, logger *Logger.Logger) BriefService {
	return &briefService{
		repository: repository,
		recordings: recordings,
		extractor:  extractor,
		logger:     logger,
	}
}

func (s *briefService) GenerateBrief(ctx context.Context, recordingID uuid.UUID, force bool) (*CaseBrief, error) {
	if !force {
		if existing, err := s.repository.GetByRecordingID(ctx, recordingID); err == nil {
			return existing, nil
		}
	}

	rec, err := s.recordings.GetRecording(ctx, recordingID)
	if err != nil {
		return nil, err
	}
	if rec.Status != recording.RecordingCompleted {
		return nil, fmt.Errorf("%w: recording is %s", recording.ErrNotReady, rec.Status)
	}

	transcript, err := s.recordings.GetTranscript(ctx, recordingID)
	if err != nil {
		return nil, err
	}

	fields, err := s.extractor.ExtractCaseInfo(ctx, transcript)
	if err != nil {
		return nil, fmt.Errorf("extract case info for %s: %w", recordingID, err)
	}

	now := time.Now()
	b := &CaseBrief{
		ID:          uuid.New(),
		RecordingID: recordingID,
		Fields:      fields,
		BriefText:   FormatBrief(fields),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repository.Upsert(ctx, b); err != nil {
		return nil, fmt.Errorf("save case brief: %w", err)
	}

	s.logger.Infof("generated case brief for recording %s", recordingID)
	return b, nil
}

func (s *briefService) GetBrief(ctx context.Context, recordingID uuid.UUID) (*CaseBrief, error) {
	return s.repository.GetByRecordingID(ctx, recordingID)
}
