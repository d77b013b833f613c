package recording

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/courtscribe/courtscribe/pkg/Logger"
	"github.com/courtscribe/courtscribe/pkg/assets"
	"github.com/google/uuid"
)

// PipelineDispatcher hands a freshly created recording to the processing
// pipeline. Implemented by the pipeline coordinator; the service never
// drives transitions itself.
type PipelineDispatcher interface {
	DispatchChunkRecording(ctx context.Context, recordingID uuid.UUID) error
}

// RecordingService is the API-facing business logic for recordings.
type RecordingService interface {
	CreateRecording(ctx context.Context, req CreateRecordingRequest, audio io.Reader, filename string) (*RecordingResponse, error)
	GetRecording(ctx context.Context, id string) (*RecordingResponse, error)
	ListRecordings(ctx context.Context, filters ListRecordingsRequest) ([]RecordingResponse, int64, error)
	GetTranscript(ctx context.Context, id string) (string, error)
	GetDiarizedSegment(ctx context.Context, id string) (*DiarizedSegment, error)
}

type recordingService struct {
	repository RecordingRepository
	store      *assets.Store
	dispatcher PipelineDispatcher
	logger     *Logger.Logger
}

func NewRecordingService(repository RecordingRepository, store *assets.Store, dispatcher PipelineDispatcher, logger *Logger.Logger) RecordingService {
	return &recordingService{
		repository: repository,
		store:      store,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// CreateRecording stores the uploaded audio asset, registers the recording
// in pending state and dispatches the chunking job.
func (s *recordingService) CreateRecording(ctx context.Context, req CreateRecordingRequest, audio io.Reader, filename string) (*RecordingResponse, error) {
	rec := NewRecording(req, "")

	ext := filepath.Ext(filename)
	if ext == "" {
		ext = ".wav"
	}
	rec.AudioPath = fmt.Sprintf("audio_files/%s%s", rec.ID, ext)

	if err := s.store.Save(rec.AudioPath, audio); err != nil {
		s.logger.Errorf("error storing audio asset: %v", err)
		return nil, fmt.Errorf("failed to store audio: %w", err)
	}

	if err := s.repository.CreateRecording(ctx, rec); err != nil {
		s.logger.Errorf("error creating recording: %v", err)
		return nil, fmt.Errorf("failed to create recording: %w", err)
	}

	if err := s.dispatcher.DispatchChunkRecording(ctx, rec.ID); err != nil {
		s.logger.Errorf("error dispatching chunking for recording %s: %v", rec.ID, err)
		if uerr := s.repository.UpdateRecordingStatus(ctx, rec.ID, RecordingFailed); uerr != nil {
			s.logger.Errorf("error marking recording %s failed: %v", rec.ID, uerr)
		}
		return nil, fmt.Errorf("failed to dispatch pipeline: %w", err)
	}

	s.logger.Infof("recording created: %s (%s)", rec.ID, rec.CaseName)
	response := rec.ToResponse()
	return &response, nil
}

// GetRecording returns the recording with per-chunk status summaries.
func (s *recordingService) GetRecording(ctx context.Context, id string) (*RecordingResponse, error) {
	recID, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrRecordingNotFound
	}

	rec, err := s.repository.GetRecording(ctx, recID)
	if err != nil {
		if errors.Is(err, ErrRecordingNotFound) {
			return nil, ErrRecordingNotFound
		}
		s.logger.Errorf("error getting recording: %v", err)
		return nil, fmt.Errorf("failed to get recording: %w", err)
	}

	response := rec.ToResponse()
	chunks, err := s.repository.ListChunks(ctx, recID)
	if err != nil {
		s.logger.Errorf("error listing chunks for recording %s: %v", recID, err)
	} else {
		for _, c := range chunks {
			response.Chunks = append(response.Chunks, c.ToResponse())
		}
	}
	return &response, nil
}

// ListRecordings implements RecordingService.
func (s *recordingService) ListRecordings(ctx context.Context, filters ListRecordingsRequest) ([]RecordingResponse, int64, error) {
	if filters.Limit <= 0 || filters.Limit > 100 {
		filters.Limit = 20
	}

	recs, total, err := s.repository.ListRecordings(ctx, filters)
	if err != nil {
		s.logger.Errorf("error listing recordings: %v", err)
		return nil, 0, fmt.Errorf("failed to list recordings: %w", err)
	}

	responses := make([]RecordingResponse, len(recs))
	for i := range recs {
		responses[i] = recs[i].ToResponse()
	}
	return responses, total, nil
}

// GetTranscript returns the aggregated transcript once the pipeline has
// reached a terminal state; before that it returns ErrNotReady so callers
// never observe a partially assembled transcript.
func (s *recordingService) GetTranscript(ctx context.Context, id string) (string, error) {
	recID, err := uuid.Parse(id)
	if err != nil {
		return "", ErrRecordingNotFound
	}

	rec, err := s.repository.GetRecording(ctx, recID)
	if err != nil {
		return "", err
	}
	if !rec.Status.IsTerminal() {
		return "", ErrNotReady
	}

	text, err := s.repository.GetTranscript(ctx, recID)
	if err != nil {
		s.logger.Errorf("error fetching transcript for recording %s: %v", recID, err)
		return "", fmt.Errorf("failed to get transcript: %w", err)
	}
	return text, nil
}

// GetDiarizedSegment implements RecordingService.
func (s *recordingService) GetDiarizedSegment(ctx context.Context, id string) (*DiarizedSegment, error) {
	recID, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrSegmentNotFound
	}

	seg, err := s.repository.GetDiarizedSegment(ctx, recID)
	if err != nil {
		if errors.Is(err, ErrSegmentNotFound) {
			return nil, ErrSegmentNotFound
		}
		s.logger.Errorf("error fetching diarized segment for recording %s: %v", recID, err)
		return nil, fmt.Errorf("failed to get diarized segment: %w", err)
	}
	return seg, nil
}
