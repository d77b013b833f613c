package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/courtscribe/courtscribe/internal/domains/brief"
	"github.com/courtscribe/courtscribe/internal/domains/recording"
	"github.com/courtscribe/courtscribe/pkg/Logger"
	"github.com/courtscribe/courtscribe/pkg/diarize"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Config holds the queue connection settings for the pipeline coordinator.
type Config struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	Concurrency   int
	Queues        map[string]int
}

// AssetTranscriber turns a stored audio asset into transcript text.
type AssetTranscriber interface {
	TranscribeAsset(ctx context.Context, assetPath string) (string, error)
}

// AssetDiarizer turns a stored audio asset into speaker-attributed blocks.
type AssetDiarizer interface {
	DiarizeAsset(ctx context.Context, assetPath string) ([]diarize.SpeakerBlock, error)
}

// Splitter slices a recording's audio into chunk assets.
type Splitter interface {
	Split(ctx context.Context, rec *recording.Recording) ([]recording.Chunk, error)
}

type taskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Service coordinates the chunk pipeline over an asynq task queue. Every
// persistence-side event becomes a typed job; handlers drive the chunk
// state machine and re-evaluate recording completion after each terminal
// chunk event. Queue-level retry is disabled: the transcription and
// diarization clients own their retry budgets.
type Service struct {
	client      *asynq.Client
	server      *asynq.Server
	mux         *asynq.ServeMux
	enq         taskEnqueuer
	logger      *Logger.Logger
	repository  recording.RecordingRepository
	chunker     Splitter
	transcriber AssetTranscriber
	diarizer    AssetDiarizer
	briefs      brief.BriefService
}

var _ recording.PipelineDispatcher = (*Service)(nil)

func NewService(
	config Config,
	logger *Logger.Logger,
	repository recording.RecordingRepository,
	chunker Splitter,
	transcriber AssetTranscriber,
	diarizer AssetDiarizer,
	briefs brief.BriefService,
) *Service {
	redisOpt := asynq.RedisClientOpt{
		Addr:     config.RedisAddr,
		Password: config.RedisPassword,
		DB:       config.RedisDB,
	}

	client := asynq.NewClient(redisOpt)

	server := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: config.Concurrency,
		Queues:      config.Queues,
		Logger:      NewAsynqLogger(logger),
	})

	service := &Service{
		client:      client,
		server:      server,
		mux:         asynq.NewServeMux(),
		enq:         client,
		logger:      logger,
		repository:  repository,
		chunker:     chunker,
		transcriber: transcriber,
		diarizer:    diarizer,
		briefs:      briefs,
	}
	service.registerHandlers()
	return service
}

func (s *Service) registerHandlers() {
	s.mux.HandleFunc(TypeChunkRecording, s.handleChunkRecording)
	s.mux.HandleFunc(TypeTranscribeChunk, s.handleTranscribeChunk)
	s.mux.HandleFunc(TypeDiarizeChunk, s.handleDiarizeChunk)
	s.mux.HandleFunc(TypeGenerateBrief, s.handleGenerateBrief)
}

// Start runs the queue consumer in the background.
func (s *Service) Start(ctx context.Context) error {
	s.logger.Info("Starting pipeline coordinator...")

	go func() {
		if err := s.server.Run(s.mux); err != nil {
			s.logger.Error(fmt.Sprintf("Pipeline server error: %v", err))
		}
	}()

	return nil
}

// Stop drains the queue consumer and closes the producer.
func (s *Service) Stop(ctx context.Context) error {
	s.logger.Info("Stopping pipeline coordinator...")

	s.server.Shutdown()
	s.client.Close()
	return nil
}

// Dispatchers

// DispatchChunkRecording enqueues the chunking job for a new recording.
func (s *Service) DispatchChunkRecording(ctx context.Context, recordingID uuid.UUID) error {
	return s.enqueue(ctx, TypeChunkRecording, RecordingPayload{RecordingID: recordingID})
}

// DispatchGenerateBrief enqueues brief generation for a recording.
func (s *Service) DispatchGenerateBrief(ctx context.Context, recordingID uuid.UUID, force bool) error {
	return s.enqueue(ctx, TypeGenerateBrief, BriefPayload{RecordingID: recordingID, Force: force})
}

func (s *Service) dispatchTranscribeChunk(ctx context.Context, c recording.Chunk) error {
	return s.enqueue(ctx, TypeTranscribeChunk, ChunkPayload{ChunkID: c.ID, RecordingID: c.RecordingID, Index: c.Index})
}

func (s *Service) dispatchDiarizeChunk(ctx context.Context, c recording.Chunk) error {
	return s.enqueue(ctx, TypeDiarizeChunk, ChunkPayload{ChunkID: c.ID, RecordingID: c.RecordingID, Index: c.Index})
}

func (s *Service) enqueue(ctx context.Context, jobType string, payload any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", jobType, err)
	}
	if _, err := s.enq.EnqueueContext(ctx, asynq.NewTask(jobType, b), asynq.MaxRetry(0)); err != nil {
		return fmt.Errorf("enqueue %s: %w", jobType, err)
	}
	return nil
}

// Job handlers

func (s *Service) handleChunkRecording(ctx context.Context, t *asynq.Task) error {
	var payload RecordingPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal chunk recording payload: %w", err)
	}
	return s.processChunkRecording(ctx, payload.RecordingID)
}

func (s *Service) processChunkRecording(ctx context.Context, recordingID uuid.UUID) error {
	rec, err := s.repository.GetRecording(ctx, recordingID)
	if err != nil {
		if errors.Is(err, recording.ErrRecordingNotFound) {
			s.logger.Warnf("chunk job for unknown recording %s, dropping", recordingID)
			return nil
		}
		return err
	}
	if rec.Status == recording.RecordingFailed {
		s.logger.Infof("recording %s already failed, skipping chunking", recordingID)
		return nil
	}

	if err := s.repository.ClaimForChunking(ctx, recordingID); err != nil {
		if errors.Is(err, recording.ErrAlreadyChunked) {
			s.logger.Infof("recording %s already chunked, skipping", recordingID)
			return nil
		}
		return fmt.Errorf("claim recording %s for chunking: %w", recordingID, err)
	}

	if err := s.repository.UpdateRecordingStatus(ctx, recordingID, recording.RecordingChunking); err != nil {
		return err
	}

	chunks, err := s.chunker.Split(ctx, rec)
	if err != nil {
		s.logger.Errorf("chunking recording %s failed: %v", recordingID, err)
		return s.repository.UpdateRecordingStatus(ctx, recordingID, recording.RecordingFailed)
	}

	if err := s.repository.CreateChunks(ctx, chunks); err != nil {
		s.logger.Errorf("persisting chunks for recording %s failed: %v", recordingID, err)
		return s.repository.UpdateRecordingStatus(ctx, recordingID, recording.RecordingFailed)
	}
	if err := s.repository.UpdateRecordingStatus(ctx, recordingID, recording.RecordingInProgress); err != nil {
		return err
	}

	for _, c := range chunks {
		if err := s.dispatchTranscribeChunk(ctx, c); err != nil {
			return err
		}
	}
	s.logger.Infof("recording %s chunked into %d pieces", recordingID, len(chunks))
	return nil
}

func (s *Service) handleTranscribeChunk(ctx context.Context, t *asynq.Task) error {
	var payload ChunkPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal transcribe payload: %w", err)
	}
	return s.processTranscribeChunk(ctx, payload.ChunkID)
}

func (s *Service) processTranscribeChunk(ctx context.Context, chunkID uuid.UUID) error {
	chunk, ok, err := s.claimChunk(ctx, chunkID, recording.ChunkPending)
	if err != nil || !ok {
		return err
	}

	m := machineFor(chunk.Status)
	if err := m.advance(ctx, eventStart); err != nil {
		return err
	}
	if err := s.repository.UpdateChunkStatus(ctx, chunk.ID, m.status()); err != nil {
		return err
	}

	text, err := s.transcriber.TranscribeAsset(ctx, chunk.AudioPath)
	if err != nil {
		s.logger.Errorf("transcription exhausted for chunk %d of recording %s: %v", chunk.Index, chunk.RecordingID, err)
		return s.failChunk(ctx, m, chunk)
	}

	if err := m.advance(ctx, eventComplete); err != nil {
		return err
	}
	if err := s.repository.SaveChunkTranscript(ctx, chunk.ID, text); err != nil {
		return err
	}

	if err := s.dispatchDiarizeChunk(ctx, *chunk); err != nil {
		return err
	}
	return s.finalize(ctx, chunk.RecordingID)
}

func (s *Service) handleDiarizeChunk(ctx context.Context, t *asynq.Task) error {
	var payload ChunkPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal diarize payload: %w", err)
	}
	return s.processDiarizeChunk(ctx, payload.ChunkID)
}

func (s *Service) processDiarizeChunk(ctx context.Context, chunkID uuid.UUID) error {
	chunk, ok, err := s.claimChunk(ctx, chunkID, recording.ChunkCompleted)
	if err != nil || !ok {
		return err
	}

	m := machineFor(chunk.Status)
	blocks, err := s.diarizer.DiarizeAsset(ctx, chunk.AudioPath)
	if err != nil {
		s.logger.Errorf("diarization exhausted for chunk %d of recording %s: %v", chunk.Index, chunk.RecordingID, err)
		return s.failChunk(ctx, m, chunk)
	}

	if err := m.advance(ctx, eventDiarize); err != nil {
		return err
	}
	if err := s.repository.SaveChunkDiarization(ctx, chunk.ID, diarize.FormatBlocks(blocks)); err != nil {
		return err
	}
	return s.finalize(ctx, chunk.RecordingID)
}

func (s *Service) handleGenerateBrief(ctx context.Context, t *asynq.Task) error {
	var payload BriefPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal brief payload: %w", err)
	}
	if _, err := s.briefs.GenerateBrief(ctx, payload.RecordingID, payload.Force); err != nil {
		s.logger.Errorf("brief generation for recording %s failed: %v", payload.RecordingID, err)
	}
	return nil
}

// claimChunk loads a chunk and checks it is in the expected state and its
// recording has not already failed. Replayed or orphaned jobs are dropped
// without error.
func (s *Service) claimChunk(ctx context.Context, chunkID uuid.UUID, want recording.ChunkStatus) (*recording.Chunk, bool, error) {
	chunk, err := s.repository.GetChunk(ctx, chunkID)
	if err != nil {
		if errors.Is(err, recording.ErrChunkNotFound) {
			s.logger.Warnf("job for unknown chunk %s, dropping", chunkID)
			return nil, false, nil
		}
		return nil, false, err
	}
	if chunk.Status != want {
		s.logger.Infof("chunk %s is %s, expected %s; dropping replayed job", chunkID, chunk.Status, want)
		return nil, false, nil
	}

	rec, err := s.repository.GetRecording(ctx, chunk.RecordingID)
	if err != nil {
		return nil, false, err
	}
	if rec.Status == recording.RecordingFailed {
		s.logger.Infof("recording %s already failed, dropping job for chunk %d", rec.ID, chunk.Index)
		return nil, false, nil
	}
	return chunk, true, nil
}

func (s *Service) failChunk(ctx context.Context, m *chunkMachine, chunk *recording.Chunk) error {
	if err := m.advance(ctx, eventFail); err != nil {
		return err
	}
	if err := s.repository.UpdateChunkStatus(ctx, chunk.ID, m.status()); err != nil {
		return err
	}
	return s.finalize(ctx, chunk.RecordingID)
}

// finalize re-applies the recording aggregation rule and, on transition to
// completed, queues brief generation.
func (s *Service) finalize(ctx context.Context, recordingID uuid.UUID) error {
	rec, err := s.repository.FinalizeRecording(ctx, recordingID)
	if err != nil {
		return fmt.Errorf("finalize recording %s: %w", recordingID, err)
	}
	if rec.Status == recording.RecordingCompleted {
		if err := s.DispatchGenerateBrief(ctx, recordingID, false); err != nil {
			s.logger.Errorf("queueing brief for recording %s failed: %v", recordingID, err)
		}
	}
	return nil
}
