package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/courtscribe/courtscribe/internal/domains/recording"
	"github.com/courtscribe/courtscribe/pkg/Logger"
	"github.com/courtscribe/courtscribe/pkg/diarize"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// fakeRepo is an in-memory RecordingRepository mirroring the persistence
// semantics the coordinator relies on, including the single-claim chunking
// flag and the finalization rule.
type fakeRepo struct {
	mu         sync.Mutex
	recordings map[uuid.UUID]*recording.Recording
	chunks     map[uuid.UUID]*recording.Chunk
	segments   map[uuid.UUID]*recording.DiarizedSegment
	claims     int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		recordings: map[uuid.UUID]*recording.Recording{},
		chunks:     map[uuid.UUID]*recording.Chunk{},
		segments:   map[uuid.UUID]*recording.DiarizedSegment{},
	}
}

func (r *fakeRepo) CreateRecording(_ context.Context, rec *recording.Recording) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *rec
	r.recordings[rec.ID] = &cp
	return nil
}

func (r *fakeRepo) GetRecording(_ context.Context, id uuid.UUID) (*recording.Recording, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.recordings[id]
	if !ok {
		return nil, recording.ErrRecordingNotFound
	}
	cp := *rec
	return &cp, nil
}

func (r *fakeRepo) ListRecordings(_ context.Context, _ recording.ListRecordingsRequest) ([]recording.Recording, int64, error) {
	return nil, 0, nil
}

func (r *fakeRepo) UpdateRecordingStatus(_ context.Context, id uuid.UUID, status recording.RecordingStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.recordings[id]
	if !ok {
		return recording.ErrRecordingNotFound
	}
	rec.Status = status
	return nil
}

func (r *fakeRepo) ClaimForChunking(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.recordings[id]
	if !ok {
		return recording.ErrRecordingNotFound
	}
	if rec.Chunked {
		return recording.ErrAlreadyChunked
	}
	rec.Chunked = true
	r.claims++
	return nil
}

func (r *fakeRepo) CreateChunks(_ context.Context, chunks []recording.Chunk) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range chunks {
		cp := c
		r.chunks[c.ID] = &cp
	}
	return nil
}

func (r *fakeRepo) GetChunk(_ context.Context, id uuid.UUID) (*recording.Chunk, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.chunks[id]
	if !ok {
		return nil, recording.ErrChunkNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeRepo) ListChunks(_ context.Context, recordingID uuid.UUID) ([]recording.Chunk, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []recording.Chunk
	for _, c := range r.chunks {
		if c.RecordingID == recordingID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *fakeRepo) UpdateChunkStatus(_ context.Context, id uuid.UUID, status recording.ChunkStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.chunks[id]
	if !ok {
		return recording.ErrChunkNotFound
	}
	c.Status = status
	return nil
}

func (r *fakeRepo) SaveChunkTranscript(_ context.Context, id uuid.UUID, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.chunks[id]
	if !ok {
		return recording.ErrChunkNotFound
	}
	c.TranscriptText = text
	c.Status = recording.ChunkCompleted
	return nil
}

func (r *fakeRepo) SaveChunkDiarization(_ context.Context, id uuid.UUID, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.chunks[id]
	if !ok {
		return recording.ErrChunkNotFound
	}
	c.DiarizationText = text
	c.Status = recording.ChunkDiarized
	return nil
}

func (r *fakeRepo) FinalizeRecording(_ context.Context, recordingID uuid.UUID) (*recording.Recording, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.recordings[recordingID]
	if !ok {
		return nil, recording.ErrRecordingNotFound
	}
	var chunks []recording.Chunk
	for _, c := range r.chunks {
		if c.RecordingID == recordingID {
			chunks = append(chunks, *c)
		}
	}
	agg := recording.Aggregate(chunks)
	if agg.Done {
		rec.Status = agg.Status
		rec.TranscriptText = agg.Transcript
		r.segments[recordingID] = &recording.DiarizedSegment{RecordingID: recordingID, Data: agg.Diarized}
	}
	cp := *rec
	return &cp, nil
}

func (r *fakeRepo) GetDiarizedSegment(_ context.Context, recordingID uuid.UUID) (*recording.DiarizedSegment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seg, ok := r.segments[recordingID]
	if !ok {
		return nil, recording.ErrSegmentNotFound
	}
	cp := *seg
	return &cp, nil
}

func (r *fakeRepo) GetTranscript(_ context.Context, recordingID uuid.UUID) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.recordings[recordingID]
	if !ok {
		return "", recording.ErrRecordingNotFound
	}
	return rec.TranscriptText, nil
}

type fakeEnqueuer struct {
	mu    sync.Mutex
	tasks []*asynq.Task
}

func (e *fakeEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tasks = append(e.tasks, task)
	return &asynq.TaskInfo{}, nil
}

func (e *fakeEnqueuer) byType(jobType string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, t := range e.tasks {
		if t.Type() == jobType {
			n++
		}
	}
	return n
}

type fakeSplitter struct {
	calls  int
	chunks []recording.Chunk
	err    error
}

func (f *fakeSplitter) Split(_ context.Context, rec *recording.Recording) ([]recording.Chunk, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([]recording.Chunk, len(f.chunks))
	copy(out, f.chunks)
	for i := range out {
		out[i].RecordingID = rec.ID
	}
	return out, nil
}

type fakeTranscriber struct {
	calls int
	text  string
	err   error
}

func (f *fakeTranscriber) TranscribeAsset(context.Context, string) (string, error) {
	f.calls++
	return f.text, f.err
}

type fakeDiarizer struct {
	calls  int
	blocks []diarize.SpeakerBlock
	err    error
}

func (f *fakeDiarizer) DiarizeAsset(context.Context, string) ([]diarize.SpeakerBlock, error) {
	f.calls++
	return f.blocks, f.err
}

func newTestService(repo *fakeRepo, split *fakeSplitter, tr *fakeTranscriber, di *fakeDiarizer) (*Service, *fakeEnqueuer) {
	enq := &fakeEnqueuer{}
	return &Service{
		enq:         enq,
		logger:      Logger.New(true),
		repository:  repo,
		chunker:     split,
		transcriber: tr,
		diarizer:    di,
	}, enq
}

func seedRecording(repo *fakeRepo) *recording.Recording {
	rec := recording.NewRecording(recording.CreateRecordingRequest{CaseName: "Republic v. Doe"}, "audio_files/x.wav")
	_ = repo.CreateRecording(context.Background(), rec)
	return rec
}

func seedChunk(repo *fakeRepo, rec *recording.Recording, index int, status recording.ChunkStatus) recording.Chunk {
	c := recording.NewChunk(rec.ID, index, "audio_chunks/x.wav")
	c.Status = status
	_ = repo.CreateChunks(context.Background(), []recording.Chunk{c})
	return c
}

func TestChunkRecordingSecondDeliveryIsIgnored(t *testing.T) {
	repo := newFakeRepo()
	rec := seedRecording(repo)
	split := &fakeSplitter{chunks: []recording.Chunk{
		recording.NewChunk(rec.ID, 0, "audio_chunks/a.wav"),
		recording.NewChunk(rec.ID, 1, "audio_chunks/b.wav"),
	}}
	svc, enq := newTestService(repo, split, &fakeTranscriber{}, &fakeDiarizer{})
	ctx := context.Background()

	if err := svc.processChunkRecording(ctx, rec.ID); err != nil {
		t.Fatalf("first delivery failed: %v", err)
	}
	if err := svc.processChunkRecording(ctx, rec.ID); err != nil {
		t.Fatalf("second delivery errored: %v", err)
	}

	if split.calls != 1 {
		t.Errorf("audio split %d times, want 1", split.calls)
	}
	if repo.claims != 1 {
		t.Errorf("chunking claimed %d times, want 1", repo.claims)
	}
	if got := enq.byType(TypeTranscribeChunk); got != 2 {
		t.Errorf("%d transcribe jobs queued, want 2", got)
	}

	got, _ := repo.GetRecording(ctx, rec.ID)
	if got.Status != recording.RecordingInProgress {
		t.Errorf("recording status = %s, want in_progress", got.Status)
	}
}

func TestChunkRecordingSplitFailureFailsRecording(t *testing.T) {
	repo := newFakeRepo()
	rec := seedRecording(repo)
	split := &fakeSplitter{err: ErrUnreadableAudio}
	svc, enq := newTestService(repo, split, &fakeTranscriber{}, &fakeDiarizer{})

	if err := svc.processChunkRecording(context.Background(), rec.ID); err != nil {
		t.Fatalf("handler errored: %v", err)
	}

	got, _ := repo.GetRecording(context.Background(), rec.ID)
	if got.Status != recording.RecordingFailed {
		t.Errorf("recording status = %s, want failed", got.Status)
	}
	if n := enq.byType(TypeTranscribeChunk); n != 0 {
		t.Errorf("%d transcribe jobs queued after split failure", n)
	}
}

func TestTranscribeChunkSuccessQueuesDiarization(t *testing.T) {
	repo := newFakeRepo()
	rec := seedRecording(repo)
	chunk := seedChunk(repo, rec, 0, recording.ChunkPending)
	tr := &fakeTranscriber{text: "the accused entered a plea"}
	svc, enq := newTestService(repo, &fakeSplitter{}, tr, &fakeDiarizer{})

	if err := svc.processTranscribeChunk(context.Background(), chunk.ID); err != nil {
		t.Fatalf("handler errored: %v", err)
	}

	got, _ := repo.GetChunk(context.Background(), chunk.ID)
	if got.Status != recording.ChunkCompleted {
		t.Errorf("chunk status = %s, want completed", got.Status)
	}
	if got.TranscriptText != tr.text {
		t.Errorf("transcript not stored, got %q", got.TranscriptText)
	}
	if n := enq.byType(TypeDiarizeChunk); n != 1 {
		t.Errorf("%d diarize jobs queued, want 1", n)
	}
}

func TestTranscribeChunkReplayIsDropped(t *testing.T) {
	repo := newFakeRepo()
	rec := seedRecording(repo)
	chunk := seedChunk(repo, rec, 0, recording.ChunkCompleted)
	tr := &fakeTranscriber{text: "again"}
	svc, _ := newTestService(repo, &fakeSplitter{}, tr, &fakeDiarizer{})

	if err := svc.processTranscribeChunk(context.Background(), chunk.ID); err != nil {
		t.Fatalf("handler errored: %v", err)
	}
	if tr.calls != 0 {
		t.Errorf("transcriber called %d times on replayed job", tr.calls)
	}
}

func TestTranscribeChunkFailureFailsRecording(t *testing.T) {
	repo := newFakeRepo()
	rec := seedRecording(repo)
	chunk := seedChunk(repo, rec, 0, recording.ChunkPending)
	svc, _ := newTestService(repo, &fakeSplitter{}, &fakeTranscriber{err: errors.New("no transcription result")}, &fakeDiarizer{})

	if err := svc.processTranscribeChunk(context.Background(), chunk.ID); err != nil {
		t.Fatalf("handler errored: %v", err)
	}

	gotChunk, _ := repo.GetChunk(context.Background(), chunk.ID)
	if gotChunk.Status != recording.ChunkFailed {
		t.Errorf("chunk status = %s, want failed", gotChunk.Status)
	}
	gotRec, _ := repo.GetRecording(context.Background(), rec.ID)
	if gotRec.Status != recording.RecordingFailed {
		t.Errorf("recording status = %s, want failed", gotRec.Status)
	}
}

func TestChunkJobDroppedWhenRecordingFailed(t *testing.T) {
	repo := newFakeRepo()
	rec := seedRecording(repo)
	_ = repo.UpdateRecordingStatus(context.Background(), rec.ID, recording.RecordingFailed)
	chunk := seedChunk(repo, rec, 0, recording.ChunkPending)
	tr := &fakeTranscriber{text: "orphan"}
	svc, _ := newTestService(repo, &fakeSplitter{}, tr, &fakeDiarizer{})

	if err := svc.processTranscribeChunk(context.Background(), chunk.ID); err != nil {
		t.Fatalf("handler errored: %v", err)
	}
	if tr.calls != 0 {
		t.Errorf("transcriber called %d times for orphaned chunk", tr.calls)
	}
	got, _ := repo.GetChunk(context.Background(), chunk.ID)
	if got.Status != recording.ChunkPending {
		t.Errorf("orphaned chunk moved to %s", got.Status)
	}
}

func TestDiarizeChunkCompletesRecordingAndQueuesBrief(t *testing.T) {
	repo := newFakeRepo()
	rec := seedRecording(repo)
	chunk := seedChunk(repo, rec, 0, recording.ChunkCompleted)
	di := &fakeDiarizer{blocks: []diarize.SpeakerBlock{
		{Speaker: "SPEAKER_00", Text: "All rise."},
		{Speaker: "SPEAKER_01", Text: "You may be seated."},
	}}
	svc, enq := newTestService(repo, &fakeSplitter{}, &fakeTranscriber{}, di)

	if err := svc.processDiarizeChunk(context.Background(), chunk.ID); err != nil {
		t.Fatalf("handler errored: %v", err)
	}

	got, _ := repo.GetChunk(context.Background(), chunk.ID)
	if got.Status != recording.ChunkDiarized {
		t.Errorf("chunk status = %s, want diarized", got.Status)
	}
	if got.DiarizationText != "Speaker 1: All rise.\n\nSpeaker 2: You may be seated.\n\n" {
		t.Errorf("diarization text = %q", got.DiarizationText)
	}

	gotRec, _ := repo.GetRecording(context.Background(), rec.ID)
	if gotRec.Status != recording.RecordingCompleted {
		t.Errorf("recording status = %s, want completed", gotRec.Status)
	}
	if n := enq.byType(TypeGenerateBrief); n != 1 {
		t.Errorf("%d brief jobs queued, want 1", n)
	}

	seg, err := repo.GetDiarizedSegment(context.Background(), rec.ID)
	if err != nil {
		t.Fatalf("diarized segment missing: %v", err)
	}
	if seg.Data == "" {
		t.Error("diarized segment is empty")
	}
}

func TestDiarizeFailureKeepsChunkTranscript(t *testing.T) {
	repo := newFakeRepo()
	rec := seedRecording(repo)
	chunk := seedChunk(repo, rec, 0, recording.ChunkCompleted)
	_ = repo.SaveChunkTranscript(context.Background(), chunk.ID, "partial transcript")
	svc, _ := newTestService(repo, &fakeSplitter{}, &fakeTranscriber{}, &fakeDiarizer{err: errors.New("no diarization result")})

	if err := svc.processDiarizeChunk(context.Background(), chunk.ID); err != nil {
		t.Fatalf("handler errored: %v", err)
	}

	gotRec, _ := repo.GetRecording(context.Background(), rec.ID)
	if gotRec.Status != recording.RecordingFailed {
		t.Errorf("recording status = %s, want failed", gotRec.Status)
	}
	if gotRec.TranscriptText != "partial transcript" {
		t.Errorf("partial transcript lost, got %q", gotRec.TranscriptText)
	}
}
