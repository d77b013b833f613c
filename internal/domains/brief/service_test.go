package brief

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/courtscribe/courtscribe/internal/domains/recording"
	"github.com/courtscribe/courtscribe/pkg/Logger"
	"github.com/google/uuid"
)

type stubBriefRepo struct {
	stored *CaseBrief
}

func (s *stubBriefRepo) Upsert(_ context.Context, b *CaseBrief) error {
	s.stored = b
	return nil
}

func (s *stubBriefRepo) GetByRecordingID(_ context.Context, _ uuid.UUID) (*CaseBrief, error) {
	if s.stored == nil {
		return nil, ErrBriefNotFound
	}
	return s.stored, nil
}

// stubRecordingRepo overrides only the methods the brief service touches.
type stubRecordingRepo struct {
	recording.RecordingRepository
	rec        *recording.Recording
	transcript string
}

func (s *stubRecordingRepo) GetRecording(_ context.Context, _ uuid.UUID) (*recording.Recording, error) {
	if s.rec == nil {
		return nil, recording.ErrRecordingNotFound
	}
	return s.rec, nil
}

func (s *stubRecordingRepo) GetTranscript(_ context.Context, _ uuid.UUID) (string, error) {
	return s.transcript, nil
}

type stubExtractor struct {
	calls  int
	fields map[string]string
	err    error
}

func (s *stubExtractor) ExtractCaseInfo(context.Context, string) (map[string]string, error) {
	s.calls++
	return s.fields, s.err
}

func completedRecording() *recording.Recording {
	return &recording.Recording{ID: uuid.New(), Status: recording.RecordingCompleted}
}

func TestGenerateBriefFromTranscript(t *testing.T) {
	rec := completedRecording()
	repo := &stubBriefRepo{}
	extractor := &stubExtractor{fields: map[string]string{"case_title": "Republic v. Otieno"}}
	svc := NewBriefService(repo, &stubRecordingRepo{rec: rec, transcript: "full hearing text"}, extractor, Logger.New(true))

	b, err := svc.GenerateBrief(context.Background(), rec.ID, false)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if !strings.Contains(b.BriefText, "Republic v. Otieno") {
		t.Errorf("brief text missing case title: %q", b.BriefText)
	}
	if repo.stored == nil {
		t.Error("brief not persisted")
	}
}

func TestGenerateBriefReturnsExistingUnlessForced(t *testing.T) {
	rec := completedRecording()
	repo := &stubBriefRepo{stored: &CaseBrief{ID: uuid.New(), RecordingID: rec.ID, BriefText: "old brief"}}
	extractor := &stubExtractor{fields: map[string]string{"case_title": "New Title"}}
	svc := NewBriefService(repo, &stubRecordingRepo{rec: rec, transcript: "text"}, extractor, Logger.New(true))

	b, err := svc.GenerateBrief(context.Background(), rec.ID, false)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if b.BriefText != "old brief" {
		t.Errorf("expected cached brief, got %q", b.BriefText)
	}
	if extractor.calls != 0 {
		t.Errorf("extractor called %d times without force", extractor.calls)
	}

	forced, err := svc.GenerateBrief(context.Background(), rec.ID, true)
	if err != nil {
		t.Fatalf("forced generate failed: %v", err)
	}
	if !strings.Contains(forced.BriefText, "New Title") {
		t.Errorf("forced brief not regenerated: %q", forced.BriefText)
	}
	if extractor.calls != 1 {
		t.Errorf("extractor calls = %d, want 1", extractor.calls)
	}
}

func TestGenerateBriefRequiresCompletedRecording(t *testing.T) {
	rec := completedRecording()
	rec.Status = recording.RecordingInProgress
	svc := NewBriefService(&stubBriefRepo{}, &stubRecordingRepo{rec: rec}, &stubExtractor{}, Logger.New(true))

	if _, err := svc.GenerateBrief(context.Background(), rec.ID, false); !errors.Is(err, recording.ErrNotReady) {
		t.Errorf("expected ErrNotReady, got %v", err)
	}
}
