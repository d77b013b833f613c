package pipeline

import (
	"context"
	"testing"

	"github.com/courtscribe/courtscribe/internal/domains/recording"
)

func TestChunkHappyPath(t *testing.T) {
	m := machineFor(recording.ChunkPending)
	ctx := context.Background()

	for _, ev := range []string{eventStart, eventComplete, eventDiarize} {
		if err := m.advance(ctx, ev); err != nil {
			t.Fatalf("transition %s failed: %v", ev, err)
		}
	}
	if m.status() != recording.ChunkDiarized {
		t.Errorf("expected diarized, got %s", m.status())
	}
}

func TestChunkCannotSkipProcessing(t *testing.T) {
	m := machineFor(recording.ChunkPending)

	if err := m.advance(context.Background(), eventComplete); err == nil {
		t.Error("pending chunk must not jump straight to completed")
	}
	if m.status() != recording.ChunkPending {
		t.Errorf("status should not move on rejected transition, got %s", m.status())
	}
}

func TestFailedIsAbsorbing(t *testing.T) {
	m := machineFor(recording.ChunkProcessing)
	ctx := context.Background()

	if err := m.advance(ctx, eventFail); err != nil {
		t.Fatalf("fail transition rejected: %v", err)
	}
	for _, ev := range []string{eventStart, eventComplete, eventDiarize, eventFail} {
		if err := m.advance(ctx, ev); err == nil {
			t.Errorf("event %s should be rejected from failed", ev)
		}
	}
	if m.status() != recording.ChunkFailed {
		t.Errorf("expected failed, got %s", m.status())
	}
}

func TestFailReachableFromEveryNonTerminalState(t *testing.T) {
	for _, start := range []recording.ChunkStatus{recording.ChunkPending, recording.ChunkProcessing, recording.ChunkCompleted} {
		m := machineFor(start)
		if err := m.advance(context.Background(), eventFail); err != nil {
			t.Errorf("fail from %s rejected: %v", start, err)
		}
	}
}
