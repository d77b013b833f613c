package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/courtscribe/courtscribe/pkg/Logger"
)

func TestDoStopsAfterAttempts(t *testing.T) {
	var delays []time.Duration
	p := Policy{
		Attempts: 5,
		Base:     2,
		Sleep:    func(d time.Duration) { delays = append(delays, d) },
	}

	calls := 0
	err := p.Do(context.Background(), Logger.New(true), "transcription", func(ctx context.Context) error {
		calls++
		return errors.New("service unavailable")
	})

	if !errors.Is(err, ErrExhausted) {
		t.Errorf("expected ErrExhausted, got %v", err)
	}
	if calls != 5 {
		t.Errorf("expected 5 attempts, got %d", calls)
	}

	// Backoff after attempts 0..3 only: 2^0, 2^1, 2^2, 2^3 seconds.
	want := []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second}
	if len(delays) != len(want) {
		t.Fatalf("expected %d sleeps, got %d", len(want), len(delays))
	}
	var total time.Duration
	for i, d := range delays {
		if d != want[i] {
			t.Errorf("sleep %d: expected %s, got %s", i, want[i], d)
		}
		total += d
	}
	if total != 15*time.Second {
		t.Errorf("expected 15s total wait, got %s", total)
	}
}

func TestDoSucceedsMidway(t *testing.T) {
	p := Policy{Attempts: 5, Base: 2, Sleep: func(time.Duration) {}}

	calls := 0
	err := p.Do(context.Background(), Logger.New(true), "diarization", func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})

	if err != nil {
		t.Errorf("expected success, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 attempts, got %d", calls)
	}
}

func TestDoRespectsContext(t *testing.T) {
	p := Policy{Attempts: 5, Base: 2, Sleep: func(time.Duration) {}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.Do(ctx, Logger.New(true), "transcription", func(ctx context.Context) error {
		t.Error("fn should not run after cancellation")
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
