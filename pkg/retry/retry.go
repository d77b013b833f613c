package retry

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/courtscribe/courtscribe/pkg/Logger"
)

// ErrExhausted is returned once every attempt has failed.
var ErrExhausted = errors.New("all retry attempts exhausted")

// SleepFunc lets tests observe backoff delays instead of waiting them out.
type SleepFunc func(time.Duration)

// Policy runs an operation up to Attempts times, sleeping Base^attempt
// seconds between failures (1s, 2s, 4s, 8s for Base 2). No sleep follows
// the final attempt.
type Policy struct {
	Attempts int
	Base     float64
	Sleep    SleepFunc
}

func Default() Policy {
	return Policy{Attempts: 5, Base: 2}
}

// Backoff returns the delay applied after a failed attempt (0-based).
func (p Policy) Backoff(attempt int) time.Duration {
	return time.Duration(math.Pow(p.Base, float64(attempt)) * float64(time.Second))
}

// Do invokes fn until it succeeds or attempts run out. Every failure is
// logged with the operation name and attempt number; the final error is
// wrapped in ErrExhausted so callers can collapse all causes uniformly.
func (p Policy) Do(ctx context.Context, logger *Logger.Logger, op string, fn func(ctx context.Context) error) error {
	sleep := p.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	var lastErr error
	for attempt := 0; attempt < p.Attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}

		logger.Errorf("%s attempt %d/%d failed: %v", op, attempt+1, p.Attempts, lastErr)
		if attempt < p.Attempts-1 {
			delay := p.Backoff(attempt)
			logger.Infof("%s retrying in %s", op, delay)
			sleep(delay)
		}
	}

	logger.Errorf("%s: all %d attempts failed", op, p.Attempts)
	return errors.Join(ErrExhausted, lastErr)
}
