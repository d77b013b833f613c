package diarize

import (
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/courtscribe/courtscribe/pkg/Logger"
	"github.com/courtscribe/courtscribe/pkg/assets"
	"github.com/courtscribe/courtscribe/pkg/retry"
	"github.com/courtscribe/courtscribe/pkg/stt"
)

// Client produces speaker-attributed text for an audio asset. Alignment
// needs both the turns and a transcript, so each attempt runs diarization,
// transcription and alignment as one unit; a failure in any sub-step fails
// the attempt and is retried with backoff.
type Client struct {
	diarizer    Diarizer
	transcriber stt.Transcriber
	store       *assets.Store
	policy      retry.Policy
	logger      *Logger.Logger
}

func NewClient(diarizer Diarizer, transcriber stt.Transcriber, store *assets.Store, policy retry.Policy, logger *Logger.Logger) *Client {
	return &Client{
		diarizer:    diarizer,
		transcriber: transcriber,
		store:       store,
		policy:      policy,
		logger:      logger,
	}
}

// DiarizeAsset returns the aligned speaker blocks for the asset at
// assetPath, or ErrNoResult once retries are exhausted. Sub-step failures
// are distinguished in the logs only; callers see a single sentinel.
func (c *Client) DiarizeAsset(ctx context.Context, assetPath string) ([]SpeakerBlock, error) {
	var blocks []SpeakerBlock
	err := c.policy.Do(ctx, c.logger, fmt.Sprintf("diarize %s", assetPath), func(ctx context.Context) error {
		f, err := c.store.Open(assetPath)
		if err != nil {
			return fmt.Errorf("asset fetch failed: %w", err)
		}
		turns, err := c.diarizer.Diarize(ctx, f, path.Base(assetPath))
		f.Close()
		if err != nil {
			return fmt.Errorf("diarization call failed: %w", err)
		}

		f, err = c.store.Open(assetPath)
		if err != nil {
			return fmt.Errorf("asset fetch failed: %w", err)
		}
		transcript, err := c.transcriber.Transcribe(ctx, f, path.Base(assetPath))
		f.Close()
		if err != nil {
			return fmt.Errorf("transcription for alignment failed: %w", err)
		}
		if transcript == "" {
			return errors.New("no transcript available for alignment")
		}

		aligned, err := Align(turns, transcript)
		if err != nil {
			return fmt.Errorf("alignment failed: %w", err)
		}
		blocks = aligned
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, ErrNoResult
	}

	c.logger.Infof("diarization completed for asset %s (%d speaker blocks)", assetPath, len(blocks))
	return blocks, nil
}
