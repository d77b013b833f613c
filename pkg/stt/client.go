package stt

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/courtscribe/courtscribe/pkg/Logger"
	"github.com/courtscribe/courtscribe/pkg/assets"
	"github.com/courtscribe/courtscribe/pkg/retry"
)

// Client retries transcription attempts with exponential backoff. Each
// attempt re-opens the asset so the full byte stream is sent every time.
type Client struct {
	inner  Transcriber
	store  *assets.Store
	policy retry.Policy
	logger *Logger.Logger
}

func NewClient(inner Transcriber, store *assets.Store, policy retry.Policy, logger *Logger.Logger) *Client {
	return &Client{
		inner:  inner,
		store:  store,
		policy: policy,
		logger: logger,
	}
}

// TranscribeAsset transcribes the stored audio asset at assetPath. On
// definitive failure it returns ErrNoResult so callers apply uniform
// failure handling; the underlying causes are only logged.
func (c *Client) TranscribeAsset(ctx context.Context, assetPath string) (string, error) {
	// A missing asset never heals between attempts.
	probe, err := c.store.Open(assetPath)
	if err != nil {
		if errors.Is(err, assets.ErrAssetNotFound) {
			c.logger.Errorf("transcription aborted, asset missing: %s", assetPath)
			return "", ErrNoResult
		}
		c.logger.Errorf("transcription aborted, cannot read asset %s: %v", assetPath, err)
		return "", ErrNoResult
	}
	probe.Close()

	var text string
	err = c.policy.Do(ctx, c.logger, fmt.Sprintf("transcribe %s", assetPath), func(ctx context.Context) error {
		f, err := c.store.Open(assetPath)
		if err != nil {
			return err
		}
		defer f.Close()

		out, err := c.inner.Transcribe(ctx, f, path.Base(assetPath))
		if err != nil {
			return err
		}
		if strings.TrimSpace(out) == "" {
			return errors.New("service returned empty transcript")
		}
		text = out
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", ErrNoResult
	}

	c.logger.Infof("transcription completed for asset %s (%d chars)", assetPath, len(text))
	return text, nil
}
