package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/courtscribe/courtscribe/internal/domains/recording"
	"github.com/courtscribe/courtscribe/pkg/Logger"
	"github.com/courtscribe/courtscribe/pkg/assets"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

var ErrUnreadableAudio = errors.New("audio could not be decoded")

const DefaultChunkDuration = 120 * time.Second

// Chunker slices a recording's WAV file into fixed-duration chunk assets.
// The final chunk carries whatever remains, however short.
type Chunker struct {
	store    *assets.Store
	duration time.Duration
	logger   *Logger.Logger
}

func NewChunker(store *assets.Store, duration time.Duration, logger *Logger.Logger) *Chunker {
	if duration <= 0 {
		duration = DefaultChunkDuration
	}
	return &Chunker{store: store, duration: duration, logger: logger}
}

// Split decodes the recording's audio and writes one WAV asset per chunk
// under audio_chunks/. It returns chunk rows in index order, not yet
// persisted.
func (c *Chunker) Split(ctx context.Context, rec *recording.Recording) ([]recording.Chunk, error) {
	src, err := c.store.Open(rec.AudioPath)
	if err != nil {
		return nil, fmt.Errorf("open recording audio: %w", err)
	}
	defer src.Close()

	dec := wav.NewDecoder(src)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableAudio, err)
	}
	if buf == nil || buf.Format == nil || len(buf.Data) == 0 {
		return nil, fmt.Errorf("%w: empty pcm stream", ErrUnreadableAudio)
	}

	channels := buf.Format.NumChannels
	if channels <= 0 {
		channels = 1
	}
	samplesPerChunk := int(c.duration.Seconds()) * buf.Format.SampleRate * channels
	if samplesPerChunk <= 0 {
		return nil, fmt.Errorf("%w: invalid sample rate %d", ErrUnreadableAudio, buf.Format.SampleRate)
	}

	bitDepth := buf.SourceBitDepth
	if bitDepth == 0 {
		bitDepth = 16
	}

	var chunks []recording.Chunk
	for start, index := 0, 0; start < len(buf.Data); start, index = start+samplesPerChunk, index+1 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		end := start + samplesPerChunk
		if end > len(buf.Data) {
			end = len(buf.Data)
		}

		path := fmt.Sprintf("audio_chunks/%s_chunk_%d.wav", rec.ID, index)
		if err := c.writeChunk(path, buf, start, end, bitDepth); err != nil {
			return nil, fmt.Errorf("write chunk %d: %w", index, err)
		}
		chunks = append(chunks, recording.NewChunk(rec.ID, index, path))
	}

	c.logger.Infof("split recording %s into %d chunks", rec.ID, len(chunks))
	return chunks, nil
}

func (c *Chunker) writeChunk(path string, buf *audio.IntBuffer, start, end, bitDepth int) error {
	out, err := c.store.Create(path)
	if err != nil {
		return err
	}

	enc := wav.NewEncoder(out, buf.Format.SampleRate, bitDepth, buf.Format.NumChannels, 1)
	part := &audio.IntBuffer{
		Format:         buf.Format,
		Data:           buf.Data[start:end],
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(part); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}
