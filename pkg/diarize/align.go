package diarize

import (
	"errors"
	"fmt"
	"strings"
)

// ErrZeroTimeline means the diarized timeline had no extent, so words
// cannot be distributed proportionally.
var ErrZeroTimeline = errors.New("diarization timeline has zero duration")

// SpeakerBlock is one run of consecutive same-speaker turns with the
// transcript words assigned to them.
type SpeakerBlock struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

// Align distributes the flat transcript across turns proportionally to each
// turn's share of the overall timeline, merging consecutive turns by the
// same speaker into one block.
//
// Word counts are floored, so trailing words past the last turn's share are
// dropped rather than appended. The loss is bounded below one word per turn.
func Align(turns []Turn, transcript string) ([]SpeakerBlock, error) {
	if len(turns) == 0 {
		return nil, ErrZeroTimeline
	}

	// Extent of the whole timeline, not the sum of turn durations.
	total := turns[len(turns)-1].End - turns[0].Start
	if total <= 0 {
		return nil, ErrZeroTimeline
	}

	words := strings.Fields(transcript)
	cursor := 0

	var blocks []SpeakerBlock
	var current strings.Builder
	currentSpeaker := ""
	open := false

	flush := func() {
		blocks = append(blocks, SpeakerBlock{Speaker: currentSpeaker, Text: current.String()})
		current.Reset()
	}

	for _, turn := range turns {
		count := int(float64(len(words)) * (turn.Duration() / total))
		end := cursor + count
		if end > len(words) {
			end = len(words)
		}
		segment := strings.Join(words[cursor:end], " ")
		cursor = end

		if open && turn.Speaker == currentSpeaker {
			if current.Len() > 0 && segment != "" {
				current.WriteString(" ")
			}
			current.WriteString(segment)
			continue
		}
		if open {
			flush()
		}
		currentSpeaker = turn.Speaker
		current.WriteString(segment)
		open = true
	}
	if open {
		flush()
	}

	return blocks, nil
}

// FormatBlocks renders blocks as display text with generic sequential
// labels. Labels follow block order, not stable speaker identity, so the
// same voice may get a different number in another chunk.
func FormatBlocks(blocks []SpeakerBlock) string {
	var b strings.Builder
	for i, block := range blocks {
		b.WriteString(fmt.Sprintf("Speaker %d: %s\n\n", i+1, block.Text))
	}
	return b.String()
}
