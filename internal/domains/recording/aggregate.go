package recording

import (
	"sort"
	"strings"
)

// Aggregation is the outcome of evaluating a recording's chunks once a
// chunk reaches a terminal state.
type Aggregation struct {
	// Done is false while any chunk is still pending or processing.
	Done bool
	// Status is the recording status implied by the chunk set.
	Status RecordingStatus
	// Transcript is the index-ordered join of chunk transcripts. Failed
	// chunks leave a gap; consumers key tolerance by chunk index.
	Transcript string
	// Diarized is the index-ordered join of diarized chunk text.
	Diarized string
}

// Aggregate evaluates the finalization rule over a recording's chunks.
// The transcript and diarized segment are assembled by stored per-chunk
// result keyed by index, never by completion order, so concurrent chunk
// workers cannot interleave the output.
//
// A recording only completes when every chunk succeeded; any failed chunk
// makes the recording failed, though the partial transcript is still
// assembled from the chunks that did produce text.
func Aggregate(chunks []Chunk) Aggregation {
	ordered := make([]Chunk, len(chunks))
	copy(ordered, chunks)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Index < ordered[j].Index })

	anyFailed := false
	var transcripts []string
	var diarized []string
	for _, c := range ordered {
		if c.Status.InFlight() {
			return Aggregation{Done: false, Status: RecordingInProgress}
		}
		if c.Status == ChunkFailed {
			anyFailed = true
		}
		if c.TranscriptText != "" {
			transcripts = append(transcripts, c.TranscriptText)
		}
		if c.Status == ChunkDiarized && c.DiarizationText != "" {
			diarized = append(diarized, c.DiarizationText)
		}
	}

	status := RecordingCompleted
	if anyFailed || len(ordered) == 0 {
		status = RecordingFailed
	}

	return Aggregation{
		Done:       true,
		Status:     status,
		Transcript: strings.Join(transcripts, "\n"),
		Diarized:   strings.Join(diarized, "\n"),
	}
}
