package pipeline

import (
	"context"
	"fmt"

	"github.com/courtscribe/courtscribe/internal/domains/recording"
	"github.com/looplab/fsm"
)

// Chunk transition events. failed is absorbing: no event leaves it.
const (
	eventStart    = "start"
	eventComplete = "complete"
	eventDiarize  = "diarize"
	eventFail     = "fail"
)

// chunkMachine guards the per-chunk status progression so a handler can
// never skip a state or resurrect a failed chunk.
type chunkMachine struct {
	fsm *fsm.FSM
}

func machineFor(status recording.ChunkStatus) *chunkMachine {
	return &chunkMachine{
		fsm: fsm.NewFSM(
			string(status),
			fsm.Events{
				{Name: eventStart, Src: []string{string(recording.ChunkPending)}, Dst: string(recording.ChunkProcessing)},
				{Name: eventComplete, Src: []string{string(recording.ChunkProcessing)}, Dst: string(recording.ChunkCompleted)},
				{Name: eventDiarize, Src: []string{string(recording.ChunkCompleted)}, Dst: string(recording.ChunkDiarized)},
				{Name: eventFail, Src: []string{
					string(recording.ChunkPending),
					string(recording.ChunkProcessing),
					string(recording.ChunkCompleted),
				}, Dst: string(recording.ChunkFailed)},
			},
			fsm.Callbacks{},
		),
	}
}

func (m *chunkMachine) advance(ctx context.Context, event string) error {
	if err := m.fsm.Event(ctx, event); err != nil {
		return fmt.Errorf("invalid chunk transition %q from %s: %w", event, m.fsm.Current(), err)
	}
	return nil
}

func (m *chunkMachine) status() recording.ChunkStatus {
	return recording.ChunkStatus(m.fsm.Current())
}
