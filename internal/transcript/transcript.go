// Package transcript holds the ordered turns of one conversation.
package transcript

import (
	"sync"

	"tanya-chat/internal/types"
)

// Transcript is append-only between resets. Reads return copies so callers
// never observe later appends.
type Transcript struct {
	mu       sync.RWMutex
	turns    []types.Turn
	maxTurns int
}

// New returns an empty transcript. maxTurns <= 0 keeps every turn.
func New(maxTurns int) *Transcript {
	return &Transcript{maxTurns: maxTurns}
}

func (t *Transcript) Append(turn types.Turn) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.turns = append(t.turns, turn)
	t.trimLocked()
}

func (t *Transcript) Turns() []types.Turn {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]types.Turn, len(t.turns))
	copy(out, t.turns)
	return out
}

// Contents returns the transcript in wire form.
func (t *Transcript) Contents() []types.Content {
	return types.ToContents(t.Turns())
}

func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.turns)
}

// Reset drops every turn and, when seed is non-nil, starts over with it.
func (t *Transcript) Reset(seed *types.Turn) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.turns = nil
	if seed != nil {
		t.turns = append(t.turns, *seed)
	}
}

func (t *Transcript) trimLocked() {
	if t.maxTurns <= 0 {
		return
	}
	if len(t.turns) > t.maxTurns {
		t.turns = append([]types.Turn(nil), t.turns[len(t.turns)-t.maxTurns:]...)
	}
}
