package frontend

import (
	"sync"

	"github.com/octobees/nearby-assistant/internal/dto"
)

const (
	// HistoryCapacity is how many turns a client keeps (five exchanges).
	HistoryCapacity = 10
	// HistoryWindow is how many turns are sent with each request.
	HistoryWindow = 5
)

// HistoryStore owns the conversation on the client side. The backend keeps none.
type HistoryStore interface {
	Window(n int) []dto.ChatTurn
	Append(turns ...dto.ChatTurn)
	Len() int
}

// HistoryBuffer is an in-memory HistoryStore trimmed from the oldest end.
type HistoryBuffer struct {
	mu       sync.Mutex
	turns    []dto.ChatTurn
	capacity int
}

// NewHistoryBuffer returns a buffer holding at most capacity turns.
func NewHistoryBuffer(capacity int) *HistoryBuffer {
	if capacity <= 0 {
		capacity = HistoryCapacity
	}
	return &HistoryBuffer{capacity: capacity}
}

// Window returns a copy of the last n turns.
func (b *HistoryBuffer) Window(n int) []dto.ChatTurn {
	b.mu.Lock()
	defer b.mu.Unlock()

	start := 0
	if n >= 0 && len(b.turns) > n {
		start = len(b.turns) - n
	}
	out := make([]dto.ChatTurn, len(b.turns)-start)
	copy(out, b.turns[start:])
	return out
}

// Append adds turns and drops the oldest beyond capacity.
func (b *HistoryBuffer) Append(turns ...dto.ChatTurn) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.turns = append(b.turns, turns...)
	if over := len(b.turns) - b.capacity; over > 0 {
		b.turns = append([]dto.ChatTurn(nil), b.turns[over:]...)
	}
}

// Len reports the number of stored turns.
func (b *HistoryBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.turns)
}
