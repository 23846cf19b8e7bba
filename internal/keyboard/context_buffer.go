package keyboard

import (
	"strings"
	"sync"
)

const (
	// contextCapacity is the maximum number of completed words retained for
	// context building. The oldest word is evicted when the buffer is full.
	contextCapacity = 50

	// contextWindow is the number of trailing words joined into the context
	// string handed to the correction cascade.
	contextWindow = 5
)

// ContextBuffer is a fixed-capacity FIFO ring of recently completed words.
//
// The segmenter is the only writer; correction pipelines running on their own
// goroutines read concurrently. Reads return consistent snapshots — a reader
// never observes a partially applied push.
type ContextBuffer struct {
	mu       sync.RWMutex
	words    []string
	capacity int
}

// NewContextBuffer returns an empty buffer with the standard capacity of 50.
func NewContextBuffer() *ContextBuffer {
	return &ContextBuffer{
		words:    make([]string, 0, contextCapacity),
		capacity: contextCapacity,
	}
}

// Push appends word, evicting the oldest entry when the buffer is full.
func (b *ContextBuffer) Push(word string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.words = append(b.words, word)
	if len(b.words) > b.capacity {
		// Copy to a fresh backing array so evicted entries do not pin memory.
		fresh := make([]string, b.capacity, b.capacity+1)
		copy(fresh, b.words[len(b.words)-b.capacity:])
		b.words = fresh
	}
}

// ContextString returns the space-joined trailing window of the buffer
// (up to 5 words, oldest first). Returns "" when the buffer is empty.
func (b *ContextBuffer) ContextString() string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	start := len(b.words) - contextWindow
	if start < 0 {
		start = 0
	}
	return strings.Join(b.words[start:], " ")
}

// Len returns the number of words currently held.
func (b *ContextBuffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.words)
}

// Words returns a snapshot copy of the full buffer contents in order.
// Intended for testing and debugging.
func (b *ContextBuffer) Words() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]string, len(b.words))
	copy(out, b.words)
	return out
}
