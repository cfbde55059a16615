package mocks

import (
	"sync"

	"github.com/gamecenter/minesweeper/internal/dependencies/random"
)

// MockRandom is a mock implementation of Random for testing.
//
// Intn returns queued values in order and 0 once the queue is drained, so
// an empty mock makes the mine generator fill the first eligible cells in
// row-major order.
type MockRandom struct {
	mu sync.Mutex

	intnResults []int
	intnIndex   int
	intnCalls   []int

	stringResults []string
	stringIndex   int
}

var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a new MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// Intn returns the next queued result, or 0 if none remaining.
// Queued values outside [0, n) are reduced modulo n.
func (r *MockRandom) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.intnCalls = append(r.intnCalls, n)
	if r.intnIndex >= len(r.intnResults) || n <= 0 {
		return 0
	}
	result := r.intnResults[r.intnIndex]
	r.intnIndex++
	return ((result % n) + n) % n
}

// String returns the next queued result, or empty string if none remaining
func (r *MockRandom) String(length int, alphabet string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stringIndex >= len(r.stringResults) {
		return ""
	}
	result := r.stringResults[r.stringIndex]
	r.stringIndex++
	return result
}

// QueueIntn adds values to the Intn result queue
func (r *MockRandom) QueueIntn(values ...int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.intnResults = append(r.intnResults, values...)
}

// QueueString adds values to the String result queue
func (r *MockRandom) QueueString(values ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stringResults = append(r.stringResults, values...)
}

// IntnCalls returns the n argument of every Intn call so far
func (r *MockRandom) IntnCalls() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	calls := make([]int, len(r.intnCalls))
	copy(calls, r.intnCalls)
	return calls
}

// Reset clears all queued results and recorded calls
func (r *MockRandom) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.intnResults = nil
	r.intnIndex = 0
	r.intnCalls = nil
	r.stringResults = nil
	r.stringIndex = 0
}
