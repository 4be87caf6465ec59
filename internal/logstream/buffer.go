package logstream

import (
	"sync"
	"time"
)

// DefaultBufferCapacity bounds the retained log history.
const DefaultBufferCapacity = 1000

// LogEntry is one normalized line from the container log channel.
type LogEntry struct {
	Timestamp time.Time
	Message   string
	Level     string
}

// Buffer is a fixed-capacity ring of log entries. When full, appending
// evicts the oldest entry. Reads return entries oldest first.
type Buffer struct {
	mu       sync.RWMutex
	entries  []LogEntry
	capacity int
	writeIdx int
	count    int
}

// NewBuffer creates a ring buffer. A non-positive capacity falls back to
// DefaultBufferCapacity.
func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultBufferCapacity
	}
	return &Buffer{
		entries:  make([]LogEntry, capacity),
		capacity: capacity,
	}
}

// Append adds an entry, evicting the oldest when the buffer is full.
func (b *Buffer) Append(entry LogEntry) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.entries[b.writeIdx] = entry
	b.writeIdx = (b.writeIdx + 1) % b.capacity
	if b.count < b.capacity {
		b.count++
	}
}

// Len returns the number of retained entries.
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.count
}

// Entries returns a copy of the retained entries, oldest first.
func (b *Buffer) Entries() []LogEntry {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.count == 0 {
		return nil
	}
	result := make([]LogEntry, b.count)
	startIdx := (b.writeIdx - b.count + b.capacity) % b.capacity
	for i := 0; i < b.count; i++ {
		result[i] = b.entries[(startIdx+i)%b.capacity]
	}
	return result
}

// Clear drops all retained entries.
func (b *Buffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.entries = make([]LogEntry, b.capacity)
	b.writeIdx = 0
	b.count = 0
}
