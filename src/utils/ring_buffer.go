package utils

import (
	"sync"

	"sleep-observer/src/models"
)

// DefaultHistoryCapacity is used when a non-positive capacity is requested.
const DefaultHistoryCapacity = 256

// -----------------------------------------------------------------------------
// SnapshotHistory is a fixed-size circular buffer of stamped snapshots.
// True ring buffer - no resizing allowed except through Resize.
// -----------------------------------------------------------------------------

type SnapshotHistory struct {
	mu       sync.RWMutex
	data     []models.MSnapshotRecord
	capacity int
	index    int // Next write position
	size     int // Current number of elements
}

// -----------------------------------------------------------------------------

// NewSnapshotHistory creates a new buffer with fixed capacity
func NewSnapshotHistory(capacity int) *SnapshotHistory {
	if capacity <= 0 {
		capacity = DefaultHistoryCapacity
	}

	return &SnapshotHistory{
		data:     make([]models.MSnapshotRecord, capacity),
		capacity: capacity,
	}
}

// -----------------------------------------------------------------------------

// Append stores a deep copy of the record, overwriting the oldest when full.
func (rb *SnapshotHistory) Append(rec models.MSnapshotRecord) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	rec.Snapshot = rec.Snapshot.Clone()
	rb.data[rb.index] = rec
	rb.index = (rb.index + 1) % rb.capacity

	if rb.size < rb.capacity {
		rb.size++
	}
}

// -----------------------------------------------------------------------------

// GetLatest returns the n newest records, oldest first.
func (rb *SnapshotHistory) GetLatest(n int) []models.MSnapshotRecord {
	rb.mu.RLock()
	defer rb.mu.RUnlock()

	if rb.size == 0 || n <= 0 {
		return []models.MSnapshotRecord{}
	}

	count := min(n, rb.size)
	result := make([]models.MSnapshotRecord, count)

	// Latest data is at index-1
	startIdx := (rb.index - count + rb.capacity) % rb.capacity
	for i := range count {
		rec := rb.data[(startIdx+i)%rb.capacity]
		rec.Snapshot = rec.Snapshot.Clone()
		result[i] = rec
	}

	return result
}

// -----------------------------------------------------------------------------

// GetAll returns all data in insertion order (oldest to newest)
func (rb *SnapshotHistory) GetAll() []models.MSnapshotRecord {
	return rb.GetLatest(rb.Capacity())
}

// -----------------------------------------------------------------------------

// Size returns current number of elements
func (rb *SnapshotHistory) Size() int {
	rb.mu.RLock()
	defer rb.mu.RUnlock()
	return rb.size
}

// -----------------------------------------------------------------------------

// Capacity returns buffer capacity
func (rb *SnapshotHistory) Capacity() int {
	rb.mu.RLock()
	defer rb.mu.RUnlock()
	return rb.capacity
}

// -----------------------------------------------------------------------------

// Resize changes the capacity of the buffer
// If newCapacity < size, oldest data is dropped
func (rb *SnapshotHistory) Resize(newCapacity int) {
	if newCapacity <= 0 {
		return
	}
	rb.mu.Lock()
	defer rb.mu.Unlock()
	if newCapacity == rb.capacity {
		return
	}

	count := min(rb.size, newCapacity)
	newData := make([]models.MSnapshotRecord, newCapacity)

	// Copy the newest 'count' items
	startIdx := (rb.index - count + rb.capacity) % rb.capacity
	for i := range count {
		newData[i] = rb.data[(startIdx+i)%rb.capacity]
	}

	rb.data = newData
	rb.capacity = newCapacity
	rb.size = count
	rb.index = count % newCapacity
}

// -----------------------------------------------------------------------------

// Clear resets the buffer
func (rb *SnapshotHistory) Clear() {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	clear(rb.data)
	rb.index = 0
	rb.size = 0
}
