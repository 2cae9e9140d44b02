package cache

import "market-pulse/src/models"

// -----------------------------------------------------------------------------

// RingBuffer is a fixed-capacity circular buffer of series points. When full,
// appending overwrites the oldest entry. Not safe for concurrent use; the
// owning cache serializes access.
type RingBuffer struct {
	data     []models.MSeriesPoint
	index    int // next write position
	size     int
	capacity int
}

// -----------------------------------------------------------------------------

func NewRingBuffer(capacity int) *RingBuffer {
	if capacity <= 0 {
		capacity = 1
	}
	return &RingBuffer{
		data:     make([]models.MSeriesPoint, capacity),
		capacity: capacity,
	}
}

// -----------------------------------------------------------------------------

// Append adds a point, evicting the oldest when full.
func (rb *RingBuffer) Append(p models.MSeriesPoint) {
	rb.data[rb.index] = p
	rb.index = (rb.index + 1) % rb.capacity
	if rb.size < rb.capacity {
		rb.size++
	}
}

// -----------------------------------------------------------------------------

// ReplaceLast overwrites the most recently appended point.
func (rb *RingBuffer) ReplaceLast(p models.MSeriesPoint) {
	if rb.size == 0 {
		rb.Append(p)
		return
	}
	last := (rb.index - 1 + rb.capacity) % rb.capacity
	rb.data[last] = p
}

// -----------------------------------------------------------------------------

// Last returns the most recent point.
func (rb *RingBuffer) Last() (models.MSeriesPoint, bool) {
	if rb.size == 0 {
		return models.MSeriesPoint{}, false
	}
	last := (rb.index - 1 + rb.capacity) % rb.capacity
	return rb.data[last], true
}

// -----------------------------------------------------------------------------

// GetAll returns the buffered points oldest-first as a fresh slice.
func (rb *RingBuffer) GetAll() []models.MSeriesPoint {
	if rb.size == 0 {
		return nil
	}

	start := 0
	if rb.size == rb.capacity {
		start = rb.index
	}

	out := make([]models.MSeriesPoint, rb.size)
	for i := 0; i < rb.size; i++ {
		out[i] = rb.data[(start+i)%rb.capacity]
	}
	return out
}

// -----------------------------------------------------------------------------

// Size returns the current number of elements.
func (rb *RingBuffer) Size() int { return rb.size }

// Capacity returns the fixed buffer capacity.
func (rb *RingBuffer) Capacity() int { return rb.capacity }

// -----------------------------------------------------------------------------

// Clear resets the buffer.
func (rb *RingBuffer) Clear() {
	rb.index = 0
	rb.size = 0
}
