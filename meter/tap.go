// SPDX-License-Identifier: EPL-2.0

package meter

import "sync"

// DefaultWindow is the analysis window in samples.
const DefaultWindow = 2048

// Tap keeps the most recent samples of a mono signal. Write is called from
// the audio thread; Snapshot from anywhere.
type Tap struct {
	mu      sync.Mutex
	ring    []float32
	pos     int
	written int64
}

// NewTap creates a tap holding size samples. size <= 0 uses DefaultWindow.
func NewTap(size int) *Tap {
	if size <= 0 {
		size = DefaultWindow
	}
	return &Tap{ring: make([]float32, size)}
}

func (t *Tap) Size() int { return len(t.ring) }

// Write appends samples, overwriting the oldest once full.
func (t *Tap) Write(samples []float32) {
	t.mu.Lock()
	n := len(t.ring)
	if len(samples) > n {
		samples = samples[len(samples)-n:]
	}
	for _, v := range samples {
		t.ring[t.pos] = v
		t.pos = (t.pos + 1) % n
	}
	t.written += int64(len(samples))
	t.mu.Unlock()
}

// Snapshot copies the newest samples, oldest first, into dst and returns
// how many were copied. Fewer than len(dst) are copied while the tap is
// still filling.
func (t *Tap) Snapshot(dst []float64) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	size := len(t.ring)
	n := min(len(dst), size)
	if t.written < int64(n) {
		n = int(t.written)
	}

	start := (t.pos - n + size) % size
	for i := range n {
		dst[i] = float64(t.ring[(start+i)%size])
	}
	return n
}

// Reset forgets everything written so far.
func (t *Tap) Reset() {
	t.mu.Lock()
	clear(t.ring)
	t.pos = 0
	t.written = 0
	t.mu.Unlock()
}
