// SPDX-License-Identifier: EPL-2.0

package meter

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/floats"
)

const (
	// FloorDB maps to a level of 0.
	FloorDB = -60.0
	// epsilon keeps log10 finite on digital silence.
	epsilon = 1e-10
)

// Normalize converts an RMS amplitude to a level in [0, 1], mapping
// [FloorDB, 0] dBFS linearly.
func Normalize(rms float64) float64 {
	db := 20 * math.Log10(rms+epsilon)
	return min(max((db-FloorDB)/-FloorDB, 0), 1)
}

// RMS is the root-mean-square of x, 0 for an empty slice.
func RMS(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return math.Sqrt(floats.Dot(x, x) / float64(len(x)))
}

// Meter reduces a tap to a single intensity value.
type Meter struct {
	mu     sync.Mutex
	tap    *Tap
	window []float64
}

type Option func(*Meter)

// WithWindow sets the number of samples analysed per reading.
func WithWindow(n int) Option {
	return func(m *Meter) {
		if n > 0 {
			m.window = make([]float64, n)
		}
	}
}

// New creates a meter over tap. A nil tap always reads 0.
func New(tap *Tap, opts ...Option) *Meter {
	m := &Meter{tap: tap}
	for _, opt := range opts {
		opt(m)
	}
	if m.window == nil {
		size := DefaultWindow
		if tap != nil {
			size = tap.Size()
		}
		m.window = make([]float64, size)
	}
	return m
}

// Level returns the current loudness in [0, 1]. It is 0 until the tap has
// seen any signal.
func (m *Meter) Level() float64 {
	if m == nil || m.tap == nil {
		return 0
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	n := m.tap.Snapshot(m.window)
	if n == 0 {
		return 0
	}
	return Normalize(RMS(m.window[:n]))
}
