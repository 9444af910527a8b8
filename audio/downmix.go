// SPDX-License-Identifier: EPL-2.0

package audio

import "fmt"

// Downmixer folds a multi-channel Source to mono by averaging the channels
// of each frame. Emitters are point sources, so every track is reduced to a
// single channel before it reaches the spatial stage.
type Downmixer struct {
	src Source
	tmp []float32
}

func NewDownmixer(src Source) *Downmixer {
	return &Downmixer{src: src}
}

func (m *Downmixer) SampleRate() int { return m.src.SampleRate() }
func (m *Downmixer) Channels() int   { return 1 }

func (m *Downmixer) Close() error {
	if err := m.src.Close(); err != nil {
		return fmt.Errorf("closing downmix source: %w", err)
	}
	return nil
}

// ReadSamples fills dst with mono frames.
func (m *Downmixer) ReadSamples(dst []float32) (int, error) {
	channels := m.src.Channels()
	if channels <= 1 || len(dst) == 0 {
		return m.src.ReadSamples(dst)
	}

	need := len(dst) * channels
	if cap(m.tmp) < need {
		m.tmp = make([]float32, need)
	}
	m.tmp = m.tmp[:need]

	n, err := m.src.ReadSamples(m.tmp)
	frames := n / channels
	scale := 1 / float32(channels)

	for f := range frames {
		var sum float32
		for _, s := range m.tmp[f*channels : (f+1)*channels] {
			sum += s
		}
		dst[f] = sum * scale
	}

	return frames, err
}
