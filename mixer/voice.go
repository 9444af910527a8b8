// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"sync"
	"time"

	"github.com/ik5/spatialpbx/playback"
)

// Voice is a decoded mono track held in memory. Its media clock advances
// only while it is playing and connected to a Bus.
type Voice struct {
	mu      sync.Mutex
	samples []float32
	frames  int
	rate    int
	pos     int
	playing bool
	closed  bool

	lead      int
	notify    func(playback.Trigger)
	nearFired bool
	endFired  bool
}

var _ playback.Resource = (*Voice)(nil)

// NewVoice wraps mono samples at rate Hz.
func NewVoice(samples []float32, rate int) *Voice {
	return &Voice{samples: samples, frames: len(samples), rate: rate}
}

func (v *Voice) SampleRate() int { return v.rate }

func (v *Voice) Play() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return ErrVoiceClosed
	}
	if v.pos < v.frames {
		v.playing = true
	}
	return nil
}

func (v *Voice) Pause() {
	v.mu.Lock()
	v.playing = false
	v.mu.Unlock()
}

func (v *Voice) Playing() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.playing
}

func (v *Voice) Duration() time.Duration { return v.toDuration(v.frames) }

func (v *Voice) Position() time.Duration {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.toDuration(v.pos)
}

func (v *Voice) Ended() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.pos >= v.frames
}

// Watch arms the near-end and end triggers. The near-end trigger is
// re-armed by each call; the end trigger fires at most once per voice.
func (v *Voice) Watch(lead time.Duration, fn func(playback.Trigger)) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.lead = int(lead.Seconds() * float64(v.rate))
	v.notify = fn
	v.nearFired = false
}

// Seek moves the playhead, clamped to the track. Triggers fire on the next
// read that crosses them.
func (v *Voice) Seek(pos time.Duration) {
	v.mu.Lock()
	defer v.mu.Unlock()

	f := int(pos.Seconds() * float64(v.rate))
	v.pos = min(max(f, 0), v.frames)
}

func (v *Voice) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.closed = true
	v.playing = false
	v.samples = nil
	v.notify = nil
	return nil
}

// read copies the next frames into dst and returns how many were written.
// done reports that this call played the voice out. It runs on the audio
// thread.
func (v *Voice) read(dst []float32) (n int, done bool) {
	v.mu.Lock()
	if !v.playing || v.closed {
		v.mu.Unlock()
		return 0, false
	}

	n = copy(dst, v.samples[v.pos:])
	v.pos += n

	var fire [2]playback.Trigger
	count := 0
	if v.notify != nil && !v.nearFired && v.frames-v.pos <= v.lead {
		v.nearFired = true
		fire[count] = playback.NearEnd
		count++
	}
	if v.pos >= v.frames {
		v.playing = false
		done = true
		if v.notify != nil && !v.endFired {
			v.endFired = true
			fire[count] = playback.End
			count++
		}
	}
	fn := v.notify
	v.mu.Unlock()

	for _, t := range fire[:count] {
		fn(t)
	}
	return n, done
}

func (v *Voice) toDuration(frames int) time.Duration {
	if v.rate <= 0 {
		return 0
	}
	return time.Duration(float64(frames) / float64(v.rate) * float64(time.Second))
}
