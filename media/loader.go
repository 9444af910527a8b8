// SPDX-License-Identifier: EPL-2.0

package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/ik5/spatialpbx/assign"
	"github.com/ik5/spatialpbx/audio"
	"github.com/ik5/spatialpbx/mixer"
	"github.com/ik5/spatialpbx/playback"
)

const readChunk = 16384

// Loader decodes assigned media into mono voices at the bus rate.
type Loader struct {
	assignment *assign.Assignment
	registry   *audio.Registry
	rate       int
	log        *slog.Logger
}

var _ playback.Loader = (*Loader)(nil)

type Option func(*Loader)

func WithLogger(l *slog.Logger) Option {
	return func(ld *Loader) {
		if l != nil {
			ld.log = l
		}
	}
}

// NewLoader creates a loader for a. A nil registry uses DefaultRegistry.
func NewLoader(a *assign.Assignment, reg *audio.Registry, rate int, opts ...Option) *Loader {
	if reg == nil {
		reg = DefaultRegistry()
	}
	l := &Loader{assignment: a, registry: reg, rate: rate, log: slog.Default()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load decodes the media assigned to (emitter, track) in full.
func (l *Loader) Load(ctx context.Context, emitter, track int) (playback.Resource, error) {
	m, err := l.assignment.Media(emitter, track)
	if err != nil {
		return nil, err
	}

	dec, err := l.registry.ForPath(m.Name())
	if err != nil {
		return nil, err
	}

	rc, err := m.Open()
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", m.Name(), err)
	}
	defer rc.Close()

	started := time.Now()
	src, err := dec.Decode(rc)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", m.Name(), err)
	}

	samples, err := l.Decode(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", m.Name(), err)
	}

	l.log.Debug("track decoded",
		"emitter", emitter, "track", track, "media", m.Name(),
		"seconds", float64(len(samples))/float64(l.rate), "took", time.Since(started))

	return mixer.NewVoice(samples, l.rate), nil
}

// Decode reads src to the end as mono at the loader rate and closes it.
func (l *Loader) Decode(ctx context.Context, src audio.Source) ([]float32, error) {
	var hint int64
	if s, ok := src.(audio.Sized); ok && s.Frames() > 0 && src.SampleRate() > 0 {
		hint = s.Frames() * int64(l.rate) / int64(src.SampleRate())
	}

	var chain audio.Source = src
	if src.Channels() > 1 {
		chain = audio.NewDownmixer(chain)
	}
	if src.SampleRate() != l.rate {
		chain = audio.NewResampler(chain, l.rate)
	}
	defer chain.Close()

	out := make([]float32, 0, hint+1)
	buf := make([]float32, readChunk)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		n, err := chain.ReadSamples(buf)
		out = append(out, buf[:n]...)
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
	}
}
