// SPDX-License-Identifier: EPL-2.0

package output

import (
	"fmt"
	"sync"
	"time"

	ebitaudio "github.com/hajimehoshi/ebiten/v2/audio"
)

var (
	contextOnce sync.Once
	audioCtx    *ebitaudio.Context
	contextRate int
)

// sharedContext returns the process wide audio context. ebiten allows a
// single context, so every later call must ask for the same rate.
func sharedContext(sampleRate int) (*ebitaudio.Context, error) {
	contextOnce.Do(func() {
		contextRate = sampleRate
		audioCtx = ebitaudio.NewContext(sampleRate)
	})
	if contextRate != sampleRate {
		return nil, fmt.Errorf("%w: context runs at %d Hz, requested %d Hz", ErrRateInUse, contextRate, sampleRate)
	}
	return audioCtx, nil
}

// Player streams a Source to the default output device.
type Player struct {
	player *ebitaudio.Player
	reader *StreamReader
}

// NewPlayer opens a paused stream pulling from source at sampleRate.
func NewPlayer(sampleRate int, source Source, buffer time.Duration) (*Player, error) {
	ctx, err := sharedContext(sampleRate)
	if err != nil {
		return nil, err
	}

	reader := NewStreamReader(source)
	pl, err := ctx.NewPlayerF32(reader)
	if err != nil {
		return nil, fmt.Errorf("opening output: %w", err)
	}
	if buffer > 0 {
		pl.SetBufferSize(buffer)
	}

	return &Player{player: pl, reader: reader}, nil
}

func (p *Player) Play()           { p.player.Play() }
func (p *Player) Pause()          { p.player.Pause() }
func (p *Player) IsPlaying() bool { return p.player.IsPlaying() }

// Position is what the device has actually played.
func (p *Player) Position() time.Duration { return p.player.Position() }

// Rendered is the number of frames pulled from the source.
func (p *Player) Rendered() int64 { return p.reader.Frames() }

func (p *Player) Close() error {
	p.player.Pause()
	if err := p.player.Close(); err != nil {
		return fmt.Errorf("closing output: %w", err)
	}
	return p.reader.Close()
}
