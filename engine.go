// SPDX-License-Identifier: EPL-2.0

package spatialpbx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/ik5/spatialpbx/assign"
	"github.com/ik5/spatialpbx/config"
	"github.com/ik5/spatialpbx/formats/wav"
	"github.com/ik5/spatialpbx/listener"
	"github.com/ik5/spatialpbx/media"
	"github.com/ik5/spatialpbx/mixer"
	"github.com/ik5/spatialpbx/playback"
	"github.com/ik5/spatialpbx/spatial"
)

// Engine runs one installation: the listener walk on the simulation clock,
// the track scheduler on the media clock, and the bus that joins them.
//
// Tick is meant to be called from a single goroutine at the configured tick
// rate. The lifecycle commands and queries may be called from any goroutine.
type Engine struct {
	cfg   config.Config
	log   *slog.Logger
	field *spatial.Field
	bus   *mixer.Bus
	sched *playback.Scheduler

	// ctx ends with Destroy.
	ctx    context.Context
	cancel context.CancelFunc

	mu  sync.Mutex
	sim *listener.Simulation
	// last is the listener state after the latest tick.
	last listener.State
}

// New builds an engine for cfg. Nothing is loaded until Load.
func New(cfg config.Config, loader playback.Loader, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if loader == nil {
		return nil, fmt.Errorf("%w: no track loader", ErrInvalidEngine)
	}

	o := options{log: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rng == nil {
		seed := cfg.Listener.Seed
		if seed == 0 {
			seed = rand.Uint64()
		}
		o.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}

	field := cfg.Field()
	bus := mixer.NewBus(cfg.Audio.SampleRate, field,
		mixer.WithLogger(o.log),
		mixer.WithMasterGain(cfg.Audio.MasterGain))

	sim, err := listener.New(cfg.WalkBoundaries(), o.rng, listener.WithParams(cfg.ListenerParams()))
	if err != nil {
		return nil, err
	}

	schedOpts := []playback.Option{
		playback.WithLogger(o.log),
		playback.WithLeadTime(cfg.Playback.LeadTime),
		playback.WithRetryInterval(cfg.Playback.RetryInterval),
		playback.WithLoadConcurrency(cfg.Playback.LoadConcurrency),
	}
	sched, err := playback.NewScheduler(cfg.Emitters, cfg.Tracks, loader, bus, append(schedOpts, o.playback...)...)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	e := &Engine{
		cfg:    cfg,
		log:    o.log,
		field:  field,
		bus:    bus,
		sched:  sched,
		ctx:    ctx,
		cancel: cancel,
		sim:    sim,
		last:   sim.State(),
	}
	bus.SetListener(e.last.Pose())

	return e, nil
}

// NewFromDir builds an engine whose tracks are the files in dir, named
// "<emitter>.<track> ..." as described by assign.ParseName.
func NewFromDir(cfg config.Config, dir string, opts ...Option) (*Engine, error) {
	a, err := assign.FromDir(cfg.Emitters, cfg.Tracks, dir)
	if err != nil {
		return nil, err
	}

	o := options{log: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	loader := media.NewLoader(a, nil, cfg.Audio.SampleRate, media.WithLogger(o.log))

	return New(cfg, loader, opts...)
}

func (e *Engine) Config() config.Config          { return e.cfg }
func (e *Engine) Field() *spatial.Field          { return e.field }
func (e *Engine) Bus() *mixer.Bus                { return e.bus }
func (e *Engine) Scheduler() *playback.Scheduler { return e.sched }
func (e *Engine) Emitters() []spatial.Emitter    { return e.field.Emitters() }

// Load decodes the configured start track for every emitter. Playback
// stays paused until Start.
func (e *Engine) Load(ctx context.Context) error {
	if err := e.sched.Initialize(ctx, e.cfg.Playback.StartTrack); err != nil {
		return fmt.Errorf("loading track %d: %w", e.cfg.Playback.StartTrack, err)
	}
	return nil
}

// Start begins audible playback. Load must have succeeded.
func (e *Engine) Start() error {
	if err := e.sched.Play(); err != nil {
		return fmt.Errorf("starting playback: %w", err)
	}
	e.log.Info("playback started", "track", e.sched.Track())
	return nil
}

// Pause silences every emitter. The listener keeps moving.
func (e *Engine) Pause() error {
	if err := e.sched.Pause(); err != nil {
		return fmt.Errorf("pausing playback: %w", err)
	}
	return nil
}

// Resume continues after Pause.
func (e *Engine) Resume() error {
	if err := e.sched.Play(); err != nil {
		return fmt.Errorf("resuming playback: %w", err)
	}
	return nil
}

// Paused reports whether playback is currently held.
func (e *Engine) Paused() bool { return e.sched.Paused() }

// Skip moves every emitter to the next track now.
func (e *Engine) Skip(ctx context.Context) error {
	if err := e.sched.Advance(ctx); err != nil {
		return fmt.Errorf("skipping track: %w", err)
	}
	e.log.Info("track skipped", "track", e.sched.Track())
	return nil
}

// Destroy releases every track and closes the bus. It is idempotent.
func (e *Engine) Destroy() error {
	e.cancel()
	return errors.Join(e.sched.Destroy(), e.bus.Close())
}

// Tick advances the simulation clock by one step: the listener moves,
// the bus hears it from the new pose, and queued media clock events are
// applied.
func (e *Engine) Tick(in listener.Input) listener.State {
	e.mu.Lock()
	st := e.sim.Step(in)
	e.last = st
	e.mu.Unlock()

	e.bus.SetListener(st.Pose())
	e.sched.Process(e.ctx)

	return st
}

// State is the listener after the latest tick.
func (e *Engine) State() listener.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.last
}

// Pose is the listener position and heading after the latest tick.
func (e *Engine) Pose() spatial.Pose { return e.State().Pose() }

// Forward is the unit vector the listener faces.
func (e *Engine) Forward() spatial.Vec2 { return spatial.Forward(e.State().Rotation) }

// Loudness of emitter i in [0, 1]; 0 when it has never sounded.
func (e *Engine) Loudness(i int) float64 { return e.bus.Loudness(i) }

// Track is the index of the track currently sounding on every emitter.
func (e *Engine) Track() int { return e.sched.Track() }

// TrackTitle names the track emitter i is playing, when catalogued.
func (e *Engine) TrackTitle(i int) string { return e.cfg.TrackTitle(i, e.sched.Track()) }

// Bounce renders d of the running installation into a stereo WAV, ticking
// the simulation once per tick interval of audio. Nothing is sent to an
// output device. Loads that complete in the background land on the tick
// after they finish, as they would live.
func (e *Engine) Bounce(ctx context.Context, w io.WriteSeeker, d time.Duration) error {
	rate := e.cfg.Audio.SampleRate
	total := int(d.Seconds() * float64(rate))
	if total <= 0 {
		return fmt.Errorf("%w: bounce of %v", ErrInvalidEngine, d)
	}
	block := max(rate/e.cfg.Audio.TickRate, 1)

	out := make([]float32, 2*total)
	for off := 0; off < total; off += block {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("bounce cancelled: %w", err)
		}
		e.Tick(listener.Input{})
		n := min(block, total-off)
		e.bus.Process(out[2*off : 2*(off+n)])
	}

	if err := wav.Encode(w, rate, 2, out); err != nil {
		return fmt.Errorf("writing bounce: %w", err)
	}
	e.log.Info("bounce written", "duration", d, "frames", total)
	return nil
}
