// SPDX-License-Identifier: EPL-2.0

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/ik5/spatialpbx/listener"
	"github.com/ik5/spatialpbx/spatial"
	"gopkg.in/yaml.v3"
)

// Phi is the golden ratio.
var Phi = (1 + math.Sqrt(5)) / 2

// Config describes one installation.
type Config struct {
	Emitters int `yaml:"emitters"`
	Tracks   int `yaml:"tracks"`
	// Radius of the emitter circle.
	Radius float64 `yaml:"radius"`
	// AngleOffset rotates the emitter layout, in degrees.
	AngleOffset float64 `yaml:"angle_offset"`
	// Stride is how many circle steps separate consecutive emitters. 2 with
	// an offset of -90 walks a five emitter ring in pentagram order.
	Stride      int         `yaml:"stride"`
	Catalogue   []Disc      `yaml:"catalogue"`
	Attenuation Attenuation `yaml:"attenuation"`
	Boundaries  Boundaries  `yaml:"boundaries"`
	Listener    Listener    `yaml:"listener"`
	Playback    Playback    `yaml:"playback"`
	Audio       Audio       `yaml:"audio"`
	Log         Log         `yaml:"log"`
}

// Disc names an emitter and its track slots.
type Disc struct {
	Name   string   `yaml:"name"`
	Tracks []string `yaml:"tracks"`
}

type Attenuation struct {
	Model       spatial.DistanceModel `yaml:"model"`
	RefDistance float64               `yaml:"ref_distance"`
	MaxDistance float64               `yaml:"max_distance"`
	Rolloff     float64               `yaml:"rolloff"`
}

// Boundaries left at zero follow GoldenBoundaries of the radius.
type Boundaries struct {
	Soft float64 `yaml:"soft"`
	Hard float64 `yaml:"hard"`
}

type Listener struct {
	// Seed of the random walk; 0 picks one at start.
	Seed          uint64  `yaml:"seed"`
	Accel         float64 `yaml:"accel"`
	SpinAccel     float64 `yaml:"spin_accel"`
	Damping       float64 `yaml:"damping"`
	ReturnImpulse float64 `yaml:"return_impulse"`
	ReturnRadius  float64 `yaml:"return_radius"`
	Bounce        float64 `yaml:"bounce"`
	MoveStep      float64 `yaml:"move_step"`
	TurnStep      float64 `yaml:"turn_step"`
}

type Playback struct {
	StartTrack      int           `yaml:"start_track"`
	LeadTime        time.Duration `yaml:"lead_time"`
	RetryInterval   time.Duration `yaml:"retry_interval"`
	LoadConcurrency int           `yaml:"load_concurrency"`
}

type Audio struct {
	SampleRate int     `yaml:"sample_rate"`
	TickRate   int     `yaml:"tick_rate"`
	MasterGain float64 `yaml:"master_gain"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// GoldenBoundaries derives the walk limits from the emitter radius: the
// pull back starts at radius/φ and the listener never passes the emitters.
func GoldenBoundaries(radius float64) Boundaries {
	return Boundaries{Soft: radius / Phi, Hard: radius}
}

// Default is the five disc installation.
func Default() Config {
	p := listener.DefaultParams()
	return Config{
		Emitters:    5,
		Tracks:      4,
		Radius:      5,
		AngleOffset: -90,
		Stride:      1,
		Catalogue:   catalogue(),
		Attenuation: Attenuation{Model: spatial.Inverse, RefDistance: 1, MaxDistance: 15, Rolloff: 1},
		Boundaries:  GoldenBoundaries(5),
		Listener: Listener{
			Accel:         p.Accel,
			SpinAccel:     p.SpinAccel,
			Damping:       p.Damping,
			ReturnImpulse: p.ReturnImpulse,
			ReturnRadius:  p.ReturnRadius,
			Bounce:        p.Bounce,
			MoveStep:      p.MoveStep,
			TurnStep:      p.TurnStep,
		},
		Playback: Playback{LeadTime: 12 * time.Second, RetryInterval: time.Second},
		Audio:    Audio{SampleRate: 48000, TickRate: 60, MasterGain: 1},
		Log:      Log{Level: "info", Format: "text"},
	}
}

// Load reads a YAML file over Default.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	return Parse(bytes.NewReader(data))
}

// Parse decodes YAML over Default and validates the result. Unknown keys
// are rejected.
func Parse(r io.Reader) (Config, error) {
	cfg := Default()
	// catalogue and boundaries are derived below unless given
	cfg.Catalogue = nil
	cfg.Boundaries = Boundaries{}

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.Catalogue == nil && cfg.Emitters == 5 && cfg.Tracks == 4 {
		cfg.Catalogue = catalogue()
	}
	if cfg.Boundaries == (Boundaries{}) {
		cfg.Boundaries = GoldenBoundaries(cfg.Radius)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Write encodes cfg as YAML.
func (c Config) Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return enc.Close()
}

// Validate reports every invalid setting.
func (c Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if c.Emitters <= 0 {
		add("emitters %d", c.Emitters)
	}
	if c.Tracks <= 0 {
		add("tracks %d", c.Tracks)
	}
	if c.Radius <= 0 {
		add("radius %v", c.Radius)
	}
	if c.Stride <= 0 || (c.Emitters > 0 && gcd(c.Stride, c.Emitters) != 1) {
		add("stride %d for %d emitters", c.Stride, c.Emitters)
	}
	if len(c.Catalogue) > c.Emitters {
		add("%d catalogue entries for %d emitters", len(c.Catalogue), c.Emitters)
	}
	if err := c.SpatialAttenuation().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("%w: %w", ErrInvalid, err))
	}
	if err := c.WalkBoundaries().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("%w: %w", ErrInvalid, err))
	}
	if c.Listener.Damping <= 0 || c.Listener.Damping > 1 {
		add("damping %v outside (0, 1]", c.Listener.Damping)
	}
	if c.Listener.Bounce > 0 {
		add("bounce %v must not keep the outward velocity", c.Listener.Bounce)
	}
	if c.Listener.ReturnImpulse < 0 {
		add("return impulse %v", c.Listener.ReturnImpulse)
	}
	if soft := c.Boundaries.Soft; c.Listener.ReturnRadius >= soft {
		add("return radius %v not inside soft boundary %v", c.Listener.ReturnRadius, soft)
	}
	if c.Playback.StartTrack < 0 || c.Playback.StartTrack >= c.Tracks {
		add("start track %d", c.Playback.StartTrack)
	}
	if c.Playback.LeadTime <= 0 {
		add("lead time %v", c.Playback.LeadTime)
	}
	if c.Playback.RetryInterval <= 0 {
		add("retry interval %v", c.Playback.RetryInterval)
	}
	if c.Audio.SampleRate <= 0 {
		add("sample rate %d", c.Audio.SampleRate)
	}
	if c.Audio.TickRate <= 0 {
		add("tick rate %d", c.Audio.TickRate)
	}
	if c.Audio.MasterGain < 0 {
		add("master gain %v", c.Audio.MasterGain)
	}

	return errors.Join(errs...)
}

func (c Config) SpatialAttenuation() spatial.Attenuation {
	a := c.Attenuation
	return spatial.Attenuation{Model: a.Model, RefDistance: a.RefDistance, MaxDistance: a.MaxDistance, Rolloff: a.Rolloff}
}

func (c Config) WalkBoundaries() listener.Boundaries {
	return listener.Boundaries{Soft: c.Boundaries.Soft, Hard: c.Boundaries.Hard}
}

func (c Config) ListenerParams() listener.Params {
	l := c.Listener
	return listener.Params{
		Accel:         l.Accel,
		SpinAccel:     l.SpinAccel,
		Damping:       l.Damping,
		ReturnImpulse: l.ReturnImpulse,
		ReturnRadius:  l.ReturnRadius,
		Bounce:        l.Bounce,
		MoveStep:      l.MoveStep,
		TurnStep:      l.TurnStep,
	}
}

// Field lays out the emitters named after the catalogue.
func (c Config) Field() *spatial.Field {
	names := make([]string, len(c.Catalogue))
	for i, d := range c.Catalogue {
		names[i] = d.Name
	}
	pts := spatial.Star(c.Emitters, c.Stride, c.Radius, c.AngleOffset*math.Pi/180)
	return spatial.NewFieldAt(pts, c.Radius, c.SpatialAttenuation(), names...)
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// TrackTitle returns the catalogue title of a slot, or "" when unknown.
func (c Config) TrackTitle(emitter, track int) string {
	if emitter < 0 || emitter >= len(c.Catalogue) {
		return ""
	}
	titles := c.Catalogue[emitter].Tracks
	if track < 0 || track >= len(titles) {
		return ""
	}
	return titles[track]
}

// TickInterval is the simulation clock period.
func (c Config) TickInterval() time.Duration {
	return time.Second / time.Duration(max(c.Audio.TickRate, 1))
}
