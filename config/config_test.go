// SPDX-License-Identifier: EPL-2.0

package config

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/ik5/spatialpbx/listener"
	"github.com/ik5/spatialpbx/spatial"
)

func TestDefault(t *testing.T) {
	t.Parallel()

	c := Default()
	if err := c.Validate(); err != nil {
		t.Fatalf("Default().Validate() error = %v", err)
	}

	f := c.Field()
	if f.Len() != 5 {
		t.Fatalf("Field().Len() = %d, want 5", f.Len())
	}
	e, _ := f.Emitter(0)
	if e.Name != "Fissures in Green (2011)" {
		t.Errorf("emitter 0 name = %q", e.Name)
	}
	if diff := cmp.Diff(spatial.Vec2{X: 0, Z: -5}, e.Position, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("emitter 0 position mismatch (-want +got):\n%s", diff)
	}
	if got := c.TrackTitle(2, 2); got != "Building a World" {
		t.Errorf("TrackTitle(2, 2) = %q", got)
	}
	if got := c.TrackTitle(7, 0); got != "" {
		t.Errorf("TrackTitle(7, 0) = %q, want empty", got)
	}
	if diff := cmp.Diff(listener.DefaultParams(), c.ListenerParams()); diff != "" {
		t.Errorf("ListenerParams() mismatch (-want +got):\n%s", diff)
	}
	if got := c.TickInterval(); got != time.Second/60 {
		t.Errorf("TickInterval() = %v", got)
	}
}

func TestGoldenBoundaries(t *testing.T) {
	t.Parallel()

	b := GoldenBoundaries(5)
	if math.Abs(b.Soft*Phi-5) > 1e-12 || b.Hard != 5 {
		t.Errorf("GoldenBoundaries(5) = %+v", b)
	}
	if err := (listener.Boundaries{Soft: b.Soft, Hard: b.Hard}).Validate(); err != nil {
		t.Errorf("golden boundaries invalid: %v", err)
	}
}

func TestParse(t *testing.T) {
	t.Parallel()

	in := `
emitters: 3
tracks: 2
radius: 8
attenuation:
  model: linear
  ref_distance: 1
  max_distance: 20
  rolloff: 0.8
listener:
  seed: 7
  damping: 0.9
playback:
  lead_time: 15s
  retry_interval: 500ms
log:
  level: debug
`
	c, err := Parse(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if c.Emitters != 3 || c.Tracks != 2 || c.Radius != 8 {
		t.Errorf("layout = %d x %d r %v", c.Emitters, c.Tracks, c.Radius)
	}
	if c.Attenuation.Model != spatial.Linear || c.Attenuation.Rolloff != 0.8 {
		t.Errorf("attenuation = %+v", c.Attenuation)
	}
	if c.Playback.LeadTime != 15*time.Second || c.Playback.RetryInterval != 500*time.Millisecond {
		t.Errorf("playback = %+v", c.Playback)
	}
	if c.Listener.Seed != 7 || c.Listener.Damping != 0.9 || c.Listener.Accel != listener.DefaultParams().Accel {
		t.Errorf("listener = %+v", c.Listener)
	}
	if c.Boundaries != GoldenBoundaries(8) {
		t.Errorf("boundaries = %+v, want golden for radius 8", c.Boundaries)
	}
	if c.Catalogue != nil {
		t.Errorf("catalogue = %v, want none for a custom layout", c.Catalogue)
	}
	if c.Audio.SampleRate != 48000 || c.Log.Level != "debug" {
		t.Errorf("defaults not kept: %+v %+v", c.Audio, c.Log)
	}
}

func TestParse_Empty(t *testing.T) {
	t.Parallel()

	c, err := Parse(strings.NewReader(""))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if diff := cmp.Diff(Default(), c); diff != "" {
		t.Errorf("empty config mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
	}{
		{name: "inverted boundaries", in: "boundaries: {soft: 5, hard: 2}"},
		{name: "zero emitters", in: "emitters: 0"},
		{name: "bad model", in: "attenuation: {model: cubic}"},
		{name: "unknown key", in: "volume: 11"},
		{name: "bad duration", in: "playback: {lead_time: soon}"},
		{name: "start track", in: "playback: {start_track: 4}"},
		{name: "damping", in: "listener: {damping: 1.5}"},
		{name: "bounce keeps outward velocity", in: "listener: {bounce: 0.5}"},
		{name: "negative return impulse", in: "listener: {return_impulse: -1}"},
		{name: "return radius past soft boundary", in: "listener: {return_radius: 4}"},
		{name: "return radius on soft boundary", in: "boundaries: {soft: 2, hard: 5}\nlistener: {return_radius: 2}"},
		{name: "zero stride", in: "stride: 0"},
		{name: "stride shares a factor", in: "emitters: 6\nstride: 3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := Parse(strings.NewReader(tt.in)); err == nil {
				t.Error("Parse() error = nil")
			}
		})
	}
}

func TestParse_PentagramStride(t *testing.T) {
	t.Parallel()

	c, err := Parse(strings.NewReader("stride: 2"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	f := c.Field()
	// the second disc sits two vertices round from the first
	e, _ := f.Emitter(1)
	a := -math.Pi/2 + 4*math.Pi/5
	want := spatial.Vec2{X: 5 * math.Cos(a), Z: 5 * math.Sin(a)}
	if diff := cmp.Diff(want, e.Position, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("emitter 1 position mismatch (-want +got):\n%s", diff)
	}
	if e.Name != c.Catalogue[1].Name {
		t.Errorf("emitter 1 name = %q, want %q", e.Name, c.Catalogue[1].Name)
	}
}

func TestValidate_Joins(t *testing.T) {
	t.Parallel()

	c := Default()
	c.Emitters = 0
	c.Audio.SampleRate = 0

	err := c.Validate()
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("Validate() error = %v", err)
	}
	for _, want := range []string{"emitters 0", "sample rate 0"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q lacks %q", err, want)
		}
	}
}

func TestWriteLoad(t *testing.T) {
	t.Parallel()

	c := Default()
	c.Radius = 7
	c.Boundaries = Boundaries{Soft: 2, Hard: 5}
	c.Attenuation.Model = spatial.Exponential

	var buf bytes.Buffer
	if err := c.Write(&buf); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	for _, want := range []string{"model: exponential", "lead_time: 12s"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("encoded config lacks %q:\n%s", want, buf.String())
		}
	}

	path := filepath.Join(t.TempDir(), "installation.yaml")
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if diff := cmp.Diff(c, got); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "none.yaml")); err == nil {
		t.Error("Load() of a missing file succeeded")
	}
}
