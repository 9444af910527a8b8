// SPDX-License-Identifier: EPL-2.0

package listener

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/ik5/spatialpbx/spatial"
)

// Mode is the autonomous steering phase.
type Mode int

const (
	// Free drifts without a restoring force.
	Free Mode = iota
	// Returning is latched once the listener passes the soft boundary and
	// holds until it is back within the return radius of the centre.
	Returning
)

func (m Mode) String() string {
	switch m {
	case Free:
		return "free"
	case Returning:
		return "returning"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Boundaries bound the walk. Soft pulls the listener back; Hard clamps.
type Boundaries struct {
	Soft float64
	Hard float64
}

func (b Boundaries) Validate() error {
	if !(b.Soft > 0 && b.Soft < b.Hard) {
		return fmt.Errorf("%w: soft %v, hard %v", ErrInvalidBoundaries, b.Soft, b.Hard)
	}
	return nil
}

// Input is the snapshot of held directional controls for one tick.
type Input struct {
	Forward, Back, Left, Right bool
}

// Active reports whether any direction is held.
func (in Input) Active() bool {
	return in.Forward || in.Back || in.Left || in.Right
}

// State is the listener's kinematic state after a tick.
type State struct {
	Position spatial.Vec2
	Velocity spatial.Vec2
	Rotation float64
	Spin     float64
	Mode     Mode
}

func (s State) Pose() spatial.Pose {
	return spatial.Pose{Position: s.Position, Rotation: s.Rotation}
}

// Params are the per-tick physics constants.
type Params struct {
	// Accel is the range of the random acceleration added per axis.
	Accel float64
	// SpinAccel is the range of the random angular acceleration.
	SpinAccel float64
	// Damping multiplies velocity and spin every autonomous tick.
	Damping float64
	// ReturnImpulse is the magnitude of the pull toward the centre.
	ReturnImpulse float64
	// ReturnRadius is the distance from centre at which Returning clears.
	ReturnRadius float64
	// Bounce scales velocity when the hard boundary is hit.
	Bounce float64
	// MoveStep and TurnStep are the manual translation and rotation steps.
	MoveStep float64
	TurnStep float64
}

func DefaultParams() Params {
	return Params{
		Accel:         0.005,
		SpinAccel:     0.005,
		Damping:       0.97,
		ReturnImpulse: 0.002,
		ReturnRadius:  1,
		Bounce:        -0.5,
		MoveStep:      0.05,
		TurnStep:      0.03,
	}
}

type Option func(*Simulation)

func WithParams(p Params) Option {
	return func(s *Simulation) {
		s.params = p
	}
}

// WithStart places the listener before the first tick.
func WithStart(st State) Option {
	return func(s *Simulation) {
		s.state = st
	}
}

// Simulation advances the listener once per simulation tick. It is not
// safe for concurrent use; the simulation clock owns it.
type Simulation struct {
	bounds Boundaries
	params Params
	rng    *rand.Rand
	state  State
}

// New creates a simulation at the origin at rest. rng supplies the drift;
// nil seeds one from the runtime.
func New(b Boundaries, rng *rand.Rand, opts ...Option) (*Simulation, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	s := &Simulation{bounds: b, params: DefaultParams(), rng: rng}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Simulation) State() State                { return s.state }
func (s *Simulation) Pose() spatial.Pose          { return s.state.Pose() }
func (s *Simulation) Boundaries() Boundaries      { return s.bounds }
func (s *Simulation) Forward() spatial.Vec2       { return spatial.Forward(s.state.Rotation) }
func (s *Simulation) DistanceFromCenter() float64 { return s.state.Position.Len() }

// Step advances one tick. Held input suspends the random walk for the tick;
// the hard boundary is enforced either way.
func (s *Simulation) Step(in Input) State {
	if in.Active() {
		s.manual(in)
	} else {
		s.drift()
	}
	s.clamp()
	return s.state
}

func (s *Simulation) drift() {
	p, st := s.params, &s.state

	st.Velocity.X += (s.rng.Float64() - 0.5) * p.Accel
	st.Velocity.Z += (s.rng.Float64() - 0.5) * p.Accel
	st.Spin += (s.rng.Float64() - 0.5) * p.SpinAccel

	dist := st.Position.Len()
	switch {
	case dist > s.bounds.Soft:
		st.Mode = Returning
	case st.Mode == Returning && dist <= p.ReturnRadius:
		st.Mode = Free
	}

	if st.Mode == Returning {
		st.Velocity = st.Velocity.Add(st.Position.Unit().Scale(-p.ReturnImpulse))
	}

	st.Velocity = st.Velocity.Scale(p.Damping)
	st.Spin *= p.Damping

	st.Position = st.Position.Add(st.Velocity)
	st.Rotation += st.Spin
}

func (s *Simulation) manual(in Input) {
	p, st := s.params, &s.state

	fwd := spatial.Forward(st.Rotation)
	if in.Forward {
		st.Position = st.Position.Add(fwd.Scale(p.MoveStep))
	}
	if in.Back {
		st.Position = st.Position.Add(fwd.Scale(-p.MoveStep))
	}
	if in.Left {
		st.Rotation += p.TurnStep
	}
	if in.Right {
		st.Rotation -= p.TurnStep
	}
}

func (s *Simulation) clamp() {
	st := &s.state
	dist := st.Position.Len()
	if dist <= s.bounds.Hard {
		return
	}

	st.Position = st.Position.Scale(s.bounds.Hard / dist)
	st.Velocity = st.Velocity.Scale(s.params.Bounce)
	// rounding can leave the projected point a hair outside
	if st.Position.Len() > s.bounds.Hard {
		st.Position = st.Position.Scale(math.Nextafter(s.bounds.Hard, 0) / st.Position.Len())
	}
}
