// SPDX-License-Identifier: EPL-2.0

package spatialpbx

import (
	"log/slog"
	"math/rand/v2"

	"github.com/ik5/spatialpbx/playback"
)

type options struct {
	log      *slog.Logger
	rng      *rand.Rand
	playback []playback.Option
}

// Option configures an Engine.
type Option func(*options)

// WithLogger sets the logger shared by the engine and its components.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithRand drives the listener walk from rng instead of the configured
// seed.
func WithRand(rng *rand.Rand) Option {
	return func(o *options) { o.rng = rng }
}

// WithPlaybackOptions passes extra options to the scheduler. They apply
// after the ones derived from the configuration.
func WithPlaybackOptions(opts ...playback.Option) Option {
	return func(o *options) { o.playback = append(o.playback, opts...) }
}
