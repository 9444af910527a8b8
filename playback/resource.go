// SPDX-License-Identifier: EPL-2.0

package playback

import (
	"context"
	"fmt"
	"time"
)

// Trigger is a media clock notification.
type Trigger int

const (
	// NearEnd fires once the remaining time drops to the lead time.
	NearEnd Trigger = iota
	// End fires once when the resource plays out.
	End
)

func (t Trigger) String() string {
	switch t {
	case NearEnd:
		return "near-end"
	case End:
		return "end"
	}
	return fmt.Sprintf("Trigger(%d)", int(t))
}

// Resource is one decoded track for one emitter. It owns its media clock.
type Resource interface {
	// Play starts or resumes output. Playing an ended resource is a no-op.
	Play() error
	// Pause stops output. Pausing an ended resource is a no-op.
	Pause()
	Duration() time.Duration
	Position() time.Duration
	Ended() bool
	// Watch arms the media clock triggers. fn may be called from the audio
	// thread and must not block. A new call replaces the previous one.
	Watch(lead time.Duration, fn func(Trigger))
	Close() error
}

// Graph wires resources into the per-emitter output chain.
//
// Queue hands the graph a successor for emitter's sounding resource. When
// that resource plays out, the graph starts the successor on the same
// frame, before the scheduler has applied the transition. Connecting a
// resource the graph already promoted is a no-op, as is disconnecting one
// it no longer holds.
type Graph interface {
	Connect(emitter int, r Resource) error
	Disconnect(emitter int, r Resource) error
	Queue(emitter int, r Resource) error
}

// Loader produces the resource for one emitter's track slot. Load must
// return promptly once ctx is cancelled.
type Loader interface {
	Load(ctx context.Context, emitter, track int) (Resource, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context, emitter, track int) (Resource, error)

func (f LoaderFunc) Load(ctx context.Context, emitter, track int) (Resource, error) {
	return f(ctx, emitter, track)
}
