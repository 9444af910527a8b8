// SPDX-License-Identifier: EPL-2.0

package playback

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

const trackLen = 3 * time.Minute

type fakeResource struct {
	mu          sync.Mutex
	emitter     int
	track       int
	dur         time.Duration
	pos         time.Duration
	playing     bool
	closed      bool
	playErr     error
	plays       int
	pausesEnded int
	lead        time.Duration
	notify      func(Trigger)
	nearFired   bool
	endFired    bool
}

func (r *fakeResource) String() string { return fmt.Sprintf("e%d/t%d", r.emitter, r.track) }

func (r *fakeResource) Play() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.playErr != nil {
		return r.playErr
	}
	if r.pos >= r.dur {
		return nil
	}
	r.plays++
	r.playing = true
	return nil
}

func (r *fakeResource) Pause() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pos >= r.dur {
		r.pausesEnded++
	}
	r.playing = false
}

func (r *fakeResource) Duration() time.Duration { return r.dur }

func (r *fakeResource) Position() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pos
}

func (r *fakeResource) Ended() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pos >= r.dur
}

func (r *fakeResource) Watch(lead time.Duration, fn func(Trigger)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lead, r.notify = lead, fn
	r.nearFired = false
}

func (r *fakeResource) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	r.playing = false
	return nil
}

func (r *fakeResource) isPlaying() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.playing
}

func (r *fakeResource) isClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

// seek moves the media clock as the audio thread would while playing.
func (r *fakeResource) seek(pos time.Duration) {
	r.mu.Lock()
	r.pos = min(pos, r.dur)
	var fire []Trigger
	if r.notify != nil && !r.nearFired && r.dur-r.pos <= r.lead {
		r.nearFired = true
		fire = append(fire, NearEnd)
	}
	if r.pos >= r.dur {
		r.playing = false
		if r.notify != nil && !r.endFired {
			r.endFired = true
			fire = append(fire, End)
		}
	}
	fn := r.notify
	r.mu.Unlock()

	for _, t := range fire {
		fn(t)
	}
}

// remaining seeks to d before the end.
func (r *fakeResource) remaining(d time.Duration) { r.seek(r.dur - d) }

type fakeGraph struct {
	mu         sync.Mutex
	slots      map[int]Resource
	queued     map[int]Resource
	failOn     map[int]bool
	doubleConn int
}

func newFakeGraph() *fakeGraph {
	return &fakeGraph{slots: make(map[int]Resource), queued: make(map[int]Resource), failOn: make(map[int]bool)}
}

func (g *fakeGraph) Connect(i int, r Resource) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failOn[i] {
		return errors.New("panner unavailable")
	}
	if cur, busy := g.slots[i]; busy {
		if cur == r {
			return nil
		}
		g.doubleConn++
		return errors.New("slot busy")
	}
	if g.queued[i] == r {
		delete(g.queued, i)
	}
	g.slots[i] = r
	return nil
}

func (g *fakeGraph) Disconnect(i int, r Resource) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.queued[i] == r {
		delete(g.queued, i)
	}
	if g.slots[i] == r {
		delete(g.slots, i)
	}
	return nil
}

func (g *fakeGraph) Queue(i int, r Resource) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failOn[i] {
		return errors.New("panner unavailable")
	}
	g.queued[i] = r
	return nil
}

// handoff does what the audio thread does when emitter i's resource plays
// out with a successor queued.
func (g *fakeGraph) handoff(i int) *fakeResource {
	g.mu.Lock()
	next, ok := g.queued[i].(*fakeResource)
	if ok {
		g.slots[i] = next
		delete(g.queued, i)
	}
	g.mu.Unlock()

	if ok {
		_ = next.Play()
	}
	return next
}

func (g *fakeGraph) pending() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.queued)
}

func (g *fakeGraph) connected() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.slots)
}

func (g *fakeGraph) at(i int) Resource {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.slots[i]
}

var errCorrupt = errors.New("corrupt media")

type fakeLoader struct {
	mu sync.Mutex
	// failures[track] is how many more loads of emitter failEmitter fail.
	failures    map[int]int
	failEmitter int
	// block holds loads of the given track until ctx is done, then returns
	// a resource anyway.
	block map[int]bool
	// gate holds loads of the given track until it is closed.
	gate    map[int]chan struct{}
	started chan int
	loaded  []*fakeResource
}

func newFakeLoader() *fakeLoader {
	return &fakeLoader{
		failures: make(map[int]int),
		block:    make(map[int]bool),
		gate:     make(map[int]chan struct{}),
		started:  make(chan int, 64),
	}
}

func (l *fakeLoader) Load(ctx context.Context, emitter, track int) (Resource, error) {
	l.mu.Lock()
	fail := emitter == l.failEmitter && l.failures[track] > 0
	if fail {
		l.failures[track]--
	}
	block := l.block[track]
	gate := l.gate[track]
	l.mu.Unlock()

	select {
	case l.started <- track:
	default:
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if fail {
		return nil, errCorrupt
	}

	r := &fakeResource{emitter: emitter, track: track, dur: trackLen}
	l.mu.Lock()
	l.loaded = append(l.loaded, r)
	l.mu.Unlock()

	if block {
		<-ctx.Done()
	}
	return r, nil
}

func (l *fakeLoader) fail(track, times int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failures[track] = times
}

func (l *fakeLoader) all() []*fakeResource {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]*fakeResource(nil), l.loaded...)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Add(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func syncRunner(f func()) { f() }
