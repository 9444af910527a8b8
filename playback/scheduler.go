// SPDX-License-Identifier: EPL-2.0

package playback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultLeadTime      = 12 * time.Second
	DefaultRetryInterval = time.Second

	eventBuffer  = 16
	resultBuffer = 4
)

type Option func(*Scheduler)

func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.log = l
		}
	}
}

// WithLeadTime sets how long before the end of a track its successor is
// prepared.
func WithLeadTime(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.lead = d
		}
	}
}

// WithRetryInterval sets the wait between attempts to load an overdue
// successor.
func WithRetryInterval(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.retry = d
		}
	}
}

// WithClock replaces time.Now for retry scheduling.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		if now != nil {
			s.now = now
		}
	}
}

// WithRunner sets how background loads are started. The default runs each
// load on its own goroutine.
func WithRunner(run func(func())) Option {
	return func(s *Scheduler) {
		if run != nil {
			s.run = run
		}
	}
}

// WithLoadConcurrency caps the number of emitters decoded at once.
func WithLoadConcurrency(n int) Option {
	return func(s *Scheduler) {
		s.loadLimit = n
	}
}

// Scheduler advances every emitter through the same track sequence without
// gaps. Media clock triggers and background load results are queued and
// applied by Process, once per simulation tick.
type Scheduler struct {
	emitters  int
	tracks    int
	loader    Loader
	graph     Graph
	log       *slog.Logger
	lead      time.Duration
	retry     time.Duration
	now       func() time.Time
	run       func(func())
	loadLimit int

	ctx     context.Context
	cancel  context.CancelFunc
	events  chan Event
	results chan loadResult
	loads   sync.WaitGroup

	mu        sync.Mutex
	state     State
	loading   bool
	paused    bool
	sessions  []session
	track     int
	nextTrack int
	cycle     uint64
	ref       int
	pending   *pendingLoad
	loadSeq   uint64
	overdue   bool
	retryAt   time.Time
}

// NewScheduler creates an idle scheduler for emitters emitters sharing a
// sequence of tracks tracks.
func NewScheduler(emitters, tracks int, loader Loader, graph Graph, opts ...Option) (*Scheduler, error) {
	switch {
	case emitters <= 0 || tracks <= 0:
		return nil, fmt.Errorf("%w: %d emitters, %d tracks", ErrInvalidLayout, emitters, tracks)
	case loader == nil || graph == nil:
		return nil, fmt.Errorf("%w: loader and graph are required", ErrInvalidLayout)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		emitters: emitters,
		tracks:   tracks,
		loader:   loader,
		graph:    graph,
		log:      slog.Default(),
		lead:     DefaultLeadTime,
		retry:    DefaultRetryInterval,
		now:      time.Now,
		run:      func(f func()) { go f() },
		ctx:      ctx,
		cancel:   cancel,
		events:   make(chan Event, eventBuffer),
		results:  make(chan loadResult, resultBuffer),
		sessions: make([]session, emitters),
		ref:      -1,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With("scheduler", uuid.NewString())

	return s, nil
}

func (s *Scheduler) Emitters() int { return s.emitters }
func (s *Scheduler) Tracks() int   { return s.tracks }

func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Track is the index currently sounding.
func (s *Scheduler) Track() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.track
}

// NextPrepared reports whether every successor is loaded.
func (s *Scheduler) NextPrepared() bool {
	return s.State() == Ready
}

func (s *Scheduler) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

func (s *Scheduler) Current(emitter int) Resource {
	s.mu.Lock()
	defer s.mu.Unlock()
	if emitter < 0 || emitter >= s.emitters {
		return nil
	}
	return s.sessions[emitter].current
}

func (s *Scheduler) Next(emitter int) Resource {
	s.mu.Lock()
	defer s.mu.Unlock()
	if emitter < 0 || emitter >= s.emitters {
		return nil
	}
	return s.sessions[emitter].next
}

// Reference is the emitter whose media clock gates transitions, or -1.
func (s *Scheduler) Reference() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ref
}

// Initialize loads track for every emitter and wires it in. A failure
// leaves the scheduler idle so the call can be retried.
func (s *Scheduler) Initialize(ctx context.Context, track int) error {
	if track < 0 || track >= s.tracks {
		return fmt.Errorf("%w: %d of %d", ErrTrackOutOfRange, track, s.tracks)
	}

	s.mu.Lock()
	switch {
	case s.state == Destroyed:
		s.mu.Unlock()
		return ErrDestroyed
	case s.state != Idle || s.loading:
		s.mu.Unlock()
		return ErrAlreadyInitialized
	}
	s.loading = true
	s.mu.Unlock()

	res, err := s.loadBlocking(ctx, track)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false

	if s.state == Destroyed {
		closeAll(res)
		return ErrDestroyed
	}
	if err != nil {
		return err
	}

	for i, r := range res {
		s.sessions[i] = session{current: r}
		s.connect(i)
	}
	s.track = track
	s.paused = true
	s.state = Playing
	s.log.Info("tracks loaded", "track", track, "emitters", s.emitters)

	return nil
}

// Play starts or resumes every current resource and arms the transition
// triggers on the reference emitter. An emitter that fails to start stays
// silent until the next transition.
func (s *Scheduler) Play() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ready(); err != nil {
		return err
	}
	s.play()
	return nil
}

// Pause silences every current resource, keeping any prepared successor.
func (s *Scheduler) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ready(); err != nil {
		return err
	}

	s.paused = true
	for _, ss := range s.sessions {
		if ss.current != nil {
			ss.current.Pause()
		}
		// the graph may already be sounding it
		if ss.queued {
			ss.next.Pause()
		}
	}
	return nil
}

// Advance skips to the next track now. It loads the successor itself when
// none is prepared and reports the failure to the caller.
func (s *Scheduler) Advance(ctx context.Context) error {
	s.mu.Lock()
	if err := s.ready(); err != nil {
		s.mu.Unlock()
		return err
	}
	if s.state == Transitioning {
		s.mu.Unlock()
		return ErrTransitionInProgress
	}

	if s.state == Ready {
		s.swap()
		s.mu.Unlock()
		return nil
	}

	// any background load in flight becomes stale
	s.pending = nil
	s.state = Transitioning
	next := s.successor()
	s.mu.Unlock()

	res, err := s.loadBlocking(ctx, next)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Destroyed {
		closeAll(res)
		return ErrDestroyed
	}
	if err != nil {
		s.state = Playing
		if s.overdue {
			// the current track ended during the skip
			s.retryAt = s.now()
		}
		return err
	}

	s.install(next, res)
	s.swap()
	return nil
}

// Process retries an overdue load when its interval has passed, then
// applies queued media clock triggers and finished loads. It never blocks
// on a load and never returns an error; failures are logged.
func (s *Scheduler) Process(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.overdue && s.pending == nil && s.state == Playing && !s.now().Before(s.retryAt) {
		s.log.Info("retrying overdue track load", "track", s.successor())
		s.prepare()
	}

	for s.state != Destroyed {
		select {
		case r := <-s.results:
			s.handleLoad(r)
			continue
		case ev := <-s.events:
			s.handleEvent(ev)
			continue
		default:
		}
		break
	}
}

// Destroy releases every resource and disconnects every emitter. Loads in
// flight are cancelled and their results discarded. It is idempotent.
func (s *Scheduler) Destroy() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Destroyed {
		return nil
	}
	s.state = Destroyed
	s.cancel()

	var errs []error
	for i := range s.sessions {
		ss := &s.sessions[i]
		if ss.current != nil && !ss.current.Ended() {
			ss.current.Pause()
		}
		if ss.queued {
			ss.next.Pause()
			if err := s.graph.Disconnect(i, ss.next); err != nil {
				errs = append(errs, &GraphError{Emitter: i, Op: "disconnect", Err: err})
			}
		}
		if ss.connected {
			if err := s.graph.Disconnect(i, ss.current); err != nil {
				errs = append(errs, &GraphError{Emitter: i, Op: "disconnect", Err: err})
			}
		}
		closeRes(ss.current)
		closeRes(ss.next)
		*ss = session{}
	}
	s.pending = nil

	s.loads.Wait()
	for {
		select {
		case r := <-s.results:
			closeAll(r.res)
			continue
		default:
		}
		break
	}

	s.log.Info("scheduler destroyed")
	return errors.Join(errs...)
}

func (s *Scheduler) ready() error {
	switch s.state {
	case Destroyed:
		return ErrDestroyed
	case Idle:
		return ErrNotInitialized
	}
	return nil
}

func (s *Scheduler) successor() int {
	return (s.track + 1) % s.tracks
}

func (s *Scheduler) play() {
	s.paused = false
	s.ref = -1

	for i := range s.sessions {
		ss := &s.sessions[i]
		ss.audible = false
		if ss.current == nil {
			continue
		}
		if err := ss.current.Play(); err != nil {
			s.log.Error("emitter failed to start", "emitter", i, "track", s.track, "err", err)
			continue
		}
		if ss.queued && ss.current.Ended() {
			// resumed between the graph's handoff and the transition
			_ = ss.next.Play()
		}
		ss.audible = ss.connected
		if ss.audible && s.ref < 0 {
			s.ref = i
		}
	}

	if s.ref < 0 {
		s.log.Error("no audible emitter, transitions halted", "track", s.track)
		return
	}
	if s.ref != 0 {
		s.log.Warn("reference clock moved", "emitter", s.ref)
	}

	cycle := s.cycle
	s.sessions[s.ref].current.Watch(s.lead, func(t Trigger) {
		select {
		case s.events <- Event{Trigger: t, Cycle: cycle}:
		default:
		}
	})
}

func (s *Scheduler) handleEvent(ev Event) {
	if ev.Cycle != s.cycle {
		s.log.Debug("stale trigger dropped", "trigger", ev.Trigger, "cycle", ev.Cycle)
		return
	}

	switch ev.Trigger {
	case NearEnd:
		if s.state == Playing && s.pending == nil && !s.overdue {
			s.log.Debug("preparing next track", "track", s.successor())
			s.prepare()
		}
	case End:
		switch s.state {
		case Ready:
			s.swap()
		case Playing:
			s.overdue = true
			if s.pending == nil {
				s.log.Warn("next track not prepared at end", "track", s.successor())
				s.prepare()
			}
		case Transitioning:
			// a skip is loading; if it fails the end is still owed
			s.overdue = true
		}
	}
}

func (s *Scheduler) handleLoad(r loadResult) {
	if s.pending == nil || r.id != s.pending.id {
		closeAll(r.res)
		return
	}
	s.pending = nil

	if r.err != nil {
		if s.overdue {
			s.retryAt = s.now().Add(s.retry)
			s.log.Error("overdue track load failed", "track", r.track, "retry_in", s.retry, "err", r.err)
		} else {
			s.log.Warn("preparing next track failed, retrying at end", "track", r.track, "err", r.err)
		}
		return
	}

	s.install(r.track, r.res)
	if s.overdue {
		s.swap()
	}
}

// prepare loads the successor in the background.
func (s *Scheduler) prepare() {
	s.loadSeq++
	p := &pendingLoad{id: s.loadSeq, track: s.successor()}
	s.pending = p

	ctx := s.ctx
	s.loads.Add(1)
	s.run(func() {
		defer s.loads.Done()

		res, err := s.loadAll(ctx, p.track)
		if ctx.Err() != nil {
			closeAll(res)
			return
		}
		select {
		case s.results <- loadResult{id: p.id, track: p.track, res: res, err: err}:
		case <-ctx.Done():
			closeAll(res)
		}
	})
}

// install holds res as the successor and hands it to the graph of every
// emitter that is sounding, so the change lands on the exact frame the
// current track ends.
func (s *Scheduler) install(track int, res []Resource) {
	for i, r := range res {
		ss := &s.sessions[i]
		closeRes(ss.next)
		ss.next, ss.queued = r, false
		if !ss.connected {
			continue
		}
		if err := s.graph.Queue(i, r); err != nil {
			s.log.Warn("graph failure", "err", &GraphError{Emitter: i, Op: "queue", Err: err})
			continue
		}
		ss.queued = true
	}
	s.nextTrack = track
	s.state = Ready
}

// swap promotes every prepared successor. Old resources are disconnected
// before they are released; ones that already played out are not paused.
func (s *Scheduler) swap() {
	s.state = Transitioning
	from := s.track

	for i := range s.sessions {
		ss := &s.sessions[i]
		if ss.current != nil && !ss.current.Ended() {
			ss.current.Pause()
		}
		if ss.connected {
			if err := s.graph.Disconnect(i, ss.current); err != nil {
				s.log.Error("graph failure", "err", &GraphError{Emitter: i, Op: "disconnect", Err: err})
			}
			ss.connected = false
		}
		closeRes(ss.current)

		ss.current, ss.next = ss.next, nil
		ss.audible, ss.queued = false, false
		if ss.current != nil {
			s.connect(i)
			if s.paused {
				// a handed-off successor is already sounding
				ss.current.Pause()
			}
		}
	}

	s.track = s.nextTrack
	s.cycle++
	s.overdue = false
	s.state = Playing
	s.log.Info("track transition", "from", from, "to", s.track)

	if !s.paused {
		s.play()
	}
}

func (s *Scheduler) connect(i int) {
	ss := &s.sessions[i]
	if err := s.graph.Connect(i, ss.current); err != nil {
		s.log.Error("graph failure", "err", &GraphError{Emitter: i, Op: "connect", Err: err})
		ss.connected = false
		return
	}
	ss.connected = true
}

// loadBlocking loads on the caller's goroutine, giving up when either ctx
// or the scheduler is done.
func (s *Scheduler) loadBlocking(ctx context.Context, track int) ([]Resource, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(s.ctx, cancel)
	defer stop()

	return s.loadAll(ctx, track)
}

func (s *Scheduler) loadAll(ctx context.Context, track int) ([]Resource, error) {
	res := make([]Resource, s.emitters)

	g, gctx := errgroup.WithContext(ctx)
	if s.loadLimit > 0 {
		g.SetLimit(s.loadLimit)
	}
	for i := range s.emitters {
		g.Go(func() error {
			r, err := s.loader.Load(gctx, i, track)
			if err != nil {
				return &DecodeError{Emitter: i, Track: track, Err: err}
			}
			res[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		closeAll(res)
		return nil, err
	}
	return res, nil
}

func closeRes(r Resource) {
	if r != nil {
		_ = r.Close()
	}
}

func closeAll(res []Resource) {
	for _, r := range res {
		closeRes(r)
	}
}
