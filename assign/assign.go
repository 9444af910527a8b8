// SPDX-License-Identifier: EPL-2.0

package assign

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sync"
)

// Media is an opaque decodable blob. Name carries the extension used to
// pick a decoder.
type Media interface {
	Name() string
	Open() (io.ReadCloser, error)
}

// File is media on disk.
type File string

func (f File) Name() string                 { return filepath.Base(string(f)) }
func (f File) Open() (io.ReadCloser, error) { return os.Open(string(f)) }

// Assignment maps every (emitter, track slot) pair to media.
type Assignment struct {
	mu       sync.RWMutex
	emitters int
	tracks   int
	media    [][]Media
}

func New(emitters, tracks int) *Assignment {
	a := &Assignment{emitters: emitters, tracks: tracks, media: make([][]Media, max(emitters, 0))}
	for i := range a.media {
		a.media[i] = make([]Media, max(tracks, 0))
	}
	return a
}

func (a *Assignment) Emitters() int { return a.emitters }
func (a *Assignment) Tracks() int   { return a.tracks }

// Set assigns m to a slot, replacing what was there.
func (a *Assignment) Set(emitter, track int, m Media) error {
	if err := a.check(emitter, track); err != nil {
		return err
	}

	a.mu.Lock()
	a.media[emitter][track] = m
	a.mu.Unlock()
	return nil
}

// Media returns the media of a slot.
func (a *Assignment) Media(emitter, track int) (Media, error) {
	if err := a.check(emitter, track); err != nil {
		return nil, err
	}

	a.mu.RLock()
	m := a.media[emitter][track]
	a.mu.RUnlock()

	if m == nil {
		return nil, &AssignmentError{Reason: fmt.Sprintf("emitter %d track %d unassigned", emitter, track), Err: ErrMissing}
	}
	return m, nil
}

// Missing lists unassigned slots as (emitter, track) pairs.
func (a *Assignment) Missing() [][2]int {
	a.mu.RLock()
	defer a.mu.RUnlock()

	var out [][2]int
	for e, row := range a.media {
		for t, m := range row {
			if m == nil {
				out = append(out, [2]int{e, t})
			}
		}
	}
	return out
}

// Validate fails unless every slot is assigned.
func (a *Assignment) Validate() error {
	if a.emitters <= 0 || a.tracks <= 0 {
		return &AssignmentError{Reason: fmt.Sprintf("%d emitters by %d tracks", a.emitters, a.tracks), Err: ErrShape}
	}
	if missing := a.Missing(); len(missing) > 0 {
		return &AssignmentError{
			Reason: fmt.Sprintf("%d of %d slots unassigned, first emitter %d track %d",
				len(missing), a.emitters*a.tracks, missing[0][0], missing[0][1]),
			Err: ErrMissing,
		}
	}
	return nil
}

// Names returns the assigned media names by emitter, for logs.
func (a *Assignment) Names() map[int][]string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make(map[int][]string, a.emitters)
	for e, row := range a.media {
		for _, m := range row {
			if m != nil {
				out[e] = append(out[e], m.Name())
			}
		}
		slices.Sort(out[e])
	}
	return out
}

func (a *Assignment) check(emitter, track int) error {
	if emitter < 0 || emitter >= a.emitters || track < 0 || track >= a.tracks {
		return &AssignmentError{Reason: fmt.Sprintf("slot %d.%d outside %dx%d", emitter, track, a.emitters, a.tracks), Err: ErrOutOfRange}
	}
	return nil
}
