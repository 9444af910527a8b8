// SPDX-License-Identifier: EPL-2.0

package assign

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
)

// Files are named "<emitter>.<track> ...", both 1-based; the track may be
// zero padded, as in "3.02 Building a World.mp3".
var slotName = regexp.MustCompile(`^(\d+)\.0*(\d+)`)

// ParseName returns the 0-based slot encoded in a file name.
func ParseName(name string) (emitter, track int, ok bool) {
	m := slotName.FindStringSubmatch(filepath.Base(name))
	if m == nil {
		return 0, 0, false
	}
	e, err1 := strconv.Atoi(m[1])
	t, err2 := strconv.Atoi(m[2])
	if err1 != nil || err2 != nil || e < 1 || t < 1 {
		return 0, 0, false
	}
	return e - 1, t - 1, true
}

// FromPaths builds a complete assignment from file paths. Exactly
// emitters*tracks paths must be given, each naming a distinct slot in
// range. Paths that do not follow the naming scheme are rejected.
func FromPaths(emitters, tracks int, paths []string) (*Assignment, error) {
	if want := emitters * tracks; len(paths) != want {
		return nil, &AssignmentError{Reason: fmt.Sprintf("got %d files, want %d", len(paths), want), Err: ErrCount}
	}

	a := New(emitters, tracks)
	for _, p := range paths {
		e, t, ok := ParseName(p)
		if !ok {
			return nil, &AssignmentError{Reason: fmt.Sprintf("%q does not start with <emitter>.<track>", filepath.Base(p)), Err: ErrUnnamed}
		}
		if err := a.check(e, t); err != nil {
			return nil, &AssignmentError{Reason: fmt.Sprintf("%q names slot %d.%d", filepath.Base(p), e+1, t+1), Err: ErrOutOfRange}
		}
		if prev, _ := a.Media(e, t); prev != nil {
			return nil, &AssignmentError{
				Reason: fmt.Sprintf("%q and %q both name slot %d.%d", prev.Name(), filepath.Base(p), e+1, t+1),
				Err:    ErrDuplicate,
			}
		}
		_ = a.Set(e, t, File(p))
	}

	return a, a.Validate()
}

// FromDir collects the regular files of dir whose names follow the slot
// scheme and assigns them. Other files are ignored.
func FromDir(emitters, tracks int, dir string) (*Assignment, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading media directory: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if _, _, ok := ParseName(e.Name()); ok {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	slices.Sort(paths)

	return FromPaths(emitters, tracks, paths)
}
