// SPDX-License-Identifier: EPL-2.0

package playback

import (
	"errors"
	"fmt"
)

var (
	ErrDestroyed            = errors.New("scheduler destroyed")
	ErrNotInitialized       = errors.New("scheduler not initialized")
	ErrAlreadyInitialized   = errors.New("scheduler already initialized")
	ErrTransitionInProgress = errors.New("transition already in progress")
	ErrTrackOutOfRange      = errors.New("track index out of range")
	ErrInvalidLayout        = errors.New("invalid scheduler layout")
)

// DecodeError reports a track that could not be loaded.
type DecodeError struct {
	Emitter int
	Track   int
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("loading emitter %d track %d: %v", e.Emitter, e.Track, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// GraphError reports a failed connect or disconnect of an emitter.
type GraphError struct {
	Emitter int
	Op      string
	Err     error
}

func (e *GraphError) Error() string {
	return fmt.Sprintf("%s emitter %d: %v", e.Op, e.Emitter, e.Err)
}

func (e *GraphError) Unwrap() error { return e.Err }
