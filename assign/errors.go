// SPDX-License-Identifier: EPL-2.0

package assign

import (
	"errors"
	"fmt"
)

var (
	ErrCount      = errors.New("wrong number of media files")
	ErrShape      = errors.New("invalid assignment shape")
	ErrMissing    = errors.New("track slot unassigned")
	ErrOutOfRange = errors.New("track slot out of range")
	ErrDuplicate  = errors.New("track slot assigned twice")
	ErrUnnamed    = errors.New("file name does not encode a track slot")
)

// AssignmentError rejects a track assignment as a whole.
type AssignmentError struct {
	Reason string
	Err    error
}

func (e *AssignmentError) Error() string {
	return fmt.Sprintf("track assignment: %s", e.Reason)
}

func (e *AssignmentError) Unwrap() error { return e.Err }
