// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidDstSize = errors.New("dst size must be multiple of channels")
	ErrUnknownFormat  = errors.New("unknown audio format")
	ErrInvalidRate    = errors.New("sample rate must be positive")
)

// FormatError reports media whose format has no registered decoder.
type FormatError struct {
	Path   string
	Format string
}

func (e *FormatError) Error() string {
	if e.Format == "" {
		return fmt.Sprintf("%s: no file extension: %v", e.Path, ErrUnknownFormat)
	}
	return fmt.Sprintf("%s: %q: %v", e.Path, e.Format, ErrUnknownFormat)
}

func (e *FormatError) Unwrap() error { return ErrUnknownFormat }
