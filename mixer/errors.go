// SPDX-License-Identifier: EPL-2.0

package mixer

import "errors"

var (
	ErrVoiceClosed     = errors.New("voice closed")
	ErrSlotBusy        = errors.New("emitter already connected")
	ErrUnknownEmitter  = errors.New("unknown emitter")
	ErrForeignResource = errors.New("resource is not a mixer voice")
	ErrRateMismatch    = errors.New("voice sample rate differs from bus")
	ErrBusClosed       = errors.New("bus closed")
)
