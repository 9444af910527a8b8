// SPDX-License-Identifier: EPL-2.0

package spatial

import "errors"

var (
	ErrUnknownDistanceModel = errors.New("unknown distance model")
	ErrInvalidAttenuation   = errors.New("invalid attenuation parameters")
)
