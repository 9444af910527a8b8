// SPDX-License-Identifier: EPL-2.0

package spatialpbx

import "errors"

// ErrInvalidEngine is returned for an engine that cannot be built or run
// as asked.
var ErrInvalidEngine = errors.New("invalid engine setup")
