// SPDX-License-Identifier: EPL-2.0

package listener

import "errors"

var ErrInvalidBoundaries = errors.New("boundaries must satisfy 0 < soft < hard")
