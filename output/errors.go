// SPDX-License-Identifier: EPL-2.0

package output

import "errors"

// ErrRateInUse is returned when the device is already open at another rate.
var ErrRateInUse = errors.New("output already open at another sample rate")
