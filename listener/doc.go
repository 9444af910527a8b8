// SPDX-License-Identifier: EPL-2.0

// Package listener simulates the moving listener: a damped random walk that
// is pulled back past a soft boundary, direct steering while controls are
// held, and a hard boundary that clamps position and bounces velocity.
package listener
