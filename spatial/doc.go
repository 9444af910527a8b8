// SPDX-License-Identifier: EPL-2.0

// Package spatial holds the static geometry of an installation: emitter
// positions on a circle, distance attenuation laws and equal-power stereo
// panning relative to a listener pose.
//
// Coordinates live on the horizontal plane as (x, z). A rotation of 0
// faces +z; the forward vector is (sin r, cos r).
package spatial
