// SPDX-License-Identifier: EPL-2.0

// Package mixer renders emitters to stereo. A Voice is one decoded track
// with its own media clock; a Bus holds one slot per emitter and, for every
// block, reads each connected voice, feeds its loudness tap, applies
// distance attenuation and equal-power panning for the current listener
// pose, and sums the result.
package mixer
