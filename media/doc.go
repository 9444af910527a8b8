// SPDX-License-Identifier: EPL-2.0

// Package media turns assigned media into playable voices. Tracks are
// decoded in full by extension, folded to mono and resampled to the bus
// rate, so a voice's media clock is exact.
package media
