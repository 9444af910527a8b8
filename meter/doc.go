// SPDX-License-Identifier: EPL-2.0

// Package meter estimates the loudness of a live signal. A Tap records the
// most recent samples on the audio thread and a Meter turns the window into
// a level between 0 (-60 dBFS or quieter) and 1 (0 dBFS).
package meter
