// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MPEG-1/2 Layer III audio through
// github.com/hajimehoshi/go-mp3.
//
// The decoder always yields interleaved stereo at the file's sample rate;
// mono files are duplicated onto both channels by go-mp3.
package mp3
