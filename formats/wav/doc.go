// SPDX-License-Identifier: EPL-2.0

// Package wav decodes integer PCM WAV files (8, 16, 24 and 32 bit, any
// channel count) into audio.Source streams, and encodes float renders as
// 16-bit PCM WAV.
//
//	src, err := wav.Decoder{}.Decode(f)
//
//	err = wav.Encode(out, 48000, 2, stereo)
package wav
