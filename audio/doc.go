// SPDX-License-Identifier: EPL-2.0

// Package audio provides the decoding primitives track loading is built on.
//
//   - Source: a stream of interleaved float32 samples in [-1, 1]
//   - Decoder: turns encoded media into a Source
//   - Registry: picks a Decoder by format key or file extension
//   - Resampler: cubic sample-rate conversion
//   - Downmixer: folds any channel layout to mono
//
// A typical track pipeline decodes, converts to the output rate and folds
// to mono:
//
//	dec, _ := registry.ForPath("1.01 Rain.mp3")
//	src, _ := dec.Decode(f)
//	mono := audio.NewDownmixer(audio.NewResampler(src, 48000))
//
// Sources return io.EOF once exhausted; any other error is a decode failure.
package audio
