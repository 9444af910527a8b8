// SPDX-License-Identifier: EPL-2.0

// Package output sends a rendered stereo mix to the sound card.
//
// A [Source] such as the mixer bus is pulled by the device through a
// [StreamReader], which encodes the float32 frames the way the ebiten audio
// context expects them. Only one device rate may be used per process.
package output
