// SPDX-License-Identifier: EPL-2.0

package pcm

// Clamp limits x to the normalized sample range [-1, 1].
func Clamp(x float32) float32 {
	if x > 1 {
		return 1
	}
	if x < -1 {
		return -1
	}
	return x
}

// FullScale returns the magnitude of the largest signed integer sample for
// the given bit depth. Unknown depths fall back to 16-bit.
func FullScale(bitDepth int) float32 {
	switch bitDepth {
	case 8:
		return 1 << 7
	case 24:
		return 1 << 23
	case 32:
		return 1 << 31
	default:
		return 1 << 15
	}
}

// FromInt normalizes a signed integer sample of the given bit depth.
func FromInt(v int, bitDepth int) float32 {
	return float32(v) / FullScale(bitDepth)
}

// ToInt converts a normalized sample to a signed integer of the given bit
// depth, clamping out-of-range input. The positive peak is one step below
// full scale so that 1.0 does not overflow.
func ToInt(x float32, bitDepth int) int {
	return int(Clamp(x) * (FullScale(bitDepth) - 1))
}
