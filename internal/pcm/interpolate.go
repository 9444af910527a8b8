// SPDX-License-Identifier: EPL-2.0

package pcm

// Cubic returns the Catmull-Rom interpolation between y1 and y2.
// frac is the fractional position between them (0 <= frac <= 1); y0 and y3
// are the neighbouring samples.
func Cubic(y0, y1, y2, y3, frac float32) float32 {
	a := -0.5*y0 + 1.5*y1 - 1.5*y2 + 0.5*y3
	b := y0 - 2.5*y1 + 2*y2 - 0.5*y3
	c := -0.5*y0 + 0.5*y2

	return ((a*frac+b)*frac+c)*frac + y1
}
