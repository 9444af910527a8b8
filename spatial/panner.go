// SPDX-License-Identifier: EPL-2.0

package spatial

import "math"

// Pose is the listener's placement used for panning.
type Pose struct {
	Position Vec2
	Rotation float64
}

func (p Pose) Forward() Vec2 { return Forward(p.Rotation) }

// Azimuth returns the bearing of src relative to the listener's forward
// direction in degrees, in (-180, 180]. Positive values are to the right.
func Azimuth(p Pose, src Vec2) float64 {
	s := src.Sub(p.Position)
	if s.Len() == 0 {
		return 0
	}
	return math.Atan2(s.Dot(Right(p.Rotation)), s.Dot(Forward(p.Rotation))) * 180 / math.Pi
}

// Pan computes equal-power stereo gains for a source at src. Sources behind
// the listener are folded to the front, so left and right are symmetric.
func Pan(p Pose, src Vec2) (left, right float64) {
	az := Azimuth(p, src)
	switch {
	case az > 90:
		az = 180 - az
	case az < -90:
		az = -180 - az
	}

	x := (az + 90) / 180
	return math.Cos(x * math.Pi / 2), math.Sin(x * math.Pi / 2)
}
