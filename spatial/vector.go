// SPDX-License-Identifier: EPL-2.0

package spatial

import "math"

// Vec2 is a point or direction on the horizontal (x, z) plane.
type Vec2 struct {
	X, Z float64
}

func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Z + o.Z} }
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Z - o.Z} }
func (v Vec2) Scale(k float64) Vec2 {
	return Vec2{v.X * k, v.Z * k}
}

func (v Vec2) Dot(o Vec2) float64 { return v.X*o.X + v.Z*o.Z }
func (v Vec2) Len() float64       { return math.Hypot(v.X, v.Z) }

// Unit returns v scaled to length 1, or the zero vector when v is zero.
func (v Vec2) Unit() Vec2 {
	l := v.Len()
	if l == 0 {
		return Vec2{}
	}
	return v.Scale(1 / l)
}

// Forward is the facing direction for a rotation in radians. Rotation 0
// faces +z and positive rotation turns toward +x.
func Forward(rotation float64) Vec2 {
	return Vec2{math.Sin(rotation), math.Cos(rotation)}
}

// Right is the listener's right-hand direction for a rotation.
func Right(rotation float64) Vec2 {
	return Vec2{-math.Cos(rotation), math.Sin(rotation)}
}
