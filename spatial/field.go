// SPDX-License-Identifier: EPL-2.0

package spatial

import (
	"fmt"
	"math"
)

// Positions places n points evenly on a circle of the given radius around
// the origin. Point i sits at angle offset + 2πi/n.
func Positions(n int, radius, offset float64) []Vec2 {
	return Star(n, 1, radius, offset)
}

// Star is Positions with point i at angle offset + 2π·stride·i/n. A stride
// coprime to n visits every vertex once, so 2 on five points traces a
// pentagram.
func Star(n, stride int, radius, offset float64) []Vec2 {
	if n <= 0 {
		return nil
	}

	out := make([]Vec2, n)
	step := 2 * math.Pi / float64(n)
	for i := range out {
		a := offset + step*float64(stride*i%n)
		out[i] = Vec2{X: radius * math.Cos(a), Z: radius * math.Sin(a)}
	}
	return out
}

// Emitter is a fixed point that sounds one track at a time.
type Emitter struct {
	Index    int
	Name     string
	Position Vec2
}

// Field is the static emitter geometry shared by every emitter, with one
// attenuation law for all of them.
type Field struct {
	Radius      float64
	Attenuation Attenuation
	emitters    []Emitter
}

// NewField lays out n emitters with Positions. Names are applied in order;
// missing ones default to "Emitter <i+1>".
func NewField(n int, radius, offset float64, att Attenuation, names ...string) *Field {
	return NewFieldAt(Positions(n, radius, offset), radius, att, names...)
}

// NewFieldAt places one emitter on each point.
func NewFieldAt(pts []Vec2, radius float64, att Attenuation, names ...string) *Field {
	f := &Field{Radius: radius, Attenuation: att, emitters: make([]Emitter, len(pts))}
	for i, p := range pts {
		name := fmt.Sprintf("Emitter %d", i+1)
		if i < len(names) && names[i] != "" {
			name = names[i]
		}
		f.emitters[i] = Emitter{Index: i, Name: name, Position: p}
	}
	return f
}

func (f *Field) Len() int { return len(f.emitters) }

// Emitter returns emitter i. ok is false when i is out of range.
func (f *Field) Emitter(i int) (Emitter, bool) {
	if i < 0 || i >= len(f.emitters) {
		return Emitter{}, false
	}
	return f.emitters[i], true
}

// Emitters returns a copy of the layout.
func (f *Field) Emitters() []Emitter {
	return append([]Emitter(nil), f.emitters...)
}
