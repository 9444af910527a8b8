// SPDX-License-Identifier: EPL-2.0

package spatial

import (
	"fmt"
	"math"
	"strings"
)

// DistanceModel selects the gain law applied with distance.
type DistanceModel int

const (
	Inverse DistanceModel = iota
	Linear
	Exponential
)

func (m DistanceModel) String() string {
	switch m {
	case Linear:
		return "linear"
	case Inverse:
		return "inverse"
	case Exponential:
		return "exponential"
	}
	return fmt.Sprintf("DistanceModel(%d)", int(m))
}

// ParseDistanceModel accepts the names returned by String.
func ParseDistanceModel(s string) (DistanceModel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "linear":
		return Linear, nil
	case "inverse", "":
		return Inverse, nil
	case "exponential":
		return Exponential, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownDistanceModel, s)
}

func (m DistanceModel) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *DistanceModel) UnmarshalText(b []byte) error {
	v, err := ParseDistanceModel(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Attenuation holds positional distance parameters. The laws match the
// usual positional panner definitions: Linear fades to 1-Rolloff at
// MaxDistance, Inverse and Exponential fall off past RefDistance without
// an upper bound on distance.
type Attenuation struct {
	Model       DistanceModel
	RefDistance float64
	MaxDistance float64
	Rolloff     float64
}

func (a Attenuation) Validate() error {
	switch {
	case a.RefDistance <= 0:
		return fmt.Errorf("%w: reference distance %v", ErrInvalidAttenuation, a.RefDistance)
	case a.Model == Linear && a.MaxDistance <= a.RefDistance:
		return fmt.Errorf("%w: max distance %v not above reference %v", ErrInvalidAttenuation, a.MaxDistance, a.RefDistance)
	case a.Rolloff < 0:
		return fmt.Errorf("%w: rolloff %v", ErrInvalidAttenuation, a.Rolloff)
	}
	return nil
}

// Gain returns the amplitude factor for a source d units away.
func (a Attenuation) Gain(d float64) float64 {
	ref := a.RefDistance
	if ref <= 0 {
		ref = 1
	}

	switch a.Model {
	case Linear:
		maxd := max(a.MaxDistance, ref)
		if maxd == ref {
			return 1
		}
		d = min(max(d, ref), maxd)
		rolloff := min(a.Rolloff, 1)
		return 1 - rolloff*(d-ref)/(maxd-ref)
	case Exponential:
		d = max(d, ref)
		return math.Pow(d/ref, -a.Rolloff)
	default:
		d = max(d, ref)
		return ref / (ref + a.Rolloff*(d-ref))
	}
}
