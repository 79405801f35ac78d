// Package radiometry implements the physical-unit transformations for
// spectrogram data: detector count (DN) to photon conversion per detector
// channel, the exposure-time correction with its guard semantics, and the
// dust pixel mask.
package radiometry

import (
	"fmt"
	"strings"

	"github.com/ctessum/sparse"
	"github.com/ctessum/unit"
)

// photonDim is the base dimension photon counts and DN are expressed in.
var photonDim unit.Dimension

func init() {
	photonDim = unit.NewDimension("photon")
}

// Photon returns the photon count unit.
func Photon() *unit.Unit {
	return unit.New(1, unit.Dimensions{photonDim: 1})
}

// Channel identifies a detector channel with its own DN scaling.
type Channel int

const (
	// FUV is the far ultraviolet detector channel.
	FUV Channel = iota

	// NUV is the near ultraviolet detector channel.
	NUV

	// SJI is the slit-jaw imager channel.
	SJI
)

// String returns the channel name.
func (c Channel) String() string {
	switch c {
	case FUV:
		return "FUV"
	case NUV:
		return "NUV"
	case SJI:
		return "SJI"
	default:
		return "unknown"
	}
}

// photonsPerDN is the DN to photon conversion factor per channel.
var photonsPerDN = map[Channel]float64{
	FUV: 4,
	NUV: 18,
	SJI: 18,
}

// DNUnit returns the detector count unit of the channel, expressed as a
// scaled photon count.
func (c Channel) DNUnit() *unit.Unit {
	return unit.New(photonsPerDN[c], unit.Dimensions{photonDim: 1})
}

// ParseChannel maps a detector descriptor from an observation header,
// e.g. "FUV1" or "FUV2", onto its channel.
func ParseChannel(detector string) (Channel, error) {
	switch {
	case strings.Contains(detector, "FUV"):
		return FUV, nil
	case strings.Contains(detector, "NUV"):
		return NUV, nil
	case strings.Contains(detector, "SJI"):
		return SJI, nil
	default:
		return 0, fmt.Errorf("unrecognized detector descriptor %q", detector)
	}
}

// UnitsEqual reports whether two units have the same scale and the same
// base dimensions.
func UnitsEqual(a, b *unit.Unit) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Value() == b.Value() && a.Dimensions().Matches(b.Dimensions())
}

// Convert rescales a set of co-indexed data arrays from one photon-based
// unit to another, e.g. detector counts to photon counts and back. Either
// every array is converted or none is.
func Convert(arrays []*sparse.DenseArray, oldUnit, newUnit *unit.Unit) ([]*sparse.DenseArray, *unit.Unit, error) {
	if oldUnit == nil || newUnit == nil {
		return nil, nil, fmt.Errorf("conversion requires both units")
	}
	if !oldUnit.Dimensions().Matches(newUnit.Dimensions()) {
		return nil, nil, fmt.Errorf("cannot convert between units with different dimensions: %s vs %s",
			oldUnit.Dimensions().String(), newUnit.Dimensions().String())
	}
	factor := oldUnit.Value() / newUnit.Value()
	out := make([]*sparse.DenseArray, len(arrays))
	for i, a := range arrays {
		c := a.Copy()
		c.Scale(factor)
		out[i] = c
	}
	return out, newUnit, nil
}
