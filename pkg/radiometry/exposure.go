package radiometry

import (
	"fmt"

	"github.com/ctessum/sparse"
	"github.com/ctessum/unit"
)

// ApplyExposure divides every array by the exposure time and divides the
// unit by seconds, normalizing counts to count rates.
//
// Unless force is set, the correction is refused with a GuardError when
// the decomposed unit already contains the time base, since that means
// the correction has probably been applied before. Exposure holds the
// integration time in seconds: a single element broadcasts across each
// whole array, while a per-exposure vector is aligned with the leading
// axis of each array. Arrays of rank greater than 3 are unsupported for
// per-exposure alignment and fail with a ShapeError. Either every array
// is transformed or none is.
func ApplyExposure(arrays []*sparse.DenseArray, u *unit.Unit, exposure []float64, force bool) ([]*sparse.DenseArray, *unit.Unit, error) {
	if !force && u.Dimensions()[unit.TimeDim] != 0 {
		return nil, nil, &GuardError{msg: applyGuardMsg}
	}
	out, err := scaleByExposure(arrays, exposure, true)
	if err != nil {
		return nil, nil, err
	}
	return out, unit.Div(u, unit.New(1, unit.Second)), nil
}

// UndoExposure multiplies every array by the exposure time and multiplies
// the unit by seconds, reversing ApplyExposure.
//
// Unless force is set, the correction is refused with a GuardError when
// the unit multiplied by seconds still contains the time base, since that
// means the unit held no inverse time and the correction has probably
// been undone before. Broadcasting follows the same rules as
// ApplyExposure.
func UndoExposure(arrays []*sparse.DenseArray, u *unit.Unit, exposure []float64, force bool) ([]*sparse.DenseArray, *unit.Unit, error) {
	if !force && u.Dimensions()[unit.TimeDim]+1 != 0 {
		return nil, nil, &GuardError{msg: undoGuardMsg}
	}
	out, err := scaleByExposure(arrays, exposure, false)
	if err != nil {
		return nil, nil, err
	}
	return out, unit.Mul(u, unit.New(1, unit.Second)), nil
}

// scaleByExposure divides (invert=true) or multiplies each array by the
// exposure time. A per-exposure vector indexes the leading axis; trailing
// axes broadcast by stride, the general form of inserting trailing
// singleton dimensions.
func scaleByExposure(arrays []*sparse.DenseArray, exposure []float64, invert bool) ([]*sparse.DenseArray, error) {
	if len(exposure) == 0 {
		return nil, fmt.Errorf("exposure time is empty")
	}
	out := make([]*sparse.DenseArray, len(arrays))
	for i, a := range arrays {
		if a == nil {
			return nil, fmt.Errorf("array %d is nil", i)
		}
		if len(exposure) > 1 {
			if len(a.Shape) > 3 {
				return nil, &ShapeError{Op: "per-exposure broadcasting", Rank: len(a.Shape)}
			}
			if a.Shape[0] != len(exposure) {
				return nil, fmt.Errorf("per-exposure vector has %d entries but the leading axis has length %d",
					len(exposure), a.Shape[0])
			}
		}
		stride := 1
		for _, n := range a.Shape[1:] {
			stride *= n
		}
		c := a.Copy()
		for j := range c.Elements {
			t := exposure[0]
			if len(exposure) > 1 {
				t = exposure[j/stride]
			}
			if invert {
				c.Elements[j] /= t
			} else {
				c.Elements[j] *= t
			}
		}
		out[i] = c
	}
	return out, nil
}
