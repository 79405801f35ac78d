// Package cube provides the data structures for slit-spectrograph
// observations: a single coordinate-aware spectrogram cube, sequences of
// cubes, and raster-scan sequences with their two slicing views. Cubes
// expose named coordinate accessors resolved through the axes package and
// radiometric unit conversions through the radiometry package.
package cube

import (
	"fmt"
	"strings"

	"github.com/ctessum/sparse"
	"github.com/ctessum/unit"
	"gonum.org/v1/gonum/floats"

	"slitspec/internal/models"
	"slitspec/pkg/axes"
	"slitspec/pkg/radiometry"
)

// Options carries the optional attributes of a spectrogram cube.
type Options struct {
	// Extras lists coordinates not expressible in the frame, each tagged
	// to zero or more pixel axes.
	Extras []axes.ExtraCoord

	// Unit is the physical unit of the data values.
	Unit *unit.Unit

	// Uncertainty is co-shaped with the data.
	Uncertainty *sparse.DenseArray

	// Mask is aligned with the flattened data elements and follows the
	// valid=false convention.
	Mask []bool

	// Meta is the observation identity.
	Meta *models.Observation
}

// Cube is a single N-dimensional spectrogram observation described by one
// coordinate frame. The axis-role bindings are resolved once at
// construction and never mutated; slicing produces a new cube with
// freshly resolved bindings.
type Cube struct {
	data        *sparse.DenseArray
	frame       axes.Frame
	extras      map[string]axes.ExtraCoord
	unit        *unit.Unit
	uncertainty *sparse.DenseArray
	mask        []bool
	meta        *models.Observation
	bindings    map[axes.Role]axes.Binding
}

// New constructs a cube from its data array and coordinate frame,
// validating that uncertainty and mask are co-shaped with the data, and
// resolves the axis-role bindings.
func New(data *sparse.DenseArray, frame axes.Frame, opts *Options) (*Cube, error) {
	if data == nil {
		return nil, fmt.Errorf("cube needs a data array")
	}
	if frame == nil {
		return nil, fmt.Errorf("cube needs a coordinate frame")
	}
	if opts == nil {
		opts = &Options{}
	}
	if opts.Uncertainty != nil && !shapesEqual(opts.Uncertainty.Shape, data.Shape) {
		return nil, fmt.Errorf("uncertainty shape %v does not match data shape %v",
			opts.Uncertainty.Shape, data.Shape)
	}
	if opts.Mask != nil && len(opts.Mask) != len(data.Elements) {
		return nil, fmt.Errorf("mask has %d entries but data has %d elements",
			len(opts.Mask), len(data.Elements))
	}
	extras := make(map[string]axes.ExtraCoord, len(opts.Extras))
	for _, ec := range opts.Extras {
		if ec.Name == "" {
			return nil, fmt.Errorf("extra coordinate with empty name")
		}
		if _, dup := extras[ec.Name]; dup {
			return nil, fmt.Errorf("duplicate extra coordinate %q", ec.Name)
		}
		for _, p := range ec.Axes {
			if p < 0 || p >= len(data.Shape) {
				return nil, fmt.Errorf("extra coordinate %q tied to axis %d of a rank-%d cube",
					ec.Name, p, len(data.Shape))
			}
		}
		if len(ec.Axes) == 1 && len(ec.Values) != data.Shape[ec.Axes[0]] {
			return nil, fmt.Errorf("extra coordinate %q has %d values but axis %d has length %d",
				ec.Name, len(ec.Values), ec.Axes[0], data.Shape[ec.Axes[0]])
		}
		extras[ec.Name] = ec
	}
	c := &Cube{
		data:        data,
		frame:       frame,
		extras:      extras,
		unit:        opts.Unit,
		uncertainty: opts.Uncertainty,
		mask:        opts.Mask,
		meta:        opts.Meta,
		bindings:    make(map[axes.Role]axes.Binding),
	}
	for _, role := range axes.Roles() {
		if b, ok := axes.Resolve(role, frame, extras); ok {
			c.bindings[role] = b
		}
	}
	return c, nil
}

// Data returns the data array.
func (c *Cube) Data() *sparse.DenseArray { return c.data }

// Frame returns the coordinate frame.
func (c *Cube) Frame() axes.Frame { return c.frame }

// Unit returns the physical unit of the data, which may be nil.
func (c *Cube) Unit() *unit.Unit { return c.unit }

// Uncertainty returns the uncertainty array, which may be nil.
func (c *Cube) Uncertainty() *sparse.DenseArray { return c.uncertainty }

// Mask returns the mask aligned with the flattened data, which may be nil.
func (c *Cube) Mask() []bool { return c.mask }

// Meta returns the observation identity, which may be nil.
func (c *Cube) Meta() *models.Observation { return c.meta }

// Dimensions returns the pixel shape of the cube.
func (c *Cube) Dimensions() []int {
	out := make([]int, len(c.data.Shape))
	copy(out, c.data.Shape)
	return out
}

// Extras returns the extra coordinates in declaration-independent,
// name-keyed form.
func (c *Cube) Extras() map[string]axes.ExtraCoord {
	out := make(map[string]axes.ExtraCoord, len(c.extras))
	for k, v := range c.extras {
		out[k] = v
	}
	return out
}

// Binding returns the resolved binding for a role, if any.
func (c *Cube) Binding(role axes.Role) (axes.Binding, bool) {
	b, ok := c.bindings[role]
	return b, ok
}

// WorldAxisPhysicalTypes returns the declared physical type labels of the
// coordinate frame.
func (c *Cube) WorldAxisPhysicalTypes() []string {
	return c.frame.WorldAxisPhysicalTypes()
}

// PixelAxesForWorldType reverse-maps a world type name to the pixel axes
// it correlates with, searching both the frame and the extra coordinates.
func (c *Cube) PixelAxesForWorldType(name string) ([]int, error) {
	return axes.PixelAxesForName(name, c.frame, c.extras)
}

// WorldTypesForPixelAxis returns the world type names associated with one
// pixel axis, from the frame and the extra coordinates.
func (c *Cube) WorldTypesForPixelAxis(axis int) []string {
	return axes.WorldTypesForAxis(axis, c.frame, c.extras)
}

// coord resolves a role accessor through the cube's bindings.
func (c *Cube) coord(role axes.Role) ([]float64, error) {
	b, ok := c.bindings[role]
	if !ok {
		return nil, &axes.AxisNotFoundError{Role: role, Synonyms: axes.Synonyms(role)}
	}
	return axes.Value(b, c.frame, c.extras)
}

// Spectral returns the spectral coordinate values.
func (c *Cube) Spectral() ([]float64, error) { return c.coord(axes.Spectral) }

// Time returns the time coordinate values.
func (c *Cube) Time() ([]float64, error) { return c.coord(axes.Time) }

// ExposureTime returns the per-exposure integration times in seconds.
func (c *Cube) ExposureTime() ([]float64, error) { return c.coord(axes.ExposureTime) }

// Lon returns the longitude coordinate values.
func (c *Cube) Lon() ([]float64, error) { return c.coord(axes.Longitude) }

// Lat returns the latitude coordinate values.
func (c *Cube) Lat() ([]float64, error) { return c.coord(axes.Latitude) }

// ApplyExposureTimeCorrection applies (or, with undo, removes) the
// exposure-time normalization on the data and uncertainty together and
// adjusts the unit. Unless force is set the correction is refused when
// the unit's time basis contradicts the requested direction. The receiver
// is left untouched; a new cube is returned with the bindings carried
// over unchanged, since unit conversion does not move coordinate roles.
func (c *Cube) ApplyExposureTimeCorrection(undo, force bool) (*Cube, error) {
	if c.unit == nil {
		return nil, fmt.Errorf("exposure time correction requires a data unit")
	}
	exposure, err := c.ExposureTime()
	if err != nil {
		return nil, err
	}
	arrays := []*sparse.DenseArray{c.data}
	if c.uncertainty != nil {
		arrays = append(arrays, c.uncertainty)
	}
	var converted []*sparse.DenseArray
	var newUnit *unit.Unit
	if undo {
		converted, newUnit, err = radiometry.UndoExposure(arrays, c.unit, exposure, force)
	} else {
		converted, newUnit, err = radiometry.ApplyExposure(arrays, c.unit, exposure, force)
	}
	if err != nil {
		return nil, err
	}
	out := &Cube{
		data:        converted[0],
		frame:       c.frame,
		extras:      c.extras,
		unit:        newUnit,
		mask:        c.mask,
		meta:        c.meta,
		bindings:    c.bindings,
		uncertainty: nil,
	}
	if c.uncertainty != nil {
		out.uncertainty = converted[1]
	}
	return out, nil
}

// ConvertTo rescales the data and uncertainty to another unit sharing the
// same base dimensions, e.g. between detector counts and photon counts.
func (c *Cube) ConvertTo(newUnit *unit.Unit) (*Cube, error) {
	arrays := []*sparse.DenseArray{c.data}
	if c.uncertainty != nil {
		arrays = append(arrays, c.uncertainty)
	}
	converted, u, err := radiometry.Convert(arrays, c.unit, newUnit)
	if err != nil {
		return nil, err
	}
	out := &Cube{
		data:     converted[0],
		frame:    c.frame,
		extras:   c.extras,
		unit:     u,
		mask:     c.mask,
		meta:     c.meta,
		bindings: c.bindings,
	}
	if c.uncertainty != nil {
		out.uncertainty = converted[1]
	}
	return out, nil
}

// Slice cuts the cube with one index per pixel axis; axes beyond the
// index list are kept whole. Scalar indices remove their axis; a removed
// frame world coordinate keeps its selected value as an axis-less extra
// coordinate, so the name stays resolvable. The data,
// uncertainty, mask, frame and extra coordinates are cut consistently and
// the axis-role bindings of the result are resolved fresh, since the
// pixel-axis-to-role correlation may shift once axes are removed.
func (c *Cube) Slice(idx ...axes.Index) (*Cube, error) {
	if len(idx) > len(c.data.Shape) {
		return nil, fmt.Errorf("got %d indices for a rank-%d cube", len(idx), len(c.data.Shape))
	}
	offsets, outShape, err := sliceOffsets(c.data.Shape, idx)
	if err != nil {
		return nil, err
	}
	newData := sparse.ZerosDense(outShape...)
	for i, off := range offsets {
		newData.Elements[i] = c.data.Elements[off]
	}
	var newUncertainty *sparse.DenseArray
	if c.uncertainty != nil {
		newUncertainty = sparse.ZerosDense(outShape...)
		for i, off := range offsets {
			newUncertainty.Elements[i] = c.uncertainty.Elements[off]
		}
	}
	var newMask []bool
	if c.mask != nil {
		newMask = make([]bool, len(offsets))
		for i, off := range offsets {
			newMask[i] = c.mask[off]
		}
	}
	newFrame, err := c.frame.Slice(idx)
	if err != nil {
		return nil, err
	}
	newExtras, err := remapExtras(c.extras, c.data.Shape, idx)
	if err != nil {
		return nil, err
	}
	dropped, err := droppedWorldCoords(c.frame, c.data.Shape, idx)
	if err != nil {
		return nil, err
	}
	for _, ec := range dropped {
		if _, taken := c.extras[ec.Name]; taken {
			continue
		}
		newExtras = append(newExtras, ec)
	}
	return New(newData, newFrame, &Options{
		Extras:      newExtras,
		Unit:        c.unit,
		Uncertainty: newUncertainty,
		Mask:        newMask,
		Meta:        c.meta,
	})
}

// String renders a human-readable summary. Coordinate roles without a
// binding render as None instead of failing.
func (c *Cube) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "SpectrogramCube\n")
	fmt.Fprintf(&b, "---------------\n")
	fmt.Fprintf(&b, "Time Period: %s\n", c.rangeString(axes.Time))
	fmt.Fprintf(&b, "Pixel Dimensions: %v\n", c.data.Shape)
	fmt.Fprintf(&b, "Longitude range: %s\n", c.rangeString(axes.Longitude))
	fmt.Fprintf(&b, "Latitude range: %s\n", c.rangeString(axes.Latitude))
	fmt.Fprintf(&b, "Spectral range: %s\n", c.rangeString(axes.Spectral))
	fmt.Fprintf(&b, "Data unit: %s", unitString(c.unit))
	return b.String()
}

func (c *Cube) rangeString(role axes.Role) string {
	vals, err := c.coord(role)
	return rangeString(vals, err)
}

// rangeString formats a coordinate value range; absent or empty
// coordinates render as None.
func rangeString(vals []float64, err error) string {
	if err != nil || len(vals) == 0 {
		return "None"
	}
	lo, hi := floats.Min(vals), floats.Max(vals)
	if lo == hi {
		return fmt.Sprintf("%g", lo)
	}
	return fmt.Sprintf("[%g, %g]", lo, hi)
}

// unitString formats a unit as its scale and base dimensions.
func unitString(u *unit.Unit) string {
	if u == nil {
		return "None"
	}
	return fmt.Sprintf("%g %s", u.Value(), u.Dimensions().String())
}

func shapesEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
