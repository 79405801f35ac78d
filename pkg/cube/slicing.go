package cube

import (
	"fmt"
	"sort"

	"slitspec/pkg/axes"
)

// sliceOffsets computes, for a row-major array of the given shape cut by
// the given per-axis indices, the flat input offset of every element of
// the result in output order, together with the output shape (scalar
// indexed axes dropped).
func sliceOffsets(shape []int, idx []axes.Index) ([]int, []int, error) {
	ndim := len(shape)
	strides := make([]int, ndim)
	stride := 1
	for p := ndim - 1; p >= 0; p-- {
		strides[p] = stride
		stride *= shape[p]
	}
	starts := make([]int, ndim)
	stops := make([]int, ndim)
	var outShape []int
	total := 1
	for p := 0; p < ndim; p++ {
		in := axes.All()
		if p < len(idx) {
			in = idx[p]
		}
		start, stop, err := in.Bounds(shape[p])
		if err != nil {
			return nil, nil, fmt.Errorf("axis %d: %w", p, err)
		}
		starts[p], stops[p] = start, stop
		if !in.IsScalar() {
			outShape = append(outShape, stop-start)
		}
		total *= stop - start
	}
	offsets := make([]int, 0, total)
	var walk func(p, offset int)
	walk = func(p, offset int) {
		if p == ndim {
			offsets = append(offsets, offset)
			return
		}
		for k := starts[p]; k < stops[p]; k++ {
			walk(p+1, offset+k*strides[p])
		}
	}
	walk(0, 0)
	return offsets, outShape, nil
}

// remapExtras rewrites the extra-coordinate table after a cut: axis tags
// are renumbered for the surviving axes, values of single-axis
// coordinates are cut to the selected range, and a coordinate whose only
// axis was removed by a scalar index keeps the single selected value and
// becomes axis-less, staying addressable by name.
func remapExtras(extras map[string]axes.ExtraCoord, shape []int, idx []axes.Index) ([]axes.ExtraCoord, error) {
	axisMap := make([]int, len(shape))
	next := 0
	for p := range shape {
		scalar := p < len(idx) && idx[p].IsScalar()
		if scalar {
			axisMap[p] = -1
			continue
		}
		axisMap[p] = next
		next++
	}
	names := make([]string, 0, len(extras))
	for name := range extras {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]axes.ExtraCoord, 0, len(extras))
	for _, name := range names {
		ec := extras[name]
		if len(ec.Axes) == 0 {
			out = append(out, ec)
			continue
		}
		var newAxes []int
		for _, p := range ec.Axes {
			if axisMap[p] >= 0 {
				newAxes = append(newAxes, axisMap[p])
			}
		}
		// A multi-axis coordinate that loses any of its axes no longer
		// lines up with the surviving ones; it keeps its values untied.
		if len(ec.Axes) > 1 && len(newAxes) < len(ec.Axes) {
			newAxes = nil
		}
		values := ec.Values
		// Single-axis values are co-length with their axis, checked at
		// construction, so they cut to the selected range.
		if len(ec.Axes) == 1 {
			p := ec.Axes[0]
			in := axes.All()
			if p < len(idx) {
				in = idx[p]
			}
			start, stop, err := in.Bounds(shape[p])
			if err != nil {
				return nil, fmt.Errorf("extra coordinate %q: %w", ec.Name, err)
			}
			values = append([]float64(nil), ec.Values[start:stop]...)
		}
		out = append(out, axes.ExtraCoord{Name: ec.Name, Axes: newAxes, Values: values})
	}
	return out, nil
}

// droppedWorldCoords evaluates, for every frame world axis removed by a
// scalar pixel index, the single selected world value. Like a cut
// single-axis extra coordinate, the value becomes an axis-less
// coordinate keyed by the physical type label, so the resolver can
// still bind the name after the axis itself is gone.
func droppedWorldCoords(frame axes.Frame, shape []int, idx []axes.Index) ([]axes.ExtraCoord, error) {
	var out []axes.ExtraCoord
	for w, label := range frame.WorldAxisPhysicalTypes() {
		pix := frame.PixelAxes(w)
		if len(pix) != 1 {
			continue
		}
		p := pix[0]
		if p >= len(idx) || !idx[p].IsScalar() {
			continue
		}
		values, err := frame.WorldValues(w)
		if err != nil {
			return nil, fmt.Errorf("world axis %q: %w", label, err)
		}
		start, _, err := idx[p].Bounds(shape[p])
		if err != nil {
			return nil, fmt.Errorf("world axis %q: %w", label, err)
		}
		out = append(out, axes.ExtraCoord{Name: label, Values: []float64{values[start]}})
	}
	return out, nil
}

// remapAxis returns the position of pixel axis a after scalar-indexed
// axes before it have been dropped.
func remapAxis(a int, idx []axes.Index) int {
	dropped := 0
	for p := 0; p < a && p < len(idx); p++ {
		if idx[p].IsScalar() {
			dropped++
		}
	}
	return a - dropped
}
