// Package wcs provides a minimal world coordinate system for slit
// spectrograph observations: one linear world axis per pixel axis, each
// carrying a physical type label, a reference value and a step. It
// implements the frame interface consumed by the axes resolver, including
// the slicing semantics that keep coordinate metadata consistent when a
// cube is cut.
package wcs

import (
	"fmt"

	"slitspec/pkg/axes"
)

// Axis describes one linear world axis.
type Axis struct {
	// PhysicalType is the world axis physical type label, e.g. "em.wl"
	// or "custom:pos.helioprojective.lat".
	PhysicalType string

	// Start is the world coordinate of pixel 0.
	Start float64

	// Step is the world coordinate increment per pixel.
	Step float64

	// Len is the number of pixels along the axis.
	Len int
}

// Frame is a linear world coordinate system with a diagonal pixel/world
// axis correlation: world axis i describes pixel axis i.
type Frame struct {
	axes []Axis
}

// New builds a frame from its axes, listed in pixel axis order.
func New(axs ...Axis) (*Frame, error) {
	if len(axs) == 0 {
		return nil, fmt.Errorf("frame needs at least one axis")
	}
	for i, ax := range axs {
		if ax.PhysicalType == "" {
			return nil, fmt.Errorf("axis %d has no physical type", i)
		}
		if ax.Len <= 0 {
			return nil, fmt.Errorf("axis %d (%s) has non-positive length %d", i, ax.PhysicalType, ax.Len)
		}
	}
	own := make([]Axis, len(axs))
	copy(own, axs)
	return &Frame{axes: own}, nil
}

// NumAxes returns the number of world (and pixel) axes.
func (f *Frame) NumAxes() int { return len(f.axes) }

// WorldAxisPhysicalTypes returns the physical type labels in world axis
// order.
func (f *Frame) WorldAxisPhysicalTypes() []string {
	types := make([]string, len(f.axes))
	for i, ax := range f.axes {
		types[i] = ax.PhysicalType
	}
	return types
}

// PixelAxes returns the pixel axes correlated with a world axis. The
// correlation is diagonal, so each world axis maps to the single pixel
// axis with the same index.
func (f *Frame) PixelAxes(worldAxis int) []int {
	if worldAxis < 0 || worldAxis >= len(f.axes) {
		return nil
	}
	return []int{worldAxis}
}

// WorldValues evaluates the coordinate values along a world axis.
func (f *Frame) WorldValues(worldAxis int) ([]float64, error) {
	if worldAxis < 0 || worldAxis >= len(f.axes) {
		return nil, fmt.Errorf("world axis %d out of range (frame has %d axes)", worldAxis, len(f.axes))
	}
	ax := f.axes[worldAxis]
	vals := make([]float64, ax.Len)
	for k := range vals {
		vals[k] = ax.Start + float64(k)*ax.Step
	}
	return vals, nil
}

// Slice returns the frame remaining after applying per-pixel-axis
// indices. Scalar-indexed axes are removed; span-indexed axes keep their
// step with the reference value advanced to the span start. Axes beyond
// the index list are kept whole.
func (f *Frame) Slice(idx []axes.Index) (axes.Frame, error) {
	if len(idx) > len(f.axes) {
		return nil, fmt.Errorf("got %d indices for a frame with %d axes", len(idx), len(f.axes))
	}
	var kept []Axis
	for p, ax := range f.axes {
		in := axes.All()
		if p < len(idx) {
			in = idx[p]
		}
		start, stop, err := in.Bounds(ax.Len)
		if err != nil {
			return nil, fmt.Errorf("axis %d (%s): %w", p, ax.PhysicalType, err)
		}
		if in.IsScalar() {
			continue
		}
		kept = append(kept, Axis{
			PhysicalType: ax.PhysicalType,
			Start:        ax.Start + float64(start)*ax.Step,
			Step:         ax.Step,
			Len:          stop - start,
		})
	}
	if len(kept) == 0 {
		return nil, fmt.Errorf("slicing removed every axis of the frame")
	}
	return &Frame{axes: kept}, nil
}
