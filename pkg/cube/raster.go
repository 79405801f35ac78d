package cube

import (
	"fmt"

	"slitspec/internal/models"
	"slitspec/pkg/axes"
)

// Instrument axis role labels for raster sequences.
const (
	RasterAxisName   = "raster scan"
	SnSAxisName      = "temporal"
	SlitStepAxisName = "slit step"
	SlitAxisName     = "position along slit"
	SpectralAxisName = "spectral"
)

// RasterSequence is a sequence of spectrograph raster scans. The common
// axis is the slit-step axis of each cube and is required: without it the
// instrument axis roles cannot be derived. Direct slicing is disabled;
// use AsRaster or AsSitAndStare.
type RasterSequence struct {
	Sequence
	scanAxisTypes []string
}

// NewRasterSequence builds a raster sequence and derives the instrument
// role of every cube pixel axis: the common axis is the slit step, the
// axis carrying the resolved spectral world type is spectral, and the
// single remaining axis is the position along the slit. Any other number
// of unlabeled axes means the coordinate frame, extra coordinates and
// common axis contradict each other, and construction fails with an
// InconsistentAxesError.
func NewRasterSequence(cubes []*Cube, commonAxis int, meta *models.Observation) (*RasterSequence, error) {
	if len(cubes) == 0 {
		return nil, fmt.Errorf("raster sequence needs at least one cube")
	}
	ndim := len(cubes[0].Data().Shape)
	if commonAxis < 0 || commonAxis >= ndim {
		return nil, fmt.Errorf("raster sequence needs a slit-step axis; common axis %d out of range for rank-%d cubes",
			commonAxis, ndim)
	}
	seq, err := NewSequence(cubes, commonAxis, meta)
	if err != nil {
		return nil, err
	}
	types := make([]string, ndim)
	types[commonAxis] = SlitStepAxisName
	if b, ok := cubes[0].Binding(axes.Spectral); ok && b.Source == axes.SourceWorld {
		frame := cubes[0].Frame()
		for w, label := range frame.WorldAxisPhysicalTypes() {
			if label != b.Name {
				continue
			}
			for _, p := range frame.PixelAxes(w) {
				if p >= 0 && p < ndim {
					types[p] = SpectralAxisName
				}
			}
		}
	}
	unlabeled := 0
	slitAxis := -1
	for p, t := range types {
		if t == "" {
			unlabeled++
			slitAxis = p
		}
	}
	if unlabeled != 1 {
		return nil, &InconsistentAxesError{Unlabeled: unlabeled}
	}
	types[slitAxis] = SlitAxisName
	return &RasterSequence{Sequence: *seq, scanAxisTypes: types}, nil
}

// newRasterWithTypes rebuilds a raster sequence after a cut, carrying
// already-derived axis labels instead of re-deriving them.
func newRasterWithTypes(cubes []*Cube, commonAxis int, meta *models.Observation, types []string) (*RasterSequence, error) {
	seq, err := NewSequence(cubes, commonAxis, meta)
	if err != nil {
		return nil, err
	}
	if len(types) != len(cubes[0].Data().Shape) {
		return nil, fmt.Errorf("have %d axis labels for rank-%d cubes", len(types), len(cubes[0].Data().Shape))
	}
	return &RasterSequence{Sequence: *seq, scanAxisTypes: types}, nil
}

// SingleScanInstrumentAxesTypes returns the instrument role label of each
// cube pixel axis for a single scan.
func (r *RasterSequence) SingleScanInstrumentAxesTypes() []string {
	out := make([]string, len(r.scanAxisTypes))
	copy(out, r.scanAxisTypes)
	return out
}

// RasterInstrumentAxesTypes returns the axis roles of the sequence viewed
// as a 4-D raster volume.
func (r *RasterSequence) RasterInstrumentAxesTypes() []string {
	return append([]string{RasterAxisName}, r.SingleScanInstrumentAxesTypes()...)
}

// SnSInstrumentAxesTypes returns the axis roles of the sequence viewed as
// a sit-and-stare time series: the scan and slit-step axes flatten into
// one temporal axis.
func (r *RasterSequence) SnSInstrumentAxesTypes() []string {
	out := []string{SnSAxisName}
	for _, t := range r.scanAxisTypes {
		if t != SlitStepAxisName {
			out = append(out, t)
		}
	}
	return out
}

// RasterDimensions returns the sequence shape viewed as a 4-D raster
// volume (scans, slit steps, slit positions, spectral bins).
func (r *RasterSequence) RasterDimensions() []int {
	return r.Sequence.Dimensions()
}

// SnSDimensions returns the sequence shape viewed as a sit-and-stare
// series, with scans and slit steps flattened into one temporal axis.
func (r *RasterSequence) SnSDimensions() ([]int, error) {
	return r.Sequence.CubeLikeDimensions()
}

// Slice on a raster sequence is disabled: the caller must choose between
// the raster and sit-and-stare views.
func (r *RasterSequence) Slice(idx ...axes.Index) (*Sequence, error) {
	return nil, fmt.Errorf("direct indexing of a RasterSequence is ambiguous; use AsRaster or AsSitAndStare")
}

// ApplyExposureTimeCorrection maps the cube-level correction over every
// scan, preserving the raster type and axis labels. See
// Sequence.ApplyExposureTimeCorrection for the copy semantics.
func (r *RasterSequence) ApplyExposureTimeCorrection(undo, copy, force bool) (*RasterSequence, error) {
	out, err := r.Sequence.ApplyExposureTimeCorrection(undo, copy, force)
	if err != nil || out == nil {
		return nil, err
	}
	return &RasterSequence{Sequence: *out, scanAxisTypes: r.SingleScanInstrumentAxesTypes()}, nil
}

// String renders a human-readable summary of the raster sequence.
func (r *RasterSequence) String() string {
	return r.summary("RasterSequence", "Pixel Dimensions (raster scans, slit steps, slit height, spectral)")
}

// SlicedSequence is the result of slicing through one of the raster
// views: either a *RasterSequence, or a plain *Sequence when the cut
// removed the slit-step axis and the result no longer represents a
// raster.
type SlicedSequence interface {
	Cubes() []*Cube
	CommonAxis() int
}

// RasterView slices a raster sequence as a 4-D volume: scan index, slit
// step, position along slit, spectral.
type RasterView struct {
	r *RasterSequence
}

// AsRaster returns the 4-D raster slicing view.
func (r *RasterSequence) AsRaster() *RasterView {
	return &RasterView{r: r}
}

// Slice cuts the view: the first index selects scans, the remaining
// indices cut each scan cube. A scalar index on the slit-step position
// demotes the result to a plain SpectrogramSequence with no common axis,
// since the cubes no longer represent a raster; otherwise the per-axis
// role labels are filtered by the same scalar-drops-axis rule applied to
// the cut.
func (v *RasterView) Slice(idx ...axes.Index) (SlicedSequence, error) {
	r := v.r
	if len(idx) == 0 {
		idx = []axes.Index{axes.All()}
	}
	selected, err := selectCubes(r.cubes, idx[0])
	if err != nil {
		return nil, err
	}
	cubeIdx := idx[1:]
	out := make([]*Cube, len(selected))
	for i, c := range selected {
		if len(cubeIdx) == 0 {
			out[i] = c
			continue
		}
		sliced, err := c.Slice(cubeIdx...)
		if err != nil {
			return nil, fmt.Errorf("scan %d: %w", i, err)
		}
		out[i] = sliced
	}
	if r.commonAxis < len(cubeIdx) && cubeIdx[r.commonAxis].IsScalar() {
		return NewSequence(out, NoCommonAxis, r.meta)
	}
	return newRasterWithTypes(out, remapAxis(r.commonAxis, cubeIdx), r.meta,
		axes.KeepNonScalar(r.scanAxisTypes, cubeIdx))
}

// SnSView slices a raster sequence as a sit-and-stare series: scan index
// and slit step flatten into one leading temporal axis.
type SnSView struct {
	r *RasterSequence
}

// AsSitAndStare returns the flattened sit-and-stare slicing view.
func (r *RasterSequence) AsSitAndStare() *SnSView {
	return &SnSView{r: r}
}

// Slice cuts the view. The first index addresses the flattened temporal
// axis (scans x slit steps); the remaining indices cut the other cube
// axes in order, skipping the slit-step axis. A scalar on the temporal
// axis selects a single exposure and demotes the result to a plain
// SpectrogramSequence; otherwise the per-axis role labels are filtered by
// the scalar-drops-axis rule with the temporal index applied at the
// slit-step position.
func (v *SnSView) Slice(idx ...axes.Index) (SlicedSequence, error) {
	r := v.r
	if len(idx) == 0 {
		idx = []axes.Index{axes.All()}
	}
	ndim := len(r.cubes[0].Data().Shape)
	if len(idx) > ndim {
		return nil, fmt.Errorf("got %d indices for a flattened view with %d axes", len(idx), ndim)
	}
	// Flat boundaries of each cube along the slit-step axis.
	base := make([]int, len(r.cubes)+1)
	for i, c := range r.cubes {
		base[i+1] = base[i] + c.Data().Shape[r.commonAxis]
	}
	total := base[len(r.cubes)]
	start, stop, err := idx[0].Bounds(total)
	if err != nil {
		return nil, fmt.Errorf("temporal axis: %w", err)
	}

	// mappedIdx carries the view indices back onto cube axis positions:
	// the temporal index lands on the slit-step axis, the rest fill the
	// remaining axes in order.
	rest := idx[1:]
	mappedIdx := make([]axes.Index, ndim)
	nextRest := 0
	for p := 0; p < ndim; p++ {
		if p == r.commonAxis {
			mappedIdx[p] = idx[0]
			continue
		}
		if nextRest < len(rest) {
			mappedIdx[p] = rest[nextRest]
			nextRest++
		} else {
			mappedIdx[p] = axes.All()
		}
	}

	var out []*Cube
	for i, c := range r.cubes {
		lo, hi := start-base[i], stop-base[i]
		if lo < 0 {
			lo = 0
		}
		if n := c.Data().Shape[r.commonAxis]; hi > n {
			hi = n
		}
		if hi <= lo {
			continue
		}
		cubeIdx := make([]axes.Index, ndim)
		copy(cubeIdx, mappedIdx)
		if idx[0].IsScalar() {
			cubeIdx[r.commonAxis] = axes.At(lo)
		} else {
			cubeIdx[r.commonAxis] = axes.Span(lo, hi)
		}
		sliced, err := c.Slice(cubeIdx...)
		if err != nil {
			return nil, fmt.Errorf("scan %d: %w", i, err)
		}
		out = append(out, sliced)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("temporal span [%d, %d) selected no exposures", start, stop)
	}
	if idx[0].IsScalar() {
		// The slit-step axis is gone; the result is no longer a raster.
		return NewSequence(out, NoCommonAxis, r.meta)
	}
	return newRasterWithTypes(out, remapAxis(r.commonAxis, mappedIdx), r.meta,
		axes.KeepNonScalar(r.scanAxisTypes, mappedIdx))
}
