package cube

import (
	"fmt"
	"strings"

	"slitspec/internal/models"
	"slitspec/pkg/axes"
)

// Sequence is an ordered collection of spectrogram cubes sharing one
// observation identity. The optional common axis marks the pixel axis of
// each cube aligned with the sequence's natural concatenation axis.
type Sequence struct {
	cubes      []*Cube
	commonAxis int
	meta       *models.Observation
}

// NoCommonAxis marks a sequence whose cubes share no axis with the
// sequence ordering.
const NoCommonAxis = -1

// NewSequence builds a sequence over cubes listed in observation order.
// commonAxis is the cube pixel axis aligned with the sequence axis, or
// NoCommonAxis.
func NewSequence(cubes []*Cube, commonAxis int, meta *models.Observation) (*Sequence, error) {
	if len(cubes) == 0 {
		return nil, fmt.Errorf("sequence needs at least one cube")
	}
	ndim := len(cubes[0].Data().Shape)
	if commonAxis != NoCommonAxis && (commonAxis < 0 || commonAxis >= ndim) {
		return nil, fmt.Errorf("common axis %d out of range for rank-%d cubes", commonAxis, ndim)
	}
	own := make([]*Cube, len(cubes))
	copy(own, cubes)
	return &Sequence{cubes: own, commonAxis: commonAxis, meta: meta}, nil
}

// Cubes returns the member cubes in sequence order.
func (s *Sequence) Cubes() []*Cube {
	out := make([]*Cube, len(s.cubes))
	copy(out, s.cubes)
	return out
}

// Len returns the number of member cubes.
func (s *Sequence) Len() int { return len(s.cubes) }

// CommonAxis returns the cube pixel axis aligned with the sequence axis,
// or NoCommonAxis.
func (s *Sequence) CommonAxis() int { return s.commonAxis }

// Meta returns the sequence metadata, which may be nil.
func (s *Sequence) Meta() *models.Observation { return s.meta }

// Dimensions returns the sequence shape: the number of cubes followed by
// the pixel shape of the first cube.
func (s *Sequence) Dimensions() []int {
	return append([]int{len(s.cubes)}, s.cubes[0].Data().Shape...)
}

// CubeLikeDimensions returns the shape of the sequence viewed as one cube
// concatenated along the common axis.
func (s *Sequence) CubeLikeDimensions() ([]int, error) {
	if s.commonAxis == NoCommonAxis {
		return nil, fmt.Errorf("cube-like dimensions need a common axis")
	}
	dims := append([]int(nil), s.cubes[0].Data().Shape...)
	total := 0
	for _, c := range s.cubes {
		total += c.Data().Shape[s.commonAxis]
	}
	dims[s.commonAxis] = total
	return dims, nil
}

// concat concatenates a per-cube coordinate across the sequence.
func (s *Sequence) concat(get func(*Cube) ([]float64, error)) ([]float64, error) {
	var out []float64
	for i, c := range s.cubes {
		vals, err := get(c)
		if err != nil {
			return nil, fmt.Errorf("cube %d: %w", i, err)
		}
		out = append(out, vals...)
	}
	return out, nil
}

// stack collects a per-cube coordinate as one row per cube.
func (s *Sequence) stack(get func(*Cube) ([]float64, error)) ([][]float64, error) {
	out := make([][]float64, len(s.cubes))
	for i, c := range s.cubes {
		vals, err := get(c)
		if err != nil {
			return nil, fmt.Errorf("cube %d: %w", i, err)
		}
		out[i] = vals
	}
	return out, nil
}

// Time returns the time coordinates of all cubes concatenated in
// sequence order.
func (s *Sequence) Time() ([]float64, error) {
	return s.concat((*Cube).Time)
}

// ExposureTime returns the exposure times of all cubes concatenated in
// sequence order.
func (s *Sequence) ExposureTime() ([]float64, error) {
	return s.concat((*Cube).ExposureTime)
}

// Spectral returns the spectral coordinate of each cube, stacked.
func (s *Sequence) Spectral() ([][]float64, error) {
	return s.stack((*Cube).Spectral)
}

// Lon returns the longitude coordinate of each cube, stacked.
func (s *Sequence) Lon() ([][]float64, error) {
	return s.stack((*Cube).Lon)
}

// Lat returns the latitude coordinate of each cube, stacked.
func (s *Sequence) Lat() ([][]float64, error) {
	return s.stack((*Cube).Lat)
}

// ApplyExposureTimeCorrection maps the cube-level exposure-time
// correction over every member. With copy set, a new sequence wrapping
// the corrected cubes is returned and the receiver is untouched. With
// copy unset, the backing cube list is swapped in place and the result is
// nil. Either every cube converts or the sequence is left unchanged.
func (s *Sequence) ApplyExposureTimeCorrection(undo, copy, force bool) (*Sequence, error) {
	converted := make([]*Cube, len(s.cubes))
	for i, c := range s.cubes {
		nc, err := c.ApplyExposureTimeCorrection(undo, force)
		if err != nil {
			return nil, fmt.Errorf("cube %d: %w", i, err)
		}
		converted[i] = nc
	}
	if copy {
		return &Sequence{cubes: converted, commonAxis: s.commonAxis, meta: s.meta}, nil
	}
	s.replaceAll(converted)
	return nil, nil
}

// replaceAll swaps the backing cube list in one assignment. The swap is
// not safe for readers iterating the old list concurrently; such callers
// must synchronize externally or use the copying correction path.
func (s *Sequence) replaceAll(cubes []*Cube) {
	s.cubes = cubes
}

// Slice cuts the sequence: the first index selects cubes along the
// sequence axis (a scalar keeps a single-cube sequence) and the remaining
// indices cut each selected cube. When the common axis is removed by a
// scalar index the result has no common axis.
func (s *Sequence) Slice(idx ...axes.Index) (*Sequence, error) {
	if len(idx) == 0 {
		idx = []axes.Index{axes.All()}
	}
	selected, err := selectCubes(s.cubes, idx[0])
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
			return nil, fmt.Errorf("cube %d: %w", i, err)
		}
		out[i] = sliced
	}
	newCommon := s.commonAxis
	if s.commonAxis != NoCommonAxis {
		if s.commonAxis < len(cubeIdx) && cubeIdx[s.commonAxis].IsScalar() {
			newCommon = NoCommonAxis
		} else {
			newCommon = remapAxis(s.commonAxis, cubeIdx)
		}
	}
	return &Sequence{cubes: out, commonAxis: newCommon, meta: s.meta}, nil
}

// selectCubes applies a sequence-axis index to the cube list.
func selectCubes(cubes []*Cube, in axes.Index) ([]*Cube, error) {
	start, stop, err := in.Bounds(len(cubes))
	if err != nil {
		return nil, fmt.Errorf("sequence axis: %w", err)
	}
	out := make([]*Cube, stop-start)
	copy(out, cubes[start:stop])
	return out, nil
}

// String renders a human-readable summary across the whole sequence.
// Coordinate roles without a binding render as None instead of failing.
func (s *Sequence) String() string {
	return s.summary("SpectrogramSequence", "Pixel Dimensions")
}

func (s *Sequence) summary(name, dimsLabel string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", name)
	fmt.Fprintf(&b, "%s\n", strings.Repeat("-", len(name)))
	fmt.Fprintf(&b, "Time Range: %s\n", s.aggregateRange(s.Time))
	fmt.Fprintf(&b, "%s: %v\n", dimsLabel, s.Dimensions())
	fmt.Fprintf(&b, "Longitude range: %s\n", s.stackedRange(s.Lon))
	fmt.Fprintf(&b, "Latitude range: %s\n", s.stackedRange(s.Lat))
	fmt.Fprintf(&b, "Spectral range: %s\n", s.stackedRange(s.Spectral))
	fmt.Fprintf(&b, "Data unit: %s", unitString(s.cubes[0].Unit()))
	return b.String()
}

func (s *Sequence) aggregateRange(get func() ([]float64, error)) string {
	vals, err := get()
	return rangeString(vals, err)
}

func (s *Sequence) stackedRange(get func() ([][]float64, error)) string {
	rows, err := get()
	if err != nil {
		return "None"
	}
	var flat []float64
	for _, row := range rows {
		flat = append(flat, row...)
	}
	return rangeString(flat, nil)
}
