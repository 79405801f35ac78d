package axes

import (
	"fmt"
	"sort"
	"strings"
)

// Frame is the world coordinate system consumed by the resolver. One
// implementation is provided by the wcs package; anything exposing the
// declared physical types, their pixel-axis correlation and a per-axis
// value evaluator can serve.
type Frame interface {
	// WorldAxisPhysicalTypes returns the physical type label of each
	// world axis, in world axis order.
	WorldAxisPhysicalTypes() []string

	// PixelAxes returns the pixel axes correlated with the given world
	// axis, in pixel axis order.
	PixelAxes(worldAxis int) []int

	// WorldValues evaluates the world coordinate values along the given
	// world axis.
	WorldValues(worldAxis int) ([]float64, error)

	// Slice returns a new frame describing the coordinates remaining
	// after applying the per-pixel-axis indices. Axes addressed with a
	// scalar index are removed.
	Slice(idx []Index) (Frame, error)
}

// ExtraCoord is a named coordinate that cannot be expressed in the
// primary frame, tagged to zero or more pixel axes.
type ExtraCoord struct {
	// Name is the coordinate key, matched exactly against role synonyms.
	Name string

	// Axes lists the pixel axes the coordinate is tied to. A nil slice
	// means the coordinate is not tied to any axis.
	Axes []int

	// Values holds the coordinate values.
	Values []float64
}

// Source identifies where a resolved axis binding reads its values from.
type Source int

const (
	// SourceWorld means the binding reads from the primary frame.
	SourceWorld Source = iota

	// SourceExtra means the binding reads from the extra-coordinate table.
	SourceExtra
)

// Binding is a resolved association between a role and a concrete
// coordinate. At most one binding exists per role per cube; bindings are
// computed once at cube construction and never mutated.
type Binding struct {
	Role   Role
	Name   string
	Source Source
}

// Resolve searches for a coordinate matching the role's synonyms,
// scanning synonyms in declared priority order. For each synonym the
// primary frame is checked first: a synonym binds to the frame when it is
// contained in exactly one declared physical type label (a synonym
// contained in several labels is skipped rather than treated as a match).
// If the frame does not bind, the extra-coordinate table is checked for
// an exact key. The boolean result reports whether a binding was found.
func Resolve(role Role, frame Frame, extras map[string]ExtraCoord) (Binding, bool) {
	var types []string
	if frame != nil {
		types = frame.WorldAxisPhysicalTypes()
	}
	for _, synonym := range registry[role] {
		match := ""
		nMatches := 0
		for _, label := range types {
			if strings.Contains(label, synonym) {
				match = label
				nMatches++
			}
		}
		if nMatches == 1 {
			return Binding{Role: role, Name: match, Source: SourceWorld}, true
		}
		if _, ok := extras[synonym]; ok {
			return Binding{Role: role, Name: synonym, Source: SourceExtra}, true
		}
	}
	return Binding{}, false
}

// Value fetches the coordinate values behind a binding. Values are
// re-evaluated on every call so they always reflect the current frame.
func Value(b Binding, frame Frame, extras map[string]ExtraCoord) ([]float64, error) {
	switch b.Source {
	case SourceWorld:
		types := frame.WorldAxisPhysicalTypes()
		for i, label := range types {
			if label == b.Name {
				return frame.WorldValues(i)
			}
		}
		return nil, fmt.Errorf("world axis physical type %q no longer present in frame", b.Name)
	case SourceExtra:
		ec, ok := extras[b.Name]
		if !ok {
			return nil, fmt.Errorf("extra coordinate %q no longer present", b.Name)
		}
		return ec.Values, nil
	default:
		return nil, fmt.Errorf("unknown binding source %d", b.Source)
	}
}

// PixelAxesForName reverse-maps a world type name to the pixel axes it
// correlates with. Frame matches are found by containment in the declared
// physical type labels; extra-coordinate matches by containment in the
// table keys. A name satisfied by both the frame and the extra table, or
// by more than one extra entry, is ambiguous. Frame matches spanning
// several world axes contribute the union of their correlated pixel axes,
// deduplicated with order preserved.
func PixelAxesForName(name string, frame Frame, extras map[string]ExtraCoord) ([]int, error) {
	var worldMatches []int
	if frame != nil {
		for i, label := range frame.WorldAxisPhysicalTypes() {
			if strings.Contains(label, name) {
				worldMatches = append(worldMatches, i)
			}
		}
	}
	var extraMatches []string
	for key := range extras {
		if strings.Contains(key, name) {
			extraMatches = append(extraMatches, key)
		}
	}
	if (len(worldMatches) > 0 && len(extraMatches) > 0) || len(extraMatches) > 1 {
		return nil, &AmbiguousAxisNameError{Name: name}
	}
	if len(worldMatches) > 0 {
		var axes []int
		seen := make(map[int]bool)
		for _, w := range worldMatches {
			for _, p := range frame.PixelAxes(w) {
				if !seen[p] {
					seen[p] = true
					axes = append(axes, p)
				}
			}
		}
		return axes, nil
	}
	if len(extraMatches) == 1 {
		ec := extras[extraMatches[0]]
		out := make([]int, len(ec.Axes))
		copy(out, ec.Axes)
		return out, nil
	}
	return nil, fmt.Errorf("axis name %q not found in coordinate frame or extra coordinates", name)
}

// WorldTypesForAxis returns the world type names associated with one
// pixel axis: the physical types of every correlated world axis plus the
// keys of extra coordinates tied to the axis.
func WorldTypesForAxis(axis int, frame Frame, extras map[string]ExtraCoord) []string {
	var names []string
	if frame != nil {
		types := frame.WorldAxisPhysicalTypes()
		for w, label := range types {
			for _, p := range frame.PixelAxes(w) {
				if p == axis {
					names = append(names, label)
					break
				}
			}
		}
	}
	var extraNames []string
	for key, ec := range extras {
		for _, p := range ec.Axes {
			if p == axis {
				extraNames = append(extraNames, key)
				break
			}
		}
	}
	// Map iteration order is random; keep the output deterministic.
	sort.Strings(extraNames)
	return append(names, extraNames...)
}
