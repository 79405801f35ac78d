package axes

import "fmt"

// Index selects elements along one pixel axis. A scalar index removes the
// axis from the result; a span keeps it, possibly shortened.
type Index struct {
	scalar      bool
	at          int
	start, stop int
	all         bool
}

// At returns an Index selecting the single element i, dropping the axis.
func At(i int) Index {
	return Index{scalar: true, at: i}
}

// Span returns an Index selecting the half-open range [start, stop).
func Span(start, stop int) Index {
	return Index{start: start, stop: stop}
}

// All returns an Index keeping the whole axis.
func All() Index {
	return Index{all: true}
}

// IsScalar reports whether the index removes its axis.
func (ix Index) IsScalar() bool { return ix.scalar }

// Bounds returns the selected half-open range for an axis of length n.
// Scalar indices yield a range of length one.
func (ix Index) Bounds(n int) (start, stop int, err error) {
	switch {
	case ix.all:
		return 0, n, nil
	case ix.scalar:
		if ix.at < 0 || ix.at >= n {
			return 0, 0, fmt.Errorf("index %d out of range for axis of length %d", ix.at, n)
		}
		return ix.at, ix.at + 1, nil
	default:
		if ix.start < 0 || ix.stop > n || ix.start > ix.stop {
			return 0, 0, fmt.Errorf("span [%d, %d) out of range for axis of length %d", ix.start, ix.stop, n)
		}
		return ix.start, ix.stop, nil
	}
}

// axisIndex returns the index applying to pixel axis p given a possibly
// short index list: axes beyond the list are kept whole.
func axisIndex(idx []Index, p int) Index {
	if p < len(idx) {
		return idx[p]
	}
	return All()
}

// KeepNonScalar filters a per-axis label array after slicing: labels at
// positions addressed by a scalar index are dropped, labels at positions
// addressed by a span or not addressed at all are kept.
func KeepNonScalar(labels []string, idx []Index) []string {
	kept := make([]string, 0, len(labels))
	for p, label := range labels {
		if axisIndex(idx, p).IsScalar() {
			continue
		}
		kept = append(kept, label)
	}
	return kept
}
