package wcs

import (
	"math"
	"reflect"
	"testing"

	"slitspec/pkg/axes"
)

func testFrame(t *testing.T) *Frame {
	t.Helper()
	f, err := New(
		Axis{PhysicalType: "custom:pos.helioprojective.lat", Start: -10, Step: 0.5, Len: 4},
		Axis{PhysicalType: "em.wl", Start: 1330, Step: 0.05, Len: 6},
	)
	if err != nil {
		t.Fatal(err)
	}
	return f
}

func TestNewValidation(t *testing.T) {
	if _, err := New(); err == nil {
		t.Error("expected error for empty frame")
	}
	if _, err := New(Axis{Start: 0, Step: 1, Len: 3}); err == nil {
		t.Error("expected error for axis without physical type")
	}
	if _, err := New(Axis{PhysicalType: "em.wl", Len: 0}); err == nil {
		t.Error("expected error for zero-length axis")
	}
}

func TestWorldAxisPhysicalTypes(t *testing.T) {
	f := testFrame(t)
	want := []string{"custom:pos.helioprojective.lat", "em.wl"}
	if got := f.WorldAxisPhysicalTypes(); !reflect.DeepEqual(got, want) {
		t.Errorf("WorldAxisPhysicalTypes = %v, want %v", got, want)
	}
}

func TestPixelAxesDiagonal(t *testing.T) {
	f := testFrame(t)
	if got := f.PixelAxes(1); !reflect.DeepEqual(got, []int{1}) {
		t.Errorf("PixelAxes(1) = %v, want [1]", got)
	}
	if got := f.PixelAxes(2); got != nil {
		t.Errorf("PixelAxes(2) = %v, want nil", got)
	}
}

func TestWorldValues(t *testing.T) {
	f := testFrame(t)
	got, err := f.WorldValues(0)
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{-10, -9.5, -9, -8.5}
	if len(got) != len(want) {
		t.Fatalf("WorldValues(0) has length %d, want %d", len(got), len(want))
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("WorldValues(0)[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if _, err := f.WorldValues(5); err == nil {
		t.Error("expected error for out-of-range world axis")
	}
}

func TestSliceSpanAdvancesStart(t *testing.T) {
	f := testFrame(t)
	sliced, err := f.Slice([]axes.Index{axes.Span(1, 3), axes.All()})
	if err != nil {
		t.Fatal(err)
	}
	got, err := sliced.WorldValues(0)
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{-9.5, -9}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("sliced WorldValues(0) = %v, want %v", got, want)
	}
}

func TestSliceScalarDropsAxis(t *testing.T) {
	f := testFrame(t)
	sliced, err := f.Slice([]axes.Index{axes.At(2)})
	if err != nil {
		t.Fatal(err)
	}
	types := sliced.WorldAxisPhysicalTypes()
	if !reflect.DeepEqual(types, []string{"em.wl"}) {
		t.Errorf("remaining types = %v, want [em.wl]", types)
	}
	// The spectral axis was not addressed and stays whole.
	vals, err := sliced.WorldValues(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(vals) != 6 || vals[0] != 1330 {
		t.Errorf("spectral values = %v, want 6 values starting at 1330", vals)
	}
}

func TestSliceErrors(t *testing.T) {
	f := testFrame(t)
	if _, err := f.Slice([]axes.Index{axes.All(), axes.All(), axes.All()}); err == nil {
		t.Error("expected error for too many indices")
	}
	if _, err := f.Slice([]axes.Index{axes.At(9)}); err == nil {
		t.Error("expected error for out-of-range scalar")
	}
	if _, err := f.Slice([]axes.Index{axes.At(0), axes.At(0)}); err == nil {
		t.Error("expected error when every axis is removed")
	}
}
