package cube

import (
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/ctessum/sparse"
	"github.com/ctessum/unit"

	"slitspec/internal/models"
	"slitspec/pkg/axes"
	"slitspec/pkg/radiometry"
	"slitspec/pkg/wcs"
)

// testMeta is the observation identity shared by the test fixtures.
func testMeta() *models.Observation {
	return &models.Observation{
		Instrument:     "IRIS",
		OBSID:          "3860258481",
		Detector:       "FUV1",
		SpectralWindow: "C II 1336",
	}
}

// scanCube builds a rank-3 cube shaped (slit step, slit position,
// spectral) = (3, 4, 5). Time runs along the slit-step axis starting at
// timeStart; the exposure times live in the extra-coordinate table. The
// data elements equal their flat index so slicing results are easy to
// predict.
func scanCube(t *testing.T, timeStart float64) *Cube {
	t.Helper()
	frame := scanFrame(t, timeStart)
	data := sparse.ZerosDense(3, 4, 5)
	for i := range data.Elements {
		data.Elements[i] = float64(i)
	}
	c, err := New(data, frame, &Options{
		Extras: []axes.ExtraCoord{
			{Name: "exposure time", Axes: []int{0}, Values: []float64{2, 2, 2}},
		},
		Unit: radiometry.FUV.DNUnit(),
		Meta: testMeta(),
	})
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func scanFrame(t *testing.T, timeStart float64) axes.Frame {
	t.Helper()
	f, err := wcs.New(
		wcs.Axis{PhysicalType: "time", Start: timeStart, Step: 1, Len: 3},
		wcs.Axis{PhysicalType: "custom:pos.helioprojective.lat", Start: -5, Step: 0.5, Len: 4},
		wcs.Axis{PhysicalType: "em.wl", Start: 1330, Step: 0.1, Len: 5},
	)
	if err != nil {
		t.Fatal(err)
	}
	return f
}

func TestNewValidation(t *testing.T) {
	data := sparse.ZerosDense(2, 2)
	frame, err := wcs.New(
		wcs.Axis{PhysicalType: "em.wl", Start: 0, Step: 1, Len: 2},
		wcs.Axis{PhysicalType: "time", Start: 0, Step: 1, Len: 2},
	)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := New(nil, frame, nil); err == nil {
		t.Error("expected error for nil data")
	}
	if _, err := New(data, nil, nil); err == nil {
		t.Error("expected error for nil frame")
	}
	if _, err := New(data, frame, &Options{Uncertainty: sparse.ZerosDense(3)}); err == nil {
		t.Error("expected error for mis-shaped uncertainty")
	}
	if _, err := New(data, frame, &Options{Mask: make([]bool, 3)}); err == nil {
		t.Error("expected error for mis-sized mask")
	}
	if _, err := New(data, frame, &Options{Extras: []axes.ExtraCoord{{Name: ""}}}); err == nil {
		t.Error("expected error for unnamed extra coordinate")
	}
	if _, err := New(data, frame, &Options{Extras: []axes.ExtraCoord{
		{Name: "x", Values: []float64{1}},
		{Name: "x", Values: []float64{2}},
	}}); err == nil {
		t.Error("expected error for duplicate extra coordinate")
	}
	if _, err := New(data, frame, &Options{Extras: []axes.ExtraCoord{
		{Name: "x", Axes: []int{5}, Values: []float64{1}},
	}}); err == nil {
		t.Error("expected error for extra coordinate on a nonexistent axis")
	}
	if _, err := New(data, frame, &Options{Extras: []axes.ExtraCoord{
		{Name: "x", Axes: []int{0}, Values: []float64{1, 2, 3}},
	}}); err == nil {
		t.Error("expected error for extra coordinate values not co-length with its axis")
	}
}

func TestCoordinateAccessors(t *testing.T) {
	c := scanCube(t, 0)

	time, err := c.Time()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(time, []float64{0, 1, 2}) {
		t.Errorf("Time = %v, want [0 1 2]", time)
	}

	lat, err := c.Lat()
	if err != nil {
		t.Fatal(err)
	}
	if len(lat) != 4 || lat[0] != -5 {
		t.Errorf("Lat = %v, want 4 values from -5", lat)
	}

	spectral, err := c.Spectral()
	if err != nil {
		t.Fatal(err)
	}
	if len(spectral) != 5 || spectral[0] != 1330 {
		t.Errorf("Spectral = %v, want 5 values from 1330", spectral)
	}

	exposure, err := c.ExposureTime()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(exposure, []float64{2, 2, 2}) {
		t.Errorf("ExposureTime = %v, want [2 2 2]", exposure)
	}
}

func TestMissingAxisError(t *testing.T) {
	c := scanCube(t, 0)
	_, err := c.Lon()
	var notFound *axes.AxisNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("got %v, want AxisNotFoundError", err)
	}
	if notFound.Role != axes.Longitude {
		t.Errorf("error role = %v, want longitude", notFound.Role)
	}
	if !reflect.DeepEqual(notFound.Synonyms, axes.Synonyms(axes.Longitude)) {
		t.Error("error does not carry the recognized longitude names")
	}
}

func TestWorldTypeLookups(t *testing.T) {
	c := scanCube(t, 0)

	pix, err := c.PixelAxesForWorldType("em.wl")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(pix, []int{2}) {
		t.Errorf("PixelAxesForWorldType(em.wl) = %v, want [2]", pix)
	}

	types := c.WorldTypesForPixelAxis(0)
	want := []string{"time", "exposure time"}
	if !reflect.DeepEqual(types, want) {
		t.Errorf("WorldTypesForPixelAxis(0) = %v, want %v", types, want)
	}
}

func TestApplyExposureTimeCorrection(t *testing.T) {
	c := scanCube(t, 0)
	corrected, err := c.ApplyExposureTimeCorrection(false, false)
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range corrected.Data().Elements {
		want := c.Data().Elements[i] / 2
		if math.Abs(v-want) > 1e-12 {
			t.Errorf("element %d = %v, want %v", i, v, want)
		}
	}
	if corrected.Unit().Dimensions()[unit.TimeDim] != -1 {
		t.Errorf("corrected time exponent = %d, want -1", corrected.Unit().Dimensions()[unit.TimeDim])
	}
	// The receiver keeps its original data and unit.
	if c.Data().Elements[5] != 5 {
		t.Errorf("receiver data mutated: %v", c.Data().Elements[5])
	}
	if c.Unit().Dimensions()[unit.TimeDim] != 0 {
		t.Error("receiver unit mutated")
	}

	// Applying twice without force trips the guard; undo restores.
	var guard *radiometry.GuardError
	if _, err := corrected.ApplyExposureTimeCorrection(false, false); !errors.As(err, &guard) {
		t.Fatalf("second apply: got %v, want GuardError", err)
	}
	restored, err := corrected.ApplyExposureTimeCorrection(true, false)
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range restored.Data().Elements {
		if math.Abs(v-c.Data().Elements[i]) > 1e-12 {
			t.Errorf("round trip element %d = %v, want %v", i, v, c.Data().Elements[i])
		}
	}
}

func TestApplyExposureTimeCorrectionUncertainty(t *testing.T) {
	frame := scanFrame(t, 0)
	data := sparse.ZerosDense(3, 4, 5)
	sigma := sparse.ZerosDense(3, 4, 5)
	for i := range data.Elements {
		data.Elements[i] = float64(i)
		sigma.Elements[i] = 0.1 * float64(i)
	}
	c, err := New(data, frame, &Options{
		Extras: []axes.ExtraCoord{
			{Name: "exposure time", Axes: []int{0}, Values: []float64{2, 4, 8}},
		},
		Unit:        radiometry.Photon(),
		Uncertainty: sigma,
		Meta:        testMeta(),
	})
	if err != nil {
		t.Fatal(err)
	}
	corrected, err := c.ApplyExposureTimeCorrection(false, false)
	if err != nil {
		t.Fatal(err)
	}
	// Uncertainty follows the data: each slit-step plane divided by its
	// own exposure time.
	exposures := []float64{2, 4, 8}
	for i, v := range corrected.Uncertainty().Elements {
		want := sigma.Elements[i] / exposures[i/20]
		if math.Abs(v-want) > 1e-12 {
			t.Errorf("uncertainty element %d = %v, want %v", i, v, want)
		}
	}
}

func TestApplyExposureTimeCorrectionRequiresUnit(t *testing.T) {
	frame := scanFrame(t, 0)
	c, err := New(sparse.ZerosDense(3, 4, 5), frame, &Options{
		Extras: []axes.ExtraCoord{
			{Name: "exposure time", Axes: []int{0}, Values: []float64{2, 2, 2}},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.ApplyExposureTimeCorrection(false, false); err == nil {
		t.Error("expected error for correction without a data unit")
	}
}

func TestConvertTo(t *testing.T) {
	c := scanCube(t, 0)
	photons, err := c.ConvertTo(radiometry.Photon())
	if err != nil {
		t.Fatal(err)
	}
	// FUV counts carry 4 photons per DN.
	if got := photons.Data().Elements[3]; got != 12 {
		t.Errorf("element 3 = %v, want 12", got)
	}
	if !radiometry.UnitsEqual(photons.Unit(), radiometry.Photon()) {
		t.Error("converted cube does not carry the photon unit")
	}
	back, err := photons.ConvertTo(radiometry.FUV.DNUnit())
	if err != nil {
		t.Fatal(err)
	}
	if got := back.Data().Elements[3]; got != 3 {
		t.Errorf("round trip element 3 = %v, want 3", got)
	}
}

func TestSlice(t *testing.T) {
	c := scanCube(t, 0)
	sliced, err := c.Slice(axes.At(1), axes.Span(1, 3))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(sliced.Dimensions(), []int{2, 5}) {
		t.Fatalf("sliced shape = %v, want [2 5]", sliced.Dimensions())
	}
	// Result element (j, k) comes from input element (1, 1+j, k).
	for j := 0; j < 2; j++ {
		for k := 0; k < 5; k++ {
			want := float64((1*4+(1+j))*5 + k)
			if got := sliced.Data().Elements[j*5+k]; got != want {
				t.Errorf("element (%d, %d) = %v, want %v", j, k, got, want)
			}
		}
	}

	// The frame lost its scalar-indexed time axis and the latitude span
	// advanced.
	lat, err := sliced.Lat()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(lat, []float64{-4.5, -4}) {
		t.Errorf("sliced Lat = %v, want [-4.5 -4]", lat)
	}

	// The removed time axis keeps its selected world value as an
	// axis-less coordinate.
	tm, err := sliced.Time()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(tm, []float64{1}) {
		t.Errorf("sliced Time = %v, want [1]", tm)
	}
	if ec := sliced.Extras()["time"]; len(ec.Axes) != 0 {
		t.Errorf("time still tied to axes %v after its axis was removed", ec.Axes)
	}

	// The exposure-time extra keeps the single selected value and becomes
	// axis-less, staying addressable by name.
	exposure, err := sliced.ExposureTime()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(exposure, []float64{2}) {
		t.Errorf("sliced ExposureTime = %v, want [2]", exposure)
	}
	if ec := sliced.Extras()["exposure time"]; len(ec.Axes) != 0 {
		t.Errorf("exposure time still tied to axes %v after its axis was removed", ec.Axes)
	}

	if _, err := c.Slice(axes.All(), axes.All(), axes.All(), axes.All()); err == nil {
		t.Error("expected error for too many indices")
	}
}

func TestSliceCarriesMaskAndUncertainty(t *testing.T) {
	frame := scanFrame(t, 0)
	data := sparse.ZerosDense(3, 4, 5)
	sigma := sparse.ZerosDense(3, 4, 5)
	mask := make([]bool, len(data.Elements))
	for i := range data.Elements {
		data.Elements[i] = float64(i)
		sigma.Elements[i] = 0.5
		mask[i] = i%2 == 0
	}
	c, err := New(data, frame, &Options{Uncertainty: sigma, Mask: mask})
	if err != nil {
		t.Fatal(err)
	}
	sliced, err := c.Slice(axes.At(2))
	if err != nil {
		t.Fatal(err)
	}
	if len(sliced.Mask()) != 20 {
		t.Fatalf("sliced mask has %d entries, want 20", len(sliced.Mask()))
	}
	for i := 0; i < 20; i++ {
		if sliced.Mask()[i] != mask[40+i] {
			t.Errorf("mask entry %d not aligned with sliced data", i)
		}
	}
	if !reflect.DeepEqual(sliced.Uncertainty().Shape, []int{4, 5}) {
		t.Errorf("sliced uncertainty shape = %v, want [4 5]", sliced.Uncertainty().Shape)
	}
}

func TestString(t *testing.T) {
	c := scanCube(t, 0)
	s := c.String()
	for _, fragment := range []string{
		"SpectrogramCube",
		"Time Period: [0, 2]",
		"Pixel Dimensions: [3 4 5]",
		"Longitude range: None",
		"Spectral range: [1330, 1330.4]",
	} {
		if !strings.Contains(s, fragment) {
			t.Errorf("summary missing %q:\n%s", fragment, s)
		}
	}
}
