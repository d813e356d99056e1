package raster

import (
	"math"
	"testing"
)

func makePlane(w, h int, z func(x, y int) float64) []float64 {
	elev := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			elev[y*w+x] = z(x, y)
		}
	}
	return elev
}

func TestSlopeFlatPlaneIsZero(t *testing.T) {
	elev := makePlane(5, 5, func(x, y int) float64 { return 100 })
	out := slopeDegrees(elev, 5, 5, 30, 30, nil, true)
	for i, v := range out {
		if v != 0 {
			t.Fatalf("cell %d: expected slope 0 on a flat plane, got %g", i, v)
		}
	}
}

func TestSlopeInclinedPlane(t *testing.T) {
	// z = x with 1m pixels rises 1m per meter eastwards: 45 degrees.
	elev := makePlane(5, 5, func(x, y int) float64 { return float64(x) })
	out := slopeDegrees(elev, 5, 5, 1, 1, nil, true)
	for y := 1; y < 4; y++ {
		for x := 1; x < 4; x++ {
			if got := out[y*5+x]; math.Abs(got-45) > 1e-9 {
				t.Fatalf("cell (%d,%d): expected 45 degrees, got %g", x, y, got)
			}
		}
	}
}

func TestSlopeSkipsEdgesWhenDisabled(t *testing.T) {
	elev := makePlane(4, 4, func(x, y int) float64 { return float64(x) })
	out := slopeDegrees(elev, 4, 4, 1, 1, nil, false)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			border := x == 0 || y == 0 || x == 3 || y == 3
			if border && out[y*4+x] != terrainNoData {
				t.Fatalf("border cell (%d,%d): expected nodata, got %g", x, y, out[y*4+x])
			}
			if !border && out[y*4+x] == terrainNoData {
				t.Fatalf("interior cell (%d,%d): unexpected nodata", x, y)
			}
		}
	}
}

func TestSlopePropagatesSourceNoData(t *testing.T) {
	nd := -32768.0
	elev := makePlane(3, 3, func(x, y int) float64 { return float64(x) })
	elev[4] = nd
	out := slopeDegrees(elev, 3, 3, 1, 1, &nd, true)
	if out[4] != terrainNoData {
		t.Fatalf("expected nodata hole to propagate, got %g", out[4])
	}
}

func TestAspectEastRisingPlaneFacesWest(t *testing.T) {
	// z = x: the surface rises to the east, so the downslope azimuth is west.
	elev := makePlane(5, 5, func(x, y int) float64 { return float64(x) })
	out := aspectDegrees(elev, 5, 5, nil, true)
	for i, v := range out {
		if math.Abs(v-270) > 1e-9 {
			t.Fatalf("cell %d: expected azimuth 270, got %g", i, v)
		}
	}
}

func TestAspectSouthRisingPlaneFacesNorth(t *testing.T) {
	// Rows grow southwards, so z = y rises to the south.
	elev := makePlane(5, 5, func(x, y int) float64 { return float64(y) })
	out := aspectDegrees(elev, 5, 5, nil, true)
	for i, v := range out {
		if math.Abs(v-0) > 1e-9 {
			t.Fatalf("cell %d: expected azimuth 0, got %g", i, v)
		}
	}
}

func TestAspectFlatCellsAreNoData(t *testing.T) {
	elev := makePlane(4, 4, func(x, y int) float64 { return 7 })
	out := aspectDegrees(elev, 4, 4, nil, true)
	for i, v := range out {
		if v != terrainNoData {
			t.Fatalf("cell %d: expected nodata on flat terrain, got %g", i, v)
		}
	}
}
