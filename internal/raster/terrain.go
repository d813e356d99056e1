package raster

import "math"

// terrainNoData marks flat cells in aspect grids and skipped borders, the
// same sentinel gdaldem uses.
const terrainNoData = -9999.0

type cellValue func(x, y int) float64

// clamped gives 3x3 window access with edge replication, which is how GDAL
// computes edge cells when compute-edges is on.
func clamped(elev []float64, w, h int) cellValue {
	return func(x, y int) float64 {
		if x < 0 {
			x = 0
		} else if x >= w {
			x = w - 1
		}
		if y < 0 {
			y = 0
		} else if y >= h {
			y = h - 1
		}
		return elev[y*w+x]
	}
}

func isBorder(x, y, w, h int) bool {
	return x == 0 || y == 0 || x == w-1 || y == h-1
}

// slopeDegrees evaluates Horn's formula over the elevation grid. srcNoData,
// when non-nil, propagates input holes to the output.
func slopeDegrees(elev []float64, w, h int, xRes, yRes float64, srcNoData *float64, computeEdges bool) []float64 {
	out := make([]float64, w*h)
	at := clamped(elev, w, h)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !computeEdges && isBorder(x, y, w, h) {
				out[y*w+x] = terrainNoData
				continue
			}
			if srcNoData != nil && elev[y*w+x] == *srcNoData {
				out[y*w+x] = terrainNoData
				continue
			}

			a, b, c := at(x-1, y-1), at(x, y-1), at(x+1, y-1)
			d, f := at(x-1, y), at(x+1, y)
			g, hh, i := at(x-1, y+1), at(x, y+1), at(x+1, y+1)

			dzdx := ((c + 2*f + i) - (a + 2*d + g)) / (8 * xRes)
			dzdy := ((g + 2*hh + i) - (a + 2*b + c)) / (8 * yRes)
			out[y*w+x] = math.Atan(math.Sqrt(dzdx*dzdx+dzdy*dzdy)) * 180 / math.Pi
		}
	}
	return out
}

// aspectDegrees returns downslope azimuth in degrees, 0 = north, growing
// clockwise. Flat cells get the nodata sentinel (no zero-for-flat).
func aspectDegrees(elev []float64, w, h int, srcNoData *float64, computeEdges bool) []float64 {
	out := make([]float64, w*h)
	at := clamped(elev, w, h)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !computeEdges && isBorder(x, y, w, h) {
				out[y*w+x] = terrainNoData
				continue
			}
			if srcNoData != nil && elev[y*w+x] == *srcNoData {
				out[y*w+x] = terrainNoData
				continue
			}

			a, b, c := at(x-1, y-1), at(x, y-1), at(x+1, y-1)
			d, f := at(x-1, y), at(x+1, y)
			g, hh, i := at(x-1, y+1), at(x, y+1), at(x+1, y+1)

			dx := (c + 2*f + i) - (a + 2*d + g)
			dy := (g + 2*hh + i) - (a + 2*b + c)
			if dx == 0 && dy == 0 {
				out[y*w+x] = terrainNoData
				continue
			}

			aspect := 90 - math.Atan2(dy, -dx)*180/math.Pi
			if aspect >= 360 {
				aspect -= 360
			}
			if aspect < 0 {
				aspect += 360
			}
			out[y*w+x] = aspect
		}
	}
	return out
}
