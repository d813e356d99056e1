package quicklook

import (
	"fmt"
	"math"

	"github.com/airbusgeo/godal"
	"github.com/fogleman/gg"
)

// render stretches the band values to grayscale between their min and max.
// No-data cells stay fully transparent. A constant or fully masked band is
// rendered flat gray.
func render(data []float64, width, height int, noData float64, hasNoData bool) *gg.Context {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range data {
		if hasNoData && v == noData {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	flat := lo >= hi

	dc := gg.NewContext(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := data[y*width+x]
			if hasNoData && v == noData {
				continue
			}
			gray := 0.5
			if !flat {
				gray = (v - lo) / (hi - lo)
			}
			dc.SetRGB(gray, gray, gray)
			dc.SetPixel(x, y)
		}
	}
	return dc
}

// WritePNG renders one band of a raster as a min/max stretched grayscale PNG.
// The PNG is a visual sanity check of a pipeline product, not an analysis
// artifact.
func WritePNG(rasterPath string, band int, pngPath string) error {
	ds, err := godal.Open(rasterPath)
	if err != nil {
		return fmt.Errorf("failed to open raster %s: %w", rasterPath, err)
	}
	defer ds.Close()

	st := ds.Structure()
	if band < 1 || band > st.NBands {
		return fmt.Errorf("raster %s has no band %d", rasterPath, band)
	}

	width, height := st.SizeX, st.SizeY
	data := make([]float64, width*height)
	b := ds.Bands()[band-1]
	if err := b.Read(0, 0, data, width, height); err != nil {
		return fmt.Errorf("failed to read raster data: %w", err)
	}

	noData, hasNoData := b.NoData()
	dc := render(data, width, height, noData, hasNoData)
	if err := dc.SavePNG(pngPath); err != nil {
		return fmt.Errorf("failed to save quicklook: %w", err)
	}
	return nil
}
