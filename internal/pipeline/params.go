package pipeline

import (
	"github.com/geovetas/alteration-mapper-cli/internal/extent"
	"github.com/geovetas/alteration-mapper-cli/internal/raster"
)

// Default sun position for Landsat 8 scenes over the Andes, matching the
// defaults the field geologists work with.
const (
	DefaultSunAzimuth   = 135.0
	DefaultSunElevation = 42.0
)

// LandsatParams names the inputs of the index pipelines. The five bands are
// Landsat 8 B2 (blue), B4 (red), B5 (NIR), B6 (SWIR1) and B7 (SWIR2).
type LandsatParams struct {
	Blue  string
	Red   string
	NIR   string
	SWIR1 string
	SWIR2 string
	DTM   string

	SunAzimuthDeg   float64
	SunElevationDeg float64

	// Extent optionally restricts the run; it may be in any CRS and is
	// reprojected to the CRS of the bands. When absent the intersection of
	// the band extents is used.
	Extent *extent.Rect

	OutputDir string
}

// PostprocessParams names the inputs of the reproject-and-export step.
type PostprocessParams struct {
	Raster    string
	TargetCRS extent.CRS
	DataType  raster.DataType
	OutputDir string
}

// Result maps artifact names to the files a run produced.
type Result map[string]string
