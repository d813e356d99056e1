package ui

import (
	"context"
	"fmt"

	"github.com/geovetas/alteration-mapper-cli/internal/delivery"
	"github.com/geovetas/alteration-mapper-cli/internal/pipeline"
	"github.com/geovetas/alteration-mapper-cli/internal/raster"
)

// readLandsatParams prompts for the five Landsat 8 bands, the DTM and the sun
// geometry every index run needs.
func readLandsatParams(eng raster.Engine) (pipeline.LandsatParams, error) {
	p := pipeline.LandsatParams{OutputDir: ReadOutputDir()}

	prompts := []struct {
		label string
		field *string
	}{
		{"Enter the B2 (blue) raster path: ", &p.Blue},
		{"Enter the B4 (red) raster path: ", &p.Red},
		{"Enter the B5 (NIR) raster path: ", &p.NIR},
		{"Enter the B6 (SWIR1) raster path: ", &p.SWIR1},
		{"Enter the B7 (SWIR2) raster path: ", &p.SWIR2},
		{"Enter the DTM raster path: ", &p.DTM},
	}
	for _, prompt := range prompts {
		path, err := ReadRasterPath(prompt.label)
		if err != nil {
			return pipeline.LandsatParams{}, err
		}
		*prompt.field = path
	}

	azimuth, err := ReadFloat("Enter the sun azimuth in degrees", pipeline.DefaultSunAzimuth)
	if err != nil {
		return pipeline.LandsatParams{}, err
	}
	elevation, err := ReadFloat("Enter the sun elevation in degrees", pipeline.DefaultSunElevation)
	if err != nil {
		return pipeline.LandsatParams{}, err
	}
	p.SunAzimuthDeg = azimuth
	p.SunElevationDeg = elevation

	info, err := eng.Info(p.Blue)
	if err != nil {
		return pipeline.LandsatParams{}, err
	}
	rect, err := ReadExtent("Enter the processing extent as xmin,ymin,xmax,ymax in the band CRS, or leave empty for the common extent: ", info.CRS)
	if err != nil {
		return pipeline.LandsatParams{}, err
	}
	p.Extent = rect

	return p, nil
}

// RunMinerals handles the UI for the Fe/Clay/OH mineral index run
func RunMinerals(eng raster.Engine) {
	PrintWarning("- All five bands must be reflectance rasters from the same Landsat 8 scene.\n- The DTM must cover the processing extent.")

	p, err := readLandsatParams(eng)
	if err != nil {
		PrintError(err.Error())
		return
	}

	result, err := delivery.RunMinerals(context.Background(), eng, p)
	if err != nil {
		PrintError(fmt.Sprintf("Error computing mineral indices: %s", err.Error()))
		return
	}

	PrintSuccess(fmt.Sprintf("Successful run!\nMasked OH index located at: %s\nQuicklook located at: %s\nManifest located at: %s",
		result["OH_INDEX_MASKED"], result["QUICKLOOK"], result["MANIFEST"]))
}

// RunAlteration handles the UI for the six-index alteration stack run
func RunAlteration(eng raster.Engine) {
	PrintWarning("- All five bands must be reflectance rasters from the same Landsat 8 scene.\n- The DTM must cover the processing extent.")

	p, err := readLandsatParams(eng)
	if err != nil {
		PrintError(err.Error())
		return
	}

	result, err := delivery.RunAlteration(context.Background(), eng, p)
	if err != nil {
		PrintError(fmt.Sprintf("Error computing alteration indices: %s", err.Error()))
		return
	}

	PrintSuccess(fmt.Sprintf("Successful run!\nFull stack located at: %s\nQuicklook located at: %s\nManifest located at: %s",
		result["DTM_ALTERATIONS_FULL"], result["QUICKLOOK"], result["MANIFEST"]))
}
