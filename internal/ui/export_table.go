package ui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/geovetas/alteration-mapper-cli/internal/delivery"
	"github.com/geovetas/alteration-mapper-cli/internal/extent"
	"github.com/geovetas/alteration-mapper-cli/internal/pipeline"
	"github.com/geovetas/alteration-mapper-cli/internal/raster"
)

func readPostprocessParams() (pipeline.PostprocessParams, error) {
	p := pipeline.PostprocessParams{
		DataType:  raster.TypeFloat64,
		OutputDir: ReadOutputDir(),
	}

	crs := ReadString("Enter the target CRS (e.g. EPSG:4326): ")
	if crs == "" {
		return pipeline.PostprocessParams{}, fmt.Errorf("target CRS cannot be empty")
	}
	p.TargetCRS = extent.CRS(crs)
	return p, nil
}

// ExportTable handles the UI for reprojecting one raster and exporting its
// pixel table
func ExportTable(eng raster.Engine) {
	path, err := ReadRasterPath("Enter the raster path: ")
	if err != nil {
		PrintError(err.Error())
		return
	}

	p, err := readPostprocessParams()
	if err != nil {
		PrintError(err.Error())
		return
	}
	p.Raster = path

	result, err := delivery.RunPostprocess(context.Background(), eng, p)
	if err != nil {
		PrintError(fmt.Sprintf("Error exporting pixel table: %s", err.Error()))
		return
	}

	PrintSuccess(fmt.Sprintf("Successful export!\nReprojected raster located at: %s\nCSV located at: %s",
		result["REPROJECTED_RASTER"], result["CSV"]))
}

// BatchExportTables handles the UI for exporting pixel tables for every GeoTIFF
// in a folder
func BatchExportTables(eng raster.Engine) {
	folder := ReadString("Enter the folder with the rasters to export: ")
	if folder == "" {
		PrintError("folder cannot be empty")
		return
	}

	rasters, err := listGeoTIFFs(folder)
	if err != nil {
		PrintError(err.Error())
		return
	}
	PrintInfo(fmt.Sprintf("Found %d rasters.\n", len(rasters)))

	p, err := readPostprocessParams()
	if err != nil {
		PrintError(err.Error())
		return
	}

	if err := delivery.RunBatchPostprocess(context.Background(), eng, rasters, p); err != nil {
		PrintError(fmt.Sprintf("Batch export finished with errors: %s", err.Error()))
		return
	}

	PrintSuccess(fmt.Sprintf("Successful batch export of %d rasters!\nProducts located at: %s", len(rasters), p.OutputDir))
}

func listGeoTIFFs(folder string) ([]string, error) {
	entries, err := filepath.Glob(filepath.Join(folder, "*.tif"))
	if err != nil {
		return nil, fmt.Errorf("error reading raster folder: %s", err.Error())
	}
	tiffs, err := filepath.Glob(filepath.Join(folder, "*.tiff"))
	if err != nil {
		return nil, fmt.Errorf("error reading raster folder: %s", err.Error())
	}
	entries = append(entries, tiffs...)

	rasters := make([]string, 0, len(entries))
	for _, e := range entries {
		if strings.HasPrefix(filepath.Base(e), ".") {
			continue
		}
		rasters = append(rasters, e)
	}
	if len(rasters) == 0 {
		return nil, fmt.Errorf("no GeoTIFFs found in %s", folder)
	}
	return rasters, nil
}
