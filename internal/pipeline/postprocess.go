package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/geovetas/alteration-mapper-cli/internal/export"
	"github.com/geovetas/alteration-mapper-cli/internal/feedback"
	"github.com/geovetas/alteration-mapper-cli/internal/raster"
)

// Postprocess reprojects a multiband raster (the stacked pipeline products)
// to the chosen CRS and datatype, then exports every pixel as one CSV record
// of x, y and all band values.
func Postprocess(eng raster.Engine, fb *feedback.Feedback, p PostprocessParams) (Result, error) {
	if err := requireRaster("input raster", p.Raster); err != nil {
		return nil, err
	}
	if p.TargetCRS == "" {
		return nil, fmt.Errorf("%w: no target CRS given", raster.ErrInvalidCRS)
	}
	if err := os.MkdirAll(p.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output folder %s: %w", p.OutputDir, err)
	}

	info, err := eng.Info(p.Raster)
	if err != nil {
		return nil, err
	}
	if info.Bands == 0 {
		return nil, fmt.Errorf("%w: raster %s has no bands", raster.ErrEngineOperation, p.Raster)
	}

	base := strings.TrimSuffix(filepath.Base(p.Raster), filepath.Ext(p.Raster))

	fb.Info("Reprojecting %s to the target CRS...", base)
	reprojPath := uniquePath(p.OutputDir, base+"_reproj", ".tif")
	if err := eng.Reproject(fb, p.Raster, reprojPath, raster.ReprojectOptions{
		TargetCRS:  p.TargetCRS,
		Resampling: raster.ResampleBilinear,
		DataType:   p.DataType,
	}); err != nil {
		return nil, err
	}
	fb.Info("Reprojected raster: %s", reprojPath)

	grid, err := export.OpenGrid(reprojPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", raster.ErrEngineOperation, err)
	}
	defer grid.Close()

	csvPath := uniquePath(p.OutputDir, base+"_reproj_xyz", ".csv")
	fb.Info("Exporting CSV: %s", csvPath)
	f, err := os.Create(csvPath)
	if err != nil {
		return nil, fmt.Errorf("creating CSV %s: %w", csvPath, err)
	}
	rows, err := export.WriteCSV(fb, grid, f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, err
	}
	fb.Info("Wrote %d rows.", rows)

	return Result{
		"REPROJECTED_RASTER": reprojPath,
		"CSV":                csvPath,
	}, nil
}
