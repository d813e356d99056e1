package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/geovetas/alteration-mapper-cli/internal/extent"
	"github.com/geovetas/alteration-mapper-cli/internal/feedback"
	"github.com/geovetas/alteration-mapper-cli/internal/raster"
)

// noDataValue is the sentinel every pipeline product declares.
const noDataValue = 0.0

// uniquePath builds a timestamped output name so reruns and concurrent runs
// writing to the same folder never collide.
func uniquePath(dir, base, ext string) string {
	ts := time.Now().Format("20060102_150405")
	return filepath.Join(dir, fmt.Sprintf("%s_%s%s", base, ts, ext))
}

func requireRaster(name, path string) error {
	if path == "" {
		return fmt.Errorf("%w: %s", raster.ErrMissingInput, name)
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("%w: %s (%s)", raster.ErrMissingInput, name, path)
	}
	return nil
}

// prepared holds the intermediate products every index pipeline builds before
// computing its ratios: clipped DTM, illumination-corrected bands and NDVI.
type prepared struct {
	dir          string
	commonExtent extent.Rect

	dtmClip      string
	illumAligned string

	blueCorr  string
	redCorr   string
	nirCorr   string
	swir1Corr string
	swir2Corr string

	ndvi string
}

// prepare runs the steps shared by the mineral and alteration pipelines:
// extent reconciliation, DTM reprojection, clipping, slope/aspect,
// illumination and band correction. Each step blocks until the engine
// finishes; the first failure aborts the run.
func prepare(eng raster.Engine, fb *feedback.Feedback, p LandsatParams) (*prepared, error) {
	bands := []struct {
		name string
		path string
	}{
		{"B2 (blue)", p.Blue},
		{"B4 (red)", p.Red},
		{"B5 (NIR)", p.NIR},
		{"B6 (SWIR1)", p.SWIR1},
		{"B7 (SWIR2)", p.SWIR2},
		{"DTM", p.DTM},
	}
	for _, b := range bands {
		if err := requireRaster(b.name, b.path); err != nil {
			return nil, err
		}
	}

	dir := p.OutputDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output folder %s: %w", dir, err)
	}

	blueInfo, err := eng.Info(p.Blue)
	if err != nil {
		return nil, err
	}
	targetCRS := blueInfo.CRS
	if targetCRS == "" {
		return nil, fmt.Errorf("%w: B2 has no projection", raster.ErrInvalidCRS)
	}

	// The common extent comes from the five spectral bands; the DTM is
	// clipped to it but never shrinks it.
	bandExtents := make([]extent.Rect, 0, 5)
	for _, path := range []string{p.Blue, p.Red, p.NIR, p.SWIR1, p.SWIR2} {
		info, err := eng.Info(path)
		if err != nil {
			return nil, err
		}
		bandExtents = append(bandExtents, info.Extent)
	}

	if p.Extent != nil && !p.Extent.IsEmpty() {
		fb.Info("Using the user-supplied extent (reprojected to the band CRS).")
	} else {
		fb.Info("Using the intersection of all band extents.")
	}
	commonExtent, err := extent.Reconcile(p.Extent, bandExtents, targetCRS, eng.NewTransformer)
	if err != nil {
		return nil, err
	}

	resX := blueInfo.PixelSizeX

	dtmSrc := p.DTM
	dtmInfo, err := eng.Info(p.DTM)
	if err != nil {
		return nil, err
	}
	if dtmInfo.CRS != targetCRS {
		fb.Info("DTM is in a different CRS, reprojecting to the band CRS...")
		dtmSrc = uniquePath(dir, "dtm_reproj", ".tif")
		if err := eng.Reproject(fb, p.DTM, dtmSrc, raster.ReprojectOptions{
			TargetCRS:  targetCRS,
			Resampling: raster.ResampleNearest,
		}); err != nil {
			return nil, err
		}
	}

	clip := func(src, base string) (string, error) {
		dst := uniquePath(dir, base, ".tif")
		if err := eng.Clip(fb, src, dst, commonExtent, noDataValue); err != nil {
			return "", err
		}
		return dst, nil
	}

	fb.Info("Clipping layers to the working extent...")
	blueClip, err := clip(p.Blue, "b2_clip")
	if err != nil {
		return nil, err
	}
	redClip, err := clip(p.Red, "b4_clip")
	if err != nil {
		return nil, err
	}
	nirClip, err := clip(p.NIR, "b5_clip")
	if err != nil {
		return nil, err
	}
	swir1Clip, err := clip(p.SWIR1, "b6_clip")
	if err != nil {
		return nil, err
	}
	swir2Clip, err := clip(p.SWIR2, "b7_clip")
	if err != nil {
		return nil, err
	}
	dtmClip, err := clip(dtmSrc, "dtm_clip")
	if err != nil {
		return nil, err
	}

	fb.Info("Computing slope and aspect...")
	slopePath := uniquePath(dir, "slope", ".tif")
	if err := eng.Slope(fb, dtmClip, slopePath, 1, true); err != nil {
		return nil, err
	}
	aspectPath := uniquePath(dir, "aspect", ".tif")
	if err := eng.Aspect(fb, dtmClip, aspectPath, 1, true); err != nil {
		return nil, err
	}

	fb.Info("Computing illumination...")
	illumPath := uniquePath(dir, "illumination", ".tif")
	if err := eng.Calc(fb,
		raster.CalcInput{Path: slopePath, Band: 1},
		raster.CalcInput{Path: aspectPath, Band: 1},
		illumPath, illuminationExpr(p.SunAzimuthDeg, p.SunElevationDeg),
		noDataValue, raster.TypeFloat64); err != nil {
		return nil, err
	}

	fb.Info("Aligning illumination to the band grid...")
	nd := noDataValue
	illumAligned := uniquePath(dir, "illumination_aligned", ".tif")
	if err := eng.Reproject(fb, illumPath, illumAligned, raster.ReprojectOptions{
		TargetCRS:        targetCRS,
		Resampling:       raster.ResampleNearest,
		NoData:           &nd,
		TargetResolution: &resX,
		TargetExtent:     &commonExtent,
		DataType:         raster.TypeFloat64,
	}); err != nil {
		return nil, err
	}

	correct := func(clipPath, base string) (string, error) {
		dst := uniquePath(dir, base, ".tif")
		err := eng.Calc(fb,
			raster.CalcInput{Path: clipPath, Band: 1},
			raster.CalcInput{Path: illumAligned, Band: 1},
			dst, illumCorrectionExpr(), noDataValue, raster.TypeFloat64)
		if err != nil {
			return "", err
		}
		return dst, nil
	}

	fb.Info("Correcting bands for illumination...")
	blueCorr, err := correct(blueClip, "b2_corr")
	if err != nil {
		return nil, err
	}
	redCorr, err := correct(redClip, "b4_corr")
	if err != nil {
		return nil, err
	}
	nirCorr, err := correct(nirClip, "b5_corr")
	if err != nil {
		return nil, err
	}
	swir1Corr, err := correct(swir1Clip, "b6_corr")
	if err != nil {
		return nil, err
	}
	swir2Corr, err := correct(swir2Clip, "b7_corr")
	if err != nil {
		return nil, err
	}

	fb.Info("Computing NDVI...")
	ndviPath := uniquePath(dir, "ndvi", ".tif")
	if err := eng.Calc(fb,
		raster.CalcInput{Path: nirCorr, Band: 1},
		raster.CalcInput{Path: redCorr, Band: 1},
		ndviPath, ndviExpr(), noDataValue, raster.TypeFloat64); err != nil {
		return nil, err
	}

	return &prepared{
		dir:          dir,
		commonExtent: commonExtent,
		dtmClip:      dtmClip,
		illumAligned: illumAligned,
		blueCorr:     blueCorr,
		redCorr:      redCorr,
		nirCorr:      nirCorr,
		swir1Corr:    swir1Corr,
		swir2Corr:    swir2Corr,
		ndvi:         ndviPath,
	}, nil
}

// ratio computes one alteration index A/B from two corrected bands.
func ratio(eng raster.Engine, fb *feedback.Feedback, dir, base, a, b string) (string, error) {
	dst := uniquePath(dir, base, ".tif")
	err := eng.Calc(fb,
		raster.CalcInput{Path: a, Band: 1},
		raster.CalcInput{Path: b, Band: 1},
		dst, ratioExpr(), noDataValue, raster.TypeFloat64)
	if err != nil {
		return "", err
	}
	return dst, nil
}
