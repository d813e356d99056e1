package pipeline

import (
	"github.com/geovetas/alteration-mapper-cli/internal/feedback"
	"github.com/geovetas/alteration-mapper-cli/internal/raster"
)

// vegetationNDVIThreshold masks out pixels the NDVI flags as vegetated:
// spectral ratios over canopy say nothing about the rock underneath.
const vegetationNDVIThreshold = 0.3

// Minerals computes the Fe, Clay and OH mineral indices from
// illumination-corrected Landsat bands, plus NDVI-masked variants of each.
func Minerals(eng raster.Engine, fb *feedback.Feedback, p LandsatParams) (Result, error) {
	pre, err := prepare(eng, fb, p)
	if err != nil {
		return nil, err
	}

	fb.Info("Computing Fe, Clay and OH indices...")
	fePath, err := ratio(eng, fb, pre.dir, "fe_index", pre.redCorr, pre.blueCorr)
	if err != nil {
		return nil, err
	}
	clayPath, err := ratio(eng, fb, pre.dir, "clay_index", pre.swir1Corr, pre.swir2Corr)
	if err != nil {
		return nil, err
	}
	ohPath, err := ratio(eng, fb, pre.dir, "oh_index", pre.swir1Corr, pre.nirCorr)
	if err != nil {
		return nil, err
	}

	fb.Info("Masking vegetation (NDVI < %g)...", vegetationNDVIThreshold)
	mask := func(idxPath, base string) (string, error) {
		dst := uniquePath(pre.dir, base, ".tif")
		err := eng.Calc(fb,
			raster.CalcInput{Path: idxPath, Band: 1},
			raster.CalcInput{Path: pre.ndvi, Band: 1},
			dst, vegetationMaskExpr(vegetationNDVIThreshold),
			noDataValue, raster.TypeFloat64)
		if err != nil {
			return "", err
		}
		return dst, nil
	}

	feMasked, err := mask(fePath, "fe_index_masked")
	if err != nil {
		return nil, err
	}
	clayMasked, err := mask(clayPath, "clay_index_masked")
	if err != nil {
		return nil, err
	}
	ohMasked, err := mask(ohPath, "oh_index_masked")
	if err != nil {
		return nil, err
	}

	fb.Info("Done.")
	return Result{
		"NDVI":              pre.ndvi,
		"FE_INDEX":          fePath,
		"CLAY_INDEX":        clayPath,
		"OH_INDEX":          ohPath,
		"FE_INDEX_MASKED":   feMasked,
		"CLAY_INDEX_MASKED": clayMasked,
		"OH_INDEX_MASKED":   ohMasked,
		"ILLUMINATION":      pre.illumAligned,
	}, nil
}
