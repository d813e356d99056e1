package pipeline

import (
	"fmt"
	"strings"

	"github.com/geovetas/alteration-mapper-cli/internal/feedback"
	"github.com/geovetas/alteration-mapper-cli/internal/raster"
)

// stackGroupSize is how many indices go into each packed 3-band raster.
const stackGroupSize = 3

// Alteration computes the six alteration indices (Fe, Clay, OH, Propylitic,
// Silica, Gossan), packs them into 3-band stacks and builds a single raster
// holding the clipped DTM plus every index.
func Alteration(eng raster.Engine, fb *feedback.Feedback, p LandsatParams) (Result, error) {
	pre, err := prepare(eng, fb, p)
	if err != nil {
		return nil, err
	}

	indexDefs := []struct {
		name string
		a, b string
	}{
		{"fe_index", pre.redCorr, pre.blueCorr},
		{"clay_index", pre.swir1Corr, pre.swir2Corr},
		{"oh_index", pre.swir1Corr, pre.nirCorr},
		{"propylitic_index", pre.nirCorr, pre.redCorr},
		{"silica_index", pre.swir1Corr, pre.blueCorr},
		{"gossan_index", pre.redCorr, pre.swir1Corr},
	}

	result := Result{
		"NDVI":         pre.ndvi,
		"ILLUMINATION": pre.illumAligned,
		"DTM_CLIP":     pre.dtmClip,
	}

	names := make([]string, 0, len(indexDefs))
	paths := make([]string, 0, len(indexDefs))
	for _, def := range indexDefs {
		fb.Info("Computing %s...", def.name)
		p, err := ratio(eng, fb, pre.dir, def.name, def.a, def.b)
		if err != nil {
			return nil, err
		}
		names = append(names, def.name)
		paths = append(paths, p)
		result[strings.ToUpper(def.name)] = p
	}

	fb.Info("Packing indices into 3-band rasters...")
	for i := 0; i < len(paths); i += stackGroupSize {
		end := i + stackGroupSize
		if end > len(paths) {
			end = len(paths)
		}
		group := i/stackGroupSize + 1
		dst := uniquePath(pre.dir, fmt.Sprintf("alterations_%d", group), ".tif")
		if err := eng.Stack(fb, paths[i:end], dst, noDataValue, noDataValue, names[i:end]); err != nil {
			return nil, err
		}
		result[fmt.Sprintf("ALTERATIONS_%d", group)] = dst
	}

	fb.Info("Building the DTM + indices full stack...")
	fullStack := uniquePath(pre.dir, "dtm_alterations_full", ".tif")
	if err := eng.Stack(fb,
		append([]string{pre.dtmClip}, paths...), fullStack,
		noDataValue, noDataValue,
		append([]string{"dtm"}, names...)); err != nil {
		return nil, err
	}
	result["DTM_ALTERATIONS_FULL"] = fullStack

	fb.Info("Done.")
	return result, nil
}
