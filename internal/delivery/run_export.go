package delivery

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/fatih/color"
	"github.com/gammazero/workerpool"
	"github.com/geovetas/alteration-mapper-cli/internal/feedback"
	"github.com/geovetas/alteration-mapper-cli/internal/pipeline"
	"github.com/geovetas/alteration-mapper-cli/internal/properties"
	"github.com/geovetas/alteration-mapper-cli/internal/raster"
	"github.com/geovetas/alteration-mapper-cli/internal/utils"
)

// RunPostprocess reprojects one raster and exports its pixel table, writing a
// manifest of both products.
func RunPostprocess(ctx context.Context, eng raster.Engine, p pipeline.PostprocessParams) (result pipeline.Result, err error) {
	defer func() { notifyOutcome("Pixel table export", err) }()

	fb := feedback.New(ctx)
	result, err = pipeline.Postprocess(eng, fb, p)
	if err != nil {
		return nil, err
	}

	manifest, err := writeManifest(p.OutputDir, "postprocess", result)
	if err != nil {
		return nil, err
	}
	result["MANIFEST"] = manifest
	fb.Info("Run manifest: %s", manifest)
	return result, nil
}

// serializedEngine puts the shared GDAL mutex around the warp only. Each
// worker owns its datasets; the warp is the one call that contends on shared
// driver and block cache state.
type serializedEngine struct {
	raster.Engine
}

func (e serializedEngine) Reproject(fb *feedback.Feedback, src, dst string, opts raster.ReprojectOptions) error {
	var err error
	utils.ExecuteWithGDALMutex(func() {
		err = e.Engine.Reproject(fb, src, dst, opts)
	})
	return err
}

// RunBatchPostprocess exports several rasters concurrently. Each raster gets
// its own timestamped products; only the warps are serialized through the
// shared mutex, so grid reads and CSV writing of different rasters overlap.
func RunBatchPostprocess(ctx context.Context, eng raster.Engine, rasters []string, params pipeline.PostprocessParams) error {
	if len(rasters) == 0 {
		return fmt.Errorf("%w: no rasters to export", raster.ErrMissingInput)
	}

	serialized := serializedEngine{Engine: eng}
	wp := workerpool.New(properties.BatchWorkers())
	var mu sync.Mutex
	var errs []error

	for _, path := range rasters {
		path := path
		wp.Submit(func() {
			if ctx.Err() != nil {
				return
			}
			p := params
			p.Raster = path

			_, err := pipeline.Postprocess(serialized, nil, p)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", path, err))
				color.Red("Failed: %s (%s)", path, err)
				return
			}
			color.Green("Exported: %s", path)
		})
	}
	wp.StopWait()

	err := errors.Join(errs...)
	notifyOutcome(fmt.Sprintf("Batch export of %d rasters", len(rasters)), err)
	return err
}
