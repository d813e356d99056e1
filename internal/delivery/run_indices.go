package delivery

import (
	"context"
	"fmt"
	"strings"

	"github.com/geovetas/alteration-mapper-cli/internal/feedback"
	"github.com/geovetas/alteration-mapper-cli/internal/notification"
	"github.com/geovetas/alteration-mapper-cli/internal/pipeline"
	"github.com/geovetas/alteration-mapper-cli/internal/quicklook"
	"github.com/geovetas/alteration-mapper-cli/internal/raster"
)

func notifyOutcome(run string, err error) {
	if err != nil {
		_ = notification.SendDiscordErrorNotification(fmt.Sprintf("%s: %s", run, err))
		return
	}
	_ = notification.SendDiscordSuccessNotification(fmt.Sprintf("%s finished", run))
}

// renderQuicklook drops a PNG preview next to the raster artifact.
func renderQuicklook(result pipeline.Result, artifact string) (string, error) {
	src, ok := result[artifact]
	if !ok {
		return "", fmt.Errorf("no %s artifact to preview", artifact)
	}
	png := strings.TrimSuffix(src, ".tif") + ".png"
	if err := quicklook.WritePNG(src, 1, png); err != nil {
		return "", err
	}
	return png, nil
}

// RunMinerals executes the Fe/Clay/OH pipeline end to end: indices, manifest,
// quicklook and notification.
func RunMinerals(ctx context.Context, eng raster.Engine, p pipeline.LandsatParams) (result pipeline.Result, err error) {
	defer func() { notifyOutcome("Mineral indices run", err) }()

	fb := feedback.New(ctx)
	result, err = pipeline.Minerals(eng, fb, p)
	if err != nil {
		return nil, err
	}

	png, err := renderQuicklook(result, "OH_INDEX_MASKED")
	if err != nil {
		return nil, err
	}
	result["QUICKLOOK"] = png

	manifest, err := writeManifest(p.OutputDir, "minerals", result)
	if err != nil {
		return nil, err
	}
	result["MANIFEST"] = manifest
	fb.Info("Run manifest: %s", manifest)
	return result, nil
}

// RunAlteration executes the six-index alteration pipeline end to end.
func RunAlteration(ctx context.Context, eng raster.Engine, p pipeline.LandsatParams) (result pipeline.Result, err error) {
	defer func() { notifyOutcome("Alteration indices run", err) }()

	fb := feedback.New(ctx)
	result, err = pipeline.Alteration(eng, fb, p)
	if err != nil {
		return nil, err
	}

	png, err := renderQuicklook(result, "DTM_ALTERATIONS_FULL")
	if err != nil {
		return nil, err
	}
	result["QUICKLOOK"] = png

	manifest, err := writeManifest(p.OutputDir, "alteration", result)
	if err != nil {
		return nil, err
	}
	result["MANIFEST"] = manifest
	fb.Info("Run manifest: %s", manifest)
	return result, nil
}
