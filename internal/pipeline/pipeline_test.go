package pipeline

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/geovetas/alteration-mapper-cli/internal/extent"
	"github.com/geovetas/alteration-mapper-cli/internal/feedback"
	"github.com/geovetas/alteration-mapper-cli/internal/raster"
	"github.com/stretchr/testify/require"
)

type call struct {
	op     string
	dst    string
	rect   extent.Rect
	inputs []string
}

// fakeEngine records every operation and fabricates metadata, so pipeline
// sequencing can be exercised without GDAL.
type fakeEngine struct {
	calls []call
	infos map[string]raster.Info
}

func (f *fakeEngine) info(path string) raster.Info {
	if i, ok := f.infos[path]; ok {
		return i
	}
	return raster.Info{
		CRS:        "EPSG:32719",
		Extent:     extent.NewRect(0, 0, 100, 100, "EPSG:32719"),
		PixelSizeX: 30,
		PixelSizeY: 30,
		Bands:      1,
	}
}

func (f *fakeEngine) Reproject(fb *feedback.Feedback, src, dst string, opts raster.ReprojectOptions) error {
	f.calls = append(f.calls, call{op: "reproject", dst: dst, inputs: []string{src}})
	return nil
}

func (f *fakeEngine) Clip(fb *feedback.Feedback, src, dst string, rect extent.Rect, noData float64) error {
	f.calls = append(f.calls, call{op: "clip", dst: dst, rect: rect, inputs: []string{src}})
	return nil
}

func (f *fakeEngine) Slope(fb *feedback.Feedback, dtm, dst string, band int, computeEdges bool) error {
	f.calls = append(f.calls, call{op: "slope", dst: dst, inputs: []string{dtm}})
	return nil
}

func (f *fakeEngine) Aspect(fb *feedback.Feedback, dtm, dst string, band int, computeEdges bool) error {
	f.calls = append(f.calls, call{op: "aspect", dst: dst, inputs: []string{dtm}})
	return nil
}

func (f *fakeEngine) Calc(fb *feedback.Feedback, a, b raster.CalcInput, dst string, expr raster.Expr, noData float64, dtype raster.DataType) error {
	f.calls = append(f.calls, call{op: "calc", dst: dst, inputs: []string{a.Path, b.Path}})
	return nil
}

func (f *fakeEngine) Stack(fb *feedback.Feedback, inputs []string, dst string, noDataIn, noDataOut float64, names []string) error {
	f.calls = append(f.calls, call{op: "stack", dst: dst, inputs: append([]string(nil), inputs...)})
	return nil
}

func (f *fakeEngine) Info(path string) (raster.Info, error) {
	return f.info(path), nil
}

type identityTransformer struct{}

func (identityTransformer) Transform(x, y float64) (float64, float64, error) { return x, y, nil }

func (f *fakeEngine) NewTransformer(src, dst extent.CRS) (extent.Transformer, error) {
	return identityTransformer{}, nil
}

func (f *fakeEngine) count(op string) int {
	n := 0
	for _, c := range f.calls {
		if c.op == op {
			n++
		}
	}
	return n
}

func testParams(t *testing.T) LandsatParams {
	t.Helper()
	dir := t.TempDir()
	p := LandsatParams{
		SunAzimuthDeg:   DefaultSunAzimuth,
		SunElevationDeg: DefaultSunElevation,
		OutputDir:       filepath.Join(dir, "out"),
	}
	for name, field := range map[string]*string{
		"b2.tif": &p.Blue, "b4.tif": &p.Red, "b5.tif": &p.NIR,
		"b6.tif": &p.SWIR1, "b7.tif": &p.SWIR2, "dtm.tif": &p.DTM,
	} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte("stub"), 0o644))
		*field = path
	}
	return p
}

func TestMineralsProducesAllArtifacts(t *testing.T) {
	eng := &fakeEngine{}
	res, err := Minerals(eng, nil, testParams(t))
	require.NoError(t, err)

	for _, key := range []string{
		"NDVI", "FE_INDEX", "CLAY_INDEX", "OH_INDEX",
		"FE_INDEX_MASKED", "CLAY_INDEX_MASKED", "OH_INDEX_MASKED", "ILLUMINATION",
	} {
		require.NotEmpty(t, res[key], "artifact %s missing", key)
	}

	require.Equal(t, 6, eng.count("clip"), "five bands plus the DTM are clipped")
	require.Equal(t, 1, eng.count("slope"))
	require.Equal(t, 1, eng.count("aspect"))
	// illumination + 5 corrections + NDVI + 3 indices + 3 masks
	require.Equal(t, 13, eng.count("calc"))
	// only the illumination alignment; the DTM already shares the band CRS
	require.Equal(t, 1, eng.count("reproject"))
}

func TestAlterationStacksIndices(t *testing.T) {
	eng := &fakeEngine{}
	res, err := Alteration(eng, nil, testParams(t))
	require.NoError(t, err)

	for _, key := range []string{
		"NDVI", "ILLUMINATION", "DTM_CLIP",
		"FE_INDEX", "CLAY_INDEX", "OH_INDEX",
		"PROPYLITIC_INDEX", "SILICA_INDEX", "GOSSAN_INDEX",
		"ALTERATIONS_1", "ALTERATIONS_2", "DTM_ALTERATIONS_FULL",
	} {
		require.NotEmpty(t, res[key], "artifact %s missing", key)
	}

	require.Equal(t, 3, eng.count("stack"), "two groups of three plus the full stack")

	last := eng.calls[len(eng.calls)-1]
	require.Equal(t, "stack", last.op)
	require.Len(t, last.inputs, 7, "full stack carries the DTM plus six indices")
	require.Equal(t, res["DTM_CLIP"], last.inputs[0], "the DTM leads the full stack")
}

func TestPipelineUsesUserExtentVerbatim(t *testing.T) {
	eng := &fakeEngine{}
	p := testParams(t)
	user := extent.NewRect(10, 10, 40, 40, "EPSG:32719")
	p.Extent = &user

	_, err := Minerals(eng, nil, p)
	require.NoError(t, err)

	for _, c := range eng.calls {
		if c.op == "clip" {
			require.Equal(t, user, c.rect, "clips must use the user extent untouched")
		}
	}
}

func TestPipelineRejectsMissingInput(t *testing.T) {
	eng := &fakeEngine{}
	p := testParams(t)
	p.SWIR2 = ""

	_, err := Minerals(eng, nil, p)
	require.ErrorIs(t, err, raster.ErrMissingInput)
}

func TestPipelineFailsOnDisjointExtents(t *testing.T) {
	eng := &fakeEngine{infos: map[string]raster.Info{}}
	p := testParams(t)
	eng.infos[p.Red] = raster.Info{
		CRS:        "EPSG:32719",
		Extent:     extent.NewRect(1000, 1000, 2000, 2000, "EPSG:32719"),
		PixelSizeX: 30,
		PixelSizeY: 30,
		Bands:      1,
	}

	_, err := Minerals(eng, nil, p)
	require.ErrorIs(t, err, extent.ErrEmptyIntersection)
}
