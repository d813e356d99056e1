package delivery

import (
	"sync"
	"testing"
	"time"

	"github.com/geovetas/alteration-mapper-cli/internal/extent"
	"github.com/geovetas/alteration-mapper-cli/internal/feedback"
	"github.com/geovetas/alteration-mapper-cli/internal/raster"
	"github.com/stretchr/testify/require"
)

// overlapEngine counts how many Reproject calls run at the same time.
type overlapEngine struct {
	mu      sync.Mutex
	active  int
	maxSeen int
	calls   int
}

func (e *overlapEngine) Reproject(fb *feedback.Feedback, src, dst string, opts raster.ReprojectOptions) error {
	e.mu.Lock()
	e.active++
	e.calls++
	if e.active > e.maxSeen {
		e.maxSeen = e.active
	}
	e.mu.Unlock()

	time.Sleep(10 * time.Millisecond)

	e.mu.Lock()
	e.active--
	e.mu.Unlock()
	return nil
}

func (e *overlapEngine) Clip(fb *feedback.Feedback, src, dst string, rect extent.Rect, noData float64) error {
	return nil
}
func (e *overlapEngine) Slope(fb *feedback.Feedback, dtm, dst string, band int, computeEdges bool) error {
	return nil
}
func (e *overlapEngine) Aspect(fb *feedback.Feedback, dtm, dst string, band int, computeEdges bool) error {
	return nil
}
func (e *overlapEngine) Calc(fb *feedback.Feedback, a, b raster.CalcInput, dst string, expr raster.Expr, noData float64, dtype raster.DataType) error {
	return nil
}
func (e *overlapEngine) Stack(fb *feedback.Feedback, inputs []string, dst string, noDataIn, noDataOut float64, names []string) error {
	return nil
}
func (e *overlapEngine) Info(path string) (raster.Info, error) { return raster.Info{}, nil }
func (e *overlapEngine) NewTransformer(src, dst extent.CRS) (extent.Transformer, error) {
	return nil, nil
}

func TestSerializedEngineNeverOverlapsWarps(t *testing.T) {
	inner := &overlapEngine{}
	eng := serializedEngine{Engine: inner}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			require.NoError(t, eng.Reproject(nil, "in.tif", "out.tif", raster.ReprojectOptions{}))
		}()
	}
	wg.Wait()

	require.Equal(t, 4, inner.calls, "every warp must reach the wrapped engine")
	require.Equal(t, 1, inner.maxSeen, "warps must be serialized")
}
