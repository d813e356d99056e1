package export

import (
	"bytes"
	"context"
	"strconv"
	"strings"
	"testing"

	"github.com/geovetas/alteration-mapper-cli/internal/feedback"
	"github.com/stretchr/testify/require"
)

type memBand struct {
	name      string
	noData    float64
	hasNoData bool
	values    []float64 // row-major
}

type memGrid struct {
	width, height int
	gt            [6]float64
	bands         []memBand
}

func (g *memGrid) Size() (int, int)            { return g.width, g.height }
func (g *memGrid) GeoTransform() [6]float64    { return g.gt }
func (g *memGrid) BandCount() int              { return len(g.bands) }
func (g *memGrid) BandName(band int) string    { return g.bands[band].name }
func (g *memGrid) NoData(band int) (float64, bool) {
	return g.bands[band].noData, g.bands[band].hasNoData
}

func (g *memGrid) ReadRow(band, row int, buf []float64) error {
	copy(buf, g.bands[band].values[row*g.width:(row+1)*g.width])
	return nil
}

func lines(buf *bytes.Buffer) []string {
	out := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(out) == 1 && out[0] == "" {
		return nil
	}
	return out
}

func TestWriteCSVSingleLiveCell(t *testing.T) {
	grid := &memGrid{
		width:  2,
		height: 2,
		gt:     [6]float64{100, 10, 0, 200, 0, -10},
		bands: []memBand{
			{hasNoData: true, noData: 0, values: []float64{0, 5, 0, 0}},
		},
	}

	var buf bytes.Buffer
	rows, err := WriteCSV(nil, grid, &buf)
	require.NoError(t, err)
	require.Equal(t, 1, rows)

	got := lines(&buf)
	require.Equal(t, []string{"x,y,band1", "115,195,5"}, got)
}

func TestWriteCSVAllNoDataYieldsNoRows(t *testing.T) {
	grid := &memGrid{
		width:  3,
		height: 3,
		gt:     [6]float64{0, 1, 0, 0, 0, -1},
		bands: []memBand{
			{hasNoData: true, noData: -1, values: []float64{-1, -1, -1, -1, -1, -1, -1, -1, -1}},
			{hasNoData: true, noData: 9, values: []float64{9, 9, 9, 9, 9, 9, 9, 9, 9}},
		},
	}

	var buf bytes.Buffer
	rows, err := WriteCSV(nil, grid, &buf)
	require.NoError(t, err)
	require.Equal(t, 0, rows)
	require.Equal(t, []string{"x,y,band1,band2"}, lines(&buf))
}

func TestWriteCSVOwnSentinelValuesKeptWhenAnotherBandIsLive(t *testing.T) {
	grid := &memGrid{
		width:  1,
		height: 1,
		gt:     [6]float64{0, 1, 0, 0, 0, -1},
		bands: []memBand{
			{name: "dtm", hasNoData: true, noData: 0, values: []float64{0}},
			{name: "fe_index", hasNoData: true, noData: 0, values: []float64{2.5}},
		},
	}

	var buf bytes.Buffer
	rows, err := WriteCSV(nil, grid, &buf)
	require.NoError(t, err)
	require.Equal(t, 1, rows)
	require.Equal(t, []string{"x,y,dtm,fe_index", "0.5,-0.5,0,2.5"}, lines(&buf))
}

func TestWriteCSVBandWithoutSentinelDoesNotKeepCellsAlive(t *testing.T) {
	// A band that declares no sentinel counts as no-data for the skip rule.
	grid := &memGrid{
		width:  2,
		height: 1,
		gt:     [6]float64{0, 1, 0, 0, 0, -1},
		bands: []memBand{
			{hasNoData: false, values: []float64{3, 4}},
		},
	}

	var buf bytes.Buffer
	rows, err := WriteCSV(nil, grid, &buf)
	require.NoError(t, err)
	require.Equal(t, 0, rows)
}

func TestWriteCSVRowYIgnoresColumnShear(t *testing.T) {
	// y depends on the row only: origin plus (j+0.5) times the pixel height.
	// The column shear term of the geotransform must not leak into it.
	grid := &memGrid{
		width:  2,
		height: 1,
		gt:     [6]float64{0, 1, 0, 100, 2, -1},
		bands: []memBand{
			{hasNoData: true, noData: 0, values: []float64{1, 2}},
		},
	}

	var buf bytes.Buffer
	rows, err := WriteCSV(nil, grid, &buf)
	require.NoError(t, err)
	require.Equal(t, 2, rows)

	got := lines(&buf)
	require.Equal(t, []string{"x,y,band1", "0.5,99.5,1", "1.5,99.5,2"}, got)
}

func TestWriteCSVCoordinateOrdering(t *testing.T) {
	grid := &memGrid{
		width:  3,
		height: 3,
		gt:     [6]float64{500, 30, 0, 8000, 0, -30},
		bands: []memBand{
			{hasNoData: true, noData: 0, values: []float64{1, 2, 3, 4, 5, 6, 7, 8, 9}},
		},
	}

	var buf bytes.Buffer
	rows, err := WriteCSV(nil, grid, &buf)
	require.NoError(t, err)
	require.Equal(t, 9, rows)

	recs := lines(&buf)[1:]
	var prevY float64
	for r, rec := range recs {
		fields := strings.Split(rec, ",")
		x, err := strconv.ParseFloat(fields[0], 64)
		require.NoError(t, err)
		y, err := strconv.ParseFloat(fields[1], 64)
		require.NoError(t, err)

		if r%3 != 0 {
			prevFields := strings.Split(recs[r-1], ",")
			prevX, _ := strconv.ParseFloat(prevFields[0], 64)
			require.Greater(t, x, prevX, "x must grow within a row")
		}
		if r >= 3 && r%3 == 0 {
			require.Less(t, y, prevY, "y must decrease from row to row")
		}
		prevY = y
	}
}

func TestWriteCSVCancellationKeepsPartialOutput(t *testing.T) {
	grid := &memGrid{
		width:  2,
		height: 2,
		gt:     [6]float64{0, 1, 0, 0, 0, -1},
		bands: []memBand{
			{hasNoData: true, noData: 0, values: []float64{1, 2, 3, 4}},
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	rows, err := WriteCSV(feedback.New(ctx), grid, &buf)
	require.NoError(t, err, "cancellation is partial success, not an error")
	require.Equal(t, 0, rows)
	require.Equal(t, []string{"x,y,band1"}, lines(&buf))
}
