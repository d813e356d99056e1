package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/geovetas/alteration-mapper-cli/internal/feedback"
)

// Grid is the read-only raster view the table exporter consumes. The
// geotransform follows the GDAL convention: origin, pixel size and rotation
// terms, with a negative Y pixel size for north-up grids.
type Grid interface {
	Size() (width, height int)
	GeoTransform() [6]float64
	BandCount() int
	// BandName returns the declared band name, or "" when the source has none.
	BandName(band int) string
	// NoData returns the band's no-data sentinel and whether one is declared.
	NoData(band int) (float64, bool)
	// ReadRow fills buf with the values of one grid row of the band.
	// Bands and rows are 0-indexed here.
	ReadRow(band, row int, buf []float64) error
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// WriteCSV walks the grid in row-major order and writes one record per cell:
// the cell's geographic center followed by every band value in band order.
// A cell where every band is no-data (no declared sentinel, or value equal to
// it) is skipped entirely; a cell with any live band is written verbatim,
// including values that individually match their own sentinel.
//
// Cancellation is checked before every record. A canceled export keeps
// whatever was already written and returns the emitted row count without an
// error.
func WriteCSV(fb *feedback.Feedback, grid Grid, w io.Writer) (int, error) {
	width, height := grid.Size()
	gt := grid.GeoTransform()
	bands := grid.BandCount()
	if bands == 0 {
		return 0, errors.New("raster has no bands")
	}

	cw := csv.NewWriter(w)
	header := make([]string, 0, bands+2)
	header = append(header, "x", "y")
	for b := 0; b < bands; b++ {
		name := grid.BandName(b)
		if name == "" {
			name = fmt.Sprintf("band%d", b+1)
		}
		header = append(header, name)
	}
	if err := cw.Write(header); err != nil {
		return 0, err
	}

	rows := make([][]float64, bands)
	for b := range rows {
		rows[b] = make([]float64, width)
	}
	record := make([]string, bands+2)

	emitted := 0
	fb.StartProgress(int64(height), "Exporting CSV")
	defer fb.FinishProgress()

	for j := 0; j < height; j++ {
		for b := 0; b < bands; b++ {
			if err := grid.ReadRow(b, j, rows[b]); err != nil {
				cw.Flush()
				return emitted, fmt.Errorf("reading band %d row %d: %w", b+1, j, err)
			}
		}

		y := gt[3] + (float64(j)+0.5)*gt[5]
		for i := 0; i < width; i++ {
			if fb.Canceled() {
				cw.Flush()
				return emitted, cw.Error()
			}

			allNoData := true
			for b := 0; b < bands; b++ {
				nd, ok := grid.NoData(b)
				if ok && rows[b][i] != nd {
					allNoData = false
					break
				}
			}
			if allNoData {
				continue
			}

			x := gt[0] + (float64(i)+0.5)*gt[1] + (float64(j)+0.5)*gt[2]
			record[0] = formatValue(x)
			record[1] = formatValue(y)
			for b := 0; b < bands; b++ {
				record[b+2] = formatValue(rows[b][i])
			}
			if err := cw.Write(record); err != nil {
				return emitted, err
			}
			emitted++
		}
		fb.Advance(1)
	}

	cw.Flush()
	return emitted, cw.Error()
}
