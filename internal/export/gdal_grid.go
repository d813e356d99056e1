package export

import (
	"fmt"

	"github.com/airbusgeo/godal"
)

// DatasetGrid adapts an open godal dataset to the Grid interface.
type DatasetGrid struct {
	ds    *godal.Dataset
	bands []godal.Band
	gt    [6]float64
}

func OpenGrid(path string) (*DatasetGrid, error) {
	ds, err := godal.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open raster %s: %w", path, err)
	}
	gt, err := ds.GeoTransform()
	if err != nil {
		ds.Close()
		return nil, fmt.Errorf("failed to get geotransform of %s: %w", path, err)
	}
	return &DatasetGrid{ds: ds, bands: ds.Bands(), gt: gt}, nil
}

func (g *DatasetGrid) Close() error {
	return g.ds.Close()
}

func (g *DatasetGrid) Size() (int, int) {
	st := g.ds.Structure()
	return st.SizeX, st.SizeY
}

func (g *DatasetGrid) GeoTransform() [6]float64 {
	return g.gt
}

func (g *DatasetGrid) BandCount() int {
	return len(g.bands)
}

func (g *DatasetGrid) BandName(band int) string {
	return g.bands[band].Metadata("DESCRIPTION")
}

func (g *DatasetGrid) NoData(band int) (float64, bool) {
	return g.bands[band].NoData()
}

func (g *DatasetGrid) ReadRow(band, row int, buf []float64) error {
	return g.bands[band].Read(0, row, buf, len(buf), 1)
}
