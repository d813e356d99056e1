package raster

import (
	"fmt"
	"os"
	"strconv"

	"github.com/airbusgeo/godal"
	"github.com/geovetas/alteration-mapper-cli/internal/extent"
	"github.com/geovetas/alteration-mapper-cli/internal/feedback"
)

// GDAL implements Engine on top of the godal bindings. Warping, clipping and
// band stacking are issued as gdalwarp/gdal_translate/gdalbuildvrt
// invocations; slope, aspect and pixel algebra stream band buffers through
// godal and evaluate the kernels locally.
type GDAL struct{}

func NewGDALEngine() *GDAL {
	godal.RegisterAll()
	return &GDAL{}
}

func ff(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func (e *GDAL) open(path string) (*godal.Dataset, error) {
	ds, err := godal.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrEngineOperation, path, err)
	}
	return ds, nil
}

func (e *GDAL) Reproject(fb *feedback.Feedback, src, dst string, opts ReprojectOptions) error {
	ds, err := e.open(src)
	if err != nil {
		return err
	}
	defer ds.Close()

	switches := []string{"-of", "GTiff", "-multi", "-r", opts.Resampling.String()}
	if opts.TargetCRS != "" {
		switches = append(switches, "-t_srs", string(opts.TargetCRS))
	}
	if opts.NoData != nil {
		switches = append(switches, "-dstnodata", ff(*opts.NoData))
	}
	if opts.TargetResolution != nil {
		switches = append(switches, "-tr", ff(*opts.TargetResolution), ff(*opts.TargetResolution))
	}
	if opts.TargetExtent != nil {
		r := opts.TargetExtent
		switches = append(switches, "-te", ff(r.XMin()), ff(r.YMin()), ff(r.XMax()), ff(r.YMax()))
	}
	if opts.DataType != TypeSource {
		switches = append(switches, "-ot", opts.DataType.String())
	}

	out, err := ds.Warp(dst, switches)
	if err != nil {
		return fmt.Errorf("%w: warp %s: %v", ErrEngineOperation, src, err)
	}
	return out.Close()
}

func (e *GDAL) Clip(fb *feedback.Feedback, src, dst string, rect extent.Rect, noData float64) error {
	if rect.IsEmpty() {
		return fmt.Errorf("%w: clip %s: empty clip rectangle %s", ErrEngineOperation, src, rect)
	}

	ds, err := e.open(src)
	if err != nil {
		return err
	}
	defer ds.Close()

	// -projwin takes ulx uly lrx lry
	switches := []string{
		"-of", "GTiff",
		"-projwin", ff(rect.XMin()), ff(rect.YMax()), ff(rect.XMax()), ff(rect.YMin()),
		"-a_nodata", ff(noData),
	}
	out, err := ds.Translate(dst, switches)
	if err != nil {
		return fmt.Errorf("%w: clip %s: %v", ErrEngineOperation, src, err)
	}
	return out.Close()
}

// readBand loads one full band plus the metadata the terrain kernels need.
func (e *GDAL) readBand(path string, band int) (buf []float64, w, h int, gt [6]float64, proj string, noData *float64, err error) {
	ds, err := e.open(path)
	if err != nil {
		return nil, 0, 0, gt, "", nil, err
	}
	defer ds.Close()

	st := ds.Structure()
	if band < 1 || band > st.NBands {
		return nil, 0, 0, gt, "", nil, fmt.Errorf("%w: %s has no band %d", ErrEngineOperation, path, band)
	}
	gt, err = ds.GeoTransform()
	if err != nil {
		return nil, 0, 0, gt, "", nil, fmt.Errorf("%w: geotransform of %s: %v", ErrEngineOperation, path, err)
	}

	w, h = st.SizeX, st.SizeY
	buf = make([]float64, w*h)
	b := ds.Bands()[band-1]
	if err := b.Read(0, 0, buf, w, h); err != nil {
		return nil, 0, 0, gt, "", nil, fmt.Errorf("%w: read %s band %d: %v", ErrEngineOperation, path, band, err)
	}
	if nd, ok := b.NoData(); ok {
		noData = &nd
	}
	return buf, w, h, gt, ds.Projection(), noData, nil
}

func (e *GDAL) writeSingleBand(dst string, buf []float64, w, h int, gt [6]float64, proj string, dtype godal.DataType, noData float64) error {
	ds, err := godal.Create(godal.GTiff, dst, 1, dtype, w, h)
	if err != nil {
		return fmt.Errorf("%w: create %s: %v", ErrEngineOperation, dst, err)
	}
	if err := ds.SetGeoTransform(gt); err != nil {
		ds.Close()
		return fmt.Errorf("%w: set geotransform on %s: %v", ErrEngineOperation, dst, err)
	}
	if proj != "" {
		if err := ds.SetProjection(proj); err != nil {
			ds.Close()
			return fmt.Errorf("%w: set projection on %s: %v", ErrEngineOperation, dst, err)
		}
	}
	band := ds.Bands()[0]
	if err := band.SetNoData(noData); err != nil {
		ds.Close()
		return fmt.Errorf("%w: set nodata on %s: %v", ErrEngineOperation, dst, err)
	}
	if err := band.Write(0, 0, buf, w, h); err != nil {
		ds.Close()
		return fmt.Errorf("%w: write %s: %v", ErrEngineOperation, dst, err)
	}
	return ds.Close()
}

func (e *GDAL) Slope(fb *feedback.Feedback, dtm, dst string, band int, computeEdges bool) error {
	elev, w, h, gt, proj, noData, err := e.readBand(dtm, band)
	if err != nil {
		return err
	}
	xRes, yRes := gt[1], gt[5]
	if yRes < 0 {
		yRes = -yRes
	}
	out := slopeDegrees(elev, w, h, xRes, yRes, noData, computeEdges)
	return e.writeSingleBand(dst, out, w, h, gt, proj, godal.Float32, terrainNoData)
}

func (e *GDAL) Aspect(fb *feedback.Feedback, dtm, dst string, band int, computeEdges bool) error {
	elev, w, h, gt, proj, noData, err := e.readBand(dtm, band)
	if err != nil {
		return err
	}
	out := aspectDegrees(elev, w, h, noData, computeEdges)
	return e.writeSingleBand(dst, out, w, h, gt, proj, godal.Float32, terrainNoData)
}

func (t DataType) godalType() godal.DataType {
	switch t {
	case TypeByte:
		return godal.Byte
	case TypeInt16:
		return godal.Int16
	case TypeUInt16:
		return godal.UInt16
	case TypeFloat32:
		return godal.Float32
	default:
		return godal.Float64
	}
}

func (e *GDAL) Calc(fb *feedback.Feedback, a, b CalcInput, dst string, expr Expr, noData float64, dtype DataType) error {
	dsA, err := e.open(a.Path)
	if err != nil {
		return err
	}
	defer dsA.Close()
	dsB, err := e.open(b.Path)
	if err != nil {
		return err
	}
	defer dsB.Close()

	stA, stB := dsA.Structure(), dsB.Structure()
	if stA.SizeX != stB.SizeX || stA.SizeY != stB.SizeY {
		return fmt.Errorf("%w: calc inputs differ in size: %s is %dx%d, %s is %dx%d",
			ErrEngineOperation, a.Path, stA.SizeX, stA.SizeY, b.Path, stB.SizeX, stB.SizeY)
	}
	if a.Band < 1 || a.Band > stA.NBands || b.Band < 1 || b.Band > stB.NBands {
		return fmt.Errorf("%w: calc band out of range (%s band %d, %s band %d)",
			ErrEngineOperation, a.Path, a.Band, b.Path, b.Band)
	}

	gt, err := dsA.GeoTransform()
	if err != nil {
		return fmt.Errorf("%w: geotransform of %s: %v", ErrEngineOperation, a.Path, err)
	}

	w, h := stA.SizeX, stA.SizeY
	out, err := godal.Create(godal.GTiff, dst, 1, dtype.godalType(), w, h)
	if err != nil {
		return fmt.Errorf("%w: create %s: %v", ErrEngineOperation, dst, err)
	}
	if err := out.SetGeoTransform(gt); err != nil {
		out.Close()
		return fmt.Errorf("%w: set geotransform on %s: %v", ErrEngineOperation, dst, err)
	}
	if proj := dsA.Projection(); proj != "" {
		if err := out.SetProjection(proj); err != nil {
			out.Close()
			return fmt.Errorf("%w: set projection on %s: %v", ErrEngineOperation, dst, err)
		}
	}
	outBand := out.Bands()[0]
	if err := outBand.SetNoData(noData); err != nil {
		out.Close()
		return fmt.Errorf("%w: set nodata on %s: %v", ErrEngineOperation, dst, err)
	}

	bandA := dsA.Bands()[a.Band-1]
	bandB := dsB.Bands()[b.Band-1]
	bufA := make([]float64, w)
	bufB := make([]float64, w)
	res := make([]float64, w)
	for row := 0; row < h; row++ {
		if err := bandA.Read(0, row, bufA, w, 1); err != nil {
			out.Close()
			return fmt.Errorf("%w: read %s row %d: %v", ErrEngineOperation, a.Path, row, err)
		}
		if err := bandB.Read(0, row, bufB, w, 1); err != nil {
			out.Close()
			return fmt.Errorf("%w: read %s row %d: %v", ErrEngineOperation, b.Path, row, err)
		}
		for i := 0; i < w; i++ {
			res[i] = expr(bufA[i], bufB[i])
		}
		if err := outBand.Write(0, row, res, w, 1); err != nil {
			out.Close()
			return fmt.Errorf("%w: write %s row %d: %v", ErrEngineOperation, dst, row, err)
		}
	}
	return out.Close()
}

func (e *GDAL) Stack(fb *feedback.Feedback, inputs []string, dst string, noDataIn, noDataOut float64, names []string) error {
	vrtPath := dst + ".vrt"
	vrt, err := godal.BuildVRT(vrtPath, inputs, []string{
		"-separate",
		"-srcnodata", ff(noDataIn),
		"-vrtnodata", ff(noDataOut),
	})
	if err != nil {
		return fmt.Errorf("%w: build vrt for %s: %v", ErrEngineOperation, dst, err)
	}
	defer os.Remove(vrtPath)

	out, err := vrt.Translate(dst, []string{"-of", "GTiff"})
	vrt.Close()
	if err != nil {
		return fmt.Errorf("%w: stack %s: %v", ErrEngineOperation, dst, err)
	}

	for i, band := range out.Bands() {
		if err := band.SetNoData(noDataOut); err != nil {
			out.Close()
			return fmt.Errorf("%w: set nodata on %s band %d: %v", ErrEngineOperation, dst, i+1, err)
		}
		if i < len(names) && names[i] != "" {
			if err := band.SetMetadata("DESCRIPTION", names[i]); err != nil {
				out.Close()
				return fmt.Errorf("%w: name band %d of %s: %v", ErrEngineOperation, i+1, dst, err)
			}
		}
	}
	return out.Close()
}

func (e *GDAL) Info(path string) (Info, error) {
	ds, err := e.open(path)
	if err != nil {
		return Info{}, err
	}
	defer ds.Close()

	st := ds.Structure()
	gt, err := ds.GeoTransform()
	if err != nil {
		return Info{}, fmt.Errorf("%w: geotransform of %s: %v", ErrEngineOperation, path, err)
	}

	crs := extent.CRS(ds.Projection())
	xMin := gt[0]
	yMax := gt[3]
	xMax := xMin + gt[1]*float64(st.SizeX)
	yMin := yMax + gt[5]*float64(st.SizeY)

	yRes := gt[5]
	if yRes < 0 {
		yRes = -yRes
	}
	return Info{
		CRS:        crs,
		Extent:     extent.NewRect(xMin, yMin, xMax, yMax, crs),
		PixelSizeX: gt[1],
		PixelSizeY: yRes,
		Bands:      st.NBands,
	}, nil
}

type gdalTransformer struct {
	tr *godal.Transform
}

func (t gdalTransformer) Transform(x, y float64) (float64, float64, error) {
	xs := []float64{x}
	ys := []float64{y}
	if err := t.tr.TransformEx(xs, ys, nil, nil); err != nil {
		return 0, 0, fmt.Errorf("transform error: %w", err)
	}
	return xs[0], ys[0], nil
}

func (e *GDAL) NewTransformer(src, dst extent.CRS) (extent.Transformer, error) {
	srcSR, err := godal.NewSpatialRefFromWKT(string(src))
	if err != nil {
		return nil, fmt.Errorf("%w: source %q: %v", ErrInvalidCRS, src, err)
	}
	defer srcSR.Close()
	dstSR, err := godal.NewSpatialRefFromWKT(string(dst))
	if err != nil {
		return nil, fmt.Errorf("%w: target %q: %v", ErrInvalidCRS, dst, err)
	}
	defer dstSR.Close()

	tr, err := godal.NewTransform(srcSR, dstSR)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCRS, err)
	}
	return gdalTransformer{tr: tr}, nil
}
