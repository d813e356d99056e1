package raster

import (
	"errors"

	"github.com/geovetas/alteration-mapper-cli/internal/extent"
	"github.com/geovetas/alteration-mapper-cli/internal/feedback"
)

var (
	// ErrMissingInput means a required raster layer was not supplied.
	ErrMissingInput = errors.New("required raster input missing")
	// ErrInvalidCRS means a coordinate reference system could not be resolved.
	ErrInvalidCRS = errors.New("coordinate reference system not resolvable")
	// ErrEngineOperation wraps failures inside the underlying raster engine.
	// They are not recoverable and abort the run at the failing step.
	ErrEngineOperation = errors.New("raster engine operation failed")
)

// Resampling selects the warp kernel. Nearest keeps DTM and illumination
// grids exactly aligned; bilinear is used for the final multiband products.
type Resampling int

const (
	ResampleNearest Resampling = iota
	ResampleBilinear
)

func (r Resampling) String() string {
	if r == ResampleBilinear {
		return "bilinear"
	}
	return "near"
}

// DataType enumerates the output pixel types the pipelines emit.
type DataType int

const (
	TypeSource DataType = iota // keep the source datatype
	TypeByte
	TypeInt16
	TypeUInt16
	TypeFloat32
	TypeFloat64
)

func (t DataType) String() string {
	switch t {
	case TypeByte:
		return "Byte"
	case TypeInt16:
		return "Int16"
	case TypeUInt16:
		return "UInt16"
	case TypeFloat32:
		return "Float32"
	case TypeFloat64:
		return "Float64"
	default:
		return ""
	}
}

// ReprojectOptions mirrors the warp parameters the pipelines need. Zero
// values mean "leave it to the source dataset".
type ReprojectOptions struct {
	TargetCRS        extent.CRS
	Resampling       Resampling
	NoData           *float64
	TargetResolution *float64
	TargetExtent     *extent.Rect
	DataType         DataType
}

// CalcInput names one side of a two-input pixel algebra operation.
type CalcInput struct {
	Path string
	Band int // 1-based, as GDAL counts bands
}

// Expr is a pixel expression over the two calc inputs. Boolean-gated ratios
// are expressed as ordinary branches returning zero where the gate fails.
type Expr func(a, b float64) float64

// Info describes a raster on disk: everything the orchestration needs to
// reconcile extents and align grids.
type Info struct {
	CRS        extent.CRS
	Extent     extent.Rect
	PixelSizeX float64
	PixelSizeY float64
	Bands      int
}

// Engine is the typed surface over the external raster toolkit: one function
// per operation instead of string-keyed parameter maps. All calls block until
// the operation finishes, and any failure is fatal to the run.
type Engine interface {
	Reproject(fb *feedback.Feedback, src, dst string, opts ReprojectOptions) error
	// Clip cuts src to rect and fills the outside area with noData.
	Clip(fb *feedback.Feedback, src, dst string, rect extent.Rect, noData float64) error
	// Slope writes a slope-in-degrees grid derived from the DTM band.
	Slope(fb *feedback.Feedback, dtm, dst string, band int, computeEdges bool) error
	// Aspect writes an aspect-in-degrees grid (azimuth, 0 = north).
	Aspect(fb *feedback.Feedback, dtm, dst string, band int, computeEdges bool) error
	// Calc evaluates expr cell by cell over the two inputs.
	Calc(fb *feedback.Feedback, a, b CalcInput, dst string, expr Expr, noData float64, dtype DataType) error
	// Stack merges single-band inputs into one multiband raster, bands in
	// input order, naming them when names are given.
	Stack(fb *feedback.Feedback, inputs []string, dst string, noDataIn, noDataOut float64, names []string) error
	Info(path string) (Info, error)
	NewTransformer(src, dst extent.CRS) (extent.Transformer, error)
}
