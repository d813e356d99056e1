package extent

import (
	"errors"
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// ErrEmptyIntersection is returned when the input layers share no common area.
var ErrEmptyIntersection = errors.New("layers have no common extent")

// CRS identifies a coordinate reference system. It is opaque to this package:
// two rectangles need a reprojection step exactly when their identifiers
// differ. In production the identifier is the WKT taken from the dataset.
type CRS string

// Transformer converts a single coordinate pair between two reference systems.
type Transformer interface {
	Transform(x, y float64) (float64, float64, error)
}

// TransformerFactory resolves a Transformer from src to dst, or fails when
// either system cannot be resolved.
type TransformerFactory func(src, dst CRS) (Transformer, error)

// Rect is an axis-aligned rectangle tagged with the CRS its coordinates are
// expressed in.
type Rect struct {
	Bound orb.Bound
	CRS   CRS
}

func NewRect(xMin, yMin, xMax, yMax float64, crs CRS) Rect {
	return Rect{
		Bound: orb.Bound{Min: orb.Point{xMin, yMin}, Max: orb.Point{xMax, yMax}},
		CRS:   crs,
	}
}

// IsEmpty reports whether the rectangle carries no positive area. Empty
// rectangles must never be used as clip regions.
func (r Rect) IsEmpty() bool {
	return r.Bound.Min[0] >= r.Bound.Max[0] || r.Bound.Min[1] >= r.Bound.Max[1]
}

func (r Rect) XMin() float64 { return r.Bound.Min[0] }
func (r Rect) YMin() float64 { return r.Bound.Min[1] }
func (r Rect) XMax() float64 { return r.Bound.Max[0] }
func (r Rect) YMax() float64 { return r.Bound.Max[1] }

func (r Rect) String() string {
	return fmt.Sprintf("(%g,%g)-(%g,%g) [%s]", r.XMin(), r.YMin(), r.XMax(), r.YMax(), r.CRS)
}

// Reconcile produces the single working rectangle for a run, expressed in the
// target CRS. A non-empty user rectangle wins outright: it is reprojected to
// the target CRS and returned without intersecting it with the band extents.
// Otherwise the band extents, which are already in the target CRS, are
// intersected pairwise; no positive-area overlap is ErrEmptyIntersection.
func Reconcile(userRect *Rect, bandExtents []Rect, target CRS, newTransformer TransformerFactory) (Rect, error) {
	if userRect != nil && !userRect.IsEmpty() {
		return reprojectRect(*userRect, target, newTransformer)
	}

	if len(bandExtents) == 0 {
		return Rect{}, errors.New("no band extents given")
	}

	common := bandExtents[0]
	if common.IsEmpty() {
		return Rect{}, ErrEmptyIntersection
	}
	for _, e := range bandExtents[1:] {
		common = intersect(common, e)
		if common.IsEmpty() {
			return Rect{}, ErrEmptyIntersection
		}
	}
	common.CRS = target
	return common, nil
}

// reprojectRect transforms the four corners individually and takes their
// axis-aligned bounding box. Edges do not stay straight under reprojection;
// the four-corner box is the accepted approximation and is kept as-is.
// Identical source and target identifiers skip the transform entirely so no
// floating-point drift is introduced.
func reprojectRect(r Rect, target CRS, newTransformer TransformerFactory) (Rect, error) {
	if r.CRS == target {
		return r, nil
	}

	tr, err := newTransformer(r.CRS, target)
	if err != nil {
		return Rect{}, fmt.Errorf("resolving transform to target CRS: %w", err)
	}

	corners := [4][2]float64{
		{r.XMin(), r.YMin()},
		{r.XMin(), r.YMax()},
		{r.XMax(), r.YMin()},
		{r.XMax(), r.YMax()},
	}

	xMin, yMin := math.Inf(1), math.Inf(1)
	xMax, yMax := math.Inf(-1), math.Inf(-1)
	for _, c := range corners {
		x, y, err := tr.Transform(c[0], c[1])
		if err != nil {
			return Rect{}, fmt.Errorf("reprojecting extent corner (%g,%g): %w", c[0], c[1], err)
		}
		xMin = math.Min(xMin, x)
		yMin = math.Min(yMin, y)
		xMax = math.Max(xMax, x)
		yMax = math.Max(yMax, y)
	}
	return NewRect(xMin, yMin, xMax, yMax, target), nil
}

func intersect(a, b Rect) Rect {
	return Rect{
		Bound: orb.Bound{
			Min: orb.Point{math.Max(a.XMin(), b.XMin()), math.Max(a.YMin(), b.YMin())},
			Max: orb.Point{math.Min(a.XMax(), b.XMax()), math.Min(a.YMax(), b.YMax())},
		},
		CRS: a.CRS,
	}
}
