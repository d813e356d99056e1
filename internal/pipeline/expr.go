package pipeline

import (
	"math"

	"github.com/geovetas/alteration-mapper-cli/internal/raster"
)

// Constants carried over from the original band formulas. pi is deliberately
// the truncated literal the formulas were calibrated with, not math.Pi.
const (
	pi  = 3.14159265
	eps = 0.0001
)

// illuminationExpr builds the per-pixel illumination factor from slope (input
// A) and aspect (input B), both in degrees:
//
//	cos(el)*cos(slope) + sin(el)*sin(slope)*cos(az - aspect)
func illuminationExpr(sunAzDeg, sunElDeg float64) raster.Expr {
	elRad := sunElDeg * pi / 180
	return func(slopeDeg, aspectDeg float64) float64 {
		s := slopeDeg * pi / 180
		return math.Cos(elRad)*math.Cos(s) +
			math.Sin(elRad)*math.Sin(s)*math.Cos((sunAzDeg-aspectDeg)*pi/180)
	}
}

// illumCorrectionExpr divides a band (A) by the illumination factor (B).
// The gate skips full shadow (B <= 0.1) and the huge fill value the warp
// leaves outside the grid (B >= 1e30).
func illumCorrectionExpr() raster.Expr {
	return func(band, illum float64) float64 {
		if illum > 0.1 && illum < 1e30 {
			return band / (illum + eps)
		}
		return 0
	}
}

func ndviExpr() raster.Expr {
	return func(nir, red float64) float64 {
		if nir+red > eps {
			return (nir - red) / (nir + red + eps)
		}
		return 0
	}
}

// ratioExpr is the shared shape of every alteration index: A/B gated on a
// usable denominator.
func ratioExpr() raster.Expr {
	return func(a, b float64) float64 {
		if b > eps {
			return a / (b + eps)
		}
		return 0
	}
}

// vegetationMaskExpr keeps the index (A) only where NDVI (B) is below the
// vegetation threshold.
func vegetationMaskExpr(threshold float64) raster.Expr {
	return func(index, ndvi float64) float64 {
		if ndvi < threshold {
			return index
		}
		return 0
	}
}
