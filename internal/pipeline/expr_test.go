package pipeline

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIlluminationFlatTerrainDependsOnlyOnElevation(t *testing.T) {
	expr := illuminationExpr(135, 42)
	want := math.Cos(42 * pi / 180)
	for _, aspect := range []float64{0, 90, 180, 270} {
		require.InDelta(t, want, expr(0, aspect), 1e-12,
			"flat terrain must ignore aspect")
	}
}

func TestIlluminationPeaksWhenSlopeFacesTheSun(t *testing.T) {
	az, el := 135.0, 42.0
	expr := illuminationExpr(az, el)

	slope := 20.0
	facing := expr(slope, az)
	require.InDelta(t, math.Cos((el-slope)*pi/180), facing, 1e-12)

	require.Greater(t, facing, expr(slope, az+90))
	require.Greater(t, facing, expr(slope, az+180))
}

func TestIllumCorrectionGates(t *testing.T) {
	expr := illumCorrectionExpr()

	require.Equal(t, 0.0, expr(100, 0.05), "full shadow must be zeroed")
	require.Equal(t, 0.0, expr(100, 1e31), "warp fill values must be zeroed")
	require.InDelta(t, 100/(0.5+eps), expr(100, 0.5), 1e-12)
}

func TestNDVIGatedOnDenominator(t *testing.T) {
	expr := ndviExpr()

	require.Equal(t, 0.0, expr(0, 0))
	require.Equal(t, 0.0, expr(0.00004, 0.00004))
	require.InDelta(t, 2/(4+eps), expr(3, 1), 1e-12)
}

func TestRatioGatedOnDenominator(t *testing.T) {
	expr := ratioExpr()

	require.Equal(t, 0.0, expr(5, 0))
	require.Equal(t, 0.0, expr(5, -1))
	require.InDelta(t, 4/(2+eps), expr(4, 2), 1e-12)
}

func TestVegetationMask(t *testing.T) {
	expr := vegetationMaskExpr(vegetationNDVIThreshold)

	require.Equal(t, 0.0, expr(1.8, 0.5), "vegetated pixels are dropped")
	require.Equal(t, 1.8, expr(1.8, 0.1), "bare pixels keep the index")
}
