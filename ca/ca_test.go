package ca

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/scica/pkg/errors"
	"github.com/YuminosukeSato/scica/sparse"
)

func countMatrix() *mat.Dense {
	return mat.NewDense(5, 4, []float64{
		10, 2, 1, 3,
		2, 8, 2, 1,
		1, 3, 9, 2,
		3, 1, 2, 7,
		2, 2, 3, 4,
	})
}

func TestCAFitExact(t *testing.T) {
	est := NewCA(
		WithMethod(MethodExact),
		WithNComp(3),
	)
	require.NoError(t, est.Fit(countMatrix()))

	res, err := est.Result()
	require.NoError(t, err)

	require.Len(t, res.D, 3)
	ur, uc := res.U.Dims()
	assert.Equal(t, 5, ur)
	assert.Equal(t, 3, uc)
	vr, vc := res.V.Dims()
	assert.Equal(t, 4, vr)
	assert.Equal(t, 3, vc)

	// 特異値は降順・非負
	for i := 1; i < len(res.D); i++ {
		assert.LessOrEqual(t, res.D[i], res.D[i-1])
		assert.GreaterOrEqual(t, res.D[i], 0.0)
	}

	// 寄与率は非負で合計100以下
	var total float64
	for i, p := range res.PctVar {
		assert.GreaterOrEqual(t, p, 0.0)
		total += p
		assert.InDelta(t, total, res.CumPctVar[i], 1e-9)
	}
	assert.LessOrEqual(t, total, 100.0+1e-9)
}

func TestCAFullRankVarianceSumsTo100(t *testing.T) {
	// フルランクのexact分解では寄与率の合計はちょうど100になる
	res, err := Fit(countMatrix(),
		WithMethod(MethodExact),
		WithNComp(4),
	)
	require.NoError(t, err)

	var total float64
	for _, p := range res.PctVar {
		total += p
	}
	assert.InDelta(t, 100.0, total, 1e-9)
	assert.InDelta(t, 100.0, res.CumPctVar[len(res.CumPctVar)-1], 1e-9)
}

func TestCAUniformTableZeroVariance(t *testing.T) {
	// 完全独立なテーブルでは残差が恒等的にゼロになり、特異値も
	// Eigsumも0になる。寄与率は0と定義され、NaNにはならない。
	uniform := mat.NewDense(3, 3, []float64{
		1, 1, 1,
		1, 1, 1,
		1, 1, 1,
	})
	res, err := Fit(uniform,
		WithMethod(MethodExact),
		WithNComp(2),
	)
	require.NoError(t, err)

	assert.Zero(t, res.Eigsum)
	for i := range res.D {
		assert.Zero(t, res.D[i])
		assert.False(t, math.IsNaN(res.PctVar[i]))
		assert.Zero(t, res.PctVar[i])
		assert.Zero(t, res.CumPctVar[i])
	}
}

func TestCAResultBeforeFit(t *testing.T) {
	est := NewCA()
	_, err := est.Result()
	require.Error(t, err)

	var notFitted *errors.NotFittedError
	assert.True(t, errors.As(err, &notFitted))
}

func TestCAFitTransformShape(t *testing.T) {
	est := NewCA(WithMethod(MethodExact), WithNComp(2))
	coords, err := est.FitTransform(countMatrix())
	require.NoError(t, err)

	r, c := coords.Dims()
	assert.Equal(t, 5, r)
	assert.Equal(t, 2, c)

	// 主座標はU·diag(D)
	res, err := est.Result()
	require.NoError(t, err)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			assert.InDelta(t, res.U.At(i, j)*res.D[j], coords.At(i, j), 1e-12)
		}
	}
}

func TestCAInvalidConfigFailsFast(t *testing.T) {
	est := NewCA(WithResidualType("bogus"))
	err := est.Fit(countMatrix())
	require.Error(t, err)

	var cfgErr *errors.ConfigurationError
	assert.True(t, errors.As(err, &cfgErr))
	assert.False(t, est.IsFitted())
}

func TestCARankTooLarge(t *testing.T) {
	_, err := Fit(countMatrix(),
		WithMethod(MethodExact),
		WithNComp(10),
	)
	require.Error(t, err)

	var rankErr *errors.RankTooLargeError
	assert.True(t, errors.As(err, &rankErr))
}

func TestCADegenerateInput(t *testing.T) {
	x := mat.NewDense(4, 4, []float64{
		1, 2, 3, 4,
		0, 0, 0, 0,
		5, 6, 7, 8,
		9, 1, 2, 3,
	})
	_, err := Fit(x, WithMethod(MethodExact), WithNComp(2))
	require.Error(t, err)

	var degenErr *errors.DegenerateInputError
	assert.True(t, errors.As(err, &degenErr))
}

func TestCASparseMatchesDense(t *testing.T) {
	d := countMatrix()
	s := sparse.NewCSRFromDense(d)

	exact, err := Fit(d, WithMethod(MethodExact), WithNComp(2))
	require.NoError(t, err)
	approx, err := Fit(s, WithNComp(2), WithRandomState(1))
	require.NoError(t, err)

	for i := range approx.D {
		assert.InDelta(t, exact.D[i], approx.D[i], 1e-8,
			"sparse iterative pipeline must agree with dense exact pipeline")
	}
}

func TestCADoesNotMutateInput(t *testing.T) {
	x := countMatrix()
	orig := mat.DenseCopyOf(x)

	_, err := Fit(x, WithMethod(MethodExact), WithNComp(2),
		WithVST(VSTSqrt), WithPowerAlpha(0.9), WithSmooth(true))
	require.NoError(t, err)

	assert.True(t, mat.Equal(orig, x), "input matrix must not be mutated")
}

func TestCAPowerDeflationChangesEmbedding(t *testing.T) {
	plain, err := Fit(countMatrix(), WithMethod(MethodExact), WithNComp(2))
	require.NoError(t, err)
	deflated, err := Fit(countMatrix(), WithMethod(MethodExact), WithNComp(2),
		WithPowerAlpha(0.5))
	require.NoError(t, err)

	diff := 0.0
	for i := range plain.D {
		diff += math.Abs(plain.D[i] - deflated.D[i])
	}
	assert.Greater(t, diff, 1e-8, "alpha<1 must change the decomposition")
}
