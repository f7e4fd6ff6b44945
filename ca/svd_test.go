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

func TestValidateRank(t *testing.T) {
	tests := []struct {
		name    string
		method  Method
		k       int
		r, c    int
		wantErr bool
	}{
		{name: "exact full rank ok", method: MethodExact, k: 3, r: 3, c: 5, wantErr: false},
		{name: "exact beyond full rank", method: MethodExact, k: 4, r: 3, c: 5, wantErr: true},
		{name: "iterative needs spare dimension", method: MethodIterative, k: 3, r: 3, c: 5, wantErr: true},
		{name: "iterative below full rank ok", method: MethodIterative, k: 2, r: 3, c: 5, wantErr: false},
		{name: "zero rank", method: MethodExact, k: 0, r: 3, c: 5, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateRank("test", tt.method, tt.k, tt.r, tt.c)
			if (err != nil) != tt.wantErr {
				t.Fatalf("validateRank() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var rankErr *errors.RankTooLargeError
				if !errors.As(err, &rankErr) {
					t.Errorf("error should be a RankTooLargeError, got %T", err)
				}
			}
		})
	}
}

func TestDecomposeExactDominantTriplet(t *testing.T) {
	// 既知の特異値を持つ対角的な行列
	a := mat.NewDense(4, 3, []float64{
		3, 0, 0,
		0, 2, 0,
		0, 0, 1,
		0, 0, 0,
	})

	f, err := decomposeExact(a, 1)
	require.NoError(t, err)

	require.Len(t, f.D, 1)
	assert.InDelta(t, 3.0, f.D[0], 1e-12)
	assert.InDelta(t, 14.0, f.Eigsum, 1e-12, "eigsum = 9+4+1")

	// k=1では支配的な特異三つ組そのもの。符号は不定なので絶対値で比較する。
	assert.InDelta(t, 1.0, math.Abs(f.U.At(0, 0)), 1e-12)
	assert.InDelta(t, 1.0, math.Abs(f.V.At(0, 0)), 1e-12)
}

func TestDecomposeExactDescendingOrder(t *testing.T) {
	a := mat.NewDense(5, 4, []float64{
		1, 2, 0, 1,
		0, 3, 1, 1,
		2, 0, 2, 0,
		1, 1, 1, 1,
		0, 2, 0, 3,
	})

	f, err := decomposeExact(a, 4)
	require.NoError(t, err)
	for i := 1; i < len(f.D); i++ {
		assert.LessOrEqual(t, f.D[i], f.D[i-1], "singular values must be non-increasing")
		assert.GreaterOrEqual(t, f.D[i], 0.0)
	}
}

func TestDecomposeIterativeMatchesExact(t *testing.T) {
	a := mat.NewDense(8, 6, []float64{
		4, 1, 0, 2, 0, 1,
		1, 3, 1, 0, 2, 0,
		0, 1, 5, 1, 0, 2,
		2, 0, 1, 4, 1, 0,
		0, 2, 0, 1, 3, 1,
		1, 0, 2, 0, 1, 5,
		3, 1, 0, 1, 0, 2,
		0, 2, 1, 0, 3, 1,
	})

	exact, err := decomposeExact(a, 3)
	require.NoError(t, err)

	approx, err := decomposeIterative(a, 3, 42)
	require.NoError(t, err)

	// 特異値の一致（部分空間が十分な過剰サンプリングで正確になる）
	for i := range approx.D {
		assert.InDelta(t, exact.D[i], approx.D[i], 1e-8,
			"singular value %d mismatch", i)
	}

	// 特異ベクトルは符号が不定なので絶対値で照合する
	for j := 0; j < 3; j++ {
		for i := 0; i < 8; i++ {
			assert.InDelta(t, math.Abs(exact.U.At(i, j)), math.Abs(approx.U.At(i, j)), 1e-6)
		}
	}
}

func TestDecomposeIterativeDeterministicSeed(t *testing.T) {
	a := mat.NewDense(6, 5, []float64{
		1, 0, 2, 1, 0,
		0, 3, 0, 1, 2,
		2, 0, 1, 0, 1,
		1, 1, 0, 2, 0,
		0, 2, 1, 0, 3,
		2, 0, 0, 1, 1,
	})

	f1, err := decomposeIterative(a, 2, 7)
	require.NoError(t, err)
	f2, err := decomposeIterative(a, 2, 7)
	require.NoError(t, err)

	for i := range f1.D {
		assert.Equal(t, f1.D[i], f2.D[i], "same seed must reproduce values")
	}
}

func TestDecomposeSparseOperator(t *testing.T) {
	d := mat.NewDense(6, 4, []float64{
		2, 0, 1, 0,
		0, 3, 0, 1,
		1, 0, 4, 0,
		0, 5, 0, 2,
		1, 0, 0, 3,
		0, 1, 2, 0,
	})
	s := sparse.NewCSRFromDense(d)

	exact, err := decomposeExact(d, 2)
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.NComp = 2
	approx, err := decompose(s, 2, &cfg)
	require.NoError(t, err)

	for i := range approx.D {
		assert.InDelta(t, exact.D[i], approx.D[i], 1e-8,
			"sparse operator path must agree with dense decomposition")
	}
}

func TestDecomposeRankValidation(t *testing.T) {
	a := mat.NewDense(3, 3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1})

	cfg := DefaultConfig()
	cfg.Method = MethodIterative
	_, err := decompose(a, 3, &cfg)
	require.Error(t, err, "iterative at full rank must fail")

	cfg.Method = MethodExact
	_, err = decompose(a, 3, &cfg)
	require.NoError(t, err, "exact at full rank must succeed")

	_, err = decompose(a, 4, &cfg)
	require.Error(t, err, "beyond full rank must fail for any method")
}
