package ca

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/scica/pkg/errors"
	"github.com/YuminosukeSato/scica/sparse"
)

// Weights は行・列それぞれの確率重みと総和を保持する
// Row と Col はそれぞれ総和1の非負ベクトル。
type Weights struct {
	Row []float64
	Col []float64
	N   float64
}

// ComputeWeights は非負行列から行・列の確率重みを導出する
//
// N = 全要素の総和、Row[i] = 行iの和/N、Col[j] = 列jの和/N。
// 総和がゼロ、またはいずれかの行・列の和がゼロの場合は
// DegenerateInputErrorを返す（下流でゼロ除算になるため）。
// 負の要素を含む場合はValueErrorを返す。入力は変更されない。
func ComputeWeights(x mat.Matrix) (*Weights, error) {
	return computeWeights(x, -1)
}

// computeWeights はテーブル番号付きの実体。複数テーブル時にエラーへ
// テーブル番号を載せるために使う（単一テーブルでは table=-1）。
func computeWeights(x mat.Matrix, table int) (*Weights, error) {
	const op = "ca.ComputeWeights"

	r, c := x.Dims()
	if r == 0 || c == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, op)
	}

	rowSums := make([]float64, r)
	colSums := make([]float64, c)
	negative := false

	// 疎行列は非ゼロ要素のみ走査する
	if csr, ok := x.(*sparse.CSR); ok {
		csr.NonZeros(func(i, j int, v float64) {
			if v < 0 {
				negative = true
			}
			rowSums[i] += v
			colSums[j] += v
		})
	} else {
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				v := x.At(i, j)
				if v < 0 {
					negative = true
				}
				rowSums[i] += v
				colSums[j] += v
			}
		}
	}

	if negative {
		return nil, errors.NewValueError(op, "matrix entries must be non-negative")
	}

	var n float64
	for _, s := range rowSums {
		n += s
	}
	if n == 0 {
		return nil, errors.NewDegenerateInputError(op, -1, -1, table)
	}
	for i, s := range rowSums {
		if s == 0 {
			return nil, errors.NewDegenerateInputError(op, 0, i, table)
		}
		rowSums[i] = s / n
	}
	for j, s := range colSums {
		if s == 0 {
			return nil, errors.NewDegenerateInputError(op, 1, j, table)
		}
		colSums[j] = s / n
	}

	return &Weights{Row: rowSums, Col: colSums, N: n}, nil
}
