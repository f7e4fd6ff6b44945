package ca

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/scica/pkg/errors"
)

// Factorization はランクk打ち切り特異値分解の結果
type Factorization struct {
	// U は左特異ベクトル（m×k）。符号は一意に定まらない。
	U *mat.Dense

	// D は特異値（長さk、降順・非負）
	D []float64

	// V は右特異ベクトル（n×k）。符号は一意に定まらない。
	V *mat.Dense

	// Eigsum は使用したアルゴリズムが返した全特異値の二乗和。
	// 反復法では計算されたk個の二乗和であり、k < フルランクのとき
	// 行列全体の分散とは一致しないことに注意。
	Eigsum float64
}

// Result は単一テーブルの対応分析の結果
// 呼び出しごとに新しく作られ、返された後は変更されない。
type Result struct {
	Factorization

	// PctVar は各成分の寄与率（D[i]²/Eigsum×100）
	PctVar []float64

	// CumPctVar は寄与率の累積和
	CumPctVar []float64

	// ResidualType は実際に適用された残差変換
	ResidualType ResidualType

	// Method は使用された分解アルゴリズム
	Method Method
}

// MultiResult は複数テーブルの対応分析の結果
type MultiResult struct {
	Result

	// BatchSizes は連結前の各テーブルの非共有軸の長さ（入力順）。
	// 合計は連結後の行列の非共有軸の長さに等しい。
	BatchSizes []int

	// RTypeOverridden は結合重みモードで残差変換が強制的に
	// standardizedへ置き換えられたかどうか
	RTypeOverridden bool
}

// RowCoordinates は共有軸（行）の主座標 U·diag(D) を返す
func (r *Result) RowCoordinates() *mat.Dense {
	return scaleCols(r.U, r.D)
}

// ColCoordinates は非共有軸（列）の主座標 V·diag(D) を返す
func (r *Result) ColCoordinates() *mat.Dense {
	return scaleCols(r.V, r.D)
}

// TableLoadings はテーブルtに対応するVの行ブロックを返す
// BatchSizesの記録により、連結された埋め込みのどの行がどの入力
// テーブルに属するかを復元できる。
func (m *MultiResult) TableLoadings(t int) (*mat.Dense, error) {
	if t < 0 || t >= len(m.BatchSizes) {
		return nil, errors.NewValueError("MultiResult.TableLoadings", "table index out of range")
	}
	offset := 0
	for i := 0; i < t; i++ {
		offset += m.BatchSizes[i]
	}
	size := m.BatchSizes[t]
	_, k := m.V.Dims()
	out := mat.NewDense(size, k, nil)
	out.Copy(m.V.Slice(offset, offset+size, 0, k))
	return out, nil
}

// assembleResult は分解結果に寄与率を付与して結果を組み立てる
// 純粋で決定的。特異値の降順と有限性をここで検査する。
func assembleResult(f *Factorization, rtype ResidualType, method Method) (*Result, error) {
	const op = "ca.assembleResult"

	if err := errors.CheckValues(op, f.D); err != nil {
		return nil, err
	}
	if err := errors.CheckScalar(op, f.Eigsum); err != nil {
		return nil, err
	}
	for i, d := range f.D {
		if d < 0 {
			return nil, errors.NewValueError(op, "singular values must be non-negative")
		}
		if i > 0 && d > f.D[i-1] {
			return nil, errors.NewValueError(op, "singular values must be non-increasing")
		}
	}

	k := len(f.D)
	pct := make([]float64, k)
	cum := make([]float64, k)
	// 残差が恒等的にゼロの場合（完全独立なテーブル）、Eigsumは0になる。
	// その場合の寄与率は0と定義し、0/0によるNaNを避ける。
	if f.Eigsum > 0 {
		running := 0.0
		for i, d := range f.D {
			pct[i] = d * d / f.Eigsum * 100
			running += pct[i]
			cum[i] = running
		}
	}

	return &Result{
		Factorization: *f,
		PctVar:        pct,
		CumPctVar:     cum,
		ResidualType:  rtype,
		Method:        method,
	}, nil
}

// scaleCols は行列の第i列をd[i]倍した複製を返す
func scaleCols(m *mat.Dense, d []float64) *mat.Dense {
	r, c := m.Dims()
	out := mat.NewDense(r, c, nil)
	for j := 0; j < c; j++ {
		for i := 0; i < r; i++ {
			out.Set(i, j, m.At(i, j)*d[j])
		}
	}
	return out
}
