package ca

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/scica/pkg/errors"
)

// oversampling は反復法で追加する部分空間の次元数
const oversampling = 10

// powerIterations は反復法のべき乗反復の回数
const powerIterations = 2

// matVecer は密化せずに行列ベクトル積を提供できる行列
type matVecer interface {
	MulVecTo(dst []float64, trans bool, x []float64)
}

// validateRank は分解を始める前に要求ランクの妥当性を検証する
//
// exactは k ≤ min(m,n) まで（フルランク可）、iterativeは部分空間に
// 余剰次元が必要なため k ≤ min(m,n)−1 まで。超過した場合は
// RankTooLargeErrorを返し、黙って切り詰めることはしない。
func validateRank(op string, method Method, k, r, c int) error {
	minDim := r
	if c < minDim {
		minDim = c
	}
	feasible := minDim
	if method == MethodIterative {
		feasible = minDim - 1
	}
	if k < 1 || k > feasible {
		return errors.NewRankTooLargeError(op, k, feasible, r, c)
	}
	return nil
}

// decompose は前処理済み行列のランクk打ち切り特異値分解を計算する
func decompose(a mat.Matrix, k int, cfg *Config) (*Factorization, error) {
	const op = "ca.decompose"
	r, c := a.Dims()
	if err := validateRank(op, cfg.Method, k, r, c); err != nil {
		return nil, err
	}
	if cfg.Method == MethodExact {
		return decomposeExact(a, k)
	}
	return decomposeIterative(a, k, cfg.RandomState)
}

// decomposeExact は完全な特異値分解を計算してから上位k成分に打ち切る
//
// Eigsumはアルゴリズムが返した全ての特異値の二乗和。フルランクで
// 打ち切った場合、寄与率の合計はちょうど100になる。
func decomposeExact(a mat.Matrix, k int) (*Factorization, error) {
	const op = "ca.decomposeExact"

	var svd mat.SVD
	if ok := svd.Factorize(a, mat.SVDThin); !ok {
		return nil, errors.Wrap(errors.ErrSVDFailed, op)
	}
	values := svd.Values(nil)

	var eigsum float64
	for _, d := range values {
		eigsum += d * d
	}

	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	r, c := a.Dims()
	f := &Factorization{
		U:      truncateCols(&u, r, k),
		D:      append([]float64(nil), values[:k]...),
		V:      truncateCols(&v, c, k),
		Eigsum: eigsum,
	}
	if err := errors.CheckValues(op, f.D); err != nil {
		return nil, err
	}
	return f, nil
}

// decomposeIterative はランダム化部分空間反復による近似打ち切り分解
//
// ガウス乱数の試行行列から始め、べき乗反復と薄い特異値分解による
// 再直交化で上位特異三つ組に収束させる。大規模な疎行列でも密な分解を
// 作らず、行列ベクトル積（matVecer）経由で動作する。
//
// Eigsumは計算されたk個の特異値の二乗和であり、k < フルランクのとき
// 行列全体の分散とは一致しない。特異ベクトルの符号は一意に定まらない。
func decomposeIterative(a mat.Matrix, k int, seed int64) (*Factorization, error) {
	const op = "ca.decomposeIterative"

	r, c := a.Dims()
	minDim := r
	if c < minDim {
		minDim = c
	}
	l := k + oversampling
	if l > minDim {
		l = minDim
	}

	rng := rand.New(rand.NewSource(seed))
	omega := mat.NewDense(c, l, nil)
	for i := 0; i < c; i++ {
		for j := 0; j < l; j++ {
			omega.Set(i, j, rng.NormFloat64())
		}
	}

	// Y = A·Ω を直交化して範囲の基底を得る
	y := applyOp(a, false, omega)
	q, err := orthonormalize(y)
	if err != nil {
		return nil, err
	}

	// べき乗反復: 特異値の減衰が緩い行列でも基底を上位部分空間へ寄せる
	for it := 0; it < powerIterations; it++ {
		z, err := orthonormalize(applyOp(a, true, q))
		if err != nil {
			return nil, err
		}
		q, err = orthonormalize(applyOp(a, false, z))
		if err != nil {
			return nil, err
		}
	}

	// B = Aᵀ·Q (c×l)。A ≈ Q·Bᵀ なので Bᵀ の小さな分解から三つ組を得る。
	b := applyOp(a, true, q)

	var svd mat.SVD
	if ok := svd.Factorize(b.T(), mat.SVDThin); !ok {
		return nil, errors.Wrap(errors.ErrSVDFailed, op)
	}
	values := svd.Values(nil)

	var ub, v mat.Dense
	svd.UTo(&ub) // l×l
	svd.VTo(&v)  // c×l

	var u mat.Dense
	u.Mul(q, &ub) // r×l

	d := append([]float64(nil), values[:k]...)
	var eigsum float64
	for _, dv := range d {
		eigsum += dv * dv
	}

	f := &Factorization{
		U:      truncateCols(&u, r, k),
		D:      d,
		V:      truncateCols(&v, c, k),
		Eigsum: eigsum,
	}
	if err := errors.CheckValues(op, f.D); err != nil {
		return nil, err
	}
	return f, nil
}

// applyOp は A·X（trans=false）または Aᵀ·X（trans=true）を計算する
// 行列ベクトル積を提供する行列（疎・積形式）に対しては列ごとの積で
// 応答し、それ以外はgonumの密な積にフォールバックする。
func applyOp(a mat.Matrix, trans bool, x *mat.Dense) *mat.Dense {
	r, c := a.Dims()
	_, xc := x.Dims()
	outRows := r
	inLen := c
	if trans {
		outRows = c
		inLen = r
	}

	if mv, ok := a.(matVecer); ok {
		out := mat.NewDense(outRows, xc, nil)
		col := make([]float64, inLen)
		dst := make([]float64, outRows)
		for j := 0; j < xc; j++ {
			mat.Col(col, j, x)
			mv.MulVecTo(dst, trans, col)
			out.SetCol(j, dst)
		}
		return out
	}

	var out mat.Dense
	if trans {
		out.Mul(a.T(), x)
	} else {
		out.Mul(a, x)
	}
	return &out
}

// orthonormalize は列空間の正規直交基底を薄い特異値分解で求める
// 列数が小さい前提なので、QRの完全なQを作るより安価に済む。
func orthonormalize(x *mat.Dense) (*mat.Dense, error) {
	var svd mat.SVD
	if ok := svd.Factorize(x, mat.SVDThin); !ok {
		return nil, errors.Wrap(errors.ErrSVDFailed, "ca.orthonormalize")
	}
	var u mat.Dense
	svd.UTo(&u)
	return &u, nil
}

// truncateCols は行列の先頭k列を新しい行列にコピーする
func truncateCols(m *mat.Dense, rows, k int) *mat.Dense {
	out := mat.NewDense(rows, k, nil)
	out.Copy(m.Slice(0, rows, 0, k))
	return out
}
