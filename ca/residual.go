package ca

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/scica/pkg/errors"
	"github.com/YuminosukeSato/scica/sparse"
)

// vstFunc は分散安定化変換の要素ごとの関数を返す
func vstFunc(v VST) func(float64) float64 {
	switch v {
	case VSTSqrt:
		return math.Sqrt
	case VSTAnscombe:
		return func(x float64) float64 { return 2 * math.Sqrt(x+3.0/8.0) }
	case VSTFreemanTukey:
		return func(x float64) float64 { return math.Sqrt(x) + math.Sqrt(x+1) }
	default:
		return func(x float64) float64 { return x }
	}
}

// vstPreservesZero はゼロをゼロに写す変換かどうかを返す
// ゼロを保存しない変換（anscombe、freemantukey）は疎な表現を密化させる。
func vstPreservesZero(v VST) bool {
	return v == VSTNone || v == VSTSqrt
}

// preprocess は重み付き残差行列を構築する
//
// 固定された順序で適用される: 分散安定化変換 → 残差変換 →
// べき乗デフレーション（任意）→ 極値の平滑化（任意）。
// 重みは常に未変換のカウントから計算されたものを受け取る。
//
// 入力がCSRで、標準化系の残差かつ密化を要求する後段が無効な場合、
// 残差は R = S − u·vᵀ の積形式のまま保持され、密行列は作られない。
// それ以外は密なResidualMatrixを返す。入力は変更されない。
func preprocess(x mat.Matrix, w *Weights, cfg *Config) (mat.Matrix, error) {
	r, c := x.Dims()
	if len(w.Row) != r {
		return nil, errors.NewDimensionMismatchError("ca.preprocess", "row weight length", r, len(w.Row), -1)
	}
	if len(w.Col) != c {
		return nil, errors.NewDimensionMismatchError("ca.preprocess", "column weight length", c, len(w.Col), -1)
	}

	pearsonFamily := cfg.ResidualType == RTIndexed || cfg.ResidualType == RTStandardized || cfg.ResidualType == RTPearson

	if csr, ok := x.(*sparse.CSR); ok && pearsonFamily &&
		!cfg.powerDeflationEnabled() && !cfg.trimmingEnabled() && vstPreservesZero(cfg.VST) {
		return sparseStandardizedResidual(csr, w, cfg.VST), nil
	}

	res := denseResidual(x, w, cfg)

	if cfg.powerDeflationEnabled() {
		powerDeflate(res, cfg.PowerAlpha)
	}
	if cfg.trimmingEnabled() {
		if !pearsonFamily {
			// Config.Validateで弾かれるが、直接呼ばれた場合の防衛
			return nil, errors.NewConfigurationError("smooth",
				"smoothing is only valid with indexed, standardized, or pearson residuals",
				string(cfg.ResidualType))
		}
		winsorize(res, cfg.PctTrim)
	}
	return res, nil
}

// sparseStandardizedResidual は疎行列の標準化残差を積形式で構築する
//
// r_ij = q_ij/√(rw_i·cw_j) − √(rw_i)·√(cw_j)、q = vst(x)/N。
// 第1項はxと同じ疎構造、第2項はランク1なので密化せずに保持できる。
func sparseStandardizedResidual(x *sparse.CSR, w *Weights, v VST) *offsetResidual {
	f := vstFunc(v)
	s := x.Apply(func(i, j int, val float64) float64 {
		return f(val) / w.N / math.Sqrt(w.Row[i]*w.Col[j])
	})
	r, c := x.Dims()
	u := make([]float64, r)
	for i := range u {
		u[i] = math.Sqrt(w.Row[i])
	}
	vv := make([]float64, c)
	for j := range vv {
		vv[j] = math.Sqrt(w.Col[j])
	}
	return &offsetResidual{s: s, u: u, v: vv}
}

// denseResidual は密な残差行列を構築する
func denseResidual(x mat.Matrix, w *Weights, cfg *Config) *mat.Dense {
	r, c := x.Dims()
	f := vstFunc(cfg.VST)
	invN := 1.0 / w.N
	res := mat.NewDense(r, c, nil)

	switch cfg.ResidualType {
	case RTFreemanTukey:
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				p := f(x.At(i, j)) * invN
				e := w.Row[i] * w.Col[j]
				res.Set(i, j, math.Sqrt(p)+math.Sqrt(p+invN)-math.Sqrt(4*e+invN))
			}
		}
	case RTHellinger:
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				p := f(x.At(i, j)) * invN
				res.Set(i, j, math.Sqrt(p/w.Row[i]))
			}
		}
	default: // indexed / standardized / pearson は同一の式
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				p := f(x.At(i, j)) * invN
				e := w.Row[i] * w.Col[j]
				res.Set(i, j, (p-e)/math.Sqrt(e))
			}
		}
	}
	return res
}

// powerDeflate は r ↦ sign(r)·|r|^α を要素ごとに適用する
// α=1は恒等変換。残差変換の後に適用されなければならない。
func powerDeflate(res *mat.Dense, alpha float64) {
	if alpha == 1 {
		return
	}
	r, c := res.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := res.At(i, j)
			res.Set(i, j, math.Copysign(math.Pow(math.Abs(v), alpha), v))
		}
	}
}

// winsorize は残差値の上下pct分位をそれぞれの分位境界にクランプする
// pct=0は恒等変換。
func winsorize(res *mat.Dense, pct float64) {
	if pct == 0 {
		return
	}
	r, c := res.Dims()
	values := make([]float64, 0, r*c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			values = append(values, res.At(i, j))
		}
	}
	sort.Float64s(values)
	lo := stat.Quantile(pct, stat.Empirical, values, nil)
	hi := stat.Quantile(1-pct, stat.Empirical, values, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := res.At(i, j)
			if v < lo {
				res.Set(i, j, lo)
			} else if v > hi {
				res.Set(i, j, hi)
			}
		}
	}
}

// offsetResidual は疎な標準化残差の積形式 R = S − u·vᵀ
// mat.Matrixを満たし、反復法の分解には行列ベクトル積のみで応答する。
type offsetResidual struct {
	s    *sparse.CSR
	u, v []float64
}

// Dims は行列の次元を返す
func (m *offsetResidual) Dims() (r, c int) { return m.s.Dims() }

// At は (i, j) 要素を返す
func (m *offsetResidual) At(i, j int) float64 {
	return m.s.At(i, j) - m.u[i]*m.v[j]
}

// T は転置を返す
func (m *offsetResidual) T() mat.Matrix { return mat.Transpose{Matrix: m} }

// MulVecTo は dst = R*x（trans=false）または dst = Rᵀ*x（trans=true）を計算する
func (m *offsetResidual) MulVecTo(dst []float64, trans bool, x []float64) {
	m.s.MulVecTo(dst, trans, x)
	if !trans {
		// dst -= u·(vᵀx)
		var dot float64
		for j, xj := range x {
			dot += m.v[j] * xj
		}
		for i := range dst {
			dst[i] -= m.u[i] * dot
		}
		return
	}
	// dst -= v·(uᵀx)
	var dot float64
	for i, xi := range x {
		dot += m.u[i] * xi
	}
	for j := range dst {
		dst[j] -= m.v[j] * dot
	}
}

// ToDense は積形式を密行列に展開する
func (m *offsetResidual) ToDense() *mat.Dense {
	r, c := m.Dims()
	out := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out.Set(i, j, -m.u[i]*m.v[j])
		}
	}
	m.s.NonZeros(func(i, j int, v float64) {
		out.Set(i, j, out.At(i, j)+v)
	})
	return out
}
