// Package sparse は圧縮行格納（CSR）形式の疎行列を提供します。
// gonum の mat.Matrix インターフェースを満たし、対応分析の重み計算・前処理・
// 連結を疎なまま通過させるために使います。
package sparse

import (
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/scica/pkg/errors"
)

// CSR は圧縮行格納形式の疎行列
// 各行の非ゼロ要素は列番号の昇順で保持される
type CSR struct {
	rows, cols int
	indptr     []int     // 長さ rows+1、行 i の非ゼロは data[indptr[i]:indptr[i+1]]
	indices    []int     // 非ゼロ要素の列番号
	data       []float64 // 非ゼロ要素の値
}

// Triplet は疎行列の1要素（行、列、値）を表す
type Triplet struct {
	Row, Col int
	Value    float64
}

// NewCSR は生のCSR配列から疎行列を作成する
//
// 事前条件: len(indptr) == rows+1、indptr は単調非減少、
// 各行の indices は昇順。検証に失敗した場合はエラーを返す。
func NewCSR(rows, cols int, indptr, indices []int, data []float64) (*CSR, error) {
	if rows <= 0 || cols <= 0 {
		return nil, errors.NewValueError("sparse.NewCSR", "matrix dimensions must be positive")
	}
	if len(indptr) != rows+1 {
		return nil, errors.NewDimensionMismatchError("sparse.NewCSR", "indptr length", rows+1, len(indptr), -1)
	}
	if len(indices) != len(data) {
		return nil, errors.NewDimensionMismatchError("sparse.NewCSR", "indices/data length", len(indices), len(data), -1)
	}
	if indptr[0] != 0 || indptr[rows] != len(data) {
		return nil, errors.NewValueError("sparse.NewCSR", "indptr must start at 0 and end at nnz")
	}
	for i := 0; i < rows; i++ {
		if indptr[i] > indptr[i+1] {
			return nil, errors.NewValueError("sparse.NewCSR", "indptr must be non-decreasing")
		}
		for p := indptr[i]; p < indptr[i+1]; p++ {
			if indices[p] < 0 || indices[p] >= cols {
				return nil, errors.NewValueError("sparse.NewCSR", "column index out of range")
			}
			if p > indptr[i] && indices[p] <= indices[p-1] {
				return nil, errors.NewValueError("sparse.NewCSR", "column indices must be strictly increasing within a row")
			}
		}
	}
	return &CSR{rows: rows, cols: cols, indptr: indptr, indices: indices, data: data}, nil
}

// NewCSRFromTriplets は (行, 列, 値) の三つ組リストから疎行列を作成する
// 同じ位置の重複した値は加算される。ゼロ値の三つ組は格納されない。
func NewCSRFromTriplets(rows, cols int, ts []Triplet) (*CSR, error) {
	if rows <= 0 || cols <= 0 {
		return nil, errors.NewValueError("sparse.NewCSRFromTriplets", "matrix dimensions must be positive")
	}
	for _, t := range ts {
		if t.Row < 0 || t.Row >= rows || t.Col < 0 || t.Col >= cols {
			return nil, errors.NewValueError("sparse.NewCSRFromTriplets", "triplet index out of range")
		}
	}
	sorted := make([]Triplet, len(ts))
	copy(sorted, ts)
	sort.Slice(sorted, func(a, b int) bool {
		if sorted[a].Row != sorted[b].Row {
			return sorted[a].Row < sorted[b].Row
		}
		return sorted[a].Col < sorted[b].Col
	})

	// 同じ位置の重複を加算でマージ
	merged := sorted[:0]
	for _, t := range sorted {
		n := len(merged)
		if n > 0 && merged[n-1].Row == t.Row && merged[n-1].Col == t.Col {
			merged[n-1].Value += t.Value
			continue
		}
		merged = append(merged, t)
	}

	indptr := make([]int, rows+1)
	indices := make([]int, 0, len(merged))
	data := make([]float64, 0, len(merged))
	row := 0
	for _, t := range merged {
		if t.Value == 0 {
			continue
		}
		for row < t.Row {
			row++
			indptr[row] = len(data)
		}
		indices = append(indices, t.Col)
		data = append(data, t.Value)
	}
	for row < rows {
		row++
		indptr[row] = len(data)
	}
	return &CSR{rows: rows, cols: cols, indptr: indptr, indices: indices, data: data}, nil
}

// NewCSRFromDense は密行列から疎行列を作成する
// 厳密にゼロの要素だけが省かれる
func NewCSRFromDense(x mat.Matrix) *CSR {
	r, c := x.Dims()
	indptr := make([]int, r+1)
	var indices []int
	var data []float64
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if v := x.At(i, j); v != 0 {
				indices = append(indices, j)
				data = append(data, v)
			}
		}
		indptr[i+1] = len(data)
	}
	return &CSR{rows: r, cols: c, indptr: indptr, indices: indices, data: data}
}

// Dims は行列の次元を返す
func (m *CSR) Dims() (r, c int) { return m.rows, m.cols }

// At は (i, j) 要素を返す。行内の列番号を二分探索する。
func (m *CSR) At(i, j int) float64 {
	if i < 0 || i >= m.rows || j < 0 || j >= m.cols {
		panic("sparse: index out of range")
	}
	lo, hi := m.indptr[i], m.indptr[i+1]
	p := sort.SearchInts(m.indices[lo:hi], j) + lo
	if p < hi && m.indices[p] == j {
		return m.data[p]
	}
	return 0
}

// T は転置を返す
func (m *CSR) T() mat.Matrix { return mat.Transpose{Matrix: m} }

// NNZ は非ゼロ要素数を返す
func (m *CSR) NNZ() int { return len(m.data) }

// Sum は全要素の総和を返す
func (m *CSR) Sum() float64 {
	var s float64
	for _, v := range m.data {
		s += v
	}
	return s
}

// RowSums は各行の和を返す
func (m *CSR) RowSums() []float64 {
	sums := make([]float64, m.rows)
	for i := 0; i < m.rows; i++ {
		var s float64
		for p := m.indptr[i]; p < m.indptr[i+1]; p++ {
			s += m.data[p]
		}
		sums[i] = s
	}
	return sums
}

// ColSums は各列の和を返す
func (m *CSR) ColSums() []float64 {
	sums := make([]float64, m.cols)
	for i := 0; i < m.rows; i++ {
		for p := m.indptr[i]; p < m.indptr[i+1]; p++ {
			sums[m.indices[p]] += m.data[p]
		}
	}
	return sums
}

// NonZeros は全ての非ゼロ要素に対して f を呼び出す
func (m *CSR) NonZeros(f func(i, j int, v float64)) {
	for i := 0; i < m.rows; i++ {
		for p := m.indptr[i]; p < m.indptr[i+1]; p++ {
			f(i, m.indices[p], m.data[p])
		}
	}
}

// Apply は各非ゼロ要素に f を適用した新しい疎行列を返す
// f(i,j,0)=0 となる要素ごとの変換（平方根など）にのみ使うこと。
func (m *CSR) Apply(f func(i, j int, v float64) float64) *CSR {
	out := &CSR{
		rows:    m.rows,
		cols:    m.cols,
		indptr:  append([]int(nil), m.indptr...),
		indices: append([]int(nil), m.indices...),
		data:    make([]float64, len(m.data)),
	}
	for i := 0; i < m.rows; i++ {
		for p := m.indptr[i]; p < m.indptr[i+1]; p++ {
			out.data[p] = f(i, m.indices[p], m.data[p])
		}
	}
	return out
}

// MulVecTo は dst = A*x（trans=false）または dst = Aᵀ*x（trans=true）を計算する
// 反復法の分解が密化せずに行列ベクトル積を取るための経路。
func (m *CSR) MulVecTo(dst []float64, trans bool, x []float64) {
	if !trans {
		if len(dst) != m.rows || len(x) != m.cols {
			panic("sparse: dimension mismatch in MulVecTo")
		}
		for i := 0; i < m.rows; i++ {
			var s float64
			for p := m.indptr[i]; p < m.indptr[i+1]; p++ {
				s += m.data[p] * x[m.indices[p]]
			}
			dst[i] = s
		}
		return
	}
	if len(dst) != m.cols || len(x) != m.rows {
		panic("sparse: dimension mismatch in MulVecTo")
	}
	for j := range dst {
		dst[j] = 0
	}
	for i := 0; i < m.rows; i++ {
		xi := x[i]
		if xi == 0 {
			continue
		}
		for p := m.indptr[i]; p < m.indptr[i+1]; p++ {
			dst[m.indices[p]] += m.data[p] * xi
		}
	}
}

// ToDense は密行列に変換した複製を返す
func (m *CSR) ToDense() *mat.Dense {
	out := mat.NewDense(m.rows, m.cols, nil)
	m.NonZeros(func(i, j int, v float64) {
		out.Set(i, j, v)
	})
	return out
}

// HCat は同じ行数の疎行列を列方向に連結する
// 入力順は保存され、結果の列数は各部分の列数の和になる。
func HCat(parts ...*CSR) (*CSR, error) {
	if len(parts) == 0 {
		return nil, errors.NewValueError("sparse.HCat", "no matrices to concatenate")
	}
	rows := parts[0].rows
	cols := 0
	nnz := 0
	for t, p := range parts {
		if p.rows != rows {
			return nil, errors.NewDimensionMismatchError("sparse.HCat", "row count", rows, p.rows, t)
		}
		cols += p.cols
		nnz += p.NNZ()
	}
	out := &CSR{
		rows:    rows,
		cols:    cols,
		indptr:  make([]int, rows+1),
		indices: make([]int, 0, nnz),
		data:    make([]float64, 0, nnz),
	}
	for i := 0; i < rows; i++ {
		offset := 0
		for _, p := range parts {
			for q := p.indptr[i]; q < p.indptr[i+1]; q++ {
				out.indices = append(out.indices, p.indices[q]+offset)
				out.data = append(out.data, p.data[q])
			}
			offset += p.cols
		}
		out.indptr[i+1] = len(out.data)
	}
	return out, nil
}
