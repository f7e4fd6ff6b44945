package ca

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/scica/core"
	"github.com/YuminosukeSato/scica/core/model"
	"github.com/YuminosukeSato/scica/pkg/errors"
	"github.com/YuminosukeSato/scica/pkg/log"
)

// MultiCA は共有軸を持つ複数テーブルの対応分析の推定器
//
// 全てのテーブルは行軸（特徴量）を共有していることが前提で、識別子の
// 整合は呼び出し側（アダプタ層）が保証する。前処理されたテーブルは
// 入力順のまま列方向に連結され、一度の分解にかけられる。
//
// RWContribが設定されている場合は結合重みモードになる: 各テーブルの
// 行重みの寄与加重和を正規化した一つの行重みベクトルを全テーブルで
// 共有し、残差変換はstandardizedに強制される（置き換えは警告と
// RTypeOverriddenフラグで観測できる）。
type MultiCA struct {
	model.BaseEstimator

	cfg    Config
	result *MultiResult
}

var _ core.MultiFitter = (*MultiCA)(nil)

// NewMultiCA は新しいMultiCA推定器を作成する
func NewMultiCA(opts ...Option) *MultiCA {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &MultiCA{cfg: cfg}
}

// Fit は複数テーブルに対して結合対応分析を実行する
func (m *MultiCA) Fit(xs []mat.Matrix) error {
	const op = "MultiCA.Fit"
	start := time.Now()

	if err := m.cfg.Validate(); err != nil {
		return err
	}
	if len(xs) == 0 {
		return errors.Wrap(errors.ErrEmptyData, op)
	}

	// 共有軸（行）の長さと連結後の列数を先に確定し、ランクを検証する
	rows, _ := xs[0].Dims()
	totalCols := 0
	batchSizes := make([]int, len(xs))
	for t, x := range xs {
		r, c := x.Dims()
		if r != rows {
			return errors.NewDimensionMismatchError(op, "shared axis length", rows, r, t)
		}
		batchSizes[t] = c
		totalCols += c
	}
	combined := m.cfg.RWContrib != nil
	if combined && len(m.cfg.RWContrib) != len(xs) {
		return errors.NewDimensionMismatchError(op, "rw_contrib length", len(xs), len(m.cfg.RWContrib), -1)
	}
	if err := validateRank(op, m.cfg.Method, m.cfg.NComp, rows, totalCols); err != nil {
		return err
	}

	logger := log.GetLogger().With(
		log.EstimatorKey, "MultiCA",
		log.OperationKey, "fit",
	)
	logger.Debug("starting multi-table correspondence analysis",
		log.RowsKey, rows,
		log.ColsKey, totalCols,
		log.TablesKey, len(xs),
		log.ComponentsKey, m.cfg.NComp,
		log.ResidualTypeKey, string(m.cfg.ResidualType),
		log.MethodKey, string(m.cfg.Method),
	)

	weights := make([]*Weights, len(xs))
	for t, x := range xs {
		w, err := computeWeights(x, t)
		if err != nil {
			return err
		}
		weights[t] = w
	}

	// 結合重みモード: 行重みの寄与加重和を正規化して共有する
	rtypeUsed := m.cfg.ResidualType
	overridden := false
	var sharedRow []float64
	if combined {
		if rtypeUsed != RTStandardized {
			overridden = true
			errors.Warn(errors.NewResidualOverrideWarning(
				string(rtypeUsed), string(RTStandardized),
				"combined row-weight mode requires standardized residuals"))
			rtypeUsed = RTStandardized
		}
		var err error
		sharedRow, err = combineRowWeights(weights, m.cfg.RWContrib)
		if err != nil {
			return err
		}
	}

	tableCfg := m.cfg
	tableCfg.ResidualType = rtypeUsed

	parts := make([]mat.Matrix, len(xs))
	for t, x := range xs {
		w := weights[t]
		if combined {
			w = &Weights{Row: sharedRow, Col: weights[t].Col, N: weights[t].N}
		}
		res, err := preprocess(x, w, &tableCfg)
		if err != nil {
			return err
		}
		parts[t] = res
	}

	concat := concatenate(parts, batchSizes)

	f, err := decompose(concat, m.cfg.NComp, &m.cfg)
	if err != nil {
		return err
	}

	result, err := assembleResult(f, rtypeUsed, m.cfg.Method)
	if err != nil {
		return err
	}

	m.result = &MultiResult{
		Result:          *result,
		BatchSizes:      batchSizes,
		RTypeOverridden: overridden,
	}
	m.SetFitted()

	logger.Info("multi-table correspondence analysis finished",
		log.TablesKey, len(xs),
		log.ComponentsKey, m.cfg.NComp,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return nil
}

// FitTransform は結合対応分析を実行し、共有軸の主座標を返す
func (m *MultiCA) FitTransform(xs []mat.Matrix) (*mat.Dense, error) {
	if err := m.Fit(xs); err != nil {
		return nil, err
	}
	return m.result.RowCoordinates(), nil
}

// Result は学習済みの結果を返す
func (m *MultiCA) Result() (*MultiResult, error) {
	if err := m.RequireFitted("MultiCA", "Result"); err != nil {
		return nil, err
	}
	return m.result, nil
}

// FitMulti は一度きりの結合対応分析を実行する簡易関数
func FitMulti(xs []mat.Matrix, opts ...Option) (*MultiResult, error) {
	est := NewMultiCA(opts...)
	if err := est.Fit(xs); err != nil {
		return nil, err
	}
	return est.Result()
}

// combineRowWeights は各テーブルの行重みの寄与加重和を正規化する
// 結果は総和1のベクトル。寄与が全てゼロの場合はConfigurationError。
func combineRowWeights(weights []*Weights, contrib []float64) ([]float64, error) {
	rows := len(weights[0].Row)
	out := make([]float64, rows)
	for t, w := range weights {
		for i, rw := range w.Row {
			out[i] += contrib[t] * rw
		}
	}
	var sum float64
	for _, v := range out {
		sum += v
	}
	if sum == 0 {
		return nil, errors.NewConfigurationError("rw_contrib", "must contain at least one positive entry", contrib)
	}
	for i := range out {
		out[i] /= sum
	}
	return out, nil
}

// concatenate は前処理済みテーブルを入力順のまま列方向に連結する
// 全てが密な場合は一つの密行列にまとめ、それ以外は密化しない
// ビュー（hcat）として保持する。
func concatenate(parts []mat.Matrix, sizes []int) mat.Matrix {
	if len(parts) == 1 {
		return parts[0]
	}

	allDense := true
	for _, p := range parts {
		if _, ok := p.(*mat.Dense); !ok {
			allDense = false
			break
		}
	}

	rows, _ := parts[0].Dims()
	total := 0
	offsets := make([]int, len(parts)+1)
	for t, s := range sizes {
		offsets[t] = total
		total += s
	}
	offsets[len(parts)] = total

	if allDense {
		out := mat.NewDense(rows, total, nil)
		for t, p := range parts {
			out.Slice(0, rows, offsets[t], offsets[t+1]).(*mat.Dense).Copy(p)
		}
		return out
	}
	return &hcat{parts: parts, rows: rows, cols: total, offsets: offsets}
}

// hcat は列方向の連結を密化せずに表すビュー
// 全ての部分が行列ベクトル積を提供できれば、連結全体も提供する。
type hcat struct {
	parts   []mat.Matrix
	rows    int
	cols    int
	offsets []int // 長さ len(parts)+1
}

// Dims は連結後の次元を返す
func (h *hcat) Dims() (r, c int) { return h.rows, h.cols }

// At は (i, j) 要素を返す
func (h *hcat) At(i, j int) float64 {
	t := sort.SearchInts(h.offsets, j+1) - 1
	return h.parts[t].At(i, j-h.offsets[t])
}

// T は転置を返す
func (h *hcat) T() mat.Matrix { return mat.Transpose{Matrix: h} }

// MulVecTo は連結全体の行列ベクトル積を部分ごとの積に分配する
func (h *hcat) MulVecTo(dst []float64, trans bool, x []float64) {
	if !trans {
		for i := range dst {
			dst[i] = 0
		}
		tmp := make([]float64, h.rows)
		for t, p := range h.parts {
			seg := x[h.offsets[t]:h.offsets[t+1]]
			mulVecPart(p, false, tmp, seg)
			for i := range dst {
				dst[i] += tmp[i]
			}
		}
		return
	}
	for t, p := range h.parts {
		seg := dst[h.offsets[t]:h.offsets[t+1]]
		mulVecPart(p, true, seg, x)
	}
}

// mulVecPart は部分行列の行列ベクトル積を計算する
// matVecerを実装しない部分には要素アクセスでフォールバックする。
func mulVecPart(p mat.Matrix, trans bool, dst, x []float64) {
	if mv, ok := p.(matVecer); ok {
		mv.MulVecTo(dst, trans, x)
		return
	}
	r, c := p.Dims()
	if !trans {
		for i := 0; i < r; i++ {
			var s float64
			for j := 0; j < c; j++ {
				s += p.At(i, j) * x[j]
			}
			dst[i] = s
		}
		return
	}
	for j := 0; j < c; j++ {
		var s float64
		for i := 0; i < r; i++ {
			s += p.At(i, j) * x[i]
		}
		dst[j] = s
	}
}
