// Package ca は対応分析（correspondence analysis）の数値パイプラインを提供します。
//
// 対応分析は非負のカウント尺度データに対する行列分解で、重み付き残差と
// 打ち切り特異値分解によってカウントデータ版のPCAに相当する埋め込みを
// 構成します。パイプラインは固定の順序で進みます:
// 重み導出 → 分散安定化変換 → 残差変換 → べき乗デフレーション（任意）→
// 極値の平滑化（任意）→ 打ち切り特異値分解 → 寄与率の付与。
//
// 共有軸を持つ複数のテーブルを一つの潜在空間へ揃えるMultiCAも提供します。
package ca

import (
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/scica/core"
	"github.com/YuminosukeSato/scica/core/model"
	"github.com/YuminosukeSato/scica/pkg/errors"
	"github.com/YuminosukeSato/scica/pkg/log"
	"github.com/YuminosukeSato/scica/sparse"
)

// CA は単一テーブルの対応分析の推定器
//
// 使用例:
//
//	est := ca.NewCA(ca.WithNComp(10), ca.WithMethod(ca.MethodExact))
//	if err := est.Fit(x); err != nil { ... }
//	res, _ := est.Result()
type CA struct {
	model.BaseEstimator

	cfg    Config
	result *Result
}

var _ core.Transformer = (*CA)(nil)

// NewCA は新しいCA推定器を作成する
func NewCA(opts ...Option) *CA {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &CA{cfg: cfg}
}

// Fit は非負行列に対して対応分析を実行する
//
// 入力は変更されない。設定の検証とランクの検証は重み・残差の計算より
// 前に行われ、失敗した場合は分解を始めずにエラーを返す。
func (c *CA) Fit(x mat.Matrix) error {
	const op = "CA.Fit"
	start := time.Now()

	if err := c.cfg.Validate(); err != nil {
		return err
	}

	r, cols := x.Dims()
	if err := validateRank(op, c.cfg.Method, c.cfg.NComp, r, cols); err != nil {
		return err
	}

	_, isSparse := x.(*sparse.CSR)
	logger := log.GetLogger().With(
		log.EstimatorKey, "CA",
		log.OperationKey, "fit",
	)
	logger.Debug("starting correspondence analysis",
		log.RowsKey, r,
		log.ColsKey, cols,
		log.SparseKey, isSparse,
		log.ComponentsKey, c.cfg.NComp,
		log.ResidualTypeKey, string(c.cfg.ResidualType),
		log.VSTKey, string(c.cfg.VST),
		log.MethodKey, string(c.cfg.Method),
	)

	w, err := ComputeWeights(x)
	if err != nil {
		return err
	}

	res, err := preprocess(x, w, &c.cfg)
	if err != nil {
		return err
	}

	f, err := decompose(res, c.cfg.NComp, &c.cfg)
	if err != nil {
		return err
	}

	result, err := assembleResult(f, c.cfg.ResidualType, c.cfg.Method)
	if err != nil {
		return err
	}

	c.result = result
	c.SetFitted()

	logger.Info("correspondence analysis finished",
		log.ComponentsKey, c.cfg.NComp,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return nil
}

// FitTransform は対応分析を実行し、共有軸（行）の主座標 U·diag(D) を返す
func (c *CA) FitTransform(x mat.Matrix) (*mat.Dense, error) {
	if err := c.Fit(x); err != nil {
		return nil, err
	}
	return c.result.RowCoordinates(), nil
}

// Result は学習済みの結果を返す
// Fitの前に呼ばれた場合はNotFittedErrorを返す。
func (c *CA) Result() (*Result, error) {
	if err := c.RequireFitted("CA", "Result"); err != nil {
		return nil, err
	}
	return c.result, nil
}

// Config は推定器の設定の複製を返す
func (c *CA) Config() Config {
	cfg := c.cfg
	cfg.RWContrib = append([]float64(nil), c.cfg.RWContrib...)
	return cfg
}

// Fit は一度きりの対応分析を実行する簡易関数
//
//	res, err := ca.Fit(x, ca.WithNComp(2), ca.WithMethod(ca.MethodExact))
func Fit(x mat.Matrix, opts ...Option) (*Result, error) {
	est := NewCA(opts...)
	if err := est.Fit(x); err != nil {
		return nil, err
	}
	return est.Result()
}

// エラー型の再輸出。呼び出し側がca単体でerrors.Asの対象を参照できるようにする。
type (
	// ConfigurationError は設定が不正な場合のエラー
	ConfigurationError = errors.ConfigurationError
	// DegenerateInputError は周辺和がゼロの場合のエラー
	DegenerateInputError = errors.DegenerateInputError
	// DimensionMismatchError は軸の長さが一致しない場合のエラー
	DimensionMismatchError = errors.DimensionMismatchError
	// RankTooLargeError は要求ランクが大きすぎる場合のエラー
	RankTooLargeError = errors.RankTooLargeError
)
