// Package core は推定器が満たす共通インターフェースを定義します。
package core

import "gonum.org/v1/gonum/mat"

// Fitter は単一行列から学習する推定器のインターフェース
type Fitter interface {
	// Fit は行列に対して推定を実行する
	Fit(x mat.Matrix) error
}

// Transformer は学習と同時に埋め込み座標を返す推定器のインターフェース
type Transformer interface {
	Fitter

	// FitTransform は推定を実行し、主座標を返す
	FitTransform(x mat.Matrix) (*mat.Dense, error)
}

// MultiFitter は共有軸を持つ複数の行列から学習する推定器のインターフェース
type MultiFitter interface {
	// Fit は順序付きのテーブル群に対して推定を実行する
	Fit(xs []mat.Matrix) error

	// FitTransform は推定を実行し、共有軸の主座標を返す
	FitTransform(xs []mat.Matrix) (*mat.Dense, error)
}
