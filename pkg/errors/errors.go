// Package errors はプロジェクト全体のエラーハンドリングと警告システムを提供します。
// 対応分析（CA）パイプラインの失敗モードを構造化されたエラー型として表現します。
package errors

import (
	"fmt"
	"log"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	グローバル警告ハンドリング
//
// ===========================================================================
var (
	warningMutex   sync.Mutex
	warningHandler = func(w error) {
		// デフォルトのハンドラは標準エラー出力にログを出す
		log.Printf("SciCA-Warning: %v\n", w)
	}
	// zerologロガー（循環importを避けるため遅延初期化）
	zerologWarnFunc func(warning error)
)

// SetWarningHandler はライブラリ全体の警告ハンドラを設定します。
// ResidualOverrideWarningなどの警告の処理方法を制御できます。
//
// 例:
//
//	errors.SetWarningHandler(func(w error) {
//	    // 警告を無視する
//	})
func SetWarningHandler(handler func(w error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	warningHandler = handler
}

// SetZerologWarnFunc はzerolog警告関数を設定します（循環importを避けるため）。
func SetZerologWarnFunc(warnFunc func(warning error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	zerologWarnFunc = warnFunc
}

// Warn は警告を発生させます。
// zerologが利用可能な場合は構造化ログとして出力し、そうでなければ従来のハンドラを使用します。
func Warn(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()

	// zerologが設定されている場合は優先的に使用
	if zerologWarnFunc != nil {
		zerologWarnFunc(w)
		return
	}

	// フォールバック: 従来のハンドラ
	if warningHandler != nil {
		warningHandler(w)
	}
}

// ===========================================================================
//
//	警告型
//
// ===========================================================================

// ResidualOverrideWarning は複数テーブルの結合重みモードで、要求された残差変換が
// 強制的に置き換えられた場合に発生する警告です。
type ResidualOverrideWarning struct {
	Requested string
	Used      string
	Reason    string
}

func (w *ResidualOverrideWarning) Error() string {
	return fmt.Sprintf("residual type '%s' overridden to '%s': %s", w.Requested, w.Used, w.Reason)
}

// MarshalZerologObject はzerologのイベントに構造化された警告情報を追加します。
func (w *ResidualOverrideWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("requested", w.Requested).
		Str("used", w.Used).
		Str("reason", w.Reason).
		Str("type", "ResidualOverrideWarning")
}

// NewResidualOverrideWarning は新しいResidualOverrideWarningを作成します。
func NewResidualOverrideWarning(requested, used, reason string) *ResidualOverrideWarning {
	return &ResidualOverrideWarning{Requested: requested, Used: used, Reason: reason}
}

// ===========================================================================
//
//	構造化されたエラー型
//
// ===========================================================================

// ConfigurationError は設定値が不正、または設定の組み合わせが許されない場合のエラーです。
// 例えば、平滑化（トリミング）とhellinger残差の併用など。
type ConfigurationError struct {
	Option string
	Reason string
	Value  interface{}
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("scica: invalid configuration for '%s': %s (got: %v)", e.Option, e.Reason, e.Value)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *ConfigurationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("option", e.Option).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "ConfigurationError")
}

// NewConfigurationError は新しいConfigurationErrorを作成し、スタックトレースを付与します。
func NewConfigurationError(option, reason string, value interface{}) error {
	err := &ConfigurationError{Option: option, Reason: reason, Value: value}
	return errors.WithStack(err)
}

// DegenerateInputError は入力行列の周辺和がゼロで重みが定義できない場合のエラーです。
// Axisは0が行、1が列、-1が総和を表します。Tableは複数テーブル時のテーブル番号です
// （単一テーブルでは-1）。
type DegenerateInputError struct {
	Op    string
	Axis  int
	Index int
	Table int
}

func (e *DegenerateInputError) Error() string {
	where := "total sum"
	switch e.Axis {
	case 0:
		where = fmt.Sprintf("row %d", e.Index)
	case 1:
		where = fmt.Sprintf("column %d", e.Index)
	}
	if e.Table >= 0 {
		return fmt.Sprintf("scica: %s: degenerate input in table %d: %s is zero, weights undefined", e.Op, e.Table, where)
	}
	return fmt.Sprintf("scica: %s: degenerate input: %s is zero, weights undefined", e.Op, where)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *DegenerateInputError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Int("axis", e.Axis).
		Int("index", e.Index).
		Int("table", e.Table).
		Str("type", "DegenerateInputError")
}

// NewDegenerateInputError は新しいDegenerateInputErrorを作成し、スタックトレースを付与します。
// 総和がゼロの場合は axis=-1, index=-1 を渡します。
func NewDegenerateInputError(op string, axis, index, table int) error {
	err := &DegenerateInputError{Op: op, Axis: axis, Index: index, Table: table}
	return errors.WithStack(err)
}

// DimensionMismatchError は複数テーブルの共有軸の長さ、またはrw_contribの長さが
// 一致しない場合のエラーです。Tableは問題のテーブル番号です（該当しない場合-1）。
type DimensionMismatchError struct {
	Op       string
	What     string
	Expected int
	Got      int
	Table    int
}

func (e *DimensionMismatchError) Error() string {
	if e.Table >= 0 {
		return fmt.Sprintf("scica: %s: %s mismatch at table %d: expected %d, got %d", e.Op, e.What, e.Table, e.Expected, e.Got)
	}
	return fmt.Sprintf("scica: %s: %s mismatch: expected %d, got %d", e.Op, e.What, e.Expected, e.Got)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *DimensionMismatchError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Str("what", e.What).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Int("table", e.Table).
		Str("type", "DimensionMismatchError")
}

// NewDimensionMismatchError は新しいDimensionMismatchErrorを作成し、スタックトレースを付与します。
func NewDimensionMismatchError(op, what string, expected, got, table int) error {
	err := &DimensionMismatchError{Op: op, What: what, Expected: expected, Got: got, Table: table}
	return errors.WithStack(err)
}

// RankTooLargeError は要求された成分数が分解可能なランクを超えている場合のエラーです。
// 黙って切り詰めることはせず、分解を始める前に失敗します。
type RankTooLargeError struct {
	Op        string
	Requested int
	Feasible  int
	Rows      int
	Cols      int
}

func (e *RankTooLargeError) Error() string {
	return fmt.Sprintf("scica: %s: requested rank %d exceeds feasible rank %d for %dx%d matrix",
		e.Op, e.Requested, e.Feasible, e.Rows, e.Cols)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *RankTooLargeError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Int("requested", e.Requested).
		Int("feasible", e.Feasible).
		Int("rows", e.Rows).
		Int("cols", e.Cols).
		Str("type", "RankTooLargeError")
}

// NewRankTooLargeError は新しいRankTooLargeErrorを作成し、スタックトレースを付与します。
func NewRankTooLargeError(op string, requested, feasible, rows, cols int) error {
	err := &RankTooLargeError{Op: op, Requested: requested, Feasible: feasible, Rows: rows, Cols: cols}
	return errors.WithStack(err)
}

// NotFittedError は推定器が未学習の状態で結果を要求した場合のエラーです。
type NotFittedError struct {
	EstimatorName string
	Method        string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("scica: %s: this estimator is not fitted yet. Call Fit() before using %s()", e.EstimatorName, e.Method)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *NotFittedError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("estimator_name", e.EstimatorName).
		Str("method", e.Method).
		Str("type", "NotFittedError")
}

// NewNotFittedError は新しいNotFittedErrorを作成し、スタックトレースを付与します。
func NewNotFittedError(estimatorName, method string) error {
	err := &NotFittedError{EstimatorName: estimatorName, Method: method}
	return errors.WithStack(err)
}

// ValueError は引数の値が不適切または不正な場合に発生するエラーです。
// 例えば、負の要素を含む行列を渡した場合など。
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("scica: %s: %s", e.Op, e.Message)
}

// NewValueError は新しいValueErrorを作成し、スタックトレースを付与します。
func NewValueError(op, message string) error {
	err := &ValueError{Op: op, Message: message}
	return errors.WithStack(err)
}

// ===========================================================================
//
//	cockroachdb/errors ラッパー関数
//
// ===========================================================================

// Is はエラーが特定のターゲットエラーかどうかを判定します。
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As はエラーが特定の型にキャスト可能かどうかを判定します。
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap は既存のエラーをメッセージ付きでラップします。
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf は既存のエラーをフォーマット文字列でラップします。
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New は新しいエラーを作成します。
func New(message string) error {
	return errors.New(message)
}

// Newf は新しいフォーマット済みエラーを作成します。
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack はエラーにスタックトレースを付与します。
func WithStack(err error) error {
	return errors.WithStack(err)
}

// ===========================================================================
//
//	共通エラー変数
//
// ===========================================================================

var (
	// ErrEmptyData は空のデータが渡された場合のエラーです。
	ErrEmptyData = New("empty data")

	// ErrSVDFailed はSVDの因子分解が収束しなかった場合のエラーです。
	ErrSVDFailed = New("svd factorization failed")
)
