package ca

import (
	"strconv"

	"github.com/YuminosukeSato/scica/pkg/errors"
)

// Method は打ち切り特異値分解のアルゴリズムを表す
type Method string

const (
	// MethodIterative は反復的な近似分解（大規模疎行列向け）
	MethodIterative Method = "iterative"
	// MethodExact は完全な特異値分解を計算してから打ち切る（小規模・密行列向け）
	MethodExact Method = "exact"
)

// ResidualType は残差変換の種類を表す
type ResidualType string

const (
	// RTIndexed はPearsonのχ²残差（標準化残差の別名）
	RTIndexed ResidualType = "indexed"
	// RTStandardized は標準化残差（デフォルト）
	RTStandardized ResidualType = "standardized"
	// RTPearson はPearson残差。数値的にはstandardizedと同一の式で、
	// インターフェース互換のため別名として保持される。
	RTPearson ResidualType = "pearson"
	// RTFreemanTukey はFreeman-Tukey残差。過分散（裾の重いカウント）に対して
	// Pearson残差より頑健。
	RTFreemanTukey ResidualType = "freemantukey"
	// RTHellinger は連続値（強度データなど）向けのHellinger距離に整合する変換。
	// 平滑化（トリミング）とは併用できない。
	RTHellinger ResidualType = "hellinger"
)

// VST は残差計算の前に適用する分散安定化変換を表す
type VST string

const (
	// VSTNone は恒等変換
	VSTNone VST = "none"
	// VSTSqrt は x ↦ √x
	VSTSqrt VST = "sqrt"
	// VSTFreemanTukey は x ↦ √x + √(x+1)
	VSTFreemanTukey VST = "freemantukey"
	// VSTAnscombe は x ↦ 2√(x+3/8)
	VSTAnscombe VST = "anscombe"
)

// DefaultNComp はデフォルトの成分数
const DefaultNComp = 30

// DefaultPctTrim は平滑化を有効にした場合のデフォルトのトリミング割合
const DefaultPctTrim = 0.01

// Config はパイプライン全体の検証済み設定
// 全てのフィールドは計算を始める前に一度だけ検証される。
type Config struct {
	// Method は分解アルゴリズム
	Method Method

	// ResidualType は残差変換
	ResidualType ResidualType

	// VST は残差変換の前に適用する分散安定化変換
	VST VST

	// NComp は求める成分数（打ち切りランク k）
	NComp int

	// RWContrib は複数テーブルの結合重みモードにおける各テーブルの寄与係数。
	// nil の場合は各テーブルが独立に重み付けされる。
	RWContrib []float64

	// PowerAlpha はべき乗デフレーションの強度 α ∈ (0,1]。
	// 0 は無効。1 は恒等変換と等しい。
	PowerAlpha float64

	// Smooth は極値の平滑化（ウィンザライズ）を有効にする
	Smooth bool

	// PctTrim は平滑化で上下それぞれ切り詰める割合 ∈ [0,1)
	PctTrim float64

	// RandomState は反復法の乱数シード
	RandomState int64
}

// DefaultConfig はデフォルト設定を返す
func DefaultConfig() Config {
	return Config{
		Method:       MethodIterative,
		ResidualType: RTStandardized,
		VST:          VSTNone,
		NComp:        DefaultNComp,
		PowerAlpha:   0,
		Smooth:       false,
		PctTrim:      DefaultPctTrim,
		RandomState:  42,
	}
}

// Option はConfigを変更する関数
type Option func(*Config)

// WithMethod は分解アルゴリズムを設定する
func WithMethod(m Method) Option {
	return func(c *Config) {
		c.Method = m
	}
}

// WithResidualType は残差変換を設定する
func WithResidualType(rt ResidualType) Option {
	return func(c *Config) {
		c.ResidualType = rt
	}
}

// WithVST は分散安定化変換を設定する
func WithVST(v VST) Option {
	return func(c *Config) {
		c.VST = v
	}
}

// WithNComp は求める成分数を設定する
func WithNComp(k int) Option {
	return func(c *Config) {
		c.NComp = k
	}
}

// WithRWContrib は結合重みモードの寄与係数を設定する
func WithRWContrib(contrib []float64) Option {
	return func(c *Config) {
		c.RWContrib = contrib
	}
}

// WithPowerAlpha はべき乗デフレーションの強度を設定する（0で無効）
func WithPowerAlpha(alpha float64) Option {
	return func(c *Config) {
		c.PowerAlpha = alpha
	}
}

// WithSmooth は極値の平滑化を有効・無効にする
func WithSmooth(smooth bool) Option {
	return func(c *Config) {
		c.Smooth = smooth
	}
}

// WithPctTrim は平滑化のトリミング割合を設定する
func WithPctTrim(pct float64) Option {
	return func(c *Config) {
		c.PctTrim = pct
	}
}

// WithRandomState は反復法の乱数シードを設定する
func WithRandomState(seed int64) Option {
	return func(c *Config) {
		c.RandomState = seed
	}
}

// Validate は設定全体を検証する
// 全ての失敗はConfigurationErrorとして、数値計算が始まる前に報告される。
func (c *Config) Validate() error {
	switch c.Method {
	case MethodIterative, MethodExact:
	default:
		return errors.NewConfigurationError("method", "must be 'iterative' or 'exact'", string(c.Method))
	}

	switch c.ResidualType {
	case RTIndexed, RTStandardized, RTPearson, RTFreemanTukey, RTHellinger:
	default:
		return errors.NewConfigurationError("rtype", "unknown residual type", string(c.ResidualType))
	}

	switch c.VST {
	case VSTNone, VSTSqrt, VSTFreemanTukey, VSTAnscombe:
	default:
		return errors.NewConfigurationError("vst_mth", "unknown variance-stabilizing transform", string(c.VST))
	}

	if c.NComp < 1 {
		return errors.NewConfigurationError("ncomp", "must be a positive integer", c.NComp)
	}

	if c.PowerAlpha != 0 && (c.PowerAlpha <= 0 || c.PowerAlpha > 1) {
		return errors.NewConfigurationError("powdef_alpha", "must be in (0,1] or 0 to disable", c.PowerAlpha)
	}

	if c.PctTrim < 0 || c.PctTrim >= 1 {
		return errors.NewConfigurationError("pct_trim", "must be in [0,1)", c.PctTrim)
	}

	if c.Smooth {
		switch c.ResidualType {
		case RTFreemanTukey, RTHellinger:
			return errors.NewConfigurationError("smooth",
				"smoothing is only valid with indexed, standardized, or pearson residuals",
				string(c.ResidualType))
		}
	}

	for i, v := range c.RWContrib {
		if v < 0 {
			return errors.NewConfigurationError("rw_contrib", "entries must be non-negative at index "+strconv.Itoa(i), v)
		}
	}

	return nil
}

// powerDeflationEnabled はべき乗デフレーションが効果を持つ設定かどうかを返す
func (c *Config) powerDeflationEnabled() bool {
	return c.PowerAlpha > 0 && c.PowerAlpha < 1
}

// trimmingEnabled はトリミングが効果を持つ設定かどうかを返す
func (c *Config) trimmingEnabled() bool {
	return c.Smooth && c.PctTrim > 0
}
