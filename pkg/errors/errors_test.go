package errors

import (
	"fmt"
	"math"
	"strings"
	"testing"
)

func TestNewConfigurationError(t *testing.T) {
	tests := []struct {
		name     string
		option   string
		reason   string
		value    interface{}
		wantMsg  string
		hasStack bool
	}{
		{
			name:     "invalid enum value",
			option:   "rtype",
			reason:   "unknown residual type",
			value:    "chisq",
			wantMsg:  "scica: invalid configuration for 'rtype': unknown residual type (got: chisq)",
			hasStack: true,
		},
		{
			name:     "incompatible combination",
			option:   "smooth",
			reason:   "smoothing is only valid with indexed, standardized, or pearson residuals",
			value:    "hellinger",
			wantMsg:  "scica: invalid configuration for 'smooth': smoothing is only valid with indexed, standardized, or pearson residuals (got: hellinger)",
			hasStack: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewConfigurationError(tt.option, tt.reason, tt.value)

			// 基本的なエラーメッセージの確認
			if err.Error() != tt.wantMsg {
				t.Errorf("Error() = %v, want %v", err.Error(), tt.wantMsg)
			}

			// スタックトレースの存在確認
			if tt.hasStack {
				formatted := fmt.Sprintf("%+v", err)
				if !strings.Contains(formatted, "errors_test.go") {
					t.Error("Expected stack trace to contain test file name")
				}
			}

			// ConfigurationError型にキャスト可能か確認
			var cfgErr *ConfigurationError
			if !As(err, &cfgErr) {
				t.Error("Error should be castable to *ConfigurationError")
			}
		})
	}
}

func TestNewDegenerateInputError(t *testing.T) {
	tests := []struct {
		name    string
		axis    int
		index   int
		table   int
		wantMsg string
	}{
		{
			name:    "zero row",
			axis:    0,
			index:   2,
			table:   -1,
			wantMsg: "scica: ComputeWeights: degenerate input: row 2 is zero, weights undefined",
		},
		{
			name:    "zero column in table",
			axis:    1,
			index:   0,
			table:   1,
			wantMsg: "scica: ComputeWeights: degenerate input in table 1: column 0 is zero, weights undefined",
		},
		{
			name:    "zero total",
			axis:    -1,
			index:   -1,
			table:   -1,
			wantMsg: "scica: ComputeWeights: degenerate input: total sum is zero, weights undefined",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewDegenerateInputError("ComputeWeights", tt.axis, tt.index, tt.table)
			if err.Error() != tt.wantMsg {
				t.Errorf("Error() = %v, want %v", err.Error(), tt.wantMsg)
			}

			var degenErr *DegenerateInputError
			if !As(err, &degenErr) {
				t.Error("Error should be castable to *DegenerateInputError")
			}
			if degenErr.Axis != tt.axis || degenErr.Index != tt.index || degenErr.Table != tt.table {
				t.Errorf("fields = (%d,%d,%d), want (%d,%d,%d)",
					degenErr.Axis, degenErr.Index, degenErr.Table, tt.axis, tt.index, tt.table)
			}
		})
	}
}

func TestNewDimensionMismatchError(t *testing.T) {
	err := NewDimensionMismatchError("MultiCA.Fit", "shared axis length", 100, 98, 2)
	want := "scica: MultiCA.Fit: shared axis length mismatch at table 2: expected 100, got 98"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var dimErr *DimensionMismatchError
	if !As(err, &dimErr) {
		t.Error("Error should be castable to *DimensionMismatchError")
	}
	if dimErr.Table != 2 {
		t.Errorf("Table = %d, want 2", dimErr.Table)
	}
}

func TestNewRankTooLargeError(t *testing.T) {
	err := NewRankTooLargeError("decompose", 50, 29, 30, 200)
	want := "scica: decompose: requested rank 50 exceeds feasible rank 29 for 30x200 matrix"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var rankErr *RankTooLargeError
	if !As(err, &rankErr) {
		t.Error("Error should be castable to *RankTooLargeError")
	}
}

func TestNewNotFittedError(t *testing.T) {
	err := NewNotFittedError("CA", "Result")
	want := "scica: CA: this estimator is not fitted yet. Call Fit() before using Result()"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}
}

func TestWarningHandler(t *testing.T) {
	var captured error
	SetWarningHandler(func(w error) {
		captured = w
	})
	defer SetWarningHandler(nil)

	warning := NewResidualOverrideWarning("pearson", "standardized", "combined row-weight mode requires standardized residuals")
	Warn(warning)

	if captured == nil {
		t.Fatal("warning handler was not invoked")
	}
	if !strings.Contains(captured.Error(), "overridden to 'standardized'") {
		t.Errorf("unexpected warning message: %v", captured)
	}
}

func TestCheckValues(t *testing.T) {
	if err := CheckValues("test", []float64{1, 2, 3}); err != nil {
		t.Errorf("CheckValues on finite values: %v", err)
	}
	if err := CheckValues("test", []float64{1, math.NaN(), 3}); err == nil {
		t.Error("CheckValues should detect NaN")
	}
}
