package ca

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestAssembleResult(t *testing.T) {
	tests := []struct {
		name    string
		d       []float64
		eigsum  float64
		wantPct []float64
		wantErr bool
	}{
		{
			name:    "full rank",
			d:       []float64{3, 2, 1},
			eigsum:  14,
			wantPct: []float64{900.0 / 14, 400.0 / 14, 100.0 / 14},
		},
		{
			name:    "truncated",
			d:       []float64{3, 2},
			eigsum:  20,
			wantPct: []float64{45, 20},
		},
		{
			name:    "zero eigsum gives zero percentages",
			d:       []float64{0, 0},
			eigsum:  0,
			wantPct: []float64{0, 0},
		},
		{
			name:    "increasing values rejected",
			d:       []float64{1, 2},
			eigsum:  5,
			wantErr: true,
		},
		{
			name:    "negative value rejected",
			d:       []float64{2, -1},
			eigsum:  5,
			wantErr: true,
		},
		{
			name:    "nan rejected",
			d:       []float64{math.NaN()},
			eigsum:  1,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k := len(tt.d)
			f := &Factorization{
				U:      mat.NewDense(3, k, nil),
				D:      tt.d,
				V:      mat.NewDense(3, k, nil),
				Eigsum: tt.eigsum,
			}
			res, err := assembleResult(f, RTStandardized, MethodExact)
			if (err != nil) != tt.wantErr {
				t.Fatalf("assembleResult() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}

			running := 0.0
			for i, want := range tt.wantPct {
				if math.Abs(res.PctVar[i]-want) > 1e-10 {
					t.Errorf("PctVar[%d] = %v, want %v", i, res.PctVar[i], want)
				}
				running += want
				if math.Abs(res.CumPctVar[i]-running) > 1e-10 {
					t.Errorf("CumPctVar[%d] = %v, want %v", i, res.CumPctVar[i], running)
				}
			}
		})
	}
}

func TestCoordinatesScaling(t *testing.T) {
	f := &Factorization{
		U:      mat.NewDense(2, 2, []float64{1, 0, 0, 1}),
		D:      []float64{4, 2},
		V:      mat.NewDense(2, 2, []float64{0, 1, 1, 0}),
		Eigsum: 20,
	}
	res, err := assembleResult(f, RTStandardized, MethodExact)
	if err != nil {
		t.Fatal(err)
	}

	rc := res.RowCoordinates()
	if rc.At(0, 0) != 4 || rc.At(1, 1) != 2 {
		t.Errorf("RowCoordinates = %v, want diag(4,2)", mat.Formatted(rc))
	}
	cc := res.ColCoordinates()
	if cc.At(0, 1) != 2 || cc.At(1, 0) != 4 {
		t.Errorf("ColCoordinates mismatch: %v", mat.Formatted(cc))
	}
}
