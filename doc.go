// Package scica provides correspondence analysis (CA) for count-scale data
// in Go, including a multi-table extension that aligns several matrices
// sharing one axis into a joint latent space.
//
// SciCA factorizes non-negative matrices through weighted residuals and a
// truncated singular value decomposition, the count-data analogue of PCA.
//
// # Features
//
// - Single-table CA with selectable residual transforms
// - Multi-table alignment with optional combined row weights
// - Exact (full SVD + truncate) and iterative approximate decomposition
// - Sparse CSR inputs stay sparse through weighting and concatenation
// - Structured errors and logging throughout
//
// # Installation
//
// Install SciCA using go get:
//
//	go get github.com/YuminosukeSato/scica
//
// # Quick Start
//
// Here's a simple example of running CA on a count matrix:
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//	    "github.com/YuminosukeSato/scica/ca"
//	    "gonum.org/v1/gonum/mat"
//	)
//
//	func main() {
//	    // Create a small contingency table
//	    x := mat.NewDense(3, 2, []float64{1, 2, 3, 4, 0, 1})
//
//	    res, err := ca.Fit(x, ca.WithNComp(2), ca.WithMethod(ca.MethodExact))
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    fmt.Println("singular values:", res.D)
//	    fmt.Println("% variance:", res.PctVar)
//	}
//
// # Packages
//
// The library is organized into several packages:
//
//   - ca: the core pipeline (weights, residuals, decomposition, results)
//   - sparse: CSR matrices compatible with gonum's mat.Matrix
//   - core/model: estimator state shared by CA and MultiCA
//   - pkg/errors: structured error taxonomy and warnings
//   - pkg/log: structured logging interface
//
// # Multi-table alignment
//
// Several tables sharing their row axis can be embedded jointly:
//
//	res, err := ca.FitMulti([]mat.Matrix{a, b},
//	    ca.WithNComp(10),
//	    ca.WithRWContrib([]float64{1, 1}),
//	)
//
// # License
//
// SciCA is released under the MIT License.
package scica
