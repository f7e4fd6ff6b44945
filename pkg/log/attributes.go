// Package log defines standard attribute keys for correspondence-analysis
// operations.
//
// Using these keys consistently enables structured log analysis across the
// pipeline: weight derivation, preprocessing, decomposition, and multi-table
// alignment. Keys follow a hierarchical naming convention (e.g. "data.rows",
// "ca.ncomp").
package log

// Estimator and operation context.
const (
	// EstimatorKey identifies the estimator type.
	// Examples: "CA", "MultiCA"
	EstimatorKey = "estimator.name"

	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "fit_transform", "decompose", "preprocess"
	OperationKey = "ca.operation"

	// ComponentKey identifies which package is performing the operation.
	// Examples: "ca", "sparse"
	ComponentKey = "ca.component"
)

// Data shape and pipeline configuration.
const (
	// RowsKey indicates the number of rows of the matrix being processed.
	RowsKey = "data.rows"

	// ColsKey indicates the number of columns of the matrix being processed.
	ColsKey = "data.cols"

	// TablesKey indicates the number of tables in a multi-table call.
	TablesKey = "data.tables"

	// SparseKey indicates whether the input is held in a sparse representation.
	SparseKey = "data.sparse"

	// ComponentsKey indicates the requested decomposition rank.
	ComponentsKey = "ca.ncomp"

	// ResidualTypeKey records the residual transform actually applied.
	ResidualTypeKey = "ca.rtype"

	// VSTKey records the variance-stabilizing transform applied.
	VSTKey = "ca.vst"

	// MethodKey records the decomposition algorithm ("iterative" or "exact").
	MethodKey = "ca.method"
)

// Performance metrics.
const (
	// DurationMsKey records elapsed time in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// IterationsKey records the number of subspace iterations performed.
	IterationsKey = "perf.iterations"
)

// Error context.
const (
	// ErrorKey carries the error value itself.
	ErrorKey = "error"

	// ErrorTypeKey carries the error's taxonomy name.
	// Examples: "ConfigurationError", "RankTooLargeError"
	ErrorTypeKey = "error.type"
)
