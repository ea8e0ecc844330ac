package proba

import "errors"

var (
	// ErrShape is returned when parameters cannot be broadcast to a common shape.
	ErrShape = errors.New("parameters cannot be broadcast to a common shape")

	// ErrLabelNotFound is returned when a requested label is absent from an axis.
	ErrLabelNotFound = errors.New("label not found")

	// ErrDuplicateLabel is returned when an index is built from repeated labels.
	ErrDuplicateLabel = errors.New("duplicate label")

	// ErrUnsupportedLabel is returned for labels that are not comparable scalars.
	ErrUnsupportedLabel = errors.New("unsupported label type")

	// ErrPositionOutOfRange is returned for positions outside an axis.
	ErrPositionOutOfRange = errors.New("position out of range")

	// ErrKeyArity is returned when a view is indexed with more than two keys.
	ErrKeyArity = errors.New("there should be one or two keys, e.g. Get(rows) or Get(rows, cols)")

	// ErrLabelMismatch is returned when a query frame is not labeled by a
	// subset of the table's labels.
	ErrLabelMismatch = errors.New("query labels are not a subset of the distribution labels")

	// ErrInvalidParameter is returned when argument validation rejects a parameter value.
	ErrInvalidParameter = errors.New("invalid distribution parameter")

	// ErrUnknownParameter is returned when a parameter name is not declared by the family.
	ErrUnknownParameter = errors.New("unknown distribution parameter")

	// ErrKeyType is returned when a view key cannot be interpreted as a selector.
	ErrKeyType = errors.New("unsupported key type")

	// ErrInvalidProbability is returned by quantile queries outside [0, 1]
	// unless NaN statistics are allowed.
	ErrInvalidProbability = errors.New("probability must be in [0, 1]")

	// ErrUnknownFamily is returned by FamilyByName.
	ErrUnknownFamily = errors.New("unknown distribution family")

	// ErrSampleCount is returned when a non-positive number of draws is requested.
	ErrSampleCount = errors.New("number of samples must be positive")
)
