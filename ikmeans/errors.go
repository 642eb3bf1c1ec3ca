package ikmeans

import "errors"

var (
	// ErrNotTrained is returned when assigning points with a model that has no centers.
	ErrNotTrained = errors.New("ikmeans: model has no centers")

	// ErrDimensionMismatch is returned when a buffer does not match the model dimensionality.
	ErrDimensionMismatch = errors.New("ikmeans: dimension mismatch")

	// ErrInvalidEncoding is returned by UnmarshalBinary for malformed input.
	ErrInvalidEncoding = errors.New("ikmeans: invalid model encoding")

	// ErrUnknownMethod is returned when training with an unsupported method.
	ErrUnknownMethod = errors.New("ikmeans: unknown method")
)
