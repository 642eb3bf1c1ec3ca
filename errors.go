package hikmeans

import (
	"errors"
	"fmt"

	"github.com/hupe1980/hikmeans/ikmeans"
)

var (
	// ErrInvalidArgument is matched by every configuration error.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrResourceExhausted is returned when training exceeds the memory limit.
	ErrResourceExhausted = errors.New("resource exhausted")

	// ErrNotTrained is returned when pushing or saving before a successful Train.
	ErrNotTrained = errors.New("tree is not trained")

	// ErrClosed is returned by operations on a closed tree.
	ErrClosed = errors.New("tree is closed")

	// ErrIncompleteCode is returned when a path code does not reach the full depth.
	ErrIncompleteCode = errors.New("path code does not reach full depth")

	// ErrNotSerializable is returned when a node model cannot be encoded or decoded.
	ErrNotSerializable = errors.New("model is not serializable")
)

// ErrInvalidConfig indicates dimensionality, branching factor or depth below 1.
type ErrInvalidConfig struct {
	Dim   int
	K     int
	Depth int
}

func (e *ErrInvalidConfig) Error() string {
	return fmt.Sprintf("invalid configuration: dim=%d k=%d depth=%d (all must be >= 1)", e.Dim, e.K, e.Depth)
}

// Is reports ErrInvalidArgument as a match.
func (e *ErrInvalidConfig) Is(target error) bool { return target == ErrInvalidArgument }

// ErrDimensionMismatch indicates an input or output buffer of the wrong size.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
	cause    error
}

func (e *ErrDimensionMismatch) Error() string {
	if e.Expected == 0 && e.Actual == 0 && e.cause != nil {
		return "dimension mismatch: " + e.cause.Error()
	}
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

func (e *ErrDimensionMismatch) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	var dm *ErrDimensionMismatch
	if errors.As(err, &dm) {
		return err
	}
	if errors.Is(err, ikmeans.ErrDimensionMismatch) {
		return &ErrDimensionMismatch{cause: err}
	}

	return err
}
