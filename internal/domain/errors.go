package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidRequest       = errors.New("invalid sourcing request")
	ErrUnknownHarvestSystem = errors.New("unknown harvest system")
	ErrNonPositiveFeedstock = errors.New("non-positive feedstock")
	ErrServiceUnavailable   = errors.New("external service unavailable")
)

// RepositoryError aborts a run: the candidate query failed.
type RepositoryError struct {
	Radius float64
	Err    error
}

func (e *RepositoryError) Error() string {
	return fmt.Sprintf("cluster query at radius %.0f: %v", e.Radius, e.Err)
}

func (e *RepositoryError) Unwrap() error { return e.Err }

// UnavailableError aborts a run: a circuit breaker refused calls to an external service
// while a band was being evaluated. No cluster of that band is recorded as failed.
type UnavailableError struct {
	Radius float64
	Err    error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("band at radius %.0f: %v", e.Radius, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// EvaluationError isolates a single cluster failure; the run continues.
type EvaluationError struct {
	ClusterID string
	Stage     string
	Err       error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("cluster %s %s: %v", e.ClusterID, e.Stage, e.Err)
}

func (e *EvaluationError) Unwrap() error { return e.Err }

// RoutingBatchError reports a failed multi-stop round trip for one chunk of stops.
type RoutingBatchError struct {
	Chunk int
	Stops int
	Err   error
}

func (e *RoutingBatchError) Error() string {
	return fmt.Sprintf("round trip chunk %d (%d stops): %v", e.Chunk, e.Stops, e.Err)
}

func (e *RoutingBatchError) Unwrap() error { return e.Err }
