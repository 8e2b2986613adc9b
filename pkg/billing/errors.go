package billing

import (
	"errors"
	"fmt"
)

// Sentinel errors for billing data source operations
var (
	// ErrConnectionFailed indicates the billing store is unreachable
	ErrConnectionFailed = errors.New("billing store connection failed")

	// ErrCostLimitExceeded indicates the dry-run estimate is over the
	// configured query cost ceiling
	ErrCostLimitExceeded = errors.New("estimated query cost exceeds limit")
)

// QueryError wraps a failed billing query with its context
type QueryError struct {
	Operation string
	Table     string
	Err       error
}

// Error implements the error interface
func (e *QueryError) Error() string {
	if e.Table != "" {
		return fmt.Sprintf("%s failed for table '%s': %v", e.Operation, e.Table, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Operation, e.Err)
}

// Unwrap returns the wrapped error
func (e *QueryError) Unwrap() error {
	return e.Err
}

func wrapQueryError(operation, table string, err error) error {
	if err == nil {
		return nil
	}
	return &QueryError{Operation: operation, Table: table, Err: err}
}
