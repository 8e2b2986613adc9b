package tasks

import (
	"errors"

	"costwatch/pkg/billing"
	"costwatch/pkg/slack"
)

// ErrorKind classifies a failure for the run summary, so per-project
// outcomes can be diagnosed without digging through logs.
type ErrorKind string

const (
	ErrKindDataSourceUnavailable ErrorKind = "data_source_unavailable"
	ErrKindQueryCostExceeded     ErrorKind = "query_cost_exceeded"
	ErrKindCacheCorrupt          ErrorKind = "cache_corrupt"
	ErrKindCacheWriteFailed      ErrorKind = "cache_write_failed"
	ErrKindDeliveryTransient     ErrorKind = "delivery_transient"
	ErrKindDeliveryPermanent     ErrorKind = "delivery_permanent"
	ErrKindConfigInvalid         ErrorKind = "config_invalid"
)

// classifyError maps a stage error onto an ErrorKind
func classifyError(stage Stage, err error) ErrorKind {
	switch stage {
	case StageEstimate:
		if errors.Is(err, billing.ErrCostLimitExceeded) {
			return ErrKindQueryCostExceeded
		}
		return ErrKindDataSourceUnavailable
	case StageFetch:
		return ErrKindDataSourceUnavailable
	case StageDeliver:
		if slack.IsPermanent(err) {
			return ErrKindDeliveryPermanent
		}
		return ErrKindDeliveryTransient
	}
	return ErrKindDataSourceUnavailable
}
