package loom

import (
	"errors"

	"github.com/loom-di/loom/internal/engine"
)

// Error is the structured error surfaced by every container operation. It
// carries a stable code, the offending key and, for planning failures, the
// dependency chain that led there.
type Error = engine.Error

type ErrorCode = engine.ErrorCode

const (
	ErrCodeUnknown                = engine.ErrCodeUnknown
	ErrCodeCannotResolveType      = engine.ErrCodeCannotResolveType
	ErrCodeCannotResolveParameter = engine.ErrCodeCannotResolveParameter
	ErrCodeCircularDependency     = engine.ErrCodeCircularDependency
	ErrCodeMissingType            = engine.ErrCodeMissingType
	ErrCodeFactoryMissingContext  = engine.ErrCodeFactoryMissingContext
	ErrCodeOverridingService      = engine.ErrCodeOverridingService
	ErrCodeTypeMismatch           = engine.ErrCodeTypeMismatch
	ErrCodeInvalidFactory         = engine.ErrCodeInvalidFactory
	ErrCodeHealthCheckFailed      = engine.ErrCodeHealthCheckFailed
	ErrCodeModuleApplyFailed      = engine.ErrCodeModuleApplyFailed
)

func hasCode(err error, code ErrorCode) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Cause
	}
	return false
}

func IsCannotResolveType(err error) bool {
	return hasCode(err, ErrCodeCannotResolveType)
}

func IsCannotResolveParameter(err error) bool {
	return hasCode(err, ErrCodeCannotResolveParameter)
}

func IsCircularDependency(err error) bool {
	return hasCode(err, ErrCodeCircularDependency)
}

func IsMissingType(err error) bool {
	return hasCode(err, ErrCodeMissingType)
}

func IsFactoryMissingContext(err error) bool {
	return hasCode(err, ErrCodeFactoryMissingContext)
}

func IsOverridingService(err error) bool {
	return hasCode(err, ErrCodeOverridingService)
}

func IsTypeMismatch(err error) bool {
	return hasCode(err, ErrCodeTypeMismatch)
}

func IsInvalidFactory(err error) bool {
	return hasCode(err, ErrCodeInvalidFactory)
}
