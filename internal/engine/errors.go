package engine

import (
	"errors"
	"fmt"
	"strings"
)

type ErrorCode uint16

const (
	ErrCodeUnknown ErrorCode = iota
	ErrCodeCannotResolveType
	ErrCodeCannotResolveParameter
	ErrCodeCircularDependency
	ErrCodeMissingType
	ErrCodeFactoryMissingContext
	ErrCodeOverridingService
	ErrCodeTypeMismatch
	ErrCodeInvalidFactory
	ErrCodeHealthCheckFailed
	ErrCodeModuleApplyFailed
)

var codeNames = map[ErrorCode]string{
	ErrCodeUnknown:                "UNKNOWN",
	ErrCodeCannotResolveType:      "CANNOT_RESOLVE_TYPE",
	ErrCodeCannotResolveParameter: "CANNOT_RESOLVE_PARAMETER",
	ErrCodeCircularDependency:     "CIRCULAR_DEPENDENCY",
	ErrCodeMissingType:            "MISSING_TYPE",
	ErrCodeFactoryMissingContext:  "FACTORY_MISSING_CONTEXT",
	ErrCodeOverridingService:      "OVERRIDING_SERVICE",
	ErrCodeTypeMismatch:           "TYPE_MISMATCH",
	ErrCodeInvalidFactory:         "INVALID_FACTORY",
	ErrCodeHealthCheckFailed:      "HEALTH_CHECK_FAILED",
	ErrCodeModuleApplyFailed:      "MODULE_APPLY_FAILED",
}

func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", c)
}

// Error is the single error type the container surfaces. Key names the
// offending registration or request; Chain holds the dependency path that
// led to the failure, root first.
type Error struct {
	Code    ErrorCode
	Message string
	Key     string
	Chain   []string
	Cause   error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("[%s]", e.Code))

	if e.Key != "" {
		b.WriteString(fmt.Sprintf(" key=%q:", e.Key))
	}

	b.WriteString(" ")
	b.WriteString(e.Message)

	if len(e.Chain) > 0 {
		b.WriteString(" (")
		b.WriteString(strings.Join(e.Chain, " -> "))
		b.WriteString(")")
	}

	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}

	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

func (e *Error) WithKey(key string) *Error {
	e.Key = key
	return e
}

func (e *Error) WithChain(chain []string) *Error {
	e.Chain = chain
	return e
}

func NewError(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func errCannotResolveType(key string, chain []string) *Error {
	return NewError(
		ErrCodeCannotResolveType,
		fmt.Sprintf("no registration for %s", key),
		nil,
	).WithKey(key).WithChain(chain)
}

func errCannotResolveParameter(key, field, reason string, chain []string) *Error {
	return NewError(
		ErrCodeCannotResolveParameter,
		fmt.Sprintf("cannot satisfy dependency %q of %s: %s", field, key, reason),
		nil,
	).WithKey(key).WithChain(chain)
}

func errCircularDependency(chain []string) *Error {
	return NewError(
		ErrCodeCircularDependency,
		"circular dependency detected",
		nil,
	).WithChain(chain)
}

func errFactoryMissingContext(ref string) *Error {
	return NewError(
		ErrCodeFactoryMissingContext,
		fmt.Sprintf("deferred type reference %q cannot be resolved", ref),
		nil,
	).WithKey("#" + ref)
}

func errOverridingService(key string) *Error {
	return NewError(
		ErrCodeOverridingService,
		"a registration for this key already exists",
		nil,
	).WithKey(key)
}

func errTypeMismatch(key, detail string) *Error {
	return NewError(
		ErrCodeTypeMismatch,
		detail,
		nil,
	).WithKey(key)
}
