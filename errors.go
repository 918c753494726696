package depload

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/multierr"

	"github.com/4S1ght/depload/internal/container"
	"github.com/4S1ght/depload/internal/graph"
	"github.com/4S1ght/depload/internal/reflect"
)

type ErrorCode uint16

const (
	ErrCodeUnknown ErrorCode = iota
	ErrCodeServiceNotFound
	ErrCodeCircularDependency
	ErrCodeDuplicateService
	ErrCodeReservedName
	ErrCodeInvalidService
	ErrCodeInstantiationFailed
	ErrCodeConstructionFailed
	ErrCodeInitializationFailed
	ErrCodeDestructionFailed
	ErrCodeInvalidState
	ErrCodeValidationFailed
	ErrCodeHealthCheckFailed
	ErrCodeTypeMismatch
	ErrCodeModuleApplyFailed
)

var codeNames = map[ErrorCode]string{
	ErrCodeUnknown:              "UNKNOWN",
	ErrCodeServiceNotFound:      "SERVICE_NOT_FOUND",
	ErrCodeCircularDependency:   "CIRCULAR_DEPENDENCY",
	ErrCodeDuplicateService:     "DUPLICATE_SERVICE",
	ErrCodeReservedName:         "RESERVED_NAME",
	ErrCodeInvalidService:       "INVALID_SERVICE",
	ErrCodeInstantiationFailed:  "INSTANTIATION_FAILED",
	ErrCodeConstructionFailed:   "CONSTRUCTION_FAILED",
	ErrCodeInitializationFailed: "INITIALIZATION_FAILED",
	ErrCodeDestructionFailed:    "DESTRUCTION_FAILED",
	ErrCodeInvalidState:         "INVALID_STATE",
	ErrCodeValidationFailed:     "VALIDATION_FAILED",
	ErrCodeHealthCheckFailed:    "HEALTH_CHECK_FAILED",
	ErrCodeTypeMismatch:         "TYPE_MISMATCH",
	ErrCodeModuleApplyFailed:    "MODULE_APPLY_FAILED",
}

func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", c)
}

// Sentinels for errors.Is. Matching compares codes only.
var (
	ErrServiceNotFound      = &Error{Code: ErrCodeServiceNotFound}
	ErrCircularDependency   = &Error{Code: ErrCodeCircularDependency}
	ErrDuplicateService     = &Error{Code: ErrCodeDuplicateService}
	ErrReservedName         = &Error{Code: ErrCodeReservedName}
	ErrInvalidService       = &Error{Code: ErrCodeInvalidService}
	ErrInstantiation        = &Error{Code: ErrCodeInstantiationFailed}
	ErrConstructionFailed   = &Error{Code: ErrCodeConstructionFailed}
	ErrInitializationFailed = &Error{Code: ErrCodeInitializationFailed}
	ErrDestructionFailed    = &Error{Code: ErrCodeDestructionFailed}
	ErrInvalidState         = &Error{Code: ErrCodeInvalidState}
	ErrValidationFailed     = &Error{Code: ErrCodeValidationFailed}
	ErrHealthCheckFailed    = &Error{Code: ErrCodeHealthCheckFailed}
	ErrTypeMismatch         = &Error{Code: ErrCodeTypeMismatch}
)

type Error struct {
	Code    ErrorCode
	Message string
	Service string
	Cause   error
	Stack   []string
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("[%s]", e.Code))

	if e.Service != "" {
		b.WriteString(fmt.Sprintf(" service=%q:", e.Service))
	}

	if e.Message != "" {
		b.WriteString(" ")
		b.WriteString(e.Message)
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

func (e *Error) WithService(service string) *Error {
	e.Service = service
	return e
}

func (e *Error) WithStack(stack []string) *Error {
	e.Stack = stack
	return e
}

func newError(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func errServiceNotFound(name string) *Error {
	return newError(ErrCodeServiceNotFound, "no instance available", nil).WithService(name)
}

func errCircularDependency(chain []string) *Error {
	return newError(
		ErrCodeCircularDependency,
		fmt.Sprintf("circular dependency detected: %s", strings.Join(chain, " -> ")),
		nil,
	).WithStack(chain)
}

func errTypeMismatch(name string, want string, got any) *Error {
	return newError(
		ErrCodeTypeMismatch,
		fmt.Sprintf("expected %s, got %s", want, reflect.TypeNameOf(got)),
		nil,
	).WithService(name)
}

func errValidationFailed(cause error) *Error {
	return newError(ErrCodeValidationFailed, "container validation failed", cause)
}

func errHealthCheckFailed(name string, cause error) *Error {
	return newError(ErrCodeHealthCheckFailed, "health check failed", cause).WithService(name)
}

var kindCodes = []struct {
	kind    error
	code    ErrorCode
	message string
}{
	{container.ErrReservedName, ErrCodeReservedName, fmt.Sprintf("%q is reserved for unresolved dependencies", PlaceholderName)},
	{container.ErrDuplicate, ErrCodeDuplicateService, "service already registered"},
	{container.ErrInvalidService, ErrCodeInvalidService, "invalid service definition"},
	{container.ErrInvalidState, ErrCodeInvalidState, "operation not allowed in the current state"},
	{container.ErrUnresolved, ErrCodeInstantiationFailed, "cannot instantiate a service that was never registered"},
	{container.ErrConstruct, ErrCodeConstructionFailed, "constructor returned an error"},
	{container.ErrInit, ErrCodeInitializationFailed, "initializer failed"},
	{container.ErrDestroy, ErrCodeDestructionFailed, "destructor failed"},
}

// wrapError converts errors from the internal packages into *Error values,
// keeping every element of a combined error.
func wrapError(err error) error {
	switch err.(type) {
	case nil:
		return nil
	case *Error, *graph.CycleError, *container.ServiceError:
		return wrapOne(err)
	}

	errs := multierr.Errors(err)
	if len(errs) == 1 {
		return wrapOne(errs[0])
	}

	wrapped := make([]error, len(errs))
	for i, e := range errs {
		wrapped[i] = wrapOne(e)
	}
	return multierr.Combine(wrapped...)
}

func wrapOne(err error) error {
	switch e := err.(type) {
	case *Error:
		return e
	case *graph.CycleError:
		return errCircularDependency(e.Path)
	case *container.ServiceError:
		for _, kc := range kindCodes {
			if errors.Is(e.Kind, kc.kind) {
				return newError(kc.code, kc.message, e.Cause).WithService(e.Service)
			}
		}
	}

	return newError(ErrCodeUnknown, "unexpected failure", err)
}

func IsNotFound(err error) bool {
	return hasCode(err, ErrCodeServiceNotFound)
}

func IsCircularDependency(err error) bool {
	return hasCode(err, ErrCodeCircularDependency)
}

func IsDuplicateService(err error) bool {
	return hasCode(err, ErrCodeDuplicateService)
}

func IsReservedName(err error) bool {
	return hasCode(err, ErrCodeReservedName)
}

func IsInstantiationFailed(err error) bool {
	return hasCode(err, ErrCodeInstantiationFailed)
}

func IsInitializationFailed(err error) bool {
	return hasCode(err, ErrCodeInitializationFailed)
}

func IsDestructionFailed(err error) bool {
	return hasCode(err, ErrCodeDestructionFailed)
}

func IsInvalidState(err error) bool {
	return hasCode(err, ErrCodeInvalidState)
}

func hasCode(err error, code ErrorCode) bool {
	return errors.Is(err, &Error{Code: code})
}
