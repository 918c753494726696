package container

import (
	"errors"
	"fmt"
)

var (
	ErrReservedName   = errors.New("reserved service name")
	ErrDuplicate      = errors.New("service already registered")
	ErrInvalidService = errors.New("invalid service definition")
	ErrInvalidState   = errors.New("invalid container state")
	ErrUnresolved     = errors.New("service was never registered")
	ErrConstruct      = errors.New("constructor failed")
	ErrInit           = errors.New("initializer failed")
	ErrDestroy        = errors.New("destructor failed")
)

// ServiceError ties a failure kind to the service it happened on.
type ServiceError struct {
	Service string
	Kind    error
	Cause   error
}

func (e *ServiceError) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Service, e.Kind)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap yields the cause only; the kind matches through Is.
func (e *ServiceError) Unwrap() error {
	return e.Cause
}

func (e *ServiceError) Is(target error) bool {
	return errors.Is(e.Kind, target)
}

func serviceError(service string, kind, cause error) *ServiceError {
	return &ServiceError{Service: service, Kind: kind, Cause: cause}
}
