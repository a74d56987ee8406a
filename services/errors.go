package services

import (
	"context"
	"errors"
)

// ErrorKind classifies remote failures so callers can pattern-match on the
// kind instead of comparing error-code strings.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindNotFound
	KindPermissionDenied
	KindConditionFailed
	KindCancelled
)

// ServiceError tags a remote failure with its kind. Kind is part of the API:
// KindPermissionDenied and KindConditionFailed are expected race outcomes in
// several flows and callers intentionally ignore them.
type ServiceError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *ServiceError) Unwrap() error { return e.Err }

// KindOf extracts the ErrorKind from an error chain
func KindOf(err error) ErrorKind {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Kind
	}
	if errors.Is(err, context.Canceled) {
		return KindCancelled
	}
	return KindUnknown
}

// IsExpectedRace reports whether an error is a security-rule or conditional
// race that background flows swallow: e.g. a chat-participant update rejected
// because the chat was deleted first, or a join attempt losing the capacity
// condition.
func IsExpectedRace(err error) bool {
	switch KindOf(err) {
	case KindPermissionDenied, KindConditionFailed:
		return true
	}
	return false
}
