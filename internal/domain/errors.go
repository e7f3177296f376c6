// Package domain defines the core reminder entities and errors.
package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrEmptyText is returned when a task or reminder has no text.
	ErrEmptyText = errors.New("text cannot be empty")

	// ErrInvalidDelay is returned when a reminder delay is negative.
	ErrInvalidDelay = errors.New("delay must not be negative")

	// ErrInvalidOrder is returned when a reorder request is not a
	// permutation of the current task ids.
	ErrInvalidOrder = errors.New("invalid task order")

	// ErrInvalidTheme is returned for a theme other than light or dark.
	ErrInvalidTheme = errors.New("invalid theme")

	// ErrInvalidPermissionState is returned when a permission state string
	// is not one of granted, denied or default.
	ErrInvalidPermissionState = errors.New("invalid permission state")
)

// Reminder delivery errors. PermissionDenied and ChannelUnavailable are
// expected steady states that drive escalation; they are carried in
// ChannelOutcome values rather than returned up the stack.
var (
	// ErrPermissionDenied means the user has not allowed notifications.
	ErrPermissionDenied = errors.New("notification permission denied")

	// ErrChannelUnavailable means a channel cannot currently accept a
	// reminder: the background context is not controlling yet, or there is
	// no push subscription.
	ErrChannelUnavailable = errors.New("channel unavailable")

	// ErrDeliveryRejected means the remote push service answered with a
	// structured error.
	ErrDeliveryRejected = errors.New("delivery rejected")

	// ErrTransportFailure covers network and message passing failures.
	ErrTransportFailure = errors.New("transport failure")

	// ErrPlaybackBlocked means the audio cue could not be played. It is
	// always recovered locally.
	ErrPlaybackBlocked = errors.New("playback blocked")
)

// ValidationError describes a single invalid field.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// NewValidationError creates a ValidationError wrapping err.
func NewValidationError(field, message string, err error) *ValidationError {
	return &ValidationError{Field: field, Message: message, Err: err}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// Unwrap returns the underlying error, falling back to ErrValidation.
func (e *ValidationError) Unwrap() error {
	if e.Err == nil {
		return ErrValidation
	}
	return e.Err
}

// Is lets every ValidationError match ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
