package models

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidLeaseTerms    = errors.New("models: invalid lease terms")
	ErrStateConflict        = errors.New("models: conflict_or_bad_state")
	ErrApplicationNotFound  = errors.New("models: application not found")
	ErrObligationNotFound   = errors.New("models: obligation not found")
	ErrPaymentNotFound      = errors.New("models: payment not found")
	ErrUserNotFound         = errors.New("models: user not found")
	ErrInvalidCredentials   = errors.New("models: invalid credentials")
	ErrDuplicateEmail       = errors.New("models: duplicate email")
	ErrObligationsExist     = errors.New("models: obligations already generated for plan version")
	ErrForbidden            = errors.New("models: role not permitted for action")
	ErrBadWebhookSignature  = errors.New("models: webhook signature mismatch")
	ErrUnknownProviderEvent = errors.New("models: unknown provider event")
)

// StateConflictError reports a failed status compare-and-swap together
// with the status actually found, so the caller can decide whether to
// retry or surface it.
type StateConflictError struct {
	Expected string
	Actual   string
}

func (e *StateConflictError) Error() string {
	return fmt.Sprintf("conflict_or_bad_state: expected %q, current %q", e.Expected, e.Actual)
}

func (e *StateConflictError) Unwrap() error { return ErrStateConflict }
