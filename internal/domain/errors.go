package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrRateLimitTimeout reports that a token could not be acquired
	// before the caller's deadline.
	ErrRateLimitTimeout = errors.New("rate limit wait timed out")

	// ErrRunInProgress rejects a trigger while another run is active.
	ErrRunInProgress = errors.New("a pipeline run is already in progress")

	// ErrDuplicateContent marks a candidate whose hash is already stored.
	ErrDuplicateContent = errors.New("duplicate content")

	// ErrQualityRejected marks an item outside the quality thresholds.
	ErrQualityRejected = errors.New("content rejected by quality filter")

	// ErrNotFound reports a missing record.
	ErrNotFound = errors.New("record not found")

	// ErrStateConflict reports that a record's state changed between
	// reading it and writing the transition; the write did not happen.
	ErrStateConflict = errors.New("record state changed concurrently")
)

// ResolutionError reports a URL that could not be classified into a
// platform and canonical id.
type ResolutionError struct {
	URL    string
	Reason string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("cannot resolve %s: %s", e.URL, e.Reason)
}

// FetchError wraps an adapter failure with its retry class.
type FetchError struct {
	Transient bool
	Err       error
}

func (e *FetchError) Error() string {
	kind := "permanent"
	if e.Transient {
		kind = "transient"
	}
	return fmt.Sprintf("fetch failed (%s): %v", kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// TransientFetch builds a retryable fetch error.
func TransientFetch(err error) *FetchError {
	return &FetchError{Transient: true, Err: err}
}

// PermanentFetch builds a non-retryable fetch error.
func PermanentFetch(err error) *FetchError {
	return &FetchError{Transient: false, Err: err}
}

// IsTransientFetch reports whether err is a retryable fetch failure.
func IsTransientFetch(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.Transient
}

// InvalidStateTransitionError rejects a curation transition that the
// state machine does not allow. The record is left unchanged.
type InvalidStateTransitionError struct {
	From State
	To   State
}

func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("invalid state transition %s -> %s", e.From, e.To)
}

// GenerationError wraps an AI collaborator failure with its retry class.
type GenerationError struct {
	Transient bool
	Err       error
}

func (e *GenerationError) Error() string {
	kind := "permanent"
	if e.Transient {
		kind = "transient"
	}
	return fmt.Sprintf("ai generation failed (%s): %v", kind, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// IsTransientGeneration reports whether err is a retryable generation
// failure (rate limited or service error, per the collaborator contract).
func IsTransientGeneration(err error) bool {
	var ge *GenerationError
	return errors.As(err, &ge) && ge.Transient
}
