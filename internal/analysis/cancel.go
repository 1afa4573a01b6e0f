package analysis

import (
	"errors"
	"fmt"
	"sync/atomic"
)

// Token is an externally settable cancellation flag. The analysis pipeline
// polls it at stage-specific intervals; a host that wants to abort a running
// analysis calls Cancel from any goroutine.
//
// A nil *Token is valid and never cancelled, so callers that don't need
// cancellation can pass nothing.
type Token struct {
	cancelled atomic.Bool
}

// NewToken returns a fresh, uncancelled token.
func NewToken() *Token {
	return &Token{}
}

// Cancel requests cancellation. Safe to call multiple times and from
// concurrent goroutines.
func (t *Token) Cancel() {
	if t != nil {
		t.cancelled.Store(true)
	}
}

// Cancelled reports whether cancellation has been requested.
func (t *Token) Cancelled() bool {
	return t != nil && t.cancelled.Load()
}

// Cancelled is the error returned when an analysis is interrupted. It names
// the stage that observed the cancellation. No partial results accompany it.
type CancelledError struct {
	Stage string
}

func (e *CancelledError) Error() string {
	return fmt.Sprintf("analysis cancelled during %s", e.Stage)
}

// IsCancelled reports whether err stems from a cancelled analysis.
func IsCancelled(err error) bool {
	var ce *CancelledError
	return errors.As(err, &ce)
}

// checkCancel returns a stage-tagged cancellation error when the token has
// been tripped, nil otherwise.
func checkCancel(token *Token, stage string) error {
	if token.Cancelled() {
		return &CancelledError{Stage: stage}
	}
	return nil
}
