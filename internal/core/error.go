// FILE: stripchess/internal/core/error.go
package core

import (
	"errors"
	"fmt"
)

// Error codes
const (
	ErrCodeInvalidPosition   = "INVALID_POSITION"
	ErrCodeInvalidMove       = "INVALID_MOVE"
	ErrCodeInvalidRequest    = "INVALID_REQUEST"
	ErrCodeInvalidContent    = "INVALID_CONTENT_TYPE"
	ErrCodeJobNotFound       = "JOB_NOT_FOUND"
	ErrCodeQueueFull         = "QUEUE_FULL"
	ErrCodeRateLimitExceeded = "RATE_LIMIT_EXCEEDED"
	ErrCodeInternalError     = "INTERNAL_ERROR"
)

// ErrIllegalMove matches every IllegalMoveError via errors.Is
var ErrIllegalMove = errors.New("illegal move")

// MalformedPositionError reports a record that violates the four-field,
// sixteen-cell, piece-alphabet contract
type MalformedPositionError struct {
	Record string
	Reason string
}

func (e *MalformedPositionError) Error() string {
	return fmt.Sprintf("malformed position %q: %s", e.Record, e.Reason)
}

// IllegalMoveError reports a requested move that is not legal in the position
type IllegalMoveError struct {
	From, To int
	Record   string
}

func (e *IllegalMoveError) Error() string {
	return fmt.Sprintf("illegal move (%d,%d) in %q", e.From, e.To, e.Record)
}

func (e *IllegalMoveError) Is(target error) bool {
	return target == ErrIllegalMove
}
