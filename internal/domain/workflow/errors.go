package workflow

import "errors"

// ErrInvalidDecision is returned when a review decision is internally
// inconsistent (unknown stage, status not owned by the stage).
var ErrInvalidDecision = errors.New("invalid review decision")
