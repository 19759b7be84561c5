// Package workflow implements the review state machine for expense
// claims: pending -> coordinator -> hr -> accounts, where each stage
// either approves (advancing the chain) or rejects (ending it), and an
// owner edit resets any status back to pending.
package workflow

import (
	"github.com/hima852/expenseflow/internal/domain/entity"
)

// Next validates a review decision against the current status and
// returns the status it produces. The only precondition is that the
// claim currently holds the stage's required status; everything else
// (role, department) is the caller's gate.
func Next(current Status, d ReviewDecision) (Status, error) {
	if err := d.Validate(); err != nil {
		return "", err
	}
	if !current.IsValid() {
		return "", &entity.InvalidTransitionError{
			Current:   current.String(),
			Requested: d.TargetStatus.String(),
		}
	}
	if current != d.Stage.RequiredStatus() {
		return "", &entity.InvalidTransitionError{
			Current:   current.String(),
			Requested: d.TargetStatus.String(),
		}
	}
	return d.TargetStatus, nil
}

// CanReview reports whether the stage may act on the current status.
func CanReview(current Status, stage Stage) bool {
	return stage.IsValid() && current == stage.RequiredStatus()
}

// ResetStatus is the status an owner edit forces, regardless of the
// prior status. The edit re-enters the chain from the top; callers must
// also clear all three reviewer triples.
func ResetStatus() Status {
	return StatusPending
}
