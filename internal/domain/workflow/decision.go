package workflow

import (
	"fmt"
	"strings"

	"github.com/hima852/expenseflow/internal/domain/entity"
)

// ReviewDecision is the validated request to move a claim through one
// stage of the chain. It is constructed and checked before any store
// call; free-form field maps never reach the repositories.
type ReviewDecision struct {
	Stage        Stage
	TargetStatus Status
	Comment      string
}

// NewReviewDecision builds a decision from a target status string and
// comment, deriving the stage from the status.
func NewReviewDecision(targetStatus, comment string) (ReviewDecision, error) {
	status := Status(targetStatus)
	stage, ok := StageForStatus(status)
	if !ok {
		return ReviewDecision{}, fmt.Errorf("%w: %q is not a reviewable status", ErrInvalidDecision, targetStatus)
	}
	d := ReviewDecision{
		Stage:        stage,
		TargetStatus: status,
		Comment:      strings.TrimSpace(comment),
	}
	if err := d.Validate(); err != nil {
		return ReviewDecision{}, err
	}
	return d, nil
}

// Validate checks internal consistency: the stage exists, the target
// status belongs to the stage, and the mandatory comment is present.
func (d ReviewDecision) Validate() error {
	if !d.Stage.IsValid() {
		return fmt.Errorf("%w: unknown stage %q", ErrInvalidDecision, d.Stage)
	}
	if d.TargetStatus != d.Stage.ApprovedStatus() && d.TargetStatus != d.Stage.RejectedStatus() {
		return fmt.Errorf("%w: status %q does not belong to stage %q", ErrInvalidDecision, d.TargetStatus, d.Stage)
	}
	if d.Comment == "" {
		return entity.NewMissingFieldsError("comment")
	}
	return nil
}

// Approved reports whether the decision approves the claim.
func (d ReviewDecision) Approved() bool {
	return d.TargetStatus == d.Stage.ApprovedStatus()
}
