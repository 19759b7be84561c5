package workflow

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hima852/expenseflow/internal/domain/entity"
)

func TestNext_ValidTransitions(t *testing.T) {
	tests := []struct {
		name    string
		current Status
		target  Status
	}{
		{"coordinator approves pending", StatusPending, StatusCoordinatorApproved},
		{"coordinator rejects pending", StatusPending, StatusCoordinatorRejected},
		{"hr approves coordinator_approved", StatusCoordinatorApproved, StatusHRApproved},
		{"hr rejects coordinator_approved", StatusCoordinatorApproved, StatusHRRejected},
		{"accounts approves hr_approved", StatusHRApproved, StatusAccountsApproved},
		{"accounts rejects hr_approved", StatusHRApproved, StatusAccountsRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := NewReviewDecision(tt.target.String(), "looks fine")
			require.NoError(t, err)

			next, err := Next(tt.current, d)
			require.NoError(t, err)
			assert.Equal(t, tt.target, next)
		})
	}
}

func TestNext_WrongCurrentStatus(t *testing.T) {
	tests := []struct {
		name    string
		current Status
		target  Status
	}{
		{"hr cannot act on pending", StatusPending, StatusHRApproved},
		{"accounts cannot act on pending", StatusPending, StatusAccountsApproved},
		{"accounts cannot act on coordinator_approved", StatusCoordinatorApproved, StatusAccountsRejected},
		{"coordinator cannot re-approve", StatusCoordinatorApproved, StatusCoordinatorApproved},
		{"no stage acts on coordinator_rejected", StatusCoordinatorRejected, StatusHRApproved},
		{"no stage acts on accounts_approved", StatusAccountsApproved, StatusAccountsApproved},
		{"no stage acts on hr_rejected", StatusHRRejected, StatusAccountsApproved},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := NewReviewDecision(tt.target.String(), "trying anyway")
			require.NoError(t, err)

			_, err = Next(tt.current, d)
			var transitionErr *entity.InvalidTransitionError
			require.ErrorAs(t, err, &transitionErr)
			assert.Equal(t, tt.current.String(), transitionErr.Current)
		})
	}
}

func TestNext_UnknownCurrentStatus(t *testing.T) {
	d, err := NewReviewDecision(StatusCoordinatorApproved.String(), "ok")
	require.NoError(t, err)

	_, err = Next(Status("garbage"), d)
	var transitionErr *entity.InvalidTransitionError
	assert.ErrorAs(t, err, &transitionErr)
}

func TestNewReviewDecision(t *testing.T) {
	t.Run("derives stage from target status", func(t *testing.T) {
		d, err := NewReviewDecision("hr_rejected", "missing receipts")
		require.NoError(t, err)
		assert.Equal(t, StageHR, d.Stage)
		assert.False(t, d.Approved())
	})

	t.Run("pending is not a reviewable target", func(t *testing.T) {
		_, err := NewReviewDecision("pending", "no")
		assert.ErrorIs(t, err, ErrInvalidDecision)
	})

	t.Run("unknown status rejected", func(t *testing.T) {
		_, err := NewReviewDecision("approved", "no")
		assert.ErrorIs(t, err, ErrInvalidDecision)
	})

	t.Run("comment is mandatory", func(t *testing.T) {
		_, err := NewReviewDecision("coordinator_approved", "   ")
		var validationErr *entity.ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "MISSING_REQUIRED_FIELDS", validationErr.ErrorCode())
		assert.Contains(t, validationErr.Fields, "comment")
	})
}

func TestCanReview(t *testing.T) {
	assert.True(t, CanReview(StatusPending, StageCoordinator))
	assert.True(t, CanReview(StatusCoordinatorApproved, StageHR))
	assert.True(t, CanReview(StatusHRApproved, StageAccounts))

	assert.False(t, CanReview(StatusPending, StageHR))
	assert.False(t, CanReview(StatusHRApproved, StageCoordinator))
	assert.False(t, CanReview(StatusAccountsApproved, StageAccounts))
	assert.False(t, CanReview(StatusPending, Stage("auditor")))
}

func TestStageChain(t *testing.T) {
	chain := Stages()
	require.Len(t, chain, 3)

	// Each stage's required status is the previous stage's approval.
	assert.Equal(t, StatusPending, chain[0].RequiredStatus())
	for i := 1; i < len(chain); i++ {
		assert.Equal(t, chain[i-1].ApprovedStatus(), chain[i].RequiredStatus())
	}

	// Every stage-owned status maps back to its stage.
	for _, stage := range chain {
		for _, status := range []Status{stage.ApprovedStatus(), stage.RejectedStatus()} {
			got, ok := StageForStatus(status)
			require.True(t, ok, status)
			assert.Equal(t, stage, got)
		}
	}

	_, ok := StageForStatus(StatusPending)
	assert.False(t, ok)
}

func TestStatusClassification(t *testing.T) {
	terminal := []Status{
		StatusCoordinatorRejected, StatusHRRejected,
		StatusAccountsRejected, StatusAccountsApproved,
	}
	for _, s := range terminal {
		assert.True(t, s.IsTerminal(), s)
	}
	for _, s := range []Status{StatusPending, StatusCoordinatorApproved, StatusHRApproved} {
		assert.False(t, s.IsTerminal(), s)
	}

	assert.True(t, StatusHRRejected.IsRejected())
	assert.False(t, StatusAccountsApproved.IsRejected())
	assert.False(t, Status("bogus").IsValid())
}

func TestResetStatus(t *testing.T) {
	assert.Equal(t, StatusPending, ResetStatus())
}

func TestStageForRole(t *testing.T) {
	stage, ok := StageForRole(entity.RoleAccounts)
	require.True(t, ok)
	assert.Equal(t, StageAccounts, stage)

	_, ok = StageForRole(entity.RoleAdmin)
	assert.False(t, ok)

	_, ok = StageForRole(entity.RoleUser)
	assert.False(t, ok)
}

func TestNext_StageOwnershipValidation(t *testing.T) {
	// A hand-built decision whose target does not belong to its stage
	// must fail validation before any transition logic runs.
	d := ReviewDecision{
		Stage:        StageCoordinator,
		TargetStatus: StatusHRApproved,
		Comment:      "mismatched",
	}
	_, err := Next(StatusPending, d)
	assert.True(t, errors.Is(err, ErrInvalidDecision))
}
