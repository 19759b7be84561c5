package workflow

import "github.com/hima852/expenseflow/internal/domain/entity"

// Stage is one of the three sequential reviewers in the approval chain.
type Stage string

const (
	StageCoordinator Stage = "coordinator"
	StageHR          Stage = "hr"
	StageAccounts    Stage = "accounts"
)

var stageOrder = []Stage{StageCoordinator, StageHR, StageAccounts}

// Stages returns the chain in review order.
func Stages() []Stage {
	return append([]Stage(nil), stageOrder...)
}

// IsValid returns true if the stage is part of the chain.
func (s Stage) IsValid() bool {
	switch s {
	case StageCoordinator, StageHR, StageAccounts:
		return true
	}
	return false
}

// String returns the string representation of the stage.
func (s Stage) String() string {
	return string(s)
}

// Role returns the actor role allowed to review at this stage.
func (s Stage) Role() string {
	switch s {
	case StageCoordinator:
		return entity.RoleCoordinator
	case StageHR:
		return entity.RoleHR
	case StageAccounts:
		return entity.RoleAccounts
	}
	return ""
}

// RequiredStatus returns the current status a claim must hold before
// this stage may review it. Stage ordering is enforced entirely by
// this precondition.
func (s Stage) RequiredStatus() Status {
	switch s {
	case StageCoordinator:
		return StatusPending
	case StageHR:
		return StatusCoordinatorApproved
	case StageAccounts:
		return StatusHRApproved
	}
	return ""
}

// ApprovedStatus returns the status this stage's approval produces.
func (s Stage) ApprovedStatus() Status {
	switch s {
	case StageCoordinator:
		return StatusCoordinatorApproved
	case StageHR:
		return StatusHRApproved
	case StageAccounts:
		return StatusAccountsApproved
	}
	return ""
}

// RejectedStatus returns the status this stage's rejection produces.
func (s Stage) RejectedStatus() Status {
	switch s {
	case StageCoordinator:
		return StatusCoordinatorRejected
	case StageHR:
		return StatusHRRejected
	case StageAccounts:
		return StatusAccountsRejected
	}
	return ""
}

// StageForStatus maps a stage-owned status back to its stage. The
// initial pending status belongs to no stage and returns false.
func StageForStatus(status Status) (Stage, bool) {
	switch status {
	case StatusCoordinatorApproved, StatusCoordinatorRejected:
		return StageCoordinator, true
	case StatusHRApproved, StatusHRRejected:
		return StageHR, true
	case StatusAccountsApproved, StatusAccountsRejected:
		return StageAccounts, true
	}
	return "", false
}

// StageForRole maps a reviewer role to its stage.
func StageForRole(role string) (Stage, bool) {
	switch role {
	case entity.RoleCoordinator:
		return StageCoordinator, true
	case entity.RoleHR:
		return StageHR, true
	case entity.RoleAccounts:
		return StageAccounts, true
	}
	return "", false
}
