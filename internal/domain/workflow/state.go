package workflow

import "github.com/hima852/expenseflow/internal/domain/entity"

// Status represents a claim status in the review lifecycle.
type Status string

const (
	StatusPending             Status = entity.StatusPending
	StatusCoordinatorApproved Status = entity.StatusCoordinatorApproved
	StatusCoordinatorRejected Status = entity.StatusCoordinatorRejected
	StatusHRApproved          Status = entity.StatusHRApproved
	StatusHRRejected          Status = entity.StatusHRRejected
	StatusAccountsApproved    Status = entity.StatusAccountsApproved
	StatusAccountsRejected    Status = entity.StatusAccountsRejected
)

var validStatuses = map[Status]bool{
	StatusPending:             true,
	StatusCoordinatorApproved: true,
	StatusCoordinatorRejected: true,
	StatusHRApproved:          true,
	StatusHRRejected:          true,
	StatusAccountsApproved:    true,
	StatusAccountsRejected:    true,
}

// Terminal statuses: accounts_approved ends the chain successfully;
// any rejection ends it too, unless the owner edits the claim, which
// resets it to pending outside the review machine.
var terminalStatuses = map[Status]bool{
	StatusCoordinatorRejected: true,
	StatusHRRejected:          true,
	StatusAccountsRejected:    true,
	StatusAccountsApproved:    true,
}

var rejectedStatuses = map[Status]bool{
	StatusCoordinatorRejected: true,
	StatusHRRejected:          true,
	StatusAccountsRejected:    true,
}

// IsValid returns true if the status is a known claim status.
func (s Status) IsValid() bool {
	return validStatuses[s]
}

// IsTerminal returns true if no review transition leaves the status.
func (s Status) IsTerminal() bool {
	return terminalStatuses[s]
}

// IsRejected returns true for any stage's rejection status.
func (s Status) IsRejected() bool {
	return rejectedStatuses[s]
}

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}
