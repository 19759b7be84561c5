// Package visibility computes which claims an actor may list.
package visibility

import (
	"time"

	"github.com/hima852/expenseflow/internal/domain/entity"
)

// Query is the predicate handed to the claim store. Zero-value fields
// are unset; all set fields AND together.
type Query struct {
	// Role scoping. At most one of these groups is set.
	OwnerID           *int64
	Department        *string // claims in this department, or unassigned
	IncludeNoDept     bool
	AllowedStatuses   []string

	// Optional caller filters, composed regardless of role.
	Status    string
	StartDate *time.Time // journey_date >= StartDate
	EndDate   *time.Time // journey_date <= EndDate
}

// Filters are the optional list filters a caller may pass.
type Filters struct {
	Status    string
	StartDate *time.Time
	EndDate   *time.Time
}

// Scope returns the listing predicate for an actor:
//
//	user        - own claims only
//	coordinator - claims in the actor's department, or unassigned
//	hr          - claims already past the coordinator stage
//	accounts    - claims already past the HR stage
//	admin       - unrestricted
func Scope(actor entity.Actor, f Filters) Query {
	q := Query{
		Status:    f.Status,
		StartDate: f.StartDate,
		EndDate:   f.EndDate,
	}

	switch actor.Role {
	case entity.RoleUser:
		id := actor.UserID
		q.OwnerID = &id
	case entity.RoleCoordinator:
		dept := actor.Department
		q.Department = &dept
		q.IncludeNoDept = true
	case entity.RoleHR:
		q.AllowedStatuses = []string{
			entity.StatusCoordinatorApproved,
			entity.StatusHRApproved,
			entity.StatusHRRejected,
			entity.StatusAccountsApproved,
			entity.StatusAccountsRejected,
		}
	case entity.RoleAccounts:
		q.AllowedStatuses = []string{
			entity.StatusHRApproved,
			entity.StatusAccountsApproved,
			entity.StatusAccountsRejected,
		}
	case entity.RoleAdmin:
		// unrestricted
	default:
		// Unknown roles see nothing beyond their own claims.
		id := actor.UserID
		q.OwnerID = &id
	}

	return q
}

// Matches evaluates the predicate against a claim in memory. The SQL
// repository builds the equivalent WHERE clause; this form backs tests
// and any snapshot-served reads.
func (q Query) Matches(c *entity.Claim) bool {
	if q.OwnerID != nil && c.UserID != *q.OwnerID {
		return false
	}
	if q.Department != nil {
		if c.Department != *q.Department && !(q.IncludeNoDept && c.Department == "") {
			return false
		}
	}
	if len(q.AllowedStatuses) > 0 {
		allowed := false
		for _, s := range q.AllowedStatuses {
			if c.Status == s {
				allowed = true
				break
			}
		}
		if !allowed {
			return false
		}
	}
	if q.Status != "" && c.Status != q.Status {
		return false
	}
	if q.StartDate != nil && c.JourneyDate.Before(*q.StartDate) {
		return false
	}
	if q.EndDate != nil && c.JourneyDate.After(*q.EndDate) {
		return false
	}
	return true
}
