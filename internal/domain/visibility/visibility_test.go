package visibility

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/hima852/expenseflow/internal/domain/entity"
)

func date(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func claim(userID int64, department, status string, journey string) *entity.Claim {
	return &entity.Claim{
		UserID:      userID,
		Department:  department,
		Status:      status,
		JourneyDate: date(journey),
	}
}

func TestScope_User(t *testing.T) {
	q := Scope(entity.Actor{UserID: 7, Role: entity.RoleUser}, Filters{})

	assert.True(t, q.Matches(claim(7, "Sales", entity.StatusPending, "2024-03-01")))
	assert.True(t, q.Matches(claim(7, "Sales", entity.StatusAccountsApproved, "2024-03-01")))
	assert.False(t, q.Matches(claim(8, "Sales", entity.StatusPending, "2024-03-01")))
}

func TestScope_Coordinator(t *testing.T) {
	q := Scope(entity.Actor{UserID: 2, Role: entity.RoleCoordinator, Department: "Sales"}, Filters{})

	assert.True(t, q.Matches(claim(7, "Sales", entity.StatusPending, "2024-03-01")))
	// Unassigned claims are department-agnostic.
	assert.True(t, q.Matches(claim(7, "", entity.StatusPending, "2024-03-01")))
	assert.False(t, q.Matches(claim(7, "Engineering", entity.StatusPending, "2024-03-01")))
}

func TestScope_HR(t *testing.T) {
	q := Scope(entity.Actor{UserID: 3, Role: entity.RoleHR}, Filters{})

	visible := []string{
		entity.StatusCoordinatorApproved,
		entity.StatusHRApproved,
		entity.StatusHRRejected,
		entity.StatusAccountsApproved,
		entity.StatusAccountsRejected,
	}
	for _, status := range visible {
		assert.True(t, q.Matches(claim(7, "Sales", status, "2024-03-01")), status)
	}

	// Claims that never reached HR stay invisible to HR.
	hidden := []string{entity.StatusPending, entity.StatusCoordinatorRejected}
	for _, status := range hidden {
		assert.False(t, q.Matches(claim(7, "Sales", status, "2024-03-01")), status)
	}
}

func TestScope_Accounts(t *testing.T) {
	q := Scope(entity.Actor{UserID: 4, Role: entity.RoleAccounts}, Filters{})

	visible := []string{
		entity.StatusHRApproved,
		entity.StatusAccountsApproved,
		entity.StatusAccountsRejected,
	}
	for _, status := range visible {
		assert.True(t, q.Matches(claim(7, "Sales", status, "2024-03-01")), status)
	}

	hidden := []string{
		entity.StatusPending,
		entity.StatusCoordinatorApproved,
		entity.StatusCoordinatorRejected,
		entity.StatusHRRejected,
	}
	for _, status := range hidden {
		assert.False(t, q.Matches(claim(7, "Sales", status, "2024-03-01")), status)
	}
}

func TestScope_Admin(t *testing.T) {
	q := Scope(entity.Actor{UserID: 1, Role: entity.RoleAdmin}, Filters{})

	assert.True(t, q.Matches(claim(7, "Sales", entity.StatusPending, "2024-03-01")))
	assert.True(t, q.Matches(claim(8, "", entity.StatusCoordinatorRejected, "2024-03-01")))
}

func TestScope_UnknownRoleSeesOnlyOwn(t *testing.T) {
	q := Scope(entity.Actor{UserID: 9, Role: "auditor"}, Filters{})

	assert.True(t, q.Matches(claim(9, "Sales", entity.StatusPending, "2024-03-01")))
	assert.False(t, q.Matches(claim(7, "Sales", entity.StatusPending, "2024-03-01")))
}

func TestScope_FiltersCompose(t *testing.T) {
	start := date("2024-03-01")
	end := date("2024-03-31")
	q := Scope(entity.Actor{UserID: 1, Role: entity.RoleAdmin}, Filters{
		Status:    entity.StatusPending,
		StartDate: &start,
		EndDate:   &end,
	})

	assert.True(t, q.Matches(claim(7, "Sales", entity.StatusPending, "2024-03-15")))
	assert.False(t, q.Matches(claim(7, "Sales", entity.StatusHRApproved, "2024-03-15")))
	assert.False(t, q.Matches(claim(7, "Sales", entity.StatusPending, "2024-02-15")))
	assert.False(t, q.Matches(claim(7, "Sales", entity.StatusPending, "2024-04-01")))

	// Boundary dates are inclusive.
	assert.True(t, q.Matches(claim(7, "Sales", entity.StatusPending, "2024-03-01")))
	assert.True(t, q.Matches(claim(7, "Sales", entity.StatusPending, "2024-03-31")))
}

func TestScope_RoleScopeAndFiltersBothApply(t *testing.T) {
	q := Scope(entity.Actor{UserID: 3, Role: entity.RoleHR}, Filters{
		Status: entity.StatusPending,
	})

	// A status filter never widens the role scope.
	assert.False(t, q.Matches(claim(7, "Sales", entity.StatusPending, "2024-03-01")))
}
