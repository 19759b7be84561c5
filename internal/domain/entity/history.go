package entity

import "time"

// HistoryEntry is one immutable audit record of a status change or
// edit. Entries are append-only: never updated, never deleted.
type HistoryEntry struct {
	ID             int64      `json:"id"`
	ClaimID        int64      `json:"claim_id"`
	Status         string     `json:"status"`
	PreviousStatus *string    `json:"previous_status"` // nil for creation
	Comment        string     `json:"comment"`
	ChangedBy      int64      `json:"changed_by"`
	ChangedAt      time.Time  `json:"changed_at"`
	ProjectID      string     `json:"project_id,omitempty"`
	ProjectName    string     `json:"project_name,omitempty"`
	Changes        FieldDiffs `json:"changes,omitempty"`

	// Reviewer context resolved at read time for display.
	ReviewerName       string `json:"reviewer_name,omitempty"`
	ReviewerRole       string `json:"reviewer_role,omitempty"`
	ReviewerDepartment string `json:"reviewer_department,omitempty"`
}

// FieldDiff records one field-level change carried by an edit entry.
type FieldDiff struct {
	OldValue string `json:"old_value"`
	NewValue string `json:"new_value"`
}

// FieldDiffs maps a field name to its old/new pair.
type FieldDiffs map[string]FieldDiff
