package service

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/hima852/expenseflow/internal/domain/entity"
	"github.com/hima852/expenseflow/internal/domain/workflow"
)

// bottleneckThresholdDays flags review stages that sat longer than this.
const bottleneckThresholdDays = 2

// FormattedEntry is the display-friendly materialization of one audit
// record. The action label is derived from the (previous, status) pair;
// status alone is not enough to tell an approval from a resubmission.
type FormattedEntry struct {
	ID           int64             `json:"id"`
	Timestamp    time.Time         `json:"timestamp"`
	Action       string            `json:"action"`
	StatusChange string            `json:"status_change,omitempty"`
	StatusColor  string            `json:"status_color"`
	Comment      string            `json:"comment,omitempty"`
	Reviewer     FormattedReviewer `json:"reviewer"`
	ProjectID    string            `json:"project_id,omitempty"`
	ProjectName  string            `json:"project_name,omitempty"`
	Changes      []FormattedChange `json:"changes,omitempty"`
}

// FormattedReviewer names the acting user on a history entry.
type FormattedReviewer struct {
	Name       string `json:"name,omitempty"`
	Role       string `json:"role,omitempty"`
	Department string `json:"department,omitempty"`
}

// FormattedChange is one field-level diff, with the field name
// prettified for display.
type FormattedChange struct {
	Field    string `json:"field"`
	OldValue string `json:"old_value"`
	NewValue string `json:"new_value"`
}

// Bottleneck flags one stage that exceeded the review-time threshold.
type Bottleneck struct {
	Stage     string    `json:"stage"`
	DaysSpent int       `json:"days_spent"`
	From      time.Time `json:"from"`
	To        time.Time `json:"to"`
}

// ProcessingMetrics is read-side aggregation over the ordered history.
// Nothing here is persisted; it is recomputed on every detail read and
// tolerates partial or malformed history.
type ProcessingMetrics struct {
	TotalProcessingDays *int              `json:"total_processing_days,omitempty"`
	CoordinatorDays     *int              `json:"coordinator_review_days,omitempty"`
	HRDays              *int              `json:"hr_review_days,omitempty"`
	AccountsDays        *int              `json:"accounts_review_days,omitempty"`
	AverageResponseDays *int              `json:"average_response_days,omitempty"`
	Bottlenecks         []Bottleneck      `json:"bottlenecks"`
	StageStatus         map[string]string `json:"stage_status"`
}

// HistoryService materializes display records and timing analytics from
// the raw audit trail.
type HistoryService interface {
	Format(entries []*entity.HistoryEntry) []FormattedEntry
	Metrics(claim *entity.Claim, entries []*entity.HistoryEntry) ProcessingMetrics
}

type historyServiceImpl struct{}

// NewHistoryService creates a new HistoryService.
func NewHistoryService() HistoryService {
	return &historyServiceImpl{}
}

// Format materializes display records, preserving the input order
// (newest first, as served by the repository).
func (s *historyServiceImpl) Format(entries []*entity.HistoryEntry) []FormattedEntry {
	out := make([]FormattedEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, formatEntry(e))
	}
	return out
}

func formatEntry(e *entity.HistoryEntry) FormattedEntry {
	f := FormattedEntry{
		ID:          e.ID,
		Timestamp:   e.ChangedAt,
		Comment:     e.Comment,
		ProjectID:   e.ProjectID,
		ProjectName: e.ProjectName,
		Reviewer: FormattedReviewer{
			Name:       e.ReviewerName,
			Role:       e.ReviewerRole,
			Department: e.ReviewerDepartment,
		},
	}

	switch {
	case e.PreviousStatus != nil && *e.PreviousStatus == e.Status:
		// A non-status edit: the pair is equal, the diff carries the story.
		f.Action = "Updated expense details"
		f.StatusColor = "blue"
	case e.Status == entity.StatusPending:
		f.Action = "Submitted for review"
		f.StatusColor = "orange"
	default:
		stage, _ := workflow.StageForStatus(workflow.Status(e.Status))
		if workflow.Status(e.Status).IsRejected() {
			f.Action = fmt.Sprintf("Rejected by %s", stage)
			f.StatusColor = "red"
		} else {
			f.Action = fmt.Sprintf("Approved by %s", stage)
			f.StatusColor = "green"
		}
	}

	if e.PreviousStatus != nil && *e.PreviousStatus != e.Status {
		f.StatusChange = fmt.Sprintf("%s → %s", *e.PreviousStatus, e.Status)
	}

	if len(e.Changes) > 0 {
		fields := make([]string, 0, len(e.Changes))
		for field := range e.Changes {
			fields = append(fields, field)
		}
		sort.Strings(fields)
		for _, field := range fields {
			d := e.Changes[field]
			f.Changes = append(f.Changes, FormattedChange{
				Field:    prettifyField(field),
				OldValue: d.OldValue,
				NewValue: d.NewValue,
			})
		}
	}

	return f
}

// Metrics walks the history pairwise and attributes the gap before each
// entry to the stage that acted. Entries without usable timestamps are
// skipped rather than raising.
func (s *historyServiceImpl) Metrics(claim *entity.Claim, entries []*entity.HistoryEntry) ProcessingMetrics {
	m := ProcessingMetrics{
		Bottlenecks: []Bottleneck{},
		StageStatus: map[string]string{
			workflow.StageCoordinator.String(): entity.StatusPending,
			workflow.StageHR.String():          entity.StatusPending,
			workflow.StageAccounts.String():    entity.StatusPending,
		},
	}
	if len(entries) == 0 {
		return m
	}

	// Entries arrive newest first; order ascending for the walk.
	asc := make([]*entity.HistoryEntry, len(entries))
	copy(asc, entries)
	sort.SliceStable(asc, func(i, j int) bool {
		return asc[i].ChangedAt.Before(asc[j].ChangedAt)
	})

	submitted := asc[0].ChangedAt
	if claim != nil && workflow.Status(claim.Status).IsTerminal() &&
		!submitted.IsZero() && !claim.UpdatedAt.IsZero() {
		days := daysBetween(submitted, claim.UpdatedAt)
		m.TotalProcessingDays = &days
	}

	totalReviewDays := 0
	reviewCount := 0

	for i := 1; i < len(asc); i++ {
		cur, prev := asc[i], asc[i-1]
		if cur.ChangedAt.IsZero() || prev.ChangedAt.IsZero() {
			continue
		}
		spent := daysBetween(prev.ChangedAt, cur.ChangedAt)
		if spent > 0 {
			totalReviewDays += spent
			reviewCount++
		}

		stage, ok := workflow.StageForStatus(workflow.Status(cur.Status))
		if !ok {
			continue
		}
		m.StageStatus[stage.String()] = cur.Status
		switch stage {
		case workflow.StageCoordinator:
			m.CoordinatorDays = addDays(m.CoordinatorDays, spent)
		case workflow.StageHR:
			m.HRDays = addDays(m.HRDays, spent)
		case workflow.StageAccounts:
			m.AccountsDays = addDays(m.AccountsDays, spent)
		}

		if spent > bottleneckThresholdDays {
			m.Bottlenecks = append(m.Bottlenecks, Bottleneck{
				Stage:     stage.String(),
				DaysSpent: spent,
				From:      prev.ChangedAt,
				To:        cur.ChangedAt,
			})
		}
	}

	if reviewCount > 0 {
		avg := totalReviewDays / reviewCount
		m.AverageResponseDays = &avg
	}

	return m
}

func addDays(acc *int, days int) *int {
	if acc == nil {
		return &days
	}
	sum := *acc + days
	return &sum
}

func daysBetween(from, to time.Time) int {
	const day = 24 * time.Hour
	d := to.Sub(from)
	// Round to the nearest day, matching coarse-grained reporting.
	return int((d + day/2) / day)
}

// prettifyField turns a snake_case column name into a display label.
func prettifyField(field string) string {
	words := strings.Split(field, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
