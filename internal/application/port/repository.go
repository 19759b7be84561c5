package port

import (
	"context"
	"time"

	"github.com/hima852/expenseflow/internal/domain/entity"
	"github.com/hima852/expenseflow/internal/domain/visibility"
)

// ClaimRepository defines persistence operations for Claim.
type ClaimRepository interface {
	Create(ctx context.Context, claim *entity.Claim) error
	GetByID(ctx context.Context, id int64) (*entity.Claim, error)

	// FindOverlapping returns the owner's non-rejected claims whose date
	// windows intersect [start, end]. excludeID skips the claim being
	// edited; pass 0 on submit.
	FindOverlapping(ctx context.Context, userID int64, start, end time.Time, excludeID int64) ([]*entity.Claim, error)

	// ApplyReview sets one stage's reviewer triple and the new status,
	// guarded by the current-status precondition: the update only lands
	// if the claim still holds fromStatus. Returns false when the
	// precondition no longer holds (a concurrent review won the race).
	ApplyReview(ctx context.Context, id int64, stage string, reviewerID int64, comment, fromStatus, toStatus string) (bool, error)

	// Update persists an edited claim: patched fields, recomputed
	// total, reset status, cleared reviewer triples.
	Update(ctx context.Context, claim *entity.Claim) error

	List(ctx context.Context, q visibility.Query) ([]*entity.Claim, error)
}

// HistoryRepository defines persistence operations for HistoryEntry.
// Append-only: there is no update or delete.
type HistoryRepository interface {
	Append(ctx context.Context, entry *entity.HistoryEntry) error
	ListByClaimID(ctx context.Context, claimID int64) ([]*entity.HistoryEntry, error)
}

// UserRepository resolves identity references. Users are managed by an
// external service; the core only reads them.
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
}

// LookupRepository upserts and resolves the reference tables whose
// values are denormalized onto claims and history entries.
type LookupRepository interface {
	UpsertProject(ctx context.Context, projectID, projectName string) error
	UpsertTransportMode(ctx context.Context, modeName string) error
	GetDepartmentByName(ctx context.Context, name string) (*entity.Department, error)
}

// TransactionManager handles database transactions. Claim mutation and
// history insert always run inside one WithTransaction call.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
