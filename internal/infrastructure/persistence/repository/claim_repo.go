package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hima852/expenseflow/internal/application/port"
	"github.com/hima852/expenseflow/internal/domain/entity"
	"github.com/hima852/expenseflow/internal/domain/visibility"
	"github.com/hima852/expenseflow/internal/infrastructure/persistence/sqlite"
)

const dateLayout = "2006-01-02"

// Statuses excluded from the overlap check: a rejected claim no longer
// reserves its date window.
var rejectedStatuses = []string{
	entity.StatusCoordinatorRejected,
	entity.StatusHRRejected,
	entity.StatusAccountsRejected,
}

const claimColumns = `
	id, user_id, employee_name, employee_id, designation, department,
	site_name, unit, project_id, project_name,
	journey_date, return_date, transport_mode, return_transport_mode,
	advance_amount, train_fare, hotel_fare, food_cost, total_expense,
	status, hotel_receipt, food_receipt, transport_receipt,
	coordinator_reviewer_id, coordinator_comment, coordinator_reviewed_at,
	hr_reviewer_id, hr_comment, hr_reviewed_at,
	accounts_reviewer_id, accounts_comment, accounts_reviewed_at,
	created_at, updated_at, updated_by`

// stagePrefixes whitelists the column prefixes ApplyReview may touch.
var stagePrefixes = map[string]bool{
	"coordinator": true,
	"hr":          true,
	"accounts":    true,
}

// ClaimRepository implements port.ClaimRepository on sqlite.
type ClaimRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewClaimRepository creates a new claim repository.
func NewClaimRepository(db *sql.DB, logger *zap.Logger) port.ClaimRepository {
	return &ClaimRepository{
		db:     db,
		logger: logger,
	}
}

// Create persists a new claim and sets its generated ID.
func (r *ClaimRepository) Create(ctx context.Context, claim *entity.Claim) error {
	query := `
		INSERT INTO claims (
			user_id, employee_name, employee_id, designation, department,
			site_name, unit, project_id, project_name,
			journey_date, return_date, transport_mode, return_transport_mode,
			advance_amount, train_fare, hotel_fare, food_cost, total_expense,
			status, hotel_receipt, food_receipt, transport_receipt, updated_by
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.getExecutor(ctx).ExecContext(ctx, query,
		claim.UserID,
		claim.EmployeeName,
		claim.EmployeeID,
		claim.Designation,
		claim.Department,
		claim.SiteName,
		claim.Unit,
		claim.ProjectID,
		claim.ProjectName,
		claim.JourneyDate.Format(dateLayout),
		formatNullDate(claim.ReturnDate),
		claim.TransportMode,
		claim.ReturnTransportMode,
		claim.AdvanceAmount,
		claim.TrainFare,
		claim.HotelFare,
		claim.FoodCost,
		claim.TotalExpense,
		claim.Status,
		claim.HotelReceipt,
		claim.FoodReceipt,
		claim.TransportReceipt,
		claim.UserID,
	)
	if err != nil {
		r.logger.Error("Failed to create claim", zap.Error(err))
		return fmt.Errorf("failed to create claim: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	claim.ID = id
	return nil
}

// GetByID retrieves a claim by ID. Returns nil when the claim does not
// exist.
func (r *ClaimRepository) GetByID(ctx context.Context, id int64) (*entity.Claim, error) {
	query := `SELECT ` + claimColumns + ` FROM claims WHERE id = ?`

	row := r.getExecutor(ctx).QueryRowContext(ctx, query, id)
	claim, err := scanClaim(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get claim by ID", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get claim: %w", err)
	}
	return claim, nil
}

// FindOverlapping returns the owner's non-rejected claims whose date
// windows intersect [start, end], excluding excludeID.
func (r *ClaimRepository) FindOverlapping(ctx context.Context, userID int64, start, end time.Time, excludeID int64) ([]*entity.Claim, error) {
	placeholders := strings.Repeat("?, ", len(rejectedStatuses)-1) + "?"
	query := `SELECT ` + claimColumns + `
		FROM claims
		WHERE user_id = ?
		AND id != ?
		AND status NOT IN (` + placeholders + `)
		AND journey_date <= ?
		AND COALESCE(return_date, journey_date) >= ?
	`

	args := []interface{}{userID, excludeID}
	for _, s := range rejectedStatuses {
		args = append(args, s)
	}
	args = append(args, end.Format(dateLayout), start.Format(dateLayout))

	rows, err := r.getExecutor(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to find overlapping claims", zap.Int64("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("failed to find overlapping claims: %w", err)
	}
	defer rows.Close()

	return collectClaims(rows)
}

// ApplyReview writes one stage's reviewer triple and the new status,
// guarded by the current-status precondition in the WHERE clause. The
// guard is what resolves concurrent reviews: only the first committer
// matches the row.
func (r *ClaimRepository) ApplyReview(ctx context.Context, id int64, stage string, reviewerID int64, comment, fromStatus, toStatus string) (bool, error) {
	if !stagePrefixes[stage] {
		return false, fmt.Errorf("unknown review stage: %q", stage)
	}

	query := fmt.Sprintf(`
		UPDATE claims
		SET status = ?,
			%[1]s_comment = ?,
			%[1]s_reviewed_at = CURRENT_TIMESTAMP,
			%[1]s_reviewer_id = ?,
			updated_by = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status = ?
	`, stage)

	result, err := r.getExecutor(ctx).ExecContext(ctx, query,
		toStatus, comment, reviewerID, reviewerID, id, fromStatus)
	if err != nil {
		r.logger.Error("Failed to apply review",
			zap.Int64("id", id),
			zap.String("stage", stage),
			zap.Error(err))
		return false, fmt.Errorf("failed to apply review: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return affected > 0, nil
}

// Update persists an edited claim: patched fields, recomputed total,
// reset status, and all three reviewer triples cleared.
func (r *ClaimRepository) Update(ctx context.Context, claim *entity.Claim) error {
	query := `
		UPDATE claims
		SET site_name = ?, unit = ?, project_id = ?, project_name = ?,
			journey_date = ?, return_date = ?,
			transport_mode = ?, return_transport_mode = ?,
			advance_amount = ?, train_fare = ?, hotel_fare = ?, food_cost = ?,
			total_expense = ?, status = ?,
			hotel_receipt = ?, food_receipt = ?, transport_receipt = ?,
			coordinator_reviewer_id = NULL, coordinator_comment = '', coordinator_reviewed_at = NULL,
			hr_reviewer_id = NULL, hr_comment = '', hr_reviewed_at = NULL,
			accounts_reviewer_id = NULL, accounts_comment = '', accounts_reviewed_at = NULL,
			updated_by = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	_, err := r.getExecutor(ctx).ExecContext(ctx, query,
		claim.SiteName,
		claim.Unit,
		claim.ProjectID,
		claim.ProjectName,
		claim.JourneyDate.Format(dateLayout),
		formatNullDate(claim.ReturnDate),
		claim.TransportMode,
		claim.ReturnTransportMode,
		claim.AdvanceAmount,
		claim.TrainFare,
		claim.HotelFare,
		claim.FoodCost,
		claim.TotalExpense,
		claim.Status,
		claim.HotelReceipt,
		claim.FoodReceipt,
		claim.TransportReceipt,
		claim.UpdatedBy,
		claim.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update claim", zap.Int64("id", claim.ID), zap.Error(err))
		return fmt.Errorf("failed to update claim: %w", err)
	}
	return nil
}

// List retrieves claims matching the visibility predicate, newest first.
func (r *ClaimRepository) List(ctx context.Context, q visibility.Query) ([]*entity.Claim, error) {
	var conditions []string
	var args []interface{}

	if q.OwnerID != nil {
		conditions = append(conditions, "user_id = ?")
		args = append(args, *q.OwnerID)
	}
	if q.Department != nil {
		if q.IncludeNoDept {
			conditions = append(conditions, "(department = ? OR department = '')")
		} else {
			conditions = append(conditions, "department = ?")
		}
		args = append(args, *q.Department)
	}
	if len(q.AllowedStatuses) > 0 {
		placeholders := strings.Repeat("?, ", len(q.AllowedStatuses)-1) + "?"
		conditions = append(conditions, "status IN ("+placeholders+")")
		for _, s := range q.AllowedStatuses {
			args = append(args, s)
		}
	}
	if q.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, q.Status)
	}
	if q.StartDate != nil {
		conditions = append(conditions, "journey_date >= ?")
		args = append(args, q.StartDate.Format(dateLayout))
	}
	if q.EndDate != nil {
		conditions = append(conditions, "journey_date <= ?")
		args = append(args, q.EndDate.Format(dateLayout))
	}

	query := `SELECT ` + claimColumns + ` FROM claims`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.getExecutor(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list claims", zap.Error(err))
		return nil, fmt.Errorf("failed to list claims: %w", err)
	}
	defer rows.Close()

	return collectClaims(rows)
}

// getExecutor returns appropriate executor based on context.
func (r *ClaimRepository) getExecutor(ctx context.Context) executor {
	if tx := sqlite.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db
}

// executor interface covers both *sql.DB and *sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanClaim(row rowScanner) (*entity.Claim, error) {
	var c entity.Claim
	var journeyDate string
	var returnDate sql.NullString
	var coordID, hrID, acctID, updatedBy sql.NullInt64
	var coordComment, hrComment, acctComment sql.NullString
	var coordAt, hrAt, acctAt sql.NullTime

	err := row.Scan(
		&c.ID, &c.UserID, &c.EmployeeName, &c.EmployeeID, &c.Designation, &c.Department,
		&c.SiteName, &c.Unit, &c.ProjectID, &c.ProjectName,
		&journeyDate, &returnDate, &c.TransportMode, &c.ReturnTransportMode,
		&c.AdvanceAmount, &c.TrainFare, &c.HotelFare, &c.FoodCost, &c.TotalExpense,
		&c.Status, &c.HotelReceipt, &c.FoodReceipt, &c.TransportReceipt,
		&coordID, &coordComment, &coordAt,
		&hrID, &hrComment, &hrAt,
		&acctID, &acctComment, &acctAt,
		&c.CreatedAt, &c.UpdatedAt, &updatedBy,
	)
	if err != nil {
		return nil, err
	}

	c.JourneyDate, err = time.Parse(dateLayout, journeyDate)
	if err != nil {
		return nil, fmt.Errorf("malformed journey_date %q: %w", journeyDate, err)
	}
	if returnDate.Valid && returnDate.String != "" {
		d, err := time.Parse(dateLayout, returnDate.String)
		if err != nil {
			return nil, fmt.Errorf("malformed return_date %q: %w", returnDate.String, err)
		}
		c.ReturnDate = &d
	}

	c.Coordinator = buildTriple(coordID, coordComment, coordAt)
	c.HR = buildTriple(hrID, hrComment, hrAt)
	c.Accounts = buildTriple(acctID, acctComment, acctAt)
	if updatedBy.Valid {
		c.UpdatedBy = updatedBy.Int64
	}

	return &c, nil
}

func collectClaims(rows *sql.Rows) ([]*entity.Claim, error) {
	var claims []*entity.Claim
	for rows.Next() {
		claim, err := scanClaim(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan claim: %w", err)
		}
		claims = append(claims, claim)
	}
	return claims, rows.Err()
}

func buildTriple(id sql.NullInt64, comment sql.NullString, at sql.NullTime) entity.ReviewTriple {
	var t entity.ReviewTriple
	if id.Valid {
		v := id.Int64
		t.ReviewerID = &v
	}
	if comment.Valid {
		t.Comment = comment.String
	}
	if at.Valid {
		v := at.Time
		t.ReviewedAt = &v
	}
	return t
}

func formatNullDate(d *time.Time) interface{} {
	if d == nil {
		return nil
	}
	return d.Format(dateLayout)
}

// Verify interface compliance
var _ port.ClaimRepository = (*ClaimRepository)(nil)
