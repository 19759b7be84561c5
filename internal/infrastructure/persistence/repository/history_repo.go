package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/hima852/expenseflow/internal/application/port"
	"github.com/hima852/expenseflow/internal/domain/entity"
	"github.com/hima852/expenseflow/internal/infrastructure/persistence/sqlite"
)

// HistoryRepository implements port.HistoryRepository on sqlite. The
// table is append-only; this type deliberately has no update or delete.
type HistoryRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewHistoryRepository creates a new history repository.
func NewHistoryRepository(db *sql.DB, logger *zap.Logger) port.HistoryRepository {
	return &HistoryRepository{
		db:     db,
		logger: logger,
	}
}

// Append inserts a new history record and sets its generated ID.
func (r *HistoryRepository) Append(ctx context.Context, entry *entity.HistoryEntry) error {
	var changes interface{}
	if len(entry.Changes) > 0 {
		data, err := json.Marshal(entry.Changes)
		if err != nil {
			return fmt.Errorf("failed to marshal changes: %w", err)
		}
		changes = string(data)
	}

	query := `
		INSERT INTO claim_history (
			claim_id, status, previous_status, comment,
			changed_by, changed_at, project_id, project_name, changes
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.getExecutor(ctx).ExecContext(ctx, query,
		entry.ClaimID,
		entry.Status,
		entry.PreviousStatus,
		entry.Comment,
		entry.ChangedBy,
		entry.ChangedAt,
		entry.ProjectID,
		entry.ProjectName,
		changes,
	)
	if err != nil {
		r.logger.Error("Failed to append history record", zap.Int64("claim_id", entry.ClaimID), zap.Error(err))
		return fmt.Errorf("failed to append history: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	entry.ID = id
	return nil
}

// ListByClaimID retrieves all history records for a claim, newest
// first, with the acting user's name, role, and department resolved
// for display.
func (r *HistoryRepository) ListByClaimID(ctx context.Context, claimID int64) ([]*entity.HistoryEntry, error) {
	query := `
		SELECT h.id, h.claim_id, h.status, h.previous_status, h.comment,
			h.changed_by, h.changed_at, h.project_id, h.project_name, h.changes,
			COALESCE(u.name, ''), COALESCE(u.role, ''), COALESCE(u.department, '')
		FROM claim_history h
		LEFT JOIN users u ON h.changed_by = u.id
		WHERE h.claim_id = ?
		ORDER BY h.changed_at DESC, h.id DESC
	`

	rows, err := r.getExecutor(ctx).QueryContext(ctx, query, claimID)
	if err != nil {
		r.logger.Error("Failed to list history", zap.Int64("claim_id", claimID), zap.Error(err))
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	var entries []*entity.HistoryEntry
	for rows.Next() {
		var e entity.HistoryEntry
		var previousStatus sql.NullString
		var changes sql.NullString

		err := rows.Scan(
			&e.ID,
			&e.ClaimID,
			&e.Status,
			&previousStatus,
			&e.Comment,
			&e.ChangedBy,
			&e.ChangedAt,
			&e.ProjectID,
			&e.ProjectName,
			&changes,
			&e.ReviewerName,
			&e.ReviewerRole,
			&e.ReviewerDepartment,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history record: %w", err)
		}

		if previousStatus.Valid {
			v := previousStatus.String
			e.PreviousStatus = &v
		}
		if changes.Valid && changes.String != "" {
			if err := json.Unmarshal([]byte(changes.String), &e.Changes); err != nil {
				return nil, fmt.Errorf("failed to unmarshal changes: %w", err)
			}
		}

		entries = append(entries, &e)
	}

	return entries, rows.Err()
}

// getExecutor returns appropriate executor based on context.
func (r *HistoryRepository) getExecutor(ctx context.Context) executor {
	if tx := sqlite.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db
}

// Verify interface compliance
var _ port.HistoryRepository = (*HistoryRepository)(nil)
