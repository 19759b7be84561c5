package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/hima852/expenseflow/internal/application/port"
	"github.com/hima852/expenseflow/internal/domain/entity"
	"github.com/hima852/expenseflow/internal/infrastructure/persistence/sqlite"
)

// LookupRepository implements port.LookupRepository on sqlite. All
// writes are idempotent upserts keyed by name or external ID.
type LookupRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewLookupRepository creates a new lookup repository.
func NewLookupRepository(db *sql.DB, logger *zap.Logger) port.LookupRepository {
	return &LookupRepository{
		db:     db,
		logger: logger,
	}
}

// UpsertProject registers a project the first time a claim names it.
// An existing project keeps its original name; history snapshots carry
// whatever name the claim used at the time.
func (r *LookupRepository) UpsertProject(ctx context.Context, projectID, projectName string) error {
	query := `
		INSERT INTO projects (project_id, project_name)
		VALUES (?, ?)
		ON CONFLICT(project_id) DO NOTHING
	`

	_, err := r.getExecutor(ctx).ExecContext(ctx, query, projectID, projectName)
	if err != nil {
		r.logger.Error("Failed to upsert project", zap.String("project_id", projectID), zap.Error(err))
		return fmt.Errorf("failed to upsert project: %w", err)
	}
	return nil
}

// UpsertTransportMode records free-text transport modes by name.
func (r *LookupRepository) UpsertTransportMode(ctx context.Context, modeName string) error {
	query := `
		INSERT INTO transport_modes (mode_name)
		VALUES (?)
		ON CONFLICT(mode_name) DO NOTHING
	`

	_, err := r.getExecutor(ctx).ExecContext(ctx, query, modeName)
	if err != nil {
		r.logger.Error("Failed to upsert transport mode", zap.String("mode_name", modeName), zap.Error(err))
		return fmt.Errorf("failed to upsert transport mode: %w", err)
	}
	return nil
}

// GetDepartmentByName resolves a department by name. Returns nil when
// not found.
func (r *LookupRepository) GetDepartmentByName(ctx context.Context, name string) (*entity.Department, error) {
	query := `SELECT id, name, COALESCE(head, '') FROM departments WHERE name = ?`

	var d entity.Department
	err := r.getExecutor(ctx).QueryRowContext(ctx, query, name).Scan(&d.ID, &d.Name, &d.Head)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get department", zap.String("name", name), zap.Error(err))
		return nil, fmt.Errorf("failed to get department: %w", err)
	}
	return &d, nil
}

// getExecutor returns appropriate executor based on context.
func (r *LookupRepository) getExecutor(ctx context.Context) executor {
	if tx := sqlite.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db
}

// Verify interface compliance
var _ port.LookupRepository = (*LookupRepository)(nil)
