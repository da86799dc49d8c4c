package repository

import (
	"context"
	"database/sql"

	"github.com/enrollment-verifier/internal/database"
	"github.com/enrollment-verifier/internal/models"
)

// runRepo is the concrete implementation of RunRepository
type runRepo struct {
	db *database.DB
}

// NewRunRepo creates a new verification-run repository
func NewRunRepo(db *database.DB) RunRepository {
	return &runRepo{db: db}
}

// Create inserts a new run record at batch start
func (r *runRepo) Create(ctx context.Context, run *models.VerificationRun) error {
	query := `
		INSERT INTO verification_runs (id, mode, roster_ok, roster_size, total,
			already_roled, granted, grant_failed, newly_verified, pending, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		run.ID, run.Mode, run.RosterOK, run.RosterSize, run.Total,
		run.AlreadyRoled, run.Granted, run.GrantFailed, run.NewlyVerified,
		run.Pending, run.StartedAt.Format(models.SubmittedAtLayout),
	)
	return err
}

// Complete updates counters and stamps the completion time
func (r *runRepo) Complete(ctx context.Context, run *models.VerificationRun) error {
	query := `
		UPDATE verification_runs SET roster_ok = ?, roster_size = ?, total = ?,
			already_roled = ?, granted = ?, grant_failed = ?, newly_verified = ?,
			pending = ?, completed_at = ?
		WHERE id = ?
	`
	var completedAt interface{}
	if run.CompletedAt != nil {
		completedAt = run.CompletedAt.Format(models.SubmittedAtLayout)
	}
	_, err := r.db.ExecContext(ctx, query,
		run.RosterOK, run.RosterSize, run.Total, run.AlreadyRoled,
		run.Granted, run.GrantFailed, run.NewlyVerified, run.Pending,
		completedAt, run.ID,
	)
	return err
}

// GetByID retrieves a run record by ID
func (r *runRepo) GetByID(ctx context.Context, id string) (*models.VerificationRun, error) {
	query := `
		SELECT id, mode, roster_ok, roster_size, total, already_roled, granted,
			grant_failed, newly_verified, pending, started_at, completed_at
		FROM verification_runs WHERE id = ?
	`

	var run models.VerificationRun
	var startedAt string
	var completedAt sql.NullString

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&run.ID, &run.Mode, &run.RosterOK, &run.RosterSize, &run.Total,
		&run.AlreadyRoled, &run.Granted, &run.GrantFailed, &run.NewlyVerified,
		&run.Pending, &startedAt, &completedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if ts, err := parseSubmittedAt(startedAt); err == nil {
		run.StartedAt = ts
	}
	if completedAt.Valid {
		if ts, err := parseSubmittedAt(completedAt.String); err == nil {
			run.CompletedAt = &ts
		}
	}

	return &run, nil
}
