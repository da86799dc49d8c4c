package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/enrollment-verifier/internal/database"
	"github.com/enrollment-verifier/internal/models"
)

// studentRepo is the concrete implementation of StudentRepository
type studentRepo struct {
	db *database.DB
}

// NewStudentRepo creates a new student repository
func NewStudentRepo(db *database.DB) StudentRepository {
	return &studentRepo{db: db}
}

// Create inserts a new submission record. The primary-key constraint rejects
// a second insert for the same user, which callers treat as the duplicate
// submission path.
func (r *studentRepo) Create(ctx context.Context, student *models.Student) error {
	query := `
		INSERT INTO students (user_id, username, email, submitted_at, verified)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		student.UserID, student.Username, student.Email,
		student.SubmittedAt.Format(models.SubmittedAtLayout), student.Verified,
	)
	return err
}

// GetByID retrieves a submission record by Discord user ID
func (r *studentRepo) GetByID(ctx context.Context, userID int64) (*models.Student, error) {
	query := `SELECT user_id, username, email, submitted_at, verified FROM students WHERE user_id = ?`

	row := r.db.QueryRowContext(ctx, query, userID)
	student, err := scanStudent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return student, nil
}

// MarkVerified flips the verified flag to true. The flag is monotonic; there
// is no path back to false.
func (r *studentRepo) MarkVerified(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE students SET verified = TRUE WHERE user_id = ?", userID)
	return err
}

// ListBySubmission returns every record ordered by submitted_at ascending,
// the stable order the interactive review indexes against.
func (r *studentRepo) ListBySubmission(ctx context.Context) ([]*models.Student, error) {
	query := `SELECT user_id, username, email, submitted_at, verified FROM students ORDER BY submitted_at`
	return r.list(ctx, query)
}

// ListNewestFirst returns the most recent records for status displays
func (r *studentRepo) ListNewestFirst(ctx context.Context, limit int) ([]*models.Student, error) {
	query := `SELECT user_id, username, email, submitted_at, verified FROM students ORDER BY submitted_at DESC`
	if limit > 0 {
		query = fmt.Sprintf("%s LIMIT %d", query, limit)
	}
	return r.list(ctx, query)
}

// Counts returns total and verified record counts
func (r *studentRepo) Counts(ctx context.Context) (int, int, error) {
	var total, verified int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(SUM(verified), 0) FROM students").Scan(&total, &verified)
	return total, verified, err
}

func (r *studentRepo) list(ctx context.Context, query string) ([]*models.Student, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var students []*models.Student
	for rows.Next() {
		student, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		students = append(students, student)
	}
	return students, rows.Err()
}

// scanner covers both *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanStudent(s scanner) (*models.Student, error) {
	var student models.Student
	var submittedAt string
	if err := s.Scan(
		&student.UserID, &student.Username, &student.Email,
		&submittedAt, &student.Verified,
	); err != nil {
		return nil, err
	}

	ts, err := parseSubmittedAt(submittedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid submitted_at for user %d: %w", student.UserID, err)
	}
	student.SubmittedAt = ts
	return &student, nil
}
