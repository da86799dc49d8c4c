package repository

import (
	"context"

	"github.com/enrollment-verifier/internal/database"
	"github.com/enrollment-verifier/internal/models"
)

// StudentRepository defines the interface for student submission records
type StudentRepository interface {
	Create(ctx context.Context, student *models.Student) error
	GetByID(ctx context.Context, userID int64) (*models.Student, error)
	MarkVerified(ctx context.Context, userID int64) error
	ListBySubmission(ctx context.Context) ([]*models.Student, error)
	ListNewestFirst(ctx context.Context, limit int) ([]*models.Student, error)
	Counts(ctx context.Context) (total, verified int, err error)
}

// RunRepository defines the interface for batch-run audit records
type RunRepository interface {
	Create(ctx context.Context, run *models.VerificationRun) error
	Complete(ctx context.Context, run *models.VerificationRun) error
	GetByID(ctx context.Context, id string) (*models.VerificationRun, error)
}

// Repositories holds all repository interfaces
type Repositories struct {
	Student StudentRepository
	Run     RunRepository
}

// New creates all repositories with the given database connection
func New(db *database.DB) *Repositories {
	return &Repositories{
		Student: NewStudentRepo(db),
		Run:     NewRunRepo(db),
	}
}
