package mocks

import (
	"context"
	"fmt"
	"sort"

	"github.com/enrollment-verifier/internal/models"
)

// MockStudentRepository is a mock implementation of StudentRepository
type MockStudentRepository struct {
	Students    map[int64]*models.Student
	CreateError error
	GetError    error
	MarkError   error
	GetByIDFunc func(userID int64) (*models.Student, error)
	CreateCalls int
	MarkedIDs   []int64
}

func NewMockStudentRepository() *MockStudentRepository {
	return &MockStudentRepository{
		Students: make(map[int64]*models.Student),
	}
}

func (m *MockStudentRepository) Create(ctx context.Context, student *models.Student) error {
	m.CreateCalls++
	if m.CreateError != nil {
		return m.CreateError
	}
	if _, ok := m.Students[student.UserID]; ok {
		return fmt.Errorf("UNIQUE constraint failed: students.user_id")
	}
	copied := *student
	m.Students[student.UserID] = &copied
	return nil
}

func (m *MockStudentRepository) GetByID(ctx context.Context, userID int64) (*models.Student, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(userID)
	}
	if m.GetError != nil {
		return nil, m.GetError
	}
	student, ok := m.Students[userID]
	if !ok {
		return nil, nil
	}
	copied := *student
	return &copied, nil
}

func (m *MockStudentRepository) MarkVerified(ctx context.Context, userID int64) error {
	if m.MarkError != nil {
		return m.MarkError
	}
	m.MarkedIDs = append(m.MarkedIDs, userID)
	if student, ok := m.Students[userID]; ok {
		student.Verified = true
	}
	return nil
}

func (m *MockStudentRepository) ListBySubmission(ctx context.Context) ([]*models.Student, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	students := m.all()
	sort.Slice(students, func(i, j int) bool {
		return students[i].SubmittedAt.Before(students[j].SubmittedAt)
	})
	return students, nil
}

func (m *MockStudentRepository) ListNewestFirst(ctx context.Context, limit int) ([]*models.Student, error) {
	students := m.all()
	sort.Slice(students, func(i, j int) bool {
		return students[i].SubmittedAt.After(students[j].SubmittedAt)
	})
	if limit > 0 && len(students) > limit {
		students = students[:limit]
	}
	return students, nil
}

func (m *MockStudentRepository) Counts(ctx context.Context) (int, int, error) {
	verified := 0
	for _, s := range m.Students {
		if s.Verified {
			verified++
		}
	}
	return len(m.Students), verified, nil
}

func (m *MockStudentRepository) all() []*models.Student {
	students := make([]*models.Student, 0, len(m.Students))
	for _, s := range m.Students {
		copied := *s
		students = append(students, &copied)
	}
	return students
}

// MockRunRepository is a mock implementation of RunRepository
type MockRunRepository struct {
	Runs        map[string]*models.VerificationRun
	CreateError error
	Completed   []string
}

func NewMockRunRepository() *MockRunRepository {
	return &MockRunRepository{Runs: make(map[string]*models.VerificationRun)}
}

func (m *MockRunRepository) Create(ctx context.Context, run *models.VerificationRun) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	copied := *run
	m.Runs[run.ID] = &copied
	return nil
}

func (m *MockRunRepository) Complete(ctx context.Context, run *models.VerificationRun) error {
	copied := *run
	m.Runs[run.ID] = &copied
	m.Completed = append(m.Completed, run.ID)
	return nil
}

func (m *MockRunRepository) GetByID(ctx context.Context, id string) (*models.VerificationRun, error) {
	run, ok := m.Runs[id]
	if !ok {
		return nil, nil
	}
	copied := *run
	return &copied, nil
}
