package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/enrollment-verifier/internal/database"
	"github.com/enrollment-verifier/internal/models"
)

func newMockDB(t *testing.T) (*database.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return &database.DB{DB: db}, mock
}

func TestStudentRepo_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewStudentRepo(db)

	submitted := time.Date(2025, 9, 2, 10, 30, 0, 0, time.UTC)
	mock.ExpectExec("INSERT INTO students").
		WithArgs(int64(42), "someone#1234", "a@b.co", submitted.Format(models.SubmittedAtLayout), false).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Create(context.Background(), &models.Student{
		UserID:      42,
		Username:    "someone#1234",
		Email:       "a@b.co",
		SubmittedAt: submitted,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestStudentRepo_GetByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewStudentRepo(db)

	rows := sqlmock.NewRows([]string{"user_id", "username", "email", "submitted_at", "verified"}).
		AddRow(int64(42), "someone#1234", "a@b.co", "2025-09-02T10:30:00Z", true)
	mock.ExpectQuery("SELECT user_id, username, email, submitted_at, verified FROM students WHERE").
		WithArgs(int64(42)).
		WillReturnRows(rows)

	student, err := repo.GetByID(context.Background(), 42)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if student == nil {
		t.Fatal("expected a record")
	}
	if student.Email != "a@b.co" || !student.Verified {
		t.Errorf("unexpected record: %+v", student)
	}
	if student.SubmittedAt.IsZero() {
		t.Error("submitted_at was not parsed")
	}
}

func TestStudentRepo_GetByID_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewStudentRepo(db)

	mock.ExpectQuery("SELECT user_id, username, email, submitted_at, verified FROM students WHERE").
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "username", "email", "submitted_at", "verified"}))

	student, err := repo.GetByID(context.Background(), 7)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if student != nil {
		t.Errorf("expected nil for missing record, got %+v", student)
	}
}

func TestStudentRepo_GetByID_LegacyTimestamp(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewStudentRepo(db)

	// Rows written without a timezone offset must still parse.
	rows := sqlmock.NewRows([]string{"user_id", "username", "email", "submitted_at", "verified"}).
		AddRow(int64(9), "legacy", "x@y.com", "2025-01-15T08:00:00", false)
	mock.ExpectQuery("SELECT user_id, username, email, submitted_at, verified FROM students WHERE").
		WithArgs(int64(9)).
		WillReturnRows(rows)

	student, err := repo.GetByID(context.Background(), 9)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if student.SubmittedAt.Year() != 2025 {
		t.Errorf("legacy timestamp parsed wrong: %v", student.SubmittedAt)
	}
}

func TestStudentRepo_MarkVerified(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewStudentRepo(db)

	mock.ExpectExec("UPDATE students SET verified = TRUE WHERE user_id = ?").
		WithArgs(int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.MarkVerified(context.Background(), 42); err != nil {
		t.Fatalf("MarkVerified failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestStudentRepo_ListBySubmission(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewStudentRepo(db)

	rows := sqlmock.NewRows([]string{"user_id", "username", "email", "submitted_at", "verified"}).
		AddRow(int64(1), "first", "a@b.co", "2025-09-01T09:00:00Z", false).
		AddRow(int64(2), "second", "c@d.ef", "2025-09-02T09:00:00Z", true)
	mock.ExpectQuery("SELECT user_id, username, email, submitted_at, verified FROM students ORDER BY submitted_at").
		WillReturnRows(rows)

	students, err := repo.ListBySubmission(context.Background())
	if err != nil {
		t.Fatalf("ListBySubmission failed: %v", err)
	}
	if len(students) != 2 {
		t.Fatalf("expected 2 records, got %d", len(students))
	}
	if students[0].UserID != 1 || students[1].UserID != 2 {
		t.Errorf("order not preserved: %+v", students)
	}
}

func TestStudentRepo_Counts(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewStudentRepo(db)

	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"c", "v"}).AddRow(5, 3))

	total, verified, err := repo.Counts(context.Background())
	if err != nil {
		t.Fatalf("Counts failed: %v", err)
	}
	if total != 5 || verified != 3 {
		t.Errorf("got total=%d verified=%d, want 5/3", total, verified)
	}
}

func TestRunRepo_CreateAndComplete(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRunRepo(db)

	started := time.Date(2025, 9, 2, 12, 0, 0, 0, time.UTC)
	completed := started.Add(3 * time.Second)
	run := &models.VerificationRun{
		ID:        "run-1",
		Mode:      models.RunModeAuto,
		StartedAt: started,
	}

	mock.ExpectExec("INSERT INTO verification_runs").
		WithArgs("run-1", models.RunModeAuto, false, 0, 0, 0, 0, 0, 0, 0,
			started.Format(models.SubmittedAtLayout)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), run); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	run.RosterOK = true
	run.RosterSize = 120
	run.Total = 10
	run.Granted = 4
	run.CompletedAt = &completed

	mock.ExpectExec("UPDATE verification_runs SET").
		WithArgs(true, 120, 10, 0, 4, 0, 0, 0,
			completed.Format(models.SubmittedAtLayout), "run-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Complete(context.Background(), run); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
