package models

import (
	"time"
)

// Student represents one email submission collected by the intake bot.
// There is at most one row per Discord user; the email is written once and
// never updated by the application.
type Student struct {
	UserID      int64     `json:"user_id" db:"user_id"`
	Username    string    `json:"username" db:"username"`
	Email       string    `json:"email" db:"email"`
	SubmittedAt time.Time `json:"submitted_at" db:"submitted_at"`
	Verified    bool      `json:"verified" db:"verified"`
}

// SubmittedAtLayout is how submitted_at is stored in SQLite.
const SubmittedAtLayout = time.RFC3339

// FormatSubmitted renders the submission time for operator tables.
func (s *Student) FormatSubmitted() string {
	return s.SubmittedAt.Format("2006-01-02 15:04")
}

// StatusLabel returns the operator-facing status string.
func (s *Student) StatusLabel() string {
	if s.Verified {
		return "Verified"
	}
	return "Pending"
}
