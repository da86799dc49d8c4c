// Package intake implements the email-collection flow the bot runs over DM:
// a reaction opts a user in, the next direct message is their submission.
package intake

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/enrollment-verifier/internal/models"
	"github.com/enrollment-verifier/internal/repository"
	"github.com/enrollment-verifier/internal/validation"
	"github.com/rs/zerolog"
)

// Reply is what the bot should send back to the user, if anything
type Reply struct {
	Message string
	// Prompted means pending state was set and the message is the intake
	// prompt; a delivery failure must be rolled back via RollbackPrompt.
	Prompted bool
}

// Service drives the submission flow. It owns no Discord specifics: the bot
// wiring feeds it user events and delivers its replies.
type Service struct {
	students repository.StudentRepository
	tracker  *Tracker
	log      zerolog.Logger
	now      func() time.Time
}

// NewService creates the intake service
func NewService(students repository.StudentRepository, tracker *Tracker, log zerolog.Logger) *Service {
	return &Service{
		students: students,
		tracker:  tracker,
		log:      log.With().Str("service", "intake").Logger(),
		now:      time.Now,
	}
}

// HandleReaction processes a reaction on the monitored message. Users with
// an existing record are told where they stand; everyone else is put into
// the awaiting-email state and prompted.
func (s *Service) HandleReaction(ctx context.Context, userID int64, username string) (*Reply, error) {
	existing, err := s.students.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("look up submission for user %d: %w", userID, err)
	}

	if existing != nil {
		if existing.Verified {
			return &Reply{Message: fmt.Sprintf(
				"You've already been verified with email: %s. "+
					"You should have access to the course materials.", existing.Email)}, nil
		}
		return &Reply{Message: fmt.Sprintf(
			"You've already submitted email: %s. "+
				"It's pending verification. Please wait for approval.", existing.Email)}, nil
	}

	if !s.tracker.Begin(userID) {
		// Already mid-intake; the first prompt stands
		return nil, nil
	}

	s.log.Info().Int64("user_id", userID).Str("username", username).Msg("Intake started")

	return &Reply{
		Message: "Welcome! To verify your enrollment in the course, please reply with " +
			"the email address you used to sign up for the course.\n\n" +
			"Example: your.email@example.com",
		Prompted: true,
	}, nil
}

// RollbackPrompt clears the awaiting-email state after the intake prompt
// could not be delivered (DMs disabled). Without this the user would be
// stuck pending with no prompt to answer.
func (s *Service) RollbackPrompt(userID int64) {
	s.tracker.Clear(userID)
	s.log.Warn().Int64("user_id", userID).Msg("Intake prompt undeliverable, state rolled back")
}

// HandleSubmission processes a direct message from a user. Only users in the
// awaiting-email state are handled; everyone else gets no reply.
func (s *Service) HandleSubmission(ctx context.Context, userID int64, username, content string) (*Reply, error) {
	if !s.tracker.Pending(userID) {
		return nil, nil
	}

	email := strings.TrimSpace(content)

	if !validation.IsValidEmail(email) {
		// State stays pending: the user is invited to retry
		return &Reply{Message: "That doesn't look like a valid email address. " +
			"Please send a valid email address (e.g., your.email@example.com)"}, nil
	}

	existing, err := s.students.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("look up submission for user %d: %w", userID, err)
	}

	if existing != nil {
		s.tracker.Clear(userID)
		return &Reply{Message: fmt.Sprintf(
			"You've already submitted an email: %s. "+
				"If you need to update it, please contact an administrator.", existing.Email)}, nil
	}

	student := &models.Student{
		UserID:      userID,
		Username:    username,
		Email:       email,
		SubmittedAt: s.now(),
		Verified:    false,
	}

	if err := s.students.Create(ctx, student); err != nil {
		// A concurrent insert lost the race against the primary key; treat
		// it as the duplicate path rather than an error.
		if concurrent, lookupErr := s.students.GetByID(ctx, userID); lookupErr == nil && concurrent != nil {
			s.tracker.Clear(userID)
			return &Reply{Message: fmt.Sprintf(
				"You've already submitted an email: %s. "+
					"If you need to update it, please contact an administrator.", concurrent.Email)}, nil
		}
		return nil, fmt.Errorf("store submission for user %d: %w", userID, err)
	}

	s.tracker.Clear(userID)
	s.log.Info().Int64("user_id", userID).Str("email", email).Msg("Submission recorded")

	return &Reply{Message: fmt.Sprintf(
		"Thank you! Your email (%s) has been recorded and is pending verification. "+
			"You'll receive access to the course materials once verified.", email)}, nil
}
