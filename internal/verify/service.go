// Package verify implements the operator-run batch that reconciles stored
// submissions against the roster and live Discord role membership.
package verify

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/enrollment-verifier/internal/models"
	"github.com/enrollment-verifier/internal/reconcile"
	"github.com/enrollment-verifier/internal/repository"
	"github.com/enrollment-verifier/internal/roster"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RoleManager applies and inspects the verified role on the chat platform.
// Both calls are network-backed and fallible; a grant failure for one user
// never aborts the batch.
type RoleManager interface {
	HasVerifiedRole(userID int64) bool
	GrantVerifiedRole(userID int64) error
}

// RosterLoader fetches the authoritative roster snapshot for one run
type RosterLoader interface {
	Load(ctx context.Context) *roster.Roster
}

// Service runs one batch invocation in the requested mode
type Service struct {
	repos  *repository.Repositories
	loader RosterLoader
	roles  RoleManager
	out    io.Writer
	in     io.Reader
	log    zerolog.Logger
	now    func() time.Time
	newID  func() string
}

// NewService creates the batch service. out receives the operator tables,
// in is read for interactive selections.
func NewService(repos *repository.Repositories, loader RosterLoader, roles RoleManager, out io.Writer, in io.Reader, log zerolog.Logger) *Service {
	return &Service{
		repos:  repos,
		loader: loader,
		roles:  roles,
		out:    out,
		in:     in,
		log:    log.With().Str("service", "verify").Logger(),
		now:    time.Now,
		newID:  func() string { return uuid.New().String() },
	}
}

// Run executes the requested mode and records the invocation
func (s *Service) Run(ctx context.Context, mode models.RunMode) error {
	run := &models.VerificationRun{
		ID:        s.newID(),
		Mode:      mode,
		StartedAt: s.now(),
	}
	if err := s.repos.Run.Create(ctx, run); err != nil {
		// Audit trail only; the batch itself still runs
		s.log.Warn().Err(err).Msg("Could not record run start")
	}

	var err error
	switch mode {
	case models.RunModeList:
		err = s.runList(ctx, run)
	case models.RunModeAuto:
		err = s.runAuto(ctx, run)
	case models.RunModeReverify:
		err = s.runReverify(ctx, run)
	case models.RunModeInteractive:
		err = s.runInteractive(ctx, run)
	default:
		err = fmt.Errorf("unknown run mode: %s", mode)
	}

	completedAt := s.now()
	run.CompletedAt = &completedAt
	if completeErr := s.repos.Run.Complete(ctx, run); completeErr != nil {
		s.log.Warn().Err(completeErr).Str("run_id", run.ID).Msg("Could not record run completion")
	}

	if err == nil {
		s.log.Info().
			Str("run_id", run.ID).
			Str("mode", string(mode)).
			Int("total", run.Total).
			Int("granted", run.Granted).
			Int("grant_failed", run.GrantFailed).
			Int("newly_verified", run.NewlyVerified).
			Int("pending", run.Pending).
			Msg("Run completed")
	}
	return err
}

// loadRoster fetches the roster and folds its availability into the run
// record. An unavailable roster is not an error: the run proceeds with an
// empty set and the operator is told explicitly.
func (s *Service) loadRoster(ctx context.Context, run *models.VerificationRun) *roster.Roster {
	r := s.loader.Load(ctx)
	run.RosterOK = r.Available()
	run.RosterSize = r.Size()
	if !r.Available() {
		fmt.Fprintf(s.out, "WARNING: roster unavailable (%v)\n", r.Err)
		fmt.Fprintln(s.out, "No emails could be matched this run; records below are pending only because the roster could not be checked.")
	}
	return r
}

// runList prints every record read-only, newest first
func (s *Service) runList(ctx context.Context, run *models.VerificationRun) error {
	students, err := s.repos.Student.ListNewestFirst(ctx, 0)
	if err != nil {
		return fmt.Errorf("load records: %w", err)
	}
	run.Total = len(students)

	if len(students) == 0 {
		fmt.Fprintln(s.out, "No students in database.")
		return nil
	}

	s.renderAll(students)
	return nil
}

// runAuto verifies and role-grants every eligible record without prompting
func (s *Service) runAuto(ctx context.Context, run *models.VerificationRun) error {
	students, err := s.repos.Student.ListBySubmission(ctx)
	if err != nil {
		return fmt.Errorf("load records: %w", err)
	}
	r := s.loadRoster(ctx, run)

	plan := reconcile.Classify(students, r, s.roles.HasVerifiedRole)
	s.tallyPlan(run, plan)

	granted, failed := s.apply(ctx, plan.NeedsRole, run)

	fmt.Fprintf(s.out, "\nAuto-verification complete! Granted %d roles (%d failed).\n", granted, failed)

	if len(plan.Pending) > 0 {
		s.renderPending(plan.Pending, "STUDENTS WHO COULD NOT BE AUTO-VERIFIED (NOT IN ROSTER)")
		fmt.Fprintf(s.out, "\nTotal unverified: %d students\n", len(plan.Pending))
	}
	return nil
}

// runReverify recomputes eligibility from the roster alone and re-grants
// roles to every eligible record, regardless of prior verified state
func (s *Service) runReverify(ctx context.Context, run *models.VerificationRun) error {
	students, err := s.repos.Student.ListBySubmission(ctx)
	if err != nil {
		return fmt.Errorf("load records: %w", err)
	}
	r := s.loadRoster(ctx, run)
	run.Total = len(students)

	fmt.Fprintf(s.out, "\nFound %d total students in database\n", len(students))
	fmt.Fprintf(s.out, "Checking against %d authorized emails\n\n", r.Size())

	var eligible, ineligible []reconcile.Decision
	for _, st := range students {
		if reconcile.Eligible(st, r) {
			eligible = append(eligible, reconcile.Decision{
				Student:     st,
				GrantRole:   true,
				SetVerified: !st.Verified,
			})
		} else {
			ineligible = append(ineligible, reconcile.Decision{Student: st})
		}
	}

	fmt.Fprintf(s.out, "ELIGIBLE FOR VERIFIED ROLE (%d students):\n", len(eligible))
	fmt.Fprintln(s.out, divider)
	for _, d := range eligible {
		fmt.Fprintf(s.out, "  %-25s %-35s [%s]\n", d.Student.Username, d.Student.Email, d.Student.StatusLabel())
	}

	fmt.Fprintf(s.out, "\nNOT ELIGIBLE (%d students):\n", len(ineligible))
	fmt.Fprintln(s.out, divider)
	for _, d := range ineligible {
		fmt.Fprintf(s.out, "  %-25s %-35s\n", d.Student.Username, d.Student.Email)
	}

	run.Pending = len(ineligible)
	granted, failed := s.apply(ctx, eligible, run)

	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out, divider)
	fmt.Fprintf(s.out, "SUMMARY: %d successful, %d failed\n", granted, failed)
	fmt.Fprintln(s.out, divider)
	return nil
}

// runInteractive shows the full status summary, applies the needs-role bucket,
// then lets the operator promote pending records by index
func (s *Service) runInteractive(ctx context.Context, run *models.VerificationRun) error {
	students, err := s.repos.Student.ListBySubmission(ctx)
	if err != nil {
		return fmt.Errorf("load records: %w", err)
	}
	if len(students) == 0 {
		fmt.Fprintln(s.out, "No students in database.")
		return nil
	}

	r := s.loadRoster(ctx, run)
	plan := reconcile.Classify(students, r, s.roles.HasVerifiedRole)
	s.tallyPlan(run, plan)

	s.renderSummary(plan)

	if len(plan.NeedsRole) > 0 {
		fmt.Fprintln(s.out, "\nAutomatically assigning roles to verified students...")
		s.apply(ctx, plan.NeedsRole, run)
	}

	if len(plan.Pending) == 0 {
		fmt.Fprintln(s.out, "\nNo pending students to manually verify.")
		return nil
	}

	selected, err := s.promptSelection(len(plan.Pending))
	if err != nil {
		fmt.Fprintln(s.out, err.Error())
		return nil
	}
	if selected == nil {
		return nil
	}

	var promoted []reconcile.Decision
	for _, idx := range selected {
		promoted = append(promoted, reconcile.Promote(plan.Pending[idx]))
	}

	fmt.Fprintln(s.out, "\nAssigning Discord roles to newly verified students...")
	s.apply(ctx, promoted, run)
	run.Pending -= len(promoted)

	fmt.Fprintln(s.out, "\nVerification complete!")
	return nil
}

// apply executes a decision list. The verified flag is always attempted
// before the role grant so eligibility is captured even when the platform
// call fails; grant failures are reported per user and never abort.
func (s *Service) apply(ctx context.Context, decisions []reconcile.Decision, run *models.VerificationRun) (granted, failed int) {
	for _, d := range decisions {
		if d.SetVerified {
			if err := s.repos.Student.MarkVerified(ctx, d.Student.UserID); err != nil {
				s.log.Error().Err(err).Int64("user_id", d.Student.UserID).Msg("Could not persist verified flag")
				fmt.Fprintf(s.out, "✗ Database update failed for: %s\n", d.Student.Email)
			} else {
				run.NewlyVerified++
				fmt.Fprintf(s.out, "✓ Database updated for: %s\n", d.Student.Email)
			}
		}

		if !d.GrantRole {
			continue
		}
		if err := s.roles.GrantVerifiedRole(d.Student.UserID); err != nil {
			failed++
			s.log.Warn().Err(err).Int64("user_id", d.Student.UserID).Str("username", d.Student.Username).Msg("Role grant failed")
			fmt.Fprintf(s.out, "✗ Could not assign Discord role to: %s (user_id: %d)\n", d.Student.Username, d.Student.UserID)
		} else {
			granted++
			fmt.Fprintf(s.out, "✓ Discord role assigned to: %s\n", d.Student.Username)
		}
	}

	run.Granted += granted
	run.GrantFailed += failed
	return granted, failed
}

func (s *Service) tallyPlan(run *models.VerificationRun, plan *reconcile.Plan) {
	run.Total = plan.Total()
	run.AlreadyRoled = len(plan.AlreadyRoled)
	run.Pending = len(plan.Pending)
}
