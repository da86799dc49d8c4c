package verify

import (
	"fmt"
	"strings"

	"github.com/enrollment-verifier/internal/models"
	"github.com/enrollment-verifier/internal/reconcile"
)

const divider = "--------------------------------------------------------------------------------"

func rule(width int) string {
	return strings.Repeat("=", width)
}

// renderSummary prints the three-bucket status overview the interactive
// mode opens with.
func (s *Service) renderSummary(plan *reconcile.Plan) {
	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out, rule(80))
	fmt.Fprintln(s.out, "VERIFICATION STATUS SUMMARY")
	fmt.Fprintln(s.out, rule(80))
	fmt.Fprintf(s.out, "Total students in database: %d\n", plan.Total())
	fmt.Fprintf(s.out, "Already have verified role: %d\n", len(plan.AlreadyRoled))
	fmt.Fprintf(s.out, "Need verified role: %d\n", len(plan.NeedsRole))
	fmt.Fprintf(s.out, "Pending verification: %d\n", len(plan.Pending))

	if len(plan.NeedsRole) > 0 {
		s.renderIndexed(plan.NeedsRole, "STUDENTS WHO NEED VERIFIED ROLE")
	}
	if len(plan.Pending) > 0 {
		s.renderIndexed(plan.Pending, "PENDING STUDENT VERIFICATIONS (NOT IN ROSTER)")
	}

	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out, rule(80))
}

// renderIndexed prints a bucket as a 1-based indexed table so the operator
// can select rows.
func (s *Service) renderIndexed(decisions []reconcile.Decision, title string) {
	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out, rule(80))
	fmt.Fprintln(s.out, title)
	fmt.Fprintln(s.out, rule(80))
	fmt.Fprintf(s.out, "%-5s %-20s %-25s %-30s %-20s\n", "#", "User ID", "Username", "Email", "Submitted")
	fmt.Fprintln(s.out, divider)

	for idx, d := range decisions {
		fmt.Fprintf(s.out, "%-5d %-20d %-25s %-30s %-20s\n",
			idx+1, d.Student.UserID, d.Student.Username, d.Student.Email, d.Student.FormatSubmitted())
	}
}

// renderPending prints a bucket without indices (non-interactive modes)
func (s *Service) renderPending(decisions []reconcile.Decision, title string) {
	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out, rule(80))
	fmt.Fprintln(s.out, title)
	fmt.Fprintln(s.out, rule(80))
	fmt.Fprintf(s.out, "%-25s %-40s\n", "Username", "Email")
	fmt.Fprintln(s.out, divider)
	for _, d := range decisions {
		fmt.Fprintf(s.out, "%-25s %-40s\n", d.Student.Username, d.Student.Email)
	}
	fmt.Fprintln(s.out, rule(80))
}

// renderAll prints the read-only full listing
func (s *Service) renderAll(students []*models.Student) {
	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out, rule(90))
	fmt.Fprintln(s.out, "ALL STUDENTS")
	fmt.Fprintln(s.out, rule(90))
	fmt.Fprintf(s.out, "%-20s %-25s %-30s %-20s %-10s\n", "User ID", "Username", "Email", "Submitted", "Status")
	fmt.Fprintln(s.out, strings.Repeat("-", 90))

	for _, st := range students {
		fmt.Fprintf(s.out, "%-20d %-25s %-30s %-20s %-10s\n",
			st.UserID, st.Username, st.Email, st.FormatSubmitted(), st.StatusLabel())
	}

	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out, rule(90))
}
