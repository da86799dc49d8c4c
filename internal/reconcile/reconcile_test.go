package reconcile

import (
	"testing"
	"time"

	"github.com/enrollment-verifier/internal/models"
	"github.com/enrollment-verifier/internal/roster"
)

func student(id int64, email string, verified bool) *models.Student {
	return &models.Student{
		UserID:      id,
		Username:    "user",
		Email:       email,
		SubmittedAt: time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(id) * time.Minute),
		Verified:    verified,
	}
}

func roleSet(ids ...int64) HasRoleFunc {
	set := make(map[int64]bool)
	for _, id := range ids {
		set[id] = true
	}
	return func(id int64) bool { return set[id] }
}

func TestClassifyBuckets(t *testing.T) {
	students := []*models.Student{
		student(1, "roled@example.com", true),      // already has the role
		student(2, "match@example.com", false),     // roster match, needs flag + role
		student(3, "verified@example.com", true),   // flagged earlier, not in roster
		student(4, "nomatch@example.com", false),   // pending
		student(5, "MATCH2@Example.Com ", false),   // roster match via normalization
	}
	r := roster.FromEmails("match@example.com", "match2@example.com", "unused@example.com")

	plan := Classify(students, r, roleSet(1))

	if plan.Total() != 5 {
		t.Fatalf("total = %d, want 5", plan.Total())
	}
	if len(plan.AlreadyRoled) != 1 || plan.AlreadyRoled[0].Student.UserID != 1 {
		t.Errorf("already-roled bucket wrong: %+v", plan.AlreadyRoled)
	}
	if len(plan.NeedsRole) != 3 {
		t.Fatalf("needs-role bucket = %d, want 3", len(plan.NeedsRole))
	}
	if len(plan.Pending) != 1 || plan.Pending[0].Student.UserID != 4 {
		t.Errorf("pending bucket wrong: %+v", plan.Pending)
	}

	for _, d := range plan.NeedsRole {
		if !d.GrantRole {
			t.Errorf("user %d: needs-role decision without grant", d.Student.UserID)
		}
		switch d.Student.UserID {
		case 2, 5:
			if !d.SetVerified {
				t.Errorf("user %d: roster match with false flag must set verified", d.Student.UserID)
			}
		case 3:
			if d.SetVerified {
				t.Errorf("user %d: already-verified record must not get a second flag update", d.Student.UserID)
			}
		}
	}

	// Order within buckets follows input (submission) order
	if plan.NeedsRole[0].Student.UserID != 2 || plan.NeedsRole[2].Student.UserID != 5 {
		t.Errorf("bucket order not preserved: %+v", plan.NeedsRole)
	}
}

func TestClassifyAlreadyRoledWinsOverRoster(t *testing.T) {
	students := []*models.Student{student(1, "match@example.com", false)}
	r := roster.FromEmails("match@example.com")

	plan := Classify(students, r, roleSet(1))
	if len(plan.AlreadyRoled) != 1 || len(plan.NeedsRole) != 0 {
		t.Errorf("role membership must win over roster match: %+v", plan)
	}
}

func TestClassifyIdempotent(t *testing.T) {
	students := []*models.Student{
		student(1, "match@example.com", false),
		student(2, "nomatch@example.com", false),
	}
	r := roster.FromEmails("match@example.com")

	first := Classify(students, r, roleSet())

	// Apply the plan: flags set, roles granted
	for _, d := range first.NeedsRole {
		if d.SetVerified {
			d.Student.Verified = true
		}
	}
	second := Classify(students, r, roleSet(1))

	if len(second.NeedsRole) != 0 {
		t.Errorf("second run emitted %d actions, want 0", len(second.NeedsRole))
	}
	if len(second.AlreadyRoled) != 1 {
		t.Errorf("applied record should be already-roled: %+v", second)
	}
	if len(second.Pending) != 1 || second.Pending[0].Student.UserID != 2 {
		t.Errorf("unmatched record must stay pending: %+v", second.Pending)
	}
}

func TestClassifyEmptyRosterAllPending(t *testing.T) {
	students := []*models.Student{
		student(1, "a@b.co", false),
		student(2, "c@d.ef", false),
	}

	// Unavailable roster degrades to an empty set: nobody is dropped and
	// nobody is rejected, everything unverified stays pending.
	plan := Classify(students, roster.FromEmails(), roleSet())
	if len(plan.Pending) != 2 {
		t.Errorf("expected all records pending, got %+v", plan)
	}
	if len(plan.NeedsRole) != 0 || len(plan.AlreadyRoled) != 0 {
		t.Errorf("empty roster must produce no actions: %+v", plan)
	}
}

func TestClassifyVerifiedSurvivesEmptyRoster(t *testing.T) {
	// A record verified in an earlier run keeps its eligibility even when the
	// roster is unavailable this run.
	students := []*models.Student{student(1, "a@b.co", true)}

	plan := Classify(students, roster.FromEmails(), roleSet())
	if len(plan.NeedsRole) != 1 {
		t.Fatalf("verified record must still need the role: %+v", plan)
	}
	if plan.NeedsRole[0].SetVerified {
		t.Error("verified record must not get another flag update")
	}
}

func TestClassifyMembershipCheckedOncePerUser(t *testing.T) {
	students := []*models.Student{
		student(1, "a@b.co", false),
		student(2, "c@d.ef", false),
	}
	// Duplicate user id should not happen (primary key), but the lookup
	// contract is at most one call per user regardless.
	students = append(students, student(1, "a@b.co", false))

	calls := make(map[int64]int)
	hasRole := func(id int64) bool {
		calls[id]++
		return false
	}

	Classify(students, roster.FromEmails(), hasRole)

	for id, n := range calls {
		if n != 1 {
			t.Errorf("hasRole called %d times for user %d, want 1", n, id)
		}
	}
}

func TestPromote(t *testing.T) {
	d := Decision{Student: student(1, "x@y.com", false)}
	p := Promote(d)

	if !p.GrantRole || !p.SetVerified || !p.Manual {
		t.Errorf("promoted decision incomplete: %+v", p)
	}

	// Promoting an already-verified record must not re-set the flag
	d2 := Decision{Student: student(2, "x@y.com", true)}
	p2 := Promote(d2)
	if p2.SetVerified {
		t.Error("promotion of a verified record must not emit a flag update")
	}
	if !p2.GrantRole {
		t.Error("promotion must still grant the role")
	}
}

func TestEligible(t *testing.T) {
	r := roster.FromEmails("in@roster.com")
	if !Eligible(student(1, " IN@Roster.COM ", false), r) {
		t.Error("normalized roster match must be eligible")
	}
	if Eligible(student(2, "out@roster.com", true), r) {
		t.Error("reverify eligibility ignores the stored flag")
	}
}
