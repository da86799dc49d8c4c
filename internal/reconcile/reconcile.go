// Package reconcile decides, for every stored submission, whether the user
// needs the verified role, the database flag, both, or nothing. It is pure:
// callers supply snapshots of the three states (stored records, roster,
// live role membership) and apply the returned plan themselves.
package reconcile

import (
	"github.com/enrollment-verifier/internal/models"
	"github.com/enrollment-verifier/internal/roster"
)

// Decision is the action set for a single record
type Decision struct {
	Student *models.Student
	// GrantRole means the user should receive the verified role
	GrantRole bool
	// SetVerified means the stored verified flag should be flipped to true
	SetVerified bool
	// Manual marks an operator override of a pending record
	Manual bool
}

// Plan groups every record into exactly one bucket. AlreadyRoled needs no
// action, NeedsRole carries grant (and possibly flag) actions, Pending is
// surfaced for operator review.
type Plan struct {
	AlreadyRoled []Decision
	NeedsRole    []Decision
	Pending      []Decision
}

// Total returns the number of classified records
func (p *Plan) Total() int {
	return len(p.AlreadyRoled) + len(p.NeedsRole) + len(p.Pending)
}

// HasRoleFunc answers whether a user currently holds the verified role on
// the platform. It is treated as expensive and fallible, so Classify calls
// it at most once per user.
type HasRoleFunc func(userID int64) bool

// Classify maps every record into one bucket, first match wins:
//
//  1. user already holds the role: nothing to do
//  2. roster contains the email, or the record was verified earlier:
//     grant the role, and set the flag if it is still false
//  3. otherwise: pending, left for manual review
//
// Record order is preserved, so a caller that loads records in submission
// order gets buckets indexable for interactive selection. Running Classify
// again after its plan was fully applied yields no further actions.
func Classify(students []*models.Student, r *roster.Roster, hasRole HasRoleFunc) *Plan {
	plan := &Plan{}
	memo := make(map[int64]bool, len(students))

	for _, s := range students {
		roled, seen := memo[s.UserID]
		if !seen {
			roled = hasRole != nil && hasRole(s.UserID)
			memo[s.UserID] = roled
		}

		switch {
		case roled:
			plan.AlreadyRoled = append(plan.AlreadyRoled, Decision{Student: s})
		case r.Contains(s.Email) || s.Verified:
			plan.NeedsRole = append(plan.NeedsRole, Decision{
				Student:     s,
				GrantRole:   true,
				SetVerified: !s.Verified,
			})
		default:
			plan.Pending = append(plan.Pending, Decision{Student: s})
		}
	}

	return plan
}

// Promote turns a pending decision into a manual verification: flag update
// plus role grant, bypassing the roster. The escape hatch for students the
// upstream export has not caught up with.
func Promote(d Decision) Decision {
	d.GrantRole = true
	d.SetVerified = !d.Student.Verified
	d.Manual = true
	return d
}

// Eligible reports whether a record would match the roster regardless of
// its current flag or role state. Used by the reverify mode, which rebuilds
// everyone's role from the roster alone.
func Eligible(s *models.Student, r *roster.Roster) bool {
	return r.Contains(s.Email)
}
