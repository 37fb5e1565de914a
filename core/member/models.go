package member

import (
	"time"

	"github.com/studorg/quorum/core"
)

// Membership periods, in calendar months.
const (
	WaitingPeriod = 4  // time a new member waits before being allowed to vote
	ValidPeriod   = 12 // time until the renewal window opens
	GracePeriod   = 6  // length of the renewal window; membership expires after it
)

// Status is a member's standing, derived from the milestone dates.
type Status string

const (
	StatusRegular   Status = "regular"    // registered, still in the waiting period
	StatusElector   Status = "elector"    // allowed to vote
	StatusMustRenew Status = "must_renew" // renewal window open
	StatusExpired   Status = "expired"    // renewal window closed without renewing

	// StatusNotAMember is never derived from a record; it is what lookups
	// report when no record exists for a username.
	StatusNotAMember Status = "not_a_member"
)

type Member struct {
	Username       string    `json:"username"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Courses        string    `json:"courses"`
	RegisterDate   time.Time `json:"register_date"`    // UTC
	CanVoteDate    time.Time `json:"can_vote_date"`    // UTC
	RenewStartDate time.Time `json:"renew_start_date"` // UTC
	RenewEndDate   time.Time `json:"renew_end_date"`   // UTC
}

// StatusAt derives the member's status at a given instant. The caller
// supplies the clock; the same inputs always yield the same status.
func (m Member) StatusAt(now time.Time) Status {
	switch {
	case now.After(m.RenewEndDate):
		return StatusExpired
	case !now.Before(m.RenewStartDate): // renewStartDate <= now <= renewEndDate
		return StatusMustRenew
	case !now.Before(m.CanVoteDate): // canVoteDate <= now < renewStartDate
		return StatusElector
	default: // now < canVoteDate
		return StatusRegular
	}
}

func (m Member) CanVote(now time.Time) bool {
	return m.StatusAt(now) == StatusElector
}

func (m Member) IsExpired(now time.Time) bool {
	return now.After(m.RenewEndDate)
}

// NewMember contains information needed to register a Member.
type NewMember struct {
	Username string `json:"username" validate:"required,min=4,max=10,alphanum_"`
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Courses  string `json:"courses"`
}

func (nm *NewMember) Validate() error {
	nm.Username = core.CleanString(nm.Username, true /* lower */)
	nm.Name = core.CleanString(nm.Name)
	nm.Email = core.CleanString(nm.Email, true /* lower */)
	nm.Courses = core.CleanString(nm.Courses)
	return core.Validate.Struct(nm)
}

// ProfileUpdate carries the profile fields refreshed from the institutional
// directory when a member renews.
type ProfileUpdate struct {
	Name    string `json:"name"`
	Email   string `json:"email" validate:"omitempty,email"`
	Courses string `json:"courses"`
}

func (pu *ProfileUpdate) Validate() error {
	pu.Name = core.CleanString(pu.Name)
	pu.Email = core.CleanString(pu.Email, true /* lower */)
	pu.Courses = core.CleanString(pu.Courses)
	return core.Validate.Struct(pu)
}

// apply overwrites only the fields that changed at the source; untouched
// fields keep their stored value.
func (pu ProfileUpdate) apply(m *Member) {
	if pu.Name != m.Name {
		m.Name = pu.Name
	}
	if pu.Email != m.Email {
		m.Email = pu.Email
	}
	if pu.Courses != m.Courses {
		m.Courses = pu.Courses
	}
}
