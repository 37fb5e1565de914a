package election

import (
	"time"

	"github.com/studorg/quorum/core"
)

type Election struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	StartDate time.Time `json:"start_date"` // UTC
	EndDate   time.Time `json:"end_date"`   // UTC
}

// IsActive reports whether the voting window is open at now; both bounds are
// inclusive.
func (e Election) IsActive(now time.Time) bool {
	return !now.Before(e.StartDate) && !now.After(e.EndDate)
}

// Option is a candidate choice belonging to exactly one Election. Position
// records insertion order; options are never reordered once created.
type Option struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	ElectionID string `json:"election_id"`
	Position   int    `json:"position"`
}

// Vote is keyed by (Username, ElectionID); the key is the one-vote-per-member
// invariant.
type Vote struct {
	Username   string `json:"username"`
	ElectionID string `json:"election_id"`
	OptionID   string `json:"option_id"`
}

// Result is an option's tally within an election.
type Result struct {
	OptionID string `json:"option_id"`
	Name     string `json:"name"`
	Votes    int    `json:"votes"`
}

// Detail is an election with its options and live counts, as rendered on the
// voting page.
type Detail struct {
	Election
	Options []Result `json:"options"`
}

// NewElection contains information needed to create an Election and its
// Options.
type NewElection struct {
	Name      string    `json:"name" validate:"required"`
	StartDate time.Time `json:"start_date" validate:"required"`
	EndDate   time.Time `json:"end_date" validate:"required,gtfield=StartDate"`
	Options   []string  `json:"options" validate:"min=2,dive,required"`
}

func (ne *NewElection) Validate() error {
	ne.Name = core.CleanString(ne.Name)
	for i, opt := range ne.Options {
		ne.Options[i] = core.CleanString(opt)
	}
	return core.Validate.Struct(ne)
}
