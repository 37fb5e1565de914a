// Package inmemdb provides map-backed repositories used in tests; they
// emulate the uniqueness constraints the sqlx repositories delegate to
// Postgres.
package inmemdb

import (
	"sync"

	"github.com/studorg/quorum/core/election"
	"github.com/studorg/quorum/core/member"
)

type (
	DB struct {
		member   *memberTable
		election *electionTable
	}

	memberTable struct {
		t      map[string]*member.Member
		warned map[string]bool // renewal notifications, keyed by username
		mutex  sync.RWMutex
	}

	voteKey struct {
		username   string
		electionID string
	}

	electionTable struct {
		elections map[string]*election.Election
		options   map[string]*election.Option
		votes     map[voteKey]*election.Vote
		position  int
		mutex     sync.RWMutex
	}
)

func Open() *DB {
	return &DB{
		member: &memberTable{
			t:      make(map[string]*member.Member),
			warned: make(map[string]bool),
		},
		election: &electionTable{
			elections: make(map[string]*election.Election),
			options:   make(map[string]*election.Option),
			votes:     make(map[voteKey]*election.Vote),
		},
	}
}
