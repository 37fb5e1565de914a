package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/studorg/quorum/core/election"
)

type electionRepository struct {
	db *electionTable
}

var _ election.Repository = (*electionRepository)(nil) // interface compliance check

func NewElectionRepository(db *DB) *electionRepository {
	return &electionRepository{db: db.election}
}

func (r *electionRepository) CreateElection(_ context.Context, e election.Election, options []string) (election.Election, error) {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	e.ID = uuid.New().String()
	r.db.elections[e.ID] = &e
	for _, name := range options {
		r.db.position++
		opt := election.Option{
			ID:         uuid.New().String(),
			Name:       name,
			ElectionID: e.ID,
			Position:   r.db.position,
		}
		r.db.options[opt.ID] = &opt
	}
	return e, nil
}

func (r *electionRepository) GetElection(_ context.Context, id string) (election.Election, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	if e, ok := r.db.elections[id]; ok {
		return *e, nil
	}
	return election.Election{}, election.ErrNotFound
}

func (r *electionRepository) ListElections(_ context.Context) ([]election.Election, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	elections := make([]election.Election, 0, len(r.db.elections))
	for _, e := range r.db.elections {
		elections = append(elections, *e)
	}
	sortElections(elections)
	return elections, nil
}

func (r *electionRepository) ListActiveElections(_ context.Context, now time.Time) ([]election.Election, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	elections := make([]election.Election, 0, len(r.db.elections))
	for _, e := range r.db.elections {
		if e.IsActive(now) {
			elections = append(elections, *e)
		}
	}
	sortElections(elections)
	return elections, nil
}

func sortElections(elections []election.Election) {
	sort.Slice(elections, func(i, j int) bool {
		if !elections[i].StartDate.Equal(elections[j].StartDate) {
			return elections[i].StartDate.Before(elections[j].StartDate)
		}
		return elections[i].Name < elections[j].Name
	})
}

func (r *electionRepository) GetOption(_ context.Context, id string) (election.Option, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	if opt, ok := r.db.options[id]; ok {
		return *opt, nil
	}
	return election.Option{}, election.ErrOptionNotFound
}

func (r *electionRepository) ListOptions(_ context.Context, electionID string) ([]election.Option, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	options := make([]election.Option, 0)
	for _, opt := range r.db.options {
		if opt.ElectionID == electionID {
			options = append(options, *opt)
		}
	}
	sort.Slice(options, func(i, j int) bool { return options[i].Position < options[j].Position })
	return options, nil
}

func (r *electionRepository) InsertVote(_ context.Context, v election.Vote) error {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	key := voteKey{username: v.Username, electionID: v.ElectionID}
	if _, ok := r.db.votes[key]; ok {
		return election.ErrAlreadyVoted
	}
	r.db.votes[key] = &v
	return nil
}

func (r *electionRepository) CountVotesByOption(_ context.Context, electionID string) (map[string]int, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	counts := make(map[string]int)
	for _, v := range r.db.votes {
		if v.ElectionID == electionID {
			counts[v.OptionID]++
		}
	}
	return counts, nil
}
