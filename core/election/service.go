package election

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/studorg/quorum/core"
	"github.com/studorg/quorum/core/member"
)

var (
	// errors
	ErrNotFound       = errors.New("election not found")
	ErrOptionNotFound = errors.New("option not found")
	ErrNotActive      = errors.New("election is not active")
	ErrNotEligible    = errors.New("member is not eligible to vote")
	ErrAlreadyVoted   = errors.New("member has already voted in this election")
)

type (
	Repository interface {
		CreateElection(ctx context.Context, e Election, options []string) (Election, error)
		GetElection(ctx context.Context, id string) (Election, error)
		ListElections(ctx context.Context) ([]Election, error)
		ListActiveElections(ctx context.Context, now time.Time) ([]Election, error)
		GetOption(ctx context.Context, id string) (Option, error)
		// ListOptions returns an election's options in insertion order.
		ListOptions(ctx context.Context, electionID string) ([]Option, error)
		// InsertVote records a ballot; it fails with ErrAlreadyVoted when the
		// (username, electionID) primary key is already taken. The constraint
		// is the invariant: no prior existence check is made.
		InsertVote(ctx context.Context, v Vote) error
		CountVotesByOption(ctx context.Context, electionID string) (map[string]int, error)
	}

	Service interface {
		Create(ctx context.Context, ne NewElection) (Election, error)
		Get(ctx context.Context, id string) (Detail, error)
		QueryAll(ctx context.Context) ([]Detail, error)
		QueryActive(ctx context.Context, now time.Time) ([]Detail, error)
		CastVote(ctx context.Context, username, electionID, optionID string, now time.Time) error
		Tally(ctx context.Context, electionID string) ([]Result, error)
	}

	service struct {
		repo      Repository
		memberSvc member.Service
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, memberSvc member.Service) Service {
	return &service{
		repo:      repo,
		memberSvc: memberSvc,
	}
}

func (svc *service) Create(ctx context.Context, ne NewElection) (Election, error) {
	e := Election{
		Name:      ne.Name,
		StartDate: ne.StartDate.UTC(),
		EndDate:   ne.EndDate.UTC(),
	}
	return svc.repo.CreateElection(ctx, e, ne.Options)
}

func (svc *service) Get(ctx context.Context, id string) (Detail, error) {
	e, err := svc.repo.GetElection(ctx, id)
	if err != nil {
		return Detail{}, err
	}
	return svc.detail(ctx, e)
}

func (svc *service) QueryAll(ctx context.Context) ([]Detail, error) {
	elections, err := svc.repo.ListElections(ctx)
	if err != nil {
		return nil, err
	}
	return svc.details(ctx, elections)
}

func (svc *service) QueryActive(ctx context.Context, now time.Time) ([]Detail, error) {
	elections, err := svc.repo.ListActiveElections(ctx, now)
	if err != nil {
		return nil, err
	}
	return svc.details(ctx, elections)
}

// CastVote records a member's ballot. The status and window checks below
// fail fast with a specific reason; the one-vote-per-member guarantee itself
// rests on the vote primary key, which InsertVote surfaces as
// ErrAlreadyVoted even under concurrent requests.
func (svc *service) CastVote(ctx context.Context, username, electionID, optionID string, now time.Time) error {
	username = core.CleanString(username, true /* lower */)

	status, err := svc.memberSvc.GetStatus(ctx, username, now)
	if err != nil {
		return err
	}
	if status == member.StatusNotAMember {
		return member.ErrNotFound
	}
	if status != member.StatusElector {
		return ErrNotEligible
	}

	e, err := svc.repo.GetElection(ctx, electionID)
	if err != nil {
		return err
	}
	if !e.IsActive(now) {
		return ErrNotActive
	}

	opt, err := svc.repo.GetOption(ctx, optionID)
	if err != nil {
		return err
	}
	if opt.ElectionID != e.ID {
		return ErrOptionNotFound
	}

	return svc.repo.InsertVote(ctx, Vote{
		Username:   username,
		ElectionID: e.ID,
		OptionID:   opt.ID,
	})
}

// Tally returns the election's options with their vote counts, most voted
// first. Ties keep the options' insertion order.
func (svc *service) Tally(ctx context.Context, electionID string) ([]Result, error) {
	e, err := svc.repo.GetElection(ctx, electionID)
	if err != nil {
		return nil, err
	}
	opts, err := svc.repo.ListOptions(ctx, e.ID)
	if err != nil {
		return nil, err
	}
	counts, err := svc.repo.CountVotesByOption(ctx, e.ID)
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(opts))
	for _, opt := range opts {
		results = append(results, Result{
			OptionID: opt.ID,
			Name:     opt.Name,
			Votes:    counts[opt.ID],
		})
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Votes > results[j].Votes })
	return results, nil
}

func (svc *service) detail(ctx context.Context, e Election) (Detail, error) {
	results, err := svc.Tally(ctx, e.ID)
	if err != nil {
		return Detail{}, err
	}
	return Detail{Election: e, Options: results}, nil
}

func (svc *service) details(ctx context.Context, elections []Election) ([]Detail, error) {
	details := make([]Detail, 0, len(elections))
	for _, e := range elections {
		d, err := svc.detail(ctx, e)
		if err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	return details, nil
}
