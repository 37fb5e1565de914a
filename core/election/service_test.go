package election_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studorg/quorum/core"
	"github.com/studorg/quorum/core/election"
	"github.com/studorg/quorum/core/member"
	emailsvc "github.com/studorg/quorum/services/email"
	inmemdb "github.com/studorg/quorum/storage/database/inmem"
	testutil "github.com/studorg/quorum/tests"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func setup(t *testing.T) (election.Service, election.Repository, member.Repository) {
	t.Helper()

	conf := &core.Config{
		AppName:         "Quorum",
		TestMode:        true,
		WorkDir:         core.Getwd(),
		FrontendBaseURL: "http://localhost:3000",
	}
	db := inmemdb.Open()
	memberRepo := inmemdb.NewMemberRepository(db)
	electionRepo := inmemdb.NewElectionRepository(db)
	memberSvc := member.NewService(memberRepo, emailsvc.NewConsoleServiceMock(conf), conf)
	return election.NewService(electionRepo, memberSvc), electionRepo, memberRepo
}

func TestElection_IsActive(t *testing.T) {
	e := election.Election{
		StartDate: date(2024, time.June, 1),
		EndDate:   date(2024, time.June, 7),
	}

	// both bounds are voting days
	assert.False(t, e.IsActive(date(2024, time.May, 31)))
	assert.True(t, e.IsActive(date(2024, time.June, 1)))
	assert.True(t, e.IsActive(date(2024, time.June, 4)))
	assert.True(t, e.IsActive(date(2024, time.June, 7)))
	assert.False(t, e.IsActive(date(2024, time.June, 8)))
}

func TestNewElection_Validate(t *testing.T) {
	valid := func() election.NewElection {
		return election.NewElection{
			Name:      "Board 2024",
			StartDate: date(2024, time.June, 1),
			EndDate:   date(2024, time.June, 7),
			Options:   []string{"Alice", "Bob"},
		}
	}

	ne := valid()
	assert.NoError(t, ne.Validate())

	ne = valid()
	ne.Name = ""
	assert.Error(t, ne.Validate())

	ne = valid()
	ne.EndDate = ne.StartDate
	assert.Error(t, ne.Validate())

	ne = valid()
	ne.Options = []string{"Alice"}
	assert.Error(t, ne.Validate())

	ne = valid()
	ne.Options = []string{"Alice", ""}
	assert.Error(t, ne.Validate())
}

func TestService_CastVote(t *testing.T) {
	ctx := context.Background()
	now := date(2024, time.June, 3)

	newElector := func(t *testing.T, repo member.Repository, username string) member.Member {
		// registered 2024-01-01: an elector from 2024-05-01
		return testutil.CreateMember(t, repo, username, "Awe", username+"@test.cd", date(2024, time.January, 1))
	}

	t.Run("happy path", func(t *testing.T) {
		svc, electionRepo, memberRepo := setup(t)
		m := newElector(t, memberRepo, "awe123")
		e := testutil.CreateElection(t, electionRepo, "Board 2024",
			date(2024, time.June, 1), date(2024, time.June, 7), "Alice", "Bob")
		opts, err := electionRepo.ListOptions(ctx, e.ID)
		require.NoError(t, err)

		require.NoError(t, svc.CastVote(ctx, m.Username, e.ID, opts[0].ID, now))

		tally, err := svc.Tally(ctx, e.ID)
		require.NoError(t, err)
		require.Len(t, tally, 2)
		assert.Equal(t, "Alice", tally[0].Name)
		assert.Equal(t, 1, tally[0].Votes)
		assert.Equal(t, 0, tally[1].Votes)
	})

	t.Run("double vote", func(t *testing.T) {
		svc, electionRepo, memberRepo := setup(t)
		m := newElector(t, memberRepo, "awe123")
		e := testutil.CreateElection(t, electionRepo, "Board 2024",
			date(2024, time.June, 1), date(2024, time.June, 7), "Alice", "Bob")
		opts, err := electionRepo.ListOptions(ctx, e.ID)
		require.NoError(t, err)

		require.NoError(t, svc.CastVote(ctx, m.Username, e.ID, opts[0].ID, now))
		// a different option makes no difference: one ballot per election
		err = svc.CastVote(ctx, m.Username, e.ID, opts[1].ID, now)
		assert.ErrorIs(t, err, election.ErrAlreadyVoted)
	})

	t.Run("not a member", func(t *testing.T) {
		svc, electionRepo, _ := setup(t)
		e := testutil.CreateElection(t, electionRepo, "Board 2024",
			date(2024, time.June, 1), date(2024, time.June, 7), "Alice", "Bob")
		opts, err := electionRepo.ListOptions(ctx, e.ID)
		require.NoError(t, err)

		err = svc.CastVote(ctx, "nobody", e.ID, opts[0].ID, now)
		assert.ErrorIs(t, err, member.ErrNotFound)
	})

	t.Run("not eligible", func(t *testing.T) {
		svc, electionRepo, memberRepo := setup(t)
		e := testutil.CreateElection(t, electionRepo, "Board 2024",
			date(2024, time.June, 1), date(2024, time.June, 7), "Alice", "Bob")
		opts, err := electionRepo.ListOptions(ctx, e.ID)
		require.NoError(t, err)

		tests := []struct {
			name         string
			registeredAt time.Time
		}{
			{name: "still waiting", registeredAt: date(2024, time.April, 1)},
			{name: "must renew", registeredAt: date(2023, time.May, 1)},
			{name: "expired", registeredAt: date(2022, time.January, 1)},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				m := testutil.CreateMember(t, memberRepo, "m"+tt.registeredAt.Format("060102"),
					"Awe", "awe@test.cd", tt.registeredAt)
				err := svc.CastVote(ctx, m.Username, e.ID, opts[0].ID, now)
				assert.ErrorIs(t, err, election.ErrNotEligible)
			})
		}
	})

	t.Run("election not active", func(t *testing.T) {
		svc, electionRepo, memberRepo := setup(t)
		m := newElector(t, memberRepo, "awe123")
		e := testutil.CreateElection(t, electionRepo, "Board 2023",
			date(2024, time.May, 1), date(2024, time.June, 2), "Alice", "Bob") // ended yesterday
		opts, err := electionRepo.ListOptions(ctx, e.ID)
		require.NoError(t, err)

		err = svc.CastVote(ctx, m.Username, e.ID, opts[0].ID, now)
		assert.ErrorIs(t, err, election.ErrNotActive)
	})

	t.Run("option from another election", func(t *testing.T) {
		svc, electionRepo, memberRepo := setup(t)
		m := newElector(t, memberRepo, "awe123")
		e := testutil.CreateElection(t, electionRepo, "Board 2024",
			date(2024, time.June, 1), date(2024, time.June, 7), "Alice", "Bob")
		other := testutil.CreateElection(t, electionRepo, "Bylaws 2024",
			date(2024, time.June, 1), date(2024, time.June, 7), "Yes", "No")
		otherOpts, err := electionRepo.ListOptions(ctx, other.ID)
		require.NoError(t, err)

		err = svc.CastVote(ctx, m.Username, e.ID, otherOpts[0].ID, now)
		assert.ErrorIs(t, err, election.ErrOptionNotFound)
	})

	t.Run("unknown election", func(t *testing.T) {
		svc, _, memberRepo := setup(t)
		m := newElector(t, memberRepo, "awe123")

		err := svc.CastVote(ctx, m.Username, "a2e7a83a-0000-0000-0000-000000000000", "lol", now)
		assert.ErrorIs(t, err, election.ErrNotFound)
	})
}

func TestService_Tally(t *testing.T) {
	svc, electionRepo, memberRepo := setup(t)
	ctx := context.Background()
	now := date(2024, time.June, 3)

	e := testutil.CreateElection(t, electionRepo, "Board 2024",
		date(2024, time.June, 1), date(2024, time.June, 7), "Alice", "Bob", "Carol")
	opts, err := electionRepo.ListOptions(ctx, e.ID)
	require.NoError(t, err)

	vote := func(i int, optionID string) {
		username := "voter" + string(rune('a'+i))
		m := testutil.CreateMember(t, memberRepo, username, "Voter", username+"@test.cd", date(2024, time.January, 1))
		require.NoError(t, svc.CastVote(ctx, m.Username, e.ID, optionID, now))
	}

	// Alice: 3, Bob: 5, Carol: 0
	for i := 0; i < 3; i++ {
		vote(i, opts[0].ID)
	}
	for i := 3; i < 8; i++ {
		vote(i, opts[1].ID)
	}

	tally, err := svc.Tally(ctx, e.ID)
	require.NoError(t, err)
	require.Len(t, tally, 3)
	assert.Equal(t, election.Result{OptionID: opts[1].ID, Name: "Bob", Votes: 5}, tally[0])
	assert.Equal(t, election.Result{OptionID: opts[0].ID, Name: "Alice", Votes: 3}, tally[1])
	assert.Equal(t, election.Result{OptionID: opts[2].ID, Name: "Carol", Votes: 0}, tally[2])
}

func TestService_Tally_tiesKeepBallotOrder(t *testing.T) {
	svc, electionRepo, _ := setup(t)
	ctx := context.Background()

	e := testutil.CreateElection(t, electionRepo, "Board 2024",
		date(2024, time.June, 1), date(2024, time.June, 7), "Carol", "Alice", "Bob")

	tally, err := svc.Tally(ctx, e.ID)
	require.NoError(t, err)
	require.Len(t, tally, 3)
	assert.Equal(t, "Carol", tally[0].Name)
	assert.Equal(t, "Alice", tally[1].Name)
	assert.Equal(t, "Bob", tally[2].Name)
}

func TestService_QueryActive(t *testing.T) {
	svc, electionRepo, _ := setup(t)
	ctx := context.Background()

	testutil.CreateElection(t, electionRepo, "Board 2023",
		date(2023, time.June, 1), date(2023, time.June, 7), "Alice", "Bob")
	testutil.CreateElection(t, electionRepo, "Board 2024",
		date(2024, time.June, 1), date(2024, time.June, 7), "Alice", "Bob")

	active, err := svc.QueryActive(ctx, date(2024, time.June, 3))
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Board 2024", active[0].Name)
	require.Len(t, active[0].Options, 2)

	all, err := svc.QueryAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
