package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/studorg/quorum/core"
	"github.com/studorg/quorum/core/election"
	"github.com/studorg/quorum/core/member"
)

// CreateMember inserts a member with milestone dates derived from
// registeredAt, bypassing the service layer.
func CreateMember(
	t *testing.T,
	repo member.Repository,
	username, name, email string,
	registeredAt time.Time,
) member.Member {
	t.Helper()

	registeredAt = registeredAt.UTC()
	m := member.Member{
		Username:       username,
		Name:           name,
		Email:          email,
		RegisterDate:   registeredAt,
		CanVoteDate:    core.AddMonths(member.WaitingPeriod, registeredAt),
		RenewStartDate: core.AddMonths(member.ValidPeriod, registeredAt),
		RenewEndDate:   core.AddMonths(member.ValidPeriod+member.GracePeriod, registeredAt),
	}
	if err := repo.CreateMember(context.Background(), m); err != nil {
		t.Fatalf("CreateMember() failed: %v", err)
	}
	return m
}

// CreateElection inserts an election with its options in ballot order.
func CreateElection(
	t *testing.T,
	repo election.Repository,
	name string,
	start, end time.Time,
	options ...string,
) election.Election {
	t.Helper()

	e, err := repo.CreateElection(context.Background(), election.Election{
		Name:      name,
		StartDate: start.UTC(),
		EndDate:   end.UTC(),
	}, options)
	if err != nil {
		t.Fatalf("CreateElection() failed: %v", err)
	}
	return e
}
