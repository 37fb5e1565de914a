package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/studorg/quorum/core/member"
)

type memberRepository struct {
	db *memberTable
}

var _ member.Repository = (*memberRepository)(nil) // interface compliance check

func NewMemberRepository(db *DB) *memberRepository {
	return &memberRepository{db: db.member}
}

// sortMembers orders like the production query: username length, then username.
func sortMembers(members []member.Member) {
	sort.Slice(members, func(i, j int) bool {
		if len(members[i].Username) != len(members[j].Username) {
			return len(members[i].Username) < len(members[j].Username)
		}
		return members[i].Username < members[j].Username
	})
}

func (r *memberRepository) CreateMember(_ context.Context, m member.Member) error {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	if _, ok := r.db.t[m.Username]; ok {
		return member.ErrMemberExists
	}
	r.db.t[m.Username] = &m
	return nil
}

func (r *memberRepository) UpdateMember(_ context.Context, m member.Member) error {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	if _, ok := r.db.t[m.Username]; !ok {
		return member.ErrNotFound
	}
	r.db.t[m.Username] = &m
	return nil
}

func (r *memberRepository) GetMember(_ context.Context, username string) (member.Member, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	if m, ok := r.db.t[username]; ok {
		return *m, nil
	}
	return member.Member{}, member.ErrNotFound
}

func (r *memberRepository) QueryAllMembers(_ context.Context) ([]member.Member, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	members := make([]member.Member, 0, len(r.db.t))
	for _, m := range r.db.t {
		members = append(members, *m)
	}
	sortMembers(members)
	return members, nil
}

func (r *memberRepository) QueryActiveMembers(_ context.Context, now, limit time.Time) ([]member.Member, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	members := make([]member.Member, 0, len(r.db.t))
	for _, m := range r.db.t {
		if m.RegisterDate.After(limit) && m.RenewEndDate.After(now) {
			members = append(members, *m)
		}
	}
	sortMembers(members)
	return members, nil
}

func (r *memberRepository) AddRenewalNotification(_ context.Context, username string) error {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	if r.db.warned[username] {
		return member.ErrAlreadyWarned
	}
	r.db.warned[username] = true
	return nil
}

func (r *memberRepository) RemoveRenewalNotification(_ context.Context, username string) error {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	delete(r.db.warned, username)
	return nil
}

func (r *memberRepository) ListRenewalNotifications(_ context.Context) ([]member.Member, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	members := make([]member.Member, 0, len(r.db.warned))
	for username := range r.db.warned {
		if m, ok := r.db.t[username]; ok {
			members = append(members, *m)
		}
	}
	sortMembers(members)
	return members, nil
}

func (r *memberRepository) PruneRenewalNotifications(_ context.Context, now time.Time) error {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	for username := range r.db.warned {
		if m, ok := r.db.t[username]; ok && now.After(m.RenewEndDate) {
			delete(r.db.warned, username)
		}
	}
	return nil
}
