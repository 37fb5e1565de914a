package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/studorg/quorum/core/member"
)

// isUniqueViolation reports whether err is a psql unique constraint conflict.
// The constraint, not a prior read, is what enforces our uniqueness
// invariants.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation"
}

type dbMember struct {
	Username       string    `db:"username"`
	Name           string    `db:"name"`
	Email          string    `db:"email"`
	Courses        string    `db:"courses"`
	RegisterDate   time.Time `db:"register_date"`
	CanVoteDate    time.Time `db:"can_vote_date"`
	RenewStartDate time.Time `db:"renew_start_date"`
	RenewEndDate   time.Time `db:"renew_end_date"`
}

func packMember(m member.Member) dbMember {
	return dbMember{
		Username:       m.Username,
		Name:           m.Name,
		Email:          m.Email,
		Courses:        m.Courses,
		RegisterDate:   m.RegisterDate.UTC(),
		CanVoteDate:    m.CanVoteDate.UTC(),
		RenewStartDate: m.RenewStartDate.UTC(),
		RenewEndDate:   m.RenewEndDate.UTC(),
	}
}

func (r dbMember) unpack() member.Member {
	return member.Member{
		Username:       r.Username,
		Name:           r.Name,
		Email:          r.Email,
		Courses:        r.Courses,
		RegisterDate:   r.RegisterDate,
		CanVoteDate:    r.CanVoteDate,
		RenewStartDate: r.RenewStartDate,
		RenewEndDate:   r.RenewEndDate,
	}
}

func unpackMembers(rows []dbMember) []member.Member {
	members := make([]member.Member, 0, len(rows))
	for _, r := range rows {
		members = append(members, r.unpack())
	}
	return members
}

type memberRepository struct {
	db *sqlx.DB
}

var _ member.Repository = (*memberRepository)(nil) // interface compliance check

func NewMemberRepository(db *sqlx.DB) *memberRepository {
	return &memberRepository{db: db}
}

// trapNoRowsErr maps psql "no rows" err to member.ErrNotFound
func (repo memberRepository) trapNoRowsErr(err error, msg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return member.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo memberRepository) CreateMember(ctx context.Context, m member.Member) error {
	_, err := repo.db.NamedExecContext(ctx,
		`INSERT INTO member (username, name, email, courses, register_date, can_vote_date, renew_start_date, renew_end_date)
		 VALUES (:username, :name, :email, :courses, :register_date, :can_vote_date, :renew_start_date, :renew_end_date)`,
		packMember(m),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return member.ErrMemberExists
		}
		return errors.Wrap(err, "inserting member")
	}
	return nil
}

func (repo memberRepository) UpdateMember(ctx context.Context, m member.Member) error {
	res, err := repo.db.NamedExecContext(ctx,
		`UPDATE member
		 SET name = :name, email = :email, courses = :courses, register_date = :register_date,
		     can_vote_date = :can_vote_date, renew_start_date = :renew_start_date, renew_end_date = :renew_end_date
		 WHERE username = :username`,
		packMember(m),
	)
	if err != nil {
		return errors.Wrap(err, "updating member")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return member.ErrNotFound
	}
	return nil
}

func (repo memberRepository) GetMember(ctx context.Context, username string) (member.Member, error) {
	var row dbMember
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM member WHERE username = $1`, username)
	if err != nil {
		return member.Member{}, repo.trapNoRowsErr(err, "finding member")
	}
	return row.unpack(), nil
}

func (repo memberRepository) QueryAllMembers(ctx context.Context) ([]member.Member, error) {
	var rows []dbMember
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT * FROM member ORDER BY length(username), username`)
	if err != nil {
		return nil, errors.Wrap(err, "querying members")
	}
	return unpackMembers(rows), nil
}

func (repo memberRepository) QueryActiveMembers(ctx context.Context, now, limit time.Time) ([]member.Member, error) {
	var rows []dbMember
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT * FROM member
		 WHERE register_date > $1 AND renew_end_date > $2
		 ORDER BY length(username), username`,
		limit.UTC(), now.UTC(),
	)
	if err != nil {
		return nil, errors.Wrap(err, "querying active members")
	}
	return unpackMembers(rows), nil
}

func (repo memberRepository) AddRenewalNotification(ctx context.Context, username string) error {
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO renewal_notification (username) VALUES ($1)`, username)
	if err != nil {
		if isUniqueViolation(err) {
			return member.ErrAlreadyWarned
		}
		return errors.Wrap(err, "inserting renewal notification")
	}
	return nil
}

func (repo memberRepository) RemoveRenewalNotification(ctx context.Context, username string) error {
	_, err := repo.db.ExecContext(ctx,
		`DELETE FROM renewal_notification WHERE username = $1`, username)
	if err != nil {
		return errors.Wrap(err, "deleting renewal notification")
	}
	return nil
}

func (repo memberRepository) ListRenewalNotifications(ctx context.Context) ([]member.Member, error) {
	var rows []dbMember
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT m.* FROM member m
		 JOIN renewal_notification n ON n.username = m.username
		 ORDER BY length(m.username), m.username`)
	if err != nil {
		return nil, errors.Wrap(err, "querying renewal notifications")
	}
	return unpackMembers(rows), nil
}

func (repo memberRepository) PruneRenewalNotifications(ctx context.Context, now time.Time) error {
	_, err := repo.db.ExecContext(ctx,
		`DELETE FROM renewal_notification
		 WHERE username IN (SELECT username FROM member WHERE renew_end_date < $1)`,
		now.UTC(),
	)
	if err != nil {
		return errors.Wrap(err, "pruning renewal notifications")
	}
	return nil
}
