package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/studorg/quorum/core/election"
)

type dbElection struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	StartDate time.Time `db:"start_date"`
	EndDate   time.Time `db:"end_date"`
}

func (r dbElection) unpack() election.Election {
	return election.Election{
		ID:        r.ID,
		Name:      r.Name,
		StartDate: r.StartDate,
		EndDate:   r.EndDate,
	}
}

func unpackElections(rows []dbElection) []election.Election {
	elections := make([]election.Election, 0, len(rows))
	for _, r := range rows {
		elections = append(elections, r.unpack())
	}
	return elections
}

type dbOption struct {
	ID         string `db:"id"`
	Name       string `db:"name"`
	ElectionID string `db:"election_id"`
	Position   int    `db:"position"`
}

func (r dbOption) unpack() election.Option {
	return election.Option{
		ID:         r.ID,
		Name:       r.Name,
		ElectionID: r.ElectionID,
		Position:   r.Position,
	}
}

type electionRepository struct {
	db *sqlx.DB
}

var _ election.Repository = (*electionRepository)(nil) // interface compliance check

func NewElectionRepository(db *sqlx.DB) *electionRepository {
	return &electionRepository{db: db}
}

// trapNoRowsErr maps psql "no rows" err to the given sentinel
func (repo electionRepository) trapNoRowsErr(err, sentinel error, msg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return sentinel
	}
	return errors.Wrap(err, msg)
}

func (repo electionRepository) CreateElection(ctx context.Context, e election.Election, options []string) (election.Election, error) {
	e.ID = uuid.New().String()

	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return election.Election{}, errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO election (id, name, start_date, end_date) VALUES ($1, $2, $3, $4)`,
		e.ID, e.Name, e.StartDate.UTC(), e.EndDate.UTC(),
	)
	if err != nil {
		return election.Election{}, errors.Wrap(err, "inserting election")
	}
	for _, name := range options {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO option (id, name, election_id) VALUES ($1, $2, $3)`,
			uuid.New().String(), name, e.ID,
		)
		if err != nil {
			return election.Election{}, errors.Wrap(err, "inserting option")
		}
	}
	if err = tx.Commit(); err != nil {
		return election.Election{}, errors.Wrap(err, "committing election")
	}
	return e, nil
}

func (repo electionRepository) GetElection(ctx context.Context, id string) (election.Election, error) {
	if _, err := uuid.Parse(id); err != nil {
		return election.Election{}, election.ErrNotFound
	}
	var row dbElection
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM election WHERE id = $1`, id)
	if err != nil {
		return election.Election{}, repo.trapNoRowsErr(err, election.ErrNotFound, "finding election")
	}
	return row.unpack(), nil
}

func (repo electionRepository) ListElections(ctx context.Context) ([]election.Election, error) {
	var rows []dbElection
	err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM election ORDER BY start_date, name`)
	if err != nil {
		return nil, errors.Wrap(err, "querying elections")
	}
	return unpackElections(rows), nil
}

func (repo electionRepository) ListActiveElections(ctx context.Context, now time.Time) ([]election.Election, error) {
	var rows []dbElection
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT * FROM election WHERE $1 BETWEEN start_date AND end_date ORDER BY start_date, name`,
		now.UTC(),
	)
	if err != nil {
		return nil, errors.Wrap(err, "querying active elections")
	}
	return unpackElections(rows), nil
}

func (repo electionRepository) GetOption(ctx context.Context, id string) (election.Option, error) {
	if _, err := uuid.Parse(id); err != nil {
		return election.Option{}, election.ErrOptionNotFound
	}
	var row dbOption
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM option WHERE id = $1`, id)
	if err != nil {
		return election.Option{}, repo.trapNoRowsErr(err, election.ErrOptionNotFound, "finding option")
	}
	return row.unpack(), nil
}

func (repo electionRepository) ListOptions(ctx context.Context, electionID string) ([]election.Option, error) {
	var rows []dbOption
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT * FROM option WHERE election_id = $1 ORDER BY position`, electionID)
	if err != nil {
		return nil, errors.Wrap(err, "querying options")
	}
	options := make([]election.Option, 0, len(rows))
	for _, r := range rows {
		options = append(options, r.unpack())
	}
	return options, nil
}

func (repo electionRepository) InsertVote(ctx context.Context, v election.Vote) error {
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO vote (username, election_id, option_id) VALUES ($1, $2, $3)`,
		v.Username, v.ElectionID, v.OptionID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return election.ErrAlreadyVoted
		}
		return errors.Wrap(err, "inserting vote")
	}
	return nil
}

func (repo electionRepository) CountVotesByOption(ctx context.Context, electionID string) (map[string]int, error) {
	rows, err := repo.db.QueryxContext(ctx,
		`SELECT option_id, COUNT(*) FROM vote WHERE election_id = $1 GROUP BY option_id`, electionID)
	if err != nil {
		return nil, errors.Wrap(err, "counting votes")
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[string]int)
	for rows.Next() {
		var optionID string
		var count int
		if err = rows.Scan(&optionID, &count); err != nil {
			return nil, errors.Wrap(err, "counting votes")
		}
		counts[optionID] = count
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "counting votes")
	}
	return counts, nil
}
