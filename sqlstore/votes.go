package sqlstore

import (
	"context"
	"fmt"

	"github.com/jhchabran/qanda"
	"github.com/jmoiron/sqlx"
)

// voteTable describes a table of votes and the column referencing the voted entity.
type voteTable struct {
	name   string
	column string
}

var (
	questionVotes = voteTable{name: "question_votes", column: "question_id"}
	answerVotes   = voteTable{name: "answer_votes", column: "answer_id"}
)

type voteCount struct {
	EntityID  int64 `db:"entity_id"`
	TotalVote int64 `db:"total_vote"`
}

// insertVote stores the vote row in the table, the vote referencing its entity through the
// table column.
func (s *Store) insertVote(ctx context.Context, e sqlx.ExtContext, t voteTable, vote *qanda.Vote) error {
	query := fmt.Sprintf(
		"INSERT INTO %[1]s (%[2]s, vote, created_at, updated_at) VALUES (:%[2]s, :vote, :created_at, :updated_at)",
		t.name, t.column,
	)
	_, err := sqlx.NamedExecContext(ctx, e, query, vote)
	if err != nil {
		return fmt.Errorf("insert %s in %s: %w", vote.Vote, t.name, err)
	}

	return nil
}

// tallyVotes counts the up and down votes of an entity, one grouped count per polarity.
// A polarity without any vote yields no group and counts as zero.
func (s *Store) tallyVotes(ctx context.Context, q sqlx.QueryerContext, t voteTable, id int64) (qanda.Tally, error) {
	up, err := s.countVotes(ctx, q, t, id, qanda.Upvote)
	if err != nil {
		return qanda.Tally{}, err
	}

	down, err := s.countVotes(ctx, q, t, id, qanda.Downvote)
	if err != nil {
		return qanda.Tally{}, err
	}

	return qanda.Tally{Upvotes: up, Downvotes: down}, nil
}

func (s *Store) countVotes(ctx context.Context, q sqlx.QueryerContext, t voteTable, id int64, vote qanda.Polarity) (int64, error) {
	query := fmt.Sprintf(
		"SELECT %[2]s AS entity_id, count(vote) AS total_vote FROM %[1]s WHERE %[2]s = ? AND vote = ? GROUP BY %[2]s",
		t.name, t.column,
	)

	counts := []voteCount{}
	err := sqlx.SelectContext(ctx, q, &counts, s.rebind(query), id, int64(vote))
	if err != nil {
		return 0, fmt.Errorf("count %ss on %s %d: %w", vote, t.column, id, err)
	}

	if len(counts) == 0 {
		return 0, nil
	}

	return counts[0].TotalVote, nil
}
