package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// repoPG persists sessions in Postgres. The dialogue, ordered tests,
// results, and submission are stored as JSONB documents since nothing
// queries inside them.
type repoPG struct {
	pool *pgxpool.Pool
}

// NewRepo creates a Postgres-backed repository.
func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

const sessionCols = `id, case_id, learner, status, conversation, ordered_tests, test_results, submission, created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, s *Session) error {
	conversation, orderedTests, testResults, submission, err := marshalDocs(s)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO sessions (id, case_id, learner, status, conversation, ordered_tests, test_results, submission, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		s.ID, s.CaseID, s.Learner, s.Status, conversation, orderedTests, testResults, submission, s.CreatedAt, s.UpdatedAt,
	)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Session, error) {
	return scanSession(r.pool.QueryRow(ctx, `SELECT `+sessionCols+` FROM sessions WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, s *Session) error {
	conversation, orderedTests, testResults, submission, err := marshalDocs(s)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, `
		UPDATE sessions SET
			status=$2, conversation=$3, ordered_tests=$4, test_results=$5, submission=$6, updated_at=NOW()
		WHERE id = $1`,
		s.ID, s.Status, conversation, orderedTests, testResults, submission,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, caseID string, limit, offset int) ([]*Session, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM sessions WHERE ($1 = '' OR case_id = $1)`, caseID,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+sessionCols+` FROM sessions
		WHERE ($1 = '' OR case_id = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		caseID, limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, s)
	}
	return out, total, rows.Err()
}

func marshalDocs(s *Session) (conversation, orderedTests, testResults, submission []byte, err error) {
	if conversation, err = json.Marshal(s.Conversation); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("encode conversation: %w", err)
	}
	if orderedTests, err = json.Marshal(s.OrderedTests); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("encode ordered tests: %w", err)
	}
	if testResults, err = json.Marshal(s.TestResults); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("encode test results: %w", err)
	}
	if s.Submission != nil {
		if submission, err = json.Marshal(s.Submission); err != nil {
			return nil, nil, nil, nil, fmt.Errorf("encode submission: %w", err)
		}
	}
	return conversation, orderedTests, testResults, submission, nil
}

func scanSession(row pgx.Row) (*Session, error) {
	var (
		s            Session
		conversation []byte
		orderedTests []byte
		testResults  []byte
		submission   []byte
	)
	err := row.Scan(&s.ID, &s.CaseID, &s.Learner, &s.Status,
		&conversation, &orderedTests, &testResults, &submission,
		&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if err := json.Unmarshal(conversation, &s.Conversation); err != nil {
		return nil, fmt.Errorf("decode conversation: %w", err)
	}
	if err := json.Unmarshal(orderedTests, &s.OrderedTests); err != nil {
		return nil, fmt.Errorf("decode ordered tests: %w", err)
	}
	if err := json.Unmarshal(testResults, &s.TestResults); err != nil {
		return nil, fmt.Errorf("decode test results: %w", err)
	}
	if len(submission) > 0 {
		s.Submission = &Submission{}
		if err := json.Unmarshal(submission, s.Submission); err != nil {
			return nil, fmt.Errorf("decode submission: %w", err)
		}
	}
	return &s, nil
}
