package report

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Adithya-Monish-Kumar-K/Retrieval-System/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/Retrieval-System/pkg/postgres"
	"github.com/Adithya-Monish-Kumar-K/Retrieval-System/pkg/resilience"
)

const createResultsTable = `
CREATE TABLE IF NOT EXISTS retrieval_results (
	system     TEXT             NOT NULL,
	query_id   INTEGER          NOT NULL,
	rank       INTEGER          NOT NULL,
	doc_id     INTEGER          NOT NULL,
	score      DOUBLE PRECISION NOT NULL,
	created_at TIMESTAMPTZ      NOT NULL DEFAULT now(),
	PRIMARY KEY (system, query_id, rank)
)`

const (
	deleteQueryRows = `DELETE FROM retrieval_results WHERE system = $1 AND query_id = $2`
	insertResultRow = `INSERT INTO retrieval_results (system, query_id, rank, doc_id, score) VALUES ($1, $2, $3, $4, $5)`
)

// PostgresSink stores run lines in the retrieval_results table. Rewriting a
// query replaces its earlier rows for the same system label.
type PostgresSink struct {
	client *postgres.Client
}

func NewPostgresSink(client *postgres.Client) *PostgresSink {
	return &PostgresSink{client: client}
}

func (s *PostgresSink) Name() string { return "postgres" }

// EnsureSchema creates the results table if it does not exist.
func (s *PostgresSink) EnsureSchema(ctx context.Context) error {
	if _, err := s.client.DB.ExecContext(ctx, createResultsTable); err != nil {
		return fmt.Errorf("creating retrieval_results table: %w", err)
	}
	return nil
}

// Write replaces the stored rows of every query in results. Errors that a
// retry cannot fix are marked permanent.
func (s *PostgresSink) Write(ctx context.Context, label string, results []ranker.RankedResult) error {
	err := s.client.InTx(ctx, func(tx *sql.Tx) error {
		var rows [][]any
		for _, r := range results {
			if _, err := tx.ExecContext(ctx, deleteQueryRows, label, r.QueryID); err != nil {
				return fmt.Errorf("clearing query %d: %w", r.QueryID, err)
			}
			for _, l := range Lines(r, label) {
				rows = append(rows, []any{l.SystemLabel, l.QueryID, l.Rank, l.DocID, l.Score})
			}
		}
		if _, err := postgres.ExecBatch(ctx, tx, insertResultRow, rows); err != nil {
			return fmt.Errorf("inserting results: %w", err)
		}
		return nil
	})
	if err != nil && !postgres.IsRetryable(err) {
		return resilience.Permanent(err)
	}
	return err
}
