package sqlite

import (
	"context"
	"fmt"
	"io"

	"github.com/jmoiron/sqlx"
	"github.com/versemate-seed-db/internal/models"
)

// DefaultBatchSize is used when a non-positive chunk size is given
const DefaultBatchSize = 1000

// LoadBatched executes query once per row, committing every chunkSize rows.
// Each chunk is its own transaction: if a chunk fails it is rolled back and
// every earlier chunk stays committed. Progress is written to out as
// "label: done/total", overwriting the line until the final "done" line.
//
// query should use INSERT OR IGNORE so that rows hitting a unique constraint
// are skipped. The returned count only includes rows that were written.
func LoadBatched(ctx context.Context, db *sqlx.DB, query string, rows []models.Row, chunkSize int, label string, out io.Writer) (int, error) {
	total := len(rows)
	if total == 0 {
		return 0, nil
	}
	if chunkSize <= 0 {
		chunkSize = DefaultBatchSize
	}
	if out == nil {
		out = io.Discard
	}

	inserted := 0
	for i := 0; i < total; i += chunkSize {
		end := i + chunkSize
		if end > total {
			end = total
		}

		n, err := loadChunk(ctx, db, query, rows[i:end])
		if err != nil {
			return inserted, fmt.Errorf("%s rows %d-%d: %w", label, i+1, end, err)
		}
		inserted += n

		fmt.Fprintf(out, "    %s: %d/%d\r", label, end, total)
	}
	fmt.Fprintf(out, "    %s: %d/%d done         \n", label, total, total)

	return inserted, nil
}

func loadChunk(ctx context.Context, db *sqlx.DB, query string, chunk []models.Row) (int, error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	// No-op once committed
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PreparexContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, row := range chunk {
		res, err := stmt.ExecContext(ctx, row...)
		if err != nil {
			return 0, fmt.Errorf("insert: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("rows affected: %w", err)
		}
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return inserted, nil
}
