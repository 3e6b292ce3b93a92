package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/webwaka/pesaflow/internal/analytics"
	"github.com/webwaka/pesaflow/internal/transaction"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) ByAdapter(ctx context.Context, f analytics.Filter) ([]analytics.StateRow, error) {
	return s.aggregate(ctx, "t.adapter_id", f)
}

func (s *Store) ByCurrency(ctx context.Context, f analytics.Filter) ([]analytics.StateRow, error) {
	return s.aggregate(ctx, "t.currency", f)
}

// aggregate groups the ledger by (key, state). Settlement latency only exists
// for rows with a terminal_at, so the AVG covers exactly the settled ones.
func (s *Store) aggregate(ctx context.Context, keyColumn string, f analytics.Filter) ([]analytics.StateRow, error) {
	query := `
		SELECT ` + keyColumn + `, t.state, COUNT(*),
			COALESCE(SUM(t.amount), 0),
			COALESCE(AVG(EXTRACT(EPOCH FROM (t.terminal_at - t.created_at))), 0)
		FROM transactions t
		WHERE 1=1`

	var args []any

	argIdx := 1

	if f.Since != nil {
		query += fmt.Sprintf(" AND t.created_at >= $%d", argIdx)

		args = append(args, *f.Since)
		argIdx++
	}

	if f.Until != nil {
		query += fmt.Sprintf(" AND t.created_at <= $%d", argIdx)

		args = append(args, *f.Until)
		argIdx++
	}

	query += ` GROUP BY ` + keyColumn + `, t.state ORDER BY ` + keyColumn

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("aggregating transactions: %w", err)
	}
	defer rows.Close()

	var out []analytics.StateRow

	for rows.Next() {
		var row analytics.StateRow

		var stateStr string

		if err := rows.Scan(&row.Key, &stateStr, &row.Count, &row.Volume, &row.AvgSettleSeconds); err != nil {
			return nil, fmt.Errorf("scanning aggregate row: %w", err)
		}

		row.State = transaction.State(stateStr)

		out = append(out, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating aggregate rows: %w", err)
	}

	return out, nil
}
