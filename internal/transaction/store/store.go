package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/webwaka/pesaflow/internal/adapter"
	"github.com/webwaka/pesaflow/internal/transaction"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const selectTransactionColumns = `
	t.id, t.adapter_id, t.client_reference, t.external_id, t.amount, t.currency,
	t.direction, t.account, t.state, t.created_at, t.last_transitioned_at, t.terminal_at
`

// scanTransaction reads a transaction row from the scanner.
// Column order matches selectTransactionColumns.
func scanTransaction(s scanner) (*transaction.Transaction, error) {
	var tx transaction.Transaction

	var externalID sql.NullString

	var stateStr, directionStr string

	if err := s.Scan(
		&tx.ID, &tx.AdapterID, &tx.ClientReference, &externalID, &tx.Amount, &tx.Currency,
		&directionStr, &tx.Account, &stateStr, &tx.CreatedAt, &tx.LastTransitionedAt, &tx.TerminalAt,
	); err != nil {
		return nil, err
	}

	tx.ExternalID = externalID.String
	tx.State = transaction.State(stateStr)
	tx.Direction = adapter.Direction(directionStr)

	return &tx, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// AcquireOrGet inserts the transaction unless its (adapter_id,
// client_reference) pair already exists. ON CONFLICT DO NOTHING makes the
// race safe: concurrent callers insert at most one row, and everyone reads
// the surviving one back.
func (s *Store) AcquireOrGet(ctx context.Context, tx *transaction.Transaction) (*transaction.Transaction, bool, error) {
	query := `
		INSERT INTO transactions
			(id, adapter_id, client_reference, external_id, amount, currency,
			 direction, account, state, created_at, last_transitioned_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (adapter_id, client_reference) DO NOTHING
	`

	res, err := s.db.ExecContext(ctx, query,
		tx.ID,
		tx.AdapterID,
		tx.ClientReference,
		nullString(tx.ExternalID),
		tx.Amount,
		tx.Currency,
		tx.Direction,
		tx.Account,
		tx.State,
		tx.CreatedAt,
		tx.LastTransitionedAt,
	)
	if err != nil {
		return nil, false, fmt.Errorf("inserting transaction: %w", err)
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("checking insert result: %w", err)
	}

	if inserted == 1 {
		return tx, true, nil
	}

	existing, err := s.GetByReference(ctx, tx.AdapterID, tx.ClientReference)
	if err != nil {
		return nil, false, fmt.Errorf("loading existing transaction: %w", err)
	}

	return existing, false, nil
}

func (s *Store) Get(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + ` FROM transactions t WHERE t.id = $1`

	tx, err := scanTransaction(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, transaction.ErrNotFound
		}

		return nil, fmt.Errorf("getting transaction: %w", err)
	}

	return tx, nil
}

func (s *Store) GetByReference(ctx context.Context, adapterID, clientReference string) (*transaction.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + `
		FROM transactions t
		WHERE t.adapter_id = $1 AND t.client_reference = $2`

	tx, err := scanTransaction(s.db.QueryRowContext(ctx, query, adapterID, clientReference))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, transaction.ErrNotFound
		}

		return nil, fmt.Errorf("getting transaction by reference: %w", err)
	}

	return tx, nil
}

func (s *Store) GetByExternalID(ctx context.Context, adapterID, externalID string) (*transaction.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + `
		FROM transactions t
		WHERE t.adapter_id = $1 AND t.external_id = $2`

	tx, err := scanTransaction(s.db.QueryRowContext(ctx, query, adapterID, externalID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, transaction.ErrNotFound
		}

		return nil, fmt.Errorf("getting transaction by external id: %w", err)
	}

	return tx, nil
}

func (s *Store) UpdateState(ctx context.Context, tx *transaction.Transaction) error {
	query := `
		UPDATE transactions
		SET state = $1, external_id = $2, last_transitioned_at = $3, terminal_at = $4
		WHERE id = $5
	`

	_, err := s.db.ExecContext(ctx, query,
		tx.State,
		nullString(tx.ExternalID),
		tx.LastTransitionedAt,
		tx.TerminalAt,
		tx.ID,
	)
	if err != nil {
		return fmt.Errorf("updating transaction state: %w", err)
	}

	return nil
}

func (s *Store) List(ctx context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + ` FROM transactions t WHERE 1=1`

	var args []any

	argIdx := 1

	if filter.AdapterID != nil {
		query += fmt.Sprintf(" AND t.adapter_id = $%d", argIdx)

		args = append(args, *filter.AdapterID)
		argIdx++
	}

	if filter.State != nil {
		query += fmt.Sprintf(" AND t.state = $%d", argIdx)

		args = append(args, *filter.State)
		argIdx++
	}

	if filter.Since != nil {
		query += fmt.Sprintf(" AND t.created_at >= $%d", argIdx)

		args = append(args, *filter.Since)
		argIdx++
	}

	if filter.Until != nil {
		query += fmt.Sprintf(" AND t.created_at <= $%d", argIdx)

		args = append(args, *filter.Until)
		argIdx++
	}

	query += " ORDER BY t.created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer rows.Close()

	return collectTransactions(rows)
}

// ListOpen returns non-terminal transactions that last transitioned at or
// before the cutoff. This is the reconciliation work queue.
func (s *Store) ListOpen(ctx context.Context, cutoff time.Time) ([]*transaction.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + `
		FROM transactions t
		WHERE t.state IN ('created', 'submitted', 'pending')
		AND t.last_transitioned_at <= $1
		ORDER BY t.last_transitioned_at ASC`

	rows, err := s.db.QueryContext(ctx, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("listing open transactions: %w", err)
	}
	defer rows.Close()

	return collectTransactions(rows)
}

func collectTransactions(rows *sql.Rows) ([]*transaction.Transaction, error) {
	var txs []*transaction.Transaction

	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}

		txs = append(txs, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transaction rows: %w", err)
	}

	return txs, nil
}

// InsertEvent stores a callback event. The primary key (adapter_id, event_id)
// plus ON CONFLICT DO NOTHING gives exactly-once recording under at-least-once
// webhook delivery; redelivered events report false.
func (s *Store) InsertEvent(ctx context.Context, ev *transaction.CallbackEvent) (bool, error) {
	query := `
		INSERT INTO callback_events
			(adapter_id, event_id, transaction_id, raw_payload, received_at, applied)
		VALUES ($1, $2, $3, $4, $5, FALSE)
		ON CONFLICT (adapter_id, event_id) DO NOTHING
	`

	res, err := s.db.ExecContext(ctx, query,
		ev.AdapterID,
		ev.EventID,
		ev.TransactionID,
		ev.RawPayload,
		ev.ReceivedAt,
	)
	if err != nil {
		return false, fmt.Errorf("inserting callback event: %w", err)
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking event insert result: %w", err)
	}

	return inserted == 1, nil
}

// GetEvent loads a callback event by its dedup key. Redelivery handling uses
// the applied flag to tell a finished event from one whose transition attempt
// was interrupted.
func (s *Store) GetEvent(ctx context.Context, adapterID, eventID string) (*transaction.CallbackEvent, error) {
	query := `
		SELECT adapter_id, event_id, transaction_id, raw_payload, received_at, applied
		FROM callback_events
		WHERE adapter_id = $1 AND event_id = $2
	`

	var ev transaction.CallbackEvent

	err := s.db.QueryRowContext(ctx, query, adapterID, eventID).Scan(
		&ev.AdapterID, &ev.EventID, &ev.TransactionID, &ev.RawPayload, &ev.ReceivedAt, &ev.Applied,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, transaction.ErrNotFound
		}

		return nil, fmt.Errorf("getting callback event: %w", err)
	}

	return &ev, nil
}

func (s *Store) MarkEventApplied(ctx context.Context, adapterID, eventID string) error {
	query := `
		UPDATE callback_events
		SET applied = TRUE
		WHERE adapter_id = $1 AND event_id = $2
	`

	_, err := s.db.ExecContext(ctx, query, adapterID, eventID)
	if err != nil {
		return fmt.Errorf("marking event applied: %w", err)
	}

	return nil
}

func (s *Store) RecordDiscrepancy(ctx context.Context, d *transaction.Discrepancy) error {
	query := `
		INSERT INTO reconciliation_discrepancies
			(transaction_id, local_state, remote_state, source, detected_at, resolution, resolved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	err := s.db.QueryRowContext(ctx, query,
		d.TransactionID,
		d.LocalState,
		d.RemoteState,
		d.Source,
		d.DetectedAt,
		d.Resolution,
		d.ResolvedAt,
	).Scan(&d.ID)
	if err != nil {
		return fmt.Errorf("recording discrepancy: %w", err)
	}

	return nil
}

func (s *Store) ListDiscrepancies(ctx context.Context, filter transaction.DiscrepancyFilter) ([]*transaction.Discrepancy, error) {
	query := `
		SELECT id, transaction_id, local_state, remote_state, source, detected_at, resolution, resolved_at
		FROM reconciliation_discrepancies
		WHERE 1=1`

	var args []any

	argIdx := 1

	if filter.TransactionID != nil {
		query += fmt.Sprintf(" AND transaction_id = $%d", argIdx)

		args = append(args, *filter.TransactionID)
		argIdx++
	}

	if filter.Unresolved {
		query += " AND resolved_at IS NULL"
	}

	query += " ORDER BY detected_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing discrepancies: %w", err)
	}
	defer rows.Close()

	var ds []*transaction.Discrepancy

	for rows.Next() {
		var d transaction.Discrepancy

		var localStr, remoteStr, sourceStr, resolutionStr string

		if err := rows.Scan(
			&d.ID, &d.TransactionID, &localStr, &remoteStr, &sourceStr,
			&d.DetectedAt, &resolutionStr, &d.ResolvedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning discrepancy: %w", err)
		}

		d.LocalState = transaction.State(localStr)
		d.RemoteState = transaction.State(remoteStr)
		d.Source = transaction.Source(sourceStr)
		d.Resolution = transaction.Resolution(resolutionStr)

		ds = append(ds, &d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating discrepancy rows: %w", err)
	}

	return ds, nil
}

func (s *Store) ResolveDiscrepancy(ctx context.Context, id int64, res transaction.Resolution) error {
	query := `
		UPDATE reconciliation_discrepancies
		SET resolution = $1, resolved_at = NOW()
		WHERE id = $2 AND resolved_at IS NULL
	`

	_, err := s.db.ExecContext(ctx, query, res, id)
	if err != nil {
		return fmt.Errorf("resolving discrepancy: %w", err)
	}

	return nil
}
