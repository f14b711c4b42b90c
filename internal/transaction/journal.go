// file: internal/transaction/journal.go
// version: 1.2.0
// guid: 8b9c0d1e-2f3a-4b5c-6d7e-8f9a0b1c2d3e

package transaction

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/jdfalk/audiobook-renamer/internal/models"
)

// Transaction statuses recorded in the journal.
const (
	StatusPending    = "pending"
	StatusCommitted  = "committed"
	StatusRolledBack = "rolled_back"
	StatusUndone     = "undone"
)

// Info summarizes one journaled transaction.
type Info struct {
	ID         string
	CreatedAt  time.Time
	SourcePath string
	Status     string
	Operations int
}

// Journal persists applied operations in SQLite so any transaction can be
// undone after the process exits.
type Journal struct {
	db *sql.DB
}

const journalSchema = `
CREATE TABLE IF NOT EXISTS transactions (
	id TEXT PRIMARY KEY,
	created_at TIMESTAMP NOT NULL,
	source_path TEXT NOT NULL,
	status TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS operations (
	operation_id TEXT PRIMARY KEY,
	transaction_id TEXT NOT NULL REFERENCES transactions(id) ON DELETE CASCADE,
	seq INTEGER NOT NULL,
	timestamp TIMESTAMP NOT NULL,
	type TEXT NOT NULL,
	old_path TEXT,
	new_path TEXT,
	old_hash TEXT,
	new_hash TEXT
);
CREATE INDEX IF NOT EXISTS idx_operations_txn ON operations(transaction_id, seq);
`

// OpenJournal opens (or creates) the journal database at path.
func OpenJournal(path string) (*Journal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping journal database: %w", err)
	}
	if _, err := db.Exec(journalSchema); err != nil {
		return nil, fmt.Errorf("failed to initialize journal schema: %w", err)
	}
	return &Journal{db: db}, nil
}

// Close closes the journal database.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Begin records a new pending transaction.
func (j *Journal) Begin(id, sourcePath string) error {
	_, err := j.db.Exec(
		`INSERT INTO transactions (id, created_at, source_path, status) VALUES (?, ?, ?, ?)`,
		id, time.Now().UTC(), sourcePath, StatusPending,
	)
	if err != nil {
		return fmt.Errorf("failed to begin transaction %s: %w", id, err)
	}
	return nil
}

// Record appends one completed operation to a transaction.
func (j *Journal) Record(txnID string, seq int, rec models.OperationRecord) error {
	_, err := j.db.Exec(
		`INSERT INTO operations (operation_id, transaction_id, seq, timestamp, type, old_path, new_path, old_hash, new_hash)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.OperationID, txnID, seq, rec.Timestamp,
		rec.Type, rec.OldPath, rec.NewPath, rec.OldContentHash, rec.NewContentHash,
	)
	if err != nil {
		return fmt.Errorf("failed to record operation %s: %w", rec.OperationID, err)
	}
	return nil
}

// SetStatus updates a transaction's status.
func (j *Journal) SetStatus(txnID, status string) error {
	result, err := j.db.Exec(`UPDATE transactions SET status = ? WHERE id = ?`, status, txnID)
	if err != nil {
		return fmt.Errorf("failed to update transaction %s: %w", txnID, err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("transaction not found: %s", txnID)
	}
	return nil
}

// Get returns one transaction's summary.
func (j *Journal) Get(txnID string) (*Info, error) {
	row := j.db.QueryRow(
		`SELECT t.id, t.created_at, t.source_path, t.status,
		        (SELECT COUNT(*) FROM operations o WHERE o.transaction_id = t.id)
		 FROM transactions t WHERE t.id = ?`, txnID)
	var info Info
	if err := row.Scan(&info.ID, &info.CreatedAt, &info.SourcePath, &info.Status, &info.Operations); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("transaction not found: %s", txnID)
		}
		return nil, err
	}
	return &info, nil
}

// Operations returns a transaction's operations in application order.
func (j *Journal) Operations(txnID string) ([]models.OperationRecord, error) {
	rows, err := j.db.Query(
		`SELECT operation_id, timestamp, type, old_path, new_path, old_hash, new_hash
		 FROM operations WHERE transaction_id = ? ORDER BY seq`, txnID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.OperationRecord
	for rows.Next() {
		var rec models.OperationRecord
		if err := rows.Scan(&rec.OperationID, &rec.Timestamp, &rec.Type,
			&rec.OldPath, &rec.NewPath, &rec.OldContentHash, &rec.NewContentHash); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// List returns transactions newer than since, most recent first.
func (j *Journal) List(since time.Time) ([]Info, error) {
	rows, err := j.db.Query(
		`SELECT t.id, t.created_at, t.source_path, t.status,
		        (SELECT COUNT(*) FROM operations o WHERE o.transaction_id = t.id)
		 FROM transactions t WHERE t.created_at >= ? ORDER BY t.created_at DESC`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var infos []Info
	for rows.Next() {
		var info Info
		if err := rows.Scan(&info.ID, &info.CreatedAt, &info.SourcePath, &info.Status, &info.Operations); err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

// Cleanup deletes transactions (and their operations) older than cutoff and
// returns how many were removed.
func (j *Journal) Cleanup(cutoff time.Time) (int, error) {
	if _, err := j.db.Exec(
		`DELETE FROM operations WHERE transaction_id IN
		 (SELECT id FROM transactions WHERE created_at < ?)`, cutoff); err != nil {
		return 0, err
	}
	result, err := j.db.Exec(`DELETE FROM transactions WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	n, _ := result.RowsAffected()
	return int(n), nil
}
