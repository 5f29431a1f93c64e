package sheets

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const ledgerSchema = `
	CREATE TABLE IF NOT EXISTS ledger_rows (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sheet TEXT NOT NULL,
		recorded_at TEXT NOT NULL,
		cells TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_ledger_rows_sheet ON ledger_rows(sheet, id);
`

// Ledger is a local SQLite file standing in for the record spreadsheets.
// Each named sheet is an append-only list of rows.
type Ledger struct {
	conn *sql.DB
	path string
}

// OpenLedger opens or creates the ledger database at path.
func OpenLedger(path string) (*Ledger, error) {
	if dir := filepath.Dir(path); dir != "." {
		err := os.MkdirAll(dir, 0o750)
		if err != nil {
			return nil, fmt.Errorf("create ledger directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	}

	for _, pragma := range pragmas {
		_, err = conn.Exec(pragma)
		if err != nil {
			_ = conn.Close()

			return nil, fmt.Errorf("set pragma: %w", err)
		}
	}

	_, err = conn.Exec(ledgerSchema)
	if err != nil {
		_ = conn.Close()

		return nil, fmt.Errorf("initialize ledger schema: %w", err)
	}

	return &Ledger{conn: conn, path: path}, nil
}

// Path returns the database file path.
func (l *Ledger) Path() string {
	return l.path
}

// Close closes the database connection.
func (l *Ledger) Close() error {
	if l.conn != nil {
		return l.conn.Close()
	}

	return nil
}

// Sheet returns the named append-only sheet.
func (l *Ledger) Sheet(name string) *LedgerSheet {
	return &LedgerSheet{ledger: l, name: name}
}

// LedgerSheet is one named sheet of a Ledger. It implements Appender.
type LedgerSheet struct {
	ledger *Ledger
	name   string
}

// AppendRows implements Appender. Rows are inserted in one transaction.
func (s *LedgerSheet) AppendRows(ctx context.Context, rows [][]string) (err error) {
	if len(rows) == 0 {
		return nil
	}

	tx, err := s.ledger.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin ledger transaction: %w", err)
	}

	defer func() {
		if err != nil {
			err = errors.Join(err, tx.Rollback())
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO ledger_rows (sheet, recorded_at, cells) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare ledger insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)

	for _, row := range rows {
		cells, marshalErr := json.Marshal(row)
		if marshalErr != nil {
			return fmt.Errorf("encode ledger row: %w", marshalErr)
		}

		_, err = stmt.ExecContext(ctx, s.name, now, string(cells))
		if err != nil {
			return fmt.Errorf("insert ledger row: %w", err)
		}
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("commit ledger rows: %w", err)
	}

	return nil
}

// Rows returns every row of the sheet in insertion order.
func (s *LedgerSheet) Rows(ctx context.Context) ([][]string, error) {
	res, err := s.ledger.conn.QueryContext(ctx,
		`SELECT cells FROM ledger_rows WHERE sheet = ? ORDER BY id`, s.name)
	if err != nil {
		return nil, fmt.Errorf("query ledger: %w", err)
	}
	defer res.Close()

	var rows [][]string

	for res.Next() {
		var raw string

		err = res.Scan(&raw)
		if err != nil {
			return nil, fmt.Errorf("scan ledger row: %w", err)
		}

		var row []string

		err = json.Unmarshal([]byte(raw), &row)
		if err != nil {
			return nil, fmt.Errorf("decode ledger row: %w", err)
		}

		rows = append(rows, row)
	}

	return rows, res.Err()
}
