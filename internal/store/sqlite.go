// Package store provides data persistence implementations.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"time"

	_ "github.com/mattn/go-sqlite3"

	apperrors "tradelens/internal/errors"
	"tradelens/internal/models"
)

// SQLiteStore implements DataStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-based data store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Trade log uploads
	CREATE TABLE IF NOT EXISTS imports (
		id TEXT PRIMARY KEY,
		source TEXT NOT NULL,
		rows_total INTEGER NOT NULL,
		rows_valid INTEGER NOT NULL,
		rows_rejected INTEGER NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Normalized trade records, ordinal preserves upload order
	CREATE TABLE IF NOT EXISTS trades (
		import_id TEXT NOT NULL,
		ordinal INTEGER NOT NULL,
		timestamp DATETIME,
		raw_timestamp TEXT NOT NULL,
		asset TEXT NOT NULL,
		side TEXT NOT NULL,
		quantity REAL,
		entry_price REAL,
		exit_price REAL,
		profit_loss REAL NOT NULL,
		balance REAL,
		PRIMARY KEY (import_id, ordinal),
		FOREIGN KEY (import_id) REFERENCES imports(id)
	);
	CREATE INDEX IF NOT EXISTS idx_trades_asset ON trades(import_id, asset);

	-- Generated coaching reports
	CREATE TABLE IF NOT EXISTS reports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		import_id TEXT NOT NULL,
		source TEXT NOT NULL,
		payload TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (import_id) REFERENCES imports(id)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SaveImport persists an upload and its normalized records in one
// transaction, preserving record order through the ordinal column.
func (s *SQLiteStore) SaveImport(ctx context.Context, imp *Import, records []models.TradeRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.NewStoreError("save_import", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO imports (id, source, rows_total, rows_valid, rows_rejected) VALUES (?, ?, ?, ?, ?)`,
		imp.ID, imp.Source, imp.RowsTotal, imp.RowsValid, imp.RowsRejected)
	if err != nil {
		return apperrors.NewStoreError("save_import", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO trades (import_id, ordinal, timestamp, raw_timestamp, asset, side,
			quantity, entry_price, exit_price, profit_loss, balance)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return apperrors.NewStoreError("save_import", err)
	}
	defer stmt.Close()

	for i, r := range records {
		var ts interface{}
		if r.HasTimestamp() {
			ts = r.Timestamp
		}
		var balance interface{}
		if r.Balance != nil {
			balance = *r.Balance
		}
		if _, err := stmt.ExecContext(ctx, imp.ID, i, ts, r.RawTimestamp, r.Asset,
			string(r.Side), nullable(r.Quantity), nullable(r.EntryPrice),
			nullable(r.ExitPrice), r.ProfitLoss, balance); err != nil {
			return apperrors.NewStoreError("save_import", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewStoreError("save_import", err)
	}
	return nil
}

// GetImport returns one import by id.
func (s *SQLiteStore) GetImport(ctx context.Context, id string) (*Import, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, source, rows_total, rows_valid, rows_rejected, created_at
		 FROM imports WHERE id = ?`, id)
	return scanImport(row)
}

// LatestImport returns the most recent import.
func (s *SQLiteStore) LatestImport(ctx context.Context) (*Import, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, source, rows_total, rows_valid, rows_rejected, created_at
		 FROM imports ORDER BY created_at DESC, rowid DESC LIMIT 1`)
	return scanImport(row)
}

// ListImports returns the most recent imports, newest first.
func (s *SQLiteStore) ListImports(ctx context.Context, limit int) ([]Import, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source, rows_total, rows_valid, rows_rejected, created_at
		 FROM imports ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, apperrors.NewStoreError("list_imports", err)
	}
	defer rows.Close()

	var imports []Import
	for rows.Next() {
		var imp Import
		if err := rows.Scan(&imp.ID, &imp.Source, &imp.RowsTotal, &imp.RowsValid,
			&imp.RowsRejected, &imp.CreatedAt); err != nil {
			return nil, apperrors.NewStoreError("list_imports", err)
		}
		imports = append(imports, imp)
	}
	return imports, rows.Err()
}

// GetTrades returns the records of an import in their original order.
func (s *SQLiteStore) GetTrades(ctx context.Context, importID string) ([]models.TradeRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT timestamp, raw_timestamp, asset, side, quantity, entry_price,
		       exit_price, profit_loss, balance
		FROM trades WHERE import_id = ? ORDER BY ordinal`, importID)
	if err != nil {
		return nil, apperrors.NewStoreError("get_trades", err)
	}
	defer rows.Close()

	var records []models.TradeRecord
	for rows.Next() {
		var r models.TradeRecord
		var ts sql.NullTime
		var side string
		var quantity, entry, exit, balance sql.NullFloat64
		if err := rows.Scan(&ts, &r.RawTimestamp, &r.Asset, &side,
			&quantity, &entry, &exit, &r.ProfitLoss, &balance); err != nil {
			return nil, apperrors.NewStoreError("get_trades", err)
		}
		if ts.Valid {
			r.Timestamp = ts.Time
		}
		r.Side = models.Side(side)
		r.Quantity = floatOrNaN(quantity)
		r.EntryPrice = floatOrNaN(entry)
		r.ExitPrice = floatOrNaN(exit)
		if balance.Valid {
			b := balance.Float64
			r.Balance = &b
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// SaveReport persists a coaching report as JSON.
func (s *SQLiteStore) SaveReport(ctx context.Context, importID string, report *models.CoachingReport) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return apperrors.NewStoreError("save_report", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO reports (import_id, source, payload) VALUES (?, ?, ?)`,
		importID, report.Source, string(payload))
	if err != nil {
		return apperrors.NewStoreError("save_report", err)
	}
	return nil
}

// LatestReport returns the most recent report for an import.
func (s *SQLiteStore) LatestReport(ctx context.Context, importID string) (*models.CoachingReport, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM reports WHERE import_id = ? ORDER BY id DESC LIMIT 1`,
		importID).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, apperrors.ErrDataNotFound
	}
	if err != nil {
		return nil, apperrors.NewStoreError("latest_report", err)
	}

	var report models.CoachingReport
	if err := json.Unmarshal([]byte(payload), &report); err != nil {
		return nil, apperrors.NewStoreError("latest_report", err)
	}
	return &report, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func scanImport(row *sql.Row) (*Import, error) {
	var imp Import
	err := row.Scan(&imp.ID, &imp.Source, &imp.RowsTotal, &imp.RowsValid,
		&imp.RowsRejected, &imp.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, apperrors.ErrDataNotFound
	}
	if err != nil {
		return nil, apperrors.NewStoreError("get_import", err)
	}
	return &imp, nil
}

// nullable maps the NaN sentinel onto SQL NULL so it round-trips.
func nullable(v float64) interface{} {
	if math.IsNaN(v) {
		return nil
	}
	return v
}

func floatOrNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
