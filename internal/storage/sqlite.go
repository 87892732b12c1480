package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SQLiteStorage implements the Storage interface using SQLite
type SQLiteStorage struct {
	db *sql.DB
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(1) // SQLite benefits from single writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// NewSQLiteStorage creates a new SQLite storage instance
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Apply migrations
	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// querier is an interface that both *sql.DB and *sql.Tx implement
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Table operations

// CreateTable registers the table unless it already exists, then returns the
// stored definition. INSERT OR IGNORE makes concurrent first writers converge
// on one definition instead of racing.
func (s *SQLiteStorage) CreateTable(ctx context.Context, name string, dimension int) (*Table, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidTable)
	}
	if dimension <= 0 {
		return nil, fmt.Errorf("%w: dimension must be positive, got %d", ErrInvalidTable, dimension)
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO vector_tables (name, dimension, created_at) VALUES (?, ?, ?)",
		name, dimension, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to create table %q: %w", name, err)
	}

	return s.getTableWithQuerier(ctx, s.db, name)
}

// GetTable opens an existing table
func (s *SQLiteStorage) GetTable(ctx context.Context, name string) (*Table, error) {
	return s.getTableWithQuerier(ctx, s.db, name)
}

// getTableWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) getTableWithQuerier(ctx context.Context, q querier, name string) (*Table, error) {
	var table Table
	err := q.QueryRowContext(ctx,
		"SELECT name, dimension, created_at FROM vector_tables WHERE name = ?", name,
	).Scan(&table.Name, &table.Dimension, &table.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("table %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get table %q: %w", name, err)
	}
	return &table, nil
}

// ListTables returns all table names ordered by name
func (s *SQLiteStorage) ListTables(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name FROM vector_tables ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer func() { _ = rows.Close() }()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Record operations

// Append inserts every row of the batch in one transaction
func (s *SQLiteStorage) Append(ctx context.Context, table *Table, batch *RecordBatch) error {
	if batch == nil || batch.NumRows() == 0 {
		return nil
	}
	if batch.Dimension != table.Dimension {
		return fmt.Errorf("%w: table %q has dimension %d, batch has %d",
			ErrDimensionMismatch, table.Name, table.Dimension, batch.Dimension)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO records (table_name, id, text, vector, metadata) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i := 0; i < batch.NumRows(); i++ {
		_, err := stmt.ExecContext(ctx,
			table.Name, batch.IDs[i], batch.Texts[i], serializeVector(batch.Vector(i)), batch.Metadata[i])
		if err != nil {
			return fmt.Errorf("failed to insert record %s: %w", batch.IDs[i], err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// SearchVector returns up to limit records ordered by cosine distance
func (s *SQLiteStorage) SearchVector(ctx context.Context, table *Table, query []float32, limit int) ([]Hit, error) {
	return searchVector(ctx, s.db, table, query, limit)
}

// CountRecords returns the number of records in the table
func (s *SQLiteStorage) CountRecords(ctx context.Context, table *Table) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM records WHERE table_name = ?", table.Name).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return count, nil
}

// Ensure SQLiteStorage satisfies the Storage interface.
var _ Storage = (*SQLiteStorage)(nil)
