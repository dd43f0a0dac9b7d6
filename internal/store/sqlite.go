package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/wiralabs/chatlink/internal/domain"
	"github.com/wiralabs/chatlink/internal/shared"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a new SQLite-backed repository.
func NewSQLite(dbPath string) (Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS leads (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		conversation_id TEXT NOT NULL,
		name TEXT NOT NULL,
		age INTEGER NOT NULL,
		dependents INTEGER NOT NULL,
		primary_concern TEXT NOT NULL,
		campaign TEXT NOT NULL,
		answers_json TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_leads_created ON leads(created_at);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// SaveLead appends a captured lead. Transient SQLITE_BUSY failures are
// retried with backoff; they show up when the sweeper and a handler write
// concurrently.
func (s *SQLiteStore) SaveLead(ctx context.Context, lead *domain.Lead) error {
	answers, err := json.Marshal(lead.Answers)
	if err != nil {
		return fmt.Errorf("marshal lead answers: %w", err)
	}
	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO leads (conversation_id, name, age, dependents, primary_concern, campaign, answers_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	return shared.WithRetry(ctx, 3, 50*time.Millisecond, shared.IsSQLiteBusy, func() error {
		res, err := s.db.ExecContext(ctx, query,
			lead.ConversationID, lead.Name, lead.Age, lead.Dependents,
			lead.PrimaryConcern, lead.Campaign, string(answers), lead.CreatedAt.Unix(),
		)
		if err != nil {
			return fmt.Errorf("insert lead: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("lead insert id: %w", err)
		}
		lead.ID = id
		return nil
	})
}

// ListLeads returns the most recent leads, newest first.
func (s *SQLiteStore) ListLeads(ctx context.Context, limit int) ([]*domain.Lead, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, conversation_id, name, age, dependents, primary_concern, campaign, answers_json, created_at
		FROM leads ORDER BY created_at DESC, id DESC LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query leads: %w", err)
	}
	defer rows.Close()

	var leads []*domain.Lead
	for rows.Next() {
		var lead domain.Lead
		var answersJSON string
		var createdAt int64
		if err := rows.Scan(
			&lead.ID, &lead.ConversationID, &lead.Name, &lead.Age, &lead.Dependents,
			&lead.PrimaryConcern, &lead.Campaign, &answersJSON, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan lead row: %w", err)
		}
		if err := json.Unmarshal([]byte(answersJSON), &lead.Answers); err != nil {
			return nil, fmt.Errorf("unmarshal lead answers: %w", err)
		}
		lead.CreatedAt = time.Unix(createdAt, 0)
		leads = append(leads, &lead)
	}
	return leads, rows.Err()
}

// CountLeads returns the total number of captured leads.
func (s *SQLiteStore) CountLeads(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM leads`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count leads: %w", err)
	}
	return n, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
