package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/stepwise/pkg/domain"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// Store implements ports.StateStore on a SQLite database, one row per session.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and prepares the schema.
// ":memory:" gives a private in-memory database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if path == ":memory:" {
		// Every pooled connection would otherwise see its own empty database.
		db.SetMaxOpenConns(1)
	}
	store, err := New(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// New wraps an existing *sql.DB using a SQLite driver and creates the table
// if needed. The caller keeps ownership of db.
func New(db *sql.DB) (*Store, error) {
	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize sqlite schema: %w", err)
	}
	return s, nil
}

func (s *Store) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			flow_type TEXT NOT NULL DEFAULT '',
			email TEXT,
			password TEXT,
			age_verified INTEGER NOT NULL DEFAULT 0,
			terms_confirmed INTEGER NOT NULL DEFAULT 0,
			user_id TEXT,
			updated_at INTEGER NOT NULL
		);`,
	)
	if err != nil {
		return err
	}
	return s.addColumn("age_verified", "INTEGER NOT NULL DEFAULT 0")
}

// addColumn upgrades tables created before the column existed.
func (s *Store) addColumn(column, decl string) error {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM pragma_table_info('sessions') WHERE name = ?`, column).Scan(&n)
	if err != nil || n > 0 {
		return err
	}
	_, err = s.db.Exec(`ALTER TABLE sessions ADD COLUMN ` + column + ` ` + decl)
	return err
}

// Save inserts or replaces the row for sessionID.
func (s *Store) Save(ctx context.Context, sessionID string, data domain.FilledData) error {
	if sessionID == "" {
		return fmt.Errorf("sessionID cannot be empty")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, flow_type, email, password, age_verified, terms_confirmed, user_id, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			flow_type = excluded.flow_type,
			email = excluded.email,
			password = excluded.password,
			age_verified = excluded.age_verified,
			terms_confirmed = excluded.terms_confirmed,
			user_id = excluded.user_id,
			updated_at = excluded.updated_at`,
		sessionID,
		string(data.FlowType),
		nullable(data.Email),
		nullable(data.Password),
		data.AgeVerified,
		data.TermsConfirmed,
		nullable(data.UserID),
		time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Load reads the row for sessionID.
func (s *Store) Load(ctx context.Context, sessionID string) (domain.FilledData, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT flow_type, email, password, age_verified, terms_confirmed, user_id
		FROM sessions
		WHERE id = ?`,
		sessionID,
	)

	var (
		flow                    string
		email, password, userID sql.NullString
		age, terms              bool
	)
	if err := row.Scan(&flow, &email, &password, &age, &terms, &userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.FilledData{}, domain.ErrSessionNotFound
		}
		return domain.FilledData{}, fmt.Errorf("failed to load session: %w", err)
	}

	return domain.FilledData{
		FlowType:       domain.FlowType(flow),
		Email:          ptr(email),
		Password:       ptr(password),
		AgeVerified:    age,
		TermsConfirmed: terms,
		UserID:         ptr(userID),
	}, nil
}

// Delete removes the row. Deleting a missing session is not an error.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// List returns session IDs, most recently saved first.
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM sessions ORDER BY updated_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	sessions := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan session id: %w", err)
		}
		sessions = append(sessions, id)
	}
	return sessions, rows.Err()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func nullable(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func ptr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
