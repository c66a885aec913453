package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/policylens/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/policylens/internal/core/domain"
	"github.com/custodia-labs/policylens/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.AnswerJournal = (*Store)(nil)

// DefaultFileName is the journal database file name inside the data directory.
const DefaultFileName = "journal.db"

// Store is the SQLite answer journal.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (creating if needed) the journal database at dbPath.
// If dbPath is empty, defaults to ~/.policylens/data/journal.db.
func NewStore(dbPath string) (*Store, error) {
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".policylens", "data", DefaultFileName)
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate applies every *.up.sql file newer than the recorded schema version.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_journal.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if err := s.applyMigration(version, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// applyMigration runs one migration and records its version atomically.
func (s *Store) applyMigration(version int, script string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(script); err != nil {
		_ = tx.Rollback()
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// Record stores an entry, replacing any entry with the same ID.
func (s *Store) Record(ctx context.Context, entry domain.JournalEntry) error {
	if entry.ID == "" {
		return fmt.Errorf("journal entry id: %w", domain.ErrInvalidInput)
	}

	record := entry.Record.Normalised()
	conditionsJSON, err := json.Marshal(record.Conditions)
	if err != nil {
		return fmt.Errorf("marshalling conditions: %w", err)
	}
	clausesJSON, err := json.Marshal(record.SourceClauses)
	if err != nil {
		return fmt.Errorf("marshalling source clauses: %w", err)
	}

	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO journal (id, session_id, document_uri, query, tier, answer,
			conditions, source_clauses, rationale, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			session_id = excluded.session_id,
			document_uri = excluded.document_uri,
			query = excluded.query,
			tier = excluded.tier,
			answer = excluded.answer,
			conditions = excluded.conditions,
			source_clauses = excluded.source_clauses,
			rationale = excluded.rationale,
			created_at = excluded.created_at
	`, entry.ID, entry.SessionID, entry.DocumentURI, entry.Query, string(entry.Tier),
		record.Answer, string(conditionsJSON), string(clausesJSON), record.Rationale,
		entry.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("saving journal entry: %w", err)
	}
	return nil
}

// Get retrieves an entry by ID.
func (s *Store) Get(ctx context.Context, id string) (*domain.JournalEntry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, session_id, document_uri, query, tier, answer,
			conditions, source_clauses, rationale, created_at
		FROM journal WHERE id = ?
	`, id)

	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Recent returns up to limit entries, newest first. A limit of zero or less
// returns every entry.
func (s *Store) Recent(ctx context.Context, limit int) ([]domain.JournalEntry, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, document_uri, query, tier, answer,
			conditions, source_clauses, rationale, created_at
		FROM journal
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying journal: %w", err)
	}
	defer rows.Close()

	var entries []domain.JournalEntry //nolint:prealloc // size unknown from query
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating journal: %w", err)
	}
	return entries, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(sc scanner) (*domain.JournalEntry, error) {
	var entry domain.JournalEntry
	var tier, conditionsJSON, clausesJSON string
	var createdAt sql.NullTime
	if err := sc.Scan(&entry.ID, &entry.SessionID, &entry.DocumentURI, &entry.Query, &tier,
		&entry.Record.Answer, &conditionsJSON, &clausesJSON, &entry.Record.Rationale,
		&createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning journal entry: %w", err)
	}

	entry.Tier = domain.Tier(tier)
	if err := json.Unmarshal([]byte(conditionsJSON), &entry.Record.Conditions); err != nil {
		return nil, fmt.Errorf("unmarshaling conditions: %w", err)
	}
	if err := json.Unmarshal([]byte(clausesJSON), &entry.Record.SourceClauses); err != nil {
		return nil, fmt.Errorf("unmarshaling source clauses: %w", err)
	}
	entry.Record = entry.Record.Normalised()
	if createdAt.Valid {
		entry.CreatedAt = createdAt.Time
	}
	return &entry, nil
}
