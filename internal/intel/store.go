package intel

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/sciados/campaign-backend-sub004/internal/config"
)

// ErrEntryNotFound indicates the requested entry id does not exist.
var ErrEntryNotFound = errors.New("intel entry not found")

// timeFormat is RFC3339 with a fixed-width fraction so stored
// timestamps compare correctly as strings in SQL.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// Store manages intelligence persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Entry is one stored analysis record. Entries are created by fresh
// analyses or by reference copies and never mutated in place.
type Entry struct {
	ID              int64
	Fingerprint     string
	SourceURL       string
	Requester       string
	DerivedFrom     int64
	Confidence      float64
	PayloadVersion  int
	OfferJSON       string
	CompetitiveJSON string
	PsychologyJSON  string
	CreatedAt       time.Time
}

// Open initializes or connects to the intelligence database and applies
// migrations.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.DatabasePath()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// NewEntry carries the fields of an entry about to be inserted.
type NewEntry struct {
	SourceURL   string
	Requester   string
	DerivedFrom int64
	Confidence  float64
	Analysis    Analysis
	CreatedAt   time.Time
}

// InsertEntry persists a new analysis record and returns it with its
// assigned id.
func (s *Store) InsertEntry(ctx context.Context, entry NewEntry) (*Entry, error) {
	offer, competitive, psychology, err := marshalAnalysis(entry.Analysis)
	if err != nil {
		return nil, err
	}

	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO intel_entries (
            fingerprint, source_url, requester, derived_from, confidence,
            payload_version, offer_json, competitive_json, psychology_json, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		Fingerprint(entry.SourceURL),
		entry.SourceURL,
		nullableString(entry.Requester),
		nullableInt64(entry.DerivedFrom),
		entry.Confidence,
		payloadVersion,
		offer,
		competitive,
		psychology,
		createdAt.UTC().Format(timeFormat),
	)
	if err != nil {
		return nil, fmt.Errorf("insert entry: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

const entryColumns = `id, fingerprint, source_url, requester, derived_from, confidence,
    payload_version, offer_json, competitive_json, psychology_json, created_at`

// GetByID fetches one entry.
func (s *Store) GetByID(ctx context.Context, id int64) (*Entry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM intel_entries WHERE id = ?`, id)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", ErrEntryNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get entry: %w", err)
	}
	return entry, nil
}

// QueryByFingerprint returns entries matching the fingerprint with
// confidence at or above minConfidence and created no earlier than
// oldest, best candidate first (confidence desc, then most recent).
func (s *Store) QueryByFingerprint(ctx context.Context, fingerprint string, minConfidence float64, oldest time.Time) ([]*Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+entryColumns+`
         FROM intel_entries
         WHERE fingerprint = ? AND confidence >= ? AND created_at >= ?
         ORDER BY confidence DESC, created_at DESC`,
		fingerprint,
		minConfidence,
		oldest.UTC().Format(timeFormat),
	)
	if err != nil {
		return nil, fmt.Errorf("query by fingerprint: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// InsertReference records an attribution read against an entry.
func (s *Store) InsertReference(ctx context.Context, id string, entryID int64, requester string, createdAt time.Time) error {
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO intel_references (id, entry_id, requester, created_at) VALUES (?, ?, ?, ?)`,
		id, entryID, requester, createdAt.UTC().Format(timeFormat))
	if err != nil {
		return fmt.Errorf("insert reference: %w", err)
	}
	return nil
}

// CountReferences returns how many references point at an entry.
func (s *Store) CountReferences(ctx context.Context, entryID int64) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM intel_references WHERE entry_id = ?`, entryID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count references: %w", err)
	}
	return count, nil
}

// DeleteStale removes entries created before staleBefore whose
// confidence is below threshold and which have no reference recorded
// since graceSince. Returns the number of evicted entries.
func (s *Store) DeleteStale(ctx context.Context, staleBefore time.Time, threshold float64, graceSince time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM intel_entries
         WHERE created_at < ?
           AND confidence < ?
           AND NOT EXISTS (
               SELECT 1 FROM intel_references r
               WHERE r.entry_id = intel_entries.id AND r.created_at >= ?
           )`,
		staleBefore.UTC().Format(timeFormat),
		threshold,
		graceSince.UTC().Format(timeFormat),
	)
	if err != nil {
		return 0, fmt.Errorf("delete stale entries: %w", err)
	}
	evicted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return evicted, nil
}

// EntryCount returns the total number of stored entries.
func (s *Store) EntryCount(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM intel_entries`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*Entry, error) {
	var (
		entry       Entry
		requester   sql.NullString
		derivedFrom sql.NullInt64
		createdAt   string
	)
	err := row.Scan(
		&entry.ID,
		&entry.Fingerprint,
		&entry.SourceURL,
		&requester,
		&derivedFrom,
		&entry.Confidence,
		&entry.PayloadVersion,
		&entry.OfferJSON,
		&entry.CompetitiveJSON,
		&entry.PsychologyJSON,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}
	entry.Requester = requester.String
	entry.DerivedFrom = derivedFrom.Int64
	if createdAt != "" {
		parsed, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		entry.CreatedAt = parsed
	}
	return &entry, nil
}

// Analysis reconstructs the entry's typed payload from its storage
// columns.
func (e *Entry) Analysis() (Analysis, error) {
	return reconstructAnalysis(e.PayloadVersion, e.OfferJSON, e.CompetitiveJSON, e.PsychologyJSON)
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableInt64(value int64) any {
	if value == 0 {
		return nil
	}
	return value
}
