package transcripts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"kallisto/internal/config"
)

// Store manages transcript persistence backed by SQLite.
type Store struct {
	db      *sql.DB
	path    string
	lockTTL time.Duration
}

// Open initializes or connects to the transcript database.
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

	store := &Store{db: db, path: dbPath, lockTTL: cfg.LockTTL()}
	if err := store.initSchema(context.Background()); err != nil {
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
func (s *Store) Path() string {
	return s.path
}

// LockTTL returns the configured page lock lifetime.
func (s *Store) LockTTL() time.Duration {
	return s.lockTTL
}

// CreateMission inserts a new mission. The slug must be unique and is
// immutable once created.
func (s *Store) CreateMission(ctx context.Context, slug, name string, start time.Time, wikiURL string) (*Mission, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, errors.New("mission slug must not be empty")
	}
	if strings.TrimSpace(name) == "" {
		return nil, errors.New("mission name must not be empty")
	}

	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO missions (slug, name, start_date, active, wiki_url, created_at)
         VALUES (?, ?, ?, 1, ?, ?)`,
		slug,
		name,
		start.UTC().Format(dateFormat),
		nullableString(wikiURL),
		formatTime(time.Now()),
	)
	if err != nil {
		return nil, fmt.Errorf("insert mission: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.MissionByID(ctx, id)
}

// MissionByID fetches a mission by identifier.
func (s *Store) MissionByID(ctx context.Context, id int64) (*Mission, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+missionColumns+` FROM missions WHERE id = ?`, id)
	mission, err := scanMission(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get mission: %w", err)
	}
	return mission, nil
}

// MissionBySlug fetches a mission by its short name.
func (s *Store) MissionBySlug(ctx context.Context, slug string) (*Mission, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+missionColumns+` FROM missions WHERE slug = ?`, slug)
	mission, err := scanMission(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get mission by slug: %w", err)
	}
	return mission, nil
}

// Missions returns all missions ordered by start date.
func (s *Store) Missions(ctx context.Context) ([]*Mission, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+missionColumns+` FROM missions ORDER BY start_date, slug`)
	if err != nil {
		return nil, fmt.Errorf("list missions: %w", err)
	}
	defer rows.Close()

	var missions []*Mission
	for rows.Next() {
		mission, err := scanMission(rows)
		if err != nil {
			return nil, err
		}
		missions = append(missions, mission)
	}
	return missions, rows.Err()
}

// MissionProgress counts a mission's pages by cleaning state.
func (s *Store) MissionProgress(ctx context.Context, missionID int64) (Progress, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT COUNT(1),
                COALESCE(SUM(CASE WHEN EXISTS (SELECT 1 FROM revisions r WHERE r.page_id = pages.id) THEN 1 ELSE 0 END), 0),
                COALESCE(SUM(approved), 0)
         FROM pages WHERE mission_id = ?`,
		missionID,
	)
	var progress Progress
	if err := row.Scan(&progress.Pages, &progress.Cleaned, &progress.Approved); err != nil {
		return Progress{}, fmt.Errorf("mission progress: %w", err)
	}
	return progress, nil
}

// AddPage inserts a page with its machine-transcribed first-pass text.
func (s *Store) AddPage(ctx context.Context, missionID int64, number int, originalText string) (*Page, error) {
	if number <= 0 {
		return nil, errors.New("page number must be positive")
	}
	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO pages (mission_id, number, original_text, approved, created_at)
         VALUES (?, ?, ?, 0, ?)`,
		missionID,
		number,
		originalText,
		formatTime(time.Now()),
	)
	if err != nil {
		return nil, fmt.Errorf("insert page: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.PageByID(ctx, id)
}

// PageByID fetches a page by identifier.
func (s *Store) PageByID(ctx context.Context, id int64) (*Page, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+pageColumns+` FROM pages WHERE id = ?`, id)
	page, err := scanPage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get page: %w", err)
	}
	return page, nil
}

// PageByNumber fetches a page by its mission and display number.
func (s *Store) PageByNumber(ctx context.Context, missionID int64, number int) (*Page, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+pageColumns+` FROM pages WHERE mission_id = ? AND number = ?`,
		missionID, number,
	)
	page, err := scanPage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get page by number: %w", err)
	}
	return page, nil
}

// Pages returns a mission's pages in ascending number order.
func (s *Store) Pages(ctx context.Context, missionID int64) ([]*Page, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+pageColumns+` FROM pages WHERE mission_id = ? ORDER BY number`,
		missionID,
	)
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	defer rows.Close()

	var pages []*Page
	for rows.Next() {
		page, err := scanPage(rows)
		if err != nil {
			return nil, err
		}
		pages = append(pages, page)
	}
	return pages, rows.Err()
}

// currentTextExpr derives a page's current text from the newest revision,
// falling back to the original machine transcription.
const currentTextExpr = `COALESCE(
    (SELECT r.text FROM revisions r WHERE r.page_id = pages.id ORDER BY r.id DESC LIMIT 1),
    pages.original_text)`

// CurrentText returns the page's latest committed text.
func (s *Store) CurrentText(ctx context.Context, pageID int64) (string, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+currentTextExpr+` FROM pages WHERE id = ?`,
		pageID,
	)
	var text string
	if err := row.Scan(&text); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("current text: %w", err)
	}
	return text, nil
}

// PageSnapshots returns the export view of a mission's pages, ascending by
// number, each carrying its current committed text.
func (s *Store) PageSnapshots(ctx context.Context, missionID int64) ([]PageSnapshot, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT number, approved, `+currentTextExpr+`
         FROM pages WHERE mission_id = ? ORDER BY number`,
		missionID,
	)
	if err != nil {
		return nil, fmt.Errorf("page snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []PageSnapshot
	for rows.Next() {
		var snap PageSnapshot
		var approved int
		if err := rows.Scan(&snap.Number, &approved, &snap.Text); err != nil {
			return nil, err
		}
		snap.Approved = approved != 0
		snapshots = append(snapshots, snap)
	}
	return snapshots, rows.Err()
}

const missionColumns = "id, slug, name, start_date, active, wiki_url, created_at"

const pageColumns = "id, mission_id, number, original_text, approved, locked_by, locked_until, created_at"

func scanMission(scanner interface{ Scan(dest ...any) error }) (*Mission, error) {
	var (
		id       int64
		slug     string
		name     string
		startRaw string
		active   int64
		wiki     sql.NullString
		created  sql.NullString
	)
	if err := scanner.Scan(&id, &slug, &name, &startRaw, &active, &wiki, &created); err != nil {
		return nil, err
	}

	mission := &Mission{
		ID:      id,
		Slug:    slug,
		Name:    name,
		Active:  active != 0,
		WikiURL: wiki.String,
	}
	if start, err := time.Parse(dateFormat, startRaw); err == nil {
		mission.Start = start
	}
	if createdAt, err := parseTimeString(created.String); err == nil {
		mission.CreatedAt = createdAt
	}
	return mission, nil
}

func scanPage(scanner interface{ Scan(dest ...any) error }) (*Page, error) {
	var (
		id          int64
		missionID   int64
		number      int
		original    string
		approved    int64
		lockedBy    sql.NullString
		lockedUntil sql.NullInt64
		created     sql.NullString
	)
	if err := scanner.Scan(&id, &missionID, &number, &original, &approved, &lockedBy, &lockedUntil, &created); err != nil {
		return nil, err
	}

	page := &Page{
		ID:           id,
		MissionID:    missionID,
		Number:       number,
		OriginalText: original,
		Approved:     approved != 0,
		LockedBy:     lockedBy.String,
	}
	if lockedUntil.Valid {
		deadline := time.Unix(lockedUntil.Int64, 0).UTC()
		page.LockedUntil = &deadline
	}
	if createdAt, err := parseTimeString(created.String); err == nil {
		page.CreatedAt = createdAt
	}
	return page, nil
}

const dateFormat = "2006-01-02"

func formatTime(value time.Time) string {
	return value.UTC().Format(time.RFC3339Nano)
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	return time.Parse(time.RFC3339Nano, value)
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
