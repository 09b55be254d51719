package transcripts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RegisterCleaner returns the cleaner with the given display name, creating
// the record on first sight. Registration is idempotent and safe to race.
func (s *Store) RegisterCleaner(ctx context.Context, name string) (*Cleaner, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("cleaner name must not be empty")
	}

	if _, err := s.db.ExecContext(
		ctx,
		`INSERT INTO cleaners (id, name, created_at) VALUES (?, ?, ?)
         ON CONFLICT(name) DO NOTHING`,
		uuid.NewString(),
		name,
		formatTime(time.Now()),
	); err != nil {
		return nil, fmt.Errorf("register cleaner: %w", err)
	}

	cleaner, err := s.CleanerByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if cleaner == nil {
		return nil, fmt.Errorf("register cleaner %q: record missing after insert", name)
	}
	return cleaner, nil
}

// CleanerByID fetches a cleaner by identifier.
func (s *Store) CleanerByID(ctx context.Context, id string) (*Cleaner, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+cleanerColumns+` FROM cleaners WHERE id = ?`, id)
	cleaner, err := scanCleaner(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cleaner: %w", err)
	}
	return cleaner, nil
}

// CleanerByName fetches a cleaner by display name.
func (s *Store) CleanerByName(ctx context.Context, name string) (*Cleaner, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+cleanerColumns+` FROM cleaners WHERE name = ?`, name)
	cleaner, err := scanCleaner(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cleaner by name: %w", err)
	}
	return cleaner, nil
}

// Cleaners returns all cleaners ordered by score, then name.
func (s *Store) Cleaners(ctx context.Context) ([]*Cleaner, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+cleanerColumns+` FROM cleaners ORDER BY score DESC, name`)
	if err != nil {
		return nil, fmt.Errorf("list cleaners: %w", err)
	}
	defer rows.Close()

	var cleaners []*Cleaner
	for rows.Next() {
		cleaner, err := scanCleaner(rows)
		if err != nil {
			return nil, err
		}
		cleaners = append(cleaners, cleaner)
	}
	return cleaners, rows.Err()
}

// CleanerNamesForMission returns the sorted display names of everyone who
// committed a revision to the mission. Used by the export metadata.
func (s *Store) CleanerNamesForMission(ctx context.Context, missionID int64) ([]string, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT DISTINCT c.name
         FROM cleaners c
         JOIN revisions r ON r.cleaner_id = c.id
         JOIN pages p ON p.id = r.page_id
         WHERE p.mission_id = ?
         ORDER BY c.name`,
		missionID,
	)
	if err != nil {
		return nil, fmt.Errorf("mission cleaners: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

const cleanerColumns = "id, name, pages_cleaned, pages_approved, score, created_at"

func scanCleaner(scanner interface{ Scan(dest ...any) error }) (*Cleaner, error) {
	var (
		cleaner Cleaner
		created sql.NullString
	)
	if err := scanner.Scan(
		&cleaner.ID,
		&cleaner.Name,
		&cleaner.PagesCleaned,
		&cleaner.PagesApproved,
		&cleaner.Score,
		&created,
	); err != nil {
		return nil, err
	}
	if createdAt, err := parseTimeString(created.String); err == nil {
		cleaner.CreatedAt = createdAt
	}
	return &cleaner, nil
}
