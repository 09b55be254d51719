package transcripts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// notRevisedByClause excludes pages the cleaner has already submitted a
// revision for; the confirming pass must come from a different person.
const notRevisedByClause = `NOT EXISTS (
    SELECT 1 FROM revisions r WHERE r.page_id = pages.id AND r.cleaner_id = ?)`

// PeekNextPage selects the next page the cleaner could work on without
// acquiring a lock. Pages actively locked by a different cleaner are skipped;
// a page the cleaner already holds remains eligible. Returns (nil, nil) when
// the mission has nothing left to clean for this cleaner.
func (s *Store) PeekNextPage(ctx context.Context, missionID int64, cleanerID string, now time.Time) (*Page, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+pageColumns+` FROM pages
         WHERE mission_id = ? AND approved = 0
           AND (locked_by IS NULL OR locked_by = ? OR locked_until < ?)
           AND `+notRevisedByClause+`
         ORDER BY number LIMIT 1`,
		missionID,
		cleanerID,
		now.Unix(),
		cleanerID,
	)
	page, err := scanPage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("peek next page: %w", err)
	}
	return page, nil
}

// ClaimNextPage routes a cleaner to the next page needing work and locks it.
//
// A page the cleaner already holds is preferred so interrupted sessions
// resume where they left off. Otherwise expired locks are released and the
// lowest-numbered eligible page is claimed; because the claim itself is a
// conditional write, a page grabbed concurrently by someone else is simply
// skipped. Returns (nil, nil) when the mission is fully clean for this
// cleaner, which callers treat as a terminal "done" signal rather than an
// error.
func (s *Store) ClaimNextPage(ctx context.Context, missionID int64, cleanerID string, now time.Time) (*Page, error) {
	held, err := s.heldPage(ctx, missionID, cleanerID, now)
	if err != nil {
		return nil, err
	}
	if held != nil {
		page, err := s.AcquirePage(ctx, held.ID, cleanerID, now)
		if err == nil {
			return page, nil
		}
		if !errors.Is(err, ErrLockConflict) {
			return nil, err
		}
	}

	if _, err := s.ReleaseExpiredLocks(ctx, missionID, now); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id FROM pages
         WHERE mission_id = ? AND approved = 0 AND locked_by IS NULL
           AND `+notRevisedByClause+`
         ORDER BY number`,
		missionID,
		cleanerID,
	)
	if err != nil {
		return nil, fmt.Errorf("routing candidates: %w", err)
	}
	defer rows.Close()

	var candidates []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		candidates = append(candidates, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, id := range candidates {
		page, err := s.AcquirePage(ctx, id, cleanerID, now)
		if errors.Is(err, ErrLockConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return page, nil
	}

	return nil, nil
}

func (s *Store) heldPage(ctx context.Context, missionID int64, cleanerID string, now time.Time) (*Page, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+pageColumns+` FROM pages
         WHERE mission_id = ? AND approved = 0
           AND locked_by = ? AND locked_until >= ?
           AND `+notRevisedByClause+`
         ORDER BY number LIMIT 1`,
		missionID,
		cleanerID,
		now.Unix(),
		cleanerID,
	)
	page, err := scanPage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("held page: %w", err)
	}
	return page, nil
}
