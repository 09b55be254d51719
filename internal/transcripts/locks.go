package transcripts

import (
	"context"
	"fmt"
	"time"
)

// AcquirePage claims a page for a cleaner until now + the configured TTL.
// The claim succeeds when the page is unlocked, already held by the same
// cleaner (refresh), or carries an expired lock. It is a single conditional
// write, so a concurrent acquisition by a different cleaner cannot race it.
// Returns ErrLockConflict when another cleaner actively holds the page and
// ErrNotFound when the page does not exist.
func (s *Store) AcquirePage(ctx context.Context, pageID int64, cleanerID string, now time.Time) (*Page, error) {
	if cleanerID == "" {
		return nil, fmt.Errorf("acquire page: cleaner id must not be empty")
	}

	deadline := now.Add(s.lockTTL)
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE pages
         SET locked_by = ?, locked_until = ?
         WHERE id = ? AND approved = 0
           AND (locked_by IS NULL OR locked_by = ? OR locked_until < ?)`,
		cleanerID,
		deadline.Unix(),
		pageID,
		cleanerID,
		now.Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("acquire page: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("acquire page: rows affected: %w", err)
	}
	if affected == 1 {
		return s.PageByID(ctx, pageID)
	}

	page, err := s.PageByID(ctx, pageID)
	if err != nil {
		return nil, err
	}
	if page == nil {
		return nil, fmt.Errorf("acquire page %d: %w", pageID, ErrNotFound)
	}
	return nil, fmt.Errorf("page %d: %w", page.Number, ErrLockConflict)
}

// ReleaseExpiredLocks clears locks whose deadline has passed. Expiry is
// otherwise evaluated lazily, so this only runs ahead of routing decisions.
func (s *Store) ReleaseExpiredLocks(ctx context.Context, missionID int64, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE pages
         SET locked_by = NULL, locked_until = NULL
         WHERE mission_id = ? AND locked_by IS NOT NULL AND locked_until < ?`,
		missionID,
		now.Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("release expired locks: %w", err)
	}
	return res.RowsAffected()
}
