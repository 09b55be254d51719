package transcripts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// CreateRevision appends a revision for a page the cleaner currently holds.
//
// The lock check and the append run in one transaction: the page is unlocked
// with a conditional write requiring an unexpired lock owned by the cleaner,
// and when that matches no row the whole commit fails with ErrLockExpired.
// There is no window in which the lock is observed valid but the revision is
// not durably recorded.
//
// When the submitted text is byte-identical to the page's previous current
// text, the submission counts as a confirming second pass and the page is
// marked approved, removing it from the cleaning rotation.
func (s *Store) CreateRevision(ctx context.Context, pageID int64, cleanerID, text string, now time.Time) (*Revision, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin revision tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var previous string
	row := tx.QueryRowContext(ctx, `SELECT `+currentTextExpr+` FROM pages WHERE id = ?`, pageID)
	if err := row.Scan(&previous); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("page %d: %w", pageID, ErrLockExpired)
		}
		return nil, fmt.Errorf("read previous text: %w", err)
	}

	approved := previous == text

	res, err := tx.ExecContext(
		ctx,
		`UPDATE pages
         SET locked_by = NULL, locked_until = NULL, approved = ?
         WHERE id = ? AND approved = 0 AND locked_by = ? AND locked_until >= ?`,
		boolToInt(approved),
		pageID,
		cleanerID,
		now.Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("unlock page: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("unlock page: rows affected: %w", err)
	}
	if affected != 1 {
		return nil, fmt.Errorf("page %d: %w", pageID, ErrLockExpired)
	}

	insert, err := tx.ExecContext(
		ctx,
		`INSERT INTO revisions (page_id, cleaner_id, text, created_at) VALUES (?, ?, ?, ?)`,
		pageID,
		cleanerID,
		text,
		formatTime(now),
	)
	if err != nil {
		return nil, fmt.Errorf("insert revision: %w", err)
	}
	revisionID, err := insert.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	counter := "pages_cleaned"
	if approved {
		counter = "pages_approved"
	}
	if _, err := tx.ExecContext(
		ctx,
		`UPDATE cleaners SET `+counter+` = `+counter+` + 1, score = score + 1 WHERE id = ?`,
		cleanerID,
	); err != nil {
		return nil, fmt.Errorf("update cleaner counters: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit revision: %w", err)
	}

	return &Revision{
		ID:        revisionID,
		PageID:    pageID,
		CleanerID: cleanerID,
		Text:      text,
		CreatedAt: now.UTC(),
	}, nil
}

// Revisions returns a page's revision history in commit order.
func (s *Store) Revisions(ctx context.Context, pageID int64) ([]*Revision, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, page_id, cleaner_id, text, created_at FROM revisions WHERE page_id = ? ORDER BY id`,
		pageID,
	)
	if err != nil {
		return nil, fmt.Errorf("list revisions: %w", err)
	}
	defer rows.Close()

	var revisions []*Revision
	for rows.Next() {
		var (
			rev     Revision
			created sql.NullString
		)
		if err := rows.Scan(&rev.ID, &rev.PageID, &rev.CleanerID, &rev.Text, &created); err != nil {
			return nil, err
		}
		if createdAt, err := parseTimeString(created.String); err == nil {
			rev.CreatedAt = createdAt
		}
		revisions = append(revisions, &rev)
	}
	return revisions, rows.Err()
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
