package transcripts

import "time"

// Mission is a document-transcription project composed of ordered pages.
type Mission struct {
	ID        int64
	Slug      string
	Name      string
	Start     time.Time
	Active    bool
	WikiURL   string
	CreatedAt time.Time
}

// Page belongs to exactly one mission. Its current text is derived from the
// latest revision (or the original OCR text when none exists) and is never
// stored as a mutable column.
type Page struct {
	ID           int64
	MissionID    int64
	Number       int
	OriginalText string
	Approved     bool
	LockedBy     string
	LockedUntil  *time.Time
	CreatedAt    time.Time
}

// NeedsCleaning reports whether the page should still be routed to cleaners.
// A page stops needing cleaning once a revision confirms the previous pass
// unchanged (see Store.CreateRevision).
func (p *Page) NeedsCleaning() bool {
	return !p.Approved
}

// LockActive reports whether the page carries an unexpired lock.
func (p *Page) LockActive(now time.Time) bool {
	return p.LockedBy != "" && p.LockedUntil != nil && !p.LockedUntil.Before(now)
}

// HeldBy reports whether the page is actively locked by the given cleaner.
func (p *Page) HeldBy(cleanerID string, now time.Time) bool {
	return p.LockActive(now) && p.LockedBy == cleanerID
}

// Revision is an immutable snapshot of a page's text. Revisions are
// append-only; the highest id for a page is its current text.
type Revision struct {
	ID        int64
	PageID    int64
	CleanerID string
	Text      string
	CreatedAt time.Time
}

// Cleaner identifies a volunteer. The id is opaque to the core; it only ever
// compares ids for lock ownership.
type Cleaner struct {
	ID            string
	Name          string
	PagesCleaned  int
	PagesApproved int
	Score         int
	CreatedAt     time.Time
}

// PageSnapshot is the read-only view of a page used by the exporter.
type PageSnapshot struct {
	Number   int
	Approved bool
	Text     string
}

// Progress summarizes how far along a mission's cleaning is.
type Progress struct {
	Pages    int
	Cleaned  int
	Approved int
}

// Done reports whether every page of the mission has been approved.
func (p Progress) Done() bool {
	return p.Pages > 0 && p.Approved == p.Pages
}
