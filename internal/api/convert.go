package api

import (
	"time"

	"kallisto/internal/transcripts"
)

// FromMission converts a mission record and its progress to API form.
func FromMission(mission *transcripts.Mission, progress transcripts.Progress) Mission {
	if mission == nil {
		return Mission{}
	}
	return Mission{
		Slug:      mission.Slug,
		Name:      mission.Name,
		StartDate: mission.Start.UTC().Format("2006-01-02"),
		Active:    mission.Active,
		WikiURL:   mission.WikiURL,
		Progress: Progress{
			Pages:    progress.Pages,
			Cleaned:  progress.Cleaned,
			Approved: progress.Approved,
			Done:     progress.Done(),
		},
	}
}

// FromPage converts a page record to API form. The derived current text and
// the lock holder's display name are resolved by the caller.
func FromPage(page *transcripts.Page, text, lockedByName string) Page {
	if page == nil {
		return Page{}
	}
	dto := Page{
		Number:   page.Number,
		Text:     text,
		Approved: page.Approved,
	}
	if page.LockedBy != "" {
		dto.LockedBy = lockedByName
		if page.LockedUntil != nil {
			dto.LockExpires = FormatTime(*page.LockedUntil)
		}
	}
	return dto
}

// FromRevision converts a revision record, naming its author.
func FromRevision(revision *transcripts.Revision, cleanerName string) Revision {
	if revision == nil {
		return Revision{}
	}
	return Revision{
		Cleaner:   cleanerName,
		Text:      revision.Text,
		CreatedAt: FormatTime(revision.CreatedAt),
	}
}

// FromCleaner converts a cleaner record to its leaderboard form.
func FromCleaner(cleaner *transcripts.Cleaner) Cleaner {
	if cleaner == nil {
		return Cleaner{}
	}
	return Cleaner{
		Name:          cleaner.Name,
		PagesCleaned:  cleaner.PagesCleaned,
		PagesApproved: cleaner.PagesApproved,
		Score:         cleaner.Score,
	}
}

// FromCleaners converts a slice of cleaner records into API DTOs.
func FromCleaners(cleaners []*transcripts.Cleaner) []Cleaner {
	if len(cleaners) == 0 {
		return nil
	}
	out := make([]Cleaner, 0, len(cleaners))
	for _, cleaner := range cleaners {
		out = append(out, FromCleaner(cleaner))
	}
	return out
}

// FormatTime converts a time to RFC3339 or returns empty string.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}
