package api

import (
	"context"
	"fmt"
	"time"

	"kallisto/internal/transcripts"
)

// CleaningStore abstracts the store operations the cleaning workflow needs.
type CleaningStore interface {
	MissionBySlug(ctx context.Context, slug string) (*transcripts.Mission, error)
	PageByNumber(ctx context.Context, missionID int64, number int) (*transcripts.Page, error)
	CurrentText(ctx context.Context, pageID int64) (string, error)
	ClaimNextPage(ctx context.Context, missionID int64, cleanerID string, now time.Time) (*transcripts.Page, error)
	CreateRevision(ctx context.Context, pageID int64, cleanerID, text string, now time.Time) (*transcripts.Revision, error)
	Revisions(ctx context.Context, pageID int64) ([]*transcripts.Revision, error)
	CleanerByID(ctx context.Context, id string) (*transcripts.Cleaner, error)
}

// CleaningService drives the cleaning workflow: routing a cleaner to their
// next page and committing revisions against held locks.
type CleaningService struct {
	store CleaningStore
}

// NewCleaningService constructs a CleaningService around the provided store.
func NewCleaningService(store CleaningStore) *CleaningService {
	if store == nil {
		return nil
	}
	return &CleaningService{store: store}
}

// Next routes the cleaner to their next page in the mission, locking it.
// A done result means no page in the mission needs this cleaner's attention.
func (s *CleaningService) Next(ctx context.Context, slug, cleanerID string, now time.Time) (*NextPage, error) {
	mission, err := s.mission(ctx, slug)
	if err != nil {
		return nil, err
	}
	page, err := s.store.ClaimNextPage(ctx, mission.ID, cleanerID, now)
	if err != nil {
		return nil, err
	}
	if page == nil {
		return &NextPage{Done: true}, nil
	}
	dto, err := s.pageDTO(ctx, page)
	if err != nil {
		return nil, err
	}
	return &NextPage{Page: dto}, nil
}

// Page fetches one page of the mission with its derived current text.
func (s *CleaningService) Page(ctx context.Context, slug string, number int) (*Page, error) {
	mission, err := s.mission(ctx, slug)
	if err != nil {
		return nil, err
	}
	page, err := s.store.PageByNumber(ctx, mission.ID, number)
	if err != nil {
		return nil, err
	}
	if page == nil {
		return nil, fmt.Errorf("page %d of %q: %w", number, slug, transcripts.ErrNotFound)
	}
	return s.pageDTO(ctx, page)
}

// Submit commits an edit to a page. The caller must hold the page's lock;
// transcripts.ErrLockExpired passes through so the boundary can report the
// conflict with the submitted text intact.
func (s *CleaningService) Submit(ctx context.Context, slug string, number int, cleanerID, text string, now time.Time) (*Page, error) {
	mission, err := s.mission(ctx, slug)
	if err != nil {
		return nil, err
	}
	page, err := s.store.PageByNumber(ctx, mission.ID, number)
	if err != nil {
		return nil, err
	}
	if page == nil {
		return nil, fmt.Errorf("page %d of %q: %w", number, slug, transcripts.ErrNotFound)
	}
	if _, err := s.store.CreateRevision(ctx, page.ID, cleanerID, text, now); err != nil {
		return nil, err
	}
	page, err = s.store.PageByNumber(ctx, mission.ID, number)
	if err != nil {
		return nil, err
	}
	return s.pageDTO(ctx, page)
}

// History returns a page's revision trail, oldest first.
func (s *CleaningService) History(ctx context.Context, slug string, number int) ([]Revision, error) {
	mission, err := s.mission(ctx, slug)
	if err != nil {
		return nil, err
	}
	page, err := s.store.PageByNumber(ctx, mission.ID, number)
	if err != nil {
		return nil, err
	}
	if page == nil {
		return nil, fmt.Errorf("page %d of %q: %w", number, slug, transcripts.ErrNotFound)
	}
	revisions, err := s.store.Revisions(ctx, page.ID)
	if err != nil {
		return nil, err
	}
	out := make([]Revision, 0, len(revisions))
	for _, revision := range revisions {
		name, err := s.cleanerName(ctx, revision.CleanerID)
		if err != nil {
			return nil, err
		}
		out = append(out, FromRevision(revision, name))
	}
	return out, nil
}

func (s *CleaningService) mission(ctx context.Context, slug string) (*transcripts.Mission, error) {
	mission, err := s.store.MissionBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if mission == nil {
		return nil, fmt.Errorf("mission %q: %w", slug, transcripts.ErrNotFound)
	}
	return mission, nil
}

func (s *CleaningService) pageDTO(ctx context.Context, page *transcripts.Page) (*Page, error) {
	text, err := s.store.CurrentText(ctx, page.ID)
	if err != nil {
		return nil, err
	}
	lockedByName := ""
	if page.LockedBy != "" {
		lockedByName, err = s.cleanerName(ctx, page.LockedBy)
		if err != nil {
			return nil, err
		}
	}
	dto := FromPage(page, text, lockedByName)
	return &dto, nil
}

func (s *CleaningService) cleanerName(ctx context.Context, id string) (string, error) {
	cleaner, err := s.store.CleanerByID(ctx, id)
	if err != nil {
		return "", err
	}
	if cleaner == nil {
		return "", nil
	}
	return cleaner.Name, nil
}
