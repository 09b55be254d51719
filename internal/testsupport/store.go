package testsupport

import (
	"context"
	"testing"
	"time"

	"kallisto/internal/config"
	"kallisto/internal/transcripts"
)

// MustOpenStore opens a transcripts.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *transcripts.Store {
	t.Helper()

	store, err := transcripts.Open(cfg)
	if err != nil {
		t.Fatalf("transcripts.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewMission creates a mission with the given slug for tests.
func NewMission(t testing.TB, store *transcripts.Store, slug, name string) *transcripts.Mission {
	t.Helper()

	mission, err := store.CreateMission(context.Background(), slug, name, time.Date(1969, 7, 16, 0, 0, 0, 0, time.UTC), "")
	if err != nil {
		t.Fatalf("store.CreateMission: %v", err)
	}
	return mission
}

// AddPages creates numbered pages 1..count with placeholder first-pass text.
func AddPages(t testing.TB, store *transcripts.Store, missionID int64, texts ...string) []*transcripts.Page {
	t.Helper()

	pages := make([]*transcripts.Page, 0, len(texts))
	for i, text := range texts {
		page, err := store.AddPage(context.Background(), missionID, i+1, text)
		if err != nil {
			t.Fatalf("store.AddPage: %v", err)
		}
		pages = append(pages, page)
	}
	return pages
}

// RegisterCleaner registers a cleaner by name for tests.
func RegisterCleaner(t testing.TB, store *transcripts.Store, name string) *transcripts.Cleaner {
	t.Helper()

	cleaner, err := store.RegisterCleaner(context.Background(), name)
	if err != nil {
		t.Fatalf("store.RegisterCleaner: %v", err)
	}
	return cleaner
}
