package api_test

import (
	"testing"
	"time"

	"kallisto/internal/api"
	"kallisto/internal/transcripts"
)

func TestFromMission(t *testing.T) {
	mission := &transcripts.Mission{
		Slug:    "apollo11",
		Name:    "Apollo 11",
		Start:   time.Date(1969, 7, 16, 0, 0, 0, 0, time.UTC),
		Active:  true,
		WikiURL: "https://en.wikipedia.org/wiki/Apollo_11",
	}
	progress := transcripts.Progress{Pages: 3, Cleaned: 1}

	dto := api.FromMission(mission, progress)
	if dto.Slug != "apollo11" || dto.Name != "Apollo 11" {
		t.Fatalf("unexpected mission dto: %+v", dto)
	}
	if dto.StartDate != "1969-07-16" {
		t.Fatalf("unexpected start date %q", dto.StartDate)
	}
	if dto.Progress.Pages != 3 || dto.Progress.Cleaned != 1 || dto.Progress.Done {
		t.Fatalf("unexpected progress %+v", dto.Progress)
	}
}

func TestFromPageExposesLockByName(t *testing.T) {
	until := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	page := &transcripts.Page{
		Number:      2,
		LockedBy:    "some-opaque-id",
		LockedUntil: &until,
	}

	dto := api.FromPage(page, "current text", "alice")
	if dto.LockedBy != "alice" {
		t.Fatalf("expected lock holder name, got %q", dto.LockedBy)
	}
	if dto.LockExpires != "2026-08-29T12:00:00.000Z" {
		t.Fatalf("unexpected lock expiry %q", dto.LockExpires)
	}
	if dto.Text != "current text" {
		t.Fatalf("unexpected text %q", dto.Text)
	}
}

func TestFromPageUnlocked(t *testing.T) {
	dto := api.FromPage(&transcripts.Page{Number: 1}, "text", "")
	if dto.LockedBy != "" || dto.LockExpires != "" {
		t.Fatalf("unlocked page must not carry lock fields: %+v", dto)
	}
}

func TestFormatTimeZero(t *testing.T) {
	if got := api.FormatTime(time.Time{}); got != "" {
		t.Fatalf("expected empty string for zero time, got %q", got)
	}
}
