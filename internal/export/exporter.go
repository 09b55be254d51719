package export

import (
	"archive/zip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"kallisto/internal/transcripts"
)

// DefaultTranscriptName is the conventional name of the main transcript file.
const DefaultTranscriptName = "TEC"

// zip entry timestamps are pinned so archives stay byte-identical across
// exports of unchanged missions.
var archiveEpoch = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

// MissionReader is the slice of the store the exporter needs.
type MissionReader interface {
	MissionBySlug(ctx context.Context, slug string) (*transcripts.Mission, error)
	PageSnapshots(ctx context.Context, missionID int64) ([]transcripts.PageSnapshot, error)
	CleanerNamesForMission(ctx context.Context, missionID int64) ([]string, error)
}

// Exporter renders a mission's current state for consumption by Spacelog.
type Exporter struct {
	mission        *transcripts.Mission
	pages          []transcripts.PageSnapshot
	cleaners       []string
	transcriptName string
}

// New builds an exporter over an already-loaded mission snapshot.
func New(mission *transcripts.Mission, pages []transcripts.PageSnapshot, cleaners []string, transcriptName string) *Exporter {
	if strings.TrimSpace(transcriptName) == "" {
		transcriptName = DefaultTranscriptName
	}
	return &Exporter{
		mission:        mission,
		pages:          pages,
		cleaners:       cleaners,
		transcriptName: transcriptName,
	}
}

// Load reads a mission's committed state and builds an exporter for it.
// Returns transcripts.ErrNotFound when the slug does not resolve.
func Load(ctx context.Context, reader MissionReader, slug, transcriptName string) (*Exporter, error) {
	mission, err := reader.MissionBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if mission == nil {
		return nil, fmt.Errorf("mission %q: %w", slug, transcripts.ErrNotFound)
	}
	pages, err := reader.PageSnapshots(ctx, mission.ID)
	if err != nil {
		return nil, err
	}
	cleaners, err := reader.CleanerNamesForMission(ctx, mission.ID)
	if err != nil {
		return nil, err
	}
	return New(mission, pages, cleaners, transcriptName), nil
}

// MainTranscript renders the combined transcript: every page in ascending
// number order, each introduced by a page marker so the layout is stable
// byte-for-byte given the same revisions. Pages without committed revisions
// contribute their machine first pass (or an empty body).
func (e *Exporter) MainTranscript() string {
	var b strings.Builder
	for _, page := range e.pages {
		fmt.Fprintf(&b, "\tPage %d\n", page.Number)
		fmt.Fprintf(&b, "\tApproved? %t\n", page.Approved)
		b.WriteString(page.Text)
		b.WriteString("\n")
	}
	return b.String()
}

// MainTranscriptPath returns where the main transcript lives relative to the
// mission's root directory.
func (e *Exporter) MainTranscriptPath() string {
	return "transcripts/" + e.transcriptName
}

type metaCopy struct {
	Title      string   `json:"title"`
	UpperTitle string   `json:"upper_title"`
	LowerTitle string   `json:"lower_title"`
	Cleaners   []string `json:"cleaners"`
}

type metaDocument struct {
	Name           string   `json:"name"`
	Incomplete     bool     `json:"incomplete"`
	Subdomains     []string `json:"subdomains"`
	Copy           metaCopy `json:"copy"`
	MainTranscript string   `json:"main_transcript"`
	UTCLaunchTime  string   `json:"utc_launch_time"`
}

// Meta renders the mission metadata document. All fields derive from stored
// mission state, so the output is stable for an unchanged mission.
func (e *Exporter) Meta() (string, error) {
	name := strings.ToLower(e.mission.Slug)
	upper, lower := splitTitle(e.mission.Name)

	cleaners := e.cleaners
	if cleaners == nil {
		cleaners = []string{}
	}

	doc := metaDocument{
		Name:       name,
		Incomplete: !e.complete(),
		Subdomains: []string{name},
		Copy: metaCopy{
			Title:      e.mission.Name,
			UpperTitle: upper,
			LowerTitle: lower,
			Cleaners:   cleaners,
		},
		MainTranscript: name + "/" + e.transcriptName,
		UTCLaunchTime:  e.mission.Start.UTC().Format("2006-01-02"),
	}

	encoded, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return "", fmt.Errorf("marshal meta: %w", err)
	}
	return string(encoded) + "\n", nil
}

// MetaPath returns where the meta file lives relative to the mission's root
// directory.
func (e *Exporter) MetaPath() string {
	return "transcripts/_meta"
}

// ArchiveName is the suggested filename for a zip download.
func (e *Exporter) ArchiveName() string {
	return e.mission.Slug + ".zip"
}

// WriteArchive writes the export as a zip with exactly two entries, both
// under the mission's short-name prefix and independently extractable.
func (e *Exporter) WriteArchive(w io.Writer) error {
	meta, err := e.Meta()
	if err != nil {
		return err
	}

	zw := zip.NewWriter(w)
	entries := []struct {
		path string
		body string
	}{
		{path.Join(e.mission.Slug, e.MainTranscriptPath()), e.MainTranscript()},
		{path.Join(e.mission.Slug, e.MetaPath()), meta},
	}
	for _, entry := range entries {
		header := &zip.FileHeader{
			Name:     entry.path,
			Method:   zip.Deflate,
			Modified: archiveEpoch,
		}
		file, err := zw.CreateHeader(header)
		if err != nil {
			return fmt.Errorf("create archive entry %s: %w", entry.path, err)
		}
		if _, err := io.WriteString(file, entry.body); err != nil {
			return fmt.Errorf("write archive entry %s: %w", entry.path, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalize archive: %w", err)
	}
	return nil
}

// WriteDir writes the transcript and meta files under dir using the same
// relative layout as the archive entries.
func (e *Exporter) WriteDir(dir string) error {
	meta, err := e.Meta()
	if err != nil {
		return err
	}

	files := []struct {
		path string
		body string
	}{
		{filepath.Join(dir, filepath.FromSlash(e.MainTranscriptPath())), e.MainTranscript()},
		{filepath.Join(dir, filepath.FromSlash(e.MetaPath())), meta},
	}
	for _, file := range files {
		if err := os.MkdirAll(filepath.Dir(file.path), 0o755); err != nil {
			return fmt.Errorf("create export directory: %w", err)
		}
		if err := os.WriteFile(file.path, []byte(file.body), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", file.path, err)
		}
	}
	return nil
}

func (e *Exporter) complete() bool {
	if len(e.pages) == 0 {
		return false
	}
	for _, page := range e.pages {
		if !page.Approved {
			return false
		}
	}
	return true
}

// splitTitle divides a mission name into the upper and lower display titles
// on the first space ("Apollo 11" becomes "Apollo" / "11").
func splitTitle(name string) (string, string) {
	upper, lower, found := strings.Cut(name, " ")
	if !found {
		return name, ""
	}
	return upper, lower
}
