package api

import (
	"context"

	"kallisto/internal/transcripts"
)

// MissionReader abstracts mission persistence interactions needed for API
// queries.
type MissionReader interface {
	Missions(ctx context.Context) ([]*transcripts.Mission, error)
	MissionBySlug(ctx context.Context, slug string) (*transcripts.Mission, error)
	MissionProgress(ctx context.Context, missionID int64) (transcripts.Progress, error)
	Cleaners(ctx context.Context) ([]*transcripts.Cleaner, error)
}

// MissionService exposes read-only mission operations returning API DTOs.
type MissionService struct {
	store MissionReader
}

// NewMissionService constructs a MissionService around the provided reader.
func NewMissionService(store MissionReader) *MissionService {
	if store == nil {
		return nil
	}
	return &MissionService{store: store}
}

// List returns every mission with its cleaning progress.
func (s *MissionService) List(ctx context.Context) ([]Mission, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	missions, err := s.store.Missions(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Mission, 0, len(missions))
	for _, mission := range missions {
		progress, err := s.store.MissionProgress(ctx, mission.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, FromMission(mission, progress))
	}
	return out, nil
}

// Describe fetches a single mission by slug.
func (s *MissionService) Describe(ctx context.Context, slug string) (*Mission, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	mission, err := s.store.MissionBySlug(ctx, slug)
	if err != nil || mission == nil {
		return nil, err
	}
	progress, err := s.store.MissionProgress(ctx, mission.ID)
	if err != nil {
		return nil, err
	}
	dto := FromMission(mission, progress)
	return &dto, nil
}

// Leaderboard returns every cleaner ordered by score.
func (s *MissionService) Leaderboard(ctx context.Context) ([]Cleaner, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	cleaners, err := s.store.Cleaners(ctx)
	if err != nil {
		return nil, err
	}
	return FromCleaners(cleaners), nil
}
