package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"kallisto/internal/api"
	"kallisto/internal/config"
	"kallisto/internal/export"
	"kallisto/internal/identity"
	"kallisto/internal/logging"
	"kallisto/internal/transcripts"
)

// identityHeader carries the opaque volunteer identity on every cleaning
// request. The daemon trusts it as-is; authentication lives elsewhere.
const identityHeader = "X-Kallisto-User"

type apiServer struct {
	bind           string
	logger         *slog.Logger
	daemon         *Daemon
	store          *transcripts.Store
	missionSvc     *api.MissionService
	cleaningSvc    *api.CleaningService
	resolver       *identity.Resolver
	transcriptName string

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) (*apiServer, error) {
	if cfg == nil || d == nil {
		return nil, nil
	}
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil, nil
	}

	srv := &apiServer{
		bind:           bind,
		logger:         logger,
		daemon:         d,
		store:          d.store,
		missionSvc:     api.NewMissionService(d.store),
		cleaningSvc:    api.NewCleaningService(d.store),
		resolver:       identity.NewResolver(d.store),
		transcriptName: cfg.Cleaning.TranscriptName,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", srv.handleStatus)
	mux.HandleFunc("/api/missions", srv.handleMissions)
	mux.HandleFunc("/api/missions/", srv.handleMission)
	mux.HandleFunc("/api/cleaners", srv.handleCleaners)

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

func (s *apiServer) start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.log().Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s == nil {
		return
	}
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	status := s.daemon.Status(r.Context())
	s.writeJSON(w, http.StatusOK, api.DaemonStatus{
		Running:      status.Running,
		PID:          status.PID,
		DatabasePath: status.DatabasePath,
		LockFilePath: status.LockFilePath,
		Missions:     status.Missions,
	})
}

func (s *apiServer) handleMissions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	missions, err := s.missionSvc.List(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.MissionListResponse{Missions: missions})
}

func (s *apiServer) handleCleaners(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	cleaners, err := s.missionSvc.Leaderboard(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.CleanerListResponse{Cleaners: cleaners})
}

// handleMission dispatches everything under /api/missions/{slug}.
func (s *apiServer) handleMission(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/missions/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		s.writeError(w, http.StatusNotFound, "mission not found")
		return
	}
	slug := parts[0]

	switch {
	case len(parts) == 1:
		s.handleMissionDetail(w, r, slug)
	case len(parts) == 2 && parts[1] == "next":
		s.handleNext(w, r, slug)
	case len(parts) == 2 && parts[1] == "export":
		s.handleExport(w, r, slug)
	case len(parts) == 3 && parts[1] == "pages":
		s.handlePage(w, r, slug, parts[2])
	case len(parts) == 4 && parts[1] == "pages" && parts[3] == "revisions":
		s.handleRevisions(w, r, slug, parts[2])
	default:
		s.writeError(w, http.StatusNotFound, "not found")
	}
}

func (s *apiServer) handleMissionDetail(w http.ResponseWriter, r *http.Request, slug string) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	mission, err := s.missionSvc.Describe(r.Context(), slug)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if mission == nil {
		s.writeError(w, http.StatusNotFound, "mission not found")
		return
	}
	s.writeJSON(w, http.StatusOK, api.MissionResponse{Mission: *mission})
}

func (s *apiServer) handleNext(w http.ResponseWriter, r *http.Request, slug string) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	cleaner, ok := s.identify(w, r)
	if !ok {
		return
	}
	next, err := s.cleaningSvc.Next(r.Context(), slug, cleaner.ID, time.Now())
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, next)
}

func (s *apiServer) handlePage(w http.ResponseWriter, r *http.Request, slug, rawNumber string) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	number, err := strconv.Atoi(rawNumber)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid page number")
		return
	}
	page, err := s.cleaningSvc.Page(r.Context(), slug, number)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.PageResponse{Page: *page})
}

func (s *apiServer) handleRevisions(w http.ResponseWriter, r *http.Request, slug, rawNumber string) {
	number, err := strconv.Atoi(rawNumber)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid page number")
		return
	}
	switch r.Method {
	case http.MethodGet:
		history, err := s.cleaningSvc.History(r.Context(), slug, number)
		if err != nil {
			s.writeStoreError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, api.RevisionListResponse{Revisions: history})
	case http.MethodPost:
		s.handleSubmit(w, r, slug, number)
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *apiServer) handleSubmit(w http.ResponseWriter, r *http.Request, slug string, number int) {
	cleaner, ok := s.identify(w, r)
	if !ok {
		return
	}
	var body api.SubmitRevision
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	requestID := uuid.NewString()
	logger := s.log().With(
		logging.String(logging.FieldRequestID, requestID),
		logging.String(logging.FieldCleaner, cleaner.Name),
		logging.String(logging.FieldMission, slug),
		logging.Int(logging.FieldPage, number),
	)

	page, err := s.cleaningSvc.Submit(r.Context(), slug, number, cleaner.ID, body.Text, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, transcripts.ErrLockExpired):
			// The submitted text rides along so the client never loses input.
			logger.Warn("revision rejected, lock expired")
			s.writeJSON(w, http.StatusConflict, api.RevisionConflict{
				Error: "lock_expired",
				Text:  body.Text,
			})
		case errors.Is(err, transcripts.ErrNotFound):
			s.writeError(w, http.StatusNotFound, err.Error())
		default:
			logger.Error("revision commit failed", logging.Error(err))
			s.writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	logger.Info("revision committed", logging.Bool("approved", page.Approved))
	s.writeJSON(w, http.StatusCreated, api.PageResponse{Page: *page})
}

func (s *apiServer) handleExport(w http.ResponseWriter, r *http.Request, slug string) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	exporter, err := export.Load(r.Context(), s.store, slug, s.transcriptName)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/x-zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", exporter.ArchiveName()))
	if err := exporter.WriteArchive(w); err != nil {
		s.log().Error("export stream failed", logging.String("mission", slug), logging.Error(err))
	}
}

// identify resolves the caller's identity header, writing a 401 when it is
// absent or unusable.
func (s *apiServer) identify(w http.ResponseWriter, r *http.Request) (*transcripts.Cleaner, bool) {
	cleaner, err := s.resolver.Resolve(r.Context(), r.Header.Get(identityHeader))
	if err != nil {
		if errors.Is(err, identity.ErrEmptyIdentity) {
			s.writeError(w, http.StatusUnauthorized, "missing "+identityHeader+" header")
		} else {
			s.writeError(w, http.StatusInternalServerError, err.Error())
		}
		return nil, false
	}
	return cleaner, true
}

func (s *apiServer) writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, transcripts.ErrNotFound):
		s.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, transcripts.ErrLockConflict):
		s.writeError(w, http.StatusConflict, err.Error())
	default:
		s.writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

func (s *apiServer) log() *slog.Logger {
	if s.logger != nil {
		return s.logger.With(logging.String("component", "api-server"))
	}
	return logging.NewNop()
}
