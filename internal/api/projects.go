package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/videocraft/videocraft-agent/internal/editor"
	"github.com/videocraft/videocraft-agent/internal/project"
)

// saveProjectHandler snapshots a live session into a named project. A
// session id is required; the project remembers the video and the
// full edit state, nothing about the session itself.
func saveProjectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SaveProjectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		if req.Name == "" {
			WriteError(w, http.StatusBadRequest, "name is required", "BAD_REQUEST")
			return
		}
		if req.SessionID == "" {
			WriteError(w, http.StatusBadRequest, "session_id is required", "BAD_REQUEST")
			return
		}

		s, err := cfg.Sessions.Get(req.SessionID)
		if err != nil {
			WriteError(w, http.StatusNotFound, "session not found", "NOT_FOUND")
			return
		}

		now := time.Now().UTC()
		p := &project.Project{
			ID:        uuid.NewString(),
			Name:      req.Name,
			VideoID:   s.VideoID,
			State:     s.Snapshot(),
			CreatedAt: now,
			UpdatedAt: now,
		}

		if err := cfg.Projects.Create(r.Context(), p); err != nil {
			cfg.Logger.Error("failed to save project", "error", err, "name", req.Name)
			WriteError(w, http.StatusInternalServerError, "failed to save project", "INTERNAL_ERROR")
			return
		}

		WriteJSON(w, http.StatusCreated, ProjectToResponse(p))
	}
}

func listProjectsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projects, err := cfg.Projects.List(r.Context())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to list projects", "INTERNAL_ERROR")
			return
		}

		resp := ProjectsResponse{Projects: make([]ProjectResponse, len(projects))}
		for i, p := range projects {
			resp.Projects[i] = ProjectToResponse(p)
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func getProjectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := lookupProject(w, r, cfg)
		if !ok {
			return
		}
		WriteJSON(w, http.StatusOK, ProjectToResponse(p))
	}
}

// updateProjectHandler renames a project and/or refreshes its saved
// state from a live session.
func updateProjectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := lookupProject(w, r, cfg)
		if !ok {
			return
		}

		var req SaveProjectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		if req.Name != "" {
			p.Name = req.Name
		}
		if req.SessionID != "" {
			s, err := cfg.Sessions.Get(req.SessionID)
			if err != nil {
				WriteError(w, http.StatusNotFound, "session not found", "NOT_FOUND")
				return
			}
			if s.VideoID != p.VideoID {
				WriteError(w, http.StatusBadRequest, "session edits a different video", "BAD_REQUEST")
				return
			}
			p.State = s.Snapshot()
		}
		p.UpdatedAt = time.Now().UTC()

		if err := cfg.Projects.Update(r.Context(), p); err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to update project", "INTERNAL_ERROR")
			return
		}

		WriteJSON(w, http.StatusOK, ProjectToResponse(p))
	}
}

func deleteProjectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := lookupProject(w, r, cfg)
		if !ok {
			return
		}

		if err := cfg.Projects.Delete(r.Context(), p.ID); err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// loadProjectHandler rehydrates a saved project into a fresh session,
// replacing whatever session is currently active.
func loadProjectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := lookupProject(w, r, cfg)
		if !ok {
			return
		}

		video, err := cfg.Library.GetVideo(r.Context(), p.VideoID)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}
		if video == nil {
			WriteError(w, http.StatusGone, "project's video no longer exists", "VIDEO_GONE")
			return
		}
		if video.Duration <= 0 {
			WriteError(w, http.StatusConflict, "video metadata not reported yet", "NOT_READY")
			return
		}

		s, err := cfg.Sessions.OpenFromSnapshot(video.ID, editor.Metadata{
			Duration: video.Duration,
			Width:    video.Width,
			Height:   video.Height,
		}, p.State)
		if err != nil {
			writeEditorError(w, err)
			return
		}

		WriteJSON(w, http.StatusCreated, SessionResponse{Session: s.View()})
	}
}

func lookupProject(w http.ResponseWriter, r *http.Request, cfg ServerConfig) (*project.Project, bool) {
	id := chi.URLParam(r, "id")
	if id == "" {
		WriteError(w, http.StatusBadRequest, "project id required", "BAD_REQUEST")
		return nil, false
	}

	p, err := cfg.Projects.Get(r.Context(), id)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
		return nil, false
	}
	if p == nil {
		WriteError(w, http.StatusNotFound, "project not found", "NOT_FOUND")
		return nil, false
	}
	return p, true
}
