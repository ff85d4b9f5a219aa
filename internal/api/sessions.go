package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/videocraft/videocraft-agent/internal/analysis"
	"github.com/videocraft/videocraft-agent/internal/editor"
	"github.com/videocraft/videocraft-agent/internal/session"
)

func openSessionHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req OpenSessionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		if req.VideoID == "" {
			WriteError(w, http.StatusBadRequest, "video_id is required", "BAD_REQUEST")
			return
		}

		video, err := cfg.Library.GetVideo(r.Context(), req.VideoID)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}
		if video == nil {
			WriteError(w, http.StatusNotFound, "video not found", "NOT_FOUND")
			return
		}
		if video.Duration <= 0 {
			WriteError(w, http.StatusConflict, "video metadata not reported yet", "NOT_READY")
			return
		}

		s, err := cfg.Sessions.Open(video.ID, editor.Metadata{
			Duration: video.Duration,
			Width:    video.Width,
			Height:   video.Height,
		})
		if err != nil {
			writeEditorError(w, err)
			return
		}

		WriteJSON(w, http.StatusCreated, SessionResponse{Session: s.View()})
	}
}

func getSessionHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := lookupSession(w, r, cfg)
		if !ok {
			return
		}
		WriteJSON(w, http.StatusOK, SessionResponse{Session: s.View()})
	}
}

func closeSessionHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := cfg.Sessions.Close(id); err != nil {
			WriteError(w, http.StatusNotFound, "session not found", "NOT_FOUND")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func trimHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := lookupSession(w, r, cfg)
		if !ok {
			return
		}

		var req TrimRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		m, err := s.SetTrim(req.Start, req.End)
		writeMutation(w, s, m, err)
	}
}

func addCutHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := lookupSession(w, r, cfg)
		if !ok {
			return
		}

		var req CutRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		m, err := s.AddCut(req.Time)
		writeMutation(w, s, m, err)
	}
}

// removeCutsHandler removes the cut nearest the time query parameter,
// or clears all cuts when no time is given.
func removeCutsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := lookupSession(w, r, cfg)
		if !ok {
			return
		}

		raw := r.URL.Query().Get("time")
		if raw == "" {
			m, err := s.ClearCuts()
			writeMutation(w, s, m, err)
			return
		}

		t, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "invalid time parameter", "BAD_REQUEST")
			return
		}

		m, err := s.RemoveCut(t)
		writeMutation(w, s, m, err)
	}
}

func addFilterHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := lookupSession(w, r, cfg)
		if !ok {
			return
		}

		var req FilterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		ft, err := editor.ParseFilterType(req.Type)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "INVALID_FILTER")
			return
		}

		m, err := s.AddFilter(editor.FilterDescriptor{
			ID:    uuid.NewString(),
			Type:  ft,
			Value: req.Value,
		})
		writeMutation(w, s, m, err)
	}
}

func removeFilterHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := lookupSession(w, r, cfg)
		if !ok {
			return
		}

		m, err := s.RemoveFilter(chi.URLParam(r, "filterID"))
		writeMutation(w, s, m, err)
	}
}

func seekHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := lookupSession(w, r, cfg)
		if !ok {
			return
		}

		var req SeekRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		m, err := s.Seek(req.Time)
		writeMutation(w, s, m, err)
	}
}

func playingHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := lookupSession(w, r, cfg)
		if !ok {
			return
		}

		var req PlayingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		if err := s.SetPlaying(req.Playing); err != nil {
			writeEditorError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, SessionResponse{Session: s.View()})
	}
}

// tickHandler is the playback heartbeat: the client reports its media
// element's current time and receives any corrective commands the
// boundary enforcement produced.
func tickHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := lookupSession(w, r, cfg)
		if !ok {
			return
		}

		var req TickRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		result, commands, err := s.Tick(req.Time)
		if err != nil {
			writeEditorError(w, err)
			return
		}

		view := s.View()
		if commands == nil {
			commands = []session.MediaCommand{}
		}
		WriteJSON(w, http.StatusOK, TickResponse{
			Paused:      result.Paused,
			Skipped:     result.Skipped,
			SkippedTo:   result.SkippedTo,
			Synced:      result.Synced,
			CurrentTime: view.CurrentTime,
			Playing:     view.Playing,
			Commands:    commands,
		})
	}
}

// mediaErrorHandler reports an unrecoverable media element error,
// permanently ending the session's editing capability.
func mediaErrorHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := lookupSession(w, r, cfg)
		if !ok {
			return
		}
		s.FailMedia()
		WriteJSON(w, http.StatusOK, SessionResponse{Session: s.View()})
	}
}

func applyRecommendationsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := lookupSession(w, r, cfg)
		if !ok {
			return
		}

		video, err := cfg.Library.GetVideo(r.Context(), s.VideoID)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}
		if video == nil {
			WriteError(w, http.StatusNotFound, "video not found", "NOT_FOUND")
			return
		}

		rec := analysis.Analyze(video.Filename, video.Duration).Recommendations
		applied, err := s.ApplyRecommendations(rec)
		if err != nil {
			writeEditorError(w, err)
			return
		}

		WriteJSON(w, http.StatusOK, ApplyRecommendationsResponse{
			Applied:         applied,
			Recommendations: rec,
			Session:         s.View(),
		})
	}
}

func lookupSession(w http.ResponseWriter, r *http.Request, cfg ServerConfig) (*session.Session, bool) {
	id := chi.URLParam(r, "id")
	if id == "" {
		WriteError(w, http.StatusBadRequest, "session id required", "BAD_REQUEST")
		return nil, false
	}

	s, err := cfg.Sessions.Get(id)
	if err != nil {
		WriteError(w, http.StatusNotFound, "session not found", "NOT_FOUND")
		return nil, false
	}
	return s, true
}

func writeMutation(w http.ResponseWriter, s *session.Session, m editor.Mutation, err error) {
	if err != nil {
		writeEditorError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, MutationResponse{
		Applied: m.Applied,
		Clamped: m.Clamped,
		Session: s.View(),
	})
}

// writeEditorError maps the editor's sentinel errors onto HTTP
// statuses. Not-ready and failed-media are conflicts with the
// session's current lifecycle state, not bad requests.
func writeEditorError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, editor.ErrNotReady):
		WriteError(w, http.StatusConflict, err.Error(), "NOT_READY")
	case errors.Is(err, editor.ErrMediaFailed):
		WriteError(w, http.StatusConflict, err.Error(), "MEDIA_FAILED")
	case errors.Is(err, editor.ErrInvalidFilter):
		WriteError(w, http.StatusBadRequest, err.Error(), "INVALID_FILTER")
	case errors.Is(err, editor.ErrInvalidMetadata):
		WriteError(w, http.StatusBadRequest, err.Error(), "INVALID_METADATA")
	case errors.Is(err, session.ErrNoSession):
		WriteError(w, http.StatusNotFound, err.Error(), "NOT_FOUND")
	default:
		WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
	}
}
