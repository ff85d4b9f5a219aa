package api

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/videocraft/videocraft-agent/internal/analysis"
	"github.com/videocraft/videocraft-agent/internal/export"
)

// exportHandler renders the active edit into a shareable artifact.
// With output_dir set the artifact is written to disk and its path
// returned; otherwise the content comes back inline in the response.
func exportHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ExportRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		format := strings.ToLower(req.Format)
		switch format {
		case export.FormatEDL, export.FormatJSON, export.FormatReport:
		default:
			WriteError(w, http.StatusBadRequest, "format must be edl, json or report", "BAD_REQUEST")
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

		video, err := cfg.Library.GetVideo(r.Context(), s.VideoID)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}
		if video == nil {
			WriteError(w, http.StatusNotFound, "video not found", "NOT_FOUND")
			return
		}

		if req.OutputDir != "" {
			if err := export.ValidateOutputDir(req.OutputDir); err != nil {
				WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
				return
			}
		}

		projectName := export.SanitizeName(req.ProjectName, 120)
		if projectName == "" {
			projectName = "videocraft_export"
		}

		view := s.View()
		doc := export.Document{
			ProjectName: projectName,
			Video: export.VideoInfo{
				ID:          video.ID,
				Filename:    video.Filename,
				MediaPath:   video.StoredPath,
				Duration:    video.Duration,
				Width:       video.Width,
				Height:      video.Height,
				ContentType: video.ContentType,
			},
			State:             s.Snapshot(),
			Segments:          view.Segments,
			FilterChain:       view.FilterChain,
			TrimmedDuration:   view.TrimmedDuration,
			EffectiveDuration: view.EffectiveDuration,
			Analysis:          analysis.Analyze(video.Filename, video.Duration),
		}

		var content []byte
		var ext string
		clipCount := 0

		switch format {
		case export.FormatEDL:
			base := strings.TrimSuffix(video.Filename, filepath.Ext(video.Filename))
			clips := export.ClipsFromSegments(doc.Segments, video.StoredPath, base)
			if len(clips) == 0 {
				WriteError(w, http.StatusUnprocessableEntity, "edit has no playable segments", "NO_SEGMENTS")
				return
			}
			frameRate := req.FrameRate
			if frameRate <= 0 {
				frameRate = 30.0
			}
			content = []byte(export.GenerateEDL(clips, projectName, frameRate))
			ext = ".edl"
			clipCount = len(clips)

		case export.FormatJSON:
			content, err = export.GenerateJSON(doc)
			if err != nil {
				WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
				return
			}
			ext = ".json"

		case export.FormatReport:
			content = []byte(export.GenerateReport(doc))
			ext = ".txt"
		}

		resp := ExportResponse{
			Status:    "ok",
			Format:    format,
			ClipCount: clipCount,
		}

		if req.OutputDir != "" {
			outputPath := filepath.Join(req.OutputDir, projectName+ext)
			if err := os.WriteFile(outputPath, content, 0o644); err != nil {
				WriteError(w, http.StatusInternalServerError, "failed to write export file", "INTERNAL_ERROR")
				return
			}
			resp.OutputPath = outputPath
		} else {
			resp.Content = string(content)
		}

		WriteJSON(w, http.StatusOK, resp)
	}
}
