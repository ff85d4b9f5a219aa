package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/videocraft/videocraft-agent/internal/analysis"
	"github.com/videocraft/videocraft-agent/internal/library"
)

// maxMultipartMemory bounds how much of an upload is held in memory
// before spilling to a temp file.
const maxMultipartMemory = 32 << 20

func uploadVideoHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid multipart request", "BAD_REQUEST")
			return
		}
		defer r.MultipartForm.RemoveAll()

		file, header, err := r.FormFile("file")
		if err != nil {
			WriteError(w, http.StatusBadRequest, "file field is required", "BAD_REQUEST")
			return
		}
		defer file.Close()

		in := library.UploadInput{
			Filename: header.Filename,
			Content:  file,
			MaxBytes: cfg.MaxUploadBytes,
		}

		video, err := cfg.Library.SaveUpload(r.Context(), in)
		if err != nil {
			switch {
			case errors.Is(err, library.ErrUnsupportedType):
				WriteError(w, http.StatusUnsupportedMediaType, err.Error(), "UNSUPPORTED_TYPE")
			case errors.Is(err, library.ErrTooLarge):
				WriteError(w, http.StatusRequestEntityTooLarge, err.Error(), "TOO_LARGE")
			default:
				cfg.Logger.Error("upload failed", "error", err, "filename", header.Filename)
				WriteError(w, http.StatusInternalServerError, "failed to store upload", "INTERNAL_ERROR")
			}
			return
		}

		WriteJSON(w, http.StatusCreated, VideoToResponse(video))
	}
}

func listVideosHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		videos, err := cfg.Library.ListVideos(r.Context())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to list videos", "INTERNAL_ERROR")
			return
		}

		resp := VideosResponse{Videos: make([]VideoResponse, len(videos))}
		for i, v := range videos {
			resp.Videos[i] = VideoToResponse(v)
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func getVideoHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		video, ok := lookupVideo(w, r, cfg)
		if !ok {
			return
		}
		WriteJSON(w, http.StatusOK, VideoToResponse(video))
	}
}

func deleteVideoHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		video, ok := lookupVideo(w, r, cfg)
		if !ok {
			return
		}

		if err := cfg.Library.DeleteVideo(r.Context(), video.ID); err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// videoMetadataHandler records the duration and dimensions the SPA
// reads off its media element once metadata loads. Editing cannot
// start until this has happened for the video.
func videoMetadataHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		video, ok := lookupVideo(w, r, cfg)
		if !ok {
			return
		}

		var req VideoMetadataRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		updated, err := cfg.Library.SetVideoMetadata(r.Context(), video.ID, req.Duration, req.Width, req.Height)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}

		WriteJSON(w, http.StatusOK, VideoToResponse(updated))
	}
}

func streamVideoHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		video, ok := lookupVideo(w, r, cfg)
		if !ok {
			return
		}

		if err := cfg.Playback.ServeVideo(w, r, video.StoredPath, video.ContentType); err != nil {
			cfg.Logger.Error("stream error", "error", err, "video_id", video.ID)
		}
	}
}

// analyzeVideoHandler runs the simulated AI analysis. Results are
// deterministic per video, so repeated calls return the same payload.
func analyzeVideoHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		video, ok := lookupVideo(w, r, cfg)
		if !ok {
			return
		}

		if video.Duration <= 0 {
			WriteError(w, http.StatusConflict, "video metadata not reported yet", "NOT_READY")
			return
		}

		result := analysis.Analyze(video.Filename, video.Duration)
		WriteJSON(w, http.StatusOK, result)
	}
}

func lookupVideo(w http.ResponseWriter, r *http.Request, cfg ServerConfig) (*library.Video, bool) {
	id := chi.URLParam(r, "id")
	if id == "" {
		WriteError(w, http.StatusBadRequest, "video id required", "BAD_REQUEST")
		return nil, false
	}

	video, err := cfg.Library.GetVideo(r.Context(), id)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
		return nil, false
	}
	if video == nil {
		WriteError(w, http.StatusNotFound, "video not found", "NOT_FOUND")
		return nil, false
	}
	return video, true
}
