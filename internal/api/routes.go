package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

func NewRouter(cfg ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "Range"},
		ExposedHeaders: []string{"X-Request-ID", "Content-Range", "Accept-Ranges"},
		MaxAge:         300,
	}))

	r.Get("/health", healthHandler(cfg))

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.Repository, cfg.Logger))

		r.Get("/status", statusHandler(cfg))

		r.Post("/videos", uploadVideoHandler(cfg))
		r.Get("/videos", listVideosHandler(cfg))
		r.Get("/videos/{id}", getVideoHandler(cfg))
		r.Delete("/videos/{id}", deleteVideoHandler(cfg))
		r.Put("/videos/{id}/metadata", videoMetadataHandler(cfg))
		r.Get("/videos/{id}/stream", streamVideoHandler(cfg))
		r.Post("/videos/{id}/analyze", analyzeVideoHandler(cfg))

		r.Post("/sessions", openSessionHandler(cfg))
		r.Get("/sessions/{id}", getSessionHandler(cfg))
		r.Delete("/sessions/{id}", closeSessionHandler(cfg))
		r.Put("/sessions/{id}/trim", trimHandler(cfg))
		r.Post("/sessions/{id}/cuts", addCutHandler(cfg))
		r.Delete("/sessions/{id}/cuts", removeCutsHandler(cfg))
		r.Post("/sessions/{id}/filters", addFilterHandler(cfg))
		r.Delete("/sessions/{id}/filters/{filterID}", removeFilterHandler(cfg))
		r.Post("/sessions/{id}/seek", seekHandler(cfg))
		r.Post("/sessions/{id}/playing", playingHandler(cfg))
		r.Post("/sessions/{id}/tick", tickHandler(cfg))
		r.Post("/sessions/{id}/media-error", mediaErrorHandler(cfg))
		r.Post("/sessions/{id}/recommendations", applyRecommendationsHandler(cfg))

		r.Post("/projects", saveProjectHandler(cfg))
		r.Get("/projects", listProjectsHandler(cfg))
		r.Get("/projects/{id}", getProjectHandler(cfg))
		r.Put("/projects/{id}", updateProjectHandler(cfg))
		r.Delete("/projects/{id}", deleteProjectHandler(cfg))
		r.Post("/projects/{id}/load", loadProjectHandler(cfg))

		r.Post("/export", exportHandler(cfg))
	})

	return r
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uptime := int64(time.Since(cfg.StartTime).Seconds())
		WriteJSON(w, http.StatusOK, HealthResponse{
			Status:   "ok",
			Version:  cfg.Version,
			UptimeS:  uptime,
			DeviceID: cfg.DeviceID,
		})
	}
}

func statusHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		videosCount, _ := cfg.Library.CountVideos(ctx)
		projects, _ := cfg.Projects.List(ctx)

		resp := StatusResponse{
			State:         "idle",
			VideosCount:   videosCount,
			ProjectsCount: len(projects),
		}

		if s := cfg.Sessions.Current(); s != nil {
			resp.State = "editing"
			resp.ActiveSession = &SessionInfo{
				ID:        s.ID,
				VideoID:   s.VideoID,
				CreatedAt: s.CreatedAt.Format(time.RFC3339),
			}
		}

		WriteJSON(w, http.StatusOK, resp)
	}
}
