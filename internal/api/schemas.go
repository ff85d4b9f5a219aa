package api

import (
	"time"

	"github.com/videocraft/videocraft-agent/internal/analysis"
	"github.com/videocraft/videocraft-agent/internal/editor"
	"github.com/videocraft/videocraft-agent/internal/library"
	"github.com/videocraft/videocraft-agent/internal/project"
	"github.com/videocraft/videocraft-agent/internal/session"
)

type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	UptimeS  int64  `json:"uptime_s"`
	DeviceID string `json:"device_id"`
}

type StatusResponse struct {
	State         string       `json:"state"`
	VideosCount   int          `json:"videos_count"`
	ProjectsCount int          `json:"projects_count"`
	ActiveSession *SessionInfo `json:"active_session,omitempty"`
}

type SessionInfo struct {
	ID        string `json:"id"`
	VideoID   string `json:"video_id"`
	CreatedAt string `json:"created_at"`
}

type VideoResponse struct {
	ID          string  `json:"id"`
	Filename    string  `json:"filename"`
	ContentType string  `json:"content_type"`
	Size        int64   `json:"size"`
	Duration    float64 `json:"duration"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	CreatedAt   string  `json:"created_at"`
}

type VideosResponse struct {
	Videos []VideoResponse `json:"videos"`
}

type VideoMetadataRequest struct {
	Duration float64 `json:"duration"`
	Width    int     `json:"width"`
	Height   int     `json:"height"`
}

type OpenSessionRequest struct {
	VideoID string `json:"video_id"`
}

// SessionResponse wraps the session view; mutation endpoints add the
// applied/clamped outcome so silent clamping is visible to the client.
type SessionResponse struct {
	Session session.View `json:"session"`
}

type MutationResponse struct {
	Applied bool         `json:"applied"`
	Clamped bool         `json:"clamped"`
	Session session.View `json:"session"`
}

type TrimRequest struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

type CutRequest struct {
	Time float64 `json:"time"`
}

type FilterRequest struct {
	Type  string  `json:"type"`
	Value float64 `json:"value"`
}

type SeekRequest struct {
	Time float64 `json:"time"`
}

type PlayingRequest struct {
	Playing bool `json:"playing"`
}

type TickRequest struct {
	Time float64 `json:"time"`
}

type TickResponse struct {
	Paused      bool                   `json:"paused"`
	Skipped     bool                   `json:"skipped"`
	SkippedTo   float64                `json:"skipped_to,omitempty"`
	Synced      bool                   `json:"synced"`
	CurrentTime float64                `json:"current_time"`
	Playing     bool                   `json:"playing"`
	Commands    []session.MediaCommand `json:"commands"`
}

type ApplyRecommendationsResponse struct {
	Applied         int                      `json:"applied"`
	Recommendations analysis.Recommendations `json:"recommendations"`
	Session         session.View             `json:"session"`
}

type SaveProjectRequest struct {
	Name      string `json:"name"`
	SessionID string `json:"session_id"`
}

type ProjectResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	VideoID   string          `json:"video_id"`
	State     editor.Snapshot `json:"state"`
	CreatedAt string          `json:"created_at"`
	UpdatedAt string          `json:"updated_at"`
}

type ProjectsResponse struct {
	Projects []ProjectResponse `json:"projects"`
}

type ExportRequest struct {
	SessionID   string  `json:"session_id"`
	Format      string  `json:"format"` // edl | json | report
	ProjectName string  `json:"project_name,omitempty"`
	FrameRate   float64 `json:"frame_rate,omitempty"`
	OutputDir   string  `json:"output_dir,omitempty"`
}

type ExportResponse struct {
	Status     string `json:"status"`
	Format     string `json:"format"`
	OutputPath string `json:"output_path,omitempty"`
	Content    string `json:"content,omitempty"`
	ClipCount  int    `json:"clip_count,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func VideoToResponse(v *library.Video) VideoResponse {
	return VideoResponse{
		ID:          v.ID,
		Filename:    v.Filename,
		ContentType: v.ContentType,
		Size:        v.Size,
		Duration:    v.Duration,
		Width:       v.Width,
		Height:      v.Height,
		CreatedAt:   v.CreatedAt.Format(time.RFC3339),
	}
}

func ProjectToResponse(p *project.Project) ProjectResponse {
	return ProjectResponse{
		ID:        p.ID,
		Name:      p.Name,
		VideoID:   p.VideoID,
		State:     p.State,
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
		UpdatedAt: p.UpdatedAt.Format(time.RFC3339),
	}
}
