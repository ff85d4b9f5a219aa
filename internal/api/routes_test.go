package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/videocraft/videocraft-agent/internal/library"
	"github.com/videocraft/videocraft-agent/internal/playback"
	"github.com/videocraft/videocraft-agent/internal/project"
	"github.com/videocraft/videocraft-agent/internal/session"
)

const testToken = "test-token-12345"

func testConfig(t *testing.T) ServerConfig {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	lib := &fakeLibrary{videos: map[string]*library.Video{}}
	return ServerConfig{
		Port:           0,
		CORSOrigins:    []string{"http://localhost:5173"},
		MaxUploadBytes: 1 << 20,
		Library:        lib,
		Repository:     &fakeRepo{library: lib, token: testToken},
		Projects:       &fakeProjects{projects: map[string]*project.Project{}},
		Sessions:       session.NewRegistry(logger),
		Playback:       playback.NewServer(logger),
		Logger:         logger,
		StartTime:      time.Now(),
		DeviceID:       "dev-test",
		Version:        "0.1.0",
	}
}

func seedVideo(cfg ServerConfig, id string, duration float64) *library.Video {
	v := &library.Video{
		ID:          id,
		Filename:    id + ".mp4",
		StoredPath:  "/tmp/" + id + ".mp4",
		ContentType: "video/mp4",
		Size:        1024,
		Duration:    duration,
		Width:       1920,
		Height:      1080,
		CreatedAt:   time.Now().UTC(),
	}
	cfg.Library.(*fakeLibrary).videos[id] = v
	return v
}

func doRequest(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Authorization", "Bearer "+testToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decodeJSONBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
	return body
}

func TestHealthHandler_NoAuth(t *testing.T) {
	router := NewRouter(testConfig(t))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	body := decodeJSONBody(t, rr)
	if body["status"] != "ok" {
		t.Errorf("status field = %v", body["status"])
	}
	if body["device_id"] != "dev-test" {
		t.Errorf("device_id = %v", body["device_id"])
	}
}

func TestStatusHandler(t *testing.T) {
	cfg := testConfig(t)
	seedVideo(cfg, "v1", 120)
	router := NewRouter(cfg)

	rr := doRequest(t, router, http.MethodGet, "/status", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}

	body := decodeJSONBody(t, rr)
	if body["state"] != "idle" {
		t.Errorf("state = %v, want idle", body["state"])
	}
	if body["videos_count"] != float64(1) {
		t.Errorf("videos_count = %v, want 1", body["videos_count"])
	}

	// Opening a session flips the state to editing.
	rr = doRequest(t, router, http.MethodPost, "/sessions", OpenSessionRequest{VideoID: "v1"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("open session status = %d: %s", rr.Code, rr.Body.String())
	}

	rr = doRequest(t, router, http.MethodGet, "/status", nil)
	body = decodeJSONBody(t, rr)
	if body["state"] != "editing" {
		t.Errorf("state = %v, want editing", body["state"])
	}
	if body["active_session"] == nil {
		t.Error("active_session missing")
	}
}

func TestOpenSession_RequiresMetadata(t *testing.T) {
	cfg := testConfig(t)
	seedVideo(cfg, "v1", 0)
	router := NewRouter(cfg)

	rr := doRequest(t, router, http.MethodPost, "/sessions", OpenSessionRequest{VideoID: "v1"})
	if rr.Code != http.StatusConflict {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusConflict)
	}
	body := decodeJSONBody(t, rr)
	if body["code"] != "NOT_READY" {
		t.Errorf("code = %v, want NOT_READY", body["code"])
	}
}

func TestOpenSession_UnknownVideo(t *testing.T) {
	router := NewRouter(testConfig(t))

	rr := doRequest(t, router, http.MethodPost, "/sessions", OpenSessionRequest{VideoID: "nope"})
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func openTestSession(t *testing.T, cfg ServerConfig, router http.Handler, duration float64) string {
	t.Helper()
	seedVideo(cfg, "v1", duration)
	rr := doRequest(t, router, http.MethodPost, "/sessions", OpenSessionRequest{VideoID: "v1"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("open session status = %d: %s", rr.Code, rr.Body.String())
	}
	var resp SessionResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	return resp.Session.ID
}

func TestTrimEndpoint_ClampReported(t *testing.T) {
	cfg := testConfig(t)
	router := NewRouter(cfg)
	id := openTestSession(t, cfg, router, 120)

	rr := doRequest(t, router, http.MethodPut, "/sessions/"+id+"/trim", TrimRequest{Start: -5, End: 200})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}

	var resp MutationResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Applied || !resp.Clamped {
		t.Errorf("applied = %v, clamped = %v, want both true", resp.Applied, resp.Clamped)
	}
	if resp.Session.TrimStart != 0 || resp.Session.TrimEnd != 120 {
		t.Errorf("trim = [%v, %v], want [0, 120]", resp.Session.TrimStart, resp.Session.TrimEnd)
	}
}

func TestCutEndpoints(t *testing.T) {
	cfg := testConfig(t)
	router := NewRouter(cfg)
	id := openTestSession(t, cfg, router, 120)

	for _, tm := range []float64{30, 60, 90} {
		rr := doRequest(t, router, http.MethodPost, "/sessions/"+id+"/cuts", CutRequest{Time: tm})
		if rr.Code != http.StatusOK {
			t.Fatalf("add cut status = %d: %s", rr.Code, rr.Body.String())
		}
	}

	// Remove one cut by time.
	rr := doRequest(t, router, http.MethodDelete, "/sessions/"+id+"/cuts?time=60", nil)
	var resp MutationResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Session.Cuts) != 2 {
		t.Fatalf("cuts = %v, want 2 remaining", resp.Session.Cuts)
	}

	// No time parameter clears the rest.
	rr = doRequest(t, router, http.MethodDelete, "/sessions/"+id+"/cuts", nil)
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Session.Cuts) != 0 {
		t.Errorf("cuts = %v, want empty", resp.Session.Cuts)
	}
}

func TestFilterEndpoints(t *testing.T) {
	cfg := testConfig(t)
	router := NewRouter(cfg)
	id := openTestSession(t, cfg, router, 120)

	rr := doRequest(t, router, http.MethodPost, "/sessions/"+id+"/filters", FilterRequest{Type: "brightness", Value: 120})
	if rr.Code != http.StatusOK {
		t.Fatalf("add filter status = %d: %s", rr.Code, rr.Body.String())
	}
	var resp MutationResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Session.Filters) != 1 {
		t.Fatalf("filters = %v", resp.Session.Filters)
	}
	if resp.Session.FilterChain != "brightness(120%)" {
		t.Errorf("filter chain = %q", resp.Session.FilterChain)
	}

	filterID := resp.Session.Filters[0].ID
	rr = doRequest(t, router, http.MethodDelete, "/sessions/"+id+"/filters/"+filterID, nil)
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Session.Filters) != 0 {
		t.Errorf("filters = %v, want empty", resp.Session.Filters)
	}

	rr = doRequest(t, router, http.MethodPost, "/sessions/"+id+"/filters", FilterRequest{Type: "vignette", Value: 1})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("unknown filter type status = %d, want 400", rr.Code)
	}
}

func TestTickEndpoint_TrimEndPause(t *testing.T) {
	cfg := testConfig(t)
	router := NewRouter(cfg)
	id := openTestSession(t, cfg, router, 120)

	doRequest(t, router, http.MethodPut, "/sessions/"+id+"/trim", TrimRequest{Start: 10, End: 50})
	doRequest(t, router, http.MethodPost, "/sessions/"+id+"/playing", PlayingRequest{Playing: true})

	rr := doRequest(t, router, http.MethodPost, "/sessions/"+id+"/tick", TickRequest{Time: 55})
	if rr.Code != http.StatusOK {
		t.Fatalf("tick status = %d: %s", rr.Code, rr.Body.String())
	}

	var resp TickResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Paused {
		t.Error("tick past trim end should pause")
	}
	if resp.Playing {
		t.Error("playing should be false after boundary pause")
	}
	if resp.CurrentTime != 50 {
		t.Errorf("current time = %v, want 50", resp.CurrentTime)
	}

	foundPause := false
	for _, cmd := range resp.Commands {
		if cmd.Op == "pause" {
			foundPause = true
		}
	}
	if !foundPause {
		t.Errorf("commands = %v, want a pause", resp.Commands)
	}
}

func TestMediaErrorEndpoint(t *testing.T) {
	cfg := testConfig(t)
	router := NewRouter(cfg)
	id := openTestSession(t, cfg, router, 120)

	rr := doRequest(t, router, http.MethodPost, "/sessions/"+id+"/media-error", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}

	rr = doRequest(t, router, http.MethodPut, "/sessions/"+id+"/trim", TrimRequest{Start: 0, End: 60})
	if rr.Code != http.StatusConflict {
		t.Fatalf("trim after media error status = %d, want 409", rr.Code)
	}
	body := decodeJSONBody(t, rr)
	if body["code"] != "MEDIA_FAILED" {
		t.Errorf("code = %v, want MEDIA_FAILED", body["code"])
	}
}

func TestAnalyzeEndpoint_Deterministic(t *testing.T) {
	cfg := testConfig(t)
	seedVideo(cfg, "v1", 120)
	router := NewRouter(cfg)

	first := doRequest(t, router, http.MethodPost, "/videos/v1/analyze", nil)
	if first.Code != http.StatusOK {
		t.Fatalf("analyze status = %d: %s", first.Code, first.Body.String())
	}
	second := doRequest(t, router, http.MethodPost, "/videos/v1/analyze", nil)

	if first.Body.String() != second.Body.String() {
		t.Error("analysis should be deterministic per video")
	}
}

func TestApplyRecommendationsEndpoint(t *testing.T) {
	cfg := testConfig(t)
	router := NewRouter(cfg)
	id := openTestSession(t, cfg, router, 120)

	rr := doRequest(t, router, http.MethodPost, "/sessions/"+id+"/recommendations", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}

	var resp ApplyRecommendationsResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Applied == 0 {
		t.Error("expected at least one applied recommendation")
	}
	if len(resp.Session.Cuts) == 0 && len(resp.Session.Filters) == 0 {
		t.Error("session should carry applied recommendations")
	}
}

func TestProjectLifecycle(t *testing.T) {
	cfg := testConfig(t)
	router := NewRouter(cfg)
	id := openTestSession(t, cfg, router, 120)

	doRequest(t, router, http.MethodPut, "/sessions/"+id+"/trim", TrimRequest{Start: 10, End: 100})
	doRequest(t, router, http.MethodPost, "/sessions/"+id+"/cuts", CutRequest{Time: 50})

	rr := doRequest(t, router, http.MethodPost, "/projects", SaveProjectRequest{Name: "my edit", SessionID: id})
	if rr.Code != http.StatusCreated {
		t.Fatalf("save project status = %d: %s", rr.Code, rr.Body.String())
	}
	var saved ProjectResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &saved); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if saved.State.TrimStart != 10 || saved.State.TrimEnd != 100 {
		t.Errorf("saved trim = [%v, %v]", saved.State.TrimStart, saved.State.TrimEnd)
	}
	if len(saved.State.Cuts) != 1 {
		t.Errorf("saved cuts = %v", saved.State.Cuts)
	}

	// Loading replaces the session and rehydrates the state.
	rr = doRequest(t, router, http.MethodPost, "/projects/"+saved.ID+"/load", nil)
	if rr.Code != http.StatusCreated {
		t.Fatalf("load project status = %d: %s", rr.Code, rr.Body.String())
	}
	var loaded SessionResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &loaded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if loaded.Session.ID == id {
		t.Error("load should open a fresh session")
	}
	if loaded.Session.TrimStart != 10 || loaded.Session.TrimEnd != 100 {
		t.Errorf("loaded trim = [%v, %v]", loaded.Session.TrimStart, loaded.Session.TrimEnd)
	}
	if len(loaded.Session.Cuts) != 1 {
		t.Errorf("loaded cuts = %v", loaded.Session.Cuts)
	}

	rr = doRequest(t, router, http.MethodDelete, "/projects/"+saved.ID, nil)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete project status = %d", rr.Code)
	}
	rr = doRequest(t, router, http.MethodGet, "/projects/"+saved.ID, nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("get deleted project status = %d", rr.Code)
	}
}

func TestExportEndpoint_InlineJSON(t *testing.T) {
	cfg := testConfig(t)
	router := NewRouter(cfg)
	id := openTestSession(t, cfg, router, 120)

	doRequest(t, router, http.MethodPost, "/sessions/"+id+"/cuts", CutRequest{Time: 60})

	rr := doRequest(t, router, http.MethodPost, "/export", ExportRequest{
		SessionID: id,
		Format:    "json",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("export status = %d: %s", rr.Code, rr.Body.String())
	}

	var resp ExportResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Content == "" {
		t.Fatal("inline export should include content")
	}
	if resp.OutputPath != "" {
		t.Error("inline export should not write a file")
	}

	var doc map[string]interface{}
	if err := json.Unmarshal([]byte(resp.Content), &doc); err != nil {
		t.Fatalf("export content is not JSON: %v", err)
	}
	if doc["project_name"] != "videocraft_export" {
		t.Errorf("project_name = %v", doc["project_name"])
	}
}

func TestExportEndpoint_EDLToDisk(t *testing.T) {
	cfg := testConfig(t)
	router := NewRouter(cfg)
	id := openTestSession(t, cfg, router, 120)

	dir := t.TempDir()
	rr := doRequest(t, router, http.MethodPost, "/export", ExportRequest{
		SessionID:   id,
		Format:      "edl",
		ProjectName: "rough cut",
		OutputDir:   dir,
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("export status = %d: %s", rr.Code, rr.Body.String())
	}

	var resp ExportResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.OutputPath == "" {
		t.Fatal("disk export should return output path")
	}
	if resp.ClipCount != 1 {
		t.Errorf("clip count = %d, want 1", resp.ClipCount)
	}
}

func TestExportEndpoint_BadFormat(t *testing.T) {
	cfg := testConfig(t)
	router := NewRouter(cfg)
	id := openTestSession(t, cfg, router, 120)

	rr := doRequest(t, router, http.MethodPost, "/export", ExportRequest{SessionID: id, Format: "xml"})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

// fakeLibrary is an in-memory LibraryService for handler tests.
type fakeLibrary struct {
	videos map[string]*library.Video
}

func (f *fakeLibrary) SaveUpload(ctx context.Context, in library.UploadInput) (*library.Video, error) {
	v := &library.Video{ID: "uploaded", Filename: in.Filename, CreatedAt: time.Now().UTC()}
	f.videos[v.ID] = v
	return v, nil
}

func (f *fakeLibrary) GetVideo(ctx context.Context, id string) (*library.Video, error) {
	return f.videos[id], nil
}

func (f *fakeLibrary) ListVideos(ctx context.Context) ([]*library.Video, error) {
	out := make([]*library.Video, 0, len(f.videos))
	for _, v := range f.videos {
		out = append(out, v)
	}
	return out, nil
}

func (f *fakeLibrary) DeleteVideo(ctx context.Context, id string) error {
	delete(f.videos, id)
	return nil
}

func (f *fakeLibrary) SetVideoMetadata(ctx context.Context, id string, duration float64, width, height int) (*library.Video, error) {
	v := f.videos[id]
	if v != nil {
		v.Duration = duration
		v.Width = width
		v.Height = height
	}
	return v, nil
}

func (f *fakeLibrary) CountVideos(ctx context.Context) (int, error) {
	return len(f.videos), nil
}

// fakeRepo backs the auth middleware with a fixed token.
type fakeRepo struct {
	library *fakeLibrary
	token   string
}

func (f *fakeRepo) CreateVideo(ctx context.Context, v *library.Video) error { return nil }
func (f *fakeRepo) GetVideo(ctx context.Context, id string) (*library.Video, error) {
	return f.library.videos[id], nil
}
func (f *fakeRepo) ListVideos(ctx context.Context) ([]*library.Video, error) { return nil, nil }
func (f *fakeRepo) DeleteVideo(ctx context.Context, id string) error         { return nil }
func (f *fakeRepo) UpdateVideoMetadata(ctx context.Context, id string, duration float64, width, height int) error {
	return nil
}
func (f *fakeRepo) CountVideos(ctx context.Context) (int, error) { return 0, nil }
func (f *fakeRepo) GetConfig(ctx context.Context, key string) (string, error) {
	if key == "auth_token" {
		return f.token, nil
	}
	return "", nil
}
func (f *fakeRepo) SetConfig(ctx context.Context, key, value string) error { return nil }

// fakeProjects is an in-memory project.Repository.
type fakeProjects struct {
	projects map[string]*project.Project
}

func (f *fakeProjects) Create(ctx context.Context, p *project.Project) error {
	cp := *p
	f.projects[p.ID] = &cp
	return nil
}

func (f *fakeProjects) Get(ctx context.Context, id string) (*project.Project, error) {
	p, ok := f.projects[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProjects) List(ctx context.Context) ([]*project.Project, error) {
	out := make([]*project.Project, 0, len(f.projects))
	for _, p := range f.projects {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeProjects) Update(ctx context.Context, p *project.Project) error {
	cp := *p
	f.projects[p.ID] = &cp
	return nil
}

func (f *fakeProjects) Delete(ctx context.Context, id string) error {
	delete(f.projects, id)
	return nil
}
