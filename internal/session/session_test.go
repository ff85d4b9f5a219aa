package session

import (
	"log/slog"
	"os"
	"reflect"
	"testing"

	"github.com/videocraft/videocraft-agent/internal/analysis"
	"github.com/videocraft/videocraft-agent/internal/editor"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func openTestSession(t *testing.T, duration float64) (*Registry, *Session) {
	t.Helper()
	reg := NewRegistry(testLogger())
	s, err := reg.Open("video-1", editor.Metadata{Duration: duration, Width: 1920, Height: 1080})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return reg, s
}

func TestRegistrySingleSession(t *testing.T) {
	reg, first := openTestSession(t, 120)

	second, err := reg.Open("video-2", editor.Metadata{Duration: 60})
	if err != nil {
		t.Fatalf("Open second: %v", err)
	}

	if _, err := reg.Get(first.ID); err != ErrNoSession {
		t.Errorf("first session should be replaced, err = %v", err)
	}
	got, err := reg.Get(second.ID)
	if err != nil || got != second {
		t.Errorf("Get(second) = %v, %v", got, err)
	}
	if reg.Current() != second {
		t.Errorf("Current should be the latest session")
	}

	if err := reg.Close(second.ID); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if reg.Current() != nil {
		t.Errorf("Current should be nil after close")
	}
	if err := reg.Close(second.ID); err != ErrNoSession {
		t.Errorf("double close err = %v, want ErrNoSession", err)
	}
}

func TestOpenRejectsInvalidMetadata(t *testing.T) {
	reg := NewRegistry(testLogger())
	if _, err := reg.Open("video-1", editor.Metadata{Duration: 0}); err == nil {
		t.Errorf("Open with zero duration should fail")
	}
}

func TestSessionMutationsAndView(t *testing.T) {
	_, s := openTestSession(t, 120)

	s.SetTrim(10, 110)
	s.AddCut(30)
	s.AddCut(60)
	s.AddFilter(editor.FilterDescriptor{ID: "f1", Type: editor.FilterSepia, Value: 40})

	v := s.View()
	if v.TrimStart != 10 || v.TrimEnd != 110 {
		t.Errorf("view trim = [%v,%v]", v.TrimStart, v.TrimEnd)
	}
	if !reflect.DeepEqual(v.Cuts, []float64{30, 60}) {
		t.Errorf("view cuts = %v", v.Cuts)
	}
	if v.FilterChain != "sepia(40%)" {
		t.Errorf("view chain = %q", v.FilterChain)
	}
	if v.EffectiveDuration != 100-2*editor.CutPenalty {
		t.Errorf("effective duration = %v", v.EffectiveDuration)
	}
	if len(v.Segments) != 3 {
		t.Errorf("segments = %v", v.Segments)
	}
}

func TestTickDrainsMediaCommands(t *testing.T) {
	_, s := openTestSession(t, 120)
	s.SetTrim(0, 60)
	s.AddFilter(editor.FilterDescriptor{ID: "f1", Type: editor.FilterBlur, Value: 2})

	// First tick carries the buffered filter updates.
	_, cmds, err := s.Tick(10)
	if err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if len(cmds) == 0 || cmds[len(cmds)-1].Op != "set_filter" || cmds[len(cmds)-1].Filter != "blur(2px)" {
		t.Errorf("commands = %+v", cmds)
	}

	// Past trim end: pause result plus a pause command.
	res, cmds, err := s.Tick(61)
	if err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if !res.Paused {
		t.Errorf("res = %+v, want paused", res)
	}
	if len(cmds) != 1 || cmds[0].Op != "pause" {
		t.Errorf("commands = %+v, want single pause", cmds)
	}

	// Commands drain; nothing is replayed.
	_, cmds, _ = s.Tick(10)
	if len(cmds) != 0 {
		t.Errorf("commands should be drained, got %+v", cmds)
	}
}

func TestSessionFailMedia(t *testing.T) {
	_, s := openTestSession(t, 120)
	s.FailMedia()

	if !s.Failed() {
		t.Errorf("session should be failed")
	}
	if _, _, err := s.Tick(5); err != editor.ErrMediaFailed {
		t.Errorf("Tick after failure err = %v, want ErrMediaFailed", err)
	}
	if _, err := s.SetTrim(0, 50); err != editor.ErrMediaFailed {
		t.Errorf("SetTrim after failure err = %v, want ErrMediaFailed", err)
	}
}

func TestApplyRecommendations(t *testing.T) {
	_, s := openTestSession(t, 120)
	s.AddCut(30) // collides with the first recommendation

	rec := analysis.Recommendations{
		Cuts: []analysis.CutRecommendation{
			{Time: 30.02, Reason: "Cut transition detected", Confidence: 0.8},
			{Time: 75, Reason: "Fade transition detected", Confidence: 0.7},
		},
		Filters: []analysis.FilterRecommendation{
			{Type: editor.FilterBrightness, Value: 115, Reason: "underexposed", Confidence: 0.8},
		},
	}

	applied, err := s.ApplyRecommendations(rec)
	if err != nil {
		t.Fatalf("ApplyRecommendations: %v", err)
	}
	// The colliding cut merges silently; one cut and one filter land.
	if applied != 2 {
		t.Errorf("applied = %d, want 2", applied)
	}

	v := s.View()
	if !reflect.DeepEqual(v.Cuts, []float64{30, 75}) {
		t.Errorf("cuts = %v", v.Cuts)
	}
	if len(v.Filters) != 1 || v.Filters[0].Type != editor.FilterBrightness {
		t.Errorf("filters = %+v", v.Filters)
	}
	if v.Filters[0].ID == "" {
		t.Errorf("recommendation filters must get generated ids")
	}
}

func TestRestoreSnapshot(t *testing.T) {
	reg := NewRegistry(testLogger())
	snap := editor.Snapshot{
		TrimStart: 5,
		TrimEnd:   110,
		Cuts:      []float64{30, 90},
		Filters:   []editor.FilterDescriptor{{ID: "f1", Type: editor.FilterContrast, Value: 110}},
	}

	s, err := reg.OpenFromSnapshot("video-1", editor.Metadata{Duration: 120}, snap)
	if err != nil {
		t.Fatalf("OpenFromSnapshot: %v", err)
	}

	got := s.Snapshot()
	if got.TrimStart != 5 || got.TrimEnd != 110 {
		t.Errorf("restored trim = [%v,%v]", got.TrimStart, got.TrimEnd)
	}
	if !reflect.DeepEqual(got.Cuts, snap.Cuts) || !reflect.DeepEqual(got.Filters, snap.Filters) {
		t.Errorf("restored snapshot = %+v", got)
	}
}
