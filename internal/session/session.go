// Package session owns the live editor for the currently loaded video.
// The editor core is single-writer by design, so the session serializes
// HTTP access around one controller, and the registry enforces the
// app-wide rule that only one video is being edited at a time: loading
// a new video replaces the previous session wholesale.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/videocraft/videocraft-agent/internal/analysis"
	"github.com/videocraft/videocraft-agent/internal/editor"
)

// MediaCommand is a playback directive for the browser's media
// element, produced by the preview's enforcement logic and drained by
// the client on its next poll.
type MediaCommand struct {
	Op     string  `json:"op"` // pause | seek | set_filter
	Time   float64 `json:"time,omitempty"`
	Filter string  `json:"filter,omitempty"`
}

// relayMedia implements editor.MediaElement by buffering commands for
// the remote media element instead of driving one in-process.
type relayMedia struct {
	commands []MediaCommand
}

func (m *relayMedia) Pause() {
	m.commands = append(m.commands, MediaCommand{Op: "pause"})
}

func (m *relayMedia) SeekTo(t float64) {
	m.commands = append(m.commands, MediaCommand{Op: "seek", Time: t})
}

func (m *relayMedia) SetFilter(chain string) {
	m.commands = append(m.commands, MediaCommand{Op: "set_filter", Filter: chain})
}

func (m *relayMedia) drain() []MediaCommand {
	out := m.commands
	m.commands = nil
	return out
}

// Session binds one video to one editor controller, timeline and
// preview. All methods are safe for concurrent use; internally they
// serialize onto the controller, which is the model's single writer.
type Session struct {
	ID        string
	VideoID   string
	CreatedAt time.Time

	mu       sync.Mutex
	ctrl     *editor.Controller
	timeline *editor.Timeline
	preview  *editor.Preview
	media    *relayMedia
}

func newSession(videoID string, meta editor.Metadata) (*Session, error) {
	ctrl := editor.NewController()
	if err := ctrl.LoadMetadata(meta); err != nil {
		return nil, err
	}
	media := &relayMedia{}
	s := &Session{
		ID:        uuid.NewString(),
		VideoID:   videoID,
		CreatedAt: time.Now().UTC(),
		ctrl:      ctrl,
		media:     media,
		timeline:  editor.NewTimeline(ctrl, editor.NewTimeMapper(meta.Duration, 0)),
		preview:   editor.NewPreview(ctrl, media),
	}
	return s, nil
}

// restore rehydrates a saved snapshot into the session.
func (s *Session) restore(snap editor.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, err := editor.FromSnapshot(snap, s.ctrl.Metadata().Duration)
	if err != nil {
		return err
	}
	if _, err := s.ctrl.SetTrim(state.TrimStart, state.TrimEnd); err != nil {
		return err
	}
	for _, c := range state.Cuts {
		if _, err := s.ctrl.AddCut(c); err != nil {
			return err
		}
	}
	for _, f := range state.Filters {
		if _, err := s.ctrl.AddFilter(f); err != nil {
			return err
		}
	}
	return nil
}

// View is a read-only picture of the session for API responses.
type View struct {
	ID                string                    `json:"id"`
	VideoID           string                    `json:"video_id"`
	Metadata          editor.Metadata           `json:"metadata"`
	TrimStart         float64                   `json:"trim_start"`
	TrimEnd           float64                   `json:"trim_end"`
	Cuts              []float64                 `json:"cuts"`
	Filters           []editor.FilterDescriptor `json:"filters"`
	FilterChain       string                    `json:"filter_chain"`
	Segments          []editor.Segment          `json:"segments"`
	CurrentTime       float64                   `json:"current_time"`
	Playing           bool                      `json:"playing"`
	TrimmedDuration   float64                   `json:"trimmed_duration"`
	EffectiveDuration float64                   `json:"effective_duration"`
}

// View snapshots the session state.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.ctrl.State()
	return View{
		ID:                s.ID,
		VideoID:           s.VideoID,
		Metadata:          s.ctrl.Metadata(),
		TrimStart:         st.TrimStart,
		TrimEnd:           st.TrimEnd,
		Cuts:              append([]float64(nil), st.Cuts...),
		Filters:           append([]editor.FilterDescriptor(nil), st.Filters...),
		FilterChain:       s.preview.Chain(),
		Segments:          st.Segments(),
		CurrentTime:       s.ctrl.CurrentTime(),
		Playing:           s.ctrl.Playing(),
		TrimmedDuration:   st.TrimmedDuration(),
		EffectiveDuration: st.EffectiveDuration(),
	}
}

// Snapshot returns the serializable edit state.
func (s *Session) Snapshot() editor.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl.State().Snapshot()
}

func (s *Session) SetTrim(start, end float64) (editor.Mutation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl.SetTrim(start, end)
}

func (s *Session) AddCut(t float64) (editor.Mutation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl.AddCut(t)
}

func (s *Session) RemoveCut(t float64) (editor.Mutation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl.RemoveCut(t)
}

func (s *Session) ClearCuts() (editor.Mutation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl.ClearCuts()
}

func (s *Session) AddFilter(f editor.FilterDescriptor) (editor.Mutation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl.AddFilter(f)
}

func (s *Session) RemoveFilter(id string) (editor.Mutation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl.RemoveFilter(id)
}

func (s *Session) Seek(t float64) (editor.Mutation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl.Seek(t)
}

func (s *Session) SetPlaying(playing bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl.SetPlaying(playing)
}

// Tick processes one playback time update from the client's media
// element and returns the enforcement result plus any buffered media
// commands (including filter-chain updates from earlier mutations).
func (s *Session) Tick(t float64) (editor.TickResult, []MediaCommand, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ctrl.Ready() {
		return editor.TickResult{}, nil, editor.ErrNotReady
	}
	if s.ctrl.Failed() {
		return editor.TickResult{}, nil, editor.ErrMediaFailed
	}
	res := s.preview.Tick(t)
	return res, s.media.drain(), nil
}

// FailMedia terminates the session after a client-reported media
// error.
func (s *Session) FailMedia() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctrl.FailMedia()
}

// Failed reports whether the session's media terminally failed.
func (s *Session) Failed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl.Failed()
}

// ApplyRecommendations feeds analysis output through the ordinary
// mutation API; the core cannot tell these writes from human edits.
// Cuts that merge into existing markers are skipped, not errors.
func (s *Session) ApplyRecommendations(rec analysis.Recommendations) (applied int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, cr := range rec.Cuts {
		mut, err := s.ctrl.AddCut(cr.Time)
		if err != nil {
			return applied, err
		}
		if mut.Applied {
			applied++
		}
	}
	for _, fr := range rec.Filters {
		mut, err := s.ctrl.AddFilter(editor.FilterDescriptor{
			ID:    uuid.NewString(),
			Type:  fr.Type,
			Value: fr.Value,
		})
		if err != nil {
			return applied, err
		}
		if mut.Applied {
			applied++
		}
	}
	return applied, nil
}
