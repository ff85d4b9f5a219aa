package editor

import "math"

// DragState enumerates the timeline's pointer interaction states.
type DragState int

const (
	DragIdle DragState = iota
	DragPlayhead
	DragTrimStart
	DragTrimEnd
)

func (d DragState) String() string {
	switch d {
	case DragPlayhead:
		return "dragging-playhead"
	case DragTrimStart:
		return "dragging-trim-start"
	case DragTrimEnd:
		return "dragging-trim-end"
	default:
		return "idle"
	}
}

// TimelineConfig tunes hit regions and tick rendering.
type TimelineConfig struct {
	// HandleWidth is the visual width of the trim handles in pixels.
	HandleWidth float64
	// HitSlop widens every hit region by this many pixels on each side
	// to ease targeting.
	HitSlop float64
	// CutTolerance is the pixel distance within which a double-click
	// removes an existing cut instead of adding a new one.
	CutTolerance float64
	// MarkerInterval is the tick spacing in seconds.
	MarkerInterval float64
}

// DefaultTimelineConfig mirrors the stock widget dimensions.
func DefaultTimelineConfig() TimelineConfig {
	return TimelineConfig{
		HandleWidth:    8,
		HitSlop:        4,
		CutTolerance:   6,
		MarkerInterval: DefaultMarkerInterval,
	}
}

// Timeline is the interaction model behind the scrub timeline widget:
// a four-state drag machine plus click/double-click handling, all in
// pixel space. The host UI feeds it pointer events; it renders nothing
// itself. During a drag the host must forward pointer-move and
// pointer-up events globally, not just those inside the widget bounds.
type Timeline struct {
	ctrl   *Controller
	mapper TimeMapper
	cfg    TimelineConfig

	drag  DragState
	dirty bool
}

// NewTimeline binds a timeline to a controller with the default config.
func NewTimeline(ctrl *Controller, mapper TimeMapper) *Timeline {
	tl := &Timeline{ctrl: ctrl, mapper: mapper, cfg: DefaultTimelineConfig()}
	ctrl.Subscribe(tl)
	return tl
}

// StateChanged implements Subscriber; it flags the widget for
// re-render.
func (tl *Timeline) StateChanged(*EditState) { tl.dirty = true }

// Dirty reports and clears the pending re-render flag.
func (tl *Timeline) Dirty() bool {
	d := tl.dirty
	tl.dirty = false
	return d
}

// Drag returns the current interaction state.
func (tl *Timeline) Drag() DragState { return tl.drag }

// Mapper returns the active pixel/time mapping.
func (tl *Timeline) Mapper() TimeMapper { return tl.mapper }

// SetViewportWidth re-derives the mapping after a layout change.
func (tl *Timeline) SetViewportWidth(w float64) {
	tl.mapper.ViewportWidth = w
	tl.dirty = true
}

// ZoomIn steps zoom up, keeping every time value fixed.
func (tl *Timeline) ZoomIn() {
	tl.mapper = tl.mapper.ZoomIn()
	tl.dirty = true
}

// ZoomOut steps zoom down, keeping every time value fixed.
func (tl *Timeline) ZoomOut() {
	tl.mapper = tl.mapper.ZoomOut()
	tl.dirty = true
}

func (tl *Timeline) hit(x, handleX float64) bool {
	r := tl.cfg.HandleWidth/2 + tl.cfg.HitSlop
	return math.Abs(x-handleX) <= r
}

// PointerDown hit-tests the handles and enters the matching drag
// state. The playhead wins over a coincident trim handle. A press on
// the timeline body stays Idle; plain clicks are reported separately
// through Click.
func (tl *Timeline) PointerDown(x float64) DragState {
	if !tl.ctrl.Ready() {
		return tl.drag
	}
	s := tl.ctrl.State()
	switch {
	case tl.hit(x, tl.mapper.TimeToPixel(tl.ctrl.CurrentTime())):
		tl.drag = DragPlayhead
	case tl.hit(x, tl.mapper.TimeToPixel(s.TrimStart)):
		tl.drag = DragTrimStart
	case tl.hit(x, tl.mapper.TimeToPixel(s.TrimEnd)):
		tl.drag = DragTrimEnd
	}
	return tl.drag
}

// PointerMove applies the drag in progress: the playhead seeks, a trim
// handle moves with the opposite bound held fixed. No-op when idle.
func (tl *Timeline) PointerMove(x float64) {
	if tl.drag == DragIdle {
		return
	}
	t := tl.mapper.PixelToTime(x)
	s := tl.ctrl.State()
	switch tl.drag {
	case DragPlayhead:
		tl.ctrl.Seek(t)
	case DragTrimStart:
		tl.ctrl.SetTrim(t, s.TrimEnd)
	case DragTrimEnd:
		tl.ctrl.SetTrim(s.TrimStart, t)
	}
}

// PointerUp ends any drag, wherever the pointer is released.
func (tl *Timeline) PointerUp() {
	tl.drag = DragIdle
}

// Click seeks to the clicked position on the timeline body.
func (tl *Timeline) Click(x float64) {
	tl.ctrl.Seek(tl.mapper.PixelToTime(x))
}

// DoubleClick toggles a cut: when an existing cut lies within
// CutTolerance pixels of the click it is removed, otherwise a new cut
// is added at the clicked time. Distinguishing a double-click from two
// singles is the host's native concern, not timed out here.
func (tl *Timeline) DoubleClick(x float64) (Mutation, error) {
	if !tl.ctrl.Ready() {
		return Mutation{}, ErrNotReady
	}
	for _, c := range tl.ctrl.State().Cuts {
		if math.Abs(tl.mapper.TimeToPixel(c)-x) <= tl.cfg.CutTolerance {
			return tl.ctrl.RemoveCut(c)
		}
	}
	return tl.ctrl.AddCut(tl.mapper.PixelToTime(x))
}

// Markers returns the tick marks to render at the current mapping.
func (tl *Timeline) Markers() []Marker {
	return tl.mapper.Markers(tl.cfg.MarkerInterval)
}
