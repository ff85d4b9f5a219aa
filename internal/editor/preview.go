package editor

import (
	"math"
	"strconv"
	"strings"
)

const (
	// CutSkipWindow is how far past a cut marker playback must land
	// before the next marker counts as "later" for the skip jump.
	CutSkipWindow = 0.5

	// SyncThreshold is the divergence, in seconds, beyond which the
	// preview reconciles its internal clock with the tracked playhead.
	// Below it the media element's own continuous updates win.
	SyncThreshold = 0.5

	// NoFilter is the chain value when no visual filters are active.
	NoFilter = "none"
)

// MediaElement is the preview's handle on the actual playback surface.
// The core drives it and never reads from it; decode and render belong
// to the host.
type MediaElement interface {
	Pause()
	SeekTo(t float64)
	SetFilter(chain string)
}

// FilterChain renders the filter stack into a single CSS filter value,
// one token per descriptor in list order. Audio descriptors contribute
// no visual token. An empty result is the literal no-op value.
func FilterChain(filters []FilterDescriptor) string {
	var b strings.Builder
	for _, f := range filters {
		tok := filterToken(f)
		if tok == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(tok)
	}
	if b.Len() == 0 {
		return NoFilter
	}
	return b.String()
}

func filterToken(f FilterDescriptor) string {
	v := strconv.FormatFloat(f.Value, 'f', -1, 64)
	switch f.Type {
	case FilterBrightness:
		return "brightness(" + v + "%)"
	case FilterContrast:
		return "contrast(" + v + "%)"
	case FilterSaturation:
		return "saturate(" + v + "%)"
	case FilterBlur:
		return "blur(" + v + "px)"
	case FilterGrayscale:
		return "grayscale(" + v + "%)"
	case FilterSepia:
		return "sepia(" + v + "%)"
	case FilterHueRotate:
		return "hue-rotate(" + v + "deg)"
	default:
		// audio and forward-compatible unknowns pass through silently
		return ""
	}
}

// TickResult reports what a playback tick did.
type TickResult struct {
	Paused    bool    `json:"paused"`
	Skipped   bool    `json:"skipped"`
	SkippedTo float64 `json:"skipped_to,omitempty"`
	Synced    bool    `json:"synced"`
}

// Preview binds a controller's edit state to a media element: it keeps
// the filter chain applied and enforces trim and cut boundaries from
// the playback tick. Enforcement is reactive: a seek past trimEnd is
// allowed and corrected on the next tick, never blocked up front.
type Preview struct {
	ctrl  *Controller
	media MediaElement

	internalTime float64
	chain        string
}

// NewPreview binds a preview to a controller and media element and
// applies the current filter chain immediately.
func NewPreview(ctrl *Controller, media MediaElement) *Preview {
	p := &Preview{ctrl: ctrl, media: media}
	ctrl.Subscribe(p)
	p.StateChanged(ctrl.State())
	return p
}

// StateChanged implements Subscriber: re-derive the filter chain and
// push it to the media element when it actually changed.
func (p *Preview) StateChanged(s *EditState) {
	chain := FilterChain(s.Filters)
	if chain == p.chain {
		return
	}
	p.chain = chain
	p.media.SetFilter(chain)
}

// Chain returns the currently applied CSS filter value.
func (p *Preview) Chain() string { return p.chain }

// InternalTime returns the preview's media-driven clock.
func (p *Preview) InternalTime() float64 { return p.internalTime }

// Tick processes one playback time update at media position t.
//
// Order matters and mirrors scrub playback: trim-end is checked first
// (pause and flip the playing flag), then cut skipping (landing within
// Epsilon of a cut jumps to the next cut later than cut+CutSkipWindow,
// or continues normally when none exists), then clock reconciliation
// past SyncThreshold.
func (p *Preview) Tick(t float64) TickResult {
	p.internalTime = t
	s := p.ctrl.State()
	var res TickResult

	if t >= s.TrimEnd {
		p.media.Pause()
		p.ctrl.SetPlaying(false)
		p.ctrl.syncTime(s.TrimEnd)
		res.Paused = true
		return res
	}

	if c, ok := nearCut(s, t); ok {
		if next, ok := nextCutAfter(s, c+CutSkipWindow); ok {
			p.media.SeekTo(next)
			p.internalTime = next
			p.ctrl.syncTime(next)
			res.Skipped = true
			res.SkippedTo = next
			return res
		}
	}

	if math.Abs(t-p.ctrl.CurrentTime()) > SyncThreshold {
		p.ctrl.syncTime(t)
		res.Synced = true
	}
	return res
}

func nearCut(s *EditState, t float64) (float64, bool) {
	for _, c := range s.activeCuts() {
		if math.Abs(c-t) < Epsilon {
			return c, true
		}
	}
	return 0, false
}

func nextCutAfter(s *EditState, t float64) (float64, bool) {
	for _, c := range s.activeCuts() {
		if c > t {
			return c, true
		}
	}
	return 0, false
}
