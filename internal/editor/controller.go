package editor

import (
	"errors"
	"math"
)

var (
	// ErrNotReady is returned for duration-dependent mutations before
	// media metadata has loaded.
	ErrNotReady = errors.New("media metadata not loaded")

	// ErrMediaFailed is returned once a media error has ended the
	// session; no further mutations are accepted.
	ErrMediaFailed = errors.New("media playback failed")

	// ErrInvalidFilter is returned for descriptors with an unknown
	// type or empty id.
	ErrInvalidFilter = errors.New("invalid filter descriptor")

	// ErrInvalidMetadata is returned when the reported media metadata
	// is unusable.
	ErrInvalidMetadata = errors.New("invalid media metadata")
)

// Metadata is the tuple the media source reports once a video loads.
type Metadata struct {
	Duration float64 `json:"duration"`
	Width    int     `json:"width"`
	Height   int     `json:"height"`
}

// Mutation describes what a controller operation did. Out-of-range
// inputs are accepted after clamping, and Clamped makes that visible to
// callers instead of silently swallowing the correction.
type Mutation struct {
	Applied bool `json:"applied"`
	Clamped bool `json:"clamped"`
}

// Subscriber is notified synchronously after every applied mutation.
// Widgets (timeline, preview) subscribe for re-render; they must treat
// the state as read-only and route writes through the controller.
type Subscriber interface {
	StateChanged(s *EditState)
}

// Controller owns one EditState and exposes the only mutation API for
// it. All operations are synchronous and total over their clamped
// domain; no call can leave the state violating its invariants.
//
// The controller itself is not safe for concurrent use. It models a
// single UI event loop; callers with concurrent writers (the HTTP
// session layer) serialize access around it.
type Controller struct {
	state *EditState
	meta  Metadata
	ready bool
	dead  bool

	currentTime float64
	playing     bool

	subs []Subscriber
}

// NewController creates a controller with no media attached. Trim, cut
// and seek operations reject with ErrNotReady until LoadMetadata runs.
func NewController() *Controller {
	return &Controller{state: NewEditState(0)}
}

// LoadMetadata attaches the loaded media's metadata and initializes the
// edit state with the full trim range. Loading new metadata replaces
// any previous state, which is how a stale in-flight load is abandoned.
func (c *Controller) LoadMetadata(meta Metadata) error {
	if meta.Duration <= 0 || math.IsNaN(meta.Duration) || math.IsInf(meta.Duration, 0) {
		return ErrInvalidMetadata
	}
	c.meta = meta
	c.state = NewEditState(meta.Duration)
	c.ready = true
	c.dead = false
	c.currentTime = 0
	c.playing = false
	c.notify()
	return nil
}

// Ready reports whether metadata has loaded.
func (c *Controller) Ready() bool { return c.ready }

// Metadata returns the attached media metadata.
func (c *Controller) Metadata() Metadata { return c.meta }

// State returns the live edit state. Callers must not mutate it.
func (c *Controller) State() *EditState { return c.state }

// CurrentTime is the externally tracked playhead position.
func (c *Controller) CurrentTime() float64 { return c.currentTime }

// Playing reports the externally tracked playing flag.
func (c *Controller) Playing() bool { return c.playing }

// SetPlaying flips the playing flag. Starting playback requires loaded,
// healthy media.
func (c *Controller) SetPlaying(playing bool) error {
	if err := c.gate(); err != nil && playing {
		return err
	}
	c.playing = playing
	return nil
}

// FailMedia marks the session terminally failed after a media error
// (decode failure, unsupported format). The state is kept for
// inspection but accepts no further mutations.
func (c *Controller) FailMedia() {
	c.dead = true
	c.playing = false
}

// Failed reports whether the media has terminally failed.
func (c *Controller) Failed() bool { return c.dead }

// Subscribe registers a subscriber for synchronous change notification.
func (c *Controller) Subscribe(sub Subscriber) {
	c.subs = append(c.subs, sub)
}

func (c *Controller) notify() {
	for _, sub := range c.subs {
		sub.StateChanged(c.state)
	}
}

func (c *Controller) gate() error {
	if c.dead {
		return ErrMediaFailed
	}
	if !c.ready {
		return ErrNotReady
	}
	return nil
}

// SetTrim updates the trim range, holding 0 <= start < end <= duration
// with at least Epsilon of playable length.
func (c *Controller) SetTrim(start, end float64) (Mutation, error) {
	if err := c.gate(); err != nil {
		return Mutation{}, err
	}
	s, e, clamped := clampTrim(start, end, c.state.Duration)
	c.state.TrimStart = s
	c.state.TrimEnd = e
	c.notify()
	return Mutation{Applied: true, Clamped: clamped}, nil
}

// AddCut records a cut marker at t, clamped to [0, duration] and kept
// in sorted order. A time within Epsilon of an existing cut merges into
// it without adding a new marker.
func (c *Controller) AddCut(t float64) (Mutation, error) {
	if err := c.gate(); err != nil {
		return Mutation{}, err
	}
	ct := clamp(t, 0, c.state.Duration)
	if c.state.cutNear(ct) != -1 {
		return Mutation{Applied: false, Clamped: ct != t}, nil
	}
	c.state.insertCut(ct)
	c.notify()
	return Mutation{Applied: true, Clamped: ct != t}, nil
}

// RemoveCut removes the cut within Epsilon of t, if any. Removing an
// absent cut is a no-op, so the call is idempotent.
func (c *Controller) RemoveCut(t float64) (Mutation, error) {
	if err := c.gate(); err != nil {
		return Mutation{}, err
	}
	i := c.state.cutNear(t)
	if i == -1 {
		return Mutation{}, nil
	}
	c.state.Cuts = append(c.state.Cuts[:i], c.state.Cuts[i+1:]...)
	c.notify()
	return Mutation{Applied: true}, nil
}

// ClearCuts removes every cut marker.
func (c *Controller) ClearCuts() (Mutation, error) {
	if err := c.gate(); err != nil {
		return Mutation{}, err
	}
	applied := len(c.state.Cuts) > 0
	c.state.Cuts = nil
	if applied {
		c.notify()
	}
	return Mutation{Applied: applied}, nil
}

// AddFilter appends a descriptor to the filter stack. Filters do not
// depend on media duration, so they are accepted before metadata loads.
// Duplicate ids and duplicate types are allowed; the stack renders in
// insertion order.
func (c *Controller) AddFilter(f FilterDescriptor) (Mutation, error) {
	if c.dead {
		return Mutation{}, ErrMediaFailed
	}
	if f.ID == "" || !f.Type.Valid() {
		return Mutation{}, ErrInvalidFilter
	}
	c.state.Filters = append(c.state.Filters, f)
	c.notify()
	return Mutation{Applied: true}, nil
}

// RemoveFilter removes the first descriptor with the given id.
func (c *Controller) RemoveFilter(id string) (Mutation, error) {
	if c.dead {
		return Mutation{}, ErrMediaFailed
	}
	for i, f := range c.state.Filters {
		if f.ID == id {
			c.state.Filters = append(c.state.Filters[:i], c.state.Filters[i+1:]...)
			c.notify()
			return Mutation{Applied: true}, nil
		}
	}
	return Mutation{}, nil
}

// Seek moves the tracked playhead. Targets are clamped to the media
// range but deliberately not to the trim range: the preview's tick
// loop corrects a violating position on the next tick, matching the
// reactive (not preventative) boundary discipline of scrub playback.
func (c *Controller) Seek(t float64) (Mutation, error) {
	if err := c.gate(); err != nil {
		return Mutation{}, err
	}
	ct := clamp(t, 0, c.state.Duration)
	c.currentTime = ct
	return Mutation{Applied: true, Clamped: ct != t}, nil
}

// syncTime adopts a media-reported position without clamping debate;
// used by the preview when its internal clock and the tracked time
// diverge past the sync threshold.
func (c *Controller) syncTime(t float64) {
	c.currentTime = clamp(t, 0, c.state.Duration)
}
