// Package editor holds the non-destructive editing model for one loaded
// video: the trim range, cut markers, and the ordered filter stack, plus
// the pixel/time mapping and playback-boundary logic the timeline and
// preview widgets are built on. Nothing in this package performs I/O.
package editor

import (
	"fmt"
	"math"
	"sort"
)

const (
	// Epsilon is the minimum spacing between distinct time values.
	// Trim ranges can never collapse below it and cuts closer than it
	// are merged.
	Epsilon = 0.1

	// CutPenalty is the fixed number of seconds a single cut marker is
	// assumed to remove. Cuts are markers, not real media splits, so
	// the effective duration is an approximation.
	CutPenalty = 0.5
)

// FilterType enumerates the supported effect kinds. Audio descriptors
// carry a track association and contribute nothing to the visual chain.
type FilterType string

const (
	FilterBrightness FilterType = "brightness"
	FilterContrast   FilterType = "contrast"
	FilterSaturation FilterType = "saturation"
	FilterBlur       FilterType = "blur"
	FilterGrayscale  FilterType = "grayscale"
	FilterSepia      FilterType = "sepia"
	FilterHueRotate  FilterType = "hue-rotate"
	FilterAudio      FilterType = "audio"
)

var filterTypes = map[FilterType]bool{
	FilterBrightness: true,
	FilterContrast:   true,
	FilterSaturation: true,
	FilterBlur:       true,
	FilterGrayscale:  true,
	FilterSepia:      true,
	FilterHueRotate:  true,
	FilterAudio:      true,
}

// Valid reports whether t is a known filter type.
func (t FilterType) Valid() bool {
	return filterTypes[t]
}

// ParseFilterType validates a wire-level type string.
func ParseFilterType(s string) (FilterType, error) {
	t := FilterType(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown filter type %q", s)
	}
	return t, nil
}

// FilterDescriptor is one entry in the filter stack. IDs are caller
// chosen; duplicate types are allowed and stack in list order.
type FilterDescriptor struct {
	ID    string     `json:"id"`
	Type  FilterType `json:"type"`
	Value float64    `json:"value"`
}

// EditState is the authoritative edit model for one loaded video.
// It is mutated only through a Controller; widgets read it and call
// controller methods for writes.
type EditState struct {
	Duration  float64
	TrimStart float64
	TrimEnd   float64
	Cuts      []float64
	Filters   []FilterDescriptor
}

// NewEditState creates the initial state for a video of the given
// duration: full trim range, no cuts, no filters.
func NewEditState(duration float64) *EditState {
	if duration < 0 {
		duration = 0
	}
	return &EditState{
		Duration: duration,
		TrimEnd:  duration,
	}
}

// Clone returns a deep copy.
func (s *EditState) Clone() *EditState {
	c := *s
	c.Cuts = append([]float64(nil), s.Cuts...)
	c.Filters = append([]FilterDescriptor(nil), s.Filters...)
	return &c
}

// TrimmedDuration is the length of the playable trim range.
func (s *EditState) TrimmedDuration() float64 {
	return s.TrimEnd - s.TrimStart
}

// EffectiveDuration approximates the duration after cuts by charging a
// fixed penalty per active cut. It never goes below zero.
func (s *EditState) EffectiveDuration() float64 {
	d := s.TrimmedDuration() - float64(len(s.activeCuts()))*CutPenalty
	if d < 0 {
		return 0
	}
	return d
}

// activeCuts returns the cuts inside the open trim interval. Cuts that
// fall outside a narrowed trim stay recorded but are inert.
func (s *EditState) activeCuts() []float64 {
	active := make([]float64, 0, len(s.Cuts))
	for _, c := range s.Cuts {
		if c > s.TrimStart && c < s.TrimEnd {
			active = append(active, c)
		}
	}
	return active
}

// cutNear returns the index of the cut within Epsilon of t, or -1.
func (s *EditState) cutNear(t float64) int {
	for i, c := range s.Cuts {
		if math.Abs(c-t) < Epsilon {
			return i
		}
	}
	return -1
}

func (s *EditState) insertCut(t float64) {
	i := sort.SearchFloat64s(s.Cuts, t)
	s.Cuts = append(s.Cuts, 0)
	copy(s.Cuts[i+1:], s.Cuts[i:])
	s.Cuts[i] = t
}

// Segment is a contiguous playable span derived from the trim range and
// cut markers.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Segments splits the trim range at each active cut. Playback resumes
// CutPenalty seconds after a cut, mirroring the effective-duration
// approximation, so segment lengths sum to EffectiveDuration.
func (s *EditState) Segments() []Segment {
	segs := make([]Segment, 0, len(s.Cuts)+1)
	start := s.TrimStart
	for _, c := range s.activeCuts() {
		if c > start {
			segs = append(segs, Segment{Start: start, End: c})
		}
		start = c + CutPenalty
	}
	if start < s.TrimEnd {
		segs = append(segs, Segment{Start: start, End: s.TrimEnd})
	}
	return segs
}

// Snapshot is the serialized form of an EditState, the shape the
// persistence and export layers exchange.
type Snapshot struct {
	TrimStart float64            `json:"trim_start"`
	TrimEnd   float64            `json:"trim_end"`
	Cuts      []float64          `json:"cuts"`
	Filters   []FilterDescriptor `json:"filters"`
}

// Snapshot captures the current state as a plain record.
func (s *EditState) Snapshot() Snapshot {
	return Snapshot{
		TrimStart: s.TrimStart,
		TrimEnd:   s.TrimEnd,
		Cuts:      append([]float64(nil), s.Cuts...),
		Filters:   append([]FilterDescriptor(nil), s.Filters...),
	}
}

// FromSnapshot rebuilds an EditState for a video of the given duration.
// Values are clamped into range the same way live mutations are, so a
// snapshot can never rehydrate into an invalid state.
func FromSnapshot(snap Snapshot, duration float64) (*EditState, error) {
	for _, f := range snap.Filters {
		if !f.Type.Valid() {
			return nil, fmt.Errorf("unknown filter type %q", f.Type)
		}
	}

	s := NewEditState(duration)
	start, end, _ := clampTrim(snap.TrimStart, snap.TrimEnd, duration)
	s.TrimStart = start
	s.TrimEnd = end

	cuts := append([]float64(nil), snap.Cuts...)
	sort.Float64s(cuts)
	for _, c := range cuts {
		c = clamp(c, 0, duration)
		if s.cutNear(c) == -1 {
			s.insertCut(c)
		}
	}

	s.Filters = append([]FilterDescriptor(nil), snap.Filters...)
	return s, nil
}

// clampTrim normalizes a trim request so 0 <= start < end <= duration
// with at least Epsilon between the bounds. The second return reports
// whether the inputs were adjusted.
func clampTrim(start, end, duration float64) (float64, float64, bool) {
	origStart, origEnd := start, end

	start = clamp(start, 0, duration)
	end = clamp(end, 0, duration)
	if end < start+Epsilon {
		end = start + Epsilon
	}
	if end > duration {
		end = duration
		start = end - Epsilon
		if start < 0 {
			start = 0
		}
	}
	return start, end, start != origStart || end != origEnd
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
