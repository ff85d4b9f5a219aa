package editor

import "math"

const (
	ZoomMin  = 0.5
	ZoomMax  = 5.0
	ZoomStep = 1.5

	// DefaultPadding is the horizontal inset, in pixels, between the
	// viewport edge and the zero-time position.
	DefaultPadding = 20.0

	// DefaultMarkerInterval is the spacing of timeline tick marks in
	// seconds.
	DefaultMarkerInterval = 10.0
)

// TimeMapper converts between a horizontal pixel offset inside a
// timeline viewport and a time value in [0, Duration]. It is a value
// type; zoom changes produce a new mapper and never move the time a
// given playhead points at, only its pixel position.
type TimeMapper struct {
	Duration      float64
	ViewportWidth float64
	Zoom          float64
	Padding       float64
}

// NewTimeMapper builds a mapper at 1x zoom with the default padding.
func NewTimeMapper(duration, viewportWidth float64) TimeMapper {
	return TimeMapper{
		Duration:      duration,
		ViewportWidth: viewportWidth,
		Zoom:          1.0,
		Padding:       DefaultPadding,
	}
}

// ContentWidth is the drawable width in pixels after padding and zoom.
func (m TimeMapper) ContentWidth() float64 {
	w := (m.ViewportWidth - 2*m.Padding) * m.Zoom
	if w < 0 {
		return 0
	}
	return w
}

// TimeToPixel maps a time to its pixel offset from the padded origin.
func (m TimeMapper) TimeToPixel(t float64) float64 {
	if m.Duration <= 0 {
		return 0
	}
	return (t / m.Duration) * m.ContentWidth()
}

// PixelToTime is the inverse of TimeToPixel, clamped to [0, Duration].
// A zero-duration or zero-width mapper maps every pixel to 0.
func (m TimeMapper) PixelToTime(x float64) float64 {
	if m.Duration <= 0 {
		return 0
	}
	w := m.ContentWidth()
	if w <= 0 {
		return 0
	}
	return clamp((x/w)*m.Duration, 0, m.Duration)
}

// ClampZoom bounds a zoom factor to [ZoomMin, ZoomMax].
func ClampZoom(z float64) float64 {
	return clamp(z, ZoomMin, ZoomMax)
}

// WithZoom returns a copy of the mapper at the given (clamped) zoom.
func (m TimeMapper) WithZoom(z float64) TimeMapper {
	m.Zoom = ClampZoom(z)
	return m
}

// ZoomIn steps the zoom up by ZoomStep.
func (m TimeMapper) ZoomIn() TimeMapper {
	return m.WithZoom(m.Zoom * ZoomStep)
}

// ZoomOut steps the zoom down by ZoomStep.
func (m TimeMapper) ZoomOut() TimeMapper {
	return m.WithZoom(m.Zoom / ZoomStep)
}

// Marker is one timeline tick.
type Marker struct {
	Time  float64 `json:"time"`
	Pixel float64 `json:"pixel"`
}

// Markers returns tick marks every interval seconds across the full
// duration, including the zero tick. Tick count follows duration and
// interval, not zoom; zoom only spreads the same ticks over more
// pixels.
func (m TimeMapper) Markers(interval float64) []Marker {
	if m.Duration <= 0 || interval <= 0 {
		return nil
	}
	n := int(math.Floor(m.Duration/interval)) + 1
	marks := make([]Marker, 0, n)
	for i := 0; i < n; i++ {
		t := float64(i) * interval
		marks = append(marks, Marker{Time: t, Pixel: m.TimeToPixel(t)})
	}
	return marks
}
