// Package export renders a finished edit into shareable artifacts: an
// EDL cut list for NLE import, a JSON document, or a plain-text
// summary report. Generators read a snapshot of the edit and never
// mutate it.
package export

import (
	"fmt"

	"github.com/videocraft/videocraft-agent/internal/analysis"
	"github.com/videocraft/videocraft-agent/internal/editor"
)

const (
	FormatEDL    = "edl"
	FormatJSON   = "json"
	FormatReport = "report"
)

// VideoInfo is the slice of catalog data an export carries.
type VideoInfo struct {
	ID          string  `json:"id"`
	Filename    string  `json:"filename"`
	MediaPath   string  `json:"media_path"`
	Duration    float64 `json:"duration"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	ContentType string  `json:"content_type"`
}

// Document is everything the generators render from.
type Document struct {
	ProjectName       string           `json:"project_name"`
	Video             VideoInfo        `json:"video"`
	State             editor.Snapshot  `json:"state"`
	Segments          []editor.Segment `json:"segments"`
	FilterChain       string           `json:"filter_chain"`
	TrimmedDuration   float64          `json:"trimmed_duration"`
	EffectiveDuration float64          `json:"effective_duration"`
	Analysis          *analysis.Result `json:"analysis,omitempty"`
}

// ResolvedClip is one EDL event resolved to real media.
type ResolvedClip struct {
	ClipName  string
	MediaPath string
	StartMs   int
	EndMs     int
}

// ClipsFromSegments turns the playable segments of an edit into EDL
// clips against the stored media file.
func ClipsFromSegments(segments []editor.Segment, mediaPath, baseName string) []ResolvedClip {
	clips := make([]ResolvedClip, 0, len(segments))
	for i, seg := range segments {
		clips = append(clips, ResolvedClip{
			ClipName:  clipName(baseName, i+1),
			MediaPath: mediaPath,
			StartMs:   int(seg.Start * 1000),
			EndMs:     int(seg.End * 1000),
		})
	}
	return clips
}

func clipName(base string, n int) string {
	if base == "" {
		base = "segment"
	}
	return fmt.Sprintf("%s_%02d", SanitizeName(base, 120), n)
}
