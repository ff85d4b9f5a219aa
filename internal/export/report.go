package export

import (
	"encoding/json"
	"fmt"
	"strings"
)

// GenerateJSON renders the full export document as indented JSON.
func GenerateJSON(doc Document) ([]byte, error) {
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode export document: %w", err)
	}
	return raw, nil
}

// GenerateReport renders the human-readable summary the SPA offers as
// a printable document: project and video facts, the edit decisions,
// and the analysis highlights when present.
func GenerateReport(doc Document) string {
	var b strings.Builder

	title := doc.ProjectName
	if title == "" {
		title = "Untitled Project"
	}

	fmt.Fprintf(&b, "VideoCraft Edit Report\n")
	fmt.Fprintf(&b, "======================\n\n")
	fmt.Fprintf(&b, "Project:  %s\n", title)
	fmt.Fprintf(&b, "Video:    %s (%dx%d, %s)\n", doc.Video.Filename, doc.Video.Width, doc.Video.Height, doc.Video.ContentType)
	fmt.Fprintf(&b, "Duration: %s\n\n", formatTime(doc.Video.Duration))

	fmt.Fprintf(&b, "Edit Summary\n")
	fmt.Fprintf(&b, "------------\n")
	fmt.Fprintf(&b, "Trim:               %s - %s\n", formatTime(doc.State.TrimStart), formatTime(doc.State.TrimEnd))
	fmt.Fprintf(&b, "Cuts:               %d\n", len(doc.State.Cuts))
	fmt.Fprintf(&b, "Trimmed duration:   %s\n", formatTime(doc.TrimmedDuration))
	fmt.Fprintf(&b, "Effective duration: %s (approximate, fixed penalty per cut)\n\n", formatTime(doc.EffectiveDuration))

	if len(doc.Segments) > 0 {
		fmt.Fprintf(&b, "Segments\n")
		fmt.Fprintf(&b, "--------\n")
		for i, seg := range doc.Segments {
			fmt.Fprintf(&b, "%02d. %s - %s\n", i+1, formatTime(seg.Start), formatTime(seg.End))
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Filters\n")
	fmt.Fprintf(&b, "-------\n")
	if len(doc.State.Filters) == 0 {
		b.WriteString("none\n")
	} else {
		for _, f := range doc.State.Filters {
			fmt.Fprintf(&b, "%-12s %v  (id %s)\n", string(f.Type), f.Value, f.ID)
		}
		fmt.Fprintf(&b, "Chain: %s\n", doc.FilterChain)
	}
	b.WriteString("\n")

	if doc.Analysis != nil {
		fmt.Fprintf(&b, "AI Analysis\n")
		fmt.Fprintf(&b, "-----------\n")
		for _, sc := range doc.Analysis.Scenes {
			fmt.Fprintf(&b, "Scene: %s (%.0f%% confidence)\n", sc.Scene, sc.Confidence*100)
		}
		for _, e := range doc.Analysis.Emotions {
			fmt.Fprintf(&b, "Emotion at %s: %s (%.0f%%)\n", formatTime(e.Time), e.Emotion, e.Confidence*100)
		}
		for _, in := range doc.Analysis.Insights {
			fmt.Fprintf(&b, "- %s\n", in)
		}
	}

	return b.String()
}

func formatTime(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	m := int(seconds) / 60
	s := seconds - float64(m*60)
	return fmt.Sprintf("%d:%05.2f", m, s)
}
