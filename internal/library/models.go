// Package library manages the uploaded video catalog: accepting and
// storing uploads, sniffing their real content type, and recording the
// metadata the editor and analysis layers work from.
package library

import (
	"errors"
	"path/filepath"
	"strings"
	"time"
)

var (
	// ErrUnsupportedType is returned when the uploaded bytes are not a
	// recognized video container.
	ErrUnsupportedType = errors.New("unsupported media type")

	// ErrTooLarge is returned when an upload exceeds the configured
	// size limit.
	ErrTooLarge = errors.New("upload exceeds size limit")
)

// Video is one uploaded media file. Duration and dimensions are
// reported by the client when its media element loads metadata; the
// agent never decodes video itself.
type Video struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	StoredPath  string    `json:"stored_path"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	Duration    float64   `json:"duration"`
	Width       int       `json:"width"`
	Height      int       `json:"height"`
	CreatedAt   time.Time `json:"created_at"`
}

var videoExtensions = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".mkv":  true,
	".webm": true,
	".avi":  true,
}

// IsVideoFilename reports whether the name carries a supported video
// extension. The upload path additionally sniffs the actual bytes.
func IsVideoFilename(filename string) bool {
	return videoExtensions[strings.ToLower(filepath.Ext(filename))]
}
