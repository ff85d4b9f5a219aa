package playback

import (
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/videocraft/videocraft-agent/internal/logging"
)

func TestParseRange(t *testing.T) {
	tests := []struct {
		name      string
		header    string
		size      int64
		wantStart int64
		wantEnd   int64
		wantNil   bool
		wantErr   error
	}{
		{"empty header", "", 1000, 0, 0, true, nil},
		{"full range", "bytes=0-999", 1000, 0, 999, false, nil},
		{"open end", "bytes=500-", 1000, 500, 999, false, nil},
		{"suffix range", "bytes=-500", 1000, 500, 999, false, nil},
		{"single byte", "bytes=0-0", 1000, 0, 0, false, nil},
		{"middle range", "bytes=100-199", 1000, 100, 199, false, nil},
		{"end clamped to size", "bytes=0-2000", 1000, 0, 999, false, nil},
		{"suffix larger than file", "bytes=-2000", 500, 0, 499, false, nil},
		{"last byte", "bytes=999-", 1000, 999, 999, false, nil},
		{"multi range takes first", "bytes=0-99, 200-299", 1000, 0, 99, false, nil},

		{"unsatisfiable start", "bytes=1000-", 1000, 0, 0, false, ErrUnsatisfiable},
		{"unsatisfiable beyond", "bytes=1500-2000", 1000, 0, 0, false, ErrUnsatisfiable},
		{"invalid format no bytes", "invalid", 1000, 0, 0, false, ErrInvalidRange},
		{"wrong unit", "chars=0-100", 1000, 0, 0, false, ErrInvalidRange},
		{"invalid start", "bytes=abc-100", 1000, 0, 0, false, ErrInvalidRange},
		{"invalid end", "bytes=0-abc", 1000, 0, 0, false, ErrInvalidRange},
		{"zero suffix", "bytes=-0", 1000, 0, 0, false, ErrInvalidRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRange(tt.header, tt.size)

			if tt.wantErr != nil {
				if err != tt.wantErr {
					t.Errorf("ParseRange() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Errorf("ParseRange() unexpected error: %v", err)
				return
			}

			if tt.wantNil {
				if got != nil {
					t.Errorf("ParseRange() = %v, want nil", got)
				}
				return
			}
			if got == nil {
				t.Fatal("ParseRange() = nil, want non-nil")
			}
			if got.Start != tt.wantStart || got.End != tt.wantEnd {
				t.Errorf("ParseRange() = {%d, %d}, want {%d, %d}", got.Start, got.End, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestByteRange_ContentLength(t *testing.T) {
	tests := []struct {
		start int64
		end   int64
		want  int64
	}{
		{0, 99, 100},
		{0, 0, 1},
		{500, 999, 500},
	}

	for _, tt := range tests {
		r := ByteRange{Start: tt.start, End: tt.end}
		if got := r.ContentLength(); got != tt.want {
			t.Errorf("ContentLength() = %d, want %d", got, tt.want)
		}
	}
}

func TestByteRange_ContentRange(t *testing.T) {
	r := ByteRange{Start: 500, End: 999}
	if got := r.ContentRange(1000); got != "bytes 500-999/1000" {
		t.Errorf("ContentRange() = %s", got)
	}
}

func TestServeVideo(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clip.mp4")
	content := []byte("0123456789abcdef")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}

	srv := NewServer(logging.NewLogger("error"))

	t.Run("full file", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/videos/v1/stream", nil)

		if err := srv.ServeVideo(rr, req, path, "video/mp4"); err != nil {
			t.Fatalf("ServeVideo() error = %v", err)
		}
		if rr.Code != 200 {
			t.Fatalf("status = %d, want 200", rr.Code)
		}
		if rr.Header().Get("Accept-Ranges") != "bytes" {
			t.Error("Accept-Ranges header missing")
		}
		if rr.Header().Get("Content-Type") != "video/mp4" {
			t.Errorf("Content-Type = %q", rr.Header().Get("Content-Type"))
		}
		if rr.Body.String() != string(content) {
			t.Errorf("body = %q", rr.Body.String())
		}
	})

	t.Run("partial range", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/videos/v1/stream", nil)
		req.Header.Set("Range", "bytes=4-7")

		if err := srv.ServeVideo(rr, req, path, "video/mp4"); err != nil {
			t.Fatalf("ServeVideo() error = %v", err)
		}
		if rr.Code != 206 {
			t.Fatalf("status = %d, want 206", rr.Code)
		}
		if got := rr.Header().Get("Content-Range"); got != "bytes 4-7/16" {
			t.Errorf("Content-Range = %q", got)
		}
		if rr.Body.String() != "4567" {
			t.Errorf("body = %q", rr.Body.String())
		}
	})

	t.Run("unsatisfiable range", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/videos/v1/stream", nil)
		req.Header.Set("Range", "bytes=100-")

		if err := srv.ServeVideo(rr, req, path, "video/mp4"); err != nil {
			t.Fatalf("ServeVideo() error = %v", err)
		}
		if rr.Code != 416 {
			t.Fatalf("status = %d, want 416", rr.Code)
		}
		if got := rr.Header().Get("Content-Range"); got != "bytes */16" {
			t.Errorf("Content-Range = %q", got)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/videos/v1/stream", nil)

		if err := srv.ServeVideo(rr, req, filepath.Join(dir, "gone.mp4"), ""); err != nil {
			t.Fatalf("ServeVideo() error = %v", err)
		}
		if rr.Code != 404 {
			t.Fatalf("status = %d, want 404", rr.Code)
		}
	})
}
