package library

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/h2non/filetype"
)

// LibraryService exposes the video catalog operations the API layer
// consumes.
type LibraryService interface {
	SaveUpload(ctx context.Context, in UploadInput) (*Video, error)
	GetVideo(ctx context.Context, id string) (*Video, error)
	ListVideos(ctx context.Context) ([]*Video, error)
	DeleteVideo(ctx context.Context, id string) error
	SetVideoMetadata(ctx context.Context, id string, duration float64, width, height int) (*Video, error)
	CountVideos(ctx context.Context) (int, error)
}

// UploadInput carries one incoming upload. Duration and dimensions are
// optional at upload time; the SPA reports them once its media element
// loads metadata.
type UploadInput struct {
	Filename string
	Content  io.Reader
	MaxBytes int64
	Duration float64
	Width    int
	Height   int
}

type service struct {
	repo      Repository
	uploadDir string
	logger    *slog.Logger
}

func NewService(repo Repository, uploadDir string, logger *slog.Logger) LibraryService {
	return &service{repo: repo, uploadDir: uploadDir, logger: logger}
}

// sniffLen is how many leading bytes filetype needs for a match.
const sniffLen = 261

// SaveUpload sniffs the upload's real content type, stores the bytes
// under the upload directory, and records the catalog row. The file on
// disk is named by the video id, never by client input.
func (s *service) SaveUpload(ctx context.Context, in UploadInput) (*Video, error) {
	if !IsVideoFilename(in.Filename) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, filepath.Ext(in.Filename))
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(in.Content, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	head = head[:n]

	if !filetype.IsVideo(head) {
		return nil, fmt.Errorf("%w: content does not look like video", ErrUnsupportedType)
	}
	kind, _ := filetype.Match(head)

	if err := os.MkdirAll(s.uploadDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}

	id := uuid.NewString()
	ext := strings.ToLower(filepath.Ext(in.Filename))
	storedPath := filepath.Join(s.uploadDir, id+ext)

	f, err := os.Create(storedPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload file: %w", err)
	}

	var reader io.Reader = io.MultiReader(bytes.NewReader(head), in.Content)
	if in.MaxBytes > 0 {
		reader = io.LimitReader(reader, in.MaxBytes+1)
	}
	written, err := io.Copy(f, reader)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(storedPath)
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}
	if in.MaxBytes > 0 && written > in.MaxBytes {
		os.Remove(storedPath)
		return nil, ErrTooLarge
	}

	video := &Video{
		ID:          id,
		Filename:    filepath.Base(in.Filename),
		StoredPath:  storedPath,
		ContentType: kind.MIME.Value,
		Size:        written,
		Duration:    in.Duration,
		Width:       in.Width,
		Height:      in.Height,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repo.CreateVideo(ctx, video); err != nil {
		os.Remove(storedPath)
		return nil, fmt.Errorf("failed to record video: %w", err)
	}

	s.logger.Info("video uploaded",
		"video_id", video.ID,
		"filename", video.Filename,
		"size", video.Size,
		"content_type", video.ContentType,
	)
	return video, nil
}

func (s *service) GetVideo(ctx context.Context, id string) (*Video, error) {
	return s.repo.GetVideo(ctx, id)
}

func (s *service) ListVideos(ctx context.Context) ([]*Video, error) {
	return s.repo.ListVideos(ctx)
}

// DeleteVideo removes the catalog row and the stored file. Project
// rows cascade in the database.
func (s *service) DeleteVideo(ctx context.Context, id string) error {
	video, err := s.repo.GetVideo(ctx, id)
	if err != nil {
		return err
	}
	if video == nil {
		return nil
	}
	if err := s.repo.DeleteVideo(ctx, id); err != nil {
		return err
	}
	if err := os.Remove(video.StoredPath); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("failed to remove stored file", "video_id", id, "error", err)
	}
	return nil
}

// SetVideoMetadata records the duration and dimensions the client's
// media element reported after loading.
func (s *service) SetVideoMetadata(ctx context.Context, id string, duration float64, width, height int) (*Video, error) {
	if duration <= 0 {
		return nil, fmt.Errorf("duration must be positive")
	}
	if err := s.repo.UpdateVideoMetadata(ctx, id, duration, width, height); err != nil {
		return nil, err
	}
	return s.repo.GetVideo(ctx, id)
}

func (s *service) CountVideos(ctx context.Context) (int, error) {
	return s.repo.CountVideos(ctx)
}
