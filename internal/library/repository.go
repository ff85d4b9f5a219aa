package library

import (
	"context"
	"database/sql"
	"time"
)

// Repository is the persistence boundary for videos and agent config
// entries.
type Repository interface {
	CreateVideo(ctx context.Context, v *Video) error
	GetVideo(ctx context.Context, id string) (*Video, error)
	ListVideos(ctx context.Context) ([]*Video, error)
	DeleteVideo(ctx context.Context, id string) error
	UpdateVideoMetadata(ctx context.Context, id string, duration float64, width, height int) error
	CountVideos(ctx context.Context) (int, error)

	GetConfig(ctx context.Context, key string) (string, error)
	SetConfig(ctx context.Context, key, value string) error
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) CreateVideo(ctx context.Context, v *Video) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO videos (id, filename, stored_path, content_type, size, duration, width, height, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, v.ID, v.Filename, v.StoredPath, v.ContentType, v.Size, v.Duration, v.Width, v.Height, v.CreatedAt.Format(time.RFC3339))
	return err
}

func (r *SQLiteRepository) GetVideo(ctx context.Context, id string) (*Video, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, filename, stored_path, content_type, size, duration, width, height, created_at
		FROM videos WHERE id = ?
	`, id)
	return scanVideo(row)
}

func (r *SQLiteRepository) ListVideos(ctx context.Context) ([]*Video, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, filename, stored_path, content_type, size, duration, width, height, created_at
		FROM videos ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var videos []*Video
	for rows.Next() {
		v, err := scanVideoRows(rows)
		if err != nil {
			return nil, err
		}
		videos = append(videos, v)
	}
	return videos, rows.Err()
}

func (r *SQLiteRepository) DeleteVideo(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM videos WHERE id = ?`, id)
	return err
}

func (r *SQLiteRepository) UpdateVideoMetadata(ctx context.Context, id string, duration float64, width, height int) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE videos SET duration = ?, width = ?, height = ? WHERE id = ?
	`, duration, width, height, id)
	return err
}

func (r *SQLiteRepository) CountVideos(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM videos`).Scan(&count)
	return count, err
}

func (r *SQLiteRepository) GetConfig(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM config WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (r *SQLiteRepository) SetConfig(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO config (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

func scanVideo(row *sql.Row) (*Video, error) {
	var v Video
	var createdAt string
	err := row.Scan(&v.ID, &v.Filename, &v.StoredPath, &v.ContentType, &v.Size, &v.Duration, &v.Width, &v.Height, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	v.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &v, nil
}

func scanVideoRows(rows *sql.Rows) (*Video, error) {
	var v Video
	var createdAt string
	if err := rows.Scan(&v.ID, &v.Filename, &v.StoredPath, &v.ContentType, &v.Size, &v.Duration, &v.Width, &v.Height, &createdAt); err != nil {
		return nil, err
	}
	v.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &v, nil
}
