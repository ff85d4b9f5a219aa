// Package project persists editing projects: a named reference to an
// uploaded video plus the serialized edit state, so a session can be
// saved and rehydrated later. The edit core itself is unaware of
// persistence; this package only moves snapshots in and out of rows.
package project

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/videocraft/videocraft-agent/internal/editor"
)

// Project is one saved editing project.
type Project struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	VideoID   string          `json:"video_id"`
	State     editor.Snapshot `json:"state"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// encodeState serializes a snapshot for the state column.
func encodeState(snap editor.Snapshot) (string, error) {
	raw, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("failed to encode edit state: %w", err)
	}
	return string(raw), nil
}

// decodeState parses a state column back into a snapshot.
func decodeState(raw string) (editor.Snapshot, error) {
	var snap editor.Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return editor.Snapshot{}, fmt.Errorf("failed to decode edit state: %w", err)
	}
	return snap, nil
}
