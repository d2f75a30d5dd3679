// Package backup covers the JSON interchange surfaces: export, import, the
// raw-editor round trip, and periodic on-disk snapshots.
package backup

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/wfunc/boardvault/models"
)

// ErrNotArray rejects interchange payloads whose top-level value is not a
// JSON array. The store is left untouched when this happens.
var ErrNotArray = errors.New("el archivo JSON no tiene el formato correcto: se esperaba un array")

// FileName names an export after the day it was taken.
func FileName(now time.Time) string {
	return fmt.Sprintf("boardgames_backup_%s.json", now.Format("2006-01-02"))
}

// Export serializes the full collection as indented JSON.
func Export(games []models.BoardGame) ([]byte, error) {
	return json.MarshalIndent(games, "", "  ")
}

// ParseImport decodes an interchange payload into the loose shape the
// normalizer expects. Only the array requirement is enforced here; per-record
// gaps are the normalizer's business.
func ParseImport(data []byte) ([]interface{}, error) {
	var payload interface{}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}
	raw, ok := payload.([]interface{})
	if !ok {
		return nil, ErrNotArray
	}
	return raw, nil
}

// EditorText renders the collection the way the raw JSON editor shows it.
func EditorText(games []models.BoardGame) (string, error) {
	data, err := Export(games)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ParseEditorText validates edited JSON text. Parse errors come back to the
// editor; nothing is mutated on failure.
func ParseEditorText(text string) ([]interface{}, error) {
	return ParseImport([]byte(text))
}

// WriteSnapshot drops a dated export into dir and returns its path.
func WriteSnapshot(dir string, games []models.BoardGame) (string, error) {
	data, err := Export(games)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, FileName(time.Now()))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
