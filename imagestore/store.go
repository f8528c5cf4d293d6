package imagestore

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Store writes decoded capture images under a base directory and hands back
// stable relative reference paths for the database.
type Store struct {
	baseDir string
}

func New(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create image dir: %w", err)
	}
	return &Store{baseDir: baseDir}, nil
}

// Save decodes a base64 payload and writes it as <scanID>/<name>.jpg,
// returning the path relative to the base directory. Data-URL prefixes
// ("data:image/jpeg;base64,...") are tolerated.
func (s *Store) Save(scanID, name, b64 string) (string, error) {
	if b64 == "" {
		return "", fmt.Errorf("empty image payload")
	}
	if idx := strings.Index(b64, ","); idx >= 0 && strings.HasPrefix(b64, "data:") {
		b64 = b64[idx+1:]
	}
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return "", fmt.Errorf("decode image %s: %w", name, err)
	}

	dir := filepath.Join(s.baseDir, scanID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create scan dir: %w", err)
	}
	rel := filepath.Join(scanID, name+".jpg")
	if err := os.WriteFile(filepath.Join(s.baseDir, rel), raw, 0o644); err != nil {
		return "", fmt.Errorf("write image %s: %w", name, err)
	}
	return rel, nil
}
