package imageio

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Store writes generated images into dated subdirectories of a base output
// directory, the way the original output folder is organized:
// <base>/YYYY-MM-DD/gen_<unixts>_<n>.png.
type Store struct {
	BaseDir string
	now     func() time.Time
}

// NewStore returns a Store rooted at baseDir.
func NewStore(baseDir string) *Store {
	return &Store{BaseDir: baseDir, now: time.Now}
}

// Save decodes one base64 PNG from a generation response, embeds the
// metadata string, and writes it under today's directory. n disambiguates
// images saved within the same second.
func (s *Store) Save(b64 string, parameters string, n int) (string, int64, error) {
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return "", 0, fmt.Errorf("decode generated image: %w", err)
	}
	if data, err = WithParameters(data, parameters); err != nil {
		return "", 0, fmt.Errorf("embed metadata: %w", err)
	}

	now := s.now()
	dir := filepath.Join(s.BaseDir, now.Format("2006-01-02"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", 0, fmt.Errorf("create output dir: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("gen_%d_%d.png", now.Unix(), n))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", 0, fmt.Errorf("write image: %w", err)
	}
	return path, int64(len(data)), nil
}

// TodayDir returns the dated directory images are currently being saved to.
// It may not exist yet when nothing was generated today.
func (s *Store) TodayDir() string {
	return filepath.Join(s.BaseDir, s.now().Format("2006-01-02"))
}
