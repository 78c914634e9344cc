package dirs

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
)

const appName = "artassist"

// AppName returns the canonical application name for directory paths.
func AppName() string {
	return appName
}

// ConfigDir returns the app's configuration directory.
// - Linux: $XDG_CONFIG_HOME/artassist or ~/.config/artassist
// - macOS: ~/Library/Application Support/artassist
// - Windows: %AppData%/artassist (fallback to os.UserConfigDir)
func ConfigDir() (string, error) {
	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, "Library", "Application Support", AppName()), nil
	case "linux":
		xdg := os.Getenv("XDG_CONFIG_HOME")
		if xdg != "" {
			return filepath.Join(xdg, AppName()), nil
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", AppName()), nil
	default:
		// Windows and other OSes fall back to UserConfigDir
		cfg, err := os.UserConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(cfg, AppName()), nil
	}
}

// DataDir returns the app's data directory.
// - Linux: $XDG_DATA_HOME/artassist or ~/.local/share/artassist
// - macOS: ~/Library/Application Support/artassist
// - Windows: %AppData%/artassist (fallback to os.UserConfigDir)
func DataDir() (string, error) {
	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, "Library", "Application Support", AppName()), nil
	case "linux":
		xdg := os.Getenv("XDG_DATA_HOME")
		if xdg != "" {
			return filepath.Join(xdg, AppName()), nil
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".local", "share", AppName()), nil
	default:
		// Windows and other OSes fall back to UserConfigDir as a reasonable place
		cfg, err := os.UserConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(cfg, AppName()), nil
	}
}

// PicturesDir returns the user's pictures directory, falling back to the home
// directory when no conventional location exists.
func PicturesDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	if runtime.GOOS == "linux" {
		if xdg := os.Getenv("XDG_PICTURES_DIR"); xdg != "" {
			return xdg, nil
		}
	}
	pics := filepath.Join(home, "Pictures")
	if info, err := os.Stat(pics); err == nil && info.IsDir() {
		return pics, nil
	}
	return home, nil
}

// DefaultOutputDir returns the default directory for generated images:
// the user's pictures directory plus an "ArtAssist" folder.
func DefaultOutputDir() (string, error) {
	pics, err := PicturesDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(pics, "ArtAssist"), nil
}

// Ensure creates the directory if it doesn't exist.
func Ensure(path string) error {
	if path == "" {
		return errors.New("empty path")
	}
	return os.MkdirAll(path, 0o755)
}

// EnsureAll ensures the config and data dirs exist.
func EnsureAll() error {
	if p, err := ConfigDir(); err == nil {
		if err := Ensure(p); err != nil {
			return err
		}
	}
	if p, err := DataDir(); err == nil {
		if err := Ensure(p); err != nil {
			return err
		}
	}
	return nil
}
