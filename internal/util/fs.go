package util

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

// EnsureDir creates the directory path if it does not exist.
func EnsureDir(path string) error {
	if path == "" {
		return errors.New("empty path")
	}
	return os.MkdirAll(path, 0o755)
}

// RemoveIfExists deletes the file if present.
func RemoveIfExists(path string) error {
	if _, err := os.Stat(path); err == nil {
		return os.Remove(path)
	} else if os.IsNotExist(err) {
		return nil
	} else {
		return err
	}
}

// DirWritable reports whether the directory can be created and written to.
func DirWritable(path string) error {
	if err := EnsureDir(path); err != nil {
		return err
	}
	probe, err := os.CreateTemp(path, ".artassist-*")
	if err != nil {
		return err
	}
	name := probe.Name()
	probe.Close()
	return os.Remove(name)
}

// OpenFileManager opens the given directory in the OS file manager.
func OpenFileManager(path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("open folder: %w", err)
	}
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "windows":
		cmd = exec.Command("explorer", path)
	default:
		cmd = exec.Command("xdg-open", path)
	}
	return cmd.Start()
}
