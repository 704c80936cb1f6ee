package config

import (
	"os"
	"path/filepath"
)

// searchDir normalizes path to a directory: a file path resolves to
// its containing directory, an empty path resolves to ".", mirroring
// the teacher's normalizeSearchDir in internal/config/toml_loader.go.
func searchDir(path string) (string, error) {
	if path == "" {
		path = "."
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	if info, err := os.Stat(abs); err == nil && !info.IsDir() {
		return filepath.Dir(abs), nil
	}
	return abs, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func readFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}
