package config

import (
	"errors"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// EnsureUserConfig copies the packaged default config into the data dir on
// first run and returns the user-owned path.
func EnsureUserConfig(dataDir string, defaultPath string) (string, error) {
	userPath := filepath.Join(dataDir, "config.yml")

	_, err := os.Stat(userPath)
	if err == nil {
		return userPath, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return "", err
	}

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return "", err
	}

	src, err := os.Open(defaultPath)
	if errors.Is(err, os.ErrNotExist) {
		// No packaged default alongside the binary: write the built-in one.
		cfg := Default()
		b, merr := yaml.Marshal(cfg)
		if merr != nil {
			return "", merr
		}
		if werr := os.WriteFile(userPath, b, 0o644); werr != nil {
			return "", werr
		}
		return userPath, nil
	}
	if err != nil {
		return "", err
	}
	defer src.Close()

	dst, err := os.Create(userPath)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}
	return userPath, nil
}
