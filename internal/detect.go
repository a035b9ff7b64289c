package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// EnvDataDir overrides the default data directory when set.
const EnvDataDir = "DRAW_SESSION_DIR"

// DataPaths holds the resolved storage locations for this machine.
type DataPaths struct {
	BaseDir    string // application data directory
	DBPath     string // durable session database
	LegacyPath string // flat key-value file (legacy data + flags)
}

// DefaultDataPaths resolves the per-OS data directory, honoring the
// DRAW_SESSION_DIR override.
func DefaultDataPaths() (DataPaths, error) {
	if dir := os.Getenv(EnvDataDir); dir != "" {
		return dataPathsIn(dir), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return DataPaths{}, fmt.Errorf("failed to get home directory: %w", err)
	}

	var baseDir string
	switch runtime.GOOS {
	case "darwin":
		baseDir = filepath.Join(home, "Library/Application Support/draw-session")
	case "linux":
		baseDir = filepath.Join(home, ".config/draw-session")
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			baseDir = filepath.Join(appData, "draw-session")
		} else {
			baseDir = filepath.Join(home, "AppData", "Roaming", "draw-session")
		}
	default:
		return DataPaths{}, fmt.Errorf("unsupported OS: %s", runtime.GOOS)
	}

	return dataPathsIn(baseDir), nil
}

func dataPathsIn(baseDir string) DataPaths {
	return DataPaths{
		BaseDir:    baseDir,
		DBPath:     filepath.Join(baseDir, "sessions.db"),
		LegacyPath: filepath.Join(baseDir, "storage.json"),
	}
}
