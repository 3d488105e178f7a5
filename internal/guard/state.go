package guard

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

// BundleState tracks the active and previous bundle versions inside a
// bundle base directory.
type BundleState struct {
	CurrentVersion  string `json:"current_version"`
	PreviousVersion string `json:"previous_version,omitempty"`
}

// ResolveBundleDir returns baseDir/<current_version> when a state.json
// names an existing versioned subdirectory, else baseDir itself. Bundles
// without version management just keep their files at the top level.
func ResolveBundleDir(baseDir string) string {
	baseDir = strings.TrimSpace(baseDir)
	if baseDir == "" {
		return baseDir
	}

	data, err := os.ReadFile(filepath.Join(baseDir, "state.json"))
	if err != nil {
		return baseDir
	}
	var state BundleState
	if err := json.Unmarshal(data, &state); err != nil {
		return baseDir
	}
	if state.CurrentVersion == "" {
		return baseDir
	}
	versioned := filepath.Join(baseDir, state.CurrentVersion)
	if _, err := os.Stat(versioned); err != nil {
		return baseDir
	}
	return versioned
}
