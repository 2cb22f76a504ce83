package state

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"gopkg.in/yaml.v3"
)

const (
	appName   = "reduct-device"
	stateFile = "state.yaml"
)

// StateDirEnvVar overrides the state directory when set. Snap deployments
// point it at $SNAP_COMMON; tests point it at a temp directory.
const StateDirEnvVar = "REDUCT_DEVICE_STATE_DIR"

// ErrNotProvisioned is returned by Load when no state file exists yet.
// Setup treats this as "first run"; Sync treats it as fatal.
var ErrNotProvisioned = errors.New("device has not been provisioned (no state file)")

// Mutex for thread-safe file operations
var fileMutex sync.Mutex

// GetStateDir returns the directory holding the device state file.
// The REDUCT_DEVICE_STATE_DIR environment variable takes precedence;
// otherwise platform conventions apply:
//   - Linux: $XDG_CONFIG_HOME/reduct-device or $HOME/.config/reduct-device
//   - macOS: $HOME/.config/reduct-device
//   - Windows: %LOCALAPPDATA%\reduct-device
func GetStateDir() (string, error) {
	if override := os.Getenv(StateDirEnvVar); override != "" {
		return override, nil
	}

	var baseDir string

	switch runtime.GOOS {
	case "windows":
		localAppData := os.Getenv("LOCALAPPDATA")
		if localAppData == "" {
			userProfile := os.Getenv("USERPROFILE")
			if userProfile == "" {
				return "", fmt.Errorf("cannot determine user profile directory (LOCALAPPDATA and USERPROFILE not set)")
			}
			baseDir = filepath.Join(userProfile, "AppData", "Local", appName)
		} else {
			baseDir = filepath.Join(localAppData, appName)
		}

	default:
		// Linux, macOS and other Unix-like systems: XDG_CONFIG_HOME or $HOME/.config
		xdgConfigHome := os.Getenv("XDG_CONFIG_HOME")
		if xdgConfigHome != "" {
			baseDir = filepath.Join(xdgConfigHome, appName)
		} else {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("cannot determine home directory: %w", err)
			}
			baseDir = filepath.Join(homeDir, ".config", appName)
		}
	}

	return baseDir, nil
}

// GetStatePath returns the full path to the state file.
func GetStatePath() (string, error) {
	stateDir, err := GetStateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(stateDir, stateFile), nil
}

// ensureStateDir ensures the state directory exists.
func ensureStateDir() error {
	stateDir, err := GetStateDir()
	if err != nil {
		return fmt.Errorf("failed to get state directory: %w", err)
	}

	// User-only permissions (0700)
	if err := os.MkdirAll(stateDir, 0700); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	return nil
}

// Load reads the device state from disk.
// Returns ErrNotProvisioned when no state file exists.
func Load() (*DeviceState, error) {
	fileMutex.Lock()
	defer fileMutex.Unlock()

	statePath, err := GetStatePath()
	if err != nil {
		return nil, fmt.Errorf("failed to get state path: %w", err)
	}

	data, err := os.ReadFile(statePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotProvisioned
		}
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	var st DeviceState
	if err := yaml.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("failed to parse state file: %w", err)
	}

	if err := st.Validate(); err != nil {
		return nil, fmt.Errorf("state file %s: %w", statePath, err)
	}

	return &st, nil
}

// Save writes the device state to disk.
// Performs an atomic write to prevent corruption on crash.
func (s *DeviceState) Save() error {
	fileMutex.Lock()
	defer fileMutex.Unlock()

	if err := s.Validate(); err != nil {
		return err
	}

	if err := ensureStateDir(); err != nil {
		return fmt.Errorf("failed to ensure state directory exists: %w", err)
	}

	statePath, err := GetStatePath()
	if err != nil {
		return fmt.Errorf("failed to get state path: %w", err)
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	// Add header comment
	header := []byte(`# Reduct device state file
# Holds the last applied device identity and server URL. The sync command
# compares these against newly requested values to detect drift; do not
# edit by hand while a sync is running.
#
# Location: ` + statePath + `

`)
	data = append(header, data...)

	// Write to temporary file first (atomic write)
	tmpPath := statePath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temporary state file: %w", err)
	}

	// Atomic rename (this is atomic on all platforms)
	if err := os.Rename(tmpPath, statePath); err != nil {
		// Clean up temp file on error
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save state file: %w", err)
	}

	return nil
}
