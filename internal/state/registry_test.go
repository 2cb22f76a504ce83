package state

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func useTempStateDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(StateDirEnvVar, dir)
	return dir
}

func TestGetStateDirEnvOverride(t *testing.T) {
	dir := useTempStateDir(t)

	got, err := GetStateDir()
	if err != nil {
		t.Fatalf("GetStateDir() error = %v", err)
	}
	if got != dir {
		t.Errorf("GetStateDir() = %v, want env override %v", got, dir)
	}
}

func TestGetStatePath(t *testing.T) {
	useTempStateDir(t)

	path, err := GetStatePath()
	if err != nil {
		t.Fatalf("GetStatePath() error = %v", err)
	}
	if filepath.Base(path) != "state.yaml" {
		t.Errorf("GetStatePath() should end with 'state.yaml', got: %v", path)
	}
}

func TestNew(t *testing.T) {
	st, err := New("abc123", "http://10.0.0.5/path")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if st.Version != CurrentVersion {
		t.Errorf("New().Version = %v, want %v", st.Version, CurrentVersion)
	}
	if st.DeviceUID != "abc123" {
		t.Errorf("New().DeviceUID = %v, want abc123", st.DeviceUID)
	}
	if st.ServerHost != "10.0.0.5" {
		t.Errorf("New().ServerHost = %v, want 10.0.0.5", st.ServerHost)
	}
	if st.ProvisionedAt.IsZero() {
		t.Error("New().ProvisionedAt should be set")
	}
}

func TestNewRejectsBadInput(t *testing.T) {
	if _, err := New("has space", "http://10.0.0.5"); err == nil {
		t.Error("New() should reject identity with whitespace")
	}
	if _, err := New("abc123", "not-a-url"); err == nil {
		t.Error("New() should reject malformed server URL")
	}
}

func TestLoadNotProvisioned(t *testing.T) {
	useTempStateDir(t)

	_, err := Load()
	if !errors.Is(err, ErrNotProvisioned) {
		t.Errorf("Load() with no state file error = %v, want ErrNotProvisioned", err)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	useTempStateDir(t)

	st, err := New("abc123", "http://10.0.0.5:8383/orion")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := st.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.DeviceUID != st.DeviceUID {
		t.Errorf("Load().DeviceUID = %v, want %v", loaded.DeviceUID, st.DeviceUID)
	}
	if loaded.ServerURL != st.ServerURL {
		t.Errorf("Load().ServerURL = %v, want %v", loaded.ServerURL, st.ServerURL)
	}
	if loaded.ServerHost != "10.0.0.5:8383" {
		t.Errorf("Load().ServerHost = %v, want 10.0.0.5:8383", loaded.ServerHost)
	}
}

func TestSaveIsAtomic(t *testing.T) {
	dir := useTempStateDir(t)

	st, err := New("abc123", "http://10.0.0.5")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := st.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	// No temp file should be left behind
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("Save() left temp file behind: %v", e.Name())
		}
	}
}

func TestApply(t *testing.T) {
	st, err := New("abc123", "http://10.0.0.5/path")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	provisionedAt := st.ProvisionedAt

	time.Sleep(10 * time.Millisecond)
	if err := st.Apply("xyz789", "http://10.0.0.9/path"); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	if st.DeviceUID != "xyz789" {
		t.Errorf("Apply() DeviceUID = %v, want xyz789", st.DeviceUID)
	}
	if st.ServerHost != "10.0.0.9" {
		t.Errorf("Apply() ServerHost = %v, want 10.0.0.9", st.ServerHost)
	}
	if !st.ProvisionedAt.Equal(provisionedAt) {
		t.Error("Apply() should not change ProvisionedAt")
	}
	if !st.UpdatedAt.After(provisionedAt) {
		t.Error("Apply() should advance UpdatedAt")
	}
}

func TestApplyMalformedURLClearsHost(t *testing.T) {
	useTempStateDir(t)

	st, err := New("abc123", "http://10.0.0.5/path")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	st.ServerURL = "badurl"
	st.ServerHost = "10.0.0.5"

	// Re-applying the stored values must not fail even when the stored
	// URL is malformed, or the state could never be re-persisted.
	if err := st.Apply("xyz789", "badurl"); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if st.DeviceUID != "xyz789" {
		t.Errorf("Apply() DeviceUID = %v, want xyz789", st.DeviceUID)
	}
	if st.ServerHost != "" {
		t.Errorf("Apply() ServerHost = %q, want empty", st.ServerHost)
	}
	if err := st.Save(); err != nil {
		t.Fatalf("Save() after degraded Apply() error = %v", err)
	}
}

func TestLoadRejectsCorruptFile(t *testing.T) {
	dir := useTempStateDir(t)

	if err := os.WriteFile(filepath.Join(dir, "state.yaml"), []byte("version: 99\n"), 0600); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	if _, err := Load(); err == nil {
		t.Error("Load() should reject unsupported state version")
	}
}
