package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/reductstore/ros-reductstore-demo/internal/state"
)

func TestLoadOrCreateStateKeepsPreviousValues(t *testing.T) {
	t.Setenv("REDUCT_DEVICE_STATE_DIR", t.TempDir())

	first, err := state.New("abc123", "http://10.0.0.5:8383")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := first.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	st, prev, err := loadOrCreateState("xyz789", "http://10.0.0.9:8383")
	if err != nil {
		t.Fatalf("loadOrCreateState() error = %v", err)
	}
	if prev == nil {
		t.Fatal("loadOrCreateState() prev = nil, want the previous values")
	}
	if prev.DeviceUID != "abc123" || prev.ServerURL != "http://10.0.0.5:8383" {
		t.Errorf("prev = %q %q, want abc123 http://10.0.0.5:8383", prev.DeviceUID, prev.ServerURL)
	}
	if st.DeviceUID != "xyz789" || st.ServerURL != "http://10.0.0.9:8383" {
		t.Errorf("st = %q %q, want xyz789 http://10.0.0.9:8383", st.DeviceUID, st.ServerURL)
	}
}

func TestLoadOrCreateStateFreshDevice(t *testing.T) {
	t.Setenv("REDUCT_DEVICE_STATE_DIR", t.TempDir())

	st, prev, err := loadOrCreateState("abc123", "http://10.0.0.5:8383")
	if err != nil {
		t.Fatalf("loadOrCreateState() error = %v", err)
	}
	if prev != nil {
		t.Errorf("fresh device prev = %+v, want nil", prev)
	}
	if st.DeviceUID != "abc123" {
		t.Errorf("st.DeviceUID = %q, want abc123", st.DeviceUID)
	}
}

func TestRunInitialSyncRewritesTree(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "agent.yaml")
	content := "device: abc123\nurl: http://10.0.0.5:8383\nhost: 10.0.0.5\n"
	if err := os.WriteFile(file, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	prev := &state.DeviceState{
		DeviceUID:  "abc123",
		ServerURL:  "http://10.0.0.5:8383",
		ServerHost: "10.0.0.5",
	}
	if err := runInitialSync(dir, prev, "xyz789", "http://10.0.0.9:8383"); err != nil {
		t.Fatalf("runInitialSync() error = %v", err)
	}

	got, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("failed to read back: %v", err)
	}
	want := "device: xyz789\nurl: http://10.0.0.9:8383\nhost: 10.0.0.9\n"
	if string(got) != want {
		t.Errorf("synced file = %q, want %q", got, want)
	}
}

func TestRunInitialSyncFreshDeviceNoOp(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "agent.yaml")
	content := "device: placeholder\nurl: http://example:8383\n"
	if err := os.WriteFile(file, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	// No previous state: nothing to compare against, the tree is untouched.
	if err := runInitialSync(dir, nil, "xyz789", "http://10.0.0.9:8383"); err != nil {
		t.Fatalf("runInitialSync() error = %v", err)
	}

	got, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("failed to read back: %v", err)
	}
	if !strings.Contains(string(got), "placeholder") {
		t.Errorf("fresh-device sync changed the tree: %q", got)
	}
}
