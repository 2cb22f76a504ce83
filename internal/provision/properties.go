package provision

import (
	"context"
	"fmt"
	"os"
)

// Property keys for the newly requested device values.
const (
	PropDeviceUID = "device-uid"
	PropServerURL = "server-url"
)

// ErrPropertyNotSet is wrapped into errors for absent keys.
var ErrPropertyNotSet = fmt.Errorf("property not set")

// PropertyStore is a key-value store for the requested device values.
// Inside a snap this is snapd's configuration (snapctl get/set); tests use
// the in-memory implementation.
type PropertyStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// SnapctlStore reads and writes snap configuration via snapctl.
type SnapctlStore struct {
	Commands CommandRunner
}

// NewSnapctlStore returns a snapctl-backed property store.
func NewSnapctlStore() *SnapctlStore {
	return &SnapctlStore{Commands: ExecRunner{}}
}

// Available reports whether the process runs inside a snap context where
// snapctl works.
func (s *SnapctlStore) Available() bool {
	return os.Getenv("SNAP_COOKIE") != "" || os.Getenv("SNAP_CONTEXT") != ""
}

// Get reads a property by name. An absent key yields an error wrapping
// ErrPropertyNotSet.
func (s *SnapctlStore) Get(ctx context.Context, key string) (string, error) {
	out, err := s.Commands.Output(ctx, "snapctl", "get", key)
	if err != nil {
		return "", fmt.Errorf("snapctl get %s: %w", key, err)
	}
	if out == "" {
		return "", fmt.Errorf("%w: %s", ErrPropertyNotSet, key)
	}
	return out, nil
}

// Set writes a property by name.
func (s *SnapctlStore) Set(ctx context.Context, key, value string) error {
	if _, err := s.Commands.Run(ctx, "snapctl", "set", key+"="+value); err != nil {
		return fmt.Errorf("snapctl set %s: %w", key, err)
	}
	return nil
}

// MemoryStore is an in-memory PropertyStore for tests and dry wiring.
type MemoryStore struct {
	Values map[string]string
}

// NewMemoryStore creates an empty in-memory property store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{Values: make(map[string]string)}
}

// Get implements PropertyStore.
func (m *MemoryStore) Get(_ context.Context, key string) (string, error) {
	v, ok := m.Values[key]
	if !ok || v == "" {
		return "", fmt.Errorf("%w: %s", ErrPropertyNotSet, key)
	}
	return v, nil
}

// Set implements PropertyStore.
func (m *MemoryStore) Set(_ context.Context, key, value string) error {
	if m.Values == nil {
		m.Values = make(map[string]string)
	}
	m.Values[key] = value
	return nil
}
